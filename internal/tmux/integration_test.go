package tmux

import (
	"path/filepath"
	"testing"
	"time"

	testutil "github.com/atomicstack/tabterm/internal/testutil"
)

func TestSessionsIntegration(t *testing.T) {
	srv := testutil.StartTmuxServer(t)
	socket := srv.Socket
	t.Setenv("TMUX_TMPDIR", filepath.Dir(socket))

	sessionName := "tabterm-attach"
	if err := EnsureSession(socket, sessionName); err != nil {
		t.Skipf("skipping: unable to create session (%v)", err)
	}
	waitForSession(t, srv, sessionName)

	// A second call must find the session rather than fail on a duplicate.
	if err := EnsureSession(socket, sessionName); err != nil {
		t.Fatalf("EnsureSession on existing session failed: %v", err)
	}

	sessions, err := ListSessions(socket)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	for _, sess := range sessions {
		t.Logf("session: name=%q windows=%d attached=%v", sess.Name, sess.Windows, sess.Attached)
	}
	if !containsSession(sessions, sessionName) {
		t.Fatalf("expected session %q in %#v", sessionName, sessions)
	}
}

func waitForSession(t *testing.T, srv *testutil.Server, session string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := srv.Command("has-session", "-t", session).Run(); err == nil {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("session %q did not appear in time", session)
}

func containsSession(sessions []Session, name string) bool {
	for _, s := range sessions {
		if s.Name == name {
			return true
		}
	}
	return false
}
