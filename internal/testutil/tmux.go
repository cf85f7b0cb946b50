package testutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

var ErrPaneUnavailable = errors.New("tmux pane unavailable")

// RequireTmux skips the calling test when tmux is not on PATH.
func RequireTmux(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("tmux")
	if err != nil {
		t.Skip("skipping: tmux binary not available")
	}
	return path
}

// Server is a throwaway tmux server bound to its own socket. Its verbose
// logs land in LogDir.
type Server struct {
	Socket string
	LogDir string
}

// StartTmuxServer boots a server with one idle session. The server is killed
// and checked for crashes when the test finishes.
func StartTmuxServer(t *testing.T) *Server {
	t.Helper()
	RequireTmux(t)
	dir, err := os.MkdirTemp("/tmp", "tabterm-*")
	if err != nil {
		t.Fatalf("failed to create tmux temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	srv := &Server{Socket: filepath.Join(dir, "tmux-test.sock"), LogDir: dir}

	start := srv.Command("-f", "/dev/null", "-vv", "new-session", "-d", "-s", "tabterm-test", "sleep", "600")
	start.Dir = dir
	if err := start.Run(); err != nil {
		t.Skipf("skipping: failed to start tmux server: %v", err)
	}
	if out, err := srv.Command("display-message", "-p", "#{pid}").Output(); err == nil {
		t.Logf("started tmux test server pid=%s socket=%s", strings.TrimSpace(string(out)), srv.Socket)
	}
	t.Cleanup(func() {
		srv.kill(t)
		srv.AssertNoCrash(t)
	})
	return srv
}

// Command builds a tmux invocation against the server. The caller's TMUX is
// cleared so nested test runs never talk to the outer server.
func (s *Server) Command(args ...string) *exec.Cmd {
	cmd := exec.Command("tmux", append([]string{"-S", s.Socket}, args...)...)
	env := make([]string, 0, len(os.Environ())+2)
	for _, entry := range os.Environ() {
		if !strings.HasPrefix(entry, "TMUX=") {
			env = append(env, entry)
		}
	}
	cmd.Env = append(env, "TMUX=", "TMUX_TMPDIR="+filepath.Dir(s.Socket))
	return cmd
}

// SendKeys types keys into target using tmux key names, such as "M-q".
func (s *Server) SendKeys(t *testing.T, target string, keys ...string) {
	t.Helper()
	args := append([]string{"send-keys", "-t", target}, keys...)
	if out, err := s.Command(args...).CombinedOutput(); err != nil {
		t.Fatalf("send-keys %v: %v\n%s", keys, err, out)
	}
}

// CapturePane returns the visible contents of target.
func (s *Server) CapturePane(target string) (string, error) {
	args := []string{"capture-pane", "-p"}
	if target != "" {
		args = append(args, "-t", target)
	}
	out, err := s.Command(args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrPaneUnavailable
		}
		return "", fmt.Errorf("capture-pane failed: %w", err)
	}
	return string(out), nil
}

// AssertNoCrash fails the test if the server log reports an unexpected exit.
func (s *Server) AssertNoCrash(t *testing.T) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(s.LogDir, "tmux-server-*.log"))
	if err != nil {
		t.Fatalf("failed to glob tmux logs: %v", err)
	}
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read tmux server log %s: %v", path, err)
		}
		if bytes.Contains(content, []byte("server exited unexpectedly")) {
			t.Fatalf("tmux server reported unexpected exit; see %s", path)
		}
	}
}

// kill stops the server over a control-mode client, falling back to the
// kill-server command.
func (s *Server) kill(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := gotmux.NewTmuxWithOptions(s.Socket, gotmux.WithContext(ctx))
	if err == nil {
		defer client.Close()
		if err = client.KillServer(); err == nil {
			return
		}
	}
	t.Logf("control-mode kill failed for %s: %v; using kill-server", s.Socket, err)
	_ = s.Command("kill-server").Run()
}
