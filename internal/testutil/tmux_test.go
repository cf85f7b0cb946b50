package testutil

import (
	"errors"
	"strings"
	"testing"
)

func TestStartTmuxServerLifecycle(t *testing.T) {
	srv := StartTmuxServer(t)
	out, err := srv.Command("list-sessions", "-F", "#{session_name}").Output()
	if err != nil {
		t.Skipf("skipping: list-sessions failed: %v", err)
	}
	if !strings.Contains(string(out), "tabterm-test") {
		t.Fatalf("expected seed session, got %q", out)
	}
	if _, err := srv.CapturePane("tabterm-test:0.0"); err != nil && !errors.Is(err, ErrPaneUnavailable) {
		t.Fatalf("capture-pane failed: %v", err)
	}
}
