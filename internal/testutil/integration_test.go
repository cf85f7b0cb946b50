package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTabtermRendersInTmux(t *testing.T) {
	bin := buildBinary(t)
	srv := StartTmuxServer(t)
	session := "tabterm-ui"
	pane := session + ":0.0"
	scriptDir := t.TempDir()
	exitFile := filepath.Join(scriptDir, "exit-code")
	scriptPath := filepath.Join(scriptDir, "run.sh")
	// The pane is started by the server, not by this process, so nothing
	// from our environment reaches it; paths are written into the script.
	// Only stderr is discarded: tabterm needs the pane as its stdout.
	script := "#!/bin/sh\n" +
		quoteArg(bin) + " -command 'echo tabterm-ready; exec sleep 300' -log-file " +
		quoteArg(filepath.Join(scriptDir, "tabterm.log")) + " 2>/dev/null\n" +
		"printf '%s' $? > " + quoteArg(exitFile) + "\n" +
		"sleep 300\n"
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write launcher script: %v", err)
	}
	cmd := srv.Command("new-session", "-d", "-x", "80", "-y", "24", "-s", session, scriptPath)
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to launch binary: %v", err)
	}
	if err := srv.Command("has-session", "-t", session).Run(); err != nil {
		t.Skipf("skipping: unable to create tmux session: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	output := waitForRender(t, ctx, srv, pane, exitFile, "tabterm-ready")
	if !strings.Contains(output, "terminal 1") {
		t.Fatalf("expected tab bar with terminal 1, got:\n%s", output)
	}

	// alt+q arrives as ESC q.
	srv.SendKeys(t, pane, "M-q")
	if code := waitForExit(t, ctx, exitFile); code != "0" {
		t.Fatalf("expected clean exit, got code %s", code)
	}
	_ = srv.Command("kill-session", "-t", session).Run()
}

func quoteArg(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
