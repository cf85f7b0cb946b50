package testutil

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func buildBinary(t *testing.T) string {
	t.Helper()
	RequireTmux(t)
	tdir := t.TempDir()
	bin := filepath.Join(tdir, "tabterm")
	cmd := exec.Command("go", "build", "-o", bin, ".")
	cmd.Dir = repoRoot(t)
	cmd.Env = append(os.Environ(), "GOCACHE="+filepath.Join(tdir, ".gocache"))
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("failed to build binary: %v\n%s", err, out)
	}
	return bin
}

// waitForRender polls the pane until its contents include want.
func waitForRender(t *testing.T, ctx context.Context, srv *Server, target, exitPath, want string) string {
	t.Helper()
	loggedPaneMissing := false
	last := ""
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for %q: %v\nlast capture:\n%s", want, ctx.Err(), last)
		case <-time.After(50 * time.Millisecond):
			if exitPath != "" {
				if data, err := os.ReadFile(exitPath); err == nil {
					code := strings.TrimSpace(string(data))
					if code != "" && code != "0" {
						t.Fatalf("tabterm exited early with code %s", code)
					}
				}
			}
			out, err := srv.CapturePane(target)
			if err != nil {
				if errors.Is(err, ErrPaneUnavailable) {
					if !loggedPaneMissing {
						t.Logf("waiting for pane %s to become available", target)
						loggedPaneMissing = true
					}
					continue
				}
				t.Fatalf("capture-pane error: %v", err)
			}
			last = out
			if strings.Contains(out, want) {
				return out
			}
		}
	}
}

// waitForExit waits for the launcher script to record the exit code.
func waitForExit(t *testing.T, ctx context.Context, exitPath string) string {
	t.Helper()
	for {
		select {
		case <-ctx.Done():
			t.Fatalf("timeout waiting for exit: %v", ctx.Err())
		case <-time.After(50 * time.Millisecond):
			data, err := os.ReadFile(exitPath)
			if err != nil {
				continue
			}
			if code := strings.TrimSpace(string(data)); code != "" {
				return code
			}
		}
	}
}

func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
