package tmux

import (
	"fmt"
	"os/exec"

	gotmux "github.com/atomicstack/gotmuxcc/gotmuxcc"
)

// Session is a tmux session a tab can attach to.
type Session struct {
	Name     string
	Windows  int
	Attached bool
}

// Row renders the session for the settings table.
func (s Session) Row() []string {
	state := "detached"
	if s.Attached {
		state = "attached"
	}
	return []string{s.Name, fmt.Sprintf("%d windows", s.Windows), state}
}

// tmuxClient is the slice of the control-mode client tabterm uses.
type tmuxClient interface {
	ListSessions() ([]*gotmux.Session, error)
	ListClients() ([]*gotmux.Client, error)
	GetSessionByName(string) (*gotmux.Session, error)
	NewSession(*gotmux.SessionOptions) (*gotmux.Session, error)
	Close() error
}

// Seams for tests.
var (
	newTmux = func(socketPath string) (tmuxClient, error) {
		if socketPath != "" {
			return gotmux.NewTmux(socketPath)
		}
		return gotmux.DefaultTmux()
	}

	runTmuxOutput = func(args ...string) ([]byte, error) {
		return exec.Command("tmux", args...).Output()
	}
)
