package command

import (
	"fmt"

	"github.com/atomicstack/tabterm/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Request describes work that runs off the update loop. Run may block; its
// message is delivered back to Update.
type Request struct {
	ID    string
	Label string
	Run   func() tea.Msg
}

// Bus coordinates the execution of background requests.
type Bus struct{}

// New initialises a command bus instance.
func New() *Bus {
	return &Bus{}
}

// Execute wraps a request into a Bubble Tea command while emitting trace logs.
func (b *Bus) Execute(req Request) tea.Cmd {
	events.Command.Queue(req.ID, req.Label)
	return func() tea.Msg {
		if req.Run == nil {
			events.Command.Result(req.ID, req.Label, "<nil>")
			return nil
		}
		msg := req.Run()
		events.Command.Result(req.ID, req.Label, fmt.Sprintf("%T", msg))
		return msg
	}
}
