package ui

import tea "github.com/charmbracelet/bubbletea"

// Harness drives the model without a terminal. Commands run synchronously in
// order, and a frame is rendered after every update as the real program
// would, so output waits observe completed render passes.
type Harness struct {
	model  *Model
	frame  string
	frames int
	quit   bool
}

func NewHarness(model *Model) *Harness {
	return &Harness{model: model}
}

// Send routes msg through the model and runs the resulting commands.
func (h *Harness) Send(msg tea.Msg) {
	h.drain(h.update(msg))
}

// Run executes cmd and feeds its messages through the model.
func (h *Harness) Run(cmd tea.Cmd) {
	h.drain(cmd)
}

func (h *Harness) update(msg tea.Msg) tea.Cmd {
	mdl, cmd := h.model.Update(msg)
	if updated, ok := mdl.(*Model); ok {
		h.model = updated
	}
	h.frame = h.model.View()
	h.frames++
	return cmd
}

func (h *Harness) drain(cmd tea.Cmd) {
	for cmd != nil {
		switch m := cmd().(type) {
		case nil:
			return
		case tea.QuitMsg:
			h.quit = true
			return
		case tea.BatchMsg:
			for _, c := range m {
				h.drain(c)
			}
			return
		default:
			cmd = h.update(m)
		}
	}
}

// Quit reports whether the model asked the program to exit.
func (h *Harness) Quit() bool { return h.quit }

// View returns the last rendered frame.
func (h *Harness) View() string { return h.frame }

// Frames counts render passes so far.
func (h *Harness) Frames() int { return h.frames }

func (h *Harness) Model() *Model { return h.model }
