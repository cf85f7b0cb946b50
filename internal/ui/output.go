package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/session"
	tea "github.com/charmbracelet/bubbletea"
)

// outputMsg carries the next batch from the outbox, or the error that ended
// the wait.
type outputMsg struct {
	out session.Output
	err error
}

// renderedMsg arrives after the frame for an applied batch was drawn.
type renderedMsg struct {
	out session.Output
}

func (m *Model) waitForOutput() tea.Cmd {
	syncer, ctx := m.syncer, m.ctx
	return func() tea.Msg {
		out, err := syncer.Next(ctx)
		return outputMsg{out: out, err: err}
	}
}

func (m *Model) handleOutputMsg(msg tea.Msg) tea.Cmd {
	output, ok := msg.(outputMsg)
	if !ok || m.syncer == nil {
		return nil
	}
	if output.err != nil {
		if !errors.Is(output.err, session.ErrOutboxClosed) && !errors.Is(output.err, context.Canceled) {
			logging.Error(fmt.Errorf("wait for output: %w", output.err))
		}
		return nil
	}
	if output.out.Closed {
		res := m.dispatcher.SessionEnded(output.out.Session)
		return tea.Batch(m.applyResult(res), m.waitForOutput())
	}
	if !m.syncer.Begin(output.out) {
		return m.waitForOutput()
	}
	out := output.out
	return func() tea.Msg { return renderedMsg{out: out} }
}

func (m *Model) handleRenderedMsg(msg tea.Msg) tea.Cmd {
	rendered, ok := msg.(renderedMsg)
	if !ok || m.syncer == nil {
		return nil
	}
	m.syncer.Finish(rendered.out)
	return m.waitForOutput()
}
