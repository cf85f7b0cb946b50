package ui

import (
	"fmt"

	"github.com/atomicstack/tabterm/internal/backend"
	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/tmux"
	"github.com/atomicstack/tabterm/internal/ui/command"
	tea "github.com/charmbracelet/bubbletea"
)

type metricsMsg struct {
	metrics resize.CellMetrics
	err     error
}

func (m *Model) measureCmd() tea.Cmd {
	measurer, size, ctx := m.measurer, m.fontSize, m.ctx
	return m.bus.Execute(command.Request{
		ID:    "metrics",
		Label: "measure cell metrics",
		Run: func() tea.Msg {
			metrics, err := measurer.Measure(ctx, size)
			return metricsMsg{metrics: metrics, err: err}
		},
	})
}

func (m *Model) handleMetricsMsg(msg tea.Msg) tea.Cmd {
	mm, ok := msg.(metricsMsg)
	if !ok {
		return nil
	}
	m.noteBackendErr(backend.KindMetrics, mm.err)
	m.applyMetrics(mm.metrics)
	return nil
}

// applyMetrics records a measurement. When metrics change after the first
// measurement the current viewport is renegotiated.
func (m *Model) applyMetrics(metrics resize.CellMetrics) {
	if !metrics.Valid() {
		m.negotiator.SetMetrics(metrics)
		return
	}
	wasMeasured := m.negotiator.Measured()
	prev := m.negotiator.Metrics()
	m.negotiator.SetMetrics(metrics)
	if wasMeasured && prev != metrics && m.width > 0 {
		m.negotiator.ViewportChanged(m.viewport())
	}
}

func waitForBackendEvent(w *backend.Watcher) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-w.Events()
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	m.applyBackendEvent(eventMsg.event)
	if m.backend != nil {
		return waitForBackendEvent(m.backend)
	}
	return nil
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.backend = nil
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) {
	m.noteBackendErr(evt.Kind, evt.Err)
	switch evt.Kind {
	case backend.KindMetrics:
		// Measurers return fallback metrics alongside their error.
		if metrics, ok := evt.Data.(resize.CellMetrics); ok {
			m.applyMetrics(metrics)
		}
	case backend.KindTmuxSessions:
		if evt.Err != nil {
			return
		}
		if sessions, ok := evt.Data.([]tmux.Session); ok {
			m.tmuxSessions = sessions
		}
	}
}

// noteBackendErr logs a poll error once per distinct message.
func (m *Model) noteBackendErr(kind backend.Kind, err error) {
	if err == nil {
		delete(m.backendLastErr, kind)
		return
	}
	if m.backendLastErr[kind] == err.Error() {
		return
	}
	m.backendLastErr[kind] = err.Error()
	logging.Error(fmt.Errorf("%s: %w", kind, err))
}
