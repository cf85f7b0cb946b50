package ui

import (
	"github.com/atomicstack/tabterm/internal/dispatch"
	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/logging/events"
	"github.com/atomicstack/tabterm/internal/resize"
	tea "github.com/charmbracelet/bubbletea"
)

// applyResult surfaces a dispatch result: errors go to the status line and
// the log, and a shutdown quits the program.
func (m *Model) applyResult(res dispatch.Result) tea.Cmd {
	if res.Err != nil {
		m.errMsg = res.Err.Error()
		m.forceClearInfo()
		logging.Error(res.Err)
	}
	if res.Info != "" {
		m.setInfo(res.Info)
	}
	if res.Shutdown {
		m.quitting = true
		events.App.Exit("shutdown")
		return tea.Quit
	}
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	m.width = size.Width
	m.height = size.Height
	m.negotiator.ViewportChanged(m.viewport())
	return nil
}

// chromeRows is the number of rows taken by the tab bar and status line.
func (m *Model) chromeRows() int {
	rows := 1
	if m.showTabs {
		rows++
	}
	return rows
}

// bodySize returns the cells available to the focused tab.
func (m *Model) bodySize() (cols, rows int) {
	return max(m.width, 1), max(m.height-m.chromeRows(), 1)
}

// viewport is the pixel area of the tab body.
func (m *Model) viewport() resize.Viewport {
	cols, rows := m.bodySize()
	if m.measurer != nil {
		return m.measurer.Viewport(cols, rows)
	}
	return resize.Static{Metrics: m.negotiator.Metrics()}.Viewport(cols, rows)
}
