package ui

import (
	"github.com/atomicstack/tabterm/internal/action"
	"github.com/atomicstack/tabterm/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	m.errMsg = ""
	m.clearInfo()
	if m.state.PaletteVisible {
		return m.handlePaletteKey(key)
	}
	res := m.dispatcher.Dispatch(m.keys.Translate(key))
	if m.state.PaletteVisible {
		m.openPalette()
	}
	return m.applyResult(res)
}

// handlePaletteKey edits the query, moves the selection, or confirms. Escape
// and the palette binding close the palette without running anything.
func (m *Model) handlePaletteKey(key tea.KeyMsg) tea.Cmd {
	if a, bound := m.keys.Resolve(key); bound && a.Kind == action.ToggleCommandPalette {
		return m.closePalette()
	}
	switch key.Type {
	case tea.KeyEsc:
		return m.closePalette()
	case tea.KeyUp, tea.KeyShiftTab:
		m.palette.Up()
		events.Palette.Move(m.palette.Selected())
		return nil
	case tea.KeyDown, tea.KeyTab:
		m.palette.Down()
		events.Palette.Move(m.palette.Selected())
		return nil
	case tea.KeyEnter:
		m.input.Blur()
		res := m.dispatcher.Confirm(m.palette)
		return m.applyResult(res)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if q := m.input.Value(); q != m.palette.Query() {
		m.palette.SetQuery(q)
		events.Palette.Query(q, len(m.palette.Matches()))
	}
	return cmd
}

func (m *Model) openPalette() {
	m.palette.Reset()
	m.input.Reset()
	m.input.Focus()
}

func (m *Model) closePalette() tea.Cmd {
	m.input.Blur()
	res := m.dispatcher.Dispatch(action.Of(action.ToggleCommandPalette))
	return m.applyResult(res)
}
