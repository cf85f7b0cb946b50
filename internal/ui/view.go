package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atomicstack/tabterm/internal/action"
	"github.com/atomicstack/tabterm/internal/format/table"
	"github.com/atomicstack/tabterm/internal/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	maxTabLabelWidth   = 24
	paletteMaxWidth    = 60
	paletteMinWidth    = 24
	paletteMaxVisible  = 10
	noPluginsMessage   = "no plugins loaded"
	noMatchesMessage   = "no matching commands"
	infoDisplayTimeout = 5 * time.Second
)

type styledLine struct {
	text  string
	style *lipgloss.Style
	raw   bool // text contains ANSI escapes; skip style wrapping, use ANSI-aware truncation
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	cols, rows := m.bodySize()
	lines := make([]styledLine, 0, rows+2)
	if m.showTabs {
		lines = append(lines, m.tabBar())
	}
	body := m.bodyLines()
	if m.state.PaletteVisible {
		body = overlay(body, m.paletteLines(cols))
	}
	if m.height > 0 {
		body = fitHeight(body, rows)
	}
	lines = append(lines, body...)
	lines = append(lines, m.statusLine())
	return renderLines(applyWidth(lines, m.width))
}

func (m *Model) tabBar() styledLine {
	reg := m.state.Registry
	focus := reg.FocusIndex()
	var b strings.Builder
	for i, s := range reg.Sessions() {
		label := " " + truncate.StringWithTail(s.Name, maxTabLabelWidth, "…") + " "
		style := styles.Tab
		if i == focus {
			style = styles.ActiveTab
		}
		if style != nil {
			label = style.Render(label)
		}
		b.WriteString(label)
	}
	return styledLine{text: b.String(), raw: true}
}

func (m *Model) bodyLines() []styledLine {
	cur := m.state.Registry.Current()
	if cur == nil {
		return nil
	}
	switch cur.Kind {
	case session.KindSettings:
		return m.settingsLines()
	case session.KindPlugins:
		return []styledLine{
			{text: "Plugins", style: styles.Header},
			{text: ""},
			{text: noPluginsMessage, style: styles.Info},
		}
	}
	return terminalLines(cur)
}

type cursorVisibility interface {
	CursorVisible() bool
}

// terminalLines renders the session's view. The cursor is drawn only when the
// view follows the bottom of the output.
func terminalLines(s *session.Session) []styledLine {
	view := s.View()
	lines := make([]styledLine, len(view))
	for i, text := range view {
		lines[i] = styledLine{text: text}
	}
	if s.Scroll != 0 {
		return lines
	}
	if cv, ok := s.Terminal.(cursorVisibility); ok && !cv.CursorVisible() {
		return lines
	}
	row, col := s.Terminal.CursorPosition()
	if row >= 0 && row < len(lines) {
		lines[row] = styledLine{text: overlayCursor(lines[row].text, col), raw: true}
	}
	return lines
}

// overlayCursor draws the cursor over the cell at col, padding short lines.
func overlayCursor(line string, col int) string {
	render := func(s string) string {
		if styles.Cursor == nil {
			return s
		}
		return styles.Cursor.Render(s)
	}
	pos := 0
	for i, r := range line {
		w := runewidth.RuneWidth(r)
		if col < pos+max(w, 1) {
			end := i + len(string(r))
			return line[:i] + render(string(r)) + line[end:]
		}
		pos += w
	}
	return line + strings.Repeat(" ", max(col-pos, 0)) + render(" ")
}

func (m *Model) settingsLines() []styledLine {
	lines := []styledLine{{text: "Settings", style: styles.Header}, {text: ""}}
	for _, row := range table.Format(m.settings, nil) {
		lines = append(lines, styledLine{text: row, style: styles.Info})
	}
	if len(m.tmuxSessions) > 0 {
		lines = append(lines, styledLine{text: ""}, styledLine{text: "tmux sessions", style: styles.Header})
		rows := make([][]string, 0, len(m.tmuxSessions))
		for _, s := range m.tmuxSessions {
			rows = append(rows, s.Row())
		}
		for _, row := range table.Format(rows, []table.Alignment{table.AlignLeft, table.AlignRight}) {
			lines = append(lines, styledLine{text: row, style: styles.Info})
		}
	}
	lines = append(lines, styledLine{text: ""}, styledLine{text: "Key bindings", style: styles.Header})
	rows := make([][]string, 0, len(m.keys.Bindings()))
	for _, b := range m.keys.Bindings() {
		rows = append(rows, []string{b.Key, action.Of(b.Action).Label()})
	}
	for _, row := range table.Format(rows, nil) {
		lines = append(lines, styledLine{text: row, style: styles.Info})
	}
	return lines
}

// paletteLines renders the palette box for a body cols wide.
func (m *Model) paletteLines(cols int) []styledLine {
	width := paletteMaxWidth
	if m.width > 0 {
		width = max(min(cols-4, paletteMaxWidth), paletteMinWidth)
	}
	inner := width - 4
	m.input.Width = max(inner-runewidth.StringWidth(m.input.Prompt)-1, 1)

	content := []string{m.input.View()}
	visible, offset := m.palette.Window(paletteMaxVisible)
	if len(visible) == 0 {
		text := noMatchesMessage
		if styles.Info != nil {
			text = styles.Info.Render(text)
		}
		content = append(content, text)
	}
	for i, a := range visible {
		label := a.Label()
		key := m.keys.KeyFor(a.Kind)
		gap := max(inner-runewidth.StringWidth(label)-runewidth.StringWidth(key), 1)
		if offset+i == m.palette.Selected() {
			row := label + strings.Repeat(" ", gap) + key
			if styles.PaletteSelected != nil {
				row = styles.PaletteSelected.Render(row)
			}
			content = append(content, row)
			continue
		}
		if styles.PaletteItem != nil {
			label = styles.PaletteItem.Render(label)
		}
		if styles.PaletteKey != nil && key != "" {
			key = styles.PaletteKey.Render(key)
		}
		content = append(content, label+strings.Repeat(" ", gap)+key)
	}

	box := strings.Join(content, "\n")
	if styles.PaletteBorder != nil {
		box = styles.PaletteBorder.Width(inner + 2).Render(box)
	}
	out := make([]styledLine, 0, len(content)+2)
	for _, line := range strings.Split(box, "\n") {
		out = append(out, styledLine{text: line, raw: true})
	}
	return out
}

func (m *Model) statusLine() styledLine {
	if m.errMsg != "" {
		return styledLine{text: m.errMsg, style: styles.Error}
	}
	if info := m.currentInfo(); info != "" {
		return styledLine{text: info, style: styles.Info}
	}
	hints := make([]string, 0, 3)
	for _, h := range []struct {
		kind  action.Kind
		label string
	}{
		{action.ToggleCommandPalette, "commands"},
		{action.NewTab, "new tab"},
		{action.Quit, "quit"},
	} {
		if key := m.keys.KeyFor(h.kind); key != "" {
			hints = append(hints, key+" "+h.label)
		}
	}
	text := strings.Join(hints, "  ")
	if cur := m.state.Registry.Current(); cur.IsTerminal() && cur.Scroll > 0 {
		text = fmt.Sprintf("scrolled %d/%d  %s", cur.Scroll, cur.Terminal.ScrollbackLen(), text)
	}
	return styledLine{text: text, style: styles.Footer}
}

// overlay draws top over the first lines of base.
func overlay(base, top []styledLine) []styledLine {
	out := make([]styledLine, max(len(base), len(top)))
	copy(out, base)
	copy(out, top)
	return out
}

func fitHeight(lines []styledLine, height int) []styledLine {
	if len(lines) >= height {
		return lines[:height]
	}
	out := make([]styledLine, height)
	copy(out, lines)
	return out
}

func (m *Model) setInfo(message string) {
	m.infoMsg = message
	m.infoExpire = time.Now().Add(infoDisplayTimeout)
}

func (m *Model) clearInfo() {
	if m.infoMsg == "" {
		return
	}
	if !m.infoExpire.IsZero() && time.Now().Before(m.infoExpire) {
		return
	}
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) forceClearInfo() {
	m.infoMsg = ""
	m.infoExpire = time.Time{}
}

func (m *Model) currentInfo() string {
	if m.infoMsg != "" && !m.infoExpire.IsZero() && time.Now().After(m.infoExpire) {
		m.infoMsg = ""
		m.infoExpire = time.Time{}
	}
	return m.infoMsg
}

func applyWidth(lines []styledLine, width int) []styledLine {
	if width <= 0 {
		return lines
	}
	result := make([]styledLine, len(lines))
	for i, line := range lines {
		text := line.text
		if line.raw {
			if lipgloss.Width(text) > width {
				text = truncate.StringWithTail(text, uint(width-1), "…")
			}
		} else {
			text = truncateText(text, width)
		}
		result[i] = styledLine{text: text, style: line.style, raw: line.raw}
	}
	return result
}

func renderLines(lines []styledLine) string {
	out := make([]string, len(lines))
	for i, line := range lines {
		text := line.text
		if !line.raw && line.style != nil {
			text = line.style.Render(text)
		}
		out[i] = text
	}
	return strings.Join(out, "\n")
}

// truncateText cuts text to width cells, marking the cut with an ellipsis.
func truncateText(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return runewidth.Truncate(text, 1, "")
	}
	return runewidth.Truncate(text, width, "…")
}
