package theme

import "github.com/charmbracelet/lipgloss"

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	TabBar             *lipgloss.Style
	Tab                *lipgloss.Style
	ActiveTab          *lipgloss.Style
	Cursor             *lipgloss.Style
	Error              *lipgloss.Style
	Info               *lipgloss.Style
	Header             *lipgloss.Style
	Footer             *lipgloss.Style
	PaletteBorder      *lipgloss.Style
	PaletteItem        *lipgloss.Style
	PaletteSelected    *lipgloss.Style
	PaletteKey         *lipgloss.Style
	PalettePrompt      *lipgloss.Style
	PalettePlaceholder *lipgloss.Style
}

var defaultStyles = Styles{
	TabBar: ptr(
		lipgloss.NewStyle().Background(lipgloss.Color("236")),
	),
	Tab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")).Background(lipgloss.Color("236")),
	),
	ActiveTab: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("33")).Bold(true),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Reverse(true),
	),
	Error: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	),
	Info: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	Header: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	PaletteBorder: ptr(
		lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
	),
	PaletteItem: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("249")),
	),
	PaletteSelected: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("255")).Background(lipgloss.Color("238")).Bold(true),
	),
	PaletteKey: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
	PalettePrompt: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
	),
	PalettePlaceholder: ptr(
		lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
