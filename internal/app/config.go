package app

// Config describes user-provided application options.
type Config struct {
	// StartCommand runs in every new tab. Empty means the user's shell.
	StartCommand string
	FontSize     float64
	CellWidth    float64
	CellHeight   float64
	ShowTabs     bool
	PaletteMode  string
	Scrollback   int
	TmuxSocket   string
	// Attach names a tmux session the first tab attaches to.
	Attach string
}
