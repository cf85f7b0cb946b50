// Package app wires the terminal engine, the session core, and the Bubble Tea
// program together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/atomicstack/tabterm/internal/backend"
	"github.com/atomicstack/tabterm/internal/dispatch"
	"github.com/atomicstack/tabterm/internal/keymap"
	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/palette"
	"github.com/atomicstack/tabterm/internal/pty"
	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/session"
	"github.com/atomicstack/tabterm/internal/tmux"
	"github.com/atomicstack/tabterm/internal/ui"
	"github.com/atomicstack/tabterm/internal/vt"
	tea "github.com/charmbracelet/bubbletea"
)

// Run bootstraps and executes the Bubble Tea program. It returns once the
// last tab closes or the user quits.
func Run(cfg Config) error {
	mode, err := palette.ParseMode(cfg.PaletteMode)
	if err != nil {
		return err
	}
	first, socket, err := firstCommand(cfg)
	if err != nil {
		return err
	}

	engine := pty.New()
	defer engine.CloseAll()

	outbox := session.NewOutbox()
	readers := session.NewReaders(outbox)
	state := dispatch.NewAppState()
	d := dispatch.New(state, dispatch.Options{
		Engine:       engine,
		Readers:      readers,
		StartCommand: cfg.StartCommand,
		NewTerminal:  newTerminal(cfg.Scrollback),
	})
	if res := d.Open(first); res.Err != nil {
		return res.Err
	}

	measurer := newMeasurer(cfg)
	watcher := backend.NewWatcher(backend.Options{
		Measurer:   measurer,
		FontSize:   cfg.FontSize,
		TmuxSocket: socket,
	})
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := ui.NewModel(ui.Options{
		Context:      ctx,
		Dispatcher:   d,
		Synchronizer: session.NewSynchronizer(state.Registry, outbox, session.NewAutoscroll()),
		Measurer:     measurer,
		FontSize:     cfg.FontSize,
		Keymap:       keymap.Default(),
		PaletteMode:  mode,
		ShowTabs:     cfg.ShowTabs,
		Settings:     Settings(cfg),
		Watcher:      watcher,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()

	d.Shutdown()
	outbox.Close()
	cancel()
	readers.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// firstCommand returns the command the first tab runs and, when attaching,
// the tmux socket in use.
func firstCommand(cfg Config) (command, socket string, err error) {
	if cfg.Attach == "" {
		return cfg.StartCommand, "", nil
	}
	socket, err = tmux.ResolveSocketPath(cfg.TmuxSocket)
	if err != nil {
		return "", "", fmt.Errorf("resolve socket path: %w", err)
	}
	if err := tmux.EnsureSession(socket, cfg.Attach); err != nil {
		return "", "", err
	}
	command, err = tmux.AttachCommand(socket, cfg.Attach)
	if err != nil {
		return "", "", err
	}
	return command, socket, nil
}

func newTerminal(scrollback int) func(rows, cols int) session.Terminal {
	return func(rows, cols int) session.Terminal {
		s := vt.NewScreen(rows, cols)
		s.SetScrollbackLimit(scrollback)
		return s
	}
}

// newMeasurer prefers fixed metrics, then the host terminal's pixel size
// with a font-size estimate as fallback.
func newMeasurer(cfg Config) resize.Measurer {
	if cfg.CellWidth > 0 && cfg.CellHeight > 0 {
		return resize.Static{Metrics: resize.CellMetrics{Width: cfg.CellWidth, Height: cfg.CellHeight}}
	}
	return resize.NewTTY(os.Stdout, resize.FontMetrics(cfg.FontSize))
}

// Settings lists the effective configuration for the settings tab.
func Settings(cfg Config) [][]string {
	command := cfg.StartCommand
	if command == "" {
		command = "$SHELL"
	}
	rows := [][]string{
		{"command", command},
		{"font-size", strconv.FormatFloat(cfg.FontSize, 'g', -1, 64)},
		{"palette-mode", string(mustMode(cfg.PaletteMode))},
		{"scrollback", strconv.Itoa(cfg.Scrollback)},
		{"tabs", strconv.FormatBool(cfg.ShowTabs)},
		{"log-file", logging.Path()},
	}
	if cfg.CellWidth > 0 && cfg.CellHeight > 0 {
		rows = append(rows, []string{"cell", fmt.Sprintf("%gx%g px", cfg.CellWidth, cfg.CellHeight)})
	}
	if cfg.Attach != "" {
		rows = append(rows, []string{"attach", cfg.Attach})
	}
	return rows
}

func mustMode(s string) palette.Mode {
	mode, err := palette.ParseMode(s)
	if err != nil {
		logging.Error(err)
		return palette.ModePrefix
	}
	return mode
}
