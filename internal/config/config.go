package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atomicstack/tabterm/internal/app"
	"github.com/atomicstack/tabterm/internal/palette"
	"github.com/atomicstack/tabterm/internal/vt"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envCommand     = "TABTERM_COMMAND"
	envFontSize    = "TABTERM_FONT_SIZE"
	envCellWidth   = "TABTERM_CELL_WIDTH"
	envCellHeight  = "TABTERM_CELL_HEIGHT"
	envTabs        = "TABTERM_TABS"
	envPaletteMode = "TABTERM_PALETTE_MODE"
	envScrollback  = "TABTERM_SCROLLBACK"
	envTmuxSocket  = "TABTERM_TMUX_SOCKET"
	envAttach      = "TABTERM_ATTACH"
	envTrace       = "TABTERM_TRACE"
	envLogFile     = "TABTERM_LOG_FILE"

	defaultFontSize = 14
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("tabterm", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	command := fs.String("command", envOrDefault(env, envCommand, ""), "command new tabs run instead of $SHELL")
	fontSize := fs.Float64("font-size", envOrFloat(env, envFontSize, defaultFontSize), "font size in pixels used to estimate cell metrics")
	cellWidth := fs.Float64("cell-width", envOrFloat(env, envCellWidth, 0), "fixed cell width in pixels (0 measures the host terminal)")
	cellHeight := fs.Float64("cell-height", envOrFloat(env, envCellHeight, 0), "fixed cell height in pixels (0 measures the host terminal)")
	tabs := fs.Bool("tabs", envOrBool(env, envTabs, true), "show the tab bar")
	mode := fs.String("palette-mode", envOrDefault(env, envPaletteMode, string(palette.ModePrefix)), "command palette matching: prefix or fuzzy")
	scrollback := fs.Int("scrollback", envOrInt(env, envScrollback, vt.DefaultScrollback), "lines of scrollback kept per tab")
	socket := fs.String("tmux-socket", envOrDefault(env, envTmuxSocket, ""), "path to the tmux socket used by -attach")
	attach := fs.String("attach", envOrDefault(env, envAttach, ""), "tmux session the first tab attaches to (created if missing)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		App: app.Config{
			StartCommand: strings.TrimSpace(*command),
			FontSize:     *fontSize,
			CellWidth:    *cellWidth,
			CellHeight:   *cellHeight,
			ShowTabs:     *tabs,
			PaletteMode:  strings.ToLower(strings.TrimSpace(*mode)),
			Scrollback:   *scrollback,
			TmuxSocket:   *socket,
			Attach:       strings.TrimSpace(*attach),
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Flags: map[string]string{
			"command":      *command,
			"font-size":    strconv.FormatFloat(*fontSize, 'g', -1, 64),
			"cell-width":   strconv.FormatFloat(*cellWidth, 'g', -1, 64),
			"cell-height":  strconv.FormatFloat(*cellHeight, 'g', -1, 64),
			"tabs":         strconv.FormatBool(*tabs),
			"palette-mode": *mode,
			"scrollback":   strconv.Itoa(*scrollback),
			"tmux-socket":  *socket,
			"attach":       *attach,
			"trace":        strconv.FormatBool(*trace),
			"logFile":      *logFile,
		},
		Args: append([]string(nil), args...),
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrFloat(env map[string]string, key string, fallback float64) float64 {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate rejects values the application cannot start with.
func Validate(cfg Config) error {
	a := cfg.App
	if a.FontSize < 0 {
		return fmt.Errorf("font-size must be >= 0 (got %g)", a.FontSize)
	}
	if a.CellWidth < 0 {
		return fmt.Errorf("cell-width must be >= 0 (got %g)", a.CellWidth)
	}
	if a.CellHeight < 0 {
		return fmt.Errorf("cell-height must be >= 0 (got %g)", a.CellHeight)
	}
	if a.Scrollback < 0 {
		return fmt.Errorf("scrollback must be >= 0 (got %d)", a.Scrollback)
	}
	if _, err := palette.ParseMode(a.PaletteMode); err != nil {
		return err
	}
	return nil
}
