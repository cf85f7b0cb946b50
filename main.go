package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/atomicstack/tabterm/internal/app"
	"github.com/atomicstack/tabterm/internal/config"
	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/logging/events"
	"golang.org/x/term"
)

var errNotInteractive = errors.New("tabterm must run with stdin and stdout attached to a terminal")

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.MustLoad()
	logging.Configure(cfg.Logging.FilePath)
	logging.SetTraceEnabled(cfg.Logging.Trace)

	tty := collectTTYDetails()
	events.App.Start(startupTracePayload(cfg, tty))
	if !tty.interactive() {
		logging.Error(errNotInteractive)
		fmt.Fprintf(os.Stderr, "Error: %v\n", errNotInteractive)
		return 1
	}

	if err := app.Run(cfg.App); err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// startupTracePayload records what tabterm was started with and where.
func startupTracePayload(cfg config.Config, tty ttyDetails) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags)+2)
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath

	settings := make(map[string]string)
	for _, row := range app.Settings(cfg.App) {
		settings[row[0]] = row[1]
	}
	payload := map[string]interface{}{
		"argv":     cfg.Args,
		"flags":    flags,
		"config":   cfg,
		"settings": settings,
		"tty":      tty,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	}
	return payload
}

type ttyDetails struct {
	Detected *ttySize   `json:"detected,omitempty"`
	Probes   []ttyProbe `json:"probes"`
}

type ttySize struct {
	Source string `json:"source"`
	Cols   int    `json:"cols"`
	Rows   int    `json:"rows"`
}

type ttyProbe struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Cols       int    `json:"cols,omitempty"`
	Rows       int    `json:"rows,omitempty"`
	Error      string `json:"error,omitempty"`
}

// interactive reports whether keys can be read from stdin and the tabs drawn
// on stdout.
func (d ttyDetails) interactive() bool {
	var in, out bool
	for _, p := range d.Probes {
		switch p.Name {
		case "stdin":
			in = p.IsTerminal
		case "stdout":
			out = p.IsTerminal
		}
	}
	return in && out
}

// collectTTYDetails probes the standard descriptors for a terminal and its
// size in cells.
func collectTTYDetails() ttyDetails {
	files := []*os.File{os.Stdin, os.Stdout, os.Stderr}
	names := []string{"stdin", "stdout", "stderr"}
	details := ttyDetails{Probes: make([]ttyProbe, 0, len(files))}
	for i, f := range files {
		probe := ttyProbe{Name: names[i]}
		fd := int(f.Fd())
		if fd >= 0 && term.IsTerminal(fd) {
			probe.IsTerminal = true
			cols, rows, err := term.GetSize(fd)
			if err != nil {
				probe.Error = err.Error()
			} else {
				probe.Cols, probe.Rows = cols, rows
				if details.Detected == nil {
					details.Detected = &ttySize{Source: probe.Name, Cols: cols, Rows: rows}
				}
			}
		}
		details.Probes = append(details.Probes, probe)
	}
	return details
}
