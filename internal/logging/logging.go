// Package logging appends errors and JSON trace entries to a single log file.
// Reader goroutines and the update loop share it, so appends are serialized.
package logging

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const defaultLogFile = "tabterm.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
)

type traceEntry struct {
	Time    time.Time   `json:"time"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Error appends err to the log. A nil error is ignored.
func Error(err error) {
	if err == nil {
		return
	}
	appendEntry(func(f *os.File) error {
		log.New(f, "", log.LstdFlags).Println(err)
		return nil
	})
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a JSON entry when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	entry := traceEntry{Time: time.Now().UTC(), Event: event, Payload: payload}
	appendEntry(func(f *os.File) error {
		return json.NewEncoder(f).Encode(entry)
	})
}

// Configure sets the log destination. An empty path selects tabterm.log in
// the working directory; missing parent directories are created.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		logPath = defaultLogFile
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "tabterm: create log directory: %v\n", err)
		logPath = defaultLogFile
		return
	}
	logPath = path
}

// Path returns the file entries are appended to.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

func appendEntry(write func(*os.File) error) {
	mu.Lock()
	defer mu.Unlock()
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabterm: open log %s: %v\n", logPath, err)
		return
	}
	defer f.Close()
	if err := write(f); err != nil {
		fmt.Fprintf(os.Stderr, "tabterm: write log: %v\n", err)
	}
}
