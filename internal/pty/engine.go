// Package pty runs terminal sessions on pseudo-terminals.
package pty

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	creackpty "github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/atomicstack/tabterm/internal/session"
)

var (
	// ErrSessionNotFound reports an id the engine never issued or already closed.
	ErrSessionNotFound = errors.New("pty: session not found")
	// ErrSessionClosed reports a session whose process has exited.
	ErrSessionClosed = errors.New("pty: session closed")
)

const (
	defaultRows = 24
	defaultCols = 80
	defaultTerm = "xterm-256color"
)

type process struct {
	cmd  *exec.Cmd
	ptmx *os.File

	mu     sync.Mutex
	exited bool
	closed bool
	done   chan struct{}
}

// Engine spawns shells on ptys and tracks them by session id. It is safe for
// concurrent use.
type Engine struct {
	sessions sync.Map // session.ID -> *process

	// Shell overrides $SHELL when set.
	Shell string
	// Env is appended to the inherited environment of every process.
	Env []string
}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) shell() string {
	if e.Shell != "" {
		return e.Shell
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Spawn starts the user's shell, or runs command through it when command is
// not empty. The pty starts at 24x80 until the first resize.
func (e *Engine) Spawn(command string) (session.ID, error) {
	shell := e.shell()
	cmd := exec.Command(shell)
	if command != "" {
		cmd = exec.Command(shell, "-c", command)
	}
	cmd.Env = append(os.Environ(), "TERM="+defaultTerm)
	cmd.Env = append(cmd.Env, e.Env...)
	if home, err := os.UserHomeDir(); err == nil {
		cmd.Dir = home
	}

	ptmx, err := creackpty.StartWithSize(cmd, &creackpty.Winsize{Rows: defaultRows, Cols: defaultCols})
	if err != nil {
		return "", fmt.Errorf("start %s: %w", shell, err)
	}

	id := session.ID(uuid.NewString())
	p := &process{cmd: cmd, ptmx: ptmx, done: make(chan struct{})}
	e.sessions.Store(id, p)
	go p.monitor()
	return id, nil
}

// monitor reaps the process. The pty stays open so the reader can drain the
// last output and observe end-of-stream on its own.
func (p *process) monitor() {
	_ = p.cmd.Wait()
	p.mu.Lock()
	p.exited = true
	p.mu.Unlock()
	close(p.done)
}

func (e *Engine) lookup(id session.ID) (*process, error) {
	v, ok := e.sessions.Load(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return v.(*process), nil
}

// Write sends input to the session's process.
func (e *Engine) Write(id session.ID, p []byte) error {
	proc, err := e.lookup(id)
	if err != nil {
		return err
	}
	proc.mu.Lock()
	defer proc.mu.Unlock()
	if proc.exited || proc.closed {
		return fmt.Errorf("write %s: %w", id, ErrSessionClosed)
	}
	if _, err := proc.ptmx.Write(p); err != nil {
		return fmt.Errorf("write %s: %w", id, err)
	}
	return nil
}

// Resize informs the process of its new terminal size.
func (e *Engine) Resize(id session.ID, rows, cols int) error {
	proc, err := e.lookup(id)
	if err != nil {
		return err
	}
	proc.mu.Lock()
	defer proc.mu.Unlock()
	if proc.closed {
		return fmt.Errorf("resize %s: %w", id, ErrSessionClosed)
	}
	ws := &creackpty.Winsize{Rows: clampDim(rows), Cols: clampDim(cols)}
	if err := creackpty.Setsize(proc.ptmx, ws); err != nil {
		return fmt.Errorf("resize %s: %w", id, err)
	}
	return nil
}

// Stream returns the output side of the pty. Reads fail once the process
// exits and its output is drained, or once the session is closed.
func (e *Engine) Stream(id session.ID) (io.Reader, error) {
	proc, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return proc.ptmx, nil
}

// Done is closed when the session's process has exited.
func (e *Engine) Done(id session.ID) (<-chan struct{}, error) {
	proc, err := e.lookup(id)
	if err != nil {
		return nil, err
	}
	return proc.done, nil
}

// Close kills the process if it is still running and closes the pty, which
// ends the session's reader. Closing an unknown id reports ErrSessionNotFound.
func (e *Engine) Close(id session.ID) error {
	v, ok := e.sessions.LoadAndDelete(id)
	if !ok {
		return fmt.Errorf("close %s: %w", id, ErrSessionNotFound)
	}
	proc := v.(*process)
	proc.mu.Lock()
	defer proc.mu.Unlock()
	if proc.closed {
		return nil
	}
	proc.closed = true
	if !proc.exited && proc.cmd.Process != nil {
		_ = proc.cmd.Process.Kill()
	}
	return proc.ptmx.Close()
}

// CloseAll closes every live session.
func (e *Engine) CloseAll() {
	e.sessions.Range(func(key, _ any) bool {
		_ = e.Close(key.(session.ID))
		return true
	})
}

func clampDim(v int) uint16 {
	switch {
	case v < 1:
		return 1
	case v > 0xffff:
		return 0xffff
	default:
		return uint16(v)
	}
}
