package testutil

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/atomicstack/tabterm/internal/session"
)

// ErrFakeClosed is returned for writes to a closed fake session.
var ErrFakeClosed = errors.New("fake session closed")

type fakeProc struct {
	command string
	out     *io.PipeReader
	feed    *io.PipeWriter
	input   strings.Builder
	rows    int
	cols    int
	closed  bool
}

// FakeEngine is an in-memory terminal engine. Output is scripted with Emit
// and input is recorded for inspection.
type FakeEngine struct {
	mu       sync.Mutex
	next     int
	sessions map[session.ID]*fakeProc
	order    []session.ID

	// SpawnErr, when set, fails every Spawn.
	SpawnErr error
	// StreamErr, when set, fails every Stream.
	StreamErr error
}

func NewFakeEngine() *FakeEngine {
	return &FakeEngine{sessions: make(map[session.ID]*fakeProc)}
}

func (f *FakeEngine) Spawn(command string) (session.ID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SpawnErr != nil {
		return "", f.SpawnErr
	}
	f.next++
	id := session.ID(fmt.Sprintf("fake-%d", f.next))
	r, w := io.Pipe()
	f.sessions[id] = &fakeProc{command: command, out: r, feed: w, rows: 24, cols: 80}
	f.order = append(f.order, id)
	return id, nil
}

func (f *FakeEngine) proc(id session.ID) (*fakeProc, error) {
	p, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, session.ErrUnknownSession)
	}
	return p, nil
}

func (f *FakeEngine) Write(id session.ID, b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.proc(id)
	if err != nil {
		return err
	}
	if p.closed {
		return ErrFakeClosed
	}
	p.input.Write(b)
	return nil
}

func (f *FakeEngine) Resize(id session.ID, rows, cols int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.proc(id)
	if err != nil {
		return err
	}
	p.rows, p.cols = rows, cols
	return nil
}

func (f *FakeEngine) Stream(id session.ID) (io.Reader, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StreamErr != nil {
		return nil, f.StreamErr
	}
	p, err := f.proc(id)
	if err != nil {
		return nil, err
	}
	return p.out, nil
}

// Close ends the session's output stream. Closed sessions stay inspectable.
func (f *FakeEngine) Close(id session.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.proc(id)
	if err != nil {
		return err
	}
	if !p.closed {
		p.closed = true
		_ = p.feed.Close()
	}
	return nil
}

// Emit writes output for id. It blocks until a reader consumes it.
func (f *FakeEngine) Emit(id session.ID, output string) error {
	f.mu.Lock()
	p, err := f.proc(id)
	f.mu.Unlock()
	if err != nil {
		return err
	}
	_, err = io.WriteString(p.feed, output)
	return err
}

// End simulates the process exiting: the stream reports EOF.
func (f *FakeEngine) End(id session.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, err := f.proc(id)
	if err != nil {
		return err
	}
	return p.feed.Close()
}

// Input returns everything written to id.
func (f *FakeEngine) Input(id session.ID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.sessions[id]; ok {
		return p.input.String()
	}
	return ""
}

// Size returns the last size set for id.
func (f *FakeEngine) Size(id session.ID) (rows, cols int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.sessions[id]; ok {
		return p.rows, p.cols
	}
	return 0, 0
}

// Closed reports whether Close was called for id.
func (f *FakeEngine) Closed(id session.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.sessions[id]
	return ok && p.closed
}

// Command returns the start command id was spawned with.
func (f *FakeEngine) Command(id session.ID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.sessions[id]; ok {
		return p.command
	}
	return ""
}

// Spawned returns every id in spawn order.
func (f *FakeEngine) Spawned() []session.ID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]session.ID(nil), f.order...)
}
