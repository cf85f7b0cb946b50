// Package dispatch applies actions to the application state. Every action
// has a defined effect for every registry state, so Dispatch never fails the
// update loop; collaborator failures come back in Result.Err.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atomicstack/tabterm/internal/action"
	"github.com/atomicstack/tabterm/internal/logging"
	"github.com/atomicstack/tabterm/internal/logging/events"
	"github.com/atomicstack/tabterm/internal/palette"
	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/session"
	"github.com/atomicstack/tabterm/internal/vt"
)

// AppState is the single owner of the registry and palette visibility. It is
// only touched from the update loop.
type AppState struct {
	Registry       *session.Registry
	PaletteVisible bool

	shutdown bool
}

func NewAppState() *AppState {
	return &AppState{Registry: session.NewRegistry()}
}

// ShutdownRequested reports whether a shutdown has been issued.
func (s *AppState) ShutdownRequested() bool { return s.shutdown }

// Result reports what a dispatch changed that the caller must act on.
type Result struct {
	// Shutdown is set on exactly one Result over the dispatcher's lifetime.
	Shutdown bool
	// Err carries a collaborator failure, such as a spawn error.
	Err error
	// Created is the id of a session opened by this dispatch.
	Created session.ID
	// Info is a short status message for the user.
	Info string
}

// Options configures a Dispatcher. Zero values select the real collaborators
// where one exists.
type Options struct {
	Engine       session.Engine
	Readers      *session.Readers
	Clipboard    Clipboard
	StartCommand string
	// NewTerminal builds the screen state for a new session.
	NewTerminal func(rows, cols int) session.Terminal
	// NewDecoder builds the decoder a new session's reader owns.
	NewDecoder func() session.Decoder
}

// Dispatcher maps actions onto the registry and the terminal engine.
type Dispatcher struct {
	state        *AppState
	engine       session.Engine
	readers      *session.Readers
	clipboard    Clipboard
	startCommand string
	newTerminal  func(rows, cols int) session.Terminal
	newDecoder   func() session.Decoder
	grid         resize.Grid
}

func New(state *AppState, opts Options) *Dispatcher {
	d := &Dispatcher{
		state:        state,
		engine:       opts.Engine,
		readers:      opts.Readers,
		clipboard:    opts.Clipboard,
		startCommand: opts.StartCommand,
		newTerminal:  opts.NewTerminal,
		newDecoder:   opts.NewDecoder,
		grid:         resize.DefaultGrid,
	}
	if d.clipboard == nil {
		d.clipboard = SystemClipboard{}
	}
	if d.newTerminal == nil {
		d.newTerminal = func(rows, cols int) session.Terminal { return vt.NewScreen(rows, cols) }
	}
	if d.newDecoder == nil {
		d.newDecoder = func() session.Decoder { return vt.NewDecoder() }
	}
	return d
}

func (d *Dispatcher) State() *AppState { return d.state }

// Grid returns the size new sessions are created at.
func (d *Dispatcher) Grid() resize.Grid { return d.grid }

// Dispatch applies a. Once shutdown has been requested further actions are
// ignored.
func (d *Dispatcher) Dispatch(a action.Action) Result {
	if d.state.shutdown {
		return Result{}
	}
	if a.Kind != action.Write {
		events.Action.Dispatch(a.String())
	}
	reg := d.state.Registry

	switch a.Kind {
	case action.NoAction:
		return Result{}
	case action.Write:
		d.write([]byte(a.Text))
		return Result{}
	case action.NewTab:
		return d.Open(d.startCommand)
	case action.CloseTab:
		closed, ok := reg.CloseCurrent()
		return d.afterClose(closed, ok)
	case action.CloseTabAt:
		closed, ok := reg.Close(a.Index)
		return d.afterClose(closed, ok)
	case action.CloseOtherTabs:
		return d.closeOthers()
	case action.Quit:
		return d.requestShutdown("quit")
	case action.OpenSettings:
		return d.openPane(session.KindSettings)
	case action.OpenPluginMenu:
		return d.openPane(session.KindPlugins)
	case action.ToggleCommandPalette:
		d.state.PaletteVisible = !d.state.PaletteVisible
		events.Palette.Toggle(d.state.PaletteVisible)
		return Result{}
	case action.NextTab:
		reg.Next()
		d.traceFocus()
		return Result{}
	case action.PreviousTab:
		reg.Previous()
		d.traceFocus()
		return Result{}
	case action.ClearBuffer:
		if cur := reg.Current(); cur.IsTerminal() {
			cur.Terminal.Clear()
			cur.ScrollToBottom()
		}
		return Result{}
	case action.CopyText:
		return d.copyText()
	case action.PasteText:
		return d.pasteText()
	case action.ScrollUp, action.ScrollDown, action.ScrollUpPage, action.ScrollDownPage,
		action.ScrollToTop, action.ScrollToBottom:
		d.scroll(a.Kind)
		return Result{}
	}

	if action.Unimplemented(a.Kind) {
		events.Action.Unimplemented(a.String())
		return Result{Info: fmt.Sprintf("%s is not available", a.Label())}
	}
	events.Action.Error(fmt.Errorf("unhandled action %s", a))
	return Result{}
}

// Confirm closes the palette and dispatches its selection. It is a no-op
// beyond closing when nothing matches.
func (d *Dispatcher) Confirm(p *palette.Palette) Result {
	d.state.PaletteVisible = false
	sel, ok := p.Selection()
	if !ok {
		events.Palette.Toggle(false)
		return Result{}
	}
	events.Palette.Confirm(sel.Label())
	return d.Dispatch(sel)
}

// Open spawns a terminal session running command, registers it at the
// current grid size and focuses it.
func (d *Dispatcher) Open(command string) Result {
	if d.state.shutdown {
		return Result{}
	}
	if d.engine == nil {
		return Result{Err: errors.New("new tab: no terminal engine")}
	}
	id, err := d.engine.Spawn(command)
	if err != nil {
		err = fmt.Errorf("new tab: %w", err)
		events.Action.Error(err)
		return Result{Err: err}
	}
	src, err := d.engine.Stream(id)
	if err != nil {
		_ = d.engine.Close(id)
		err = fmt.Errorf("new tab: %w", err)
		events.Action.Error(err)
		return Result{Err: err}
	}
	if err := d.engine.Resize(id, d.grid.Rows, d.grid.Cols); err != nil {
		logging.Error(fmt.Errorf("new tab: %w", err))
	}

	reg := d.state.Registry
	s := &session.Session{ID: id, Kind: session.KindTerminal, Terminal: d.newTerminal(d.grid.Rows, d.grid.Cols)}
	reg.Create(s)
	if d.readers != nil {
		d.readers.Start(id, src, d.newDecoder())
	}
	reg.Focus(reg.Len() - 1)
	events.Session.Create(string(id), s.Name, s.Kind.String())
	return Result{Created: id}
}

// SessionEnded removes a session whose output reached end-of-stream. It is a
// no-op if the session was already closed.
func (d *Dispatcher) SessionEnded(id session.ID) Result {
	if d.state.shutdown {
		return Result{}
	}
	events.Session.Closed(string(id))
	closed, err := d.state.Registry.Remove(id)
	if err != nil {
		return Result{}
	}
	return d.afterClose(closed, true)
}

// ResizeAll resizes every terminal session and its process to g.
func (d *Dispatcher) ResizeAll(g resize.Grid) {
	d.grid = g
	for _, s := range d.state.Registry.Terminals() {
		s.Terminal.Resize(g.Rows, g.Cols)
		s.Scroll = min(s.Scroll, s.Terminal.ScrollbackLen())
		if d.engine == nil {
			continue
		}
		if err := d.engine.Resize(s.ID, g.Rows, g.Cols); err != nil {
			logging.Error(fmt.Errorf("resize %s: %w", s.Name, err))
		}
	}
}

// Shutdown closes every terminal session's process.
func (d *Dispatcher) Shutdown() {
	for _, s := range d.state.Registry.Terminals() {
		d.closeEngine(s)
	}
}

func (d *Dispatcher) afterClose(closed session.Closed, ok bool) Result {
	if !ok {
		return Result{}
	}
	events.Session.Close(string(closed.Session.ID), closed.Index, d.state.Registry.Len())
	d.closeEngine(closed.Session)
	if closed.Empty {
		return d.requestShutdown("last session closed")
	}
	return Result{}
}

func (d *Dispatcher) closeOthers() Result {
	reg := d.state.Registry
	keep := reg.Current()
	if keep == nil {
		return Result{}
	}
	for reg.Len() > 1 {
		idx := 0
		if reg.Sessions()[0] == keep {
			idx = 1
		}
		closed, ok := reg.Close(idx)
		d.afterClose(closed, ok)
	}
	reg.Focus(0)
	return Result{}
}

func (d *Dispatcher) closeEngine(s *session.Session) {
	if !s.IsTerminal() || d.engine == nil {
		return
	}
	if err := d.engine.Close(s.ID); err != nil {
		logging.Error(fmt.Errorf("close %s: %w", s.Name, err))
	}
}

func (d *Dispatcher) requestShutdown(reason string) Result {
	if d.state.shutdown {
		return Result{}
	}
	d.state.shutdown = true
	events.Action.Shutdown(reason)
	return Result{Shutdown: true}
}

func (d *Dispatcher) openPane(kind session.Kind) Result {
	reg := d.state.Registry
	s := &session.Session{Kind: kind}
	id := reg.Create(s)
	reg.Focus(reg.Len() - 1)
	events.Session.Create(string(id), s.Name, kind.String())
	return Result{Created: id}
}

// write forwards input to the focused terminal. Other kinds ignore input.
func (d *Dispatcher) write(p []byte) {
	cur := d.state.Registry.Current()
	if !cur.IsTerminal() || d.engine == nil || len(p) == 0 {
		return
	}
	cur.ScrollToBottom()
	if err := d.engine.Write(cur.ID, p); err != nil {
		events.Action.Error(err)
		logging.Error(err)
	}
}

func (d *Dispatcher) scroll(kind action.Kind) {
	cur := d.state.Registry.Current()
	if !cur.IsTerminal() {
		return
	}
	page := max(d.grid.Rows, 1)
	switch kind {
	case action.ScrollUp:
		cur.ScrollBy(1)
	case action.ScrollDown:
		cur.ScrollBy(-1)
	case action.ScrollUpPage:
		cur.ScrollBy(page)
	case action.ScrollDownPage:
		cur.ScrollBy(-page)
	case action.ScrollToTop:
		cur.ScrollToTop()
	case action.ScrollToBottom:
		cur.ScrollToBottom()
	}
}

func (d *Dispatcher) copyText() Result {
	cur := d.state.Registry.Current()
	if !cur.IsTerminal() {
		return Result{}
	}
	text := strings.Join(trimLines(cur.View()), "\n")
	if err := d.clipboard.WriteAll(text); err != nil {
		err = fmt.Errorf("copy: %w", err)
		events.Action.Error(err)
		return Result{Err: err}
	}
	return Result{Info: "copied to clipboard"}
}

func (d *Dispatcher) pasteText() Result {
	cur := d.state.Registry.Current()
	if !cur.IsTerminal() {
		return Result{}
	}
	text, err := d.clipboard.ReadAll()
	if err != nil {
		err = fmt.Errorf("paste: %w", err)
		events.Action.Error(err)
		return Result{Err: err}
	}
	d.write([]byte(text))
	return Result{}
}

func (d *Dispatcher) traceFocus() {
	if cur := d.state.Registry.Current(); cur != nil {
		events.Session.Focus(string(cur.ID), d.state.Registry.FocusIndex())
	}
}

func trimLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " ")
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
