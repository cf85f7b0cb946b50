package ui

import (
	"context"
	"reflect"
	"time"

	"github.com/atomicstack/tabterm/internal/action"
	"github.com/atomicstack/tabterm/internal/backend"
	"github.com/atomicstack/tabterm/internal/dispatch"
	"github.com/atomicstack/tabterm/internal/keymap"
	"github.com/atomicstack/tabterm/internal/palette"
	"github.com/atomicstack/tabterm/internal/resize"
	"github.com/atomicstack/tabterm/internal/session"
	"github.com/atomicstack/tabterm/internal/theme"
	"github.com/atomicstack/tabterm/internal/tmux"
	"github.com/atomicstack/tabterm/internal/ui/command"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Options wires the model to the session core.
type Options struct {
	// Context bounds the wait for terminal output. Defaults to Background.
	Context      context.Context
	Dispatcher   *dispatch.Dispatcher
	Synchronizer *session.Synchronizer
	// Measurer reports cell metrics. Nil leaves the negotiator on its
	// defaults until a metricsMsg arrives.
	Measurer    resize.Measurer
	FontSize    float64
	Keymap      *keymap.Keymap
	PaletteMode palette.Mode
	ShowTabs    bool
	// Settings is shown as a key/value table in settings tabs.
	Settings [][]string
	Watcher  *backend.Watcher
}

// Model implements the Bubble Tea model for the tabbed terminal.
type Model struct {
	ctx        context.Context
	state      *dispatch.AppState
	dispatcher *dispatch.Dispatcher
	syncer     *session.Synchronizer
	negotiator *resize.Negotiator
	measurer   resize.Measurer
	fontSize   float64
	keys       *keymap.Keymap
	palette    *palette.Palette
	input      textinput.Model
	bus        *command.Bus

	backend        *backend.Watcher
	backendLastErr map[backend.Kind]string
	tmuxSessions   []tmux.Session

	settings [][]string
	showTabs bool
	width    int
	height   int
	errMsg   string
	infoMsg  string
	// infoExpire is when infoMsg stops being shown.
	infoExpire time.Time
	quitting   bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds the model around an existing dispatcher. The dispatcher is
// also the negotiator's sink, so grid changes resize every terminal.
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	keys := opts.Keymap
	if keys == nil {
		keys = keymap.Default()
	}
	m := &Model{
		ctx:            ctx,
		state:          opts.Dispatcher.State(),
		dispatcher:     opts.Dispatcher,
		syncer:         opts.Synchronizer,
		negotiator:     resize.NewNegotiator(opts.Dispatcher),
		measurer:       opts.Measurer,
		fontSize:       opts.FontSize,
		keys:           keys,
		palette:        palette.New(action.PaletteCatalog(), opts.PaletteMode),
		input:          newPaletteInput(),
		bus:            command.New(),
		backend:        opts.Watcher,
		backendLastErr: map[backend.Kind]string{},
		settings:       opts.Settings,
		showTabs:       opts.ShowTabs,
	}
	m.registerHandlers()
	return m
}

func newPaletteInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "Type a command"
	in.CharLimit = 64
	in.Cursor.SetMode(cursor.CursorStatic)
	if styles.PalettePrompt != nil {
		in.PromptStyle = *styles.PalettePrompt
	}
	if styles.PalettePlaceholder != nil {
		in.PlaceholderStyle = *styles.PalettePlaceholder
	}
	return in
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.syncer != nil {
		cmds = append(cmds, m.waitForOutput())
	}
	if m.measurer != nil {
		cmds = append(cmds, m.measureCmd())
	}
	if m.backend != nil {
		cmds = append(cmds, waitForBackendEvent(m.backend))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(outputMsg{}):         m.handleOutputMsg,
		reflect.TypeOf(renderedMsg{}):       m.handleRenderedMsg,
		reflect.TypeOf(metricsMsg{}):        m.handleMetricsMsg,
		reflect.TypeOf(backendEventMsg{}):   m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):    m.handleBackendDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

// Grid returns the grid terminals are currently sized to.
func (m *Model) Grid() resize.Grid {
	return m.dispatcher.Grid()
}
