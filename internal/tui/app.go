package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/bmarks/internal/logger"
	"github.com/nikbrunner/bmarks/internal/session"
	"github.com/nikbrunner/bmarks/internal/tui/layout"
)

// App is the bubbletea model for the bookmark manager.
// It translates key presses into session intents and renders the session.
type App struct {
	ctx     context.Context
	session *session.Session
	log     logger.Logger
	keys    KeyMap
	styles  Styles
	layout  layout.LayoutConfig

	// Last dispatch failure, shown in the status line until the next key.
	err error

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Context context.Context // optional, uses context.Background if nil
	Session *session.Session
	Logger  logger.Logger // optional, uses a no-op logger if nil
	Keys    *KeyMap       // optional, uses default if nil
	Styles  *Styles       // optional, uses default if nil
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	ctx := params.Context
	if ctx == nil {
		ctx = context.Background()
	}

	log := params.Logger
	if log == nil {
		log = logger.Nop()
	}

	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	return App{
		ctx:     ctx,
		session: params.Session,
		log:     log.With(logger.String("component", "tui")),
		keys:    keys,
		styles:  styles,
		layout:  layout.DefaultConfig(),
		width:   80,
		height:  24,
	}
}

// Session returns the session driven by the app.
func (a App) Session() *session.Session {
	return a.session
}

// Err returns the error of the last dispatched intent, if it failed.
func (a App) Err() error {
	return a.err
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		in := a.intentFor(msg)
		if in == nil {
			return a, nil
		}

		a.err = a.session.Dispatch(a.ctx, in)
		if a.err != nil {
			a.log.Error("action failed", logger.Error(a.err))
		}

		if a.session.ShouldQuit() {
			return a, tea.Quit
		}
	}

	return a, nil
}

// intentFor maps a key press to the session intent it triggers.
func (a App) intentFor(msg tea.KeyMsg) session.Intent {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return session.Quit{}
	case key.Matches(msg, a.keys.Help):
		return session.ToggleHelp{}
	case key.Matches(msg, a.keys.Create):
		return session.ToggleCreate{}
	case key.Matches(msg, a.keys.Sync):
		return session.Sync{}
	case key.Matches(msg, a.keys.Reset):
		return session.Reset{}
	case key.Matches(msg, a.keys.ToggleSearch):
		return session.ToggleMode{}
	case key.Matches(msg, a.keys.NextField):
		return session.AdvanceField{}
	case key.Matches(msg, a.keys.Confirm):
		return session.Confirm{}
	case key.Matches(msg, a.keys.Delete):
		return session.Delete{}
	case key.Matches(msg, a.keys.Up):
		return session.Up{}
	case key.Matches(msg, a.keys.Down):
		return session.Down{}
	case key.Matches(msg, a.keys.Left):
		return session.Left{}
	}

	if _, scrolling := a.session.Mode().(session.Scrolling); scrolling {
		switch {
		case key.Matches(msg, a.keys.ScrollUp):
			return session.Up{}
		case key.Matches(msg, a.keys.ScrollDown):
			return session.Down{}
		case key.Matches(msg, a.keys.Yank):
			return session.Yank{}
		case key.Matches(msg, a.keys.RemoveFilter):
			return session.RemoveFilter{}
		}
		return nil
	}

	return session.EditText{Key: msg}
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
