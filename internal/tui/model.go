package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/config"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/session"
	"github.com/existflow/kudos/internal/theme"
)

// Backend is the admin API used by the TUI
type Backend interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListTestimonials(ctx context.Context, q api.TestimonialQuery) ([]model.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id string) error
	ToggleFeatured(ctx context.Context, id string) (bool, error)
	TogglePublished(ctx context.Context, id string) (bool, error)
	ListTokens(ctx context.Context) ([]model.InviteToken, error)
	GenerateToken(ctx context.Context, req model.TokenRequest) (*model.InviteToken, error)
	RevokeToken(ctx context.Context, id string) error
}

// Screen is the top-level route
type Screen int

const (
	// ScreenChecking is shown while the stored session is validated
	ScreenChecking Screen = iota
	ScreenLogin
	ScreenAdmin
)

// Tab is the admin list being shown
type Tab int

const (
	TabProjects Tab = iota
	TabTestimonials
	TabTokens
	tabCount
)

// String returns the tab title
func (t Tab) String() string {
	switch t {
	case TabProjects:
		return "Projects"
	case TabTestimonials:
		return "Testimonials"
	case TabTokens:
		return "Tokens"
	default:
		return "?"
	}
}

// Mode represents the current input mode inside the admin screen
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirm
	ModeHelp
)

// pendingDelete is what a confirmation prompt will delete
type pendingDelete struct {
	tab   Tab
	id    string
	label string
}

// loginForm holds the login screen inputs
type loginForm struct {
	username   textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	err        string
}

// Model is the main TUI model
type Model struct {
	backend Backend
	session *session.Store
	theme   *theme.Store
	cfg     *config.Config
	styles  Styles

	// Channels fed by session and theme callbacks
	expired      chan struct{}
	themeChanges chan theme.Theme

	// UI state
	width   int
	height  int
	screen  Screen
	tab     Tab
	mode    Mode
	spinner spinner.Model
	login   loginForm
	search  textinput.Model
	confirm *pendingDelete

	projects     *listview.Controller[model.Project]
	testimonials *listview.Controller[model.Testimonial]
	tokens       *listview.Controller[model.InviteToken]
	cursor       [tabCount]int
	loading      [tabCount]bool

	busy       bool // a delete/toggle/revoke is in flight
	generating bool

	message string
}

// NewModel creates a new TUI model. The theme store must already be initialized.
func NewModel(backend Backend, sess *session.Store, th *theme.Store, cfg *config.Config) Model {
	logger.Info("Initializing TUI model")

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	search := textinput.New()
	search.Placeholder = "search..."
	search.CharLimit = 128
	search.Width = 40

	m := Model{
		backend:      backend,
		session:      sess,
		theme:        th,
		cfg:          cfg,
		styles:       NewStyles(th.Resolved()),
		expired:      make(chan struct{}, 1),
		themeChanges: make(chan theme.Theme, 1),
		screen:       ScreenChecking,
		spinner:      sp,
		login:        newLoginForm(),
		search:       search,
		projects:     listview.Projects(cfg.PageSizes.Projects),
		testimonials: listview.AdminTestimonials(cfg.PageSizes.Testimonials),
		tokens:       listview.Tokens(cfg.PageSizes.Tokens),
	}

	// Non-blocking sends; the Update loop drains them
	sess.OnUnauthorized(func() {
		select {
		case m.expired <- struct{}{}:
		default:
		}
	})
	th.OnChange(func(resolved theme.Theme) {
		select {
		case m.themeChanges <- resolved:
		default:
		}
	})

	return m
}

func newLoginForm() loginForm {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Width = 30
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.Width = 30
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return loginForm{username: username, password: password}
}

// Screen returns the current route
func (m Model) Screen() Screen { return m.screen }

// Tab returns the current tab
func (m Model) Tab() Tab { return m.tab }

// Message returns the status bar message
func (m Model) Message() string { return m.message }

func (m Model) currentProject() *model.Project {
	items := m.projects.Visible()
	if c := m.cursor[TabProjects]; c < len(items) {
		return &items[c]
	}
	return nil
}

func (m Model) currentTestimonial() *model.Testimonial {
	items := m.testimonials.Visible()
	if c := m.cursor[TabTestimonials]; c < len(items) {
		return &items[c]
	}
	return nil
}

func (m Model) currentToken() *model.InviteToken {
	items := m.tokens.Visible()
	if c := m.cursor[TabTokens]; c < len(items) {
		return &items[c]
	}
	return nil
}

// visibleCount returns the number of rows on the current page of the current tab
func (m Model) visibleCount() int {
	return m.visibleCountOf(m.tab)
}

func (m Model) visibleCountOf(tab Tab) int {
	switch tab {
	case TabProjects:
		return len(m.projects.Visible())
	case TabTestimonials:
		return len(m.testimonials.Visible())
	default:
		return len(m.tokens.Visible())
	}
}

// clampCursor keeps every tab's cursor on a visible row
func (m *Model) clampCursor() {
	for tab := Tab(0); tab < tabCount; tab++ {
		if n := m.visibleCountOf(tab); m.cursor[tab] >= n {
			m.cursor[tab] = max(0, n-1)
		}
	}
}
