package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/listview"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/theme"
	"github.com/existflow/kudos/internal/validate"
)

// authCheckedMsg carries the result of validating the stored session
type authCheckedMsg struct{ ok bool }

// loginDoneMsg carries the result of a login attempt
type loginDoneMsg struct {
	admin *model.Admin
	err   error
}

// loadedMsg carries a list fetch tagged with the generation it was started under
type loadedMsg[T any] struct {
	tab   Tab
	gen   uint64
	items []T
	err   error
}

type deletedMsg struct {
	tab Tab
	id  string
	err error
}

type toggledMsg struct {
	id        string
	published bool // false means featured
	value     bool
	err       error
}

type revokedMsg struct {
	id  string
	err error
}

type generatedMsg struct {
	token *model.InviteToken
	err   error
}

type themeSetMsg struct {
	theme theme.Theme
	err   error
}

// sessionExpiredMsg is sent when the backend rejects the session mid-use
type sessionExpiredMsg struct{}

// themeChangedMsg is sent when the resolved theme changes
type themeChangedMsg theme.Theme

// pager is the part of a list controller the key handlers need, whatever its item type
type pager interface {
	Query() string
	SetSearch(q string)
	Filter(name string) string
	CycleFilter(name string) string
	ClearFilters()
	SortKey() string
	CycleSort() string
	Page() int
	TotalPages() int
	NextPage()
	PrevPage()
	FirstPage()
	LastPage()
}

func (m Model) list() pager {
	switch m.tab {
	case TabProjects:
		return m.projects
	case TabTestimonials:
		return m.testimonials
	default:
		return m.tokens
	}
}

// Init starts the session check; nothing protected renders until it resolves
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.checkAuth(), m.waitForExpired(), m.waitForTheme())
}

func (m Model) checkAuth() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		return authCheckedMsg{ok: sess.CheckAuth(context.Background())}
	}
}

func (m Model) waitForExpired() tea.Cmd {
	ch := m.expired
	return func() tea.Msg {
		<-ch
		return sessionExpiredMsg{}
	}
}

func (m Model) waitForTheme() tea.Cmd {
	ch := m.themeChanges
	return func() tea.Msg {
		return themeChangedMsg(<-ch)
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authCheckedMsg:
		if !msg.ok {
			logger.Info("No valid session, showing login")
			m.screen = ScreenLogin
			return m, textinput.Blink
		}
		return m, m.enterAdmin()

	case loginDoneMsg:
		m.login.submitting = false
		if msg.err != nil {
			m.login.err = errorMessage(msg.err, "Login failed")
			return m, nil
		}
		m.login = newLoginForm()
		m.message = fmt.Sprintf("Welcome back, %s", displayName(msg.admin))
		return m, m.enterAdmin()

	case sessionExpiredMsg:
		if m.screen == ScreenAdmin {
			m.toLogin("Session expired. Please log in again.")
		}
		return m, tea.Batch(m.waitForExpired(), textinput.Blink)

	case themeChangedMsg:
		m.styles = NewStyles(theme.Theme(msg))
		return m, m.waitForTheme()

	case themeSetMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Theme error: %v", msg.err)
			return m, nil
		}
		m.styles = NewStyles(m.theme.Resolved())
		m.message = fmt.Sprintf("Theme: %s", msg.theme)
		return m, nil

	case loadedMsg[model.Project]:
		applyLoaded(&m, m.projects, msg)
		return m, nil

	case loadedMsg[model.Testimonial]:
		applyLoaded(&m, m.testimonials, msg)
		return m, nil

	case loadedMsg[model.InviteToken]:
		applyLoaded(&m, m.tokens, msg)
		return m, nil

	case deletedMsg:
		m.handleDeleted(msg)
		return m, nil

	case toggledMsg:
		m.handleToggled(msg)
		return m, nil

	case revokedMsg:
		m.busy = false
		if msg.err != nil {
			m.message = errorMessage(msg.err, "Failed to revoke token")
			return m, nil
		}
		m.tokens.Update(func(t model.InviteToken) bool { return t.ID == msg.id }, func(t *model.InviteToken) {
			t.Status = model.TokenRevoked
		})
		m.clampCursor()
		m.message = "Token revoked"
		return m, nil

	case generatedMsg:
		m.generating = false
		if msg.err != nil {
			m.message = errorMessage(msg.err, "Failed to generate token")
			return m, nil
		}
		m.tokens.Prepend(*msg.token)
		m.message = "Invite link: " + msg.token.Link(m.cfg.ReviewBaseURL)
		return m, nil

	case tea.KeyMsg:
		switch m.screen {
		case ScreenChecking:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case ScreenLogin:
			return m.updateLogin(msg)
		}

		switch m.mode {
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirm:
			return m.updateConfirm(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m.updateInputs(msg)
}

// updateInputs forwards other messages, such as cursor blinks, to the focused input
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == ScreenLogin && m.login.focus == 0:
		m.login.username, cmd = m.login.username.Update(msg)
	case m.screen == ScreenLogin:
		m.login.password, cmd = m.login.password.Update(msg)
	case m.mode == ModeSearch:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func applyLoaded[T any](m *Model, c *listview.Controller[T], msg loadedMsg[T]) {
	if msg.gen != c.Generation() {
		logger.Debug("Dropping stale list response", logger.F("tab", msg.tab.String()), logger.F("gen", msg.gen))
		return
	}
	m.loading[msg.tab] = false
	if msg.err != nil {
		m.message = errorMessage(msg.err, "Failed to load "+strings.ToLower(msg.tab.String()))
		return
	}
	c.Replace(msg.gen, msg.items)
	m.clampCursor()
}

// enterAdmin switches to the admin screen and loads every list
func (m *Model) enterAdmin() tea.Cmd {
	m.screen = ScreenAdmin
	m.mode = ModeNormal
	return tea.Batch(m.reload(TabProjects), m.reload(TabTestimonials), m.reload(TabTokens))
}

func (m *Model) toLogin(message string) {
	m.screen = ScreenLogin
	m.mode = ModeNormal
	m.confirm = nil
	m.busy = false
	m.generating = false
	m.login = newLoginForm()
	m.message = message
	m.login.err = message

	// Invalidate in-flight loads and drop cached rows
	m.projects.Replace(m.projects.BeginLoad(), nil)
	m.testimonials.Replace(m.testimonials.BeginLoad(), nil)
	m.tokens.Replace(m.tokens.BeginLoad(), nil)
	m.projects.ClearFilters()
	m.testimonials.ClearFilters()
	m.tokens.ClearFilters()
	m.loading = [tabCount]bool{}
	m.cursor = [tabCount]int{}
}

// reload starts a fetch for tab; a newer fetch supersedes any in flight
func (m *Model) reload(tab Tab) tea.Cmd {
	m.loading[tab] = true
	b := m.backend
	switch tab {
	case TabProjects:
		return loadCmd(m.projects, tab, b.ListProjects)
	case TabTestimonials:
		return loadCmd(m.testimonials, tab, func(ctx context.Context) ([]model.Testimonial, error) {
			return b.ListTestimonials(ctx, api.TestimonialQuery{})
		})
	default:
		return loadCmd(m.tokens, tab, b.ListTokens)
	}
}

func loadCmd[T any](c *listview.Controller[T], tab Tab, fetch func(context.Context) ([]T, error)) tea.Cmd {
	gen := c.BeginLoad()
	return func() tea.Msg {
		items, err := fetch(context.Background())
		return loadedMsg[T]{tab: tab, gen: gen, items: items, err: err}
	}
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		m.setLoginFocus(1 - m.login.focus)
		return m, textinput.Blink

	case "enter":
		if m.login.focus == 0 {
			m.setLoginFocus(1)
			return m, textinput.Blink
		}
		if m.login.submitting {
			return m, nil
		}
		m.login.submitting = true
		m.login.err = ""
		creds := model.Credentials{
			Username: strings.TrimSpace(m.login.username.Value()),
			Password: m.login.password.Value(),
		}
		sess := m.session
		return m, func() tea.Msg {
			admin, err := sess.Login(context.Background(), creds)
			return loginDoneMsg{admin: admin, err: err}
		}
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.username, cmd = m.login.username.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) setLoginFocus(i int) {
	m.login.focus = i
	if i == 0 {
		m.login.username.Focus()
		m.login.password.Blur()
	} else {
		m.login.username.Blur()
		m.login.password.Focus()
	}
}

// handleNormalKeys handles key presses on the admin screen
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.list()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.NextTab):
		m.tab = (m.tab + 1) % tabCount

	case key.Matches(msg, keys.PrevTab):
		m.tab = (m.tab + tabCount - 1) % tabCount

	case msg.String() == "1", msg.String() == "2", msg.String() == "3":
		m.tab = Tab(msg.String()[0] - '1')

	case key.Matches(msg, keys.Up):
		if m.cursor[m.tab] > 0 {
			m.cursor[m.tab]--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor[m.tab] < m.visibleCount()-1 {
			m.cursor[m.tab]++
		}

	case key.Matches(msg, keys.PrevPage):
		l.PrevPage()
		m.cursor[m.tab] = 0

	case key.Matches(msg, keys.NextPage):
		l.NextPage()
		m.cursor[m.tab] = 0

	case key.Matches(msg, keys.FirstPage):
		l.FirstPage()
		m.cursor[m.tab] = 0

	case key.Matches(msg, keys.LastPage):
		l.LastPage()
		m.cursor[m.tab] = 0

	case key.Matches(msg, keys.Search):
		m.mode = ModeSearch
		m.search.SetValue(l.Query())
		m.search.CursorEnd()
		m.search.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Filter):
		v := l.CycleFilter(listview.FilterStatus)
		m.cursor[m.tab] = 0
		m.message = "Status: " + orAll(v)

	case key.Matches(msg, keys.Rating):
		if m.tab == TabTestimonials {
			v := l.CycleFilter(listview.FilterRating)
			m.cursor[m.tab] = 0
			if v == "" {
				m.message = "Rating: all"
			} else {
				m.message = "Rating: " + v + "+ stars"
			}
		}

	case key.Matches(msg, keys.Sort):
		if k := l.CycleSort(); k != "" {
			m.cursor[m.tab] = 0
			m.message = "Sort: " + k
		}

	case key.Matches(msg, keys.Escape):
		l.ClearFilters()
		m.cursor[m.tab] = 0
		m.message = "Filters cleared"

	case key.Matches(msg, keys.Refresh):
		if m.loading[m.tab] {
			return m, nil
		}
		return m, m.reload(m.tab)

	case key.Matches(msg, keys.Delete):
		return m.startDelete()

	case key.Matches(msg, keys.Featured):
		return m.toggle(false)

	case key.Matches(msg, keys.Published):
		return m.toggle(true)

	case key.Matches(msg, keys.Revoke):
		return m.revoke()

	case key.Matches(msg, keys.Generate):
		return m.generate()

	case key.Matches(msg, keys.Theme):
		next := m.theme.Theme().Next()
		th := m.theme
		return m, func() tea.Msg {
			return themeSetMsg{theme: next, err: th.Set(context.Background(), next)}
		}

	case key.Matches(msg, keys.Logout):
		m.session.Logout()
		m.toLogin("")
		m.message = "Logged out"
		return m, textinput.Blink

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp
	}

	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.list()
	switch {
	case key.Matches(msg, keys.Escape):
		l.SetSearch("")
		m.search.SetValue("")
		m.search.Blur()
		m.mode = ModeNormal
		m.cursor[m.tab] = 0
		return m, nil

	case key.Matches(msg, keys.Enter):
		m.search.Blur()
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != l.Query() {
		l.SetSearch(m.search.Value())
		m.cursor[m.tab] = 0
	}
	return m, cmd
}

func (m Model) startDelete() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	var pending *pendingDelete
	switch m.tab {
	case TabProjects:
		if p := m.currentProject(); p != nil {
			pending = &pendingDelete{tab: TabProjects, id: p.ID, label: fmt.Sprintf("project %q", p.Name)}
		}
	case TabTestimonials:
		if t := m.currentTestimonial(); t != nil {
			pending = &pendingDelete{tab: TabTestimonials, id: t.ID, label: fmt.Sprintf("testimonial from %s", t.ClientName)}
		}
	default:
		m.message = "Tokens are revoked, not deleted (x)"
	}
	if pending == nil {
		return m, nil
	}

	if m.cfg.ConfirmDelete {
		m.confirm = pending
		m.mode = ModeConfirm
		return m, nil
	}
	return m, m.deleteCmd(*pending)
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.confirm
	m.confirm = nil
	m.mode = ModeNormal
	if pending == nil || !key.Matches(msg, keys.Confirm) {
		m.message = "Cancelled"
		return m, nil
	}
	return m, m.deleteCmd(*pending)
}

func (m *Model) deleteCmd(p pendingDelete) tea.Cmd {
	m.busy = true
	b := m.backend
	return func() tea.Msg {
		var err error
		if p.tab == TabProjects {
			err = b.DeleteProject(context.Background(), p.id)
		} else {
			err = b.DeleteTestimonial(context.Background(), p.id)
		}
		return deletedMsg{tab: p.tab, id: p.id, err: err}
	}
}

func (m *Model) handleDeleted(msg deletedMsg) {
	m.busy = false
	if msg.err != nil {
		m.message = errorMessage(msg.err, "Failed to delete")
		return
	}

	switch msg.tab {
	case TabProjects:
		m.projects.Remove(func(p model.Project) bool { return p.ID == msg.id })
		m.testimonials.Remove(func(t model.Testimonial) bool { return t.ProjectID == msg.id })
		m.tokens.Remove(func(t model.InviteToken) bool { return t.ProjectID == msg.id })
		m.message = "Project deleted"
	case TabTestimonials:
		m.testimonials.Remove(func(t model.Testimonial) bool { return t.ID == msg.id })
		m.message = "Testimonial deleted"
	}
	m.clampCursor()
}

func (m Model) toggle(published bool) (tea.Model, tea.Cmd) {
	if m.tab != TabTestimonials || m.busy {
		return m, nil
	}
	t := m.currentTestimonial()
	if t == nil {
		return m, nil
	}

	m.busy = true
	b := m.backend
	id := t.ID
	return m, func() tea.Msg {
		var value bool
		var err error
		if published {
			value, err = b.TogglePublished(context.Background(), id)
		} else {
			value, err = b.ToggleFeatured(context.Background(), id)
		}
		return toggledMsg{id: id, published: published, value: value, err: err}
	}
}

func (m *Model) handleToggled(msg toggledMsg) {
	m.busy = false
	if msg.err != nil {
		m.message = errorMessage(msg.err, "Failed to update testimonial")
		return
	}

	m.testimonials.Update(func(t model.Testimonial) bool { return t.ID == msg.id }, func(t *model.Testimonial) {
		if msg.published {
			t.IsPublished = msg.value
		} else {
			t.IsFeatured = msg.value
		}
	})
	m.clampCursor()

	switch {
	case msg.published && msg.value:
		m.message = "Testimonial published"
	case msg.published:
		m.message = "Testimonial unpublished"
	case msg.value:
		m.message = "Testimonial featured"
	default:
		m.message = "Testimonial unfeatured"
	}
}

func (m Model) revoke() (tea.Model, tea.Cmd) {
	if m.tab != TabTokens || m.busy {
		return m, nil
	}
	t := m.currentToken()
	if t == nil {
		return m, nil
	}
	if !t.IsActive() {
		m.message = "Only active tokens can be revoked"
		return m, nil
	}

	m.busy = true
	b := m.backend
	id := t.ID
	return m, func() tea.Msg {
		return revokedMsg{id: id, err: b.RevokeToken(context.Background(), id)}
	}
}

func (m Model) generate() (tea.Model, tea.Cmd) {
	if m.tab != TabProjects || m.generating {
		return m, nil
	}
	p := m.currentProject()
	if p == nil {
		return m, nil
	}

	req := model.TokenRequest{ProjectID: p.ID, ExpiresHours: model.DefaultExpiresHours}
	if err := validate.Token(&req); err != nil {
		m.message = errorMessage(err, "Invalid token request")
		return m, nil
	}

	m.generating = true
	b := m.backend
	return m, func() tea.Msg {
		tok, err := b.GenerateToken(context.Background(), req)
		return generatedMsg{token: tok, err: err}
	}
}

// errorMessage turns any error into a single display line
func errorMessage(err error, fallback string) string {
	if fe, ok := validate.AsErrors(err); ok {
		fields := make([]string, 0, len(fe))
		for f := range fe {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs = append(msgs, fe[f])
		}
		return strings.Join(msgs, ", ")
	}
	return api.Message(err, fallback)
}

func displayName(a *model.Admin) string {
	if a == nil {
		return ""
	}
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

func orAll(v string) string {
	if v == "" {
		return "all"
	}
	return v
}
