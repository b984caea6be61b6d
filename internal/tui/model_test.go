package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/config"
	"github.com/existflow/kudos/internal/db"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/session"
	"github.com/existflow/kudos/internal/theme"
)

// --- Mock backend ---

type mockBackend struct {
	mu           sync.Mutex
	projects     []model.Project
	testimonials []model.Testimonial
	tokens       []model.InviteToken
	listErr      error

	deleted   []string
	revoked   []string
	generated []model.TokenRequest
}

func (b *mockBackend) ListProjects(context.Context) ([]model.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Project(nil), b.projects...), b.listErr
}

func (b *mockBackend) DeleteProject(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *mockBackend) ListTestimonials(context.Context, api.TestimonialQuery) ([]model.Testimonial, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.Testimonial(nil), b.testimonials...), b.listErr
}

func (b *mockBackend) DeleteTestimonial(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, id)
	return nil
}

func (b *mockBackend) ToggleFeatured(_ context.Context, id string) (bool, error) {
	return true, nil
}

func (b *mockBackend) TogglePublished(_ context.Context, id string) (bool, error) {
	return false, nil
}

func (b *mockBackend) ListTokens(context.Context) ([]model.InviteToken, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.InviteToken(nil), b.tokens...), b.listErr
}

func (b *mockBackend) GenerateToken(_ context.Context, req model.TokenRequest) (*model.InviteToken, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generated = append(b.generated, req)
	return &model.InviteToken{ID: "k-new", Token: "fresh", ProjectID: req.ProjectID, Status: model.TokenActive}, nil
}

func (b *mockBackend) RevokeToken(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked = append(b.revoked, id)
	return nil
}

type mockAuth struct {
	meErr error
}

func (a *mockAuth) Login(_ context.Context, c model.Credentials) (*model.AuthResponse, error) {
	if c.Password != "pw" {
		return nil, &api.APIError{Status: 401, Detail: api.StringDetail("Incorrect username or password")}
	}
	return &model.AuthResponse{AccessToken: "tok", Admin: model.Admin{ID: "a1", Username: c.Username}}, nil
}

func (a *mockAuth) Register(context.Context, model.Registration) (*model.AuthResponse, error) {
	return nil, errors.New("not used")
}

func (a *mockAuth) Me(context.Context) (*model.Admin, error) {
	if a.meErr != nil {
		return nil, a.meErr
	}
	return &model.Admin{ID: "a1", Username: "ana"}, nil
}

// --- Test helpers ---

func seed(b *mockBackend, projects int) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= projects; i++ {
		id := fmt.Sprintf("p%d", i)
		b.projects = append(b.projects, model.Project{
			ID: id, Name: fmt.Sprintf("Project %02d", i), ClientName: "Client",
			Status: model.ProjectActive, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	b.testimonials = []model.Testimonial{
		{ID: "t1", ProjectID: "p1", ProjectName: "Project 01", ClientName: "Ana", Title: "Great", Rating: 5, CreatedAt: base},
		{ID: "t2", ProjectID: "p2", ProjectName: "Project 02", ClientName: "Bo", Title: "Fine", Rating: 3, CreatedAt: base.Add(time.Hour)},
	}
	b.tokens = []model.InviteToken{
		{ID: "k1", Token: "abc", ProjectID: "p1", ProjectName: "Project 01", Status: model.TokenActive, CreatedAt: base},
	}
}

func newTestModel(t *testing.T, b *mockBackend, auth *mockAuth, storedToken bool) Model {
	t.Helper()
	ctx := context.Background()
	store := db.NewMemory()
	if storedToken {
		require.NoError(t, store.Set(ctx, db.KeyToken, "tok"))
	}

	sess := session.New(store, auth)
	require.NoError(t, sess.Hydrate(ctx))

	th := theme.New(store, theme.NewStaticPreference(true))
	require.NoError(t, th.Init(ctx))
	t.Cleanup(th.Close)

	cfg := config.DefaultConfig()
	m := NewModel(b, sess, th, cfg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)
	staticCursors(&m)
	return m
}

// staticCursors stops text inputs from returning blink timers
func staticCursors(m *Model) {
	m.login.username.Cursor.SetMode(cursor.CursorStatic)
	m.login.password.Cursor.SetMode(cursor.CursorStatic)
	m.search.Cursor.SetMode(cursor.CursorStatic)
}

// dispatch sends msg and follows any commands that resolve to this package's own messages.
// Spinner ticks and cursor blinks are dropped so tests never sleep.
func dispatch(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	return follow(t, next.(Model), cmd)
}

func follow(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			m = follow(t, m, c)
		}
		return m
	case authCheckedMsg, loginDoneMsg, loadedMsg[model.Project], loadedMsg[model.Testimonial],
		loadedMsg[model.InviteToken], deletedMsg, toggledMsg, revokedMsg, generatedMsg, themeSetMsg:
		return dispatch(t, m, msg)
	}
	return m
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	return dispatch(t, m, msg)
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = press(t, m, string(r))
	}
	return m
}

func signedIn(t *testing.T, b *mockBackend) Model {
	t.Helper()
	m := newTestModel(t, b, &mockAuth{}, true)
	m = follow(t, m, m.checkAuth())
	require.Equal(t, ScreenAdmin, m.Screen())
	return m
}

// --- Tests ---

func TestGuard_ShowsSpinnerUntilChecked(t *testing.T) {
	b := &mockBackend{}
	seed(b, 3)
	m := newTestModel(t, b, &mockAuth{}, true)

	assert.Equal(t, ScreenChecking, m.Screen())
	view := m.View()
	assert.Contains(t, view, "Checking session")
	assert.NotContains(t, view, "Project 01")

	m = press(t, m, "q")
	assert.Equal(t, ScreenChecking, m.Screen(), "keys are ignored until the check resolves")
}

func TestGuard_NoTokenGoesToLogin(t *testing.T) {
	m := newTestModel(t, &mockBackend{}, &mockAuth{}, false)
	m = follow(t, m, m.checkAuth())
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Contains(t, m.View(), "Sign in")
}

func TestGuard_RejectedTokenGoesToLogin(t *testing.T) {
	m := newTestModel(t, &mockBackend{}, &mockAuth{meErr: api.ErrNetwork}, true)
	m = follow(t, m, m.checkAuth())
	assert.Equal(t, ScreenLogin, m.Screen())
}

func TestLogin_FailureThenSuccess(t *testing.T) {
	b := &mockBackend{}
	seed(b, 13)
	m := newTestModel(t, b, &mockAuth{}, false)
	m = follow(t, m, m.checkAuth())

	m = typeText(t, m, "ana")
	m = press(t, m, "tab")
	m = typeText(t, m, "nope")
	m = press(t, m, "enter")
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Contains(t, m.View(), "Incorrect username or password")

	m.login.password.SetValue("pw")
	m = press(t, m, "enter")
	require.Equal(t, ScreenAdmin, m.Screen())
	assert.Equal(t, 13, m.projects.Len())
	assert.Equal(t, 3, m.projects.TotalPages())
	assert.Contains(t, m.View(), "Showing 1–6 of 13")
}

func TestPagingKeys(t *testing.T) {
	b := &mockBackend{}
	seed(b, 13)
	m := signedIn(t, b)

	m = press(t, m, "]")
	assert.Equal(t, 2, m.projects.Page())
	m = press(t, m, "G")
	assert.Equal(t, 3, m.projects.Page())
	assert.Len(t, m.projects.Visible(), 1)
	m = press(t, m, "l")
	assert.Equal(t, 3, m.projects.Page())
	m = press(t, m, "g")
	assert.Equal(t, 1, m.projects.Page())
}

func TestSearchResetsPage(t *testing.T) {
	b := &mockBackend{}
	seed(b, 13)
	m := signedIn(t, b)

	m = press(t, m, "G")
	m = press(t, m, "/")
	require.Equal(t, ModeSearch, m.mode)
	m = typeText(t, m, "project 1")
	assert.Equal(t, 1, m.projects.Page())
	assert.Equal(t, 4, m.projects.Total()) // 10, 11, 12, 13

	m = press(t, m, "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, "project 1", m.projects.Query())
}

func TestStaleLoadDropped(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)

	first := m.reload(TabProjects)
	stale := first()

	b.mu.Lock()
	b.projects = b.projects[:1]
	b.mu.Unlock()
	second := m.reload(TabProjects)
	m = follow(t, m, second)

	m = dispatch(t, m, stale)
	assert.Equal(t, 1, m.projects.Len())
	assert.False(t, m.loading[TabProjects])
}

func TestDeleteProjectWithConfirm(t *testing.T) {
	b := &mockBackend{}
	seed(b, 7)
	m := signedIn(t, b)

	m = press(t, m, "G")
	require.Equal(t, 2, m.projects.Page())
	target := m.currentProject().ID

	m = press(t, m, "d")
	require.Equal(t, ModeConfirm, m.mode)
	assert.Contains(t, m.View(), "Delete project")

	m = press(t, m, "y")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, []string{target}, b.deleted)
	assert.Equal(t, 6, m.projects.Len())
	assert.Equal(t, 1, m.projects.Page(), "emptied page steps back")
	assert.Equal(t, "Project deleted", m.Message())
}

func TestDeleteCancelled(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)

	m = press(t, m, "d")
	m = press(t, m, "n")
	assert.Empty(t, b.deleted)
	assert.Equal(t, "Cancelled", m.Message())
}

func TestToggleFeatured(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)

	m = press(t, m, "tab")
	require.Equal(t, TabTestimonials, m.Tab())
	id := m.currentTestimonial().ID

	m = press(t, m, "F")
	assert.False(t, m.busy)
	for _, tm := range m.testimonials.Items() {
		if tm.ID == id {
			assert.True(t, tm.IsFeatured)
		}
	}
	assert.Equal(t, "Testimonial featured", m.Message())
}

func TestBusyBlocksSecondMutation(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)
	m = press(t, m, "tab")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("P")})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.busy)

	_, again := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("F")})
	assert.Nil(t, again)
}

func TestGenerateAndRevokeToken(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)

	m = press(t, m, "n")
	require.Len(t, b.generated, 1)
	assert.Equal(t, model.DefaultExpiresHours, b.generated[0].ExpiresHours)
	assert.Contains(t, m.Message(), "?token=fresh")
	assert.Equal(t, 2, m.tokens.Len())

	m = press(t, m, "3")
	require.Equal(t, TabTokens, m.Tab())
	m = press(t, m, "x")
	require.Len(t, b.revoked, 1)
	assert.Equal(t, "Token revoked", m.Message())

	m = press(t, m, "x")
	assert.Len(t, b.revoked, 1, "revoked tokens cannot be revoked again")
}

func TestSessionExpiredReturnsToLogin(t *testing.T) {
	b := &mockBackend{}
	seed(b, 2)
	m := signedIn(t, b)

	next, _ := m.Update(sessionExpiredMsg{})
	m = next.(Model)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Zero(t, m.projects.Len())
	assert.Contains(t, m.View(), "Session expired")
}

func TestThemeCycleAndLogout(t *testing.T) {
	b := &mockBackend{}
	seed(b, 1)
	m := signedIn(t, b)

	m = press(t, m, "t")
	assert.Equal(t, theme.System, m.theme.Theme())
	assert.Equal(t, "Theme: system", m.Message())

	next, _ := m.Update(themeChangedMsg(theme.Light))
	m = next.(Model)
	assert.Equal(t, PaletteFor(theme.Light), m.styles.Palette)

	m = press(t, m, "L")
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.False(t, m.session.IsAuthenticated())
}

func TestHelpScreen(t *testing.T) {
	b := &mockBackend{}
	m := signedIn(t, b)

	m = press(t, m, "?")
	view := m.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.True(t, strings.Contains(view, "toggle featured"))

	m = press(t, m, "j")
	assert.Equal(t, ModeNormal, m.mode)
}
