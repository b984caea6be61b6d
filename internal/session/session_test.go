package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kudos/internal/api"
	"github.com/existflow/kudos/internal/db"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
)

type fakeAuth struct {
	loginCalls    int
	registerCalls int
	meCalls       int

	resp  *model.AuthResponse
	me    *model.Admin
	err   error
	meErr error
}

func (f *fakeAuth) Login(_ context.Context, _ model.Credentials) (*model.AuthResponse, error) {
	f.loginCalls++
	return f.resp, f.err
}

func (f *fakeAuth) Register(_ context.Context, _ model.Registration) (*model.AuthResponse, error) {
	f.registerCalls++
	return f.resp, f.err
}

func (f *fakeAuth) Me(_ context.Context) (*model.Admin, error) {
	f.meCalls++
	return f.me, f.meErr
}

func okResponse() *model.AuthResponse {
	return &model.AuthResponse{
		AccessToken: "tok-1",
		TokenType:   "bearer",
		Admin:       model.Admin{ID: "a1", Username: "ana"},
	}
}

func TestCheckAuth_NoTokenMakesNoCalls(t *testing.T) {
	auth := &fakeAuth{}
	s := New(db.NewMemory(), auth)
	require.NoError(t, s.Hydrate(context.Background()))

	assert.False(t, s.CheckAuth(context.Background()))
	assert.False(t, s.CheckAuth(context.Background()))
	assert.Equal(t, 0, auth.meCalls)
	assert.False(t, s.State().Authenticated)
}

func TestHydrate_NeverAuthenticates(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	require.NoError(t, store.Set(ctx, db.KeyToken, "tok-1"))
	require.NoError(t, store.Set(ctx, db.KeyAdmin, `{"id":"a1","username":"ana"}`))

	auth := &fakeAuth{me: &model.Admin{ID: "a1", Username: "ana2"}}
	s := New(store, auth)
	require.NoError(t, s.Hydrate(ctx))

	st := s.State()
	assert.False(t, st.Authenticated)
	assert.Equal(t, "tok-1", st.Token)
	require.NotNil(t, st.Admin)
	assert.Equal(t, "ana", st.Admin.Username)

	assert.True(t, s.CheckAuth(ctx))
	assert.Equal(t, "ana2", s.State().Admin.Username)

	raw, _, _ := store.Get(ctx, db.KeyAdmin)
	assert.Contains(t, raw, "ana2", "fresh snapshot persisted")
}

func TestCheckAuth_FailureClearsPersistedState(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	require.NoError(t, store.Set(ctx, db.KeyToken, "stale"))

	s := New(store, &fakeAuth{meErr: errors.New("boom")})
	require.NoError(t, s.Hydrate(ctx))

	assert.False(t, s.CheckAuth(ctx))
	_, ok, _ := store.Get(ctx, db.KeyToken)
	assert.False(t, ok)
	assert.Empty(t, s.Token())
}

func TestLogin_SuccessPersists(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	s := New(store, &fakeAuth{resp: okResponse()})

	admin, err := s.Login(ctx, model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "a1", admin.ID)
	assert.True(t, s.IsAuthenticated())

	token, _, _ := store.Get(ctx, db.KeyToken)
	assert.Equal(t, "tok-1", token)

	raw, _, _ := store.Get(ctx, db.KeyAdmin)
	var persisted model.Admin
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, "ana", persisted.Username)
}

func TestLogin_FailureLeavesUnauthenticated(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	s := New(store, &fakeAuth{err: &api.APIError{Status: 401, Detail: api.StringDetail("Incorrect username or password")}})

	_, err := s.Login(ctx, model.Credentials{Username: "ana", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, "Incorrect username or password", api.Message(err, ""))
	assert.False(t, s.IsAuthenticated())

	_, ok, _ := store.Get(ctx, db.KeyToken)
	assert.False(t, ok)
}

func TestRegister_ValidationSkipsNetwork(t *testing.T) {
	auth := &fakeAuth{resp: okResponse()}
	s := New(db.NewMemory(), auth)

	_, err := s.Register(context.Background(), validate.RegisterForm{
		Username: "an", Email: "x", FullName: "", Password: "1", ConfirmPassword: "2",
	})
	fe, ok := validate.AsErrors(err)
	require.True(t, ok)
	assert.Len(t, fe, 5)
	assert.Equal(t, 0, auth.registerCalls)
	assert.False(t, s.IsAuthenticated())
}

func TestLogout_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	s := New(store, &fakeAuth{resp: okResponse()})
	_, err := s.Login(ctx, model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)

	s.Logout()

	assert.Equal(t, model.Session{}, s.State())
	_, ok, _ := store.Get(ctx, db.KeyAdmin)
	assert.False(t, ok)
}

func TestGuard(t *testing.T) {
	ctx := context.Background()
	s := New(db.NewMemory(), &fakeAuth{resp: okResponse(), me: &model.Admin{ID: "a1"}})

	ran := false
	err := Guard(ctx, s, func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.False(t, ran)

	_, err = s.Login(ctx, model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, Guard(ctx, s, func() error { ran = true; return nil }))
	assert.True(t, ran)
}

func TestUnauthorizedHookThroughAdapter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Token expired"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	store := db.NewMemory()
	require.NoError(t, store.Set(ctx, db.KeyToken, "tok-1"))

	client := api.New(srv.URL + "/api")
	s := New(store, client)
	client.SetTokenSource(s.Token)
	client.SetUnauthorizedHandler(s.HandleUnauthorized)
	require.NoError(t, s.Hydrate(ctx))

	redirected := 0
	s.OnUnauthorized(func() { redirected++ })

	_, err := client.Dashboard(ctx)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, 1, redirected)
	assert.Empty(t, s.Token())
}

func TestExpiry(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "a1",
		"exp": exp.Unix(),
	}).SignedString([]byte("not-our-key"))
	require.NoError(t, err)

	resp := okResponse()
	resp.AccessToken = signed
	s := New(db.NewMemory(), &fakeAuth{resp: resp})
	_, err = s.Login(context.Background(), model.Credentials{Username: "ana", Password: "pw"})
	require.NoError(t, err)

	got, ok := s.Expiry()
	require.True(t, ok)
	assert.True(t, exp.Equal(got))

	s.Logout()
	_, ok = s.Expiry()
	assert.False(t, ok)
}
