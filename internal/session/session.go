// Package session keeps the admin's token and profile, persisted across runs, and guards admin-only actions.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/existflow/kudos/internal/db"
	"github.com/existflow/kudos/internal/logger"
	"github.com/existflow/kudos/internal/model"
	"github.com/existflow/kudos/internal/validate"
)

// AuthAPI is the part of the backend the session needs
type AuthAPI interface {
	Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error)
	Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error)
	Me(ctx context.Context) (*model.Admin, error)
}

// Store is the single source of truth for the admin session.
// Authenticated is true only while a token is held AND the last validation of it succeeded.
type Store struct {
	storage db.Storage
	api     AuthAPI
	log     *logger.Logger

	mu            sync.RWMutex
	token         string
	admin         *model.Admin
	authenticated bool
	redirects     []func()
}

// New creates a session store. Call Hydrate before use.
func New(storage db.Storage, api AuthAPI) *Store {
	return &Store{
		storage: storage,
		api:     api,
		log:     logger.WithFields(logger.F("component", "session")),
	}
}

// Hydrate reads the persisted token and admin snapshot. It never marks the session authenticated;
// that takes a successful CheckAuth.
func (s *Store) Hydrate(ctx context.Context) error {
	token, _, err := s.storage.Get(ctx, db.KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	var admin *model.Admin
	raw, ok, err := s.storage.Get(ctx, db.KeyAdmin)
	if err != nil {
		return fmt.Errorf("failed to read admin: %w", err)
	}
	if ok && raw != "" {
		admin = &model.Admin{}
		if err := json.Unmarshal([]byte(raw), admin); err != nil {
			s.log.Warn("discarding corrupt admin snapshot", logger.Err(err))
			admin = nil
		}
	}

	s.mu.Lock()
	s.token = token
	s.admin = admin
	s.authenticated = false
	s.mu.Unlock()
	return nil
}

// Token returns the held token, or "". It is the HTTP adapter's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns a snapshot of the session
func (s *Store) State() model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var admin *model.Admin
	if s.admin != nil {
		a := *s.admin
		admin = &a
	}
	return model.Session{Admin: admin, Token: s.token, Authenticated: s.authenticated}
}

// IsAuthenticated reports the current authentication flag
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Login signs in with credentials. On failure the returned error carries the backend's message and
// the session is left as it was.
func (s *Store) Login(ctx context.Context, creds model.Credentials) (*model.Admin, error) {
	if err := validate.Login(&creds); err != nil {
		return nil, err
	}
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		s.log.Info("login failed", logger.F("username", creds.Username), logger.Err(err))
		return nil, err
	}
	s.establish(ctx, resp)
	s.log.Info("logged in", logger.F("username", resp.Admin.Username))
	return &resp.Admin, nil
}

// Register validates the form locally, then creates the account and signs in.
// A form that fails validation returns validate.Errors without touching the network.
func (s *Store) Register(ctx context.Context, form validate.RegisterForm) (*model.Admin, error) {
	if err := validate.Register(&form); err != nil {
		return nil, err
	}
	resp, err := s.api.Register(ctx, form.Registration())
	if err != nil {
		s.log.Info("registration failed", logger.F("username", form.Username), logger.Err(err))
		return nil, err
	}
	s.establish(ctx, resp)
	s.log.Info("registered", logger.F("username", resp.Admin.Username))
	return &resp.Admin, nil
}

func (s *Store) establish(ctx context.Context, resp *model.AuthResponse) {
	admin := resp.Admin

	s.mu.Lock()
	s.token = resp.AccessToken
	s.admin = &admin
	s.authenticated = true
	s.mu.Unlock()

	if err := s.storage.Set(ctx, db.KeyToken, resp.AccessToken); err != nil {
		s.log.Error("failed to persist token", logger.Err(err))
	}
	s.persistAdmin(ctx, &admin)
}

func (s *Store) persistAdmin(ctx context.Context, admin *model.Admin) {
	data, err := json.Marshal(admin)
	if err != nil {
		s.log.Error("failed to encode admin", logger.Err(err))
		return
	}
	if err := s.storage.Set(ctx, db.KeyAdmin, string(data)); err != nil {
		s.log.Error("failed to persist admin", logger.Err(err))
	}
}

// Logout forgets the session locally. It never fails.
func (s *Store) Logout() {
	s.clear()
	s.log.Info("logged out")
}

func (s *Store) clear() {
	s.mu.Lock()
	s.token = ""
	s.admin = nil
	s.authenticated = false
	s.mu.Unlock()

	ctx := context.Background()
	for _, key := range []string{db.KeyToken, db.KeyAdmin} {
		if err := s.storage.Remove(ctx, key); err != nil {
			s.log.Error("failed to clear session key", logger.F("key", key), logger.Err(err))
		}
	}
}

// CheckAuth validates the held token against the backend. Without a token it returns false
// without any network call. Any failure clears the session.
func (s *Store) CheckAuth(ctx context.Context) bool {
	if s.Token() == "" {
		s.mu.Lock()
		s.admin = nil
		s.authenticated = false
		s.mu.Unlock()
		return false
	}

	admin, err := s.api.Me(ctx)
	if err != nil {
		s.log.Info("stored session rejected", logger.Err(err))
		s.clear()
		return false
	}

	s.mu.Lock()
	s.admin = admin
	s.authenticated = true
	s.mu.Unlock()
	s.persistAdmin(ctx, admin)
	return true
}

// OnUnauthorized registers a callback run after the session is dropped because the backend
// rejected it. Surfaces use it to route back to login.
func (s *Store) OnUnauthorized(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redirects = append(s.redirects, fn)
}

// HandleUnauthorized is the HTTP adapter's 401 hook
func (s *Store) HandleUnauthorized() {
	s.clear()

	s.mu.RLock()
	redirects := append([]func(){}, s.redirects...)
	s.mu.RUnlock()

	for _, fn := range redirects {
		fn()
	}
}

// Expiry reads the exp claim of the held token. The token is not verified; the result is for display.
func (s *Store) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
