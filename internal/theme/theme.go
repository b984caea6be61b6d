// Package theme stores the light/dark/system preference and resolves it against the terminal.
package theme

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/existflow/kudos/internal/db"
	"github.com/existflow/kudos/internal/logger"
)

// Theme is a user choice; Light and Dark are also the only resolved values
type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"

	// Default applies when nothing has been persisted
	Default = Dark
)

// ParseTheme parses a user supplied theme name
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case Light, Dark, System:
		return t, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
}

// Next cycles light -> dark -> system -> light
func (t Theme) Next() Theme {
	switch t {
	case Light:
		return Dark
	case Dark:
		return System
	default:
		return Light
	}
}

// persisted is the stored shape; the resolved value is never persisted
type persisted struct {
	Theme Theme `json:"theme"`
}

// Store owns the current theme. All methods are safe for concurrent use.
type Store struct {
	storage db.Storage
	pref    PreferenceSource
	log     *logger.Logger

	mu          sync.Mutex
	theme       Theme
	resolved    Theme
	listeners   []func(Theme)
	unsubscribe func()
	initialized bool
}

// New creates a theme store. Call Init before reading it.
func New(storage db.Storage, pref PreferenceSource) *Store {
	return &Store{
		storage:  storage,
		pref:     pref,
		log:      logger.WithFields(logger.F("component", "theme")),
		theme:    Default,
		resolved: Default,
	}
}

// Init loads the persisted theme, applies it and subscribes to preference changes.
// Calling it again is a no-op, so there is never more than one subscription.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	t := Default
	raw, ok, err := s.storage.Get(ctx, db.KeyTheme)
	if err != nil {
		return fmt.Errorf("failed to read theme: %w", err)
	}
	if ok {
		if loaded, err := decode(raw); err == nil {
			t = loaded
		} else {
			s.log.Warn("ignoring stored theme", logger.Err(err))
		}
	}

	unsubscribe := s.pref.Subscribe(s.preferenceChanged)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.theme = t
	s.mu.Unlock()

	s.apply()
	return nil
}

func decode(raw string) (Theme, error) {
	var p persisted
	if err := json.Unmarshal([]byte(raw), &p); err == nil {
		return ParseTheme(string(p.Theme))
	}
	return ParseTheme(raw)
}

// Set changes and persists the theme
func (s *Store) Set(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}

	data, err := json.Marshal(persisted{Theme: t})
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, db.KeyTheme, string(data)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}

	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()

	s.apply()
	return nil
}

// Theme returns the chosen theme
func (s *Store) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Resolved returns Light or Dark
func (s *Store) Resolved() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// OnChange registers fn to run with the resolved theme after every apply
func (s *Store) OnChange(fn func(Theme)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Close stops listening for preference changes
func (s *Store) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Store) preferenceChanged(bool) {
	s.mu.Lock()
	system := s.theme == System
	s.mu.Unlock()

	if system {
		s.apply()
	}
}

// apply resolves the current theme and notifies listeners outside the lock
func (s *Store) apply() {
	s.mu.Lock()
	resolved := s.theme
	if resolved == System {
		resolved = Light
		if s.pref.PrefersDark() {
			resolved = Dark
		}
	}
	s.resolved = resolved
	listeners := append([]func(Theme){}, s.listeners...)
	s.mu.Unlock()

	s.log.Debug("theme applied", logger.F("resolved", resolved))
	for _, fn := range listeners {
		fn(resolved)
	}
}
