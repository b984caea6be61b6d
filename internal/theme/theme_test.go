package theme

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/existflow/kudos/internal/db"
)

func TestInit_DefaultsToDark(t *testing.T) {
	s := New(db.NewMemory(), NewStaticPreference(false))
	require.NoError(t, s.Init(context.Background()))

	assert.Equal(t, Dark, s.Theme())
	assert.Equal(t, Dark, s.Resolved())
}

func TestSystemFollowsPreference(t *testing.T) {
	ctx := context.Background()
	pref := NewStaticPreference(true)
	s := New(db.NewMemory(), pref)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Set(ctx, System))
	assert.Equal(t, Dark, s.Resolved())

	var seen []Theme
	s.OnChange(func(r Theme) { seen = append(seen, r) })

	pref.Set(false)
	assert.Equal(t, Light, s.Resolved())
	assert.Equal(t, []Theme{Light}, seen)
}

func TestExplicitThemeIgnoresPreference(t *testing.T) {
	ctx := context.Background()
	pref := NewStaticPreference(true)
	s := New(db.NewMemory(), pref)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Set(ctx, Light))

	pref.Set(true)
	pref.Set(false)
	pref.Set(true)
	assert.Equal(t, Light, s.Resolved())
}

func TestSet_PersistsThemeOnly(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemory()
	s := New(store, NewStaticPreference(true))
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Set(ctx, System))

	raw, ok, err := store.Get(ctx, db.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"theme":"system"}`, raw)

	reloaded := New(store, NewStaticPreference(false))
	require.NoError(t, reloaded.Init(ctx))
	assert.Equal(t, System, reloaded.Theme())
	assert.Equal(t, Light, reloaded.Resolved())
}

func TestInit_IsIdempotentAndCloseUnsubscribes(t *testing.T) {
	ctx := context.Background()
	pref := NewStaticPreference(false)
	s := New(db.NewMemory(), pref)

	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))
	assert.Equal(t, 1, pref.Subscribers())

	s.Close()
	assert.Equal(t, 0, pref.Subscribers())
	s.Close()
}

func TestParseTheme(t *testing.T) {
	got, err := ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, Dark, got)

	_, err = ParseTheme("sepia")
	assert.Error(t, err)

	assert.Equal(t, Dark, Light.Next())
	assert.Equal(t, System, Dark.Next())
	assert.Equal(t, Light, System.Next())
}

// colorEnv is a terminal environment whose COLORFGBG can change while polled
type colorEnv struct {
	mu   sync.Mutex
	fgbg string
}

func (e *colorEnv) set(v string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fgbg = v
}

func (e *colorEnv) Environ() []string { return nil }

func (e *colorEnv) Getenv(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch key {
	case "COLORFGBG":
		return e.fgbg
	case "TERM":
		return "dumb"
	}
	return ""
}

func TestTerminalPreference_NotifiesOnFlip(t *testing.T) {
	env := &colorEnv{fgbg: "15;0"}
	p := &TerminalPreference{Interval: time.Millisecond, output: func() *termenv.Output {
		return termenv.NewOutput(io.Discard, termenv.WithTTY(true), termenv.WithEnvironment(env))
	}}
	require.True(t, p.PrefersDark())

	dark := make(chan bool, 4)
	stop := p.Subscribe(func(d bool) { dark <- d })
	defer stop()

	time.Sleep(50 * time.Millisecond)
	env.set("0;15")
	select {
	case d := <-dark:
		assert.False(t, d)
	case <-time.After(2 * time.Second):
		t.Fatal("background change was not reported")
	}
	assert.False(t, p.PrefersDark())
}
