package theme

import (
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// PreferenceSource reports the environment's light/dark preference
type PreferenceSource interface {
	PrefersDark() bool
	// Subscribe calls fn whenever the preference changes until the returned func is called
	Subscribe(fn func(dark bool)) (unsubscribe func())
}

// DefaultPollInterval is how often TerminalPreference re-reads the terminal background
const DefaultPollInterval = 5 * time.Second

// TerminalPreference detects a dark terminal background with termenv.
// Every read queries the terminal again.
type TerminalPreference struct {
	Interval time.Duration
	output   func() *termenv.Output
}

// NewTerminalPreference returns a preference source reading the background of stdout
func NewTerminalPreference() *TerminalPreference {
	return &TerminalPreference{
		Interval: DefaultPollInterval,
		output:   func() *termenv.Output { return termenv.NewOutput(os.Stdout) },
	}
}

// PrefersDark reports whether the terminal has a dark background
func (p *TerminalPreference) PrefersDark() bool {
	return p.detect()
}

// detect builds a fresh uncached Output so the background is read again
func (p *TerminalPreference) detect() bool {
	return p.output().HasDarkBackground()
}

// Subscribe polls the terminal and calls fn when the answer flips
func (p *TerminalPreference) Subscribe(fn func(dark bool)) func() {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	done := make(chan struct{})
	var once sync.Once
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := p.detect()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if dark := p.detect(); dark != last {
					last = dark
					fn(dark)
				}
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }
}

// StaticPreference is a preference that only changes when Set is called
type StaticPreference struct {
	mu     sync.Mutex
	dark   bool
	nextID int
	subs   map[int]func(bool)
}

// NewStaticPreference returns a fixed preference
func NewStaticPreference(dark bool) *StaticPreference {
	return &StaticPreference{dark: dark, subs: make(map[int]func(bool))}
}

// PrefersDark returns the current value
func (p *StaticPreference) PrefersDark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

// Set changes the preference and notifies subscribers
func (p *StaticPreference) Set(dark bool) {
	p.mu.Lock()
	p.dark = dark
	subs := make([]func(bool), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(dark)
	}
}

// Subscribe registers fn
func (p *StaticPreference) Subscribe(fn func(dark bool)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

// Subscribers returns the number of live subscriptions
func (p *StaticPreference) Subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}
