package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", DEBUG},
		{"debug", DEBUG},
		{"warning", WARN},
		{" ERROR ", ERROR},
		{"bogus", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
}

func TestLogger_LevelFilteringAndFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: INFO, Output: &buf})
	require.NoError(t, err)

	l.Debug("hidden")
	l.WithFields(F("component", "api")).Info("request done", F("status", 200))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "request done | component=api status=200")
	assert.Contains(t, out, "logger_test.go")
}

func TestLogger_RotatesOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kudos.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 64)), 0644))

	l, err := New(Config{Level: DEBUG, FilePath: path, MaxSize: 32, MaxBackups: 2})
	require.NoError(t, err)
	defer l.Close()

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "expected backup after rotation")
}

func TestGlobal_NoopBeforeInit(t *testing.T) {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = nil
	globalMu.Unlock()
	t.Cleanup(func() {
		globalMu.Lock()
		globalLogger = prev
		globalMu.Unlock()
	})

	assert.NotPanics(t, func() {
		Info("nobody listening")
		WithFields(F("k", "v")).Warn("still nobody")
		_ = Close()
	})
}
