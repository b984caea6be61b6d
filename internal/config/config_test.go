package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	t.Setenv("KUDOS_API_URL", "")
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 6, cfg.PageSizes.Projects)
	assert.True(t, cfg.ConfirmDelete)
}

func TestLoadFile_PartialFileKeepsDefaults(t *testing.T) {
	t.Setenv("KUDOS_API_URL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://reviews.example.com/api\npage_sizes:\n  projects: 12\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://reviews.example.com/api", cfg.APIURL)
	assert.Equal(t, 12, cfg.PageSizes.Projects)
	assert.Equal(t, 10, cfg.PageSizes.Testimonials)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: https://file.example.com/api\n"), 0644))
	t.Setenv("KUDOS_API_URL", "https://env.example.com/api")
	t.Setenv("KUDOS_REQUEST_TIMEOUT", "3")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com/api", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api_url: [unterminated"), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveFile_RoundTrip(t *testing.T) {
	t.Setenv("KUDOS_API_URL", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.APIURL = "https://saved.example.com/api"
	cfg.ConfirmDelete = false

	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://saved.example.com/api", loaded.APIURL)
	assert.False(t, loaded.ConfirmDelete)
}
