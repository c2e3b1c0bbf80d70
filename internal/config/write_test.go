// internal/config/write_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDefault(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "reelcat", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	content, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read written file")

	// Check for key sections
	assert.Contains(t, string(content), "[api]")
	assert.Contains(t, string(content), "[poster]")
	assert.Contains(t, string(content), "${REELCAT_API_URL:-")
}

func TestWriteDefault_CreatesDir(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "nested", "deep", "config.toml")

	err := WriteDefault(path)
	require.NoError(t, err, "WriteDefault failed")

	_, err = os.Stat(path)
	assert.False(t, os.IsNotExist(err), "file was not created")
}

func TestConfig_Write_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.API.BaseURL = "https://cinema.example.com/api/v1"
	cfg.Search.Debounce = 200 * time.Millisecond
	cfg.Poster.Preload = false

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.Write(path), "Write failed")

	content, _ := os.ReadFile(path)
	assert.Contains(t, string(content), "cinema.example.com")

	got, err := LoadWithoutValidation(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, got.API.BaseURL)
	assert.Equal(t, 200*time.Millisecond, got.Search.Debounce)
	assert.False(t, got.Poster.Preload)
}
