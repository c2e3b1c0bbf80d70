package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discoverEnv isolates Discover from the machine: an empty working
// directory, an empty XDG config home and no REELCAT_CONFIG.
func discoverEnv(t *testing.T) (workDir, xdgHome string) {
	t.Helper()

	workDir = t.TempDir()
	xdgHome = t.TempDir()
	t.Setenv(EnvConfig, "")
	t.Setenv("XDG_CONFIG_HOME", xdgHome)

	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return workDir, xdgHome
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("source = \"backend\"\n"), 0o644))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/srv/xdg")
	assert.Equal(t, "/srv/xdg/reelcat/config.toml", DefaultPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, DefaultPath(), filepath.Join(".config", "reelcat", "config.toml"))
}

func TestSearchPaths_Order(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/srv/xdg")
	assert.Equal(t, []string{
		"reelcat.toml",
		"/srv/xdg/reelcat/config.toml",
		"/etc/reelcat/config.toml",
	}, searchPaths())
}

func TestDiscover_LocalFileBeatsXDG(t *testing.T) {
	_, xdg := discoverEnv(t)
	touch(t, LocalFile)
	touch(t, filepath.Join(xdg, "reelcat", "config.toml"))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, LocalFile, path)
}

func TestDiscover_XDGWhenNoLocalFile(t *testing.T) {
	_, xdg := discoverEnv(t)
	want := filepath.Join(xdg, "reelcat", "config.toml")
	touch(t, want)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestDiscover_EnvBeatsLocalFile(t *testing.T) {
	discoverEnv(t)
	touch(t, LocalFile)
	explicit := filepath.Join(t.TempDir(), "staging.toml")
	touch(t, explicit)
	t.Setenv(EnvConfig, explicit)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, explicit, path)
}

func TestDiscover_EnvMissingFileIsAnError(t *testing.T) {
	discoverEnv(t)
	touch(t, LocalFile)
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "gone.toml"))

	_, err := Discover()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound, "an explicit path never falls back to defaults")
	assert.Contains(t, err.Error(), EnvConfig)
}

func TestDiscover_DirectoryNamedLikeConfigIsSkipped(t *testing.T) {
	discoverEnv(t)
	if _, err := os.Stat(SystemPath); err == nil {
		t.Skip("system config present on this machine")
	}
	require.NoError(t, os.Mkdir(LocalFile, 0o755))

	_, err := Discover()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscover_NotFoundListsSearchedPaths(t *testing.T) {
	_, xdg := discoverEnv(t)
	if _, err := os.Stat(SystemPath); err == nil {
		t.Skip("system config present on this machine")
	}

	_, err := Discover()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), LocalFile)
	assert.Contains(t, err.Error(), filepath.Join(xdg, "reelcat", "config.toml"))
	assert.Contains(t, err.Error(), SystemPath)
}
