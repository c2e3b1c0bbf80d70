package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfig names an explicit config file and disables the search.
	EnvConfig = "REELCAT_CONFIG"
	// LocalFile is looked up in the working directory.
	LocalFile = "reelcat.toml"
	// SystemPath is the last place searched.
	SystemPath = "/etc/reelcat/config.toml"
)

// ErrNotFound is returned by Discover when no config file exists. Callers
// fall back to Default().
var ErrNotFound = errors.New("config not found")

// DefaultPath is where 'reelcat init' writes: $XDG_CONFIG_HOME/reelcat/config.toml,
// or ~/.config/reelcat/config.toml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return LocalFile
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "reelcat", "config.toml")
}

// searchPaths lists the candidates Discover tries, most specific first.
func searchPaths() []string {
	return []string{
		filepath.Join(".", LocalFile),
		DefaultPath(),
		SystemPath,
	}
}

// Discover returns the config file to load. REELCAT_CONFIG must point at an
// existing file when set; otherwise the first existing search path wins.
func Discover() (string, error) {
	if explicit := os.Getenv(EnvConfig); explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, explicit, err)
		}
		return explicit, nil
	}

	paths := searchPaths()
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (searched %s)", ErrNotFound, strings.Join(paths, ", "))
}
