// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Movie sources.
const (
	SourceBackend = "backend"
	SourceDataset = "dataset"
)

// Config is the root configuration structure.
type Config struct {
	Source    string          `toml:"source"`
	API       APIConfig       `toml:"api"`
	Dataset   DatasetConfig   `toml:"dataset"`
	Poster    PosterConfig    `toml:"poster"`
	Search    SearchConfig    `toml:"search"`
	Normalize NormalizeConfig `toml:"normalize"`
	State     StateConfig     `toml:"state"`
	Log       LogConfig       `toml:"log"`

	// Warnings holds non-fatal validation findings from Load.
	Warnings []string `toml:"-"`
}

type APIConfig struct {
	BaseURL    string        `toml:"base_url"`
	Timeout    time.Duration `toml:"timeout"`
	Retries    uint          `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
}

type DatasetConfig struct {
	BaseURL  string        `toml:"base_url"`
	Language string        `toml:"language"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type PosterConfig struct {
	ExcludedOrigins []string      `toml:"excluded_origins"`
	TTL             time.Duration `toml:"ttl"`
	Preload         bool          `toml:"preload"`
	MaxBytes        int64         `toml:"max_bytes"`
}

type SearchConfig struct {
	Debounce  time.Duration `toml:"debounce"`
	CacheTTL  time.Duration `toml:"cache_ttl"`
	Limit     int           `toml:"limit"`
	MinLength int           `toml:"min_length"`
}

// NormalizeConfig holds the record policies ("strict" or "lenient").
type NormalizeConfig struct {
	List   string `toml:"list"`
	Detail string `toml:"detail"`
}

type StateConfig struct {
	Path string `toml:"path"`
}

type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Default returns the configuration used when no file sets a value.
func Default() *Config {
	return &Config{
		Source: SourceBackend,
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api/v1",
			Timeout:    30 * time.Second,
			Retries:    3,
			RetryDelay: 200 * time.Millisecond,
		},
		Dataset: DatasetConfig{
			BaseURL:  "https://mai-study-projects-online-cinema.s3.eu-north-1.amazonaws.com",
			Language: "ru",
			CacheTTL: 5 * time.Minute,
		},
		Poster: PosterConfig{
			ExcludedOrigins: []string{"s3.timeweb.cloud"},
			TTL:             24 * time.Hour,
			Preload:         true,
			MaxBytes:        10 << 20,
		},
		Search: SearchConfig{
			Debounce:  300 * time.Millisecond,
			CacheTTL:  5 * time.Minute,
			Limit:     100,
			MinLength: 2,
		},
		Normalize: NormalizeConfig{
			List:   "strict",
			Detail: "strict",
		},
		State: StateConfig{
			Path: DefaultStatePath(),
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// DefaultStatePath returns the XDG-compliant location of the local state database.
func DefaultStatePath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./reelcat.db"
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "reelcat", "state.db")
}

// Load reads, parses and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	errs, warnings := splitWarnings(cfg.Validate())
	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: errs}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	cfg.Warnings = warnings
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, leaving
// unresolved variables and invalid values for the caller to report.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	// Decoding over the defaults keeps every value the file leaves out.
	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.normalize()
	return cfg, missing, nil
}

func (c *Config) normalize() {
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
	c.Dataset.Language = strings.ToLower(strings.TrimSpace(c.Dataset.Language))
	c.Normalize.List = strings.ToLower(strings.TrimSpace(c.Normalize.List))
	c.Normalize.Detail = strings.ToLower(strings.TrimSpace(c.Normalize.Detail))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if strings.HasPrefix(c.State.Path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			c.State.Path = filepath.Join(home, c.State.Path[2:])
		}
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolvable references are left in place and reported.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case "-":
			if !ok || value == "" {
				return arg
			}
			return value
		case "?":
			if !ok || value == "" {
				missing = append(missing, fmt.Sprintf("%s: %s", name, arg))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}
