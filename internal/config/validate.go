// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

var validSources = map[string]bool{
	SourceBackend: true, SourceDataset: true,
}

var validPolicies = map[string]bool{
	"strict": true, "lenient": true,
}

var validLanguages = map[string]bool{
	"ru": true, "en": true,
}

// Debounce bounds for search-as-you-type.
const (
	MinDebounce = 120 * time.Millisecond
	MaxDebounce = 300 * time.Millisecond
)

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validSources[c.Source] {
		errs = append(errs, fmt.Sprintf("source: must be one of backend, dataset; got %q", c.Source))
	}

	// API validation
	if c.Source == SourceBackend || c.API.BaseURL != "" {
		if msg := checkURL(c.API.BaseURL); msg != "" {
			errs = append(errs, "api.base_url: "+msg)
		}
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("api.timeout: must be positive, got %s", c.API.Timeout))
	}
	if c.API.Retries == 0 {
		errs = append(errs, "api.retries: must be at least 1")
	}
	if c.API.RetryDelay < 0 {
		errs = append(errs, fmt.Sprintf("api.retry_delay: must not be negative, got %s", c.API.RetryDelay))
	}

	// Dataset validation
	if c.Source == SourceDataset || c.Dataset.BaseURL != "" {
		if msg := checkURL(c.Dataset.BaseURL); msg != "" {
			errs = append(errs, "dataset.base_url: "+msg)
		}
	}
	if !validLanguages[c.Dataset.Language] {
		errs = append(errs, fmt.Sprintf("dataset.language: must be one of ru, en; got %q", c.Dataset.Language))
	}
	if c.Dataset.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("dataset.cache_ttl: must not be negative, got %s", c.Dataset.CacheTTL))
	}

	// Poster validation
	if c.Poster.TTL <= 0 {
		errs = append(errs, fmt.Sprintf("poster.ttl: must be positive, got %s", c.Poster.TTL))
	}
	if c.Poster.MaxBytes <= 0 {
		errs = append(errs, fmt.Sprintf("poster.max_bytes: must be positive, got %d", c.Poster.MaxBytes))
	}

	// Search validation
	if c.Search.Debounce < MinDebounce || c.Search.Debounce > MaxDebounce {
		errs = append(errs, fmt.Sprintf("search.debounce: must be between %s and %s, got %s", MinDebounce, MaxDebounce, c.Search.Debounce))
	}
	if c.Search.CacheTTL < 0 {
		errs = append(errs, fmt.Sprintf("search.cache_ttl: must not be negative, got %s", c.Search.CacheTTL))
	}
	if c.Search.Limit < 1 {
		errs = append(errs, fmt.Sprintf("search.limit: must be at least 1, got %d", c.Search.Limit))
	}
	if c.Search.MinLength < 1 {
		errs = append(errs, fmt.Sprintf("search.min_length: must be at least 1, got %d", c.Search.MinLength))
	}

	// Normalization validation
	if !validPolicies[c.Normalize.List] {
		errs = append(errs, fmt.Sprintf("normalize.list: must be one of strict, lenient; got %q", c.Normalize.List))
	}
	if !validPolicies[c.Normalize.Detail] {
		errs = append(errs, fmt.Sprintf("normalize.detail: must be one of strict, lenient; got %q", c.Normalize.Detail))
	}

	if c.State.Path == "" {
		errs = append(errs, "state.path: required")
	}

	// Log validation
	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}
	if c.Log.File != "" {
		if c.Log.MaxSizeMB < 1 {
			errs = append(errs, fmt.Sprintf("log.max_size_mb: must be at least 1, got %d", c.Log.MaxSizeMB))
		}
		if dir := filepath.Dir(c.Log.File); dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("log.file: warning: directory %q does not exist", dir))
			}
		}
	}

	return errs
}

func checkURL(raw string) string {
	if raw == "" {
		return "required"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Sprintf("invalid URL %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("must be an http or https URL, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Sprintf("missing host in %q", raw)
	}
	return ""
}
