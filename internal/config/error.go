package config

import (
	"fmt"
	"strings"
)

// warningMarker tags validation messages that should not fail Load.
const warningMarker = "warning:"

// ConfigError reports every problem found in a config file at once.
type ConfigError struct {
	Path    string   // Config file path
	Missing []string // Unresolved environment variables, "NAME" or "NAME: message"
	Errors  []string // Validation errors, "field: reason"
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "invalid config %s\n", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s\n", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		b.WriteString("validation failed:\n")
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// HasErrors reports whether the file cannot be used.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

// splitWarnings separates warning messages from hard validation errors.
func splitWarnings(msgs []string) (errs, warnings []string) {
	for _, msg := range msgs {
		if strings.Contains(msg, warningMarker) {
			warnings = append(warnings, msg)
			continue
		}
		errs = append(errs, msg)
	}
	return errs, warnings
}
