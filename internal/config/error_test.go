package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError_Error(t *testing.T) {
	const path = "/etc/reelcat/config.toml"
	tests := []struct {
		name    string
		err     ConfigError
		want    []string
		wantNot []string
	}{
		{
			name: "nothing to report",
			err:  ConfigError{Path: path},
		},
		{
			name:    "missing variables",
			err:     ConfigError{Path: path, Missing: []string{"REELCAT_API_URL", "REELCAT_BUCKET: dataset bucket"}},
			want:    []string{"invalid config " + path, "missing environment variables", "REELCAT_API_URL", "dataset bucket"},
			wantNot: []string{"validation failed"},
		},
		{
			name:    "validation errors",
			err:     ConfigError{Path: path, Errors: []string{"search.limit: must be at least 1, got 0", "normalize.list: must be one of strict, lenient; got \"loose\""}},
			want:    []string{"validation failed", "search.limit", "normalize.list"},
			wantNot: []string{"missing environment variables"},
		},
		{
			name: "both",
			err:  ConfigError{Path: path, Missing: []string{"REELCAT_API_URL"}, Errors: []string{"source: must be one of backend, dataset; got \"ftp\""}},
			want: []string{"missing environment variables", "validation failed", "source"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				assert.False(t, tt.err.HasErrors())
				return
			}
			assert.True(t, tt.err.HasErrors())
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.wantNot {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestSplitWarnings(t *testing.T) {
	errs, warnings := splitWarnings([]string{
		`source: must be one of backend, dataset; got "ftp"`,
		`log.file: warning: directory "/var/log/reelcat" does not exist`,
		"search.limit: must be at least 1, got 0",
	})
	assert.Equal(t, []string{
		`source: must be one of backend, dataset; got "ftp"`,
		"search.limit: must be at least 1, got 0",
	}, errs)
	assert.Equal(t, []string{`log.file: warning: directory "/var/log/reelcat" does not exist`}, warnings)

	errs, warnings = splitWarnings(nil)
	assert.Empty(t, errs)
	assert.Empty(t, warnings)
}

func TestLoad_WarningOnlyConfigLoadsWithWarnings(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "not-created")
	cfg, err := Load(writeConfig(t, `
[log]
file = "`+filepath.Join(logDir, "reelcat.log")+`"
`))
	require.NoError(t, err)
	require.Len(t, cfg.Warnings, 1)
	assert.True(t, strings.HasPrefix(cfg.Warnings[0], "log.file: warning:"))
	assert.Contains(t, cfg.Warnings[0], logDir)
}

func TestLoad_WarningsDoNotMaskErrors(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "not-created")
	_, err := Load(writeConfig(t, `
source = "ftp"

[log]
file = "`+filepath.Join(logDir, "reelcat.log")+`"
`))

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{`source: must be one of backend, dataset; got "ftp"`}, cfgErr.Errors)
	assert.NotContains(t, err.Error(), "warning:")
}

func TestLoad_CleanConfigHasNoWarnings(t *testing.T) {
	cfg, err := Load(writeConfig(t, "source = \"dataset\"\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Warnings)
}
