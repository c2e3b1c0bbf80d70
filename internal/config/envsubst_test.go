package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("REELCAT_API", "https://cinema.example/api/v1")
	t.Setenv("REELCAT_LANG", "")

	tests := []struct {
		name        string
		in          string
		want        string
		wantMissing []string
	}{
		{
			name: "set variable",
			in:   `base_url = "${REELCAT_API}"`,
			want: `base_url = "https://cinema.example/api/v1"`,
		},
		{
			name: "empty variable takes fallback",
			in:   `language = "${REELCAT_LANG:-ru}"`,
			want: `language = "ru"`,
		},
		{
			name: "unset variable takes fallback",
			in:   `file = "${REELCAT_TEST_UNSET_LOG:-/var/log/reelcat.log}"`,
			want: `file = "/var/log/reelcat.log"`,
		},
		{
			name:        "unset required variable is kept and reported",
			in:          `base_url = "${REELCAT_TEST_UNSET_API}"`,
			want:        `base_url = "${REELCAT_TEST_UNSET_API}"`,
			wantMissing: []string{"REELCAT_TEST_UNSET_API"},
		},
		{
			name:        "required variable reports its message",
			in:          `base_url = "${REELCAT_TEST_UNSET_BUCKET:?dataset bucket URL}"`,
			want:        `base_url = "${REELCAT_TEST_UNSET_BUCKET:?dataset bucket URL}"`,
			wantMissing: []string{"REELCAT_TEST_UNSET_BUCKET: dataset bucket URL"},
		},
		{
			name: "bare dollar is not a reference",
			in:   `# costs $5`,
			want: `# costs $5`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantMissing, missing)
		})
	}
}

func TestLoad_SubstitutesAcrossSections(t *testing.T) {
	t.Setenv("REELCAT_API", "https://cinema.example/api/v1")
	t.Setenv("REELCAT_SEARCH_DEBOUNCE", "150ms")

	cfg, err := Load(writeConfig(t, `
source = "backend"

[api]
base_url = "${REELCAT_API}"

[dataset]
language = "${REELCAT_TEST_UNSET_LANG:-en}"

[search]
debounce = "${REELCAT_SEARCH_DEBOUNCE}"
`))
	require.NoError(t, err)
	assert.Equal(t, "https://cinema.example/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "en", cfg.Dataset.Language)
	assert.Equal(t, 150*time.Millisecond, cfg.Search.Debounce)
}

func TestLoad_MissingRequiredVariableFails(t *testing.T) {
	path := writeConfig(t, `
[api]
base_url = "${REELCAT_TEST_UNSET_API:?set the backend URL}"
`)

	_, err := Load(path)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, path, cfgErr.Path)
	assert.Contains(t, cfgErr.Missing, "REELCAT_TEST_UNSET_API: set the backend URL")
}

func TestLoadWithoutValidation_KeepsUnresolvedReference(t *testing.T) {
	cfg, err := LoadWithoutValidation(writeConfig(t, `
[api]
base_url = "${REELCAT_TEST_UNSET_API}"
`))
	require.NoError(t, err)
	assert.Equal(t, "${REELCAT_TEST_UNSET_API}", cfg.API.BaseURL)
}
