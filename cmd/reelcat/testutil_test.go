package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/config"
	"github.com/vmunix/reelcat/internal/testsupport"
)

func testMovies() []testsupport.Movie {
	return []testsupport.Movie{
		{"movie_id": 1, "title": "The Dark Knight", "rating": 9.0, "genres": "Action|Crime", "release_date": "2008-07-18"},
		{"movie_id": 2, "title": "Heat", "rating": 8.3, "genres": "Crime", "release_date": "1995-12-15"},
		{"movie_id": 3, "title": "Ronin", "rating": 7.2, "genres": "Action"},
	}
}

func testConfig(b *testsupport.Backend) *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = b.URL()
	cfg.API.RetryDelay = time.Millisecond
	cfg.State.Path = ":memory:"
	cfg.Poster.Preload = false
	cfg.Search.Debounce = 10 * time.Millisecond
	return cfg
}

// newTestApp builds an app against a fake backend and captures its output.
func newTestApp(t *testing.T, b *testsupport.Backend) (*app, *bytes.Buffer) {
	t.Helper()

	var out, errOut bytes.Buffer
	a, err := newApp(context.Background(), testConfig(b), &out, &errOut)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, &out
}

// setJSON toggles --json for one test.
func setJSON(t *testing.T, on bool) {
	t.Helper()
	prev := jsonOutput
	jsonOutput = on
	t.Cleanup(func() { jsonOutput = prev })
}
