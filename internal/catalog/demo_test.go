package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/internal/store"
)

type noMovies struct{ Source }

func (noMovies) Movie(context.Context, int64) (film.Film, error) {
	return film.Film{}, ErrNotFound
}

func TestService_AddDemoMovie(t *testing.T) {
	kv, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/p.png", []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), 0644))

	svc := New(noMovies{}, WithStore(kv), WithFS(fs),
		WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }))
	svc.demoID = func() int64 { return 4321 }

	f, err := svc.AddDemoMovie(context.Background(), api.AddMovieRequest{
		Title:       " Heat ",
		Description: "Robbers",
		Genres:      "Crime| Drama |",
		PosterPath:  "/p.png",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4321), f.ID)
	assert.Equal(t, "2026-03-01", f.ReleaseDate)
	assert.Equal(t, []string{"Crime", "Drama"}, f.Genres)
	assert.True(t, strings.HasPrefix(f.PosterURL, "data:image/png;base64,"))

	raw, err := kv.Get(context.Background(), "fake_movie_4321")
	require.NoError(t, err)
	assert.Contains(t, raw, `"movie_id":4321`)

	got, ok := svc.Movie(context.Background(), 4321)
	require.True(t, ok, "demo record found before the source")
	assert.Equal(t, "Heat", got.Title)

	assert.Len(t, svc.DemoMovies(context.Background()), 1)

	_, ok = svc.Movie(context.Background(), 1)
	assert.False(t, ok)
}

func TestService_AddDemoMovie_Validation(t *testing.T) {
	kv, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	svc := New(noMovies{}, WithStore(kv))

	_, err = svc.AddDemoMovie(context.Background(), api.AddMovieRequest{Title: "x"})
	assert.ErrorIs(t, err, api.ErrMissingFields)

	_, err = svc.AddDemoMovie(context.Background(), api.AddMovieRequest{Title: "x", Description: "y", Genres: "||"})
	assert.ErrorIs(t, err, api.ErrInvalidGenres)

	_, err = New(noMovies{}).AddDemoMovie(context.Background(), api.AddMovieRequest{})
	assert.ErrorIs(t, err, ErrNoStore)
}
