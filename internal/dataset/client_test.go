package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/film"
)

const allJSON = `[
	{"movie_id": 1, "title": "Heat", "title_ru": "Схватка", "description": "LA crime saga", "description_ru": "Криминальная сага", "poster_url": "/heat.jpg", "rating": 8.3, "genres": [1, 2]},
	{"movie_id": 2, "title": "Ronin", "title_ru": "", "description": "Mercenaries", "poster_url": "", "rating": "n/a", "genres": [2, 99]},
	{"movie_id": 3, "title": "Without Russian", "poster_url": "https://cdn.example.com/x.jpg", "genres": "bad"},
	null
]`

const genresJSON = `[
	{"id": 1, "name": "Crime", "name_ru": "Криминал"},
	{"id": 2, "name": "Thriller"}
]`

type datasetServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newDatasetServer(t *testing.T) *datasetServer {
	t.Helper()
	s := &datasetServer{hits: make(map[string]int)}
	docs := map[string]string{
		PathAllMovies:                    allJSON,
		PathTopRated:                     `[{"movie_id": 1, "title": "Heat", "title_ru": "Схватка", "genres": [1]}]`,
		PathGenres:                       genresJSON,
		"/movies/recommendations/1.json": `[{"movie_id": 2, "title": "Ronin"}]`,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		doc, ok := docs[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *datasetServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func TestClient_Movies_LocalizesRussian(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL)

	records, total, err := c.Movies(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total, "null entry skipped")
	require.Len(t, records, 2)

	heat, ok := records[0].Film(film.Strict)
	require.True(t, ok)
	assert.Equal(t, "Схватка", heat.Title)
	assert.Equal(t, "Криминальная сага", heat.Description)
	assert.Equal(t, srv.URL+"/posters/heat.jpg", heat.PosterURL)
	assert.Equal(t, []string{"Криминал", "Thriller"}, heat.Genres)

	ronin, ok := records[1].Film(film.Strict)
	require.True(t, ok)
	assert.Equal(t, "Ronin", ronin.Title, "empty title_ru falls back")
	assert.Empty(t, ronin.PosterURL)
	assert.Zero(t, ronin.Rating)
	assert.Equal(t, []string{"Thriller"}, ronin.Genres, "unknown genre ids dropped")
}

func TestClient_Movies_English(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL, WithLanguage("en"))

	records, _, err := c.Movies(context.Background(), 1, 1)
	require.NoError(t, err)
	f, _ := records[0].Film(film.Strict)
	assert.Equal(t, "Heat", f.Title)
	assert.Equal(t, []string{"Crime", "Thriller"}, f.Genres)
}

func TestClient_Movies_Pagination(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	records, _, err := c.Movies(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	f, _ := records[0].Film(film.Strict)
	assert.Equal(t, "https://cdn.example.com/x.jpg", f.PosterURL, "absolute poster kept")
	assert.Empty(t, f.Genres)

	records, _, err = c.Movies(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, records)

	assert.Equal(t, 1, srv.count(PathAllMovies), "document cached")
	assert.Equal(t, 1, srv.count(PathGenres), "genre index memoized")
}

func TestClient_Search(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	records, err := c.Search(ctx, "СХВАТ")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, film.FlexInt(1), records[0].MovieID)

	records, err = c.Search(ctx, "ron")
	require.NoError(t, err)
	require.Len(t, records, 1)

	records, err = c.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_TopRatedAndRecommendations(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL)
	ctx := context.Background()

	top, err := c.TopRated(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)

	recs, err := c.Recommendations(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = c.Recommendations(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Genres(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL)

	genres, err := c.Genres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Криминал", genres[0].Name)
	assert.Equal(t, "Thriller", genres[1].Name)
}

func TestClient_NoCache(t *testing.T) {
	srv := newDatasetServer(t)
	c := New(srv.URL, WithCacheTTL(0))
	ctx := context.Background()

	_, err := c.TopRated(ctx)
	require.NoError(t, err)
	_, err = c.TopRated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count(PathTopRated))
}

func TestClient_PosterURL(t *testing.T) {
	c := New("https://bucket.example.com/")
	assert.Equal(t, "https://bucket.example.com/posters/a.jpg", c.PosterURL("a.jpg"))
	assert.Equal(t, "https://bucket.example.com/posters/a.jpg", c.PosterURL("/a.jpg"))
	assert.Equal(t, "", c.PosterURL(" "))
}

func TestClient_CacheExpiresWithClock(t *testing.T) {
	srv := newDatasetServer(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(srv.URL, WithCacheTTL(time.Minute), WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := c.TopRated(ctx)
	require.NoError(t, err)
	_, err = c.TopRated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.count(PathTopRated))

	now = now.Add(2 * time.Minute)
	_, err = c.TopRated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.count(PathTopRated))
}
