package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/dataset"
	"github.com/vmunix/reelcat/internal/film"
)

// BackendSource reads movies from the REST backend.
type BackendSource struct {
	client   *api.Client
	policies Policies
}

// NewBackendSource wraps an API client.
func NewBackendSource(client *api.Client, policies Policies) *BackendSource {
	return &BackendSource{client: client, policies: policies}
}

// Movies implements Source. Total falls back to the page length when the
// backend sends no count.
func (s *BackendSource) Movies(ctx context.Context, page, size int) ([]film.Film, int, error) {
	p, err := s.client.Movies(ctx, page, size)
	if err != nil {
		return nil, 0, err
	}
	films := film.Normalize(p.Records, s.policies.List)
	total := p.Total
	if total == 0 {
		total = len(films)
	}
	return films, total, nil
}

// Movie implements Source.
func (s *BackendSource) Movie(ctx context.Context, id int64) (film.Film, error) {
	r, err := s.client.Movie(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return film.Film{}, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return film.Film{}, err
	}
	f, ok := r.Film(s.policies.Detail)
	if !ok {
		return film.Film{}, fmt.Errorf("%w: movie %d has no usable title", ErrNotFound, id)
	}
	return f, nil
}

// TopRated implements Source.
func (s *BackendSource) TopRated(ctx context.Context, limit int) ([]film.Film, error) {
	return s.list(s.client.TopRated(ctx, limit))
}

// Search implements Source.
func (s *BackendSource) Search(ctx context.Context, query string, limit int) ([]film.Film, error) {
	return s.list(s.client.Search(ctx, query, limit))
}

// Similar implements Source.
func (s *BackendSource) Similar(ctx context.Context, movieID int64) ([]film.Film, error) {
	return s.list(s.client.Similar(ctx, movieID))
}

// ElasticSearch implements Source.
func (s *BackendSource) ElasticSearch(ctx context.Context, query string, limit int) ([]film.Film, error) {
	return s.list(s.client.ElasticSearch(ctx, query, limit))
}

// Recommendations implements Source.
func (s *BackendSource) Recommendations(ctx context.Context, userID int64, n int) ([]film.Film, error) {
	return s.list(s.client.YouMayLike(ctx, userID, n))
}

// Genres implements Source. The backend has no genre listing.
func (s *BackendSource) Genres(context.Context) ([]dataset.Genre, error) {
	return nil, ErrUnsupported
}

// AddMovie implements Source.
func (s *BackendSource) AddMovie(ctx context.Context, req api.AddMovieRequest) (api.AddMovieResponse, error) {
	return s.client.AddMovie(ctx, req)
}

// Login implements Source.
func (s *BackendSource) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	return s.client.Login(ctx, username, password)
}

// StreamURL implements Source.
func (s *BackendSource) StreamURL(id int64) (string, error) {
	return s.client.StreamURL(id), nil
}

func (s *BackendSource) list(records []film.Raw, err error) ([]film.Film, error) {
	if err != nil {
		return nil, err
	}
	return film.Normalize(records, s.policies.List), nil
}
