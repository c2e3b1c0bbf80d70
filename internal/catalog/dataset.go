package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/dataset"
	"github.com/vmunix/reelcat/internal/film"
)

// DatasetSource reads movies from the static dataset. It is read-only and
// has no accounts, full-text search or streams.
type DatasetSource struct {
	client   *dataset.Client
	policies Policies
}

// NewDatasetSource wraps a dataset client.
func NewDatasetSource(client *dataset.Client, policies Policies) *DatasetSource {
	return &DatasetSource{client: client, policies: policies}
}

// Movies implements Source.
func (s *DatasetSource) Movies(ctx context.Context, page, size int) ([]film.Film, int, error) {
	records, total, err := s.client.Movies(ctx, page, size)
	if err != nil {
		return nil, 0, err
	}
	return film.Normalize(records, s.policies.List), total, nil
}

// Movie implements Source by scanning the full listing.
func (s *DatasetSource) Movie(ctx context.Context, id int64) (film.Film, error) {
	records, _, err := s.client.Movies(ctx, 1, 0)
	if err != nil {
		return film.Film{}, err
	}
	for _, r := range records {
		if int64(r.MovieID) != id {
			continue
		}
		f, ok := r.Film(s.policies.Detail)
		if !ok {
			break
		}
		return f, nil
	}
	return film.Film{}, fmt.Errorf("%w: %d", ErrNotFound, id)
}

// TopRated implements Source.
func (s *DatasetSource) TopRated(ctx context.Context, limit int) ([]film.Film, error) {
	records, err := s.client.TopRated(ctx)
	if err != nil {
		return nil, err
	}
	films := film.Normalize(records, s.policies.List)
	if limit > 0 && len(films) > limit {
		films = films[:limit]
	}
	return films, nil
}

// Search implements Source.
func (s *DatasetSource) Search(ctx context.Context, query string, limit int) ([]film.Film, error) {
	records, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	films := film.Normalize(records, s.policies.List)
	if limit > 0 && len(films) > limit {
		films = films[:limit]
	}
	return films, nil
}

// Similar implements Source. Movies without precomputed recommendations
// have none.
func (s *DatasetSource) Similar(ctx context.Context, movieID int64) ([]film.Film, error) {
	records, err := s.client.Recommendations(ctx, movieID)
	if errors.Is(err, dataset.ErrNotFound) {
		return []film.Film{}, nil
	}
	if err != nil {
		return nil, err
	}
	return film.Normalize(records, s.policies.List), nil
}

// ElasticSearch implements Source.
func (s *DatasetSource) ElasticSearch(context.Context, string, int) ([]film.Film, error) {
	return nil, ErrUnsupported
}

// Recommendations implements Source.
func (s *DatasetSource) Recommendations(context.Context, int64, int) ([]film.Film, error) {
	return nil, ErrUnsupported
}

// Genres implements Source.
func (s *DatasetSource) Genres(ctx context.Context) ([]dataset.Genre, error) {
	return s.client.Genres(ctx)
}

// AddMovie implements Source.
func (s *DatasetSource) AddMovie(context.Context, api.AddMovieRequest) (api.AddMovieResponse, error) {
	return nil, ErrUnsupported
}

// Login implements Source.
func (s *DatasetSource) Login(context.Context, string, string) (*api.LoginResponse, error) {
	return nil, ErrUnsupported
}

// StreamURL implements Source.
func (s *DatasetSource) StreamURL(int64) (string, error) {
	return "", ErrUnsupported
}
