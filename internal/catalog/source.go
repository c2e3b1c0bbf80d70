// Package catalog is the movie service the CLI talks to. It hides whether
// movies come from the backend API or the static dataset, normalizes every
// record and applies search ranking and poster caching.
package catalog

import (
	"context"
	"errors"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/dataset"
	"github.com/vmunix/reelcat/internal/film"
)

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

// Sentinel errors.
var (
	ErrUnsupported = errors.New("operation not supported by this source")
	ErrNotFound    = errors.New("movie not found")
)

// Policies selects the normalization policy per endpoint kind. Listings
// are usually complete enough for strict; detail pages may not be.
type Policies struct {
	List   film.Policy
	Detail film.Policy
}

// Source is where movies come from.
type Source interface {
	Movies(ctx context.Context, page, size int) ([]film.Film, int, error)
	Movie(ctx context.Context, id int64) (film.Film, error)
	TopRated(ctx context.Context, limit int) ([]film.Film, error)
	Search(ctx context.Context, query string, limit int) ([]film.Film, error)
	Similar(ctx context.Context, movieID int64) ([]film.Film, error)
	ElasticSearch(ctx context.Context, query string, limit int) ([]film.Film, error)
	Recommendations(ctx context.Context, userID int64, n int) ([]film.Film, error)
	Genres(ctx context.Context) ([]dataset.Genre, error)
	AddMovie(ctx context.Context, req api.AddMovieRequest) (api.AddMovieResponse, error)
	Login(ctx context.Context, username, password string) (*api.LoginResponse, error)
	StreamURL(id int64) (string, error)
}
