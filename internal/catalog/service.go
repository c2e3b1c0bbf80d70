package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/dataset"
	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/internal/poster"
	"github.com/vmunix/reelcat/internal/session"
	"github.com/vmunix/reelcat/pkg/ranking"
)

// Listing sizes.
const (
	DefaultPageSize        = 50
	AllMoviesPageSize      = 24
	DefaultRecommendations = 10
	DefaultElasticLimit    = 10
	DefaultSearchLimit     = 100

	// Top rated asks for more than it shows so that dropped records
	// still leave a full row.
	topRatedFetch = 20
	topRatedShown = 12

	preloadWorkers = 4
)

// KV is the local key/value storage used for demo records.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Service is the movie catalog.
type Service struct {
	source      Source
	session     *session.Session
	posters     *poster.Cache
	kv          KV
	fs          afero.Fs
	log         *slog.Logger
	searchLimit int
	now         func() time.Time
	demoID      func() int64
}

// Option configures a Service.
type Option func(*Service)

// WithSession sets the auth context used for recommendations and login.
func WithSession(s *session.Session) Option {
	return func(svc *Service) {
		svc.session = s
	}
}

// WithPosters enables poster caching on detail pages.
func WithPosters(c *poster.Cache) Option {
	return func(svc *Service) {
		svc.posters = c
	}
}

// WithStore sets the storage demo records live in.
func WithStore(kv KV) Option {
	return func(svc *Service) {
		svc.kv = kv
	}
}

// WithFS sets the filesystem demo posters are read from.
func WithFS(fs afero.Fs) Option {
	return func(svc *Service) {
		svc.fs = fs
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(svc *Service) {
		svc.log = log.With("component", "catalog")
	}
}

// WithSearchLimit sets how many candidates a search asks the source for.
func WithSearchLimit(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.searchLimit = n
		}
	}
}

// WithClock sets the time source used for demo release dates.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		svc.now = now
	}
}

// New creates a catalog over source.
func New(source Source, opts ...Option) *Service {
	svc := &Service{
		source:      source,
		fs:          afero.NewOsFs(),
		log:         slog.New(slog.DiscardHandler),
		searchLimit: DefaultSearchLimit,
		now:         time.Now,
		demoID:      func() int64 { return 1000 + rand.Int64N(10000) },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Movies returns the first page of the catalog.
func (s *Service) Movies(ctx context.Context) []film.Film {
	films, _ := s.AllMovies(ctx, 1, DefaultPageSize)
	return films
}

// AllMovies returns one page and the catalog size. Failures yield an
// empty page.
func (s *Service) AllMovies(ctx context.Context, page, size int) ([]film.Film, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = AllMoviesPageSize
	}
	films, total, err := s.source.Movies(ctx, page, size)
	if err != nil {
		s.log.Error("list movies failed", "page", page, "size", size, "error", err)
		return []film.Film{}, 0
	}
	return films, total
}

// Movie returns one movie, preferring a locally stored demo record. The
// poster is resolved through the poster cache.
func (s *Service) Movie(ctx context.Context, id int64) (film.Film, bool) {
	if f, ok := s.demoMovie(ctx, id); ok {
		return f, true
	}

	f, err := s.source.Movie(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Info("movie not found", "movie_id", id)
		} else {
			s.log.Error("get movie failed", "movie_id", id, "error", err)
		}
		return film.Film{}, false
	}

	if s.posters != nil && f.PosterURL != "" {
		f.PosterURL = s.posters.Display(ctx, f.PosterURL)
	}
	return f, true
}

// TopRated returns up to twelve of the highest rated movies.
func (s *Service) TopRated(ctx context.Context) []film.Film {
	films, err := s.source.TopRated(ctx, topRatedFetch)
	if err != nil {
		s.log.Error("top rated failed", "error", err)
		return []film.Film{}
	}
	if len(films) > topRatedShown {
		films = films[:topRatedShown]
	}
	return films
}

// Recommendations returns personal picks for the signed-in user, or the
// top rated list when there is no user or the source cannot recommend.
func (s *Service) Recommendations(ctx context.Context, count int) []film.Film {
	if count <= 0 {
		count = DefaultRecommendations
	}
	if s.session == nil {
		return s.TopRated(ctx)
	}
	userID, err := s.session.UserID()
	if err != nil {
		s.log.Warn("no user id, recommending top rated instead")
		return s.TopRated(ctx)
	}

	films, err := s.source.Recommendations(ctx, userID, count)
	if err != nil {
		s.log.Warn("recommendations failed, recommending top rated instead", "user_id", userID, "error", err)
		return s.TopRated(ctx)
	}
	return films
}

// Similar returns movies related to movieID.
func (s *Service) Similar(ctx context.Context, movieID int64) []film.Film {
	films, err := s.source.Similar(ctx, movieID)
	if err != nil {
		s.log.Error("similar movies failed", "movie_id", movieID, "error", err)
		return []film.Film{}
	}
	return films
}

// Search returns the source's candidates for query, ranked and filtered so
// every significant query word appears in each title. A query without
// significant words returns nothing and never reaches the source.
func (s *Service) Search(ctx context.Context, query string) []film.Film {
	normalized := ranking.NormalizeQuery(query)
	if len(ranking.SignificantWords(normalized)) == 0 {
		return []film.Film{}
	}

	candidates, err := s.source.Search(ctx, normalized, s.searchLimit)
	if err != nil {
		s.log.Error("search failed", "query", normalized, "error", err)
		return []film.Film{}
	}
	results := ranking.Rank(candidates, normalized)
	s.log.Debug("search ranked", "query", normalized, "candidates", len(candidates), "results", len(results))
	return results
}

// SearchWithFallback runs Search and, when a multi-word query finds
// nothing, searches each word on its own and combines the results in word
// order without duplicates.
func (s *Service) SearchWithFallback(ctx context.Context, query string) []film.Film {
	results := s.Search(ctx, query)
	words := ranking.SignificantWords(ranking.NormalizeQuery(query))
	if len(results) > 0 || len(words) < 2 {
		return results
	}

	s.log.Debug("no results, searching words separately", "query", query, "words", len(words))
	partial := make([][]film.Film, len(words))
	g, gctx := errgroup.WithContext(ctx)
	for i, w := range words {
		g.Go(func() error {
			partial[i] = s.Search(gctx, w)
			return nil
		})
	}
	_ = g.Wait()

	var combined []film.Film
	for _, p := range partial {
		combined = append(combined, p...)
	}
	return film.Dedupe(combined)
}

// ElasticSearch runs the source's full-text search, unranked.
func (s *Service) ElasticSearch(ctx context.Context, query string, limit int) []film.Film {
	query = strings.TrimSpace(query)
	if query == "" {
		return []film.Film{}
	}
	if limit <= 0 {
		limit = DefaultElasticLimit
	}
	films, err := s.source.ElasticSearch(ctx, query, limit)
	if err != nil {
		s.log.Error("elastic search failed", "query", query, "error", err)
		return []film.Film{}
	}
	return films
}

// Genres lists genres where the source has them.
func (s *Service) Genres(ctx context.Context) ([]dataset.Genre, error) {
	return s.source.Genres(ctx)
}

// AddMovie uploads a movie. Errors are returned, usually as
// *api.AddMovieError.
func (s *Service) AddMovie(ctx context.Context, req api.AddMovieRequest) (api.AddMovieResponse, error) {
	return s.source.AddMovie(ctx, req)
}

// Login signs in against the source and records the session.
func (s *Service) Login(ctx context.Context, username, password string) (session.User, error) {
	if s.session == nil {
		return session.User{}, errors.New("login: no session configured")
	}
	resp, err := s.source.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return session.User{}, err
	}
	info := session.Info{UserID: resp.UserID, Username: resp.Username, Role: resp.UserType}
	if err := s.session.Login(ctx, resp.AccessToken, info); err != nil {
		return session.User{}, err
	}
	u, _ := s.session.User()
	return u, nil
}

// Logout clears the session.
func (s *Service) Logout(ctx context.Context) error {
	if s.session == nil {
		return nil
	}
	return s.session.Logout(ctx)
}

// StreamURL returns the video stream URL for a movie.
func (s *Service) StreamURL(id int64) (string, error) {
	return s.source.StreamURL(id)
}

// PreloadTopMovies warms the poster cache for the top rated list and
// returns how many posters were resolved.
func (s *Service) PreloadTopMovies(ctx context.Context) (int, error) {
	if s.posters == nil {
		return 0, nil
	}
	films, err := s.source.TopRated(ctx, 0)
	if err != nil {
		s.log.Error("preload top movies failed", "error", err)
		return 0, fmt.Errorf("preload top movies: %w", err)
	}

	resolved := make([]bool, len(films))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadWorkers)
	for i, f := range films {
		if f.PosterURL == "" {
			continue
		}
		g.Go(func() error {
			resolved[i] = s.posters.Display(gctx, f.PosterURL) != ""
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, ok := range resolved {
		if ok {
			n++
		}
	}
	s.log.Info("preloaded top movie posters", "movies", len(films), "posters", n)
	return n, nil
}
