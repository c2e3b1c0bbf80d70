// Package dataset reads the static movie dataset published to object
// storage. It is the legacy alternative to the backend API.
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/pkg/ranking"
)

// Document paths relative to the dataset root.
const (
	PathAllMovies       = "/movies/all.json"
	PathTopRated        = "/top_rated.json"
	PathGenres          = "/genres.json"
	PathRecommendations = "/movies/recommendations/%d.json"
	PathPosters         = "/posters"
)

const (
	defaultCacheTTL = 5 * time.Minute
	// LanguageRU prefers the *_ru fields.
	LanguageRU = "ru"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("dataset document not found")

// Genre is an entry of genres.json.
type Genre struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	NameRU string `json:"name_ru,omitempty"`
}

// Client reads the dataset over HTTP.
type Client struct {
	baseURL    string
	language   string
	httpClient *http.Client
	log        *slog.Logger
	cacheTTL   time.Duration
	now        func() time.Time
	cache      *cache

	genreMu sync.Mutex
	genres  map[int64]Genre
}

// Option configures a Client.
type Option func(*Client)

// WithLanguage sets the preferred language ("ru" or "en").
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = strings.ToLower(strings.TrimSpace(lang))
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "dataset")
	}
}

// WithCacheTTL sets how long fetched documents are reused. Zero disables
// caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithClock sets the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a dataset client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		language: LanguageRU,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log:      slog.New(slog.DiscardHandler),
		cacheTTL: defaultCacheTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = newCache(c.cacheTTL, c.now)
	return c
}

// Movies returns one page of all.json and the total number of movies.
// Pages start at 1.
func (c *Client) Movies(ctx context.Context, page, size int) ([]film.DatasetRecord, int, error) {
	all, err := c.records(ctx, PathAllMovies)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		return c.localize(ctx, all), len(all), nil
	}

	start := min((page-1)*size, len(all))
	end := min(start+size, len(all))
	return c.localize(ctx, all[start:end]), len(all), nil
}

// TopRated returns top_rated.json.
func (c *Client) TopRated(ctx context.Context) ([]film.DatasetRecord, error) {
	records, err := c.records(ctx, PathTopRated)
	if err != nil {
		return nil, err
	}
	return c.localize(ctx, records), nil
}

// Search filters all.json by case-insensitive substring on either title.
func (c *Client) Search(ctx context.Context, query string) ([]film.DatasetRecord, error) {
	term := ranking.Fold(strings.TrimSpace(query))
	if term == "" {
		return []film.DatasetRecord{}, nil
	}

	all, err := c.records(ctx, PathAllMovies)
	if err != nil {
		return nil, err
	}

	matches := make([]film.DatasetRecord, 0)
	for _, r := range all {
		if strings.Contains(ranking.Fold(string(r.TitleRU)), term) ||
			strings.Contains(ranking.Fold(string(r.Title)), term) {
			matches = append(matches, r)
		}
	}
	return c.localize(ctx, matches), nil
}

// Recommendations returns the precomputed similar movies for movieID.
func (c *Client) Recommendations(ctx context.Context, movieID int64) ([]film.DatasetRecord, error) {
	records, err := c.records(ctx, fmt.Sprintf(PathRecommendations, movieID))
	if err != nil {
		return nil, err
	}
	return c.localize(ctx, records), nil
}

// Genres returns genres.json with names localized.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	body, err := c.fetch(ctx, PathGenres)
	if err != nil {
		return nil, err
	}
	var genres []Genre
	if err := json.Unmarshal(body, &genres); err != nil {
		return nil, fmt.Errorf("decode %s: %w", PathGenres, err)
	}
	for i := range genres {
		genres[i].Name = c.genreName(genres[i])
	}
	return genres, nil
}

// PosterURL turns a dataset poster path into an absolute URL.
func (c *Client) PosterURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + PathPosters + path
}

func (c *Client) records(ctx context.Context, path string) ([]film.DatasetRecord, error) {
	body, err := c.fetch(ctx, path)
	if err != nil {
		return nil, err
	}

	raws, skipped, err := film.DecodeList(body, film.ShapeDataset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if skipped > 0 {
		c.log.Warn("skipped malformed records", "path", path, "skipped", skipped)
	}

	records := make([]film.DatasetRecord, 0, len(raws))
	for _, r := range raws {
		if dr, ok := r.(film.DatasetRecord); ok {
			records = append(records, dr)
		}
	}
	return records, nil
}

// localize applies language preference, poster prefix and genre names to
// copies of records.
func (c *Client) localize(ctx context.Context, records []film.DatasetRecord) []film.DatasetRecord {
	index := c.genreIndex(ctx)

	out := make([]film.DatasetRecord, len(records))
	for i, r := range records {
		if c.language == LanguageRU {
			if strings.TrimSpace(string(r.TitleRU)) != "" {
				r.Title = r.TitleRU
			}
			if strings.TrimSpace(string(r.DescriptionRU)) != "" {
				r.Description = r.DescriptionRU
			}
		}
		r.PosterPath = film.FlexString(c.PosterURL(string(r.PosterPath)))

		names := make([]string, 0, len(r.GenreIDs))
		for _, id := range r.GenreIDs {
			if g, ok := index[id]; ok {
				names = append(names, c.genreName(g))
			}
		}
		r.GenreNames = names
		out[i] = r
	}
	return out
}

// genreIndex loads genres.json once. A failed load is retried on the next
// call and leaves records without genre names.
func (c *Client) genreIndex(ctx context.Context) map[int64]Genre {
	c.genreMu.Lock()
	defer c.genreMu.Unlock()

	if c.genres != nil {
		return c.genres
	}

	body, err := c.fetch(ctx, PathGenres)
	if err != nil {
		c.log.Warn("genre index unavailable", "error", err)
		return nil
	}
	var genres []Genre
	if err := json.Unmarshal(body, &genres); err != nil {
		c.log.Warn("genre index malformed", "error", err)
		return nil
	}

	c.genres = make(map[int64]Genre, len(genres))
	for _, g := range genres {
		c.genres[g.ID] = g
	}
	return c.genres
}

func (c *Client) genreName(g Genre) string {
	if c.language == LanguageRU && g.NameRU != "" {
		return g.NameRU
	}
	return g.Name
}

func (c *Client) fetch(ctx context.Context, path string) ([]byte, error) {
	if body, ok := c.cache.get(path); ok {
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Object storage answers 403 for missing keys when listing is disabled.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", path, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	c.log.Debug("fetched dataset document", "path", path, "bytes", len(body))
	c.cache.set(path, body)
	return body, nil
}
