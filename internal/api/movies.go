package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vmunix/reelcat/internal/film"
)

// Endpoint paths relative to the API root.
const (
	pathMovies      = "/movies"
	pathTopRated    = "/movies/top_rated"
	pathSearch      = "/movies/search"
	pathSimilar     = "/movies/may_be_interesting"
	pathElastic     = "/movies/elastic_search"
	pathYouMayLike  = "/movies/you_may_like"
	pathAddMovie    = "/movies/add"
	pathLogin       = "/users/login"
	headerTotalSize = "X-Total-Count"
)

// Page is one page of the movie listing.
type Page struct {
	Records []film.Raw
	// Total is the backend's X-Total-Count, or 0 when absent.
	Total int
}

// LoginResponse is returned by the login endpoint.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserType    string `json:"user_type"`
	Username    string `json:"username"`
	UserID      int64  `json:"user_id"`
}

// Movies lists one page of the catalog.
func (c *Client) Movies(ctx context.Context, page, size int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	data, header, err := c.get(ctx, pathMovies, q)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	records, err := c.decodeList(data, film.ShapeBackend, pathMovies)
	if err != nil {
		return nil, err
	}

	total, _ := strconv.Atoi(header.Get(headerTotalSize))
	return &Page{Records: records, Total: total}, nil
}

// Movie fetches the detail record of one movie.
func (c *Client) Movie(ctx context.Context, id int64) (film.Raw, error) {
	endpoint := fmt.Sprintf("/movies/%d/show_page", id)
	data, _, err := c.get(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("get movie %d: %w", id, err)
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("get movie %d: %w", id, ErrEmptyBody)
	}

	r, err := film.DecodeRecord(json.RawMessage(data), film.ShapeBackend)
	if err != nil {
		return nil, fmt.Errorf("decode movie %d: %w", id, err)
	}
	return r, nil
}

// TopRated lists the highest rated movies.
func (c *Client) TopRated(ctx context.Context, limit int) ([]film.Raw, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.list(ctx, pathTopRated, q, film.ShapeBackend)
}

// Search runs the backend's title search.
func (c *Client) Search(ctx context.Context, movie string, limit int) ([]film.Raw, error) {
	q := url.Values{}
	q.Set("movie", movie)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.list(ctx, pathSearch, q, film.ShapeBackend)
}

// Similar lists movies related to movieID.
func (c *Client) Similar(ctx context.Context, movieID int64) ([]film.Raw, error) {
	q := url.Values{}
	q.Set("movie_id", strconv.FormatInt(movieID, 10))
	return c.list(ctx, pathSimilar, q, film.ShapeBackend)
}

// ElasticSearch runs the full-text search. Its index may return either the
// backend or the TMDB record shape, so records are detected individually.
func (c *Client) ElasticSearch(ctx context.Context, query string, limit int) ([]film.Raw, error) {
	q := url.Values{}
	q.Set("query", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.list(ctx, pathElastic, q, film.ShapeAuto)
}

// YouMayLike lists personal recommendations for userID.
func (c *Client) YouMayLike(ctx context.Context, userID int64, topN int) ([]film.Raw, error) {
	q := url.Values{}
	q.Set("user_id", strconv.FormatInt(userID, 10))
	q.Set("top_n", strconv.Itoa(topN))
	return c.list(ctx, pathYouMayLike, q, film.ShapeBackend)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}

	var resp LoginResponse
	if err := c.postJSON(ctx, pathLogin, body, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: response missing access token")
	}
	return &resp, nil
}

// StreamURL returns the video stream URL for a movie.
func (c *Client) StreamURL(id int64) string {
	return fmt.Sprintf("%s/movies/%d/stream", c.baseURL, id)
}

func (c *Client) list(ctx context.Context, endpoint string, q url.Values, shape film.Shape) ([]film.Raw, error) {
	data, _, err := c.get(ctx, endpoint, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return c.decodeList(data, shape, endpoint)
}

func (c *Client) decodeList(data []byte, shape film.Shape, endpoint string) ([]film.Raw, error) {
	records, skipped, err := film.DecodeList(data, shape)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	if skipped > 0 {
		c.log.Warn("skipped malformed records", "endpoint", endpoint, "skipped", skipped)
	}
	return records, nil
}
