package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"

	"github.com/vmunix/reelcat/internal/film"
)

const (
	// MaxPosterBytes is the largest poster the backend accepts.
	MaxPosterBytes = 5 << 20

	addMovieTimeout = 30 * time.Second
)

// AddMovieRequest is the admin upload form.
type AddMovieRequest struct {
	Title       string
	Description string
	Genres      string // '|' separated
	PosterPath  string
}

// AddMovieResponse is whatever the backend echoes back for the new movie.
type AddMovieResponse map[string]any

// Poster is a validated upload.
type Poster struct {
	Name        string
	ContentType string
	Data        []byte
}

// Validate trims the form, normalizes genres and loads the poster from fs.
func (r AddMovieRequest) Validate(fs afero.Fs) (AddMovieRequest, *Poster, error) {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Genres = strings.TrimSpace(r.Genres)
	r.PosterPath = strings.TrimSpace(r.PosterPath)

	if r.Title == "" || r.Description == "" || r.Genres == "" || r.PosterPath == "" {
		return r, nil, ErrMissingFields
	}

	r.Genres = film.FormatGenres([]string{r.Genres})
	if r.Genres == "" {
		return r, nil, ErrInvalidGenres
	}

	poster, err := LoadPoster(fs, r.PosterPath)
	if err != nil {
		return r, nil, err
	}
	return r, poster, nil
}

// LoadPoster reads and checks a poster image.
func LoadPoster(fs afero.Fs, path string) (*Poster, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("poster: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("poster: %s is a directory", path)
	}
	if info.Size() == 0 {
		return nil, ErrEmptyPoster
	}
	if info.Size() > MaxPosterBytes {
		return nil, ErrPosterTooLarge
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read poster: %w", err)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedPoster, mt.String())
	}

	return &Poster{
		Name:        filepath.Base(path),
		ContentType: mt.String(),
		Data:        data,
	}, nil
}

// AddMovie uploads a new movie. Unlike the read endpoints, failures are
// returned as *AddMovieError carrying a user-readable message.
func (c *Client) AddMovie(ctx context.Context, req AddMovieRequest) (AddMovieResponse, error) {
	req, poster, err := req.Validate(c.fs)
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeAddMovieForm(req, poster)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	c.log.Info("uploading movie", "title", req.Title, "genres", req.Genres,
		"poster", poster.Name, "poster_type", poster.ContentType, "poster_size", len(poster.Data))

	ctx, cancel := context.WithTimeout(ctx, addMovieTimeout)
	defer cancel()

	resp, err := c.do(ctx, http.MethodPost, pathAddMovie, nil, body, contentType)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}
		return nil, &AddMovieError{Kind: KindGeneric, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		e := classifyAddMovie(resp.StatusCode, extractDetail(raw))
		c.log.Error("add movie failed", "status", resp.StatusCode, "detail", e.Detail)
		return nil, e
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &AddMovieError{Kind: KindGeneric, Err: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, &AddMovieError{Kind: KindDetail, Detail: ErrEmptyBody.Error(), Err: ErrEmptyBody}
	}

	var out AddMovieResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &AddMovieError{Kind: KindGeneric, Err: fmt.Errorf("decode response: %w", err)}
	}
	c.log.Info("movie added", "title", req.Title)
	return out, nil
}

func encodeAddMovieForm(req AddMovieRequest, poster *Poster) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range []struct{ name, value string }{
		{"title", req.Title},
		{"description", req.Description},
		{"genres", req.Genres},
	} {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="poster"; filename=%q`, poster.Name))
	h.Set("Content-Type", poster.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(poster.Data); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
