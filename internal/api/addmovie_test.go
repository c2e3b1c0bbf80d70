package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/testsupport"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func memFS(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/posters/heat.png", pngBytes, 0644))
	require.NoError(t, afero.WriteFile(fs, "/posters/empty.png", nil, 0644))
	require.NoError(t, afero.WriteFile(fs, "/posters/notes.txt", []byte("just some text"), 0644))
	require.NoError(t, afero.WriteFile(fs, "/posters/huge.png", make([]byte, MaxPosterBytes+1), 0644))
	return fs
}

func validRequest() AddMovieRequest {
	return AddMovieRequest{
		Title:       "  Heat ",
		Description: "A group of professional bank robbers...",
		Genres:      " Crime | Drama ||",
		PosterPath:  "/posters/heat.png",
	}
}

func TestClient_AddMovie(t *testing.T) {
	b := testsupport.NewBackend(t)
	b.SetAddResponse(http.StatusOK, `{"movie_id": 10, "title": "Heat"}`)
	c := newTestClient(b, WithFS(memFS(t)))

	resp, err := c.AddMovie(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Heat", resp["title"])

	uploads := b.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, "Heat", uploads[0].Title)
	assert.Equal(t, "Crime|Drama", uploads[0].Genres)
	assert.Equal(t, "heat.png", uploads[0].PosterName)
	assert.Equal(t, "image/png", uploads[0].PosterType)
	assert.Equal(t, len(pngBytes), uploads[0].PosterSize)
}

func TestAddMovieRequest_Validate(t *testing.T) {
	fs := memFS(t)

	tests := []struct {
		name   string
		mutate func(*AddMovieRequest)
		want   error
	}{
		{"missing title", func(r *AddMovieRequest) { r.Title = " " }, ErrMissingFields},
		{"missing poster", func(r *AddMovieRequest) { r.PosterPath = "" }, ErrMissingFields},
		{"only separators", func(r *AddMovieRequest) { r.Genres = "| |" }, ErrInvalidGenres},
		{"empty poster", func(r *AddMovieRequest) { r.PosterPath = "/posters/empty.png" }, ErrEmptyPoster},
		{"huge poster", func(r *AddMovieRequest) { r.PosterPath = "/posters/huge.png" }, ErrPosterTooLarge},
		{"not an image", func(r *AddMovieRequest) { r.PosterPath = "/posters/notes.txt" }, ErrUnsupportedPoster},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, _, err := req.Validate(fs)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_AddMovie_ValidationSkipsUpload(t *testing.T) {
	b := testsupport.NewBackend(t)
	c := newTestClient(b, WithFS(memFS(t)))

	req := validRequest()
	req.Description = ""
	_, err := c.AddMovie(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingFields)
	assert.Zero(t, b.Hits("add"))
}

func TestClient_AddMovie_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind AddMovieErrorKind
		wantMsg  string
	}{
		{"server error", 500, `{"detail": "boom"}`, KindServer, "internal server error, please try again later or contact the administrator"},
		{"too large", 413, ``, KindTooLarge, "poster file is too large"},
		{"unsupported", 415, ``, KindUnsupportedType, "unsupported file format"},
		{"not-null", 400, `{"detail": "null value in column \"title\" violates not-null constraint"}`, KindDatabase, ""},
		{"detail", 409, `{"detail": "Movie already exists"}`, KindDetail, "Movie already exists"},
		{"generic", 400, `{}`, KindGeneric, "failed to add the movie, please try again later"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testsupport.NewBackend(t)
			b.SetAddResponse(tt.status, tt.body)
			c := newTestClient(b, WithFS(memFS(t)))

			_, err := c.AddMovie(context.Background(), validRequest())
			var ae *AddMovieError
			require.True(t, errors.As(err, &ae), "got %v", err)
			assert.Equal(t, tt.wantKind, ae.Kind)
			assert.Equal(t, tt.status, ae.Status)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, ae.Error())
			}
			assert.Equal(t, 1, b.Hits("add"), "uploads are never retried")
		})
	}
}

func TestClient_AddMovie_EmptyResponse(t *testing.T) {
	b := testsupport.NewBackend(t)
	b.SetAddResponse(http.StatusOK, ``)
	c := newTestClient(b, WithFS(memFS(t)))

	_, err := c.AddMovie(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestClient_AddMovie_Unauthorized(t *testing.T) {
	b := testsupport.NewBackend(t)
	b.RequireToken("good")
	calls := 0
	c := newTestClient(b, WithFS(memFS(t)), WithUnauthorizedHandler(func(context.Context) { calls++ }))

	_, err := c.AddMovie(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, calls)
}
