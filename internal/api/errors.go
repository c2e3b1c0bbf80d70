package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for backend responses.
var (
	ErrUnauthorized = errors.New("unauthorized: session expired or invalid")
	ErrNotFound     = errors.New("not found")
	ErrEmptyBody    = errors.New("server returned an empty response")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code   int
	Status string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error: %s: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api error: %s", e.Status)
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized
	}
	return false
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Local validation errors for AddMovie.
var (
	ErrMissingFields     = errors.New("title, description, genres and poster are all required")
	ErrInvalidGenres     = errors.New("genres must be a '|' separated list with at least one entry")
	ErrEmptyPoster       = errors.New("poster file is empty")
	ErrPosterTooLarge    = errors.New("poster file must not exceed 5MB")
	ErrUnsupportedPoster = errors.New("poster must be an image")
)

// AddMovieErrorKind classifies a failed upload.
type AddMovieErrorKind int

const (
	KindGeneric AddMovieErrorKind = iota
	KindServer
	KindDatabase
	KindTooLarge
	KindUnsupportedType
	KindDetail
)

// AddMovieError is the user-facing failure of AddMovie.
type AddMovieError struct {
	Kind   AddMovieErrorKind
	Status int
	Detail string
	Err    error
}

func (e *AddMovieError) Error() string {
	switch e.Kind {
	case KindServer:
		return "internal server error, please try again later or contact the administrator"
	case KindDatabase:
		return "database error: the record could not be created, please contact the administrator"
	case KindTooLarge:
		return "poster file is too large"
	case KindUnsupportedType:
		return "unsupported file format"
	case KindDetail:
		return e.Detail
	default:
		return "failed to add the movie, please try again later"
	}
}

func (e *AddMovieError) Unwrap() error {
	return e.Err
}

// classifyAddMovie maps a failed upload response to an AddMovieError.
func classifyAddMovie(code int, detail string) *AddMovieError {
	e := &AddMovieError{Status: code, Detail: detail}
	switch {
	case code == http.StatusInternalServerError:
		e.Kind = KindServer
	case containsFold(detail, "violates not-null constraint"):
		e.Kind = KindDatabase
	case code == http.StatusRequestEntityTooLarge:
		e.Kind = KindTooLarge
	case code == http.StatusUnsupportedMediaType:
		e.Kind = KindUnsupportedType
	case detail != "":
		e.Kind = KindDetail
	default:
		e.Kind = KindGeneric
	}
	return e
}
