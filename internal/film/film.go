// Package film defines the canonical movie record and the mapping from every
// upstream record shape the catalog has to tolerate.
package film

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder values substituted by the lenient policy.
const (
	DefaultTitle       = "No title"
	DefaultDescription = "No description available"
)

// placeholderTitles are titles upstream uses to mean "no title".
var placeholderTitles = map[string]bool{
	"":             true,
	DefaultTitle:   true,
	"Без названия": true,
}

// Film is the canonical normalized movie record.
type Film struct {
	ID              int64    `json:"movie_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	ReleaseDate     string   `json:"release_date"` // "2024-03-01"
	Rating          float64  `json:"rating"`
	PosterURL       string   `json:"poster_url,omitempty"`
	VideoURL        string   `json:"video_url"`
	DurationSeconds int64    `json:"duration"`
	Genres          []string `json:"genres"`
}

// Year extracts the year from ReleaseDate.
func (f *Film) Year() int {
	if len(f.ReleaseDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(f.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return year
}

// Duration returns the running time.
func (f *Film) Duration() time.Duration {
	return time.Duration(f.DurationSeconds) * time.Second
}

// Policy controls how records without a usable title are treated.
type Policy int

const (
	// Strict drops records without a usable title.
	Strict Policy = iota
	// Lenient keeps them and substitutes defaults.
	Lenient
)

func (p Policy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}

// ParsePolicy parses "strict" or "lenient" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	default:
		return Strict, fmt.Errorf("unknown normalization policy %q", s)
	}
}

// fields is the shape-independent intermediate every Raw variant maps to.
type fields struct {
	id          int64
	title       string
	description string
	releaseDate string
	rating      float64
	posterURL   string
	videoURL    string
	duration    int64
	genres      []string
}

func (f fields) build(p Policy) (Film, bool) {
	title := strings.TrimSpace(f.title)
	if placeholderTitles[title] {
		if p == Strict {
			return Film{}, false
		}
		title = DefaultTitle
	}

	description := strings.TrimSpace(f.description)
	if description == "" {
		description = DefaultDescription
	}

	rating := f.rating
	if rating < 0 {
		rating = 0
	}
	duration := f.duration
	if duration < 0 {
		duration = 0
	}
	genres := f.genres
	if genres == nil {
		genres = []string{}
	}

	return Film{
		ID:              f.id,
		Title:           title,
		Description:     description,
		ReleaseDate:     strings.TrimSpace(f.releaseDate),
		Rating:          rating,
		PosterURL:       strings.TrimSpace(f.posterURL),
		VideoURL:        strings.TrimSpace(f.videoURL),
		DurationSeconds: duration,
		Genres:          genres,
	}, true
}

// Normalize maps raw records to films under policy, dropping what the
// policy rejects.
func Normalize[R Raw](records []R, p Policy) []Film {
	films := make([]Film, 0, len(records))
	for _, r := range records {
		if f, ok := r.Film(p); ok {
			films = append(films, f)
		}
	}
	return films
}

// Dedupe removes films whose ID was already seen, keeping the first.
func Dedupe(films []Film) []Film {
	seen := make(map[int64]bool, len(films))
	out := make([]Film, 0, len(films))
	for _, f := range films {
		if seen[f.ID] {
			continue
		}
		seen[f.ID] = true
		out = append(out, f)
	}
	return out
}

// ParseGenres splits a '|' delimited genre string, trimming entries and
// dropping empty ones. The result is never nil.
func ParseGenres(s string) []string {
	genres := []string{}
	for _, g := range strings.Split(s, "|") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return genres
}

// FormatGenres joins genres in the backend's '|' form.
func FormatGenres(genres []string) string {
	return strings.Join(ParseGenres(strings.Join(genres, "|")), "|")
}
