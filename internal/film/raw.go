package film

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotList is returned when a payload expected to be a JSON array is not.
var ErrNotList = errors.New("payload is not a JSON array")

// tmdbImageBase prefixes bare TMDB poster paths.
const tmdbImageBase = "https://image.tmdb.org/t/p/w500"

// Raw is one upstream record shape. Each known shape maps itself to a Film.
type Raw interface {
	Film(p Policy) (Film, bool)
}

// Shape names a known upstream record layout.
type Shape int

const (
	ShapeAuto Shape = iota
	ShapeBackend
	ShapeDataset
	ShapeTMDB
)

func (s Shape) String() string {
	switch s {
	case ShapeBackend:
		return "backend"
	case ShapeDataset:
		return "dataset"
	case ShapeTMDB:
		return "tmdb"
	default:
		return "auto"
	}
}

// BackendRecord is the live backend's movie shape. Older endpoints send
// "id" instead of "movie_id" and omit rating.
type BackendRecord struct {
	MovieID     FlexInt    `json:"movie_id"`
	ID          FlexInt    `json:"id"`
	Title       FlexString `json:"title"`
	Description FlexString `json:"description"`
	ReleaseDate FlexString `json:"release_date"`
	Rating      FlexFloat  `json:"rating"`
	PosterURL   FlexString `json:"poster_url"`
	VideoURL    FlexString `json:"video_url"`
	Duration    FlexInt    `json:"duration"`
	Genres      GenreList  `json:"genres"`
}

// Film implements Raw.
func (r BackendRecord) Film(p Policy) (Film, bool) {
	id := int64(r.MovieID)
	if id == 0 {
		id = int64(r.ID)
	}
	return fields{
		id:          id,
		title:       string(r.Title),
		description: string(r.Description),
		releaseDate: string(r.ReleaseDate),
		rating:      float64(r.Rating),
		posterURL:   string(r.PosterURL),
		videoURL:    string(r.VideoURL),
		duration:    int64(r.Duration),
		genres:      []string(r.Genres),
	}.build(p)
}

// DatasetRecord is the static dataset's movie shape. Localized fields and
// genre names are filled in by the dataset client before normalization.
type DatasetRecord struct {
	MovieID       FlexInt    `json:"movie_id"`
	Title         FlexString `json:"title"`
	TitleRU       FlexString `json:"title_ru"`
	Description   FlexString `json:"description"`
	DescriptionRU FlexString `json:"description_ru"`
	PosterPath    FlexString `json:"poster_url"`
	ReleaseDate   FlexString `json:"release_date"`
	Rating        FlexFloat  `json:"rating"`
	GenreIDs      IDList     `json:"genres"`

	// GenreNames holds GenreIDs resolved against the genre index.
	GenreNames []string `json:"-"`
}

// Film implements Raw.
func (r DatasetRecord) Film(p Policy) (Film, bool) {
	return fields{
		id:          int64(r.MovieID),
		title:       string(r.Title),
		description: string(r.Description),
		releaseDate: string(r.ReleaseDate),
		rating:      float64(r.Rating),
		posterURL:   string(r.PosterPath),
		genres:      r.GenreNames,
	}.build(p)
}

// TMDBRecord is the TMDB-style shape some search indexes return.
type TMDBRecord struct {
	ID          FlexInt    `json:"id"`
	Title       FlexString `json:"title"`
	Name        FlexString `json:"name"`
	Overview    FlexString `json:"overview"`
	ReleaseDate FlexString `json:"release_date"`
	Rating      FlexFloat  `json:"rating"`
	VoteAverage FlexFloat  `json:"vote_average"`
	PosterURL   FlexString `json:"poster_url"`
	PosterPath  FlexString `json:"poster_path"`
	VideoURL    FlexString `json:"video_url"`
	Duration    FlexInt    `json:"duration"`
	Genres      GenreList  `json:"genres"`
}

// Film implements Raw.
func (r TMDBRecord) Film(p Policy) (Film, bool) {
	title := string(r.Title)
	if strings.TrimSpace(title) == "" {
		title = string(r.Name)
	}
	rating := float64(r.Rating)
	if rating == 0 {
		rating = float64(r.VoteAverage)
	}
	poster := string(r.PosterURL)
	if poster == "" && r.PosterPath != "" {
		poster = tmdbImageBase + string(r.PosterPath)
	}
	return fields{
		id:          int64(r.ID),
		title:       title,
		description: string(r.Overview),
		releaseDate: string(r.ReleaseDate),
		rating:      rating,
		posterURL:   poster,
		videoURL:    string(r.VideoURL),
		duration:    int64(r.Duration),
		genres:      []string(r.Genres),
	}.build(p)
}

// Detect picks the record variant for a single JSON object by its keys.
func Detect(raw json.RawMessage) (Shape, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return ShapeAuto, fmt.Errorf("detect shape: %w", err)
	}
	if keys == nil {
		return ShapeAuto, errors.New("detect shape: null record")
	}

	_, hasTitleRU := keys["title_ru"]
	_, hasPosterPath := keys["poster_path"]
	_, hasOverview := keys["overview"]
	_, hasName := keys["name"]
	_, hasTitle := keys["title"]

	switch {
	case hasTitleRU:
		return ShapeDataset, nil
	case hasPosterPath || hasOverview || (hasName && !hasTitle):
		return ShapeTMDB, nil
	default:
		return ShapeBackend, nil
	}
}

// DecodeRecord decodes one JSON object as the given shape (or detects it).
func DecodeRecord(raw json.RawMessage, shape Shape) (Raw, error) {
	if shape == ShapeAuto {
		var err error
		if shape, err = Detect(raw); err != nil {
			return nil, err
		}
	}

	switch shape {
	case ShapeDataset:
		var r DatasetRecord
		err := json.Unmarshal(raw, &r)
		return r, err
	case ShapeTMDB:
		var r TMDBRecord
		err := json.Unmarshal(raw, &r)
		return r, err
	default:
		var r BackendRecord
		err := json.Unmarshal(raw, &r)
		return r, err
	}
}

// DecodeList decodes a JSON array of records. Null and malformed elements
// are skipped and counted; only a non-array payload is an error.
func DecodeList(data []byte, shape Shape) (records []Raw, skipped int, err error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNotList, err)
	}

	records = make([]Raw, 0, len(items))
	for _, item := range items {
		if isNull(item) {
			skipped++
			continue
		}
		r, err := DecodeRecord(item, shape)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped, nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// FlexInt accepts a JSON number or numeric string. Anything else decodes
// to zero without error.
type FlexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (n *FlexInt) UnmarshalJSON(data []byte) error {
	*n = 0
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			*n = FlexInt(t)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			*n = FlexInt(i)
		}
	}
	return nil
}

// FlexFloat accepts only a JSON number; anything else decodes to zero.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = 0
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		*f = FlexFloat(v)
	}
	return nil
}

// FlexString accepts a JSON string; null and non-strings decode to "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	*s = ""
	var v string
	if err := json.Unmarshal(data, &v); err == nil {
		*s = FlexString(v)
	}
	return nil
}

// GenreList accepts a '|' delimited string or an array of strings.
type GenreList []string

// UnmarshalJSON implements json.Unmarshaler.
func (g *GenreList) UnmarshalJSON(data []byte) error {
	*g = GenreList{}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*g = ParseGenres(s)
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, item := range items {
		if name, ok := item.(string); ok {
			if name = strings.TrimSpace(name); name != "" {
				*g = append(*g, name)
			}
		}
	}
	return nil
}

// IDList accepts an array of numeric ids; non-numeric entries are dropped
// and a non-array decodes to an empty list.
type IDList []int64

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	*l = IDList{}
	var items []FlexInt
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, id := range items {
		if id != 0 {
			*l = append(*l, int64(id))
		}
	}
	return nil
}
