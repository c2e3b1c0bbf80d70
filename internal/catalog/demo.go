package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vmunix/reelcat/internal/api"
	"github.com/vmunix/reelcat/internal/film"
	"github.com/vmunix/reelcat/internal/poster"
)

// DemoKeyPrefix prefixes locally stored demo movies.
const DemoKeyPrefix = "fake_movie_"

const demoDuration = 120

// ErrNoStore is returned by demo operations without configured storage.
var ErrNoStore = errors.New("no local store configured")

// DemoKey returns the storage key of a demo movie.
func DemoKey(id int64) string {
	return DemoKeyPrefix + strconv.FormatInt(id, 10)
}

// AddDemoMovie stores a movie locally instead of uploading it. Movie finds
// it before asking the source. The poster, when given, is inlined as a data
// URL.
func (s *Service) AddDemoMovie(ctx context.Context, req api.AddMovieRequest) (film.Film, error) {
	if s.kv == nil {
		return film.Film{}, ErrNoStore
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	genres := strings.TrimSpace(req.Genres)
	if title == "" || description == "" || genres == "" {
		return film.Film{}, api.ErrMissingFields
	}

	f := film.Film{
		ID:              s.demoID(),
		Title:           title,
		Description:     description,
		ReleaseDate:     s.now().Format("2006-01-02"),
		DurationSeconds: demoDuration,
		Genres:          film.ParseGenres(genres),
	}
	if len(f.Genres) == 0 {
		return film.Film{}, api.ErrInvalidGenres
	}

	if path := strings.TrimSpace(req.PosterPath); path != "" {
		p, err := api.LoadPoster(s.fs, path)
		if err != nil {
			return film.Film{}, err
		}
		f.PosterURL = poster.DataURL(p.Data)
	}

	data, err := json.Marshal(f)
	if err != nil {
		return film.Film{}, fmt.Errorf("marshal demo movie: %w", err)
	}
	if err := s.kv.Set(ctx, DemoKey(f.ID), string(data)); err != nil {
		return film.Film{}, fmt.Errorf("store demo movie: %w", err)
	}
	s.log.Info("demo movie stored", "movie_id", f.ID, "title", f.Title)
	return f, nil
}

// DemoMovies lists the locally stored demo movies by id.
func (s *Service) DemoMovies(ctx context.Context) []film.Film {
	if s.kv == nil {
		return []film.Film{}
	}
	keys, err := s.kv.Keys(ctx, DemoKeyPrefix)
	if err != nil {
		s.log.Warn("list demo movies failed", "error", err)
		return []film.Film{}
	}

	films := make([]film.Film, 0, len(keys))
	for _, key := range keys {
		id, err := strconv.ParseInt(strings.TrimPrefix(key, DemoKeyPrefix), 10, 64)
		if err != nil {
			continue
		}
		if f, ok := s.demoMovie(ctx, id); ok {
			films = append(films, f)
		}
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films
}

func (s *Service) demoMovie(ctx context.Context, id int64) (film.Film, bool) {
	if s.kv == nil {
		return film.Film{}, false
	}
	raw, err := s.kv.Get(ctx, DemoKey(id))
	if err != nil || raw == "" {
		return film.Film{}, false
	}
	var f film.Film
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		s.log.Warn("ignoring unreadable demo movie", "key", DemoKey(id), "error", err)
		return film.Film{}, false
	}
	if f.Genres == nil {
		f.Genres = []string{}
	}
	return f, true
}
