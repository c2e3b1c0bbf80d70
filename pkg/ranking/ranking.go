// Package ranking orders search candidates by relevance to a free-text query.
package ranking

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vmunix/reelcat/internal/film"
)

// Fold lowercases s with Unicode-aware rules (titles are often Cyrillic).
func Fold(s string) string {
	return cases.Lower(language.Und).String(s)
}

// NormalizeQuery trims and lowercases a raw query.
func NormalizeQuery(query string) string {
	return Fold(strings.TrimSpace(query))
}

// SignificantWords splits a query on whitespace and keeps words longer than
// one character, in query order.
func SignificantWords(query string) []string {
	var words []string
	for _, w := range strings.Fields(NormalizeQuery(query)) {
		if utf8.RuneCountInString(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// Score describes how a single title relates to a query.
type Score struct {
	ExactMatch bool // title equals the normalized query
	MatchCount int  // query words found in the title
	InOrder    bool // query words appear in the title in query order
}

// ScoreTitle scores title against an already normalized query and its
// significant words.
func ScoreTitle(title, normalizedQuery string, words []string) Score {
	t := Fold(title)

	s := Score{ExactMatch: t == normalizedQuery, InOrder: true}
	prev := -1
	for _, w := range words {
		idx := strings.Index(t, w)
		if idx >= 0 {
			s.MatchCount++
		}
		// Each word must start after the furthest start of the words before it.
		if idx <= prev {
			s.InOrder = false
		}
		prev = max(prev, idx)
	}
	return s
}

// Complete reports whether every query word was found.
func (s Score) Complete(words []string) bool {
	return s.MatchCount == len(words)
}

// less orders a before b: exact match, then more matched words, then
// in-order, then higher rating.
func less(a, b Score, ra, rb float64) bool {
	if a.ExactMatch != b.ExactMatch {
		return a.ExactMatch
	}
	if a.MatchCount != b.MatchCount {
		return a.MatchCount > b.MatchCount
	}
	if a.InOrder != b.InOrder {
		return a.InOrder
	}
	return ra > rb
}

// Rank filters candidates to those whose title contains every significant
// query word and orders them by relevance. A query with no significant
// words yields an empty result.
func Rank(candidates []film.Film, query string) []film.Film {
	words := SignificantWords(query)
	if len(words) == 0 {
		return []film.Film{}
	}
	normalized := NormalizeQuery(query)

	type scored struct {
		film  film.Film
		score Score
	}
	items := make([]scored, len(candidates))
	for i, f := range candidates {
		items[i] = scored{film: f, score: ScoreTitle(f.Title, normalized, words)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return less(items[i].score, items[j].score, items[i].film.Rating, items[j].film.Rating)
	})

	out := make([]film.Film, 0, len(items))
	for _, it := range items {
		if it.score.Complete(words) {
			out = append(out, it.film)
		}
	}
	return out
}
