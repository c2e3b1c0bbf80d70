package ranking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/reelcat/internal/film"
)

func films(titles ...string) []film.Film {
	out := make([]film.Film, len(titles))
	for i, t := range titles {
		out[i] = film.Film{ID: int64(i + 1), Title: t}
	}
	return out
}

func titlesOf(fs []film.Film) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Title
	}
	return out
}

func TestSignificantWords(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"  The Dark  Knight ", []string{"the", "dark", "knight"}},
		{"a b c", nil},
		{"x men", []string{"men"}},
		{"Я ТЫ", []string{"ты"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, SignificantWords(tt.query))
		})
	}
}

func TestRank_ExactMatchFirst(t *testing.T) {
	got := Rank(films("The Matrix", "Matrix Reloaded", "Matrix"), "matrix")
	require.Len(t, got, 3)
	assert.Equal(t, "Matrix", got[0].Title)
}

func TestRank_WordOrderPreferred(t *testing.T) {
	got := Rank(films("Knight Dark Adventures", "The Dark Knight"), "dark knight")
	assert.Equal(t, []string{"The Dark Knight", "Knight Dark Adventures"}, titlesOf(got))
}

func TestRank_RatingBreaksTies(t *testing.T) {
	candidates := []film.Film{
		{ID: 1, Title: "Alien", Rating: 7.1},
		{ID: 2, Title: "Aliens", Rating: 8.4},
		{ID: 3, Title: "Alien 3", Rating: 6.4},
	}

	got := Rank(candidates, "alien")
	assert.Equal(t, []string{"Alien", "Aliens", "Alien 3"}, titlesOf(got), "exact match still wins over rating")

	got = Rank(candidates, "alien ")
	assert.Equal(t, "Alien", got[0].Title, "query is trimmed before the exact-match check")

	got = Rank(candidates[1:], "alien")
	assert.Equal(t, []string{"Aliens", "Alien 3"}, titlesOf(got))
}

func TestRank_FiltersIncompleteMatches(t *testing.T) {
	got := Rank(films("The Dark Knight", "Dark Shadows", "Knightfall"), "dark knight")
	assert.Equal(t, []string{"The Dark Knight"}, titlesOf(got))
}

func TestRank_SingleCharacterQueryIsEmpty(t *testing.T) {
	got := Rank(films("A", "I Robot"), "a i")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRank_NoMatchIsEmpty(t *testing.T) {
	assert.Empty(t, Rank(films("Heat", "Ronin"), "matrix"))
}

func TestRank_CaseInsensitiveCyrillic(t *testing.T) {
	got := Rank(films("Брат 2", "БРАТ", "Сестры"), "брат")
	assert.Equal(t, []string{"БРАТ", "Брат 2"}, titlesOf(got))
}

// Every returned title contains every significant query word.
func TestRank_Completeness(t *testing.T) {
	corpus := films(
		"The Lord of the Rings", "Lord of War", "The Rings", "War of the Worlds",
		"The Two Towers", "Ring", "Lords of Dogtown", "The War",
	)
	queries := []string{"lord", "the rings", "war of", "of the", "the", "ring lord", "x y", "towers two"}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			words := SignificantWords(q)
			for _, f := range Rank(corpus, q) {
				title := strings.ToLower(f.Title)
				for _, w := range words {
					assert.Contains(t, title, w, fmt.Sprintf("%q returned for %q", f.Title, q))
				}
			}
		})
	}
}

func TestScoreTitle(t *testing.T) {
	words := SignificantWords("dark knight")

	s := ScoreTitle("The Dark Knight", "dark knight", words)
	assert.Equal(t, Score{ExactMatch: false, MatchCount: 2, InOrder: true}, s)

	s = ScoreTitle("Dark Knight", "dark knight", words)
	assert.True(t, s.ExactMatch)

	s = ScoreTitle("Knight", "dark knight", words)
	assert.Equal(t, 1, s.MatchCount)
	assert.False(t, s.InOrder, "a missing first word breaks order")
	assert.False(t, s.Complete(words))
}
