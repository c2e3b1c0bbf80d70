package film

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackendRecord_Strict_DropsMissingTitle(t *testing.T) {
	records := []BackendRecord{
		{MovieID: 1, Title: "The Matrix"},
		{MovieID: 2},
		{MovieID: 3, Title: "Без названия"},
		{MovieID: 4, Title: "   "},
	}

	films := Normalize(records, Strict)
	require.Len(t, films, 1)
	assert.Equal(t, "The Matrix", films[0].Title)
}

func TestBackendRecord_Lenient_DefaultsMissingTitle(t *testing.T) {
	records := []BackendRecord{
		{MovieID: 2},
	}

	films := Normalize(records, Lenient)
	require.Len(t, films, 1)
	assert.Equal(t, DefaultTitle, films[0].Title)
	assert.Equal(t, DefaultDescription, films[0].Description)
	assert.Zero(t, films[0].DurationSeconds)
	assert.NotNil(t, films[0].Genres)
	assert.Empty(t, films[0].Genres)
}

func TestBackendRecord_IDFallback(t *testing.T) {
	f, ok := BackendRecord{ID: 77, Title: "Heat"}.Film(Strict)
	require.True(t, ok)
	assert.Equal(t, int64(77), f.ID)

	f, ok = BackendRecord{MovieID: 5, ID: 77, Title: "Heat"}.Film(Strict)
	require.True(t, ok)
	assert.Equal(t, int64(5), f.ID, "movie_id wins over id")
}

func TestFilm_NegativeRatingClamped(t *testing.T) {
	f, ok := BackendRecord{MovieID: 1, Title: "X-Men", Rating: -3}.Film(Strict)
	require.True(t, ok)
	assert.Zero(t, f.Rating)
}

func TestParseGenres(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Drama|Crime", []string{"Drama", "Crime"}},
		{" Drama | Crime |", []string{"Drama", "Crime"}},
		{"", []string{}},
		{"||", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGenres(tt.in))
		})
	}
}

func TestFormatGenres(t *testing.T) {
	assert.Equal(t, "Drama|Crime", FormatGenres([]string{" Drama ", "", "Crime|"}))
}

func TestDedupe_KeepsFirst(t *testing.T) {
	films := []Film{
		{ID: 1, Title: "first"},
		{ID: 2, Title: "other"},
		{ID: 1, Title: "second"},
	}

	got := Dedupe(films)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "other", got[1].Title)
}

func TestFilm_Year(t *testing.T) {
	assert.Equal(t, 1999, (&Film{ReleaseDate: "1999-03-31"}).Year())
	assert.Equal(t, 0, (&Film{ReleaseDate: "n/a"}).Year())
	assert.Equal(t, 0, (&Film{}).Year())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Lenient")
	require.NoError(t, err)
	assert.Equal(t, Lenient, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	_, err = ParsePolicy("loose")
	assert.Error(t, err)
}
