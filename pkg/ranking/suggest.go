package ranking

import (
	"sort"

	"github.com/hbollon/go-edlib"
)

// SuggestThreshold is the minimum Jaro-Winkler similarity for a suggestion.
const SuggestThreshold = 0.70

// Suggestion is a title close to a query that matched nothing.
type Suggestion struct {
	Title string
	Score float64 // Jaro-Winkler similarity (0.0-1.0)
}

// Suggest returns up to n titles most similar to query, best first.
// Uses Jaro-Winkler similarity, which favors shared prefixes.
func Suggest(query string, titles []string, n int) []Suggestion {
	q := NormalizeQuery(query)
	if q == "" || n <= 0 {
		return nil
	}

	seen := make(map[string]bool, len(titles))
	var out []Suggestion
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true

		score := float64(edlib.JaroWinklerSimilarity(q, Fold(title)))
		if score >= SuggestThreshold {
			out = append(out, Suggestion{Title: title, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
