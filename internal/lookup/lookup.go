// Package lookup fuzzy-matches recognized text against catalog titles.
package lookup

import (
	"sort"

	"bookdetector/internal/catalog"
	"bookdetector/internal/textutil"
)

// Defaults used when callers have no configured values.
const (
	DefaultLimit         = 5
	DefaultMinSimilarity = 0.6
)

// Scored is a distinct catalog title with its similarity to the query.
type Scored struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Match is a catalog entry selected through its title's score.
type Match struct {
	catalog.Entry
	Score float64 `json:"score"`
}

// Rank scores every distinct title against query and returns up to limit
// titles scoring at least minSimilarity, best first. Equal scores keep
// catalog order. Query and titles are compared in NFC form.
func Rank(c *catalog.Catalog, query string, limit int, minSimilarity float64) []Scored {
	if c.Len() == 0 || limit <= 0 {
		return nil
	}
	minSimilarity = clamp(minSimilarity)

	matcher := textutil.NewMatcher(textutil.NormalizeNFC(query))
	var ranked []Scored
	for _, title := range c.Titles() {
		score := matcher.Ratio(textutil.NormalizeNFC(title))
		if score >= minSimilarity {
			ranked = append(ranked, Scored{Title: title, Score: score})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// FindScored ranks titles like Rank, then expands every selected title to all
// entries carrying it, in catalog order.
func FindScored(c *catalog.Catalog, query string, limit int, minSimilarity float64) []Match {
	ranked := Rank(c, query, limit, minSimilarity)
	if len(ranked) == 0 {
		return nil
	}
	scores := make(map[string]float64, len(ranked))
	for _, r := range ranked {
		scores[r.Title] = r.Score
	}

	var matches []Match
	for _, entry := range c.Entries() {
		if score, ok := scores[entry.Title]; ok {
			matches = append(matches, Match{Entry: entry, Score: score})
		}
	}
	return matches
}

// FindMatches returns the catalog entries whose titles are among the limit
// best matches for query with similarity >= minSimilarity. Entries come back
// in catalog order. The catalog is never modified.
func FindMatches(c *catalog.Catalog, query string, limit int, minSimilarity float64) []catalog.Entry {
	scored := FindScored(c, query, limit, minSimilarity)
	if len(scored) == 0 {
		return nil
	}
	entries := make([]catalog.Entry, len(scored))
	for i, m := range scored {
		entries[i] = m.Entry
	}
	return entries
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
