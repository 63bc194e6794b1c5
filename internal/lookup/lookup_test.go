package lookup

import (
	"fmt"
	"math"
	"testing"

	"bookdetector/internal/catalog"
)

func scenarioCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Title: "Mahabharatam", Author: "Vyasa", Year: "1990", PageCount: "800", BookID: "B001", SourcePath: "/books/Mahabharatam_Vyasa_1990_800_B001.pdf"},
		{Title: "Ramayanam", Author: "", Year: "1985", PageCount: "650", BookID: "B002", SourcePath: "/books/Ramayanam_తెలియదు_1985_650_B002.pdf"},
		{Title: "Mahabharatam", Author: "VyasaCopy", Year: "2005", PageCount: "820", BookID: "B003", SourcePath: "/books/Mahabharatam_VyasaCopy_2005_820_B003.pdf"},
	})
}

func bookIDs(entries []catalog.Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.BookID
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFindMatchesExpandsDuplicateTitles(t *testing.T) {
	got := FindMatches(scenarioCatalog(), "Mahabharat", DefaultLimit, DefaultMinSimilarity)
	if want := []string{"B001", "B003"}; !equalStrings(bookIDs(got), want) {
		t.Fatalf("FindMatches = %v, want %v", bookIDs(got), want)
	}
}

func TestFindMatchesScenarios(t *testing.T) {
	c := scenarioCatalog()
	tests := []struct {
		name  string
		query string
		limit int
		min   float64
		want  []string
	}{
		{"exact title", "Ramayanam", 5, 0.6, []string{"B002"}},
		{"near title", "Ramayan", 5, 0.6, []string{"B002"}},
		{"below cutoff", "Gitanjali", 5, 0.6, nil},
		{"empty query", "", 5, 0.6, nil},
		{"zero limit", "Ramayanam", 0, 0.6, nil},
		{"negative limit", "Ramayanam", -3, 0.6, nil},
		{"zero cutoff returns everything ranked", "Mahabharat", 5, 0, []string{"B001", "B002", "B003"}},
		{"limit one picks best title", "Mahabharat", 1, 0, []string{"B001", "B003"}},
		{"cutoff above one clamps to exact only", "Ramayanam", 5, 7, []string{"B002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bookIDs(FindMatches(c, tt.query, tt.limit, tt.min))
			if !equalStrings(got, tt.want) {
				t.Fatalf("FindMatches(%q, %d, %v) = %v, want %v", tt.query, tt.limit, tt.min, got, tt.want)
			}
		})
	}
}

func TestFindMatchesEmptyCatalog(t *testing.T) {
	if got := FindMatches(catalog.New(nil), "anything", 5, 0.6); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
	if got := FindMatches(nil, "anything", 5, 0.6); len(got) != 0 {
		t.Fatalf("expected no matches for nil catalog, got %v", got)
	}
}

func TestRankScoresAndOrder(t *testing.T) {
	ranked := Rank(scenarioCatalog(), "Mahabharat", 5, 0)
	if len(ranked) != 2 {
		t.Fatalf("expected 2 distinct titles, got %+v", ranked)
	}
	if ranked[0].Title != "Mahabharatam" || math.Abs(ranked[0].Score-20.0/22.0) > 1e-9 {
		t.Fatalf("unexpected best title: %+v", ranked[0])
	}
	if ranked[1].Title != "Ramayanam" || ranked[1].Score >= ranked[0].Score {
		t.Fatalf("unexpected second title: %+v", ranked[1])
	}
}

func TestRankTiesKeepCatalogOrder(t *testing.T) {
	// "abcX" and "abcY" score the same against "abc"; catalog order decides.
	c := catalog.New([]catalog.Entry{
		{Title: "abcY", BookID: "1"},
		{Title: "zzzz", BookID: "2"},
		{Title: "abcX", BookID: "3"},
	})
	ranked := Rank(c, "abc", 5, 0.5)
	if len(ranked) != 2 || ranked[0].Title != "abcY" || ranked[1].Title != "abcX" {
		t.Fatalf("expected catalog order on ties, got %+v", ranked)
	}

	limited := FindMatches(c, "abc", 1, 0.5)
	if got := bookIDs(limited); !equalStrings(got, []string{"1"}) {
		t.Fatalf("expected first tied title only, got %v", got)
	}
}

func TestFindScoredCarriesTitleScore(t *testing.T) {
	matches := FindScored(scenarioCatalog(), "Mahabharat", 5, 0.6)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.Title != "Mahabharatam" || math.Abs(m.Score-20.0/22.0) > 1e-9 {
			t.Fatalf("unexpected match: %+v", m)
		}
	}
}

func TestFindMatchesNormalizesUnicode(t *testing.T) {
	c := catalog.New([]catalog.Entry{{Title: "Cafe\u0301", BookID: "C1"}})
	got := Rank(c, "Caf\u00e9", 5, 1)
	if len(got) != 1 || got[0].Score != 1 {
		t.Fatalf("expected decomposed title to match composed query exactly, got %+v", got)
	}
	if got[0].Title != "Cafe\u0301" {
		t.Fatalf("title must be returned unchanged, got %q", got[0].Title)
	}
}

func TestFindMatchesIsDeterministicAndPure(t *testing.T) {
	entries := make([]catalog.Entry, 0, 40)
	for i := 0; i < 40; i++ {
		entries = append(entries, catalog.Entry{Title: fmt.Sprintf("Kathalu %d", i%7), BookID: fmt.Sprint(i)})
	}
	c := catalog.New(entries)
	before := c.Entries()

	first := bookIDs(FindMatches(c, "Kathalu 3", 3, 0.6))
	second := bookIDs(FindMatches(c, "Kathalu 3", 3, 0.6))
	if !equalStrings(first, second) {
		t.Fatalf("non-deterministic results: %v vs %v", first, second)
	}
	after := c.Entries()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("catalog mutated at %d", i)
		}
	}
}
