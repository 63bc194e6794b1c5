package api

import (
	"time"

	"bookdetector/internal/catalog"
	"bookdetector/internal/deps"
	"bookdetector/internal/history"
)

// timeFormat is used for timestamps in API payloads.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// StatusResponse summarizes the running server.
type StatusResponse struct {
	StartedAt      string        `json:"started_at"`
	Uptime         string        `json:"uptime"`
	CatalogEntries int           `json:"catalog_entries"`
	CatalogSource  string        `json:"catalog_source,omitempty"`
	CachePath      string        `json:"cache_path"`
	Folders        []string      `json:"folders"`
	OCREngine      string        `json:"ocr_engine"`
	HistoryEnabled bool          `json:"history_enabled"`
	Dependencies   []deps.Status `json:"dependencies"`
}

// CatalogResponse lists catalog entries.
type CatalogResponse struct {
	Count   int             `json:"count"`
	Entries []catalog.Entry `json:"entries"`
}

// RebuildResponse reports a completed rebuild.
type RebuildResponse struct {
	Count   int    `json:"count"`
	Elapsed string `json:"elapsed"`
	// CacheWarning is set when the new catalog is live but the cache file
	// could not be rewritten.
	CacheWarning string `json:"cache_warning,omitempty"`
}

// HistoryEntry is a recorded lookup in transport form.
type HistoryEntry struct {
	ID         string  `json:"id"`
	CreatedAt  string  `json:"created_at"`
	Source     string  `json:"source"`
	Query      string  `json:"query"`
	MatchCount int     `json:"match_count"`
	TopTitle   string  `json:"top_title,omitempty"`
	TopScore   float64 `json:"top_score"`
}

// HistoryResponse lists recent lookups, newest first.
type HistoryResponse struct {
	Lookups []HistoryEntry `json:"lookups"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromLookup converts a stored lookup.
func FromLookup(l history.Lookup) HistoryEntry {
	return HistoryEntry{
		ID:         l.ID,
		CreatedAt:  formatTime(l.CreatedAt),
		Source:     l.Source,
		Query:      l.Query,
		MatchCount: l.MatchCount,
		TopTitle:   l.TopTitle,
		TopScore:   l.TopScore,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}
