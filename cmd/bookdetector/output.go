package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"bookdetector/internal/catalog"
	"bookdetector/internal/detector"
	"bookdetector/internal/history"
	"bookdetector/internal/lookup"
)

func catalogRows(entries []catalog.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Title,
			authorLabel(e.Author),
			e.Year,
			e.PageCount,
			e.BookID,
			filepath.Base(e.SourcePath),
		})
	}
	return rows
}

func renderCatalog(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Catalog is empty")
		return
	}
	fmt.Fprintln(w, renderTable([]column{
		{header: "#", align: alignRight},
		{header: "Title", maxWidth: 40},
		{header: "Author", maxWidth: 24},
		{header: "Year", align: alignRight},
		{header: "Pages", align: alignRight},
		{header: "ID"},
		{header: "File", maxWidth: 48},
	}, catalogRows(entries)))
}

func renderMatches(w io.Writer, result detector.Result) {
	if len(result.Matches) == 0 {
		fmt.Fprintf(w, "No matches for %q\n", result.Query)
		return
	}
	fmt.Fprintln(w, renderTable([]column{
		{header: "Title", maxWidth: 40},
		{header: "Author", maxWidth: 24},
		{header: "Year", align: alignRight},
		{header: "Pages", align: alignRight},
		{header: "ID"},
		{header: "Score", align: alignRight},
		{header: "File", maxWidth: 48},
	}, matchRows(result.Matches)))
}

func matchRows(matches []lookup.Match) [][]string {
	rows := make([][]string, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []string{
			m.Title,
			authorLabel(m.Author),
			m.Year,
			m.PageCount,
			m.BookID,
			strconv.FormatFloat(m.Score, 'f', 3, 64),
			filepath.Base(m.SourcePath),
		})
	}
	return rows
}

func renderHistory(w io.Writer, lookups []history.Lookup) {
	if len(lookups) == 0 {
		fmt.Fprintln(w, "No lookups recorded")
		return
	}
	rows := make([][]string, 0, len(lookups))
	for _, l := range lookups {
		top := l.TopTitle
		if top == "" {
			top = "-"
		}
		rows = append(rows, []string{
			l.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			l.Source,
			l.Query,
			strconv.Itoa(l.MatchCount),
			top,
			strconv.FormatFloat(l.TopScore, 'f', 3, 64),
		})
	}
	fmt.Fprintln(w, renderTable([]column{
		{header: "When"},
		{header: "Source"},
		{header: "Query", maxWidth: 40},
		{header: "Matches", align: alignRight},
		{header: "Top title", maxWidth: 40},
		{header: "Score", align: alignRight},
	}, rows))
}

func authorLabel(author string) string {
	if author == "" {
		return "-"
	}
	return author
}
