package catalog

import "strings"

const (
	segmentSeparator = "_"
	minSegments      = 5
)

// ParseFilename maps a Title_Author_Year_Pages_ID.ext filename onto an Entry.
// Segments past the fifth are ignored and the book ID loses everything from
// its last period. An author equal to unknownAuthor (compared byte for byte)
// is stored as "". SourcePath is left empty. ok is false when the name has
// fewer than five segments.
func ParseFilename(name, unknownAuthor string) (Entry, bool) {
	parts := strings.Split(name, segmentSeparator)
	if len(parts) < minSegments {
		return Entry{}, false
	}

	author := parts[1]
	if author == unknownAuthor {
		author = ""
	}
	bookID := parts[4]
	if idx := strings.LastIndex(bookID, "."); idx >= 0 {
		bookID = bookID[:idx]
	}

	return Entry{
		Title:     parts[0],
		Author:    author,
		Year:      parts[2],
		PageCount: parts[3],
		BookID:    bookID,
	}, true
}
