package catalog

// Entry is one book derived from a single filename. Every field is kept as
// the exact string taken from the filename; year and page count are free
// form.
type Entry struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Year       string `json:"year"`
	PageCount  string `json:"page_count"`
	BookID     string `json:"book_id"`
	SourcePath string `json:"source_path"`
}

// Source reports where a catalog came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceScan  Source = "scan"
)

// Catalog is an ordered, immutable sequence of entries. Order is scan order:
// folders in configured order, files in filesystem enumeration order.
type Catalog struct {
	entries []Entry
}

// New returns a catalog holding a copy of entries.
func New(entries []Entry) *Catalog {
	copied := make([]Entry, len(entries))
	copy(copied, entries)
	return &Catalog{entries: copied}
}

// Len returns the number of entries. A nil catalog is empty.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// At returns the entry at index i.
func (c *Catalog) At(i int) Entry {
	return c.entries[i]
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Titles returns the distinct titles in first-seen order.
func (c *Catalog) Titles() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.entries))
	titles := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		if _, ok := seen[entry.Title]; ok {
			continue
		}
		seen[entry.Title] = struct{}{}
		titles = append(titles, entry.Title)
	}
	return titles
}
