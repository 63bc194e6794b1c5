package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bookdetector/internal/logging"
)

// Options configures a Builder.
type Options struct {
	// CachePath is the CSV cache file. Empty disables persistence.
	CachePath string
	// UnknownAuthor is the author segment stored as an empty author.
	UnknownAuthor string
	// SortEntries orders files by name within each folder instead of using
	// filesystem enumeration order.
	SortEntries bool
	// StrictCache makes Build return cache write failures alongside the
	// catalog. Otherwise they are only logged.
	StrictCache bool
	Logger      *slog.Logger
}

// Builder scans book folders and maintains the catalog cache.
type Builder struct {
	opts   Options
	logger *slog.Logger
}

// NewBuilder constructs a builder. A nil logger discards output.
func NewBuilder(opts Options) *Builder {
	return &Builder{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "catalog"),
	}
}

// CachePath returns the configured cache file.
func (b *Builder) CachePath() string {
	return b.opts.CachePath
}

// Build scans dirs in order and writes the result to the cache. Missing or
// unreadable folders and files are skipped with a warning; the returned
// catalog is never nil. The error is non-nil only when StrictCache is set and
// the cache could not be written.
func (b *Builder) Build(dirs []string) (*Catalog, error) {
	started := time.Now()
	var entries []Entry
	for _, dir := range dirs {
		entries = append(entries, b.scanFolder(dir)...)
	}
	catalog := &Catalog{entries: entries}

	b.logger.Info("catalog built",
		logging.String(logging.FieldEventType, "catalog_built"),
		logging.Int("entries", len(entries)),
		logging.Int("folders", len(dirs)),
		logging.Duration("elapsed", time.Since(started)),
	)

	if err := b.persist(catalog); err != nil {
		logging.WarnWithContext(b.logger, "catalog cache write failed", "catalog_cache_write_failed",
			logging.String("path", b.opts.CachePath),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on the cache directory"),
			logging.String(logging.FieldImpact, "next start rescans the book folders"),
		)
		if b.opts.StrictCache {
			return catalog, fmt.Errorf("%w: %w", ErrCacheWrite, err)
		}
	}
	return catalog, nil
}

// LoadOrBuild returns the cached catalog when the cache file exists and
// parses. The cache is trusted as-is; nothing is rescanned. A missing cache
// triggers Build, and so does a corrupt one after a warning.
func (b *Builder) LoadOrBuild(dirs []string) (*Catalog, Source, error) {
	if b.opts.CachePath != "" {
		catalog, err := readCache(b.opts.CachePath)
		switch {
		case err == nil:
			b.logger.Info("catalog loaded from cache",
				logging.String(logging.FieldEventType, "catalog_loaded"),
				logging.String("path", b.opts.CachePath),
				logging.Int("entries", catalog.Len()),
			)
			return catalog, SourceCache, nil
		case errors.Is(err, fs.ErrNotExist):
			b.logger.Debug("catalog cache missing; scanning folders",
				logging.String("path", b.opts.CachePath),
			)
		default:
			logging.WarnWithContext(b.logger, "catalog cache unreadable; rebuilding", "catalog_cache_corrupt",
				logging.String("path", b.opts.CachePath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "the cache is rewritten by this scan"),
				logging.String(logging.FieldImpact, "folders are rescanned once"),
			)
		}
	}
	catalog, err := b.Build(dirs)
	return catalog, SourceScan, err
}

func (b *Builder) persist(catalog *Catalog) error {
	if b.opts.CachePath == "" {
		return nil
	}
	if err := writeCache(b.opts.CachePath, catalog); err != nil {
		return err
	}
	b.logger.Debug("catalog cache written",
		logging.String(logging.FieldEventType, "catalog_cache_written"),
		logging.String("path", b.opts.CachePath),
		logging.Int("entries", catalog.Len()),
	)
	return nil
}

func (b *Builder) scanFolder(dir string) []Entry {
	handle, err := os.Open(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(b.logger, "catalog folder missing; skipping", "catalog_folder_missing",
				logging.String("folder", dir),
				logging.String(logging.FieldErrorHint, "create the folder or fix catalog.folders"),
				logging.String(logging.FieldImpact, "books in this folder are not matched"),
			)
		} else {
			logging.WarnWithContext(b.logger, "catalog folder unreadable; skipping", "catalog_folder_unreadable",
				logging.String("folder", dir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "books in this folder are not matched"),
			)
		}
		return nil
	}
	defer handle.Close()

	// File.ReadDir keeps the directory's native order; os.ReadDir would sort.
	dirents, err := handle.ReadDir(-1)
	if err != nil {
		logging.WarnWithContext(b.logger, "catalog folder listing incomplete", "catalog_folder_unreadable",
			logging.String("folder", dir),
			logging.Error(err),
			logging.Int("listed", len(dirents)),
			logging.String(logging.FieldImpact, "some books in this folder may be missing"),
		)
	}
	if b.opts.SortEntries {
		sort.SliceStable(dirents, func(i, j int) bool { return dirents[i].Name() < dirents[j].Name() })
	}

	entries := make([]Entry, 0, len(dirents))
	skipped := 0
	for _, dirent := range dirents {
		entry, ok := ParseFilename(dirent.Name(), b.opts.UnknownAuthor)
		if !ok {
			skipped++
			continue
		}
		path := filepath.Join(dir, dirent.Name())
		// Stat follows symlinks so linked books count as regular files.
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			skipped++
			continue
		}
		entry.SourcePath = path
		entries = append(entries, entry)
	}

	b.logger.Debug("catalog folder scanned",
		logging.String("folder", dir),
		logging.Int("entries", len(entries)),
		logging.Int("skipped", skipped),
	)
	return entries
}
