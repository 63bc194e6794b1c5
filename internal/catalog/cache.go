package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"bookdetector/internal/fileutil"
)

// ErrCacheCorrupt reports a cache file that exists but cannot be parsed.
var ErrCacheCorrupt = errors.New("catalog cache corrupt")

// ErrCacheWrite reports a strict-mode cache write failure. The catalog
// returned alongside it is complete.
var ErrCacheWrite = errors.New("catalog cache write failed")

var cacheHeader = []string{"book_title", "author", "year", "page_count", "book_id", "filepath"}

const (
	lockTimeout    = 10 * time.Second
	lockRetryDelay = 50 * time.Millisecond
	utf8BOM        = "\ufeff"
)

func lockPath(cachePath string) string {
	return cachePath + ".lock"
}

// CacheFiles lists the files Build writes for cachePath: the cache itself and
// its advisory lock.
func CacheFiles(cachePath string) []string {
	return []string{cachePath, lockPath(cachePath)}
}

// ReadCache parses a cache file written by Build. It returns an error
// wrapping fs.ErrNotExist when the file is absent and ErrCacheCorrupt when
// its contents are malformed.
func ReadCache(path string) (*Catalog, error) {
	return readCache(path)
}

func readCache(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	lock := flock.New(lockPath(path))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	ok, err := lock.TryRLockContext(ctx, lockRetryDelay)
	switch {
	case err != nil:
		// A read-only cache directory cannot hold the lock file; read unlocked.
	case !ok:
		return nil, fmt.Errorf("lock catalog cache: %w", lockErr(nil))
	default:
		defer lock.Unlock() //nolint:errcheck
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return decodeCache(file)
}

func decodeCache(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(cacheHeader)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", ErrCacheCorrupt)
		}
		return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)
	if !slices.Equal(header, cacheHeader) {
		return nil, fmt.Errorf("%w: unexpected header %q", ErrCacheCorrupt, strings.Join(header, ","))
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
		}
		entries = append(entries, Entry{
			Title:      record[0],
			Author:     record[1],
			Year:       record[2],
			PageCount:  record[3],
			BookID:     record[4],
			SourcePath: record[5],
		})
	}
	return &Catalog{entries: entries}, nil
}

func writeCache(path string, catalog *Catalog) error {
	lock := flock.New(lockPath(path))
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if ok, err := lock.TryLockContext(ctx, lockRetryDelay); err != nil || !ok {
		return fmt.Errorf("lock catalog cache: %w", lockErr(err))
	}
	defer lock.Unlock() //nolint:errcheck

	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return encodeCache(w, catalog)
	})
}

func encodeCache(w io.Writer, catalog *Catalog) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(cacheHeader); err != nil {
		return err
	}
	for _, entry := range catalog.Entries() {
		record := []string{entry.Title, entry.Author, entry.Year, entry.PageCount, entry.BookID, entry.SourcePath}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func lockErr(err error) error {
	if err != nil {
		return err
	}
	return errors.New("timed out waiting for lock")
}
