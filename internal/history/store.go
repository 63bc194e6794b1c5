package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"bookdetector/internal/logging"
)

// Lookup sources recorded with each entry.
const (
	SourceManual = "manual"
	SourceOCR    = "ocr"
	SourceScan   = "scan"
	SourceAPI    = "api"
)

// Lookup is one recorded fuzzy search.
type Lookup struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Source     string    `json:"source"`
	Query      string    `json:"query"`
	MatchCount int       `json:"match_count"`
	TopTitle   string    `json:"top_title,omitempty"`
	TopScore   float64   `json:"top_score"`
}

// Store persists lookups in SQLite.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	defaultRecentLimit      = 20

	// Fixed-width UTC timestamps sort correctly as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Open creates or connects to the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, logger: logging.NewComponentLogger(logger, "history")}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a lookup, assigning an ID and timestamp when missing, and
// returns the stored value.
func (s *Store) Record(ctx context.Context, lookup Lookup) (Lookup, error) {
	if lookup.ID == "" {
		lookup.ID = uuid.NewString()
	}
	if lookup.CreatedAt.IsZero() {
		lookup.CreatedAt = time.Now()
	}
	lookup.CreatedAt = lookup.CreatedAt.UTC()
	if lookup.Source == "" {
		lookup.Source = SourceManual
	}

	err := s.exec(ctx,
		`INSERT INTO lookups (id, created_at, source, query, match_count, top_title, top_score)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lookup.ID,
		lookup.CreatedAt.Format(timestampLayout),
		lookup.Source,
		lookup.Query,
		lookup.MatchCount,
		nullableString(lookup.TopTitle),
		lookup.TopScore,
	)
	if err != nil {
		return Lookup{}, fmt.Errorf("insert lookup: %w", err)
	}

	s.logger.Debug("lookup recorded",
		logging.String("lookup_id", lookup.ID),
		logging.String("source", lookup.Source),
		logging.Int("match_count", lookup.MatchCount),
	)
	return lookup, nil
}

// Recent returns up to limit lookups, newest first. limit <= 0 uses 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]Lookup, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT id, created_at, source, query, match_count, top_title, top_score
         FROM lookups ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var lookups []Lookup
	for rows.Next() {
		var (
			lookup   Lookup
			created  string
			topTitle sql.NullString
		)
		if err := rows.Scan(&lookup.ID, &created, &lookup.Source, &lookup.Query, &lookup.MatchCount, &topTitle, &lookup.TopScore); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		if parsed, err := time.Parse(timestampLayout, created); err == nil {
			lookup.CreatedAt = parsed
		}
		lookup.TopTitle = topTitle.String
		lookups = append(lookups, lookup)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookups: %w", err)
	}
	return lookups, nil
}

// Clear removes every lookup and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM lookups")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear lookups: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	s.logger.Info("lookup history cleared",
		logging.String(logging.FieldEventType, "history_cleared"),
		logging.Int64("removed", removed),
	)
	return removed, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
