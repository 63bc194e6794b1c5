package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"bookdetector/internal/capture"
	"bookdetector/internal/catalog"
	"bookdetector/internal/config"
	"bookdetector/internal/fileutil"
	"bookdetector/internal/history"
	"bookdetector/internal/logging"
	"bookdetector/internal/lookup"
	"bookdetector/internal/ocr"
)

// ErrHistoryDisabled is returned by history calls when history.enabled is off.
var ErrHistoryDisabled = errors.New("lookup history is disabled")

// Recognizer extracts text from an image file.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Capturer writes one camera frame to dst.
type Capturer interface {
	Capture(ctx context.Context, dst string) error
}

// Result is the outcome of one lookup.
type Result struct {
	Query     string         `json:"query"`
	Text      string         `json:"text,omitempty"`
	Frame     string         `json:"frame,omitempty"`
	Matches   []lookup.Match `json:"matches"`
	HistoryID string         `json:"history_id,omitempty"`
}

// Top returns the best match, if any.
func (r Result) Top() (lookup.Match, bool) {
	if len(r.Matches) == 0 {
		return lookup.Match{}, false
	}
	best := r.Matches[0]
	for _, m := range r.Matches[1:] {
		if m.Score > best.Score {
			best = m
		}
	}
	return best, true
}

// Option customizes a Service.
type Option func(*Service)

// WithRecognizer replaces the OCR pipeline built from the config.
func WithRecognizer(r Recognizer) Option {
	return func(s *Service) { s.recognizer = r }
}

// WithCapturer replaces the ffmpeg frame grabber.
func WithCapturer(c Capturer) Option {
	return func(s *Service) { s.capturer = c }
}

// WithHistory uses store instead of opening history.path.
func WithHistory(store *history.Store) Option {
	return func(s *Service) { s.history = store; s.ownsHistory = false }
}

// Service coordinates catalog, lookup, OCR and capture.
type Service struct {
	cfg     *config.Config
	logger  *slog.Logger
	builder *catalog.Builder

	mu      sync.RWMutex
	catalog *catalog.Catalog
	source  catalog.Source

	recognizer    Recognizer
	recognizerErr error
	capturer      Capturer
	history       *history.Store
	ownsHistory   bool
}

// New constructs a service. The catalog is empty until Load or Rebuild runs.
// An unavailable OCR engine is not fatal; it surfaces from RecognizeFile and
// Scan.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("detector: config is required")
	}
	logger = logging.NewComponentLogger(logger, "detector")
	s := &Service{
		cfg:    cfg,
		logger: logger,
		builder: catalog.NewBuilder(catalog.Options{
			CachePath:     cfg.Catalog.CachePath,
			UnknownAuthor: cfg.Catalog.UnknownAuthor,
			SortEntries:   cfg.Catalog.SortEntries,
			StrictCache:   cfg.Catalog.StrictCache,
			Logger:        logger,
		}),
		catalog: catalog.New(nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.recognizer == nil {
		engine, err := ocr.NewEngine(cfg, logger)
		if err != nil {
			s.recognizerErr = err
		} else {
			s.recognizer = ocr.NewRecognizer(engine, cfg.OCR.Preprocess, logger)
		}
	}
	if s.capturer == nil {
		s.capturer = capture.NewGrabber(cfg, logger)
	}
	if s.history == nil && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("open lookup history: %w", err)
		}
		s.history = store
		s.ownsHistory = true
	}
	return s, nil
}

// Close releases the history database when the service opened it.
func (s *Service) Close() error {
	if s.ownsHistory && s.history != nil {
		return s.history.Close()
	}
	return nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Catalog returns the current catalog snapshot.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// CatalogSource reports whether the current catalog came from the cache or a scan.
func (s *Service) CatalogSource() catalog.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// Load installs the cached catalog, scanning the folders when no cache
// exists.
func (s *Service) Load(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, source, err := s.builder.LoadOrBuild(s.cfg.Catalog.Folders)
	s.swap(c, source)
	return c, err
}

// Rebuild rescans the folders, rewrites the cache and installs the result.
func (s *Service) Rebuild(ctx context.Context) (*catalog.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.builder.Build(s.cfg.Catalog.Folders)
	s.swap(c, catalog.SourceScan)
	return c, err
}

func (s *Service) swap(c *catalog.Catalog, source catalog.Source) {
	if c == nil {
		return
	}
	s.mu.Lock()
	s.catalog = c
	s.source = source
	s.mu.Unlock()
}

// Lookup matches query against the current catalog with the configured
// limit and similarity cutoff.
func (s *Service) Lookup(ctx context.Context, source, query string) (Result, error) {
	return s.LookupWithin(ctx, source, query, s.cfg.Lookup.Limit, s.cfg.Lookup.MinSimilarity)
}

// LookupWithin matches query with an explicit limit and cutoff and records
// the lookup in history. History failures are logged, not returned.
func (s *Service) LookupWithin(ctx context.Context, source, query string, limit int, minSimilarity float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	matches := lookup.FindScored(s.Catalog(), query, limit, minSimilarity)
	if matches == nil {
		matches = []lookup.Match{}
	}
	result := Result{Query: query, Matches: matches}

	top, _ := result.Top()
	s.logger.Info("lookup completed",
		logging.String(logging.FieldEventType, "lookup_completed"),
		logging.String("source", source),
		logging.String("query", query),
		logging.Int("matches", len(matches)),
		logging.String("top_title", top.Title),
	)

	if s.history != nil {
		recorded, err := s.history.Record(ctx, history.Lookup{
			Source:     source,
			Query:      query,
			MatchCount: len(matches),
			TopTitle:   top.Title,
			TopScore:   top.Score,
		})
		if err != nil {
			logging.WarnWithContext(s.logger, "failed to record lookup", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check history.path is writable"),
				logging.String(logging.FieldImpact, "lookup missing from history"),
			)
		} else {
			result.HistoryID = recorded.ID
		}
	}
	return result, nil
}

// Recognize returns the text in an image without looking it up.
func (s *Service) Recognize(ctx context.Context, imagePath string) (string, error) {
	if s.recognizer == nil {
		return "", s.recognizerErr
	}
	return s.recognizer.Recognize(ctx, imagePath)
}

// RecognizeFile runs OCR over an image and looks up the recognized text.
func (s *Service) RecognizeFile(ctx context.Context, imagePath string) (Result, error) {
	return s.recognizeAndLookup(ctx, imagePath, history.SourceOCR)
}

func (s *Service) recognizeAndLookup(ctx context.Context, imagePath, source string) (Result, error) {
	if s.recognizer == nil {
		return Result{}, s.recognizerErr
	}
	text, err := s.recognizer.Recognize(ctx, imagePath)
	if err != nil {
		return Result{}, fmt.Errorf("recognize %s: %w", filepath.Base(imagePath), err)
	}
	result, err := s.Lookup(ctx, source, text)
	if err != nil {
		return Result{}, err
	}
	result.Text = text
	return result, nil
}

// Scan captures a camera frame, recognizes it and looks the text up. When
// saveFrame is set the captured frame is copied there.
func (s *Service) Scan(ctx context.Context, saveFrame string) (Result, error) {
	if s.recognizer == nil {
		return Result{}, s.recognizerErr
	}
	tmpDir, err := os.MkdirTemp("", "bookdetector-scan-")
	if err != nil {
		return Result{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	frame := filepath.Join(tmpDir, "frame.jpg")
	if ext := strings.ToLower(filepath.Ext(saveFrame)); ext == ".png" || ext == ".jpeg" || ext == ".jpg" {
		frame = filepath.Join(tmpDir, "frame"+ext)
	}
	if err := s.capturer.Capture(ctx, frame); err != nil {
		return Result{}, fmt.Errorf("capture frame: %w", err)
	}

	result, err := s.recognizeAndLookup(ctx, frame, history.SourceScan)
	if err != nil {
		return Result{}, err
	}
	if saveFrame != "" {
		if err := fileutil.CopyFile(frame, saveFrame); err != nil {
			return Result{}, fmt.Errorf("save frame: %w", err)
		}
		result.Frame = saveFrame
	}
	return result, nil
}

// History returns up to limit recent lookups, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Lookup, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, limit)
}

// ClearHistory deletes every recorded lookup.
func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	if s.history == nil {
		return 0, ErrHistoryDisabled
	}
	return s.history.Clear(ctx)
}

// HistoryEnabled reports whether lookups are being recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// OCREngine names the recognition engine in use, or the configured one when
// it could not be constructed.
func (s *Service) OCREngine() string {
	if named, ok := s.recognizer.(interface{ EngineName() string }); ok {
		return named.EngineName()
	}
	return s.cfg.OCR.Engine
}

// OCRError returns why the configured OCR engine is unavailable, or nil.
func (s *Service) OCRError() error {
	if s.recognizer != nil {
		return nil
	}
	return s.recognizerErr
}
