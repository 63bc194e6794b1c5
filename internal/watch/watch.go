// Package watch rebuilds the catalog when book folders change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"bookdetector/internal/logging"
)

// RebuildFunc rescans the folders. It runs on the watcher goroutine, so
// rebuilds never overlap.
type RebuildFunc func(ctx context.Context) error

// Watcher debounces folder changes into catalog rebuilds.
type Watcher struct {
	folders  []string
	debounce time.Duration
	rebuild  RebuildFunc
	logger   *slog.Logger
	ignored  map[string]struct{}
}

// New returns a watcher over folders. A non-positive debounce rebuilds on
// every event.
func New(folders []string, debounce time.Duration, rebuild RebuildFunc, logger *slog.Logger) *Watcher {
	return &Watcher{
		folders:  append([]string(nil), folders...),
		debounce: debounce,
		rebuild:  rebuild,
		logger:   logging.NewComponentLogger(logger, "watch"),
		ignored:  make(map[string]struct{}),
	}
}

// Ignore drops events for the given files. The catalog cache and its lock
// must be ignored when they live inside a watched folder, or every rebuild
// would trigger the next one.
func (w *Watcher) Ignore(paths ...string) {
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		w.ignored[cleanPath(path)] = struct{}{}
	}
}

// Run watches until ctx is cancelled. Missing folders are skipped with a
// warning; Run fails only when no folder can be watched.
func (w *Watcher) Run(ctx context.Context) error {
	if w.rebuild == nil {
		return errors.New("watch: rebuild func is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.folders {
		if err := fsw.Add(dir); err != nil {
			logging.WarnWithContext(w.logger, "cannot watch folder", "watch_folder_skipped",
				logging.String("folder", dir),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "create the folder or remove it from catalog.folders"),
				logging.String(logging.FieldImpact, "changes in this folder need a manual rebuild"),
			)
			continue
		}
		watched++
	}
	if watched == 0 {
		return errors.New("watch: no catalog folder could be watched")
	}
	w.logger.Info("watching catalog folders",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.Int("folders", watched),
		logging.Duration("debounce", w.debounce),
	)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("folder change",
				logging.String("path", ev.Name),
				logging.String("op", ev.Op.String()),
			)
			if w.debounce <= 0 {
				w.runRebuild(ctx)
				continue
			}
			if pending {
				stopTimer(timer)
			}
			timer.Reset(w.debounce)
			pending = true
		case <-timer.C:
			pending = false
			w.runRebuild(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "watch error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a folder change may be missed"),
			)
		}
	}
}

func (w *Watcher) runRebuild(ctx context.Context) {
	if err := w.rebuild(ctx); err != nil {
		logging.WarnWithContext(w.logger, "catalog rebuild after folder change failed", "watch_rebuild_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "catalog may be stale until the next change"),
		)
		return
	}
	w.logger.Info("catalog rebuilt after folder change",
		logging.String(logging.FieldEventType, "watch_rebuilt"),
	)
}

// relevant keeps additions, removals and renames of visible files. Writes
// to existing files do not change the catalog since it only reads names.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if strings.HasPrefix(filepath.Base(ev.Name), ".") {
		return false
	}
	if _, skip := w.ignored[cleanPath(ev.Name)]; skip {
		return false
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			return false
		}
	}
	return true
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
