package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"bookdetector/internal/catalog"
	"bookdetector/internal/logging"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWatcherDebouncesRebuilds(t *testing.T) {
	dir := t.TempDir()
	var rebuilds atomic.Int32
	w := New([]string{dir, filepath.Join(dir, "missing")}, 150*time.Millisecond, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	for _, name := range []string{"A_B_2000_1_X1.pdf", "C_D_2001_2_X2.pdf", "E_F_2002_3_X3.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	waitFor(t, "debounced rebuild", func() bool { return rebuilds.Load() >= 1 })
	time.Sleep(300 * time.Millisecond)
	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("expected a single debounced rebuild, got %d", got)
	}

	if err := os.Remove(filepath.Join(dir, "A_B_2000_1_X1.pdf")); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "rebuild after removal", func() bool { return rebuilds.Load() == 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherFailsWithoutFolders(t *testing.T) {
	w := New([]string{filepath.Join(t.TempDir(), "missing")}, time.Millisecond, func(context.Context) error { return nil }, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error when nothing can be watched")
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: filepath.Join(dir, "A_B_C_D_E.pdf"), Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "A_B_C_D_E.pdf"), Op: fsnotify.Remove}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "A_B_C_D_E.pdf"), Op: fsnotify.Rename}, true},
		{fsnotify.Event{Name: filepath.Join(dir, "A_B_C_D_E.pdf"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "A_B_C_D_E.pdf"), Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: filepath.Join(dir, ".book_meta_data.csv.123.tmp"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: sub, Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "book_meta_data.csv"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "book_meta_data.csv.lock"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join(dir, "book_meta_data.csv"), Op: fsnotify.Rename}, false},
	}
	w := New([]string{dir}, time.Millisecond, func(context.Context) error { return nil }, nil)
	w.Ignore(catalog.CacheFiles(filepath.Join(dir, "book_meta_data.csv"))...)
	for _, tc := range cases {
		if got := w.relevant(tc.ev); got != tc.want {
			t.Errorf("relevant(%s %s) = %v, want %v", tc.ev.Op, filepath.Base(tc.ev.Name), got, tc.want)
		}
	}
}

func TestWatcherIgnoresCacheInsideWatchedFolder(t *testing.T) {
	dir := t.TempDir()
	cachePath := filepath.Join(dir, "book_meta_data.csv")
	builder := catalog.NewBuilder(catalog.Options{CachePath: cachePath, UnknownAuthor: "తెలియదు"})

	var rebuilds atomic.Int32
	w := New([]string{dir}, 50*time.Millisecond, func(context.Context) error {
		rebuilds.Add(1)
		_, err := builder.Build([]string{dir})
		return err
	}, logging.NewNop())
	w.Ignore(catalog.CacheFiles(cachePath)...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "A_B_2000_1_X1.pdf"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "rebuild after new book", func() bool { return rebuilds.Load() >= 1 })
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("expected cache written into the watched folder: %v", err)
	}
	time.Sleep(400 * time.Millisecond)
	if got := rebuilds.Load(); got != 1 {
		t.Fatalf("cache writes must not trigger rebuilds, got %d rebuilds", got)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
