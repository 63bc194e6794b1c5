package testsupport

import (
	"testing"

	"bookdetector/internal/config"
	"bookdetector/internal/history"
	"bookdetector/internal/logging"
)

// MustOpenHistory opens the lookup history for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.History.Path, logging.NewNop())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
