package testsupport

import (
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/stepcache"
)

// MustOpenStore opens a SQLite step cache for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *stepcache.SQLiteStore {
	t.Helper()

	store, err := stepcache.OpenSQLite(cfg)
	if err != nil {
		t.Fatalf("stepcache.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
