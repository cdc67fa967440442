// Package testutil provides shared test infrastructure: an in-memory SQLite
// store, an echo-based fake of the finance backend and seeded fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/finboard/internal/storage"
)

// SetupTestStore creates a migrated in-memory store that is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupTestStore(t)
//	mgr := session.NewManager(store, client)
func SetupTestStore(t testing.TB) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}
