// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"testing"

	"github.com/mkovac/linkstash/internal/store"
)

// TestStore creates an ephemeral in-memory store that is closed when
// the test finishes.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
