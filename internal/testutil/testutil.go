// Package testutil provides shared test helpers for setting up document
// stores and search indexes.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/ansuz/internal/docstore"
	"github.com/starford/ansuz/internal/search"
)

// TestStore creates a document store backed by a temporary file.
func TestStore(t *testing.T) *docstore.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "document.json")
	store, err := docstore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// TestIndex creates a temporary SQLite search index that is automatically
// cleaned up.
func TestIndex(t *testing.T) *search.Index {
	t.Helper()
	dbFile, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	index, err := search.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { index.Close() })
	return index
}
