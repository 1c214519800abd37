// Package testutil provides shared test helpers for setting up vaults,
// databases, and indexers.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/gebo/internal/graph"
	"github.com/starford/gebo/internal/indexer"
	"github.com/starford/gebo/internal/vault"
)

// TestDB creates a temporary SQLite graph store that is automatically cleaned up.
func TestDB(t *testing.T) *graph.Store {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gebo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := graph.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a vault.FS provider.
func TestVault(t *testing.T) (string, *vault.FS) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := vault.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// TestIndexer wires a quiet indexer over the given store and vault.
func TestIndexer(t *testing.T, db *graph.Store, store *vault.FS) *indexer.Indexer {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return indexer.New(db, store, logger)
}
