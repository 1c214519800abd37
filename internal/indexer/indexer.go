// Package indexer reconciles the link-graph store with the vault filesystem.
package indexer

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/gebo/internal/graph"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/nameindex"
	"github.com/starford/gebo/internal/vault"
	"github.com/starford/gebo/internal/wikilink"
)

// Stats describes one full sync pass.
type Stats struct {
	FilesIndexed int
	FilesDeleted int
	FilesSkipped int
	Duration     time.Duration
}

// Indexer drives extraction, resolution, and persistence for vault documents.
type Indexer struct {
	db     graph.LinkGraph
	vault  vault.Provider
	logger *slog.Logger
}

// New creates an Indexer over the given store and vault.
func New(db graph.LinkGraph, store vault.Provider, logger *slog.Logger) *Indexer {
	return &Indexer{db: db, vault: store, logger: logger}
}

// FullSync brings the store back in sync with the filesystem:
//   - new and modified documents are re-indexed (extract → resolve → persist)
//   - documents whose files disappeared are batch-deleted
//
// The name index is built once per pass from the same filesystem snapshot.
// Per-document failures are logged and counted but never abort the pass; the
// whole sync fails only when the vault root or the store is unavailable.
// The pass keeps no intermediate state and is safe to re-run at any time.
func (ix *Indexer) FullSync() (Stats, error) {
	start := time.Now()

	files, err := ix.vault.List("")
	if err != nil {
		return Stats{}, fmt.Errorf("indexer: walk vault: %w", err)
	}
	known, err := ix.db.AllDocuments()
	if err != nil {
		return Stats{}, fmt.Errorf("indexer: load known set: %w", err)
	}
	names, err := nameindex.Build(ix.vault.Root())
	if err != nil {
		return Stats{}, fmt.Errorf("indexer: build name index: %w", err)
	}

	var st Stats
	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		if mod, ok := known[f.Path]; ok && f.ModifiedAt <= mod {
			st.FilesSkipped++
			continue
		}
		if err := ix.indexOne(f, names); err != nil {
			ix.logger.Warn("sync: index failed",
				slog.String("path", f.Path),
				slog.String("error", err.Error()))
			continue
		}
		st.FilesIndexed++
	}

	var stale []string
	for p := range known {
		if _, ok := disk[p]; !ok {
			stale = append(stale, p)
		}
	}
	if len(stale) > 0 {
		n, err := ix.db.BatchDelete(stale)
		if err != nil {
			return st, fmt.Errorf("indexer: batch delete: %w", err)
		}
		st.FilesDeleted = n
	}

	st.Duration = time.Since(start)
	ix.logger.Info("sync: done",
		slog.Int("indexed", st.FilesIndexed),
		slog.Int("deleted", st.FilesDeleted),
		slog.Int("skipped", st.FilesSkipped),
		slog.Duration("duration", st.Duration))
	return st, nil
}

// IndexFile re-indexes a single document after a live edit. The name index
// is rebuilt so the reference snapshot is current.
func (ix *Indexer) IndexFile(path string) error {
	f, err := ix.vault.Stat(path)
	if err != nil {
		return err
	}
	names, err := nameindex.Build(ix.vault.Root())
	if err != nil {
		return err
	}
	return ix.indexOne(f, names)
}

// indexOne reads a document, extracts its wikilinks, resolves them against
// the name index, and persists the result. Unresolved references are
// dropped, never stored.
func (ix *Indexer) indexOne(f models.Document, names *nameindex.Index) error {
	data, err := ix.vault.Read(f.Path)
	if err != nil {
		return err
	}
	var targets []string
	for _, link := range wikilink.Extract(string(data)) {
		if resolved, ok := names.Resolve(link.Target); ok {
			targets = append(targets, resolved)
		}
	}
	return ix.db.IndexDocument(f, targets)
}
