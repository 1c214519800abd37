// Package noteservice coordinates vault file operations with the link-graph
// store. The store handle is injected; callers that run before the store is
// initialized get apperr.ErrNotReady instead of silent empty results.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/checksum"
	"github.com/starford/gebo/internal/graph"
	"github.com/starford/gebo/internal/indexer"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/vault"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path          string   `json:"path"`
	Content       string   `json:"content"`
	Checksum      string   `json:"checksum"`
	Backlinks     []string `json:"backlinks"`
	OutgoingLinks []string `json:"outgoing_links"`
	ModifiedAt    int64    `json:"modified_at"`
	Size          int64    `json:"size"`
}

// Service coordinates vault and link-graph operations.
type Service struct {
	store vault.Provider
	db    graph.LinkGraph
	ix    *indexer.Indexer
}

// NewService creates a new note service. db and ix may be nil when the store
// has not been initialized yet; operations then fail with ErrNotReady.
func NewService(store vault.Provider, db graph.LinkGraph, ix *indexer.Indexer) *Service {
	return &Service{store: store, db: db, ix: ix}
}

func (s *Service) ready() error {
	if s.db == nil || s.ix == nil {
		return apperr.ErrNotReady
	}
	return nil
}

// GetNote reads a note from the vault and enriches it with its graph
// neighborhood.
func (s *Service) GetNote(_ context.Context, notePath string) (*NoteDetail, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	data, err := s.store.Read(notePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildDetail(notePath, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, notePath string, content []byte) (*NoteDetail, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	notePath = ensureExtension(notePath)
	if _, err := s.store.Read(notePath); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(notePath, content); err != nil {
		return nil, err
	}
	if err := s.ix.IndexFile(notePath); err != nil {
		return nil, err
	}
	return s.buildDetail(notePath, content)
}

// UpdateNote writes updated content with optimistic concurrency: a non-empty
// ifMatch checksum must equal the current content's checksum.
func (s *Service) UpdateNote(_ context.Context, notePath string, content []byte, ifMatch string) (*NoteDetail, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	existing, err := s.store.Read(notePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(notePath, content); err != nil {
		return nil, err
	}
	if err := s.ix.IndexFile(notePath); err != nil {
		return nil, err
	}
	return s.buildDetail(notePath, content)
}

// RenameNote renames a note and atomically rewrites its path throughout the
// graph, so neither the document row nor any edge is orphaned. newName is a
// bare name (no directory part); the note stays in its directory.
func (s *Service) RenameNote(_ context.Context, oldPath, newName string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	clean := vault.SanitizeName(newName)
	if strings.TrimSpace(clean) == "" {
		return "", fmt.Errorf("noteservice: name %q is empty after sanitization", newName)
	}
	clean = ensureExtension(clean)

	dir := path.Dir(oldPath)
	newPath := clean
	if dir != "." {
		newPath = path.Join(dir, clean)
	}
	if newPath == oldPath {
		return oldPath, nil
	}
	if _, err := s.store.Stat(newPath); err == nil {
		return "", apperr.ErrAlreadyExists
	}
	if err := s.store.Move(oldPath, newPath); err != nil {
		return "", err
	}
	if err := s.db.UpdatePath(oldPath, newPath); err != nil {
		return "", err
	}
	return newPath, nil
}

// TrashNote soft-deletes a note (move to .trash) and removes its document
// row. Edges pointing at it remain as broken links.
func (s *Service) TrashNote(_ context.Context, notePath string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.store.Trash(notePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteDocument(notePath)
}

// CreateFolder creates a directory in the vault. Folders carry no graph
// state, so this is a pure filesystem operation.
func (s *Service) CreateFolder(_ context.Context, dir string) error {
	if err := s.store.Mkdir(dir); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return apperr.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// ListNotes returns every tracked document.
func (s *Service) ListNotes(_ context.Context) ([]models.Document, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.Documents()
}

// Sync runs a full vault reconciliation and reports the result. Per-document
// failures leave Success true; only vault-root or store failures flip it.
func (s *Service) Sync(_ context.Context) models.SyncResult {
	if err := s.ready(); err != nil {
		return models.SyncResult{Error: err.Error()}
	}
	stats, err := s.ix.FullSync()
	res := models.SyncResult{
		FilesIndexed: stats.FilesIndexed,
		FilesDeleted: stats.FilesDeleted,
		FilesSkipped: stats.FilesSkipped,
		DurationMS:   stats.Duration.Milliseconds(),
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

// Backlinks returns all notes linking to the given path.
func (s *Service) Backlinks(_ context.Context, notePath string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.Backlinks(notePath)
}

// OutgoingLinks returns all notes the given path links to.
func (s *Service) OutgoingLinks(_ context.Context, notePath string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.OutgoingLinks(notePath)
}

// Graph returns the full graph: every document and every edge.
func (s *Service) Graph(_ context.Context) ([]models.Document, []models.Edge, error) {
	if err := s.ready(); err != nil {
		return nil, nil, err
	}
	docs, err := s.db.Documents()
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.db.AllEdges()
	if err != nil {
		return nil, nil, err
	}
	return docs, edges, nil
}

// Orphans returns documents with no incoming and no outgoing edges.
func (s *Service) Orphans(_ context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.OrphanedDocuments()
}

// BrokenLinks returns edges whose target no longer has a document row.
func (s *Service) BrokenLinks(_ context.Context) ([]models.Edge, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.db.BrokenEdges()
}

func (s *Service) buildDetail(notePath string, data []byte) (*NoteDetail, error) {
	bl, err := s.db.Backlinks(notePath)
	if err != nil {
		return nil, fmt.Errorf("noteservice: backlinks for %s: %w", notePath, err)
	}
	if bl == nil {
		bl = []string{}
	}
	out, err := s.db.OutgoingLinks(notePath)
	if err != nil {
		return nil, fmt.Errorf("noteservice: outgoing links for %s: %w", notePath, err)
	}
	if out == nil {
		out = []string{}
	}
	meta, err := s.store.Stat(notePath)
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Path:          notePath,
		Content:       string(data),
		Checksum:      checksum.Sum(data),
		Backlinks:     bl,
		OutgoingLinks: out,
		ModifiedAt:    meta.ModifiedAt,
		Size:          meta.Size,
	}, nil
}

// ensureExtension appends .md when the path does not already end with it.
func ensureExtension(p string) string {
	if strings.HasSuffix(p, ".md") {
		return p
	}
	return p + ".md"
}
