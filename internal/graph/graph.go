package graph

import "github.com/starford/gebo/internal/models"

// LinkGraph defines the interface for link-graph store operations.
// Consumers should depend on this interface rather than the concrete *Store
// type to facilitate testing with mocks.
type LinkGraph interface {
	IndexDocument(doc models.Document, targets []string) error
	OutgoingLinks(path string) ([]string, error)
	Backlinks(path string) ([]string, error)
	AllEdges() ([]models.Edge, error)
	BrokenEdges() ([]models.Edge, error)
	UpdatePath(oldPath, newPath string) error
	DeleteDocument(path string) error
	BatchDelete(paths []string) (int, error)
	AllDocuments() (map[string]int64, error)
	Documents() ([]models.Document, error)
	OrphanedDocuments() ([]string, error)
	Close() error
}

// Verify *Store satisfies LinkGraph at compile time.
var _ LinkGraph = (*Store)(nil)
