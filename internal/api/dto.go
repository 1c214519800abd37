package api

import (
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/noteservice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"topics/hello.md"`
	Content string `json:"content" example:"See [[other note]]"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content"`
}

// CreateFolderRequest is the request body for creating a vault folder.
type CreateFolderRequest struct {
	Path string `json:"path" example:"topics/projects"`
}

// RenameNoteRequest is the request body for renaming a note.
type RenameNoteRequest struct {
	Path    string `json:"path" example:"topics/hello.md"`
	NewName string `json:"new_name" example:"greetings"`
}

// RenameNoteResponse reports the path the note now lives at.
type RenameNoteResponse struct {
	Path string `json:"path"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Document `json:"notes"`
	Total int               `json:"total"`
}

// LinksResponse wraps a backlinks or outgoing-links query.
type LinksResponse struct {
	Path  string   `json:"path"`
	Links []string `json:"links"`
}

// GraphResponse wraps the full link graph.
type GraphResponse struct {
	Nodes []models.Document `json:"nodes"`
	Links []models.Edge     `json:"links"`
}

// OrphansResponse wraps the orphaned-documents query.
type OrphansResponse struct {
	Orphans []string `json:"orphans"`
}

// BrokenLinksResponse wraps the broken-edges query.
type BrokenLinksResponse struct {
	Broken []models.Edge `json:"broken"`
}
