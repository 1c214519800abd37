// Package models defines the domain types for Gebo.
package models

// Document is a tracked vault file. Path is vault-relative with forward
// slashes and serves as the primary key everywhere (filesystem walk results,
// store rows, API payloads).
type Document struct {
	Path       string `json:"path"`
	ModifiedAt int64  `json:"modified_at"` // Unix seconds
	Size       int64  `json:"size"`
}

// Edge is a directed wikilink between two documents. The target may point at
// a path with no Document row; such edges are broken links and stay queryable.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// SyncResult is returned to callers of a full vault sync. Success stays true
// when individual documents fail; only vault-root or store failures flip it.
type SyncResult struct {
	Success      bool   `json:"success"`
	FilesIndexed int    `json:"files_indexed"`
	FilesDeleted int    `json:"files_deleted"`
	FilesSkipped int    `json:"files_skipped"`
	DurationMS   int64  `json:"duration_ms"`
	Error        string `json:"error,omitempty"`
}
