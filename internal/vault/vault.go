// Package vault defines the vault file-system abstraction.
package vault

import "github.com/starford/gebo/internal/models"

// Provider is the interface for vault file operations. All paths are
// vault-relative with forward slashes.
type Provider interface {
	// Root returns the absolute vault root directory.
	Root() string
	// List walks dir (relative to root) and returns metadata for every
	// indexable .md file, excluding hidden and trash directories.
	List(dir string) ([]models.Document, error)
	// Stat returns metadata for a single file.
	Stat(path string) (models.Document, error)
	// Read returns the raw bytes of a vault file.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Move renames oldPath to newPath within the vault.
	Move(oldPath, newPath string) error
	// Mkdir creates a directory (and any missing parents) under the root.
	// An existing entry at the path is an fs.ErrExist error.
	Mkdir(dir string) error
	// Trash moves path into the vault's .trash directory under a
	// collision-proof name and returns the trash-relative destination.
	Trash(path string) (string, error)
}
