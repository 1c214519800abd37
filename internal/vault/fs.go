package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/starford/gebo/internal/models"
)

// TrashDir is the soft-delete directory inside the vault root. It is never
// walked by indexing passes.
const TrashDir = ".trash"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault root.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a relative path against the vault root and rejects
// any result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("vault: absolute paths not allowed: %s", rel)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// List walks dir (relative to root) and returns metadata for every .md file.
// Hidden entries (dot-prefixed, which covers .git and .trash) are skipped.
func (f *FS) List(dir string) ([]models.Document, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	var out []models.Document
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if p != base && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.Document{
			Path:       filepath.ToSlash(rel),
			ModifiedAt: info.ModTime().Unix(),
			Size:       info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("vault: list: %w", err)
	}
	return out, nil
}

// Stat returns metadata for a single vault file.
func (f *FS) Stat(path string) (models.Document, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return models.Document{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return models.Document{}, fmt.Errorf("vault: stat %s: %w", path, err)
	}
	return models.Document{
		Path:       path,
		ModifiedAt: info.ModTime().Unix(),
		Size:       info.Size(),
	}, nil
}

// Read returns the raw bytes of a vault file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically writes content: tmp file → fsync → rename.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gebo-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}

// Move renames a file within the vault.
func (f *FS) Move(oldPath, newPath string) error {
	absOld, err := f.safePath(oldPath)
	if err != nil {
		return err
	}
	absNew, err := f.safePath(newPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absNew)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir for move: %w", err)
	}
	if err := os.Rename(absOld, absNew); err != nil {
		return fmt.Errorf("vault: move: %w", err)
	}
	return nil
}

// Mkdir creates a directory (with parents) inside the vault.
func (f *FS) Mkdir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("vault: mkdir: empty path")
	}
	abs, err := f.safePath(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("vault: mkdir %s: %w", dir, fs.ErrExist)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir %s: %w", dir, err)
	}
	return nil
}

// Trash soft-deletes a file by moving it into .trash under a name that
// embeds the parent directory and a millisecond timestamp, so repeated
// deletions of same-named files never collide.
func (f *FS) Trash(path string) (string, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("vault: trash %s: %w", path, err)
	}

	trashAbs := filepath.Join(f.root, TrashDir)
	if err := os.MkdirAll(trashAbs, 0o755); err != nil {
		return "", fmt.Errorf("vault: create trash dir: %w", err)
	}

	name := trashName(abs, time.Now().UnixMilli())
	dest := filepath.Join(trashAbs, name)
	if err := os.Rename(abs, dest); err != nil {
		return "", fmt.Errorf("vault: trash move: %w", err)
	}
	return filepath.ToSlash(filepath.Join(TrashDir, name)), nil
}

// trashName builds "stem (parent) timestamp.md" for files and
// "name (parent) timestamp" for directories. A previous " (" suffix in the
// parent name is stripped so re-trashed items don't stack timestamps.
func trashName(abs string, timestamp int64) string {
	base := filepath.Base(abs)
	parent := filepath.Base(filepath.Dir(abs))
	if i := strings.Index(parent, " ("); i >= 0 {
		parent = parent[:i]
	}

	info, err := os.Stat(abs)
	if err == nil && info.IsDir() {
		return fmt.Sprintf("%s (%s) %d", base, parent, timestamp)
	}
	stem := strings.TrimSuffix(base, ".md")
	return fmt.Sprintf("%s (%s) %d.md", stem, parent, timestamp)
}

// SanitizeName strips characters not allowed in user-supplied note names:
// everything except letters, digits, space, '-', '_', parentheses and '.'.
// Trailing dots and spaces are removed.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, c := range s {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune(" -_().", c) {
			b.WriteRune(c)
		}
	}
	return strings.TrimRight(b.String(), ". ")
}
