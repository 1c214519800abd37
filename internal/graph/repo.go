package graph

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/starford/gebo/internal/models"
)

// IndexDocument upserts the document row and replaces its outgoing edges in
// one transaction: delete all edges where the document is source, then insert
// one edge per resolved target. The edge set for a source is therefore always
// exactly the resolved set of the most recent call. Unsafe targets are
// skipped, not errors.
func (s *Store) IndexDocument(doc models.Document, targets []string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO documents (path, modified_at, size)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			modified_at = excluded.modified_at,
			size        = excluded.size
	`, doc.Path, doc.ModifiedAt, doc.Size)
	if err != nil {
		return fmt.Errorf("graph: upsert document: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM links WHERE source_path = ?`, doc.Path); err != nil {
		return fmt.Errorf("graph: clear edges: %w", err)
	}
	if len(targets) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source_path, target_path) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("graph: prepare edge insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range targets {
			if !safeTarget(target) {
				continue
			}
			if _, err := stmt.Exec(doc.Path, target); err != nil {
				return fmt.Errorf("graph: insert edge: %w", err)
			}
		}
	}

	return tx.Commit()
}

// safeTarget rejects targets that could escape the vault: empty strings,
// absolute paths, and any "." or ".." path component.
func safeTarget(target string) bool {
	if strings.TrimSpace(target) == "" {
		return false
	}
	t := filepath.ToSlash(target)
	if filepath.IsAbs(target) || strings.HasPrefix(t, "/") {
		return false
	}
	for _, seg := range strings.Split(t, "/") {
		switch seg {
		case "", ".", "..":
			return false
		}
	}
	return true
}

// OutgoingLinks returns all target paths linked from path.
func (s *Store) OutgoingLinks(path string) ([]string, error) {
	return s.queryPaths(`SELECT target_path FROM links WHERE source_path = ? ORDER BY target_path`, path)
}

// Backlinks returns all source paths that link to path.
func (s *Store) Backlinks(path string) ([]string, error) {
	return s.queryPaths(`SELECT source_path FROM links WHERE target_path = ? ORDER BY source_path`, path)
}

func (s *Store) queryPaths(query string, args ...any) ([]string, error) {
	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("graph: query paths: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AllEdges returns the full edge set.
func (s *Store) AllEdges() ([]models.Edge, error) {
	return s.queryEdges(`SELECT source_path, target_path FROM links ORDER BY source_path, target_path`)
}

// BrokenEdges returns edges whose target has no document row.
func (s *Store) BrokenEdges() ([]models.Edge, error) {
	return s.queryEdges(`
		SELECT l.source_path, l.target_path
		FROM links l
		LEFT JOIN documents d ON d.path = l.target_path
		WHERE d.path IS NULL
		ORDER BY l.source_path, l.target_path
	`)
}

func (s *Store) queryEdges(query string) ([]models.Edge, error) {
	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("graph: query edges: %w", err)
	}
	defer rows.Close()

	var out []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.Source, &e.Target); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdatePath atomically rewrites a document's primary key and every edge
// where the path appears as source or target. Foreign keys are deferred to
// commit so the parent key and its edges can move together.
func (s *Store) UpdatePath(oldPath, newPath string) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`PRAGMA defer_foreign_keys = ON`); err != nil {
		return fmt.Errorf("graph: defer foreign keys: %w", err)
	}
	if _, err := tx.Exec(`UPDATE documents SET path = ? WHERE path = ?`, newPath, oldPath); err != nil {
		return fmt.Errorf("graph: update document path: %w", err)
	}
	// OR REPLACE collapses a pre-existing (source,target) duplicate instead
	// of failing the rename.
	if _, err := tx.Exec(`UPDATE OR REPLACE links SET source_path = ? WHERE source_path = ?`, newPath, oldPath); err != nil {
		return fmt.Errorf("graph: update edge sources: %w", err)
	}
	if _, err := tx.Exec(`UPDATE OR REPLACE links SET target_path = ? WHERE target_path = ?`, newPath, oldPath); err != nil {
		return fmt.Errorf("graph: update edge targets: %w", err)
	}

	return tx.Commit()
}

// DeleteDocument removes a document row. Edges where it is source go with it
// via the cascade; edges where it is target stay behind as broken links.
func (s *Store) DeleteDocument(path string) error {
	if _, err := s.conn.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("graph: delete document: %w", err)
	}
	return nil
}

// BatchDelete removes the given documents in one transaction and returns the
// number of rows actually deleted, which may be lower than len(paths) if a
// concurrent writer got there first.
func (s *Store) BatchDelete(paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	tx, err := s.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("graph: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`DELETE FROM documents WHERE path = ?`)
	if err != nil {
		return 0, fmt.Errorf("graph: prepare batch delete: %w", err)
	}
	defer stmt.Close()

	deleted := 0
	for _, p := range paths {
		res, err := stmt.Exec(p)
		if err != nil {
			return 0, fmt.Errorf("graph: batch delete %s: %w", p, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			deleted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// AllDocuments returns every tracked path with its recorded modification
// time, used by the reconciler as the known set.
func (s *Store) AllDocuments() (map[string]int64, error) {
	rows, err := s.conn.Query(`SELECT path, modified_at FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("graph: all documents: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var p string
		var mod int64
		if err := rows.Scan(&p, &mod); err != nil {
			return nil, err
		}
		out[p] = mod
	}
	return out, rows.Err()
}

// Documents returns every document row ordered by path, for listings.
func (s *Store) Documents() ([]models.Document, error) {
	rows, err := s.conn.Query(`SELECT path, modified_at, size FROM documents ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("graph: documents: %w", err)
	}
	defer rows.Close()

	var out []models.Document
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.Path, &d.ModifiedAt, &d.Size); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// OrphanedDocuments returns documents with no incoming and no outgoing edges.
func (s *Store) OrphanedDocuments() ([]string, error) {
	return s.queryPaths(`
		SELECT d.path FROM documents d
		WHERE NOT EXISTS (SELECT 1 FROM links l WHERE l.source_path = d.path)
		  AND NOT EXISTS (SELECT 1 FROM links l WHERE l.target_path = d.path)
		ORDER BY d.path
	`)
}
