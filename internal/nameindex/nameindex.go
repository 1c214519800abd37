// Package nameindex maps bare note names to vault paths for wikilink
// resolution. The index is rebuilt from a fresh vault walk on every indexing
// pass and is read-only afterwards.
package nameindex

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Index is the name→paths lookup table. Every .md file is entered under two
// keys: its filename and its filename without the .md extension, so links
// resolve whether or not the author typed the extension.
type Index struct {
	root  string
	names map[string][]string // sorted vault-relative paths, forward slashes
}

// Build walks the vault root once and returns the populated index. Hidden
// entries (names starting with a dot, which covers .git and .trash) are
// skipped. A missing root is an error.
func Build(root string) (*Index, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("nameindex: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("nameindex: vault not found: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("nameindex: vault root is not a directory: %s", abs)
	}

	names := make(map[string][]string)
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if p != abs && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		names[name] = append(names[name], rel)
		stem := strings.TrimSuffix(name, ".md")
		names[stem] = append(names[stem], rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("nameindex: walk: %w", err)
	}

	// Candidate sets are kept sorted so path-fragment matches are
	// deterministic (lexicographic by path).
	for _, paths := range names {
		sort.Strings(paths)
	}
	return &Index{root: abs, names: names}, nil
}

// Resolve maps a raw wikilink target to a vault-relative path.
//
// Path-bearing targets first try a direct join against the vault root (an
// existing file wins unconditionally), then fall back to a filename lookup
// filtered to candidates containing the supplied path fragment. Bare targets
// use an exact lookup; among same-named candidates the one closest to the
// vault root wins.
func (ix *Index) Resolve(target string) (string, bool) {
	if strings.Contains(target, "/") {
		direct := target
		if path.Ext(direct) != ".md" {
			direct += ".md"
		}
		abs := filepath.Join(ix.root, filepath.FromSlash(direct))
		// Join cleans ".." segments; anything that escapes the root is
		// not a resolvable target.
		if strings.HasPrefix(abs, ix.root+string(os.PathSeparator)) {
			if fi, statErr := os.Stat(abs); statErr == nil && !fi.IsDir() {
				rel, relErr := filepath.Rel(ix.root, abs)
				if relErr == nil {
					return filepath.ToSlash(rel), true
				}
			}
		}

		for _, cand := range ix.names[path.Base(target)] {
			if strings.Contains(cand, target) {
				return cand, true
			}
		}
		return "", false
	}

	cands := ix.names[target]
	if len(cands) == 0 {
		return "", false
	}
	best := cands[0]
	bestDepth := strings.Count(best, "/")
	for _, c := range cands[1:] {
		if d := strings.Count(c, "/"); d < bestDepth {
			best, bestDepth = c, d
		}
	}
	return best, true
}
