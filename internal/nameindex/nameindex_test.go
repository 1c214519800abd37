package nameindex

import (
	"os"
	"path/filepath"
	"testing"
)

func writeNote(t *testing.T, root, rel string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("body"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_MissingRoot(t *testing.T) {
	_, err := Build(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing vault root")
	}
}

func TestResolve_WithAndWithoutExtension(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for _, target := range []string{"Note", "Note.md"} {
		got, ok := ix.Resolve(target)
		if !ok || got != "Note.md" {
			t.Errorf("Resolve(%q) = %q, %v; want Note.md", target, got, ok)
		}
	}
}

func TestResolve_ShallowestWins(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Note.md")
	writeNote(t, root, "deep/folder/Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, ok := ix.Resolve("Note")
	if !ok || got != "Note.md" {
		t.Errorf("Resolve(Note) = %q, %v; want root-level Note.md", got, ok)
	}
}

func TestResolve_DirectPathWins(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Note.md")
	writeNote(t, root, "folder/Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, ok := ix.Resolve("folder/Note")
	if !ok || got != "folder/Note.md" {
		t.Errorf("Resolve(folder/Note) = %q, %v; want folder/Note.md", got, ok)
	}
}

func TestResolve_PathFragmentFallback(t *testing.T) {
	root := t.TempDir()
	// "projects/Note" does not exist as a direct join, but the fragment
	// matches a deeper candidate.
	writeNote(t, root, "work/projects/Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	got, ok := ix.Resolve("projects/Note")
	if !ok || got != "work/projects/Note.md" {
		t.Errorf("Resolve(projects/Note) = %q, %v; want work/projects/Note.md", got, ok)
	}
}

func TestResolve_PathFragmentDeterministic(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "b/sub/Note.md")
	writeNote(t, root, "a/sub/Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Both candidates contain "sub/Note"; lexicographic order makes the
	// a/ variant win, on every run.
	for i := 0; i < 3; i++ {
		got, ok := ix.Resolve("sub/Note")
		if !ok || got != "a/sub/Note.md" {
			t.Fatalf("Resolve(sub/Note) = %q, %v; want a/sub/Note.md", got, ok)
		}
	}
}

func TestResolve_NoMatch(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "Note.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, ok := ix.Resolve("Missing"); ok {
		t.Errorf("Resolve(Missing) = %q, want no match", got)
	}
	if got, ok := ix.Resolve("no/such/Path"); ok {
		t.Errorf("Resolve(no/such/Path) = %q, want no match", got)
	}
}

func TestResolve_EscapingTargetNotResolved(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "vault")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(parent, "secret.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got, ok := ix.Resolve("../secret"); ok {
		t.Errorf("Resolve(../secret) = %q, want no match", got)
	}
}

func TestBuild_SkipsHiddenAndTrash(t *testing.T) {
	root := t.TempDir()
	writeNote(t, root, "keep.md")
	writeNote(t, root, ".trash/gone.md")
	writeNote(t, root, ".git/objects/blob.md")
	writeNote(t, root, ".hidden.md")
	ix, err := Build(root)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, ok := ix.Resolve("gone"); ok {
		t.Error("trash entries must not be indexed")
	}
	if _, ok := ix.Resolve("blob"); ok {
		t.Error("version-control entries must not be indexed")
	}
	if _, ok := ix.Resolve(".hidden"); ok {
		t.Error("hidden files must not be indexed")
	}
	if _, ok := ix.Resolve("keep"); !ok {
		t.Error("regular note should be indexed")
	}
}
