package graph

import (
	"os"
	"reflect"
	"testing"

	"github.com/starford/gebo/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	f, err := os.CreateTemp("", "gebo-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	s, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doc(path string) models.Document {
	return models.Document{Path: path, ModifiedAt: 1700000000, Size: 42}
}

func TestSchemaCreation(t *testing.T) {
	s := testStore(t)
	var count int
	if err := s.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&count); err != nil {
		t.Fatalf("documents table missing: %v", err)
	}
	if err := s.conn.QueryRow(`SELECT count(*) FROM links`).Scan(&count); err != nil {
		t.Fatalf("links table missing: %v", err)
	}
}

func TestIndexDocument_ReplacesEdges(t *testing.T) {
	s := testStore(t)
	if err := s.IndexDocument(doc("a.md"), []string{"b.md", "c.md"}); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	if err := s.IndexDocument(doc("a.md"), []string{"d.md"}); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}

	out, err := s.OutgoingLinks("a.md")
	if err != nil {
		t.Fatalf("OutgoingLinks: %v", err)
	}
	if !reflect.DeepEqual(out, []string{"d.md"}) {
		t.Errorf("edges = %v, want exactly the second call's set", out)
	}
}

func TestIndexDocument_DeduplicatesTargets(t *testing.T) {
	s := testStore(t)
	if err := s.IndexDocument(doc("a.md"), []string{"b.md", "b.md", "b.md"}); err != nil {
		t.Fatalf("IndexDocument: %v", err)
	}
	out, _ := s.OutgoingLinks("a.md")
	if len(out) != 1 {
		t.Errorf("len(edges) = %d, want 1", len(out))
	}
}

func TestIndexDocument_SkipsUnsafeTargets(t *testing.T) {
	s := testStore(t)
	targets := []string{
		"../escape.md",
		"/etc/passwd",
		"a/../b.md",
		"./self.md",
		"  ",
		"ok.md",
	}
	if err := s.IndexDocument(doc("a.md"), targets); err != nil {
		t.Fatalf("IndexDocument should not fail on unsafe targets: %v", err)
	}
	out, _ := s.OutgoingLinks("a.md")
	if !reflect.DeepEqual(out, []string{"ok.md"}) {
		t.Errorf("edges = %v, want only ok.md", out)
	}
}

func TestDeleteDocument_CascadesAndLeavesBrokenEdges(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("a.md"), []string{"b.md"})
	_ = s.IndexDocument(doc("b.md"), []string{"a.md"})

	if err := s.DeleteDocument("b.md"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	// b.md's own outgoing edges are gone with it.
	out, _ := s.OutgoingLinks("b.md")
	if len(out) != 0 {
		t.Errorf("outgoing of deleted doc = %v, want none", out)
	}

	// a.md -> b.md survives as a broken link.
	broken, err := s.BrokenEdges()
	if err != nil {
		t.Fatalf("BrokenEdges: %v", err)
	}
	want := []models.Edge{{Source: "a.md", Target: "b.md"}}
	if !reflect.DeepEqual(broken, want) {
		t.Errorf("broken = %v, want %v", broken, want)
	}
}

func TestUpdatePath_PreservesGraphShape(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("old.md"), []string{"x.md", "y.md"})
	_ = s.IndexDocument(doc("other.md"), []string{"old.md"})

	before, _ := s.OutgoingLinks("old.md")

	if err := s.UpdatePath("old.md", "new.md"); err != nil {
		t.Fatalf("UpdatePath: %v", err)
	}

	after, err := s.OutgoingLinks("new.md")
	if err != nil {
		t.Fatalf("OutgoingLinks: %v", err)
	}
	if !reflect.DeepEqual(after, before) {
		t.Errorf("outgoing after rename = %v, want %v", after, before)
	}

	if out, _ := s.OutgoingLinks("old.md"); len(out) != 0 {
		t.Errorf("old path still has edges: %v", out)
	}

	// Every backlink-holder now targets the new path.
	bl, _ := s.Backlinks("new.md")
	if !reflect.DeepEqual(bl, []string{"other.md"}) {
		t.Errorf("backlinks of new path = %v, want [other.md]", bl)
	}
	if bl, _ := s.Backlinks("old.md"); len(bl) != 0 {
		t.Errorf("old path still has backlinks: %v", bl)
	}
}

func TestBacklinks(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("a.md"), []string{"b.md"})
	_ = s.IndexDocument(doc("c.md"), []string{"b.md"})

	bl, err := s.Backlinks("b.md")
	if err != nil {
		t.Fatalf("Backlinks: %v", err)
	}
	if !reflect.DeepEqual(bl, []string{"a.md", "c.md"}) {
		t.Errorf("backlinks = %v", bl)
	}
}

func TestAllEdges(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("a.md"), []string{"b.md", "c.md"})
	edges, err := s.AllEdges()
	if err != nil {
		t.Fatalf("AllEdges: %v", err)
	}
	if len(edges) != 2 {
		t.Errorf("len(edges) = %d, want 2", len(edges))
	}
}

func TestBatchDelete_ReturnsActualCount(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("a.md"), nil)
	_ = s.IndexDocument(doc("b.md"), nil)

	n, err := s.BatchDelete([]string{"a.md", "b.md", "never-existed.md"})
	if err != nil {
		t.Fatalf("BatchDelete: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	docs, _ := s.AllDocuments()
	if len(docs) != 0 {
		t.Errorf("documents left = %v, want none", docs)
	}
}

func TestBatchDelete_Empty(t *testing.T) {
	s := testStore(t)
	n, err := s.BatchDelete(nil)
	if err != nil || n != 0 {
		t.Errorf("BatchDelete(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestAllDocuments(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(models.Document{Path: "a.md", ModifiedAt: 111, Size: 1}, nil)
	_ = s.IndexDocument(models.Document{Path: "b.md", ModifiedAt: 222, Size: 2}, nil)

	docs, err := s.AllDocuments()
	if err != nil {
		t.Fatalf("AllDocuments: %v", err)
	}
	if docs["a.md"] != 111 || docs["b.md"] != 222 {
		t.Errorf("docs = %v", docs)
	}
}

func TestOrphanedDocuments(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(doc("linked.md"), []string{"target.md"})
	_ = s.IndexDocument(doc("target.md"), nil)
	_ = s.IndexDocument(doc("island.md"), nil)

	orphans, err := s.OrphanedDocuments()
	if err != nil {
		t.Fatalf("OrphanedDocuments: %v", err)
	}
	if !reflect.DeepEqual(orphans, []string{"island.md"}) {
		t.Errorf("orphans = %v, want [island.md]", orphans)
	}
}

func TestIndexDocument_UpdatesMetadata(t *testing.T) {
	s := testStore(t)
	_ = s.IndexDocument(models.Document{Path: "a.md", ModifiedAt: 100, Size: 10}, nil)
	_ = s.IndexDocument(models.Document{Path: "a.md", ModifiedAt: 200, Size: 20}, nil)

	docs, _ := s.AllDocuments()
	if docs["a.md"] != 200 {
		t.Errorf("modified_at = %d, want 200", docs["a.md"])
	}
}
