package wikilink

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestExtract_Basic(t *testing.T) {
	links := Extract("See [[Note A]] and [[Note B]].")
	want := []Link{{Target: "Note A"}, {Target: "Note B"}}
	if !reflect.DeepEqual(links, want) {
		t.Errorf("links = %v, want %v", links, want)
	}
}

func TestExtract_Alias(t *testing.T) {
	links := Extract("go to [[folder/Note | the note ]] now")
	if len(links) != 1 {
		t.Fatalf("len = %d, want 1", len(links))
	}
	if links[0].Target != "folder/Note" {
		t.Errorf("target = %q, want %q", links[0].Target, "folder/Note")
	}
	if links[0].Alias != "the note" {
		t.Errorf("alias = %q, want %q", links[0].Alias, "the note")
	}
}

func TestExtract_EscapedExcluded(t *testing.T) {
	cases := []string{
		`\[[literal]]`,
		`before \[[literal]] after`,
		`\[[a|b]]`,
	}
	for _, c := range cases {
		if links := Extract(c); len(links) != 0 {
			t.Errorf("Extract(%q) = %v, want none", c, links)
		}
	}

	// Escape applies per reference, not per document.
	links := Extract(`\[[skipped]] but [[kept]]`)
	if len(links) != 1 || links[0].Target != "kept" {
		t.Errorf("links = %v, want [kept]", links)
	}
}

func TestExtract_MalformedContributesNothing(t *testing.T) {
	cases := []string{
		"[[unterminated",
		"no links here",
		"half ]] closed",
		"[single brackets]",
		"",
	}
	for _, c := range cases {
		if links := Extract(c); len(links) != 0 {
			t.Errorf("Extract(%q) = %v, want none", c, links)
		}
	}
}

func TestExtract_EmptyTargetDropped(t *testing.T) {
	if links := Extract("see [[ ]] and [[|alias only]]"); len(links) != 0 {
		t.Errorf("links = %v, want none", links)
	}
}

func TestExtract_OrderOfFirstOccurrence(t *testing.T) {
	links := Extract("[[C]] then [[A]] then [[B]] then [[A]]")
	got := make([]string, len(links))
	for i, l := range links {
		got[i] = l.Target
	}
	want := []string{"C", "A", "B", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// Re-serializing extracted links into bracket form and extracting again must
// yield the same references.
func TestExtract_Roundtrip(t *testing.T) {
	inputs := []string{
		"plain [[One]] text [[Two|2]] more [[deep/Three]]",
		"[[A]][[B|b]][[A]]",
		"mixed \\[[escaped]] with [[real|alias]]",
	}
	for _, in := range inputs {
		first := Extract(in)
		var b strings.Builder
		for _, l := range first {
			if l.Alias != "" {
				fmt.Fprintf(&b, "[[%s|%s]] ", l.Target, l.Alias)
			} else {
				fmt.Fprintf(&b, "[[%s]] ", l.Target)
			}
		}
		second := Extract(b.String())
		if !reflect.DeepEqual(first, second) {
			t.Errorf("roundtrip mismatch for %q: %v != %v", in, first, second)
		}
	}
}

func TestExtract_Idempotent(t *testing.T) {
	in := "a [[X]] b [[Y|y]] c"
	if !reflect.DeepEqual(Extract(in), Extract(in)) {
		t.Error("extraction is not deterministic")
	}
}
