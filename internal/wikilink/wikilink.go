// Package wikilink extracts [[wikilink]] references from note content.
package wikilink

import (
	"regexp"
	"strings"
)

// The optional leading capture group detects an escaped literal (\[[...]]).
var linkRe = regexp.MustCompile(`(\\)?\[\[(.*?)\]\]`)

// Link is one parsed wikilink reference. Alias is empty when the reference
// carries no |alias part.
type Link struct {
	Target string
	Alias  string
}

// Extract returns every wikilink in content, in order of first occurrence.
// References preceded by a backslash are literals and are excluded.
// Unterminated brackets match nothing. The function is pure and never fails.
func Extract(content string) []Link {
	matches := linkRe.FindAllStringSubmatch(content, -1)
	var out []Link
	for _, m := range matches {
		if m[1] != "" {
			// Escaped: \[[...]] renders as literal text.
			continue
		}
		inner := m[2]
		target, alias := inner, ""
		if i := strings.Index(inner, "|"); i >= 0 {
			target = inner[:i]
			alias = strings.TrimSpace(inner[i+1:])
		}
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		out = append(out, Link{Target: target, Alias: alias})
	}
	return out
}
