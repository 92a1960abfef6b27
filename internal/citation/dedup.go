// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// Reconciled is a deduplicated citation list together with the content whose
// markers were rewritten to match it.
type Reconciled struct {
	Citations []types.Citation

	// Content is the document body with every marker pointing into Citations.
	Content string

	// Remap maps every original 1-based index to its new 1-based index.
	// It is nil when deduplication was skipped.
	Remap map[int]int

	// Removed counts the citations dropped as duplicates.
	Removed int
}

// Deduplicate removes duplicate sources from citations, keeping the first
// occurrence of each, and rewrites the [n] markers in content to the compacted
// numbering. Markers of a dropped duplicate point to the surviving entry.
// With zero or one citation the input is returned unchanged.
func Deduplicate(citations []types.Citation, content string) Reconciled {
	if len(citations) <= 1 {
		return Reconciled{Citations: citations, Content: content}
	}

	seen := make(map[string]int, len(citations)) // dedup key → new 1-based index
	remap := make(map[int]int, len(citations))
	deduped := make([]types.Citation, 0, len(citations))

	for i, c := range citations {
		key := dedupKey(c, i)
		if idx, ok := seen[key]; ok {
			remap[i+1] = idx
			continue
		}
		deduped = append(deduped, c)
		seen[key] = len(deduped)
		remap[i+1] = len(deduped)
	}

	return Reconciled{
		Citations: deduped,
		Content:   Renumber(content, remap),
		Remap:     remap,
		Removed:   len(citations) - len(deduped),
	}
}

// dedupKey derives the identity of a citation: its normalized URL, else the
// normalized title extracted from its text, else a key unique to its index so
// that entries with nothing extractable never collide.
func dedupKey(c types.Citation, index int) string {
	if u := strings.TrimSpace(c.URL); u != "" {
		if norm, err := NormalizeURL(u); err == nil && norm != "" {
			return "url:" + norm
		}
		return "url:" + strings.ToLower(u)
	}
	if title, ok := ExtractTitle(c.Text); ok {
		if norm := normalizeTitle(title); norm != "" {
			return "title:" + norm
		}
	}
	return "index:" + strconv.Itoa(index)
}
