// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// markerRe matches numeric citation markers like [1], [2], [12].
var markerRe = regexp.MustCompile(`\[(\d+)\]`)

// spacedMarkerRe matches a marker together with the whitespace before it, so
// that removing it does not leave double spaces behind.
var spacedMarkerRe = regexp.MustCompile(`\s*\[(\d+)\]`)

// Markers returns every marker number in content, in order of appearance.
// Numbers too large to parse are skipped.
func Markers(content string) []int {
	var out []int
	for _, m := range markerRe.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// OutOfRange returns the distinct marker numbers outside [1, n], in order of
// first appearance. Numbers too large to parse are not reported.
func OutOfRange(content string, n int) []int {
	seen := make(map[int]bool)
	var invalid []int
	for _, k := range Markers(content) {
		if (k < 1 || k > n) && !seen[k] {
			seen[k] = true
			invalid = append(invalid, k)
		}
	}
	return invalid
}

// DropOutOfRange removes markers outside [1, n], including numbers too large
// to parse, so that no marker dangles. Markers within range, and the text
// around removed markers, are untouched.
func DropOutOfRange(content string, n int) string {
	return spacedMarkerRe.ReplaceAllStringFunc(content, func(match string) string {
		sub := spacedMarkerRe.FindStringSubmatch(match)
		k, err := strconv.Atoi(sub[1])
		if err == nil && k >= 1 && k <= n {
			return match
		}
		return ""
	})
}

// Renumber rewrites every [old] marker to [new] using remap. Markers with no
// entry in remap are left as they are rather than deleted.
func Renumber(content string, remap map[int]int) string {
	if len(remap) == 0 {
		return content
	}
	return markerRe.ReplaceAllStringFunc(content, func(match string) string {
		old, err := strconv.Atoi(match[1 : len(match)-1])
		if err != nil {
			return match
		}
		if n, ok := remap[old]; ok {
			return "[" + strconv.Itoa(n) + "]"
		}
		return match
	})
}

// Enumerate renders the citation list as a numbered reference block, one
// "[i] text (url)" line per citation, for inclusion in prompts.
func Enumerate(citations []types.Citation) string {
	var b strings.Builder
	for i, c := range citations {
		fmt.Fprintf(&b, "[%d] %s", i+1, Display(c))
		b.WriteByte('\n')
	}
	return b.String()
}

// Display returns a one-line rendering of a citation: authors, text and url,
// skipping empty parts and not repeating the url when it is the text.
func Display(c types.Citation) string {
	var parts []string
	if c.Authors != "" && !strings.Contains(c.Text, c.Authors) {
		parts = append(parts, c.Authors)
	}
	if c.Text != "" {
		parts = append(parts, c.Text)
	}
	line := strings.Join(parts, ". ")
	if c.URL != "" && c.URL != c.Text {
		if line == "" {
			return c.URL
		}
		line += " (" + c.URL + ")"
	}
	return line
}
