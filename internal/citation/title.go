// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"regexp"
	"strings"
	"unicode"
)

// Title patterns, tried in order. All are best-effort.
var (
	// apaTitleRe matches the title following an APA-style year: "Smith, J. (2020). Title. Venue."
	apaTitleRe = regexp.MustCompile(`\)\.\s+([^.]+?)\.(?:\s|$)`)

	// quotedTitleRe matches a straight- or curly-quoted title.
	quotedTitleRe = regexp.MustCompile(`["“]([^"”]{3,})["”]`)
)

// minTitleLength rejects fragments too short to identify a source.
const minTitleLength = 3

// ExtractTitle guesses the title embedded in free-form citation text. It
// recognizes APA-style "(Year). Title." text, quoted titles, and the
// "Title. Venue" display text produced by Normalize. The result is an
// approximation and must not be treated as authoritative parsing.
func ExtractTitle(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	if m := apaTitleRe.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(m[1]); len(t) >= minTitleLength {
			return t, true
		}
	}

	if m := quotedTitleRe.FindStringSubmatch(text); m != nil {
		if t := strings.TrimSpace(strings.TrimRight(m[1], ".,")); len(t) >= minTitleLength {
			return t, true
		}
	}

	if i := strings.Index(text, ". "); i >= minTitleLength {
		return strings.TrimSpace(text[:i]), true
	}

	return "", false
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
