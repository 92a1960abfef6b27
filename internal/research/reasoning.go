// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import "strings"

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
)

// SplitReasoning separates embedded <think>...</think> sections from the
// answer. It returns the answer with every section removed and the section
// bodies joined by blank lines. An unterminated <think> runs to the end of
// the text.
func SplitReasoning(content string) (answer, reasoning string) {
	if !strings.Contains(content, thinkOpen) {
		return content, ""
	}

	var out, traces []string
	rest := content
	for {
		i := strings.Index(rest, thinkOpen)
		if i < 0 {
			out = append(out, rest)
			break
		}
		out = append(out, rest[:i])
		rest = rest[i+len(thinkOpen):]

		j := strings.Index(rest, thinkClose)
		if j < 0 {
			traces = append(traces, strings.TrimSpace(rest))
			break
		}
		traces = append(traces, strings.TrimSpace(rest[:j]))
		rest = rest[j+len(thinkClose):]
	}

	var kept []string
	for _, t := range traces {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return strings.TrimSpace(strings.Join(out, "")), strings.Join(kept, "\n\n")
}
