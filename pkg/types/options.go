// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

const (
	// MinTopicLength is the shortest accepted topic after trimming.
	MinTopicLength = 3

	// MaxTokensLimit caps the caller-supplied research output budget.
	MaxTokensLimit = 16000

	// MaxSearchDomains caps the size of the source-domain allow-list.
	MaxSearchDomains = 10
)

// ValidationError reports caller input rejected before a pipeline starts.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ResearchOptions is the single typed options structure for a research run.
// It is validated once at the boundary and then passed by value.
type ResearchOptions struct {
	// UseDeepResearch selects the three-stage deep pipeline instead of the
	// single-call standard mode.
	UseDeepResearch bool `json:"useDeepResearch"`

	// MaxTokens overrides the configured research output budget when > 0.
	MaxTokens int `json:"maxTokens,omitempty"`

	// SearchDomains restricts the answering service to these source domains.
	SearchDomains []string `json:"searchDomains,omitempty"`
}

// ValidateTopic trims the topic and rejects empty or too-short input.
func ValidateTopic(topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if len(topic) < MinTopicLength {
		return "", &ValidationError{
			Field:   "topic",
			Message: fmt.Sprintf("must be at least %d characters", MinTopicLength),
		}
	}
	return topic, nil
}

// Validate checks the options and returns a normalized copy: domains are
// trimmed, lowercased, stripped of scheme and path, and deduplicated.
func (o ResearchOptions) Validate() (ResearchOptions, error) {
	if o.MaxTokens < 0 || o.MaxTokens > MaxTokensLimit {
		return o, &ValidationError{
			Field:   "maxTokens",
			Message: fmt.Sprintf("must be between 0 and %d", MaxTokensLimit),
		}
	}
	if len(o.SearchDomains) > MaxSearchDomains {
		return o, &ValidationError{
			Field:   "searchDomains",
			Message: fmt.Sprintf("at most %d domains allowed", MaxSearchDomains),
		}
	}

	out := o
	out.SearchDomains = nil
	seen := make(map[string]bool)
	for _, d := range o.SearchDomains {
		host := normalizeDomain(d)
		if host == "" || strings.ContainsAny(host, " \t/") || !strings.Contains(host, ".") {
			return o, &ValidationError{Field: "searchDomains", Message: fmt.Sprintf("%q is not a domain", d)}
		}
		if seen[host] {
			continue
		}
		seen[host] = true
		out.SearchDomains = append(out.SearchDomains, host)
	}
	return out, nil
}

// normalizeDomain reduces "https://www.Example.org/path" to "example.org".
func normalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return strings.TrimPrefix(d, "www.")
}
