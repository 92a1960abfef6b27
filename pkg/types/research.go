// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-assistant pipeline.
// Citations, research summaries, progress events and the request options that flow
// from the HTTP and CLI boundaries into the research pipeline all live here.
package types

import "time"

// Citation is a display-ready reference. Its position in a ResearchSummary's
// citation list (1-based) is the number that in-text [n] markers refer to.
type Citation struct {
	// Authors is a free-form attribution string, possibly empty.
	Authors string `json:"authors" yaml:"authors"`

	// Text is the human-readable citation line, or the raw URL when nothing
	// better could be inferred.
	Text string `json:"text" yaml:"text"`

	// URL is the source link, empty for the sentinel citation.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ResearchMode identifies which pipeline produced a summary.
type ResearchMode string

const (
	// ModeDeep composes query optimization, search-augmented research and
	// output structuring.
	ModeDeep ResearchMode = "deep"

	// ModeStandard makes a single search-augmented call.
	ModeStandard ResearchMode = "standard"
)

// ResearchSummary is the result of one pipeline run. It is created once and
// not modified afterwards, except for ID which the store assigns on save.
type ResearchSummary struct {
	// ID is assigned by the store; zero until the summary has been saved.
	ID int64 `json:"id" yaml:"id"`

	// Topic is the caller's original input.
	Topic string `json:"topic" yaml:"topic"`

	// Query is the search query actually sent to the answering service.
	Query string `json:"query,omitempty" yaml:"query,omitempty"`

	// Title is the structured title, or "Research on {topic}" when structuring
	// was skipped or failed.
	Title string `json:"title" yaml:"title"`

	// Content is the body with embedded [n] markers into Citations.
	Content string `json:"content" yaml:"content"`

	// Citations is the ordered, deduplicated reference list owned by this summary.
	Citations []Citation `json:"citations" yaml:"citations"`

	// Reasoning holds any reasoning trace the answering model embedded in its
	// response. It is never part of Content and never cited.
	Reasoning string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`

	// ModelUsed is the provenance tag naming the capability composition.
	ModelUsed string `json:"modelUsed" yaml:"model_used"`

	// Mode records whether the deep or standard pipeline ran.
	Mode ResearchMode `json:"mode" yaml:"mode"`

	// Degraded lists the stages that fell back instead of completing.
	Degraded []Stage `json:"degraded,omitempty" yaml:"degraded,omitempty"`

	// CreatedAt is when the pipeline run finished.
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// IsDegraded reports whether any stage fell back during the run.
func (s *ResearchSummary) IsDegraded() bool {
	return len(s.Degraded) > 0
}
