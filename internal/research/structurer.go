// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// StructureInput is what the formatting call sees.
type StructureInput struct {
	Topic     string
	Query     string
	Content   string
	Citations []types.Citation
}

// StructuredOutput is the formatted title and body. On failure Structured
// is false, Title is the synthetic fallback and Content is the input content.
type StructuredOutput struct {
	Title      string
	Content    string
	Structured bool
	Err        error
}

// Structurer reformats research content into a titled review with one chat
// call constrained to the supplied citation list.
type Structurer struct {
	chat llm.ChatCompleter
	opts llm.ChatOptions
	log  *zap.Logger
}

// NewStructurer returns a structurer that calls chat with opts.
func NewStructurer(chat llm.ChatCompleter, opts llm.ChatOptions, log *zap.Logger) *Structurer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Structurer{chat: chat, opts: opts, log: log}
}

// FallbackTitle is the title used when the model supplies none.
func FallbackTitle(topic string) string {
	return "Research on " + topic
}

// Structure formats in. It never fails: any error falls back to the input
// content under FallbackTitle.
func (s *Structurer) Structure(ctx context.Context, in StructureInput) StructuredOutput {
	fallback := func(err error) StructuredOutput {
		s.log.Warn("structuring failed, returning unstructured content", zap.Error(err))
		return StructuredOutput{
			Title:   FallbackTitle(in.Topic),
			Content: in.Content,
			Err:     fmt.Errorf("structuring output: %w", err),
		}
	}

	system, err := render(structurerSystemTmpl, structurerSystemData{N: len(in.Citations)})
	if err != nil {
		return fallback(fmt.Errorf("rendering prompt: %w", err))
	}
	user, err := render(structurerUserTmpl, structurerUserData{
		Topic:      in.Topic,
		Query:      in.Query,
		Content:    in.Content,
		References: citation.Enumerate(in.Citations),
	})
	if err != nil {
		return fallback(fmt.Errorf("rendering prompt: %w", err))
	}

	raw, err := s.chat.Complete(ctx, system, user, s.opts)
	if err != nil {
		return fallback(err)
	}

	raw, _ = SplitReasoning(raw)
	title, body := parseTitle(raw)
	body = stripReferences(body)
	if strings.TrimSpace(body) == "" {
		return fallback(llm.ErrEmptyResponse)
	}
	if title == "" {
		title = FallbackTitle(in.Topic)
	}
	return StructuredOutput{Title: title, Content: body, Structured: true}
}

var (
	// markdownTitleRe matches "# Title" (any heading level).
	markdownTitleRe = regexp.MustCompile(`^#{1,6}\s+(.+?)\s*#*$`)

	// labelTitleRe matches "Title: ..." with optional emphasis.
	labelTitleRe = regexp.MustCompile(`(?i)^\**title\**\s*:\s*\**\s*(.+?)\s*\**$`)

	// boldTitleRe matches a line that is entirely bold: "**Title**".
	boldTitleRe = regexp.MustCompile(`^\*\*([^*]+)\*\*$`)

	// referencesHeadingRe matches a references-style section heading, either
	// as a Markdown heading, a bold line or a bare label.
	referencesHeadingRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\**\s*(?:references|sources|bibliography|works cited|citations)\s*:?\s*\**\s*:?\s*$`)
)

// parseTitle takes the title from the first non-blank line when it is
// heading-like, and returns the rest as the body. When the first line is
// not a heading the title is empty and the whole text is the body.
func parseTitle(raw string) (title, body string) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) == 0 {
		return "", ""
	}

	first := strings.TrimSpace(lines[0])
	for _, re := range []*regexp.Regexp{markdownTitleRe, labelTitleRe, boldTitleRe} {
		if m := re.FindStringSubmatch(first); m != nil {
			title = strings.TrimSpace(m[1])
			break
		}
	}
	if title == "" {
		return "", strings.TrimSpace(raw)
	}
	return title, strings.TrimSpace(strings.Join(lines[1:], "\n"))
}

// stripReferences removes a trailing references section: everything from
// the last references-style heading to the end of the text.
func stripReferences(body string) string {
	lines := strings.Split(body, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if referencesHeadingRe.MatchString(lines[i]) {
			return strings.TrimSpace(strings.Join(lines[:i], "\n"))
		}
	}
	return body
}
