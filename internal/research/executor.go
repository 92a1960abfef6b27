// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Findings is the trace-free output of the research call.
type Findings struct {
	Content      string
	Reasoning    string
	CitationURLs []string
	Model        string
}

// Executor makes the single search-augmented research call of a run.
type Executor struct {
	answerer llm.Answerer
	log      *zap.Logger
}

// NewExecutor returns an executor backed by answerer.
func NewExecutor(answerer llm.Answerer, log *zap.Logger) *Executor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Executor{answerer: answerer, log: log}
}

// Execute calls the answering service once with query. Every failure is
// returned as a *StageError for the research stage; there is no fallback.
func (e *Executor) Execute(ctx context.Context, query string, opts llm.AnswerOptions) (Findings, error) {
	ans, err := e.answerer.Answer(ctx, query, opts)
	if err != nil {
		return Findings{}, &StageError{Stage: types.StageResearch, Err: err}
	}

	content, reasoning := SplitReasoning(ans.Content)
	if strings.TrimSpace(content) == "" {
		return Findings{}, &StageError{
			Stage: types.StageResearch,
			Err:   fmt.Errorf("answer has no content outside the reasoning trace: %w", llm.ErrEmptyResponse),
		}
	}

	if reasoning != "" {
		e.log.Debug("separated reasoning trace", zap.Int("reasoning_len", len(reasoning)))
	}

	model := ans.Model
	if model == "" {
		model = opts.Model
	}
	return Findings{
		Content:      content,
		Reasoning:    reasoning,
		CitationURLs: ans.CitationURLs,
		Model:        model,
	}, nil
}
