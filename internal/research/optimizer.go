// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/llm"
)

// QueryResult is the outcome of the query rewrite. On failure Query holds
// the caller's input verbatim and Err carries the cause.
type QueryResult struct {
	Query     string
	Optimized bool
	Err       error
}

// QueryOptimizer turns free-form input into a search-optimized query with
// one chat call.
type QueryOptimizer struct {
	chat llm.ChatCompleter
	opts llm.ChatOptions
	log  *zap.Logger
}

// NewQueryOptimizer returns an optimizer that calls chat with opts.
func NewQueryOptimizer(chat llm.ChatCompleter, opts llm.ChatOptions, log *zap.Logger) *QueryOptimizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryOptimizer{chat: chat, opts: opts, log: log}
}

// Optimize rewrites input. It never fails: any error falls back to input.
func (o *QueryOptimizer) Optimize(ctx context.Context, input string) QueryResult {
	out, err := o.chat.Complete(ctx, optimizerSystemPrompt, input, o.opts)
	if err != nil {
		o.log.Warn("query optimization failed, using input as query", zap.Error(err))
		return QueryResult{Query: input, Err: fmt.Errorf("optimizing query: %w", err)}
	}

	query := cleanQuery(out)
	if query == "" {
		o.log.Warn("query optimization returned no text, using input as query")
		return QueryResult{Query: input, Err: fmt.Errorf("optimizing query: %w", llm.ErrEmptyResponse)}
	}
	return QueryResult{Query: query, Optimized: true}
}

// cleanQuery drops any reasoning trace, surrounding quotes and line breaks
// from a model-written query.
func cleanQuery(s string) string {
	s, _ = SplitReasoning(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, `"'“”`)
	return strings.TrimSpace(s)
}
