// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"sync"

	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// --- mock capabilities ---

type chatCall struct {
	System string
	User   string
	Opts   llm.ChatOptions
}

// mockChat answers the query rewrite and the formatting call separately,
// telling them apart by the system prompt.
type mockChat struct {
	mu sync.Mutex

	optimizeOut string
	optimizeErr error
	formatOut   string
	formatErr   error

	calls []chatCall
}

func (m *mockChat) Complete(_ context.Context, system, user string, opts llm.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, chatCall{System: system, User: user, Opts: opts})
	if system == optimizerSystemPrompt {
		return m.optimizeOut, m.optimizeErr
	}
	return m.formatOut, m.formatErr
}

func (m *mockChat) formatCall() (chatCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c.System != optimizerSystemPrompt {
			return c, true
		}
	}
	return chatCall{}, false
}

type mockAnswerer struct {
	answer llm.Answer
	err    error

	queries []string
	opts    []llm.AnswerOptions
}

func (m *mockAnswerer) Answer(_ context.Context, query string, opts llm.AnswerOptions) (llm.Answer, error) {
	m.queries = append(m.queries, query)
	m.opts = append(m.opts, opts)
	return m.answer, m.err
}

// recorder is a Broadcaster that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []types.ProgressEvent
}

func (r *recorder) Publish(e types.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) stages() []types.Stage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.Stage, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}

func (r *recorder) last() types.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}
