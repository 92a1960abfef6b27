// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm holds the two external AI capabilities the research pipeline
// depends on: chat completion (query rewriting and output structuring) and
// search-augmented answering (the research call that returns source URLs).
//
// Callers depend on the ChatCompleter and Answerer interfaces so tests can
// supply mocks. Each implementation wraps non-2xx responses in an
// *httputil.APIError.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

var (
	// ErrEmptyResponse is returned when a provider answers 2xx with no text.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response from model")
)

const (
	// DefaultChatTimeout bounds a single chat-completion call.
	DefaultChatTimeout = 2 * time.Minute

	// DefaultSearchTimeout bounds a single search-augmented call. Deep
	// research models routinely take several minutes.
	DefaultSearchTimeout = 10 * time.Minute
)

// ChatOptions configures one chat-completion call.
type ChatOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// ChatCompleter sends one system+user exchange and returns the reply text.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string, opts ChatOptions) (string, error)
}

// AnswerOptions configures one search-augmented call.
type AnswerOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64

	// DomainFilter restricts the sources the service may cite.
	DomainFilter []string
}

// Answer is the reply of a search-augmented call: answer text with inline
// [n] markers and the ordered source URLs those markers refer to.
type Answer struct {
	Content      string
	CitationURLs []string
	Model        string
}

// Answerer performs one search-augmented call. Implementations never retry.
type Answerer interface {
	Answer(ctx context.Context, query string, opts AnswerOptions) (Answer, error)
}

// NewChat builds the chat capability selected by cfg.Provider.
func NewChat(cfg types.ChatConfig, log *zap.Logger) (ChatCompleter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat provider %q: missing API key", cfg.Provider)
	}
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAIChat(cfg.AIConfig, log), nil
	case types.ProviderAnthropic:
		return NewClaudeChat(cfg.AIConfig, log), nil
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Provider)
	}
}

// NewAnswerer builds the search-augmented capability.
func NewAnswerer(cfg types.SearchConfig, log *zap.Logger) (Answerer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search provider: missing API key")
	}
	return NewPerplexity(cfg.AIConfig, log), nil
}

func timeoutOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
