// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// OpenAIChat implements ChatCompleter with the OpenAI chat completions API.
type OpenAIChat struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewOpenAIChat builds a client from cfg. BaseURL points it at any
// OpenAI-compatible endpoint.
func NewOpenAIChat(cfg types.AIConfig, log *zap.Logger) *OpenAIChat {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeoutOr(cfg.Timeout, DefaultChatTimeout)}),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, option.WithHeader("User-Agent", cfg.UserAgent))
	}

	client := openai.NewClient(opts...)
	return &OpenAIChat{client: &client, model: cfg.Model, log: orNop(log)}
}

// Complete sends the system and user messages and returns the first choice.
func (c *OpenAIChat) Complete(ctx context.Context, system, user string, opts ChatOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = apiErr.Error()
			}
			return "", &httputil.APIError{Provider: "openai", StatusCode: apiErr.StatusCode, Message: msg}
		}
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices: %w", ErrEmptyResponse)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}

	c.log.Debug("chat completion",
		zap.String("provider", "openai"),
		zap.String("model", model),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens))
	return text, nil
}
