// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// ClaudeChat implements ChatCompleter with the Claude Messages API.
type ClaudeChat struct {
	APIKey     string
	Model      string
	UserAgent  string
	MaxRetries int
	Client     *http.Client

	url string
	log *zap.Logger
}

// NewClaudeChat builds a client from cfg.
func NewClaudeChat(cfg types.AIConfig, log *zap.Logger) *ClaudeChat {
	return &ClaudeChat{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		Client:     &http.Client{Timeout: timeoutOr(cfg.Timeout, DefaultChatTimeout)},
		url:        cfg.BaseURL,
		log:        orNop(log),
	}
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Model   string          `json:"model"`
	Content []claudeContent `json:"content"`
	Usage   struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete calls the Messages API, retrying on HTTP 429, and joins the text
// blocks of the reply.
func (c *ClaudeChat) Complete(ctx context.Context, system, user string, opts ChatOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.Model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	body, err := json.Marshal(claudeRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: opts.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := claudeAPIURL
	if c.url != "" {
		endpoint = strings.TrimSuffix(c.url, "/") + "/v1/messages"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries, c.log)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse("anthropic", resp); err != nil {
		return "", err
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w: %w", ErrMalformedResponse, err)
	}

	var parts []string
	for _, block := range cResp.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, ""))
	if text == "" {
		return "", fmt.Errorf("claude: %w", ErrEmptyResponse)
	}

	c.log.Debug("chat completion",
		zap.String("provider", "anthropic"),
		zap.String("model", model),
		zap.Int("completion_tokens", cResp.Usage.OutputTokens))
	return text, nil
}
