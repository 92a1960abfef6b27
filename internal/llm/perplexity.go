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

// perplexityBaseURL is the search-augmented API root. Package-level var for
// test substitution.
var perplexityBaseURL = "https://api.perplexity.ai"

// perplexitySystemPrompt asks for inline numeric markers that index the
// citations array of the response.
const perplexitySystemPrompt = "You are a research assistant. Answer with a thorough, well-organized synthesis of the current literature. " +
	"Cite sources inline with bracketed numbers like [1] that refer to the order of the sources you used."

// PerplexityClient implements Answerer with an OpenAI-compatible
// /chat/completions endpoint that also returns the URLs it searched.
// It never retries: a repeated deep research call is slow and billed again.
type PerplexityClient struct {
	APIKey    string
	Model     string
	UserAgent string
	BaseURL   string
	Client    *http.Client

	log *zap.Logger
}

// NewPerplexity builds a client from cfg with a long request timeout.
func NewPerplexity(cfg types.AIConfig, log *zap.Logger) *PerplexityClient {
	return &PerplexityClient{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		UserAgent: cfg.UserAgent,
		BaseURL:   cfg.BaseURL,
		Client:    &http.Client{Timeout: timeoutOr(cfg.Timeout, DefaultSearchTimeout)},
		log:       orNop(log),
	}
}

type perplexityRequest struct {
	Model              string              `json:"model"`
	Messages           []perplexityMessage `json:"messages"`
	MaxTokens          int                 `json:"max_tokens,omitempty"`
	Temperature        float64             `json:"temperature"`
	SearchDomainFilter []string            `json:"search_domain_filter,omitempty"`
}

type perplexityMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type perplexityResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Citations     []string `json:"citations"`
	SearchResults []struct {
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"search_results"`
}

// Answer performs exactly one search-augmented call.
func (c *PerplexityClient) Answer(ctx context.Context, query string, opts AnswerOptions) (Answer, error) {
	model := opts.Model
	if model == "" {
		model = c.Model
	}

	body, err := json.Marshal(perplexityRequest{
		Model: model,
		Messages: []perplexityMessage{
			{Role: "system", Content: perplexitySystemPrompt},
			{Role: "user", Content: query},
		},
		MaxTokens:          opts.MaxTokens,
		Temperature:        opts.Temperature,
		SearchDomainFilter: opts.DomainFilter,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("marshaling request: %w", err)
	}

	base := c.BaseURL
	if base == "" {
		base = perplexityBaseURL
	}
	endpoint := strings.TrimSuffix(base, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Answer{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return Answer{}, fmt.Errorf("calling search API: %w", err)
	}
	defer resp.Body.Close()

	if err := httputil.CheckResponse("perplexity", resp); err != nil {
		return Answer{}, err
	}

	var pResp perplexityResponse
	if err := json.NewDecoder(resp.Body).Decode(&pResp); err != nil {
		return Answer{}, fmt.Errorf("decoding search response: %w: %w", ErrMalformedResponse, err)
	}
	if len(pResp.Choices) == 0 {
		return Answer{}, fmt.Errorf("search response has no choices: %w", ErrMalformedResponse)
	}
	content := pResp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return Answer{}, fmt.Errorf("search: %w", ErrEmptyResponse)
	}

	urls := pResp.Citations
	if len(urls) == 0 {
		for _, r := range pResp.SearchResults {
			if r.URL != "" {
				urls = append(urls, r.URL)
			}
		}
	}

	if pResp.Model != "" {
		model = pResp.Model
	}
	c.log.Debug("search answer",
		zap.String("model", model),
		zap.Int("content_len", len(content)),
		zap.Int("sources", len(urls)))
	return Answer{Content: content, CitationURLs: urls, Model: model}, nil
}
