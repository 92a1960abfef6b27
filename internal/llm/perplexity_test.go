// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
)

func newPerplexityTestClient(t *testing.T, h http.HandlerFunc) *PerplexityClient {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &PerplexityClient{APIKey: "pplx", Model: "sonar-pro", BaseURL: ts.URL, Client: ts.Client()}
}

func TestPerplexity_Answer(t *testing.T) {
	var got perplexityRequest
	c := newPerplexityTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer pplx", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"model":"sonar-deep-research",
			"choices":[{"message":{"content":"Finding [1]. Another [2]."}}],
			"citations":["https://arxiv.org/abs/2301.07041","https://nature.com/x"]}`))
	})

	ans, err := c.Answer(context.Background(), "q", AnswerOptions{
		Model:        "sonar-deep-research",
		MaxTokens:    8000,
		Temperature:  0.1,
		DomainFilter: []string{"arxiv.org"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Finding [1]. Another [2].", ans.Content)
	assert.Equal(t, []string{"https://arxiv.org/abs/2301.07041", "https://nature.com/x"}, ans.CitationURLs)
	assert.Equal(t, "sonar-deep-research", ans.Model)

	assert.Equal(t, "sonar-deep-research", got.Model)
	assert.Equal(t, 8000, got.MaxTokens)
	assert.Equal(t, []string{"arxiv.org"}, got.SearchDomainFilter)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "q", got.Messages[1].Content)
}

func TestPerplexity_SearchResultsFallback(t *testing.T) {
	c := newPerplexityTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"A [1]"}}],
			"search_results":[{"title":"T","url":"https://a.org/x"},{"title":"no url"},{"url":"https://b.org/y"}]}`))
	})

	ans, err := c.Answer(context.Background(), "q", AnswerOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.org/x", "https://b.org/y"}, ans.CitationURLs)
	assert.Equal(t, "sonar-pro", ans.Model)
}

func TestPerplexity_NoRetry(t *testing.T) {
	var calls int32
	c := newPerplexityTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := c.Answer(context.Background(), "q", AnswerOptions{})
	var apiErr *httputil.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.RateLimited())
	assert.Equal(t, "rate limited", apiErr.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPerplexity_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"not json", `<html>`, ErrMalformedResponse},
		{"no choices", `{"choices":[]}`, ErrMalformedResponse},
		{"empty content", `{"choices":[{"message":{"content":"  "}}]}`, ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newPerplexityTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})
			_, err := c.Answer(context.Background(), "q", AnswerOptions{})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
