// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func newOpenAITestChat(t *testing.T, h http.HandlerFunc) *OpenAIChat {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewOpenAIChat(types.AIConfig{APIKey: "sk-test", Model: "gpt-4o", BaseURL: ts.URL + "/"}, nil)
}

func TestOpenAIChat_Complete(t *testing.T) {
	var body map[string]any
	c := newOpenAITestChat(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Urban heat island mitigation literature"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`))
	})

	out, err := c.Complete(context.Background(), "sys", "urban heat", ChatOptions{MaxTokens: 200, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Urban heat island mitigation literature", out)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.Equal(t, float64(200), body["max_tokens"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "urban heat", msgs[1].(map[string]any)["content"])
}

func TestOpenAIChat_ModelOverride(t *testing.T) {
	var body map[string]any
	c := newOpenAITestChat(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"x"}}]}`))
	})

	_, err := c.Complete(context.Background(), "s", "u", ChatOptions{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", body["model"])
	assert.NotContains(t, body, "max_tokens")
}

func TestOpenAIChat_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		c := newOpenAITestChat(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"bad model","type":"invalid_request_error"}}`))
		})
		_, err := c.Complete(context.Background(), "s", "u", ChatOptions{})
		var apiErr *httputil.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "openai", apiErr.Provider)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	})

	t.Run("no choices", func(t *testing.T) {
		c := newOpenAITestChat(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[]}`))
		})
		_, err := c.Complete(context.Background(), "s", "u", ChatOptions{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("blank content", func(t *testing.T) {
		c := newOpenAITestChat(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  "}}]}`))
		})
		_, err := c.Complete(context.Background(), "s", "u", ChatOptions{})
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}
