// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestExecutor_Execute(t *testing.T) {
	a := &mockAnswerer{answer: llm.Answer{
		Content:      "<think>compare the sources</think>Heat islands raise night temperatures [1].",
		CitationURLs: []string{"https://a.org/x"},
	}}
	e := NewExecutor(a, nil)

	f, err := e.Execute(context.Background(), "urban heat", llm.AnswerOptions{Model: "sonar-pro", DomainFilter: []string{"a.org"}})
	require.NoError(t, err)

	assert.Equal(t, "Heat islands raise night temperatures [1].", f.Content)
	assert.Equal(t, "compare the sources", f.Reasoning)
	assert.Equal(t, []string{"https://a.org/x"}, f.CitationURLs)
	assert.Equal(t, "sonar-pro", f.Model)
	require.Len(t, a.queries, 1)
	assert.Equal(t, "urban heat", a.queries[0])
	assert.Equal(t, []string{"a.org"}, a.opts[0].DomainFilter)
}

func TestExecutor_Errors(t *testing.T) {
	t.Run("upstream error keeps status", func(t *testing.T) {
		upstream := &httputil.APIError{Provider: "perplexity", StatusCode: http.StatusBadGateway, Message: "bad gateway"}
		e := NewExecutor(&mockAnswerer{err: upstream}, nil)

		_, err := e.Execute(context.Background(), "q", llm.AnswerOptions{})
		var se *StageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, types.StageResearch, se.Stage)

		var apiErr *httputil.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Contains(t, err.Error(), "bad gateway")
	})

	t.Run("trace only is empty", func(t *testing.T) {
		e := NewExecutor(&mockAnswerer{answer: llm.Answer{Content: "<think>only this"}}, nil)
		_, err := e.Execute(context.Background(), "q", llm.AnswerOptions{})
		assert.ErrorIs(t, err, llm.ErrEmptyResponse)
	})
}
