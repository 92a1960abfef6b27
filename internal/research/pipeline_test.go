// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/pkg/types"
)

const topic = "climate change adaptation"

var testModels = Models{Chat: "gpt-4o", Search: "sonar-pro", DeepSearch: "sonar-deep-research"}

var testResearchConfig = types.ResearchConfig{
	MaxTokens:         2000,
	DeepMaxTokens:     8000,
	Temperature:       0.2,
	QueryMaxTokens:    300,
	FormatMaxTokens:   4000,
	FormatTemperature: 0.3,
}

func newTestPipeline(chat llm.ChatCompleter, search llm.Answerer, rec *recorder) *Pipeline {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return New(chat, search, rec, testModels, testResearchConfig,
		WithClock(func() time.Time { return fixed }),
		WithRunIDs(func() string { return "run-1" }),
	)
}

func okAnswer(content string, urls ...string) *mockAnswerer {
	return &mockAnswerer{answer: llm.Answer{Content: content, CitationURLs: urls}}
}

func TestRunDeepResearch_Success(t *testing.T) {
	chat := &mockChat{
		optimizeOut: "adaptation strategies resilience vulnerability",
		formatOut:   "# Adapting to Climate Change\n\nStrategies matter [1]. Finance lags [2].",
	}
	search := okAnswer("<think>plan</think>Strategies matter [1]. Finance lags [2].",
		"https://arxiv.org/abs/2301.07041", "https://www.nature.com/articles/s41558-020-0001-1")
	rec := &recorder{}

	got, err := newTestPipeline(chat, search, rec).RunDeepResearch(context.Background(), topic, types.ResearchOptions{UseDeepResearch: true})
	require.NoError(t, err)

	assert.Equal(t, "Adapting to Climate Change", got.Title)
	assert.Equal(t, "Strategies matter [1]. Finance lags [2].", got.Content)
	assert.Len(t, got.Citations, 2)
	assert.Equal(t, "arXiv", got.Citations[0].Authors)
	assert.Equal(t, "plan", got.Reasoning)
	assert.Equal(t, "sonar-deep-research+gpt-4o", got.ModelUsed)
	assert.Equal(t, types.ModeDeep, got.Mode)
	assert.Equal(t, topic, got.Topic)
	assert.Equal(t, "adaptation strategies resilience vulnerability", got.Query)
	assert.False(t, got.IsDegraded())

	require.Len(t, search.queries, 1)
	assert.Equal(t, "adaptation strategies resilience vulnerability", search.queries[0])
	assert.Equal(t, "sonar-deep-research", search.opts[0].Model)
	assert.Equal(t, 8000, search.opts[0].MaxTokens)

	assert.Equal(t, []types.Stage{
		types.StageStarting, types.StageQueryGeneration, types.StageQueryComplete,
		types.StageResearch, types.StageResearchComplete, types.StageFormatting, types.StageComplete,
	}, rec.stages())

	want := []int{0, 10, 30, 40, 70, 80, 100}
	for i, e := range rec.events {
		assert.Equal(t, want[i], e.Progress, "event %d (%s)", i, e.Stage)
		assert.Equal(t, "run-1", e.RunID)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestRunDeepResearch_OptimizerFailureFallsBackToTopic(t *testing.T) {
	chat := &mockChat{
		optimizeErr: errors.New("dial tcp: i/o timeout"),
		formatOut:   "# T\n\nBody [1].",
	}
	search := okAnswer("Body [1].", "https://a.org/x")
	rec := &recorder{}

	got, err := newTestPipeline(chat, search, rec).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)

	require.Len(t, search.queries, 1)
	assert.Equal(t, topic, search.queries[0])
	assert.Equal(t, topic, got.Query)
	assert.Equal(t, []types.Stage{types.StageQueryGeneration}, got.Degraded)
	assert.Equal(t, types.StageComplete, rec.last().Stage)
}

func TestRunDeepResearch_StructurerFailureKeepsRawContent(t *testing.T) {
	chat := &mockChat{
		optimizeOut: "q",
		formatErr:   errors.New("connection reset by peer"),
	}
	search := okAnswer("Raw research content [1].", "https://a.org/x")
	rec := &recorder{}

	got, err := newTestPipeline(chat, search, rec).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Raw research content [1].", got.Content)
	assert.Equal(t, "Research on "+topic, got.Title)
	assert.Equal(t, []types.Stage{types.StageFormatting}, got.Degraded)
	assert.Equal(t, 100, rec.last().Progress)
}

func TestRunDeepResearch_ExecutorFailureIsFatal(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatOut: "# T\nB"}
	search := &mockAnswerer{err: errors.New("dial tcp: connection refused")}
	rec := &recorder{}

	got, err := newTestPipeline(chat, search, rec).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.Error(t, err)
	assert.Nil(t, got)

	var perr *PipelineError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "run-1", perr.RunID)
	assert.True(t, strings.HasPrefix(err.Error(), "deep research agent failure: "), err.Error())
	assert.Contains(t, err.Error(), "connection refused")

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, types.StageResearch, se.Stage)

	last := rec.last()
	assert.Equal(t, types.StageError, last.Stage)
	assert.Equal(t, types.ProgressError, last.Progress)
	assert.Equal(t, err.Error(), last.Message)
	assert.NotContains(t, rec.stages(), types.StageFormatting)

	_, called := chat.formatCall()
	assert.False(t, called)
}

func TestRunDeepResearch_DuplicateSources(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatErr: errors.New("skip formatting")}
	search := okAnswer("Adaptation strategies are critical [1][2].", "https://a.org/x", "https://a.org/x")

	got, err := newTestPipeline(chat, search, &recorder{}).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)

	assert.Len(t, got.Citations, 1)
	assert.Equal(t, "Adaptation strategies are critical [1][1].", got.Content)
}

func TestRunDeepResearch_NoSources(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatOut: "# Adaptation\n\nFindings without sources [1] [2]."}
	search := okAnswer("Findings without sources [3].")

	got, err := newTestPipeline(chat, search, &recorder{}).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)

	require.Len(t, got.Citations, 1)
	assert.True(t, citation.IsSentinel(got.Citations[0]))
	assert.Equal(t, "Findings without sources [1].", got.Content)

	call, ok := chat.formatCall()
	require.True(t, ok)
	prompt := call.System + call.User
	assert.Contains(t, prompt, "[1]")
	assert.NotContains(t, prompt, "[2]")
	assert.NotContains(t, prompt, "[3]")
}

func TestRunDeepResearch_OptionOverrides(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatOut: "# T\nB [1]"}
	search := okAnswer("B [1]", "https://a.org/x")

	_, err := newTestPipeline(chat, search, &recorder{}).RunDeepResearch(context.Background(), topic, types.ResearchOptions{
		MaxTokens:     1234,
		SearchDomains: []string{"nature.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1234, search.opts[0].MaxTokens)
	assert.Equal(t, []string{"nature.com"}, search.opts[0].DomainFilter)
	assert.InDelta(t, 0.2, search.opts[0].Temperature, 1e-9)
}

func TestRunStandard(t *testing.T) {
	chat := &mockChat{}
	search := okAnswer("Direct answer [1][2].", "https://a.org/x", "https://b.org/y")
	rec := &recorder{}

	got, err := newTestPipeline(chat, search, rec).Run(context.Background(), topic, types.ResearchOptions{UseDeepResearch: false})
	require.NoError(t, err)

	assert.Empty(t, chat.calls)
	assert.Equal(t, topic, search.queries[0])
	assert.Equal(t, "sonar-pro", search.opts[0].Model)
	assert.Equal(t, 2000, search.opts[0].MaxTokens)

	assert.Equal(t, "sonar-pro", got.ModelUsed)
	assert.Equal(t, types.ModeStandard, got.Mode)
	assert.Equal(t, "Research on "+topic, got.Title)
	assert.Equal(t, "Direct answer [1][2].", got.Content)
	assert.Equal(t, []types.Stage{
		types.StageStarting, types.StageResearch, types.StageResearchComplete, types.StageComplete,
	}, rec.stages())
}

func TestRun_DispatchesDeep(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatOut: "# T\nB"}
	search := okAnswer("B")

	got, err := newTestPipeline(chat, search, &recorder{}).Run(context.Background(), topic, types.ResearchOptions{UseDeepResearch: true})
	require.NoError(t, err)
	assert.Equal(t, types.ModeDeep, got.Mode)
}

// Every marker in a finished summary points into its citation list, and the
// list holds exactly the unique sources.
func TestRunDeepResearch_MarkersAlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pool := []string{"https://a.org/x", "https://b.org/y", "https://www.a.org/x/", "https://c.org/z", "not a url"}

	for iter := 0; iter < 100; iter++ {
		n := rng.Intn(5)
		urls := make([]string, n)
		for i := range urls {
			urls[i] = pool[rng.Intn(len(pool))]
		}
		var b strings.Builder
		for i := 0; i < 6; i++ {
			fmt.Fprintf(&b, "Claim %d [%d]. ", i, rng.Intn(n+3))
		}
		body := b.String()

		chat := &mockChat{optimizeOut: "q", formatErr: errors.New("skip")}
		if iter%2 == 0 {
			chat = &mockChat{optimizeOut: "q", formatOut: "# T\n" + body + " [9]"}
		}
		got, err := newTestPipeline(chat, okAnswer(body, urls...), &recorder{}).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
		require.NoError(t, err)

		require.NotEmpty(t, got.Citations)
		for _, m := range citation.Markers(got.Content) {
			assert.GreaterOrEqual(t, m, 1, "iteration %d", iter)
			assert.LessOrEqual(t, m, len(got.Citations), "iteration %d", iter)
		}

		unique := citation.Deduplicate(got.Citations, got.Content)
		assert.Equal(t, got.Citations, unique.Citations, "iteration %d: duplicates survived", iter)
	}
}

func TestRunDeepResearch_DropsUnparseableMarker(t *testing.T) {
	chat := &mockChat{optimizeOut: "q", formatErr: errors.New("skip formatting")}
	search := okAnswer("Claim [1]. Other [99999999999999999999].", "https://a.org/x")

	got, err := newTestPipeline(chat, search, &recorder{}).RunDeepResearch(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)

	require.Len(t, got.Citations, 1)
	assert.Equal(t, "Claim [1]. Other.", got.Content)
	assert.NotContains(t, got.Content, "99999999999999999999")
}

func TestNew_NilBroadcaster(t *testing.T) {
	p := New(&mockChat{}, okAnswer("B"), nil, testModels, testResearchConfig)
	_, err := p.RunStandard(context.Background(), topic, types.ResearchOptions{})
	require.NoError(t, err)
}
