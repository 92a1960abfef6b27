// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research runs the citation-aware research pipeline: rewrite the
// request into a search query, make one search-augmented research call,
// reconcile the returned citations with the in-text markers, and reformat
// the result into a titled review.
//
// Only the research call can fail a run. The query rewrite and the
// formatting call degrade to their inputs, and the summary records which
// stages degraded.
package research

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/internal/citation"
	"github.com/pdiddy/research-assistant/internal/llm"
	"github.com/pdiddy/research-assistant/internal/metrics"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// Broadcaster receives the progress events of every run.
type Broadcaster interface {
	Publish(event types.ProgressEvent)
}

// Models names the models used by each stage. Chat is used by the query
// rewrite and the formatting call.
type Models struct {
	Chat       string
	Search     string
	DeepSearch string
}

// Pipeline runs research requests. A Pipeline is safe for concurrent use;
// runs share nothing but the broadcaster.
type Pipeline struct {
	optimizer   *QueryOptimizer
	executor    *Executor
	structurer  *Structurer
	broadcaster Broadcaster
	models      Models
	cfg         types.ResearchConfig
	log         *zap.Logger

	now      func() time.Time
	newRunID func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger.
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunIDs replaces the uuid run id generator.
func WithRunIDs(gen func() string) Option {
	return func(p *Pipeline) { p.newRunID = gen }
}

// New builds a pipeline from the two capabilities. A nil broadcaster
// discards events.
func New(chat llm.ChatCompleter, search llm.Answerer, b Broadcaster, models Models, cfg types.ResearchConfig, opts ...Option) *Pipeline {
	p := &Pipeline{
		broadcaster: b,
		models:      models,
		cfg:         cfg,
		log:         zap.NewNop(),
		now:         time.Now,
		newRunID:    func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(p)
	}
	if p.broadcaster == nil {
		p.broadcaster = discard{}
	}

	p.optimizer = NewQueryOptimizer(chat, llm.ChatOptions{
		Model:       models.Chat,
		MaxTokens:   cfg.QueryMaxTokens,
		Temperature: cfg.QueryTemperature,
	}, p.log)
	p.executor = NewExecutor(search, p.log)
	p.structurer = NewStructurer(chat, llm.ChatOptions{
		Model:       models.Chat,
		MaxTokens:   cfg.FormatMaxTokens,
		Temperature: cfg.FormatTemperature,
	}, p.log)
	return p
}

type discard struct{}

func (discard) Publish(types.ProgressEvent) {}

// Run dispatches on opts.UseDeepResearch. The topic and options must
// already be validated.
func (p *Pipeline) Run(ctx context.Context, topic string, opts types.ResearchOptions) (*types.ResearchSummary, error) {
	if opts.UseDeepResearch {
		return p.RunDeepResearch(ctx, topic, opts)
	}
	return p.RunStandard(ctx, topic, opts)
}

// run carries per-run state for event emission.
type run struct {
	p     *Pipeline
	id    string
	mode  types.ResearchMode
	log   *zap.Logger
	start time.Time
}

func (p *Pipeline) newRun(mode types.ResearchMode) *run {
	id := p.newRunID()
	metrics.RunsStarted.WithLabelValues(string(mode)).Inc()
	return &run{
		p:     p,
		id:    id,
		mode:  mode,
		log:   p.log.With(zap.String("run_id", id), zap.String("mode", string(mode))),
		start: p.now(),
	}
}

func (r *run) emit(stage types.Stage, message string, data any) {
	r.p.broadcaster.Publish(types.ProgressEvent{
		RunID:     r.id,
		Stage:     stage,
		Message:   message,
		Progress:  stage.Progress(),
		Data:      data,
		Timestamp: r.p.now(),
	})
}

// fail publishes the error event and returns the fatal run error.
func (r *run) fail(err error) error {
	perr := &PipelineError{RunID: r.id, Err: err}
	r.emit(types.StageError, perr.Error(), nil)
	r.log.Error("research run failed", zap.Error(err))
	metrics.RecordRun(string(r.mode), "error", r.p.now().Sub(r.start))
	return perr
}

// timed runs fn and records its duration under stage.
func (r *run) timed(stage types.Stage, fn func()) {
	start := r.p.now()
	fn()
	metrics.RecordStage(string(stage), r.p.now().Sub(start))
}

// RunDeepResearch runs the full three-call pipeline: query rewrite, deep
// research call, citation reconciliation and formatting.
func (p *Pipeline) RunDeepResearch(ctx context.Context, topic string, opts types.ResearchOptions) (*types.ResearchSummary, error) {
	r := p.newRun(types.ModeDeep)
	var degraded []types.Stage

	r.emit(types.StageStarting, "Starting deep research", map[string]string{"topic": topic})

	r.emit(types.StageQueryGeneration, "Optimizing search query", nil)
	var qr QueryResult
	r.timed(types.StageQueryGeneration, func() { qr = p.optimizer.Optimize(ctx, topic) })
	if qr.Err != nil {
		degraded = append(degraded, types.StageQueryGeneration)
		metrics.StageFallbacks.WithLabelValues(string(types.StageQueryGeneration)).Inc()
	}
	r.emit(types.StageQueryComplete, "Search query ready", map[string]any{
		"query":     qr.Query,
		"optimized": qr.Optimized,
	})

	r.emit(types.StageResearch, "Researching sources", nil)
	var (
		findings Findings
		err      error
	)
	answerOpts := p.answerOptions(types.ModeDeep, opts)
	r.timed(types.StageResearch, func() { findings, err = p.executor.Execute(ctx, qr.Query, answerOpts) })
	if err != nil {
		return nil, r.fail(err)
	}

	rec := reconcile(findings)
	metrics.CitationsDeduplicated.Add(float64(rec.Removed))
	r.emit(types.StageResearchComplete, "Research complete", map[string]int{
		"citations": len(rec.Citations),
		"removed":   rec.Removed,
	})

	r.emit(types.StageFormatting, "Formatting results", nil)
	var out StructuredOutput
	r.timed(types.StageFormatting, func() {
		out = p.structurer.Structure(ctx, StructureInput{
			Topic:     topic,
			Query:     qr.Query,
			Content:   rec.Content,
			Citations: rec.Citations,
		})
	})
	if out.Err != nil {
		degraded = append(degraded, types.StageFormatting)
		metrics.StageFallbacks.WithLabelValues(string(types.StageFormatting)).Inc()
	}

	summary := &types.ResearchSummary{
		Topic:     topic,
		Query:     qr.Query,
		Title:     out.Title,
		Content:   citation.DropOutOfRange(out.Content, len(rec.Citations)),
		Citations: rec.Citations,
		Reasoning: findings.Reasoning,
		ModelUsed: deepProvenance(findings.Model, p.models.Chat),
		Mode:      types.ModeDeep,
		Degraded:  degraded,
		CreatedAt: p.now(),
	}
	return r.complete(summary), nil
}

// RunStandard makes a single research call with the standard model and
// reconciles its citations. There is no query rewrite and no formatting
// call.
func (p *Pipeline) RunStandard(ctx context.Context, topic string, opts types.ResearchOptions) (*types.ResearchSummary, error) {
	r := p.newRun(types.ModeStandard)

	r.emit(types.StageStarting, "Starting research", map[string]string{"topic": topic})
	r.emit(types.StageResearch, "Researching sources", nil)

	var (
		findings Findings
		err      error
	)
	answerOpts := p.answerOptions(types.ModeStandard, opts)
	r.timed(types.StageResearch, func() { findings, err = p.executor.Execute(ctx, topic, answerOpts) })
	if err != nil {
		return nil, r.fail(err)
	}

	rec := reconcile(findings)
	metrics.CitationsDeduplicated.Add(float64(rec.Removed))
	r.emit(types.StageResearchComplete, "Research complete", map[string]int{
		"citations": len(rec.Citations),
		"removed":   rec.Removed,
	})

	summary := &types.ResearchSummary{
		Topic:     topic,
		Query:     topic,
		Title:     FallbackTitle(topic),
		Content:   rec.Content,
		Citations: rec.Citations,
		Reasoning: findings.Reasoning,
		ModelUsed: findings.Model,
		Mode:      types.ModeStandard,
		CreatedAt: p.now(),
	}
	return r.complete(summary), nil
}

func (r *run) complete(summary *types.ResearchSummary) *types.ResearchSummary {
	elapsed := r.p.now().Sub(r.start)
	r.emit(types.StageComplete, "Research complete", map[string]any{
		"title":     summary.Title,
		"citations": len(summary.Citations),
	})
	metrics.CitationsReturned.Observe(float64(len(summary.Citations)))
	metrics.RecordRun(string(r.mode), "success", elapsed)

	r.log.Info("research run complete",
		zap.Int("citations", len(summary.Citations)),
		zap.Duration("elapsed", elapsed),
		zap.Any("degraded", summary.Degraded))
	return summary
}

// reconcile normalizes the source URLs, removes duplicate citations with
// their markers renumbered, and drops markers that point past the list.
func reconcile(f Findings) citation.Reconciled {
	cites := citation.Normalize(f.CitationURLs)
	rec := citation.Deduplicate(cites, f.Content)
	rec.Content = citation.DropOutOfRange(rec.Content, len(rec.Citations))
	return rec
}

// answerOptions resolves the research call options for mode, with caller
// overrides applied over configured defaults.
func (p *Pipeline) answerOptions(mode types.ResearchMode, opts types.ResearchOptions) llm.AnswerOptions {
	ao := llm.AnswerOptions{
		Model:        p.models.Search,
		MaxTokens:    p.cfg.MaxTokens,
		Temperature:  p.cfg.Temperature,
		DomainFilter: p.cfg.SearchDomains,
	}
	if mode == types.ModeDeep {
		if p.models.DeepSearch != "" {
			ao.Model = p.models.DeepSearch
		}
		if p.cfg.DeepMaxTokens > 0 {
			ao.MaxTokens = p.cfg.DeepMaxTokens
		}
	}
	if opts.MaxTokens > 0 {
		ao.MaxTokens = opts.MaxTokens
	}
	if len(opts.SearchDomains) > 0 {
		ao.DomainFilter = opts.SearchDomains
	}
	return ao
}

// deepProvenance labels a deep run with both models it combined.
func deepProvenance(searchModel, chatModel string) string {
	if chatModel == "" {
		return searchModel
	}
	return fmt.Sprintf("%s+%s", searchModel, chatModel)
}
