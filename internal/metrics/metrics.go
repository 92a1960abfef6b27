// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics declares the Prometheus collectors for research runs,
// upstream calls and progress subscribers. They register with the default
// registry and are served by the HTTP API at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Run metrics
	RunsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_started_total",
			Help: "Total number of research runs started",
		},
		[]string{"mode"},
	)

	RunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_runs_completed_total",
			Help: "Total number of research runs finished",
		},
		[]string{"mode", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_run_duration_seconds",
			Help:    "Research run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"mode"},
	)

	// Stage metrics
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "research_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 600},
		},
		[]string{"stage"},
	)

	StageFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "research_stage_fallbacks_total",
			Help: "Total number of stages that degraded to their fallback",
		},
		[]string{"stage"},
	)

	// Citation metrics
	CitationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "research_citations_returned",
			Help:    "Number of citations in a finished summary",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CitationsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_citations_deduplicated_total",
			Help: "Total number of duplicate citations removed",
		},
	)

	// Progress metrics
	ProgressSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "research_progress_subscribers",
			Help: "Number of open progress subscriptions",
		},
	)

	ProgressEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "research_progress_events_dropped_total",
			Help: "Total number of progress events dropped for slow subscribers",
		},
	)
)

// RecordStage observes the duration of one pipeline stage.
func RecordStage(stage string, d time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records a finished run's outcome and duration.
func RecordRun(mode, status string, d time.Duration) {
	RunsCompleted.WithLabelValues(mode, status).Inc()
	RunDuration.WithLabelValues(mode).Observe(d.Seconds())
}
