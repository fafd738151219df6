// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paper_reviewer"

// Stage and search outcome labels.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
)

// Metrics holds the Prometheus collectors for one process. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// StageRuns counts stage executions by stage and outcome.
	StageRuns *prometheus.CounterVec

	// StageDuration observes stage wall time in seconds.
	StageDuration *prometheus.HistogramVec

	// RunsHalted counts runs stopped before the last stage.
	RunsHalted prometheus.Counter

	// SourceSearches counts (query, source) units by source and outcome.
	SourceSearches *prometheus.CounterVec

	// SourceSearchDuration observes per-unit search time in seconds.
	SourceSearchDuration *prometheus.HistogramVec

	// CandidatesMerged counts candidates kept after deduplication.
	CandidatesMerged prometheus.Counter

	// DuplicatesRemoved counts candidates collapsed by deduplication.
	DuplicatesRemoved prometheus.Counter
}

// NewMetrics registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		StageRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by stage and outcome",
		}, []string{"stage", "outcome"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		RunsHalted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_halted_total",
			Help:      "Review runs halted before the final stage",
		}),
		SourceSearches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_searches_total",
			Help:      "Literature searches by source and outcome",
		}, []string{"source", "outcome"}),
		SourceSearchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_search_duration_seconds",
			Help:      "Literature search duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		CandidatesMerged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_merged_total",
			Help:      "Candidates kept after deduplication",
		}),
		DuplicatesRemoved: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Candidates removed as duplicates",
		}),
	}
}

// ObserveStage records one stage execution.
func (m *Metrics) ObserveStage(stage, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageRuns.WithLabelValues(stage, outcome).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveHalt records a halted run.
func (m *Metrics) ObserveHalt() {
	if m == nil {
		return
	}
	m.RunsHalted.Inc()
}

// ObserveSearch records one (query, source) unit.
func (m *Metrics) ObserveSearch(source, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceSearches.WithLabelValues(source, outcome).Inc()
	m.SourceSearchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveMerge records the result of one merge.
func (m *Metrics) ObserveMerge(kept, removed int) {
	if m == nil {
		return
	}
	m.CandidatesMerged.Add(float64(kept))
	m.DuplicatesRemoved.Add(float64(removed))
}
