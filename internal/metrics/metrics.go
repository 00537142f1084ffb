package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidatesTotal counts candidates kept after deduplication, by strategy.
	CandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_candidates_total",
		Help: "Candidates produced by matching, by adaptation strategy",
	}, []string{"strategy"})

	// StatementOutcomesTotal counts executed statements by outcome.
	StatementOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_statement_outcomes_total",
		Help: "Executed statements by outcome",
	}, []string{"outcome"})

	// ImplementationsTotal counts pipeline runs by result.
	ImplementationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arena_implementations_total",
		Help: "Implementations processed by the pipeline, by result",
	}, []string{"result"})

	// SequenceBuildDuration tracks how long building one sequence takes.
	SequenceBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arena_sequence_build_duration_seconds",
		Help:    "Sequence build duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
)
