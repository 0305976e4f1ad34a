package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks every execution of guarded work
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilient_attempts_total",
			Help: "Total number of attempts of guarded work",
		},
		[]string{"label"},
	)

	// RetriesTotal tracks failed attempts that were retried
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilient_retries_total",
			Help: "Total number of failed attempts followed by another attempt",
		},
		[]string{"label"},
	)

	// ExhaustedTotal tracks failures reported after the last attempt
	ExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilient_exhausted_total",
			Help: "Total number of guarded work units that failed every attempt",
		},
		[]string{"label", "outcome"}, // outcome: reraised, swallowed
	)

	// BackoffSeconds tracks the pauses taken between attempts
	BackoffSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resilient_backoff_seconds",
			Help:    "Pause between attempts in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 8),
		},
		[]string{"label"},
	)

	// DumpsPersisted tracks variable dumps written by a store
	DumpsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilient_dumps_persisted_total",
			Help: "Total number of variable dumps persisted",
		},
		[]string{"store"},
	)

	// DumpFailures tracks dumps a store failed to write
	DumpFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resilient_dump_failures_total",
			Help: "Total number of variable dumps that could not be persisted",
		},
		[]string{"store"},
	)
)

// Outcome label values for ExhaustedTotal.
const (
	OutcomeReraised  = "reraised"
	OutcomeSwallowed = "swallowed"
)
