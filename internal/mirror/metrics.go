package mirror

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal tracks mirrored events by condition and end reason.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_events_total",
			Help: "Total number of trade events mirrored",
		},
		[]string{"condition", "reason"},
	)

	// RetriesTotal tracks attempts that filled nothing.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_mirror_retries_total",
			Help: "Total number of mirror attempts without a fill",
		},
		[]string{"condition"},
	)

	// ExecutionDurationSeconds tracks end-to-end event latency.
	ExecutionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_mirror_execution_duration_seconds",
		Help:    "Duration of trade event mirroring",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	// MarkFailuresTotal tracks trade ledger update failures.
	MarkFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_mirror_mark_failures_total",
		Help: "Total number of failed trade ledger updates",
	})
)
