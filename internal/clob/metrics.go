package clob

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks CLOB requests by endpoint and HTTP status.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_clob_requests_total",
			Help: "Total number of CLOB API requests",
		},
		[]string{"endpoint", "status"},
	)

	// RequestDurationSeconds tracks CLOB request latency.
	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polymarket_clob_request_duration_seconds",
			Help:    "Duration of CLOB API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// RetriesTotal tracks retried CLOB requests.
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_clob_retries_total",
			Help: "Total number of retried CLOB API requests",
		},
		[]string{"endpoint"},
	)

	// LimiterWaitSeconds tracks time spent waiting for the global call spacing.
	LimiterWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_clob_limiter_wait_seconds",
		Help:    "Time spent waiting on the CLOB rate limiter",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
	})
)
