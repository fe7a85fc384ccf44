package execution

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersTotal tracks order submissions by side, type and result.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_execution_orders_total",
			Help: "Total number of order submissions",
		},
		[]string{"side", "order_type", "result"},
	)

	// FilledSharesTotal tracks filled shares by side.
	FilledSharesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_execution_filled_shares_total",
			Help: "Total number of shares filled",
		},
		[]string{"side"},
	)

	// SkippedOrdersTotal tracks orders dropped before submission.
	SkippedOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_execution_skipped_orders_total",
			Help: "Total number of orders skipped before submission",
		},
		[]string{"reason"},
	)

	// SubmitDurationSeconds tracks build plus post latency.
	SubmitDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_execution_submit_duration_seconds",
		Help:    "Duration of order build and submission",
		Buckets: prometheus.DefBuckets,
	})

	// RoutesTotal tracks which leg of the router produced the fill.
	RoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_execution_routes_total",
			Help: "Total number of routed orders by filling leg",
		},
		[]string{"leg"},
	)
)
