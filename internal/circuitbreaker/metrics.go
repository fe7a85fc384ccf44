package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BuysEnabledGauge is 1 while BUY mirroring is allowed.
	BuysEnabledGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_circuitbreaker_buys_enabled",
		Help: "Whether BUY mirroring is allowed (1=enabled, 0=disabled)",
	})

	// ObservedBalance is the last follower USDC balance the breaker saw.
	ObservedBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_circuitbreaker_observed_balance_usdc",
		Help: "Last follower USDC balance seen by the breaker",
	})

	// Thresholds holds the current disable and enable thresholds, labelled by edge.
	Thresholds = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polymarket_circuitbreaker_threshold_usdc",
		Help: "Current USDC balance thresholds (edge=disable|enable)",
	}, []string{"edge"})

	// AvgBuyCost is the rolling average USDC cost of filled buys.
	AvgBuyCost = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_circuitbreaker_avg_buy_cost_usdc",
		Help: "Rolling average USDC cost of recent filled buys",
	})

	// TransitionsTotal counts state changes, labelled by the new state.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_circuitbreaker_transitions_total",
		Help: "Total number of breaker transitions (to=disabled|enabled)",
	}, []string{"to"})

	// CheckDuration tracks balance fetches made by the monitor loop.
	CheckDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_circuitbreaker_check_duration_seconds",
		Help:    "Time taken to fetch the follower balance",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
