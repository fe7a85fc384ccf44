package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// PendingTrades tracks the size of the last pending-trade batch.
	PendingTrades = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_app_pending_trades",
		Help: "Number of pending trades in the last executor pass",
	})

	// TradesTotal counts trades handled by the executor by result.
	TradesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_app_trades_total",
		Help: "Total number of trades handled by the executor",
	}, []string{"result"})

	// LoopDurationSeconds tracks one executor pass.
	LoopDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_app_loop_duration_seconds",
		Help:    "Duration of one executor pass over pending trades",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)
