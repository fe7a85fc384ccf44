package orderbook

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchDurationSeconds tracks book fetch latency including retries.
	FetchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_orderbook_fetch_duration_seconds",
		Help:    "Duration of orderbook fetches",
		Buckets: prometheus.DefBuckets,
	})

	// InvalidLevelsTotal counts levels dropped because they failed validation.
	InvalidLevelsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polymarket_orderbook_invalid_levels_total",
		Help: "Total number of orderbook levels dropped as invalid",
	})

	// NoLiquidityTotal counts lookups that found nothing to trade against.
	NoLiquidityTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polymarket_orderbook_no_liquidity_total",
			Help: "Total number of orderbook lookups without a usable opposing level",
		},
		[]string{"reason"},
	)
)
