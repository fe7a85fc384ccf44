package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// LookupsTotal counts Get calls by cache name and result (hit, miss).
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	}, []string{"cache", "result"})

	// WritesTotal counts Set calls by cache name and result (stored, dropped).
	// Ristretto may drop writes under contention.
	WritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_cache_writes_total",
		Help: "Total number of cache writes by result",
	}, []string{"cache", "result"})
)
