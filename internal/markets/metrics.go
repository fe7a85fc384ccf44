package markets

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolveDuration tracks market lookups including retries.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_markets_resolve_duration_seconds",
		Help:    "Duration of market metadata resolution, retries included",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})

	// FallbacksTotal counts resolutions that used default values.
	// reason is "fetch-error" for a failed lookup, "partial" for missing or invalid fields.
	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_markets_metadata_fallbacks_total",
		Help: "Total number of market resolutions that used default metadata",
	}, []string{"reason"})

	// CacheLookupsTotal counts cached resolver lookups by result (hit, miss).
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_markets_metadata_cache_lookups_total",
		Help: "Total number of metadata cache lookups",
	}, []string{"result"})
)
