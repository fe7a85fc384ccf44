package exposure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ExposureShares tracks session exposure per token.
var ExposureShares = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "polymarket_exposure_shares",
		Help: "Net shares filled this session per token",
	},
	[]string{"token_id"},
)
