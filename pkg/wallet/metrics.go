package wallet

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// USDCBalance tracks the USDC balance per tracked account (follower, target).
	USDCBalance = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polymarket_wallet_usdc_balance",
		Help: "Current USDC balance of the account (USD)",
	}, []string{"account"})

	// ActivePositions tracks the number of open positions per account.
	ActivePositions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polymarket_wallet_active_positions",
		Help: "Number of open positions",
	}, []string{"account"})

	// TotalPositionValue tracks the sum of position current values per account.
	TotalPositionValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polymarket_wallet_total_position_value",
		Help: "Sum of all position current values (USD)",
	}, []string{"account"})

	// PortfolioValue tracks USDC plus position value per account.
	PortfolioValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "polymarket_wallet_portfolio_value",
		Help: "Total portfolio value: USDC + positions (USD)",
	}, []string{"account"})

	// RPCFailuresTotal counts failed balance reads per RPC endpoint position.
	RPCFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_wallet_rpc_failures_total",
		Help: "Total number of failed USDC balance reads by RPC endpoint",
	}, []string{"endpoint"})

	// UpdateErrorsTotal tracks the number of failed update attempts.
	UpdateErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "polymarket_wallet_update_errors_total",
		Help: "Total number of failed wallet update attempts",
	}, []string{"account"})

	// UpdateDuration tracks the time taken to fetch wallet data.
	UpdateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polymarket_wallet_update_duration_seconds",
		Help:    "Time taken to fetch wallet data (seconds)",
		Buckets: prometheus.DefBuckets,
	})

	// LastUpdateTimestamp tracks the Unix timestamp of the last successful update.
	LastUpdateTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "polymarket_wallet_last_update_timestamp",
		Help: "Unix timestamp of last successful wallet update",
	})
)
