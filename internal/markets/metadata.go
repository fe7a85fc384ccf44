// Package markets resolves the fee schedule and order constraints of a market.
package markets

import (
	"context"
	"math"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// MarketFetcher loads market info from the exchange.
type MarketFetcher interface {
	GetMarket(ctx context.Context, conditionID string) (*types.MarketInfo, error)
}

// Resolver returns the metadata of a market. It never fails.
type Resolver interface {
	Resolve(ctx context.Context, marketID string) types.MarketMetadata
}

// MetadataResolver fetches market metadata and falls back to conservative defaults on any error.
type MetadataResolver struct {
	fetcher MarketFetcher
	policy  retry.Policy
	logger  *zap.Logger
}

// NewMetadataResolver creates a resolver that retries transient fetch failures per policy.
func NewMetadataResolver(fetcher MarketFetcher, policy retry.Policy, logger *zap.Logger) *MetadataResolver {
	return &MetadataResolver{
		fetcher: fetcher,
		policy:  policy,
		logger:  logger,
	}
}

// Resolve fetches fees and minimum order size for marketID.
func (r *MetadataResolver) Resolve(ctx context.Context, marketID string) types.MarketMetadata {
	start := time.Now()
	market, err := retry.DoValue(ctx, r.policy, func(ctx context.Context) (*types.MarketInfo, error) {
		return r.fetcher.GetMarket(ctx, marketID)
	}, retry.IsTransient)
	ResolveDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		FallbacksTotal.WithLabelValues("fetch-error").Inc()
		r.logger.Warn("market-metadata-fallback",
			zap.String("market-id", marketID),
			zap.Error(err))
		return types.DefaultMarketMetadata()
	}

	meta := fromMarketInfo(market)
	if meta.Fallback {
		FallbacksTotal.WithLabelValues("partial").Inc()
		r.logger.Warn("market-metadata-partial",
			zap.String("market-id", marketID),
			zap.Float64("maker-fee-bps", meta.MakerFeeBps),
			zap.Float64("taker-fee-bps", meta.TakerFeeBps),
			zap.Float64("min-order-size", meta.MinOrderSize))
	}

	return meta
}

// fromMarketInfo fills each missing or invalid field from the defaults.
func fromMarketInfo(market *types.MarketInfo) types.MarketMetadata {
	meta := types.DefaultMarketMetadata()
	meta.Fallback = false
	meta.NegRisk = market.NegRisk

	if v, ok := nonNegative(market.MakerBaseFee); ok {
		meta.MakerFeeBps = v
	} else {
		meta.Fallback = true
	}

	if v, ok := nonNegative(market.TakerBaseFee); ok {
		meta.TakerFeeBps = v
	} else {
		meta.Fallback = true
	}

	if v, ok := positive(market.MinimumOrderSize); ok {
		meta.MinOrderSize = v
	} else if v, ok := positive(market.MinOrderSize); ok {
		meta.MinOrderSize = v
	} else {
		meta.Fallback = true
	}

	if v, ok := positive(market.MinimumTickSize); ok {
		meta.TickSize = v
	}

	return meta
}

func nonNegative(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) || *p < 0 {
		return 0, false
	}
	return *p, true
}

func positive(p *float64) (float64, bool) {
	v, ok := nonNegative(p)
	return v, ok && v > 0
}
