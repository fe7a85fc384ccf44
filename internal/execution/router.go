package execution

import (
	"context"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// makerImprovement is how far inside the spread the maker leg is priced.
const makerImprovement = 0.01

// RouteRequest is one sized slice ready for execution.
type RouteRequest struct {
	Side             types.Side
	TokenID          string
	Shares           float64
	BestPrice        float64 // best opposing level
	FeeBps           float64
	MinSize          float64
	FeeMultiplier    float64
	AvailableBalance float64
	NegRisk          bool
}

// Router tries a resting maker order one tick inside the spread and falls back to a single
// immediate taker order.
type Router struct {
	submitter *Submitter
	makerWait time.Duration
	logger    *zap.Logger
}

// NewRouter creates a router. makerWait is how long a resting maker order is given to fill.
func NewRouter(submitter *Submitter, makerWait time.Duration, logger *zap.Logger) *Router {
	return &Router{
		submitter: submitter,
		makerWait: makerWait,
		logger:    logger,
	}
}

// Route executes req and returns the filled shares.
func (r *Router) Route(ctx context.Context, req RouteRequest) float64 {
	logger := r.logger.With(
		zap.String("token-id", req.TokenID),
		zap.String("side", string(req.Side)),
		zap.Float64("shares", req.Shares),
		zap.Float64("best-price", req.BestPrice))

	if req.Shares >= req.MinSize {
		filled := r.maker(ctx, req, logger)
		if filled > 0 {
			RoutesTotal.WithLabelValues("maker").Inc()
			return filled
		}
	} else {
		logger.Debug("maker-leg-skipped-below-minimum", zap.Float64("min-size", req.MinSize))
	}

	if ctx.Err() != nil {
		return 0
	}

	logger.Info("routing-taker")
	fill := r.submitter.Submit(ctx, r.order(req, req.BestPrice, types.OrderTypeFAK))
	filled := r.submitter.Settle(ctx, fill, req.Side, req.TokenID)
	if filled > 0 {
		RoutesTotal.WithLabelValues("taker").Inc()
	} else {
		RoutesTotal.WithLabelValues("none").Inc()
	}

	return filled
}

func (r *Router) maker(ctx context.Context, req RouteRequest, logger *zap.Logger) float64 {
	price := req.BestPrice - makerImprovement
	if req.Side == types.SideSell {
		price = req.BestPrice + makerImprovement
	}

	logger.Info("routing-maker", zap.Float64("maker-price", price))
	fill := r.submitter.Submit(ctx, r.order(req, price, types.OrderTypeGTC))
	if fill.Shares > 0 {
		return fill.Shares
	}

	// An interrupted wait still settles the resting order below.
	_ = retry.Sleep(ctx, r.makerWait)

	if !fill.Resting {
		return 0
	}

	matched := r.submitter.Settle(ctx, fill, req.Side, req.TokenID)
	if matched > 0 {
		logger.Info("maker-partially-filled", zap.Float64("matched-shares", matched))
	}

	return matched
}

func (r *Router) order(req RouteRequest, price float64, orderType types.OrderType) types.OrderRequest {
	return types.OrderRequest{
		Side:             req.Side,
		TokenID:          req.TokenID,
		Shares:           req.Shares,
		Price:            price,
		FeeBps:           req.FeeBps,
		FeeMultiplier:    req.FeeMultiplier,
		OrderType:        orderType,
		NegRisk:          req.NegRisk,
		AvailableBalance: req.AvailableBalance,
	}
}
