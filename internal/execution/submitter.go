// Package execution turns sized slices into exchange orders.
package execution

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/pkg/numeric"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/polymarket/go-order-utils/pkg/model"
	"go.uber.org/zap"
)

// OrderGateway is the part of the CLOB client that places and manages orders.
type OrderGateway interface {
	BuildOrder(ctx context.Context, req types.OrderRequest) (*model.SignedOrder, error)
	PostOrder(ctx context.Context, order *model.SignedOrder, orderType types.OrderType) (*types.OrderSubmissionResponse, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (*types.OrderQueryResponse, error)
}

// Submitter formats, signs and posts single orders. It never returns an error: every failure
// collapses to an empty fill.
type Submitter struct {
	gateway     OrderGateway
	exposure    *exposure.Ledger
	buildPolicy retry.Policy
	callPolicy  retry.Policy
	logger      *zap.Logger
}

// SubmitterConfig holds submitter dependencies.
type SubmitterConfig struct {
	Gateway     OrderGateway
	Exposure    *exposure.Ledger
	BuildPolicy retry.Policy // signing glitches
	CallPolicy  retry.Policy // network failures
	Logger      *zap.Logger
}

// NewSubmitter creates a submitter.
func NewSubmitter(cfg *SubmitterConfig) *Submitter {
	return &Submitter{
		gateway:     cfg.Gateway,
		exposure:    cfg.Exposure,
		buildPolicy: cfg.BuildPolicy,
		callPolicy:  cfg.CallPolicy,
		logger:      cfg.Logger,
	}
}

// Submit places one order. Filled shares are recorded in the exposure ledger.
func (s *Submitter) Submit(ctx context.Context, req types.OrderRequest) types.Fill {
	if req.AttemptID == "" {
		req.AttemptID = uuid.New().String()
	}

	req.Price = numeric.FormatPrice(req.Price)
	req.Shares = numeric.FloorShares(req.Shares)

	logger := s.logger.With(
		zap.String("attempt-id", req.AttemptID),
		zap.String("token-id", req.TokenID),
		zap.String("side", string(req.Side)),
		zap.String("order-type", string(req.OrderType)),
		zap.Float64("price", req.Price),
		zap.Float64("shares", req.Shares))

	if req.Shares <= 0 {
		SkippedOrdersTotal.WithLabelValues("zero-shares").Inc()
		logger.Debug("order-skipped-zero-shares")
		return types.Fill{}
	}

	if req.Side == types.SideBuy {
		feeMultiplier := req.FeeMultiplier
		if feeMultiplier <= 0 {
			feeMultiplier = numeric.FeeMultiplier(req.FeeBps)
		}
		required := numeric.OrderCost(req.Shares, req.Price) * feeMultiplier
		if required > req.AvailableBalance {
			SkippedOrdersTotal.WithLabelValues("insufficient-balance").Inc()
			logger.Info("order-skipped-insufficient-balance",
				zap.Float64("required-usd", required),
				zap.Float64("available-usd", req.AvailableBalance))
			return types.Fill{}
		}
	}

	start := time.Now()
	defer func() {
		SubmitDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	order, err := retry.DoValue(ctx, s.buildPolicy, func(ctx context.Context) (*model.SignedOrder, error) {
		return s.gateway.BuildOrder(ctx, req)
	}, retry.IsTransient)
	if err != nil {
		s.count(req, "build-failed")
		logger.Error("order-build-failed", zap.Error(err))
		return types.Fill{}
	}

	resp, err := retry.DoValue(ctx, s.callPolicy, func(ctx context.Context) (*types.OrderSubmissionResponse, error) {
		return s.gateway.PostOrder(ctx, order, req.OrderType)
	}, postRetryable)
	if err != nil {
		var orderErr *types.OrderError
		if errors.As(err, &orderErr) {
			s.count(req, "rejected")
			logger.Warn("order-rejected",
				zap.String("code", orderErr.Code),
				zap.String("message", orderErr.Message))
			return types.Fill{}
		}
		s.count(req, "post-failed")
		logger.Error("order-post-failed", zap.Error(err))
		return types.Fill{}
	}

	if !resp.Success {
		s.count(req, "rejected")
		logger.Warn("order-rejected",
			zap.String("order-id", resp.OrderID),
			zap.String("message", resp.ErrorMsg))
		return types.Fill{}
	}

	logger = logger.With(zap.String("order-id", resp.OrderID), zap.String("status", resp.Status))

	switch resp.Status {
	case types.OrderStatusLive, types.OrderStatusDelayed:
		s.count(req, "resting")
		logger.Info("order-resting")
		return types.Fill{OrderID: resp.OrderID, Resting: true}

	case types.OrderStatusUnmatched:
		s.count(req, "unmatched")
		logger.Info("order-unmatched")
		return types.Fill{OrderID: resp.OrderID}
	}

	filled := filledShares(resp, req.Side, req.Shares)
	s.record(req.TokenID, req.Side, filled)
	s.count(req, "filled")
	logger.Info("order-filled", zap.Float64("filled-shares", filled))

	return types.Fill{Shares: filled, OrderID: resp.OrderID}
}

// Settle resolves a resting order: it is cancelled and whatever matched before the cancel is
// recorded and returned. Fills that are not resting pass through unchanged.
func (s *Submitter) Settle(ctx context.Context, fill types.Fill, side types.Side, tokenID string) float64 {
	if !fill.Resting || fill.OrderID == "" {
		return fill.Shares
	}

	// The order must be pulled even when the caller is shutting down.
	ctx = context.WithoutCancel(ctx)
	logger := s.logger.With(
		zap.String("order-id", fill.OrderID),
		zap.String("token-id", tokenID),
		zap.String("side", string(side)))

	err := s.callPolicy.Do(ctx, func(ctx context.Context) error {
		return s.gateway.CancelOrder(ctx, fill.OrderID)
	}, retry.IsTransient)
	if err != nil {
		logger.Warn("resting-order-cancel-failed", zap.Error(err))
	}

	order, err := retry.DoValue(ctx, s.callPolicy, func(ctx context.Context) (*types.OrderQueryResponse, error) {
		return s.gateway.GetOrder(ctx, fill.OrderID)
	}, retry.IsTransient)
	if err != nil {
		logger.Warn("resting-order-query-failed", zap.Error(err))
		return 0
	}

	matched := numeric.FloorShares(order.SizeFilled)
	if matched > 0 {
		s.record(tokenID, side, matched)
		OrdersTotal.WithLabelValues(string(side), string(types.OrderTypeGTC), "settled").Inc()
	}

	logger.Info("resting-order-settled",
		zap.String("status", order.Status),
		zap.Float64("matched-shares", matched))

	return matched
}

func (s *Submitter) record(tokenID string, side types.Side, shares float64) {
	if shares <= 0 {
		return
	}

	FilledSharesTotal.WithLabelValues(string(side)).Add(shares)
	balance := s.exposure.Apply(tokenID, side, shares)
	s.logger.Debug("exposure-updated",
		zap.String("token-id", tokenID),
		zap.Float64("exposure-shares", balance))
}

func (s *Submitter) count(req types.OrderRequest, result string) {
	OrdersTotal.WithLabelValues(string(req.Side), string(req.OrderType), result).Inc()
}

// filledShares reads the matched amount from the response: shares are what a buyer takes and
// what a seller gives. A missing or unparsable amount counts as the full request.
func filledShares(resp *types.OrderSubmissionResponse, side types.Side, requested float64) float64 {
	amount := resp.TakingAmount
	if side == types.SideSell {
		amount = resp.MakingAmount
	}

	shares, ok := numeric.ParsePositive(amount)
	if !ok || shares > requested {
		return requested
	}

	return numeric.FloorShares(shares)
}

// postRetryable retries transport failures and rate limits. A server error may already have
// placed the order, so it is not resubmitted.
func postRetryable(err error) bool {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}

	return retry.IsTransient(err)
}
