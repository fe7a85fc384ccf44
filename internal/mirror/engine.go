// Package mirror sizes a target trader's trades to the follower's funds and drives them
// through the order router until the position is mirrored or the attempt budget runs out.
package mirror

import (
	"context"
	"math"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/pkg/numeric"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Reason explains why an execution ended.
type Reason string

// Execution end reasons.
const (
	ReasonFilled          Reason = "filled"
	ReasonNothingToDo     Reason = "nothing-to-do"
	ReasonNoPosition      Reason = "no-position"
	ReasonZeroDenominator Reason = "zero-denominator"
	ReasonNoLiquidity     Reason = "no-liquidity"
	ReasonSlippage        Reason = "slippage"
	ReasonBelowMinimum    Reason = "below-minimum"
	ReasonRetryBudget     Reason = "retry-budget"
	ReasonCanceled        Reason = "canceled"
)

// markTimeout bounds the ledger update that closes an event.
const markTimeout = 10 * time.Second

// MetadataResolver returns fee and size limits for a market.
type MetadataResolver interface {
	Resolve(ctx context.Context, marketID string) types.MarketMetadata
}

// BookAnalyzer returns the best level on the opposing side of the book.
type BookAnalyzer interface {
	BestOpposing(ctx context.Context, tokenID string, side types.Side) (types.Level, bool)
}

// OrderRouter executes a sized slice and returns the filled shares.
type OrderRouter interface {
	Route(ctx context.Context, req execution.RouteRequest) float64
}

// TradeMarker closes trade events in the trade ledger.
type TradeMarker interface {
	MarkProcessed(ctx context.Context, id string, retryCount int) error
}

// Settings are the tunables of the mirroring loop.
type Settings struct {
	Amplification      float64
	MirrorSellFraction bool
	SlippageTolerance  float64
	RetryLimit         int

	// Backoff: FastAttempts, BaseDelay (book delay), adaptive scaling and jitter.
	Backoff    retry.Policy
	RetryDelay time.Duration
}

// DefaultBackoff is the loop backoff: a 350ms book delay scaled by remaining/100 within
// [0.5, 2], with 10% jitter after two fast attempts.
func DefaultBackoff(fastAttempts int, bookDelay time.Duration) retry.Policy {
	return retry.Policy{
		BaseDelay:      bookDelay,
		JitterFraction: 0.1,
		FastAttempts:   fastAttempts,
		ScaleUnit:      100,
		MinScale:       0.5,
		MaxScale:       2,
	}
}

// Outcome summarizes one execution. Requested and Remaining are in budget units: USD for
// buys, shares for sells and merges.
type Outcome struct {
	Condition Condition
	Requested float64
	Remaining float64
	Filled    float64 // shares
	Reason    Reason
}

// Engine mirrors trade events one at a time.
type Engine struct {
	metadata MetadataResolver
	books    BookAnalyzer
	router   OrderRouter
	trades   TradeMarker
	exposure *exposure.Ledger
	settings Settings
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Config holds engine dependencies.
type Config struct {
	Metadata MetadataResolver
	Books    BookAnalyzer
	Router   OrderRouter
	Trades   TradeMarker
	Exposure *exposure.Ledger
	Settings Settings
	Logger   *zap.Logger
}

// NewEngine creates an engine.
func NewEngine(cfg *Config) *Engine {
	ledger := cfg.Exposure
	if ledger == nil {
		ledger = exposure.NewLedger()
	}

	return &Engine{
		metadata: cfg.Metadata,
		books:    cfg.Books,
		router:   cfg.Router,
		trades:   cfg.Trades,
		exposure: ledger,
		settings: cfg.Settings,
		logger:   cfg.Logger,
		sleep:    retry.Sleep,
	}
}

// Execute mirrors event under cond and always marks it processed, whatever was filled.
// followerPos and targetPos are the parties' positions in the event's market, nil when absent.
func (e *Engine) Execute(
	ctx context.Context,
	cond Condition,
	followerPos *types.Position,
	targetPos *types.Position,
	event types.TradeEvent,
	followerBalance float64,
	targetBalance float64,
) Outcome {
	start := time.Now()
	logger := e.logger.With(
		zap.String("trade-id", event.ID),
		zap.String("condition", cond.String()),
		zap.String("market-id", event.MarketID))

	logger.Info("mirror-started",
		zap.String("state", "idle"),
		zap.String("token-id", event.TokenID),
		zap.String("side", string(event.Side)),
		zap.Float64("size", event.Size),
		zap.Float64("price", event.Price),
		zap.Float64("usdc-size", event.USDCSize),
		zap.Float64("follower-balance", followerBalance),
		zap.Float64("target-balance", targetBalance))

	outcome := e.run(ctx, cond, input{
		follower:        followerPos,
		target:          targetPos,
		event:           event,
		followerBalance: followerBalance,
		targetBalance:   targetBalance,
	}, logger)

	e.markProcessed(ctx, event, logger)

	EventsTotal.WithLabelValues(cond.String(), string(outcome.Reason)).Inc()
	ExecutionDurationSeconds.Observe(time.Since(start).Seconds())

	logger.Info("mirror-done",
		zap.String("state", "done"),
		zap.String("reason", string(outcome.Reason)),
		zap.Float64("requested", outcome.Requested),
		zap.Float64("remaining", outcome.Remaining),
		zap.Float64("filled-shares", outcome.Filled),
		zap.Duration("duration", time.Since(start)))

	return outcome
}

func (e *Engine) run(ctx context.Context, cond Condition, in input, logger *zap.Logger) Outcome {
	logger.Debug("mirror-state", zap.String("state", "sizing"))

	p := cond.plan(e, in)
	outcome := Outcome{
		Condition: cond,
		Requested: p.budget,
		Remaining: p.budget,
		Reason:    p.reason,
	}
	if p.reason != "" {
		return outcome
	}

	meta := e.metadata.Resolve(ctx, in.event.MarketID)
	feeMultiplier := numeric.FeeMultiplier(meta.TakerFeeBps)
	minSize := meta.MinOrderSize
	if minSize <= 0 {
		minSize = 1
	}

	available := in.followerBalance
	retries := 0
	backoff := e.settings.Backoff

	for {
		if numeric.IsDust(outcome.Remaining) {
			outcome.Reason = ReasonFilled
			return outcome
		}
		if retries >= e.settings.RetryLimit {
			outcome.Reason = ReasonRetryBudget
			return outcome
		}

		if retries >= backoff.FastAttempts {
			if err := e.sleep(ctx, backoff.Adaptive(outcome.Remaining)); err != nil {
				outcome.Reason = ReasonCanceled
				return outcome
			}
		}

		logger.Debug("mirror-state",
			zap.String("state", "executing"),
			zap.Int("retry", retries),
			zap.Float64("remaining", outcome.Remaining))

		level, ok := e.books.BestOpposing(ctx, p.tokenID, p.side)
		if !ok {
			outcome.Reason = ReasonNoLiquidity
			return outcome
		}

		if p.checkSlippage && numeric.ExceedsTolerance(level.Price, in.event.Price, e.settings.SlippageTolerance) {
			logger.Info("mirror-slippage-exceeded",
				zap.Float64("event-price", in.event.Price),
				zap.Float64("best-price", level.Price),
				zap.Float64("tolerance", e.settings.SlippageTolerance))
			outcome.Reason = ReasonSlippage
			return outcome
		}

		var shares float64
		if p.side == types.SideBuy {
			est := math.Min(outcome.Remaining/(level.Price*feeMultiplier), level.Size)
			shares = execution.EnforceMinimum(est, minSize, outcome.Remaining, level.Price, feeMultiplier)
		} else {
			est := math.Min(outcome.Remaining, level.Size)
			shares = execution.EnforceMinimum(est, minSize, outcome.Remaining, 1, 1)
		}
		shares = numeric.FloorShares(shares)
		if shares <= 0 {
			logger.Info("mirror-below-minimum",
				zap.Float64("remaining", outcome.Remaining),
				zap.Float64("min-size", minSize),
				zap.Float64("best-price", level.Price))
			outcome.Reason = ReasonBelowMinimum
			return outcome
		}

		filled := e.router.Route(ctx, execution.RouteRequest{
			Side:             p.side,
			TokenID:          p.tokenID,
			Shares:           shares,
			BestPrice:        level.Price,
			FeeBps:           meta.TakerFeeBps,
			MinSize:          minSize,
			FeeMultiplier:    feeMultiplier,
			AvailableBalance: available,
			NegRisk:          meta.NegRisk,
		})

		if filled > 0 {
			outcome.Filled += filled
			if p.side == types.SideBuy {
				cost := numeric.OrderCost(filled, level.Price) * feeMultiplier
				outcome.Remaining -= cost
				available -= cost
			} else {
				outcome.Remaining -= filled
			}
			retries = 0

			logger.Info("mirror-slice-filled",
				zap.Float64("filled-shares", filled),
				zap.Float64("price", level.Price),
				zap.Float64("remaining", outcome.Remaining))
		} else {
			retries++
			RetriesTotal.WithLabelValues(cond.String()).Inc()
			logger.Info("mirror-state",
				zap.String("state", "retry"),
				zap.Int("retry", retries),
				zap.Int("retry-limit", e.settings.RetryLimit))
		}

		if ctx.Err() != nil {
			outcome.Reason = ReasonCanceled
			return outcome
		}

		if retries >= backoff.FastAttempts && retries < e.settings.RetryLimit {
			if err := e.sleep(ctx, backoff.Jitter(e.settings.RetryDelay)); err != nil {
				outcome.Reason = ReasonCanceled
				return outcome
			}
		}
	}
}

func (e *Engine) markProcessed(ctx context.Context, event types.TradeEvent, logger *zap.Logger) {
	// Orders may already be on the exchange, so the event is closed even during shutdown.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), markTimeout)
	defer cancel()

	err := e.trades.MarkProcessed(ctx, event.ID, event.RetryCount+1)
	if err != nil {
		MarkFailuresTotal.Inc()
		logger.Error("mark-processed-failed", zap.Error(err))
	}
}
