package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/mirror"
	"github.com/mselser95/polymarket-mirror/internal/storage"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// ErrTradeAlreadyProcessed is returned when a one-shot execution targets a closed trade.
var ErrTradeAlreadyProcessed = errors.New("trade already processed")

// BalanceOracle reads balances and positions of an account.
type BalanceOracle interface {
	USDCBalance(ctx context.Context, address string) (float64, error)
	Positions(ctx context.Context, address string) ([]types.Position, error)
}

// Mirror executes one trade event.
type Mirror interface {
	Execute(
		ctx context.Context,
		cond mirror.Condition,
		followerPos *types.Position,
		targetPos *types.Position,
		event types.TradeEvent,
		followerBalance float64,
		targetBalance float64,
	) mirror.Outcome
}

// BuyGate decides whether buys may run given the follower balance.
type BuyGate interface {
	Observe(balance float64)
	Allows(side types.Side) bool
	RecordBuy(cost float64)
}

// Executor drains pending trades from the ledger, oldest first, one at a time.
type Executor struct {
	ledger   storage.TradeLedger
	oracle   BalanceOracle
	mirror   Mirror
	gate     BuyGate
	follower string
	target   string
	interval time.Duration
	tooOld   time.Duration
	limit    int
	logger   *zap.Logger
	now      func() time.Time

	heartbeat func() // called after every pass and every trade, may be nil
}

// ExecutorConfig holds executor configuration.
type ExecutorConfig struct {
	Ledger          storage.TradeLedger
	Oracle          BalanceOracle
	Mirror          Mirror
	Gate            BuyGate // optional
	FollowerAddress string
	TargetAddress   string
	FetchInterval   time.Duration
	TooOld          time.Duration // 0 disables the age check
	RetryLimit      int
	Logger          *zap.Logger
}

// NewExecutor creates an executor.
func NewExecutor(cfg *ExecutorConfig) (*Executor, error) {
	if cfg.Ledger == nil || cfg.Oracle == nil || cfg.Mirror == nil {
		return nil, errors.New("ledger, oracle and mirror are required")
	}
	if cfg.FollowerAddress == "" || cfg.TargetAddress == "" {
		return nil, errors.New("follower and target addresses are required")
	}
	if cfg.FetchInterval <= 0 {
		return nil, errors.New("fetch interval must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Executor{
		ledger:   cfg.Ledger,
		oracle:   cfg.Oracle,
		mirror:   cfg.Mirror,
		gate:     cfg.Gate,
		follower: cfg.FollowerAddress,
		target:   cfg.TargetAddress,
		interval: cfg.FetchInterval,
		tooOld:   cfg.TooOld,
		limit:    cfg.RetryLimit,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Run processes pending trades every fetch interval until ctx is cancelled.
func (e *Executor) Run(ctx context.Context) error {
	e.logger.Info("executor-starting",
		zap.Duration("fetch-interval", e.interval),
		zap.Int("retry-limit", e.limit))

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		_, err := e.ProcessPending(ctx)
		if err != nil && ctx.Err() == nil {
			e.logger.Error("process-pending-failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			e.logger.Info("executor-stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessPending handles every pending trade once and returns how many were handed to the
// mirroring engine.
func (e *Executor) ProcessPending(ctx context.Context) (executed int, err error) {
	start := time.Now()
	defer func() {
		LoopDurationSeconds.Observe(time.Since(start).Seconds())
		e.beat()
	}()

	trades, err := e.ledger.PendingTrades(ctx, e.limit)
	if err != nil {
		return 0, fmt.Errorf("get pending trades: %w", err)
	}
	PendingTrades.Set(float64(len(trades)))

	for _, trade := range trades {
		if ctx.Err() != nil {
			return executed, ctx.Err()
		}

		ran, procErr := e.Process(ctx, trade)
		if procErr != nil {
			e.logger.Warn("trade-deferred",
				zap.String("trade-id", trade.ID),
				zap.Int("retry-count", trade.RetryCount),
				zap.Error(procErr))
		}
		if ran {
			executed++
		}
		e.beat()
	}

	return executed, nil
}

// ExecuteTrade loads one trade by id and processes it, whatever its retry count. A non-nil
// cond replaces the condition selected from positions.
func (e *Executor) ExecuteTrade(ctx context.Context, id string, cond mirror.Condition) (bool, error) {
	trade, err := e.ledger.GetTrade(ctx, id)
	if err != nil {
		return false, err
	}
	if trade.Processed {
		return false, fmt.Errorf("execute trade %s: %w", id, ErrTradeAlreadyProcessed)
	}

	return e.process(ctx, *trade, cond)
}

// Process runs one trade through the engine. It reports whether the engine was invoked; an
// error means the trade stays pending with its retry count bumped.
func (e *Executor) Process(ctx context.Context, trade types.TradeEvent) (bool, error) {
	return e.process(ctx, trade, nil)
}

func (e *Executor) process(ctx context.Context, trade types.TradeEvent, override mirror.Condition) (bool, error) {
	logger := e.logger.With(zap.String("trade-id", trade.ID))

	if e.tooOld > 0 && e.now().Sub(trade.DetectedAt) > e.tooOld {
		logger.Info("trade-too-old",
			zap.Time("detected-at", trade.DetectedAt),
			zap.Duration("max-age", e.tooOld))
		TradesTotal.WithLabelValues("too-old").Inc()
		return false, e.close(ctx, trade)
	}

	snap, err := e.snapshot(ctx)
	if err != nil {
		TradesTotal.WithLabelValues("deferred").Inc()
		retryErr := e.ledger.IncrementRetry(ctx, trade.ID, trade.RetryCount+1)
		if retryErr != nil {
			logger.Error("increment-retry-failed", zap.Error(retryErr))
		}
		return false, err
	}

	cond := override
	if cond == nil {
		cond, err = mirror.SelectCondition(trade,
			mirror.FindPosition(snap.followerPositions, trade.MarketID, trade.TokenID),
			mirror.FindPosition(snap.targetPositions, trade.MarketID, trade.TokenID))
		if err != nil {
			logger.Warn("trade-unsupported", zap.Error(err))
			TradesTotal.WithLabelValues("unsupported").Inc()
			return false, e.close(ctx, trade)
		}
	} else {
		logger.Info("condition-overridden", zap.String("condition", cond.String()))
	}

	if e.gate != nil {
		e.gate.Observe(snap.followerBalance)
		if _, isBuy := cond.(mirror.Buy); isBuy && !e.gate.Allows(types.SideBuy) {
			logger.Warn("buy-skipped-low-balance",
				zap.Float64("follower-balance", snap.followerBalance))
			TradesTotal.WithLabelValues("buy-gated").Inc()
			return false, e.close(ctx, trade)
		}
	}

	followerPos, targetPos := mirror.SizingPositions(cond, trade, snap.followerPositions, snap.targetPositions)
	outcome := e.mirror.Execute(ctx, cond, followerPos, targetPos, trade,
		snap.followerBalance, snap.targetBalance)
	TradesTotal.WithLabelValues("executed").Inc()

	if _, isBuy := cond.(mirror.Buy); isBuy && e.gate != nil {
		e.gate.RecordBuy(outcome.Requested - outcome.Remaining)
	}

	return true, nil
}

func (e *Executor) beat() {
	if e.heartbeat != nil {
		e.heartbeat()
	}
}

// close marks a trade processed without executing it.
func (e *Executor) close(ctx context.Context, trade types.TradeEvent) error {
	err := e.ledger.MarkProcessed(ctx, trade.ID, trade.RetryCount+1)
	if err != nil {
		return fmt.Errorf("close trade: %w", err)
	}
	return nil
}

type accountSnapshot struct {
	followerBalance   float64
	targetBalance     float64
	followerPositions []types.Position
	targetPositions   []types.Position
}

func (e *Executor) snapshot(ctx context.Context) (accountSnapshot, error) {
	var (
		snap accountSnapshot
		err  error
	)

	snap.followerPositions, err = e.oracle.Positions(ctx, e.follower)
	if err != nil {
		return snap, fmt.Errorf("get follower positions: %w", err)
	}

	snap.targetPositions, err = e.oracle.Positions(ctx, e.target)
	if err != nil {
		return snap, fmt.Errorf("get target positions: %w", err)
	}

	snap.followerBalance, err = e.oracle.USDCBalance(ctx, e.follower)
	if err != nil {
		return snap, fmt.Errorf("get follower balance: %w", err)
	}

	snap.targetBalance, err = e.oracle.USDCBalance(ctx, e.target)
	if err != nil {
		return snap, fmt.Errorf("get target balance: %w", err)
	}

	return snap, nil
}
