// Package circuitbreaker pauses BUY mirroring while the follower's USDC balance is low.
package circuitbreaker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

const tradeWindow = 20

// BalanceFetcher reads an account's USDC balance. wallet.Client implements it.
type BalanceFetcher interface {
	USDCBalance(ctx context.Context, address string) (float64, error)
}

// BalanceCircuitBreaker watches the follower balance and gates BUY orders. Sells and merges
// are never gated since they free funds.
//
// The disable threshold is max(avgBuyCost × TradeMultiplier, MinAbsolute); buys resume once
// the balance reaches disable threshold × HysteresisRatio.
type BalanceCircuitBreaker struct {
	enabled atomic.Bool

	checkInterval   time.Duration
	fetcher         BalanceFetcher
	address         string
	logger          *zap.Logger
	tradeMultiplier float64
	minAbsolute     float64
	hysteresisRatio float64

	mu               sync.RWMutex
	lastBalance      float64
	lastCheck        time.Time
	recentBuys       []float64
	disableThreshold float64
	enableThreshold  float64
}

// Config holds circuit breaker configuration.
type Config struct {
	CheckInterval   time.Duration
	TradeMultiplier float64 // 0 keeps the threshold fixed at MinAbsolute
	MinAbsolute     float64
	HysteresisRatio float64
	Fetcher         BalanceFetcher
	Address         string
	Logger          *zap.Logger
}

// Status holds current circuit breaker status.
type Status struct {
	BuysEnabled      bool      `json:"buys_enabled"`
	LastBalance      float64   `json:"last_balance"`
	LastCheck        time.Time `json:"last_check"`
	DisableThreshold float64   `json:"disable_threshold"`
	EnableThreshold  float64   `json:"enable_threshold"`
	AvgBuyCost       float64   `json:"avg_buy_cost"`
	RecentBuyCount   int       `json:"recent_buy_count"`
}

// New creates a new circuit breaker with the given configuration.
func New(cfg *Config) (breaker *BalanceCircuitBreaker, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("balance fetcher cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	if cfg.CheckInterval <= 0 {
		return nil, fmt.Errorf("check interval must be positive")
	}
	if cfg.TradeMultiplier < 0 {
		return nil, fmt.Errorf("trade multiplier cannot be negative")
	}
	if cfg.MinAbsolute <= 0 {
		return nil, fmt.Errorf("min absolute must be positive")
	}
	if cfg.HysteresisRatio < 1.0 {
		return nil, fmt.Errorf("hysteresis ratio must be >= 1.0")
	}

	breaker = &BalanceCircuitBreaker{
		checkInterval:    cfg.CheckInterval,
		fetcher:          cfg.Fetcher,
		address:          cfg.Address,
		logger:           cfg.Logger,
		tradeMultiplier:  cfg.TradeMultiplier,
		minAbsolute:      cfg.MinAbsolute,
		hysteresisRatio:  cfg.HysteresisRatio,
		recentBuys:       make([]float64, 0, tradeWindow),
		disableThreshold: cfg.MinAbsolute,
		enableThreshold:  cfg.MinAbsolute * cfg.HysteresisRatio,
	}

	breaker.enabled.Store(true)

	BuysEnabledGauge.Set(1)
	Thresholds.WithLabelValues("disable").Set(breaker.disableThreshold)
	Thresholds.WithLabelValues("enable").Set(breaker.enableThreshold)
	AvgBuyCost.Set(0)

	return breaker, nil
}

// BuysEnabled reports whether BUY mirroring may run. Lock-free.
func (b *BalanceCircuitBreaker) BuysEnabled() bool {
	return b.enabled.Load()
}

// Allows reports whether an order on side may be placed.
func (b *BalanceCircuitBreaker) Allows(side types.Side) bool {
	if side != types.SideBuy {
		return true
	}
	return b.BuysEnabled()
}

// RecordBuy adds the USDC cost of a filled buy to the rolling window and recalculates
// thresholds.
func (b *BalanceCircuitBreaker) RecordBuy(cost float64) {
	if cost <= 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.recentBuys = append(b.recentBuys, cost)
	if len(b.recentBuys) > tradeWindow {
		b.recentBuys = b.recentBuys[1:]
	}

	avg := average(b.recentBuys)
	b.disableThreshold = math.Max(avg*b.tradeMultiplier, b.minAbsolute)
	b.enableThreshold = b.disableThreshold * b.hysteresisRatio

	AvgBuyCost.Set(avg)
	Thresholds.WithLabelValues("disable").Set(b.disableThreshold)
	Thresholds.WithLabelValues("enable").Set(b.enableThreshold)

	b.logger.Debug("thresholds-updated",
		zap.Float64("avg-buy-cost", avg),
		zap.Int("buy-count", len(b.recentBuys)),
		zap.Float64("disable-threshold", b.disableThreshold),
		zap.Float64("enable-threshold", b.enableThreshold))
}

// CheckBalance fetches the follower balance and applies it.
func (b *BalanceCircuitBreaker) CheckBalance(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		CheckDuration.Observe(time.Since(start).Seconds())
	}()

	balance, err := b.fetcher.USDCBalance(ctx, b.address)
	if err != nil {
		return fmt.Errorf("get balance: %w", err)
	}

	b.Observe(balance)
	return nil
}

// Observe applies a balance reading obtained elsewhere, e.g. by the executor loop.
func (b *BalanceCircuitBreaker) Observe(balance float64) {
	b.mu.Lock()
	b.lastBalance = balance
	b.lastCheck = time.Now()
	disableThreshold := b.disableThreshold
	enableThreshold := b.enableThreshold
	b.mu.Unlock()

	ObservedBalance.Set(balance)

	currentlyEnabled := b.enabled.Load()
	switch {
	case currentlyEnabled && balance < disableThreshold:
		if !b.enabled.CompareAndSwap(true, false) {
			return
		}
		BuysEnabledGauge.Set(0)
		TransitionsTotal.WithLabelValues("disabled").Inc()
		b.logger.Warn("buys-disabled",
			zap.Float64("balance", balance),
			zap.Float64("disable-threshold", disableThreshold),
			zap.Float64("enable-threshold", enableThreshold))
	case !currentlyEnabled && balance >= enableThreshold:
		if !b.enabled.CompareAndSwap(false, true) {
			return
		}
		BuysEnabledGauge.Set(1)
		TransitionsTotal.WithLabelValues("enabled").Inc()
		b.logger.Info("buys-enabled",
			zap.Float64("balance", balance),
			zap.Float64("disable-threshold", disableThreshold),
			zap.Float64("enable-threshold", enableThreshold))
	default:
		b.logger.Debug("balance-checked",
			zap.Float64("balance", balance),
			zap.Bool("buys-enabled", currentlyEnabled))
	}
}

// Start checks the balance once and then keeps checking every CheckInterval in the
// background until ctx is cancelled.
func (b *BalanceCircuitBreaker) Start(ctx context.Context) {
	b.logger.Info("circuit-breaker-started",
		zap.Duration("check-interval", b.checkInterval),
		zap.Float64("trade-multiplier", b.tradeMultiplier),
		zap.Float64("min-absolute", b.minAbsolute),
		zap.Float64("hysteresis-ratio", b.hysteresisRatio))

	if err := b.CheckBalance(ctx); err != nil {
		b.logger.Error("initial-balance-check-failed", zap.Error(err))
	}

	go b.monitorLoop(ctx)
}

func (b *BalanceCircuitBreaker) monitorLoop(ctx context.Context) {
	ticker := time.NewTicker(b.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("circuit-breaker-stopped")
			return
		case <-ticker.C:
			if err := b.CheckBalance(ctx); err != nil {
				b.logger.Error("balance-check-error", zap.Error(err))
			}
		}
	}
}

// GetStatus returns current circuit breaker status.
func (b *BalanceCircuitBreaker) GetStatus() (status Status) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Status{
		BuysEnabled:      b.enabled.Load(),
		LastBalance:      b.lastBalance,
		LastCheck:        b.lastCheck,
		DisableThreshold: b.disableThreshold,
		EnableThreshold:  b.enableThreshold,
		AvgBuyCost:       average(b.recentBuys),
		RecentBuyCount:   len(b.recentBuys),
	}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
