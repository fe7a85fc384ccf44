package wallet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// Reader is the balance oracle the tracker polls.
type Reader interface {
	USDCBalance(ctx context.Context, address string) (float64, error)
	Positions(ctx context.Context, address string) ([]types.Position, error)
}

// Snapshot is the last observed state of one account.
type Snapshot struct {
	Address        string    `json:"address"`
	USDCBalance    float64   `json:"usdc_balance"`
	Positions      int       `json:"positions"`
	PositionValue  float64   `json:"position_value"`
	PortfolioValue float64   `json:"portfolio_value"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Tracker periodically fetches balances of named accounts and updates Prometheus metrics.
type Tracker struct {
	reader       Reader
	accounts     map[string]string // account label -> address
	pollInterval time.Duration
	logger       *zap.Logger
}

// Config holds tracker configuration.
type Config struct {
	Reader       Reader
	Accounts     map[string]string
	PollInterval time.Duration
	Logger       *zap.Logger
}

// New creates a new wallet tracker.
func New(cfg *Config) (t *Tracker, err error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.Reader == nil {
		return nil, errors.New("reader cannot be nil")
	}

	if len(cfg.Accounts) == 0 {
		return nil, errors.New("at least one account is required")
	}

	if cfg.PollInterval <= 0 {
		return nil, errors.New("poll interval must be positive")
	}

	tracker := &Tracker{
		reader:       cfg.Reader,
		accounts:     cfg.Accounts,
		pollInterval: cfg.PollInterval,
		logger:       cfg.Logger,
	}

	return tracker, nil
}

// Run starts the tracker polling loop (blocking).
func (t *Tracker) Run(ctx context.Context) (err error) {
	t.logger.Info("wallet-tracker-starting",
		zap.Duration("poll-interval", t.pollInterval),
		zap.Int("accounts", len(t.accounts)))

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	t.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("wallet-tracker-stopping")
			return ctx.Err()
		case <-ticker.C:
			t.pollAll(ctx)
		}
	}
}

func (t *Tracker) pollAll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	for _, account := range t.accountNames() {
		_, err := t.Poll(ctx, account)
		if err != nil {
			t.logger.Error("poll-failed", zap.String("account", account), zap.Error(err))
		}
	}
}

// Poll performs a single polling cycle for one account and publishes its gauges.
func (t *Tracker) Poll(ctx context.Context, account string) (snap Snapshot, err error) {
	address, ok := t.accounts[account]
	if !ok {
		return Snapshot{}, fmt.Errorf("unknown account %q", account)
	}

	start := time.Now()
	defer func() {
		UpdateDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			UpdateErrorsTotal.WithLabelValues(account).Inc()
		}
	}()

	balCtx, balCancel := context.WithTimeout(ctx, 15*time.Second)
	defer balCancel()

	balance, err := t.reader.USDCBalance(balCtx, address)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get balance: %w", err)
	}

	posCtx, posCancel := context.WithTimeout(ctx, 15*time.Second)
	defer posCancel()

	positions, err := t.reader.Positions(posCtx, address)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get positions: %w", err)
	}

	snap = Summarize(address, balance, positions)
	snap.UpdatedAt = time.Now()

	USDCBalance.WithLabelValues(account).Set(snap.USDCBalance)
	ActivePositions.WithLabelValues(account).Set(float64(snap.Positions))
	TotalPositionValue.WithLabelValues(account).Set(snap.PositionValue)
	PortfolioValue.WithLabelValues(account).Set(snap.PortfolioValue)
	LastUpdateTimestamp.Set(float64(snap.UpdatedAt.Unix()))

	t.logger.Debug("poll-complete",
		zap.String("account", account),
		zap.Float64("usdc-balance", balance),
		zap.Int("position-count", len(positions)),
		zap.Duration("duration", time.Since(start)))

	return snap, nil
}

func (t *Tracker) accountNames() []string {
	names := make([]string, 0, len(t.accounts))
	for name := range t.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summarize aggregates a balance and a position list into a Snapshot.
func Summarize(address string, balance float64, positions []types.Position) Snapshot {
	value := 0.0
	for _, pos := range positions {
		value += pos.CurrentValue
	}

	return Snapshot{
		Address:        address,
		USDCBalance:    balance,
		Positions:      len(positions),
		PositionValue:  value,
		PortfolioValue: balance + value,
	}
}
