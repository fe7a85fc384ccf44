package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

// MemoryLedger implements TradeLedger in process memory. Trades are lost on restart.
type MemoryLedger struct {
	mu     sync.Mutex
	trades map[string]*types.TradeEvent
	logger *zap.Logger
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger(logger *zap.Logger) *MemoryLedger {
	logger.Info("memory-ledger-initialized")
	return &MemoryLedger{
		trades: make(map[string]*types.TradeEvent),
		logger: logger,
	}
}

// Add stores trade and returns its id. Missing ids and detection times are filled in.
func (m *MemoryLedger) Add(trade types.TradeEvent) string {
	if trade.ID == "" {
		trade.ID = uuid.New().String()
	}
	if trade.DetectedAt.IsZero() {
		trade.DetectedAt = time.Now()
	}

	m.mu.Lock()
	m.trades[trade.ID] = &trade
	m.mu.Unlock()

	return trade.ID
}

// PendingTrades implements TradeLedger.
func (m *MemoryLedger) PendingTrades(ctx context.Context, retryLimit int) ([]types.TradeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var trades []types.TradeEvent
	for _, trade := range m.trades {
		if !trade.Processed && trade.RetryCount < retryLimit {
			trades = append(trades, *trade)
		}
	}

	sort.Slice(trades, func(i, j int) bool {
		return trades[i].DetectedAt.Before(trades[j].DetectedAt)
	})

	return trades, nil
}

// GetTrade implements TradeLedger.
func (m *MemoryLedger) GetTrade(ctx context.Context, id string) (*types.TradeEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok {
		return nil, fmt.Errorf("get trade %s: %w", id, ErrTradeNotFound)
	}

	snapshot := *trade
	return &snapshot, nil
}

// MarkProcessed implements TradeLedger.
func (m *MemoryLedger) MarkProcessed(ctx context.Context, id string, retryCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok {
		return fmt.Errorf("mark trade processed %s: %w", id, ErrTradeNotFound)
	}
	trade.Processed = true
	trade.RetryCount = retryCount

	return nil
}

// IncrementRetry implements TradeLedger.
func (m *MemoryLedger) IncrementRetry(ctx context.Context, id string, retryCount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok {
		return fmt.Errorf("increment trade retry %s: %w", id, ErrTradeNotFound)
	}
	trade.RetryCount = retryCount

	return nil
}

// Close is a no-op for the memory ledger.
func (m *MemoryLedger) Close() error {
	m.logger.Info("closing-memory-ledger")
	return nil
}
