package storage

import (
	"context"
	"errors"

	"github.com/mselser95/polymarket-mirror/pkg/types"
)

// ErrTradeNotFound is returned when a trade id is not in the ledger.
var ErrTradeNotFound = errors.New("trade not found")

// TradeLedger stores the target's detected trades and their mirroring state.
type TradeLedger interface {
	// PendingTrades returns unprocessed trades with fewer than retryLimit attempts, oldest first.
	PendingTrades(ctx context.Context, retryLimit int) ([]types.TradeEvent, error)

	// GetTrade returns a single trade.
	GetTrade(ctx context.Context, id string) (*types.TradeEvent, error)

	// MarkProcessed closes a trade and records its attempt count.
	MarkProcessed(ctx context.Context, id string, retryCount int) error

	// IncrementRetry records a failed attempt without closing the trade.
	IncrementRetry(ctx context.Context, id string, retryCount int) error

	// Close releases the underlying connection.
	Close() error
}

// TradeWriter records detected trades. Existing ids are left untouched.
type TradeWriter interface {
	Insert(ctx context.Context, trade types.TradeEvent) error
}
