package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/types"
	"go.uber.org/zap"
)

func TestMemoryLedger_PendingOldestFirst(t *testing.T) {
	ledger := NewMemoryLedger(zap.NewNop())
	now := time.Now()

	ledger.Add(types.TradeEvent{ID: "late", DetectedAt: now.Add(time.Minute)})
	ledger.Add(types.TradeEvent{ID: "early", DetectedAt: now})
	ledger.Add(types.TradeEvent{ID: "done", DetectedAt: now, Processed: true})
	ledger.Add(types.TradeEvent{ID: "exhausted", DetectedAt: now, RetryCount: 3})

	trades, err := ledger.PendingTrades(context.Background(), 3)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(trades) != 2 {
		t.Fatalf("expected 2 pending trades, got %d", len(trades))
	}
	if trades[0].ID != "early" || trades[1].ID != "late" {
		t.Errorf("expected oldest first, got %s, %s", trades[0].ID, trades[1].ID)
	}
}

func TestMemoryLedger_AddAssignsID(t *testing.T) {
	ledger := NewMemoryLedger(zap.NewNop())

	id := ledger.Add(types.TradeEvent{Side: types.SideBuy})
	if id == "" {
		t.Fatal("expected generated id")
	}

	trade, err := ledger.GetTrade(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if trade.DetectedAt.IsZero() {
		t.Error("expected detection time to be set")
	}
}

func TestMemoryLedger_MarkProcessed(t *testing.T) {
	ledger := NewMemoryLedger(zap.NewNop())
	id := ledger.Add(types.TradeEvent{RetryCount: 1})

	if err := ledger.MarkProcessed(context.Background(), id, 2); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	trade, _ := ledger.GetTrade(context.Background(), id)
	if !trade.Processed || trade.RetryCount != 2 {
		t.Errorf("unexpected trade state: %+v", trade)
	}

	trades, _ := ledger.PendingTrades(context.Background(), 10)
	if len(trades) != 0 {
		t.Errorf("expected no pending trades, got %d", len(trades))
	}
}

func TestMemoryLedger_IncrementRetry(t *testing.T) {
	ledger := NewMemoryLedger(zap.NewNop())
	id := ledger.Add(types.TradeEvent{})

	if err := ledger.IncrementRetry(context.Background(), id, 3); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	trades, _ := ledger.PendingTrades(context.Background(), 3)
	if len(trades) != 0 {
		t.Errorf("expected trade to leave the pending set at the retry limit")
	}
}

func TestMemoryLedger_UnknownTrade(t *testing.T) {
	ledger := NewMemoryLedger(zap.NewNop())
	ctx := context.Background()

	if _, err := ledger.GetTrade(ctx, "missing"); !errors.Is(err, ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
	if err := ledger.MarkProcessed(ctx, "missing", 1); !errors.Is(err, ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
	if err := ledger.IncrementRetry(ctx, "missing", 1); !errors.Is(err, ErrTradeNotFound) {
		t.Errorf("expected ErrTradeNotFound, got %v", err)
	}
}
