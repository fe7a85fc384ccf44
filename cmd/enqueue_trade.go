package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/mselser95/polymarket-mirror/internal/storage"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var enqueueTradeCmd = &cobra.Command{
	Use:   "enqueue-trade",
	Short: "Record a target trade in the trade ledger",
	Long: `Writes one target trade into the postgres trade ledger so that the running
service, or mirror-trade, picks it up. Existing ids are left untouched.

Example:
  polymarket-mirror enqueue-trade --market 0xabc... --token 1234... --side BUY --size 100 --price 0.52`,
	Args: cobra.NoArgs,
	RunE: runEnqueueTrade,
}

//nolint:gochecknoglobals // Cobra boilerplate
var enqueueFlags struct {
	id     string
	market string
	token  string
	side   string
	size   float64
	price  float64
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(enqueueTradeCmd)

	flags := enqueueTradeCmd.Flags()
	flags.StringVar(&enqueueFlags.id, "id", "", "Trade id (random when empty)")
	flags.StringVar(&enqueueFlags.market, "market", "", "Market condition id")
	flags.StringVar(&enqueueFlags.token, "token", "", "Outcome token id")
	flags.StringVar(&enqueueFlags.side, "side", "", "BUY or SELL")
	flags.Float64Var(&enqueueFlags.size, "size", 0, "Trade size in shares")
	flags.Float64Var(&enqueueFlags.price, "price", 0, "Trade price")
}

// newManualTrade validates the flags and builds the trade to record.
func newManualTrade(id, market, token, side string, size, price float64, now time.Time) (types.TradeEvent, error) {
	if market == "" || token == "" {
		return types.TradeEvent{}, errors.New("--market and --token are required")
	}

	s := types.Side(strings.ToUpper(strings.TrimSpace(side)))
	if s != types.SideBuy && s != types.SideSell {
		return types.TradeEvent{}, fmt.Errorf("invalid --side %q: must be BUY or SELL", side)
	}
	if size <= 0 {
		return types.TradeEvent{}, fmt.Errorf("invalid --size %v: must be positive", size)
	}
	if price <= 0 || price >= 1 {
		return types.TradeEvent{}, fmt.Errorf("invalid --price %v: must be inside (0, 1)", price)
	}

	if id == "" {
		id = uuid.New().String()
	}

	return types.TradeEvent{
		ID:         id,
		MarketID:   market,
		TokenID:    token,
		Side:       s,
		Size:       size,
		Price:      price,
		USDCSize:   size * price,
		DetectedAt: now,
	}, nil
}

func runEnqueueTrade(cmd *cobra.Command, args []string) error {
	trade, err := newManualTrade(enqueueFlags.id, enqueueFlags.market, enqueueFlags.token,
		enqueueFlags.side, enqueueFlags.size, enqueueFlags.price, time.Now())
	if err != nil {
		return err
	}

	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.StorageMode != "postgres" {
		return errors.New("enqueue-trade requires STORAGE_MODE=postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ledger, err := app.NewLedger(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open trade ledger: %w", err)
	}
	defer func() {
		_ = ledger.Close()
	}()

	writer, ok := ledger.(storage.TradeWriter)
	if !ok {
		return errors.New("trade ledger does not accept new trades")
	}

	err = writer.Insert(ctx, trade)
	if err != nil {
		return fmt.Errorf("enqueue trade: %w", err)
	}

	logger.Info("trade-enqueued",
		zap.String("trade-id", trade.ID),
		zap.String("market-id", trade.MarketID),
		zap.String("token-id", trade.TokenID),
		zap.String("side", string(trade.Side)))
	fmt.Printf("Enqueued trade %s\n", trade.ID)

	return nil
}
