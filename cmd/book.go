package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/mselser95/polymarket-mirror/internal/orderbook"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var bookCmd = &cobra.Command{
	Use:   "book <token-id>",
	Short: "Show the best bid and ask of a token",
	Long: `Fetches the order book of one outcome token from the CLOB and prints the
top of book the mirroring engine would price against.

Example:
  polymarket-mirror book 21742633143463906290569050155826241533067272736897614950488156847949938836455`,
	Args: cobra.ExactArgs(1),
	RunE: runBook,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(bookCmd)
}

func runBook(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	policies := app.NewPolicies(cfg)
	analyzer := orderbook.NewAnalyzer(app.NewReader(cfg, policies, logger), policies.Fetch, logger)

	quote, err := analyzer.Top(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch book: %w", err)
	}

	fmt.Printf("Token: %s\n", args[0])
	if quote.Bid != nil {
		fmt.Printf("Best bid: %.4f x %.2f\n", quote.Bid.Price, quote.Bid.Size)
	} else {
		fmt.Printf("Best bid: none\n")
	}
	if quote.Ask != nil {
		fmt.Printf("Best ask: %.4f x %.2f\n", quote.Ask.Price, quote.Ask.Size)
	} else {
		fmt.Printf("Best ask: none\n")
	}
	if quote.Bid != nil && quote.Ask != nil {
		fmt.Printf("Spread:   %.4f\n", quote.Ask.Price-quote.Bid.Price)
	}

	return nil
}
