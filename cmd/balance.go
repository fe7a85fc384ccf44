package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/mselser95/polymarket-mirror/pkg/wallet"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show balances and positions of the follower and target",
	Long: `Display the current holdings of both mirrored accounts:
- USDC balance (read on-chain, with RPC fallback)
- Active positions from the data API
- Portfolio value (balance + position value)
- The ratio the mirroring engine uses to size buys`,
	RunE: runBalance,
}

//nolint:gochecknoglobals // Cobra boilerplate
var showPositions bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().BoolVarP(&showPositions, "positions", "p", true, "Show active positions")
}

func runBalance(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	err = cfg.ValidateAccounts()
	if err != nil {
		return err
	}

	oracle, err := app.NewOracle(cfg, app.NewPolicies(cfg), logger)
	if err != nil {
		return fmt.Errorf("create balance oracle: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	accounts := []struct {
		label   string
		address string
	}{
		{"Follower", cfg.FollowerAddress},
		{"Target", cfg.TargetAddress},
	}

	snapshots := make([]wallet.Snapshot, 0, len(accounts))
	for _, account := range accounts {
		balance, balanceErr := oracle.USDCBalance(ctx, account.address)
		if balanceErr != nil {
			return fmt.Errorf("get %s balance: %w", account.label, balanceErr)
		}

		positions, positionsErr := oracle.Positions(ctx, account.address)
		if positionsErr != nil {
			return fmt.Errorf("get %s positions: %w", account.label, positionsErr)
		}

		snap := wallet.Summarize(account.address, balance, positions)
		snapshots = append(snapshots, snap)

		fmt.Printf("=== %s ===\n", account.label)
		fmt.Printf("Address:         %s\n", snap.Address)
		fmt.Printf("USDC balance:    $%.2f\n", snap.USDCBalance)
		fmt.Printf("Positions:       %d ($%.2f)\n", snap.Positions, snap.PositionValue)
		fmt.Printf("Portfolio value: $%.2f\n\n", snap.PortfolioValue)

		if showPositions && len(positions) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "OUTCOME\tSIZE\tAVG\tCUR\tVALUE\tMARKET")
			for _, pos := range positions {
				fmt.Fprintf(w, "%s\t%.2f\t%.4f\t%.4f\t$%.2f\t%s\n",
					pos.Outcome, pos.Size, pos.AvgPrice, pos.CurPrice, pos.CurrentValue, pos.Title)
			}
			_ = w.Flush()
			fmt.Println()
		}
	}

	if snapshots[1].USDCBalance > 0 {
		fmt.Printf("Buy sizing ratio (follower / target balance): %.4f\n",
			snapshots[0].USDCBalance/snapshots[1].USDCBalance)
	}

	return nil
}
