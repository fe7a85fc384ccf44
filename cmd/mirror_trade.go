package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/mselser95/polymarket-mirror/internal/mirror"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var mirrorTradeCmd = &cobra.Command{
	Use:   "mirror-trade <trade-id>",
	Short: "Mirror a single pending trade and exit",
	Long: `Loads one trade from the trade ledger and runs it through the mirroring
engine once, ignoring the retry limit. Useful for replaying a trade that was
deferred. Requires STORAGE_MODE=postgres to see trades written by the detector.

Use --condition to force buy, sell or merge instead of selecting it from the
two accounts' positions.

Example:
  polymarket-mirror mirror-trade 6f1c2d0e-0000-4000-8000-000000000000
  polymarket-mirror mirror-trade 6f1c2d0e-0000-4000-8000-000000000000 --condition sell`,
	Args: cobra.ExactArgs(1),
	RunE: runMirrorTrade,
}

//nolint:gochecknoglobals // Cobra boilerplate
var conditionOverride string

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(mirrorTradeCmd)
	mirrorTradeCmd.Flags().StringVar(&conditionOverride, "condition", "",
		"Force the mirror condition (buy, sell or merge)")
}

// parseConditionFlag returns nil when no override was given.
func parseConditionFlag(s string) (mirror.Condition, error) {
	if s == "" {
		return nil, nil
	}
	return mirror.ParseCondition(s)
}

func runMirrorTrade(cmd *cobra.Command, args []string) error {
	cond, err := parseConditionFlag(conditionOverride)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build components: %w", err)
	}
	defer func() {
		_ = components.Close()
	}()

	ran, err := components.Executor.ExecuteTrade(ctx, args[0], cond)
	if err != nil {
		return fmt.Errorf("mirror trade: %w", err)
	}

	if !ran {
		fmt.Printf("Trade %s was closed without trading (too old, unsupported or buys gated)\n", args[0])
		return nil
	}

	fmt.Printf("Trade %s mirrored (mode: %s)\n", args[0], cfg.ExecutionMode)
	for tokenID, shares := range components.Exposure.Snapshot() {
		fmt.Printf("  %s: %.4f shares\n", tokenID, shares)
	}

	return nil
}
