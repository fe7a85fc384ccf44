package cmd

import (
	"fmt"

	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the mirroring service",
	Long: `Starts the mirroring service, which will:
1. Poll the trade ledger for pending trades of the target trader
2. Snapshot balances and positions of both accounts
3. Mirror each trade on the follower wallet (buy, sell or merge)
4. Serve /health, /ready, /metrics and state endpoints on HTTP_PORT`,
	RunE: runService,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
