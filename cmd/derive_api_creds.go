package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/polymarket-mirror/internal/app"
	"github.com/mselser95/polymarket-mirror/internal/clob"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var deriveAPICredsCmd = &cobra.Command{
	Use:   "derive-api-creds",
	Short: "Derive API credentials using L1 authentication (private key)",
	Long: `Uses PRIVATE_KEY to derive Polymarket API credentials via L1 authentication.
This retrieves the API KEY, SECRET, and PASSPHRASE needed for live trading.

The credentials will be printed - save them to your .env file:
  POLYMARKET_API_KEY=...
  POLYMARKET_SECRET=...
  POLYMARKET_PASSPHRASE=...`,
	RunE: runDeriveAPICreds,
}

//nolint:gochecknoglobals // Cobra boilerplate
var deriveNonce int64

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(deriveAPICredsCmd)
	deriveAPICredsCmd.Flags().Int64Var(&deriveNonce, "nonce", 0, "Nonce the credentials were created with")
}

func runDeriveAPICreds(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.PrivateKey == "" {
		return fmt.Errorf("PRIVATE_KEY is not set")
	}

	signer, err := clob.NewSigner(cfg.PrivateKey, cfg.FollowerAddress, cfg.SignatureType)
	if err != nil {
		return fmt.Errorf("create signer: %w", err)
	}

	client := clob.NewClient(&clob.Config{
		BaseURL:    cfg.CLOBURL,
		Signer:     signer,
		HTTPPolicy: app.NewPolicies(cfg).HTTP,
		Logger:     logger,
	})

	fmt.Printf("=== Deriving Polymarket API Credentials ===\n\n")
	fmt.Printf("EOA Address: %s\n", signer.Address())
	if cfg.FollowerAddress != "" {
		fmt.Printf("Proxy Address: %s\n", cfg.FollowerAddress)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	creds, err := client.DeriveAPIKey(ctx, deriveNonce)
	if err != nil {
		return err
	}

	fmt.Printf("POLYMARKET_API_KEY=%s\n", creds.APIKey)
	fmt.Printf("POLYMARKET_SECRET=%s\n", creds.Secret)
	fmt.Printf("POLYMARKET_PASSPHRASE=%s\n\n", creds.Passphrase)
	fmt.Printf("Save these to your .env file. They are bound to your private key.\n")

	return nil
}
