package app

import (
	"context"
	"fmt"

	"github.com/mselser95/polymarket-mirror/internal/circuitbreaker"
	"github.com/mselser95/polymarket-mirror/internal/clob"
	"github.com/mselser95/polymarket-mirror/internal/execution"
	"github.com/mselser95/polymarket-mirror/internal/exposure"
	"github.com/mselser95/polymarket-mirror/internal/markets"
	"github.com/mselser95/polymarket-mirror/internal/mirror"
	"github.com/mselser95/polymarket-mirror/internal/orderbook"
	"github.com/mselser95/polymarket-mirror/internal/storage"
	"github.com/mselser95/polymarket-mirror/pkg/cache"
	"github.com/mselser95/polymarket-mirror/pkg/config"
	"github.com/mselser95/polymarket-mirror/pkg/retry"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/mselser95/polymarket-mirror/pkg/wallet"
	"go.uber.org/zap"
)

// Gateway is everything the service needs from the CLOB.
type Gateway interface {
	execution.OrderGateway
	orderbook.BookFetcher
	markets.MarketFetcher
}

// Components is the wired mirroring stack shared by the service and one-shot commands.
type Components struct {
	Ledger   storage.TradeLedger
	Oracle   *wallet.Client
	Gateway  Gateway
	Books    *orderbook.Analyzer
	Metadata *markets.CachedResolver
	Exposure *exposure.Ledger
	Engine   *mirror.Engine
	Breaker  *circuitbreaker.BalanceCircuitBreaker // nil when MIN_BALANCE_USD is 0
	Executor *Executor

	metadataCache *cache.RistrettoCache[types.MarketMetadata]
}

// Policies derives the retry policies from configuration.
type Policies struct {
	HTTP  retry.Policy
	Call  retry.Policy
	Build retry.Policy

	// Fetch wraps reads that the CLOB client already retries with HTTP.
	Fetch retry.Policy
}

// NewPolicies builds the retry policies.
func NewPolicies(cfg *config.Config) Policies {
	return Policies{
		HTTP:  retry.Exponential(cfg.HTTPMaxRetries+1, cfg.HTTPBaseBackoff, cfg.HTTPMaxBackoff, 0.2),
		Call:  retry.Fixed(cfg.CallMaxAttempts, cfg.CallRetryDelay),
		Build: retry.Fixed(cfg.BuildMaxAttempts, cfg.BuildRetryDelay),
		Fetch: retry.Fixed(1, 0),
	}
}

// Build wires every component from configuration.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (c *Components, err error) {
	err = cfg.ValidateAccounts()
	if err != nil {
		return nil, fmt.Errorf("validate accounts: %w", err)
	}

	policies := NewPolicies(cfg)

	gateway, err := NewGateway(cfg, policies, logger)
	if err != nil {
		return nil, fmt.Errorf("setup gateway: %w", err)
	}

	oracle, err := NewOracle(cfg, policies, logger)
	if err != nil {
		return nil, fmt.Errorf("setup balance oracle: %w", err)
	}

	ledger, err := NewLedger(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup trade ledger: %w", err)
	}

	metadataCache, err := cache.NewRistrettoCache[types.MarketMetadata](&cache.RistrettoConfig{
		Name:        "market-metadata",
		NumCounters: 10000,
		MaxCost:     1000,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		_ = ledger.Close()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	c = &Components{
		Ledger:        ledger,
		Oracle:        oracle,
		Gateway:       gateway,
		Books:         orderbook.NewAnalyzer(gateway, policies.Fetch, logger),
		Exposure:      exposure.NewLedger(),
		metadataCache: metadataCache,
	}

	c.Metadata = markets.NewCachedResolver(
		markets.NewMetadataResolver(gateway, policies.Fetch, logger),
		metadataCache,
		cfg.MetadataCacheTTL,
	)

	submitter := execution.NewSubmitter(&execution.SubmitterConfig{
		Gateway:     gateway,
		Exposure:    c.Exposure,
		BuildPolicy: policies.Build,
		CallPolicy:  policies.Call,
		Logger:      logger,
	})

	c.Engine = mirror.NewEngine(&mirror.Config{
		Metadata: c.Metadata,
		Books:    c.Books,
		Router:   execution.NewRouter(submitter, cfg.MakerWait, logger),
		Trades:   ledger,
		Exposure: c.Exposure,
		Settings: mirror.Settings{
			Amplification:      cfg.Amplification,
			MirrorSellFraction: cfg.MirrorSellFraction,
			SlippageTolerance:  cfg.SlippageTolerance,
			RetryLimit:         cfg.RetryLimit,
			Backoff:            mirror.DefaultBackoff(cfg.FastAttempts, cfg.OrderbookDelay),
			RetryDelay:         cfg.RetryDelay,
		},
		Logger: logger,
	})

	var gate BuyGate
	if cfg.MinBalanceUSD > 0 {
		c.Breaker, err = circuitbreaker.New(&circuitbreaker.Config{
			CheckInterval:   cfg.FetchInterval,
			TradeMultiplier: cfg.BreakerTradeMultiplier,
			MinAbsolute:     cfg.MinBalanceUSD,
			HysteresisRatio: cfg.BreakerHysteresisRatio,
			Fetcher:         oracle,
			Address:         cfg.FollowerAddress,
			Logger:          logger,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("create circuit breaker: %w", err)
		}
		gate = c.Breaker
	}

	c.Executor, err = NewExecutor(&ExecutorConfig{
		Ledger:          ledger,
		Oracle:          oracle,
		Mirror:          c.Engine,
		Gate:            gate,
		FollowerAddress: cfg.FollowerAddress,
		TargetAddress:   cfg.TargetAddress,
		FetchInterval:   cfg.FetchInterval,
		TooOld:          cfg.TooOldTimestamp,
		RetryLimit:      cfg.RetryLimit,
		Logger:          logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create executor: %w", err)
	}

	return c, nil
}

// Close releases the ledger and the cache.
func (c *Components) Close() error {
	if c.metadataCache != nil {
		c.metadataCache.Close()
	}
	return c.Ledger.Close()
}

// NewReader creates a CLOB client without signing capability.
func NewReader(cfg *config.Config, policies Policies, logger *zap.Logger) *clob.Client {
	return clob.NewClient(&clob.Config{
		BaseURL:         cfg.CLOBURL,
		MinCallInterval: cfg.CLOBMinCallInterval,
		HTTPPolicy:      policies.HTTP,
		Logger:          logger,
	})
}

// NewGateway creates the live CLOB client or, in paper mode, a client that never posts.
func NewGateway(cfg *config.Config, policies Policies, logger *zap.Logger) (Gateway, error) {
	if cfg.ExecutionMode != "live" {
		logger.Info("paper-mode-enabled",
			zap.String("note", "orders are signed with an ephemeral key and never sent"))
		paper, err := clob.NewPaperClient(NewReader(cfg, policies, logger))
		if err != nil {
			return nil, fmt.Errorf("create paper client: %w", err)
		}
		return paper, nil
	}

	signer, err := clob.NewSigner(cfg.PrivateKey, cfg.FollowerAddress, cfg.SignatureType)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	return clob.NewClient(&clob.Config{
		BaseURL: cfg.CLOBURL,
		Credentials: clob.Credentials{
			APIKey:     cfg.PolymarketAPIKey,
			Secret:     cfg.PolymarketSecret,
			Passphrase: cfg.PolymarketPassphrase,
		},
		Signer:          signer,
		MinCallInterval: cfg.CLOBMinCallInterval,
		HTTPPolicy:      policies.HTTP,
		Logger:          logger,
	}), nil
}

// NewOracle creates the wallet client used as balance oracle.
func NewOracle(cfg *config.Config, policies Policies, logger *zap.Logger) (*wallet.Client, error) {
	return wallet.NewClient(&wallet.ClientConfig{
		RPCURLs:     cfg.RPCURLs,
		USDCAddress: cfg.USDCContractAddress,
		DataAPIURL:  cfg.DataAPIURL,
		HTTPPolicy:  policies.HTTP,
		Logger:      logger,
	})
}

// NewLedger opens the trade ledger selected by STORAGE_MODE.
func NewLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (storage.TradeLedger, error) {
	if cfg.StorageMode == "postgres" {
		ledger, err := storage.NewPostgresLedger(ctx, &storage.PostgresConfig{
			DSN:    cfg.PostgresDSN(),
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres ledger: %w", err)
		}
		return ledger, nil
	}

	logger.Warn("memory-ledger-enabled",
		zap.String("note", "trades are not persisted and must be added in-process"))
	return storage.NewMemoryLedger(logger), nil
}
