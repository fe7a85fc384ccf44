// Package app wires the mirroring service and runs its lifecycle.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mselser95/polymarket-mirror/pkg/config"
	"github.com/mselser95/polymarket-mirror/pkg/healthprobe"
	"github.com/mselser95/polymarket-mirror/pkg/httpserver"
	"github.com/mselser95/polymarket-mirror/pkg/wallet"
	"go.uber.org/zap"
)

// heartbeatMaxStale is how long the executor may go without finishing a pass before /ready
// reports the service as not ready.
const heartbeatMaxStale = 5 * time.Minute

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	components    *Components
	tracker       *wallet.Tracker
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	shutdownOnce  sync.Once
}

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	components, err := Build(ctx, cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build components: %w", err)
	}

	healthChecker := healthprobe.New(heartbeatMaxStale)
	components.Executor.heartbeat = healthChecker.Beat

	tracker, err := wallet.New(&wallet.Config{
		Reader: components.Oracle,
		Accounts: map[string]string{
			"follower": cfg.FollowerAddress,
			"target":   cfg.TargetAddress,
		},
		PollInterval: time.Minute,
		Logger:       logger,
	})
	if err != nil {
		_ = components.Close()
		cancel()
		return nil, fmt.Errorf("create wallet tracker: %w", err)
	}

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    setupHTTPServer(cfg, logger, healthChecker, components),
		components:    components,
		tracker:       tracker,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	components *Components,
) *httpserver.Server {
	serverCfg := &httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		Exposure:      components.Exposure,
	}
	if components.Breaker != nil {
		serverCfg.Breaker = components.Breaker
	}

	return httpserver.New(serverCfg)
}
