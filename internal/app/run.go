package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("mode", a.cfg.ExecutionMode),
		zap.String("storage", a.cfg.StorageMode),
		zap.String("target", a.cfg.TargetAddress),
		zap.String("follower", a.cfg.FollowerAddress),
		zap.Float64("amplification", a.cfg.Amplification),
		zap.String("log-level", a.cfg.LogLevel))

	a.startComponents()

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Duration("fetch-interval", a.cfg.FetchInterval))

	return a.waitForShutdown()
}

func (a *App) startComponents() {
	a.spawn("http-server", func(context.Context) error {
		return a.httpServer.Start()
	})

	if a.components.Breaker != nil {
		a.components.Breaker.Start(a.ctx)
	}

	a.spawn("wallet-tracker", a.tracker.Run)
	a.spawn("executor", a.components.Executor.Run)
}

// spawn runs fn on its own goroutine, tracked by the shutdown wait group. Cancellation of the
// app context is not reported as an error.
func (a *App) spawn(name string, fn func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		err := fn(a.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("component-failed", zap.String("component", name), zap.Error(err))
			return
		}
		a.logger.Debug("component-stopped", zap.String("component", name))
	}()
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
