package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Shutdown stops the service: readiness drops first, then the executor and tracker are
// cancelled and awaited, and only then is the ledger closed. A trade in flight is still marked
// processed because the engine closes trades on a context detached from the app context.
// Calling Shutdown more than once is safe.
func (a *App) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("application-shutting-down")
		a.healthChecker.SetReady(false)
		a.cancel()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := a.httpServer.Shutdown(ctx)
		if err != nil {
			a.logger.Error("http-server-shutdown-error", zap.Error(err))
		}

		a.wg.Wait()

		err = a.components.Close()
		if err != nil {
			a.logger.Error("ledger-close-error", zap.Error(err))
		}

		a.logger.Info("application-shutdown-complete")
	})

	return nil
}
