// Package signal handles OS signals and gracefully exits.
// It's used in an ErrGroup to signal exit to other goroutines.
package signal

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run will be run in an ErrGroup supervisor.
func Run(ctx context.Context, cancel context.CancelFunc, logger *zap.Logger) error {
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signalChannel:
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		cancel()
	case <-ctx.Done():
		logger.Info("signal: done")
		return ctx.Err()
	}

	return nil
}
