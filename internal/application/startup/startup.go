// Package startup orchestrates engine initialization and graceful shutdown.
package startup

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/application/container"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/PulsePath/pulsetrack-go/internal/presentation/http/server"
	"github.com/PulsePath/pulsetrack-go/pkg/config"
)

const shutdownGrace = 10 * time.Second

// Initialize boots the engagement engine and blocks until shutdown
func Initialize() error {
	logger, err := logging.NewChanneledLogger(nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	phaseStart := time.Now()
	c, err := container.New(ctx, logger)
	if err != nil {
		logger.LogStartupPhase("container", time.Since(phaseStart), false)
		return fmt.Errorf("failed to build container: %w", err)
	}
	logger.LogStartupPhase("container", time.Since(phaseStart), true)

	phaseStart = time.Now()
	srv := server.New(config.Port, c)
	logger.LogStartupPhase("http_server", time.Since(phaseStart), true)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Startup().Info("PulseTrack engine ready", "port", config.Port)

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	// Teardown runs on the failure path too; scheduler goroutines and the
	// archive connection must not die with the process.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("HTTP server shutdown failed", "error", err)
	}

	c.Shutdown()
	logger.Shutdown().Info("Shutdown complete")

	closeErr := logger.Close()
	if serveErr != nil {
		return serveErr
	}
	return closeErr
}
