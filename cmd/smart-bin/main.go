package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/di"
	"github.com/campoos/backend-lixeira-app/internal/factory"
	"github.com/campoos/backend-lixeira-app/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingress ports.Ingress,
	store core.Store,
	notifier factory.Notifier,
) error {
	defer logger.Sync()

	// Start the HTTP server
	if err := ingress.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop accepting requests before releasing the backends
	if err := ingress.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	if err := notifier.Close(); err != nil {
		logger.Error("Failed to close notifier", zap.Error(err))
	}

	if err := store.Close(); err != nil {
		logger.Error("Failed to close store", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
