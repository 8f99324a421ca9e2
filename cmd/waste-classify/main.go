package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campoos/backend-lixeira-app/internal/adapters/cli"
	"github.com/campoos/backend-lixeira-app/internal/core"
	"github.com/campoos/backend-lixeira-app/internal/di"
	"github.com/campoos/backend-lixeira-app/internal/factory"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()
	if flags.InputFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: waste-classify -file <image> [flags]")
		os.Exit(2)
	}

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
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

func run(
	logger *zap.Logger,
	flags *di.CLIFlags,
	runner *cli.Runner,
	store core.Store,
	notifier factory.Notifier,
) error {
	defer logger.Sync()
	defer store.Close()
	defer notifier.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err := runner.ProcessFile(ctx, flags.InputFile)
	return err
}
