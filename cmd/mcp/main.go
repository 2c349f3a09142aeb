package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/felixgeelhaar/flowstate/internal/app"
	mcpinternal "github.com/felixgeelhaar/flowstate/internal/mcp"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = observability.NewRequestContext(ctx, observability.SurfaceMCP, "")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cli.Version))

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if err := container.Detector.Start(ctx); err != nil {
		logger.Error("failed to start trigger detector", "error", err)
		os.Exit(1)
	}

	cliApp := cli.FromContainer(container)

	if err := mcpinternal.Serve(ctx, cfg, cliApp, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
