package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/felixgeelhaar/flowstate/adapter/cli/block"
	"github.com/felixgeelhaar/flowstate/adapter/cli/checkin"
	"github.com/felixgeelhaar/flowstate/adapter/cli/habit"
	"github.com/felixgeelhaar/flowstate/adapter/cli/insights"
	"github.com/felixgeelhaar/flowstate/adapter/cli/mcp"
	"github.com/felixgeelhaar/flowstate/adapter/cli/notify"
	"github.com/felixgeelhaar/flowstate/adapter/cli/todo"
	"github.com/felixgeelhaar/flowstate/internal/app"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.LoggerFromEnv()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Update logger level based on config
	logger = observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cli.Version))
	cli.SetLogger(logger)

	// Try to initialize the full container
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
		// In development, fall back to a store that lives for this run only
		logger.Warn("failed to initialize container, using in-memory store", "error", err)
		memCfg := *cfg
		memCfg.Store = config.StoreMemory
		container, err = app.NewContainer(ctx, &memCfg, logger)
		if err != nil {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	}
	defer container.Close()

	// Set the CLI app
	cli.SetApp(cli.FromContainer(container))

	// Register commands
	cli.AddCommand(checkin.Cmd)
	cli.AddCommand(habit.Cmd)
	cli.AddCommand(todo.Cmd)
	cli.AddCommand(block.Cmd)
	cli.AddCommand(insights.Cmd)
	cli.AddCommand(notify.Cmd)
	cli.AddCommand(mcp.Cmd)

	// Execute CLI
	cli.Execute(ctx)
}
