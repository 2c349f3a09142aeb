package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/flowstate/adapter/cli"
	"github.com/felixgeelhaar/flowstate/internal/app"
	"github.com/felixgeelhaar/flowstate/pkg/config"
	"github.com/felixgeelhaar/flowstate/pkg/observability"
)

func main() {
	// Setup logger
	logger := observability.LoggerFromEnv()

	logger.Info("starting flowstate worker")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = observability.NewRequestContext(ctx, observability.SurfaceWorker, "")

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
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

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// Trigger checks run on their own intervals
	if err := container.Detector.Start(ctx); err != nil {
		logger.Error("failed to start trigger detector", "error", err)
		os.Exit(1)
	}
	container.Health.Register("detector", observability.RunningChecker("detector", container.Detector.IsRunning))

	// Insights refresh runs on a calendar schedule
	jobs, err := app.NewJobs(container.Insights, cfg.InsightsRefreshSchedule, logger)
	if err != nil {
		logger.Error("failed to schedule jobs", "error", err)
		os.Exit(1)
	}

	// Relay stored events to RabbitMQ
	if container.Outbox != nil {
		if err := jobs.AddOutboxCleanup(container.OutboxRepo, cfg.OutboxRetention, container.Clock); err != nil {
			logger.Error("failed to schedule outbox cleanup", "error", err)
			os.Exit(1)
		}
		container.Outbox.Start(ctx)
		container.Health.Register("outbox", observability.RunningChecker("outbox", container.Outbox.IsRunning))
	}

	jobs.Start(ctx)
	container.Health.Register("jobs", observability.RunningChecker("jobs", jobs.IsRunning))

	if cfg.WorkerHealthAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			response := map[string]any{
				"status":                "ok",
				"detector_running":      container.Detector.IsRunning(),
				"triggers":              container.Detector.States(container.Clock.Now()),
				"active_notifications":  len(container.Notifications.Notifications()),
				"pending_snoozes":       container.Notifications.PendingSnoozes(),
				"next_insights_refresh": jobs.NextInsightsRefresh(),
			}
			if container.Outbox != nil {
				response["outbox"] = container.Outbox.GetStats()
			}
			if report, ok := container.Insights.Latest(); ok {
				response["last_insights_at"] = report.GeneratedAt
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(response)
		})

		mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
			checkCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			health := container.Health.GetOverallHealth(checkCtx)
			w.Header().Set("Content-Type", "application/json")
			if health.Status == observability.HealthStatusUnhealthy {
				w.WriteHeader(http.StatusServiceUnavailable)
			}
			_ = json.NewEncoder(w).Encode(health)
		})

		healthSrv := &http.Server{
			Addr:              cfg.WorkerHealthAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			logger.Info("health server starting", "addr", cfg.WorkerHealthAddr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := healthSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown error", "error", err)
			}
		}()
	}

	// Wait for shutdown
	<-ctx.Done()
	logger.Info("shutting down worker")

	jobs.Stop()
	container.Detector.Stop()
	if container.Outbox != nil {
		container.Outbox.Stop()
	}
	logger.Info("worker stopped")

	fmt.Println("Goodbye!")
}
