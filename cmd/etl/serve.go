package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/river-gauge-etl/internal/adapter/http"
	"github.com/couchcryptid/river-gauge-etl/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/river-gauge-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Ingest on a schedule and expose health and metrics endpoints",
		Long: `Serve runs an ingestion immediately and then every INGEST_INTERVAL, while
serving /healthz, /readyz, /metrics, GET /runs/last, and POST /runs on HTTP_ADDR.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, closeSinks, err := buildPipeline(ctx, cfg, logger, metrics)
	if err != nil {
		return err
	}
	defer closeSinks()

	scheduler := pipeline.NewScheduler(p, cfg.IngestInterval, nil, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, scheduler, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start the ingestion schedule.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Run(ctx); err != nil {
			logger.Error("scheduler error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-done:
	case <-shutdownCtx.Done():
		logger.Warn("ingestion run still in progress at shutdown deadline")
	}

	logger.Info("shutdown complete")
	return nil
}
