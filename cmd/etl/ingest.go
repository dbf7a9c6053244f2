package main

import (
	"os/signal"
	"syscall"

	"github.com/couchcryptid/river-gauge-etl/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

func ingestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion and exit",
		Long: `Ingest reads every export of the station under the data root, writes one
daily Parquet file per parameter and station_meta.json, then exits.
A non-zero exit status means the run failed and no metadata was written.`,
		Args: cobra.NoArgs,
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, _ []string) error {
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

	logger.Info("starting ingestion",
		"station_id", cfg.StationID,
		"data_root", cfg.DataRoot,
		"out_root", cfg.OutRoot,
		"start_date", cfg.StartDate,
	)
	meta, err := p.Run(ctx)
	if err != nil {
		logger.Error("ingestion failed", "error", err)
		return err
	}
	logger.Info("done",
		"metadata", p.MetadataPath(),
		"water_level_files", len(meta.WaterLevelFiles),
		"water_temperature_files", len(meta.WaterTemperatureFiles),
	)
	return nil
}
