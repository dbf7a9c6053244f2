package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	kafkaadapter "github.com/couchcryptid/river-gauge-etl/internal/adapter/kafka"
	"github.com/couchcryptid/river-gauge-etl/internal/adapter/localfs"
	"github.com/couchcryptid/river-gauge-etl/internal/adapter/objectstore"
	"github.com/couchcryptid/river-gauge-etl/internal/adapter/parquet"
	"github.com/couchcryptid/river-gauge-etl/internal/adapter/postgres"
	"github.com/couchcryptid/river-gauge-etl/internal/config"
	"github.com/couchcryptid/river-gauge-etl/internal/observability"
	"github.com/couchcryptid/river-gauge-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

// loadConfig reads the environment, applies flag overrides, and resolves the
// input and output roots to absolute paths.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"data-root", &cfg.DataRoot},
		{"out-root", &cfg.OutRoot},
		{"station-id", &cfg.StationID},
		{"start-date", &cfg.StartDate},
		{"mirror-to", &cfg.MirrorDir},
	}
	for _, o := range overrides {
		if !cmd.Flags().Changed(o.flag) {
			continue
		}
		v, err := cmd.Flags().GetString(o.flag)
		if err != nil {
			return nil, err
		}
		*o.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DataRoot, err = filepath.Abs(cfg.DataRoot); err != nil {
		return nil, fmt.Errorf("resolve data root: %w", err)
	}
	if cfg.OutRoot, err = filepath.Abs(cfg.OutRoot); err != nil {
		return nil, fmt.Errorf("resolve out root: %w", err)
	}
	if cfg.MirrorDir != "" {
		if cfg.MirrorDir, err = filepath.Abs(cfg.MirrorDir); err != nil {
			return nil, fmt.Errorf("resolve mirror directory: %w", err)
		}
		if err := checkMirrorDir(cfg.OutRoot, cfg.MirrorDir); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// checkMirrorDir rejects a mirror directory at or below the output root; the
// copy would otherwise walk into its own destination.
func checkMirrorDir(outRoot, mirrorDir string) error {
	rel, err := filepath.Rel(outRoot, mirrorDir)
	if err != nil {
		return fmt.Errorf("resolve mirror directory: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return errors.New("mirror directory must be outside the output root")
}

// closer releases the connections opened by buildPipeline.
type closer func()

// buildPipeline wires the Parquet writer and every configured sink and mirror.
func buildPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, closer, error) {
	var (
		loaders []pipeline.Loader
		mirrors []pipeline.Mirror
		cleanup []func()
	)
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	if cfg.KafkaEnabled() {
		w := kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, w)
		cleanup = append(cleanup, func() {
			if err := w.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		})
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.PostgresEnabled() {
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		loaders = append(loaders, store)
		cleanup = append(cleanup, store.Close)
		logger.Info("postgres sink enabled")
	}

	if cfg.MirrorDir != "" {
		if err := checkMirrorDir(cfg.OutRoot, cfg.MirrorDir); err != nil {
			closeAll()
			return nil, nil, err
		}
		mirrors = append(mirrors, localfs.NewLocalMirror(cfg.MirrorDir))
	}

	if cfg.MirrorBucket != "" {
		m, err := objectstore.NewMirror(cfg, logger)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		mirrors = append(mirrors, m)
		logger.Info("object store mirror enabled", "destination", m.Destination())
	}

	p := pipeline.New(pipeline.Options{
		DataRoot:      cfg.DataRoot,
		OutRoot:       cfg.OutRoot,
		StationID:     cfg.StationID,
		StartDate:     cfg.StartDate,
		ProgressEvery: cfg.ProgressEvery,
	}, parquet.NewWriter(), logger, metrics,
		pipeline.WithLoaders(loaders...),
		pipeline.WithMirrors(mirrors...),
	)
	return p, closeAll, nil
}
