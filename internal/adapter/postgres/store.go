// Package postgres upserts daily aggregates and station metadata into
// PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS river_station (
    station_id   INTEGER PRIMARY KEY,
    station_name TEXT,
    river        TEXT,
    time_ref     TEXT,
    easting      DOUBLE PRECISION,
    northing     DOUBLE PRECISION,
    coord_ref    TEXT,
    gauge_zero   TEXT,
    raw_meta     JSONB NOT NULL DEFAULT '{}'::jsonb,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS river_daily (
    station_id  INTEGER NOT NULL,
    parameter   TEXT NOT NULL,
    date        DATE NOT NULL,
    count       INTEGER NOT NULL,
    mean        DOUBLE PRECISION NOT NULL,
    min         DOUBLE PRECISION,
    max         DOUBLE PRECISION,
    status_mode TEXT,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (station_id, parameter, date)
);`

const upsertStation = `INSERT INTO river_station (station_id, station_name, river, time_ref, easting, northing, coord_ref, gauge_zero, raw_meta, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW())
ON CONFLICT (station_id) DO UPDATE
SET station_name = EXCLUDED.station_name,
    river = EXCLUDED.river,
    time_ref = EXCLUDED.time_ref,
    easting = EXCLUDED.easting,
    northing = EXCLUDED.northing,
    coord_ref = EXCLUDED.coord_ref,
    gauge_zero = EXCLUDED.gauge_zero,
    raw_meta = EXCLUDED.raw_meta,
    updated_at = NOW()`

const upsertDaily = `INSERT INTO river_daily (station_id, parameter, date, count, mean, min, max, status_mode, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
ON CONFLICT (station_id, parameter, date) DO UPDATE
SET count = EXCLUDED.count,
    mean = EXCLUDED.mean,
    min = EXCLUDED.min,
    max = EXCLUDED.max,
    status_mode = EXCLUDED.status_mode,
    updated_at = NOW()`

// Store writes daily batches to PostgreSQL. It implements pipeline.Loader.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewStore connects to the database at url and makes sure the tables exist.
func NewStore(ctx context.Context, url string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool, logger: logger}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the station and daily tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// LoadDaily upserts the station row and every daily record of the batch in a
// single round trip. Batches without a station number are skipped, since
// every row is keyed by it.
func (s *Store) LoadDaily(ctx context.Context, batch domain.DailyBatch) error {
	if batch.Station.StationID == nil {
		s.logger.Warn("batch has no station id, skipping database load", "parameter", batch.Parameter)
		return nil
	}

	queued := &pgx.Batch{}
	queued.Queue(upsertStation, stationArgs(batch.Station)...)
	for _, r := range batch.Records {
		args, err := dailyArgs(*batch.Station.StationID, r)
		if err != nil {
			return err
		}
		queued.Queue(upsertDaily, args...)
	}

	res := s.pool.SendBatch(ctx, queued)
	defer res.Close()

	for i := 0; i < queued.Len(); i++ {
		if _, err := res.Exec(); err != nil {
			return fmt.Errorf("upsert %s rows: %w", batch.Parameter, err)
		}
	}

	s.logger.Info("upserted daily records", "parameter", batch.Parameter, "count", len(batch.Records))
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func stationArgs(m domain.StationMetadata) []any {
	raw := m.RawMetadata
	if raw == nil {
		raw = map[string]string{}
	}
	return []any{
		*m.StationID,
		m.StationName,
		m.River,
		m.TimeReference,
		m.Easting,
		m.Northing,
		m.CoordinateReferenceSystem,
		m.GaugeZero,
		raw,
	}
}

// dailyArgs keys a record by stationID rather than its own StationID, which
// is the same value taken from the group's header.
func dailyArgs(stationID int32, r domain.DailyRecord) ([]any, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedDate, r.Date)
	}
	return []any{
		stationID,
		string(r.Parameter),
		date,
		r.Count,
		r.Mean,
		r.Min,
		r.Max,
		r.StatusMode,
	}, nil
}
