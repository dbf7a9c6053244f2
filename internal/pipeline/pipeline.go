package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/adapter/localfs"
	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/couchcryptid/river-gauge-etl/internal/observability"
)

// ErrNoInputFiles is returned when neither parameter directory holds an
// export for the requested station.
var ErrNoInputFiles = errors.New("no input files")

const (
	dailyDir     = "daily"
	metadataFile = "station_meta.json"
)

// Group is one parameter directory under the data root.
type Group struct {
	Parameter domain.Parameter
	Subdir    string
}

// Groups lists the parameter directories in processing order.
var Groups = []Group{
	{Parameter: domain.ParameterWaterLevel, Subdir: "fluesse-wasserstand"},
	{Parameter: domain.ParameterWaterTemperature, Subdir: "fluesse-wassertemperatur"},
}

// ArtifactWriter persists the daily records of one group.
type ArtifactWriter interface {
	WriteDaily(path string, records []domain.DailyRecord) error
}

// Loader receives the finished records of a group after its artifact is written.
type Loader interface {
	LoadDaily(ctx context.Context, batch domain.DailyBatch) error
}

// Mirror copies the output tree somewhere else after a successful run.
type Mirror interface {
	Mirror(ctx context.Context, root string) error
	Destination() string
}

// ProgressFunc is called every Options.ProgressEvery kept rows of a file.
type ProgressFunc func(group domain.Parameter, file string, rows int)

// Options are the parameters of one ingestion run.
type Options struct {
	DataRoot      string
	OutRoot       string
	StationID     string
	StartDate     string // YYYY-MM-DD; earlier rows are dropped
	ProgressEvery int
}

// Option configures optional collaborators of a Pipeline.
type Option func(*Pipeline)

// WithLoaders adds sinks that receive every group's records.
func WithLoaders(loaders ...Loader) Option {
	return func(p *Pipeline) { p.loaders = append(p.loaders, loaders...) }
}

// WithMirrors adds destinations the output tree is copied to.
func WithMirrors(mirrors ...Mirror) Option {
	return func(p *Pipeline) { p.mirrors = append(p.mirrors, mirrors...) }
}

// WithProgress replaces the default progress logging.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// Pipeline turns a station's exports into daily artifacts and run metadata.
// Runs are strictly sequential: one file at a time, one group at a time.
type Pipeline struct {
	opts     Options
	writer   ArtifactWriter
	loaders  []Loader
	mirrors  []Mirror
	progress ProgressFunc
	logger   *slog.Logger
	metrics  *observability.Metrics
	last     atomic.Pointer[domain.RunMetadata]
}

// New creates a Pipeline for the given run parameters.
func New(opts Options, writer ArtifactWriter, logger *slog.Logger, metrics *observability.Metrics, options ...Option) *Pipeline {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100000
	}
	p := &Pipeline{
		opts:    opts,
		writer:  writer,
		logger:  logger,
		metrics: metrics,
	}
	p.progress = p.logProgress
	for _, o := range options {
		o(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("no ingestion run has completed yet")
	}
	return nil
}

// LastRun returns the metadata of the most recent successful run.
func (p *Pipeline) LastRun() (domain.RunMetadata, bool) {
	meta := p.last.Load()
	if meta == nil {
		return domain.RunMetadata{}, false
	}
	return *meta, true
}

// ArtifactPath returns where the daily artifact of a group is written.
func (p *Pipeline) ArtifactPath(g Group) string {
	return ArtifactPath(p.opts.OutRoot, p.opts.StationID, g)
}

// MetadataPath returns where the run metadata is written.
func (p *Pipeline) MetadataPath() string {
	return MetadataPath(p.opts.OutRoot)
}

// ArtifactPath returns "{outRoot}/daily/station_{id}_{parameter}_daily.parquet".
func ArtifactPath(outRoot, stationID string, g Group) string {
	name := fmt.Sprintf("station_%s_%s_daily.parquet", stationID, g.Parameter)
	return filepath.Join(outRoot, dailyDir, name)
}

// MetadataPath returns "{outRoot}/station_meta.json".
func MetadataPath(outRoot string) string {
	return filepath.Join(outRoot, metadataFile)
}

// Run ingests every group that has input files, writes the run metadata, and
// mirrors the output tree. Any failure aborts the run; an artifact is only
// replaced once it has been written completely.
func (p *Pipeline) Run(ctx context.Context) (domain.RunMetadata, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	meta, err := p.run(ctx)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		p.metrics.Runs.WithLabelValues("error").Inc()
		return domain.RunMetadata{}, err
	}

	p.metrics.Runs.WithLabelValues("success").Inc()
	p.metrics.LastSuccessEpoch.SetToCurrentTime()
	p.last.Store(&meta)
	p.logger.Info("ingestion run complete",
		"station_id", p.opts.StationID,
		"out_root", p.opts.OutRoot,
		"duration", time.Since(start),
	)
	return meta, nil
}

func (p *Pipeline) run(ctx context.Context) (domain.RunMetadata, error) {
	inputs := make(map[domain.Parameter][]string, len(Groups))
	total := 0
	for _, g := range Groups {
		files, err := localfs.ListStationFiles(filepath.Join(p.opts.DataRoot, g.Subdir), p.opts.StationID)
		if err != nil {
			return domain.RunMetadata{}, fmt.Errorf("list %s files: %w", g.Parameter, err)
		}
		inputs[g.Parameter] = files
		total += len(files)
	}
	if total == 0 {
		return domain.RunMetadata{}, fmt.Errorf("%w for station %s under %s", ErrNoInputFiles, p.opts.StationID, p.opts.DataRoot)
	}

	if err := os.MkdirAll(filepath.Join(p.opts.OutRoot, dailyDir), 0o755); err != nil {
		return domain.RunMetadata{}, fmt.Errorf("creating output directory: %w", err)
	}

	meta := domain.NewRunMetadata()
	for _, g := range Groups {
		files := inputs[g.Parameter]
		if len(files) == 0 {
			p.logger.Info("no files for group, skipping", "group", g.Parameter, "dir", g.Subdir)
			continue
		}

		batch, err := p.ingestGroup(ctx, g, files)
		if err != nil {
			return domain.RunMetadata{}, fmt.Errorf("ingest %s: %w", g.Parameter, err)
		}

		station := batch.Station
		meta.Station = &station
		switch g.Parameter {
		case domain.ParameterWaterLevel:
			meta.WaterLevelFiles = files
		case domain.ParameterWaterTemperature:
			meta.WaterTemperatureFiles = files
		}
	}

	if err := p.writeMetadata(meta); err != nil {
		return domain.RunMetadata{}, err
	}

	for _, m := range p.mirrors {
		if err := m.Mirror(ctx, p.opts.OutRoot); err != nil {
			return domain.RunMetadata{}, err
		}
		p.logger.Info("mirrored outputs", "destination", m.Destination())
	}
	return meta, nil
}

// ingestGroup streams the group's files in order, writes its artifact, and
// hands the records to the loaders.
func (p *Pipeline) ingestGroup(ctx context.Context, g Group, files []string) (domain.DailyBatch, error) {
	p.logger.Info("processing group", "group", g.Parameter, "files", len(files))

	station := domain.NewStationMetadata()
	agg := domain.NewAggregator(p.opts.StartDate)
	parameter := domain.ParameterUnknown

	for _, file := range files {
		detected, err := p.ingestFile(g, file, station, agg)
		if err != nil {
			return domain.DailyBatch{}, err
		}
		if detected == "" {
			continue
		}
		if parameter != domain.ParameterUnknown && detected != parameter {
			p.logger.Warn("parameter differs between files of one group",
				"group", g.Parameter, "path", file, "previous", parameter, "detected", detected)
		}
		parameter = detected
	}

	batch := domain.DailyBatch{
		Station:   *station,
		Parameter: parameter,
		Records:   agg.Records(station.StationID, parameter),
	}

	path := p.ArtifactPath(g)
	p.logger.Info("writing daily rows", "group", g.Parameter, "rows", len(batch.Records), "dates_seen", agg.Len())
	if err := p.writer.WriteDaily(path, batch.Records); err != nil {
		return domain.DailyBatch{}, fmt.Errorf("write artifact: %w", err)
	}
	p.metrics.DaysEmitted.WithLabelValues(string(g.Parameter)).Add(float64(len(batch.Records)))
	p.logger.Info("daily artifact written", "group", g.Parameter, "path", path)

	for _, l := range p.loaders {
		if err := l.LoadDaily(ctx, batch); err != nil {
			return domain.DailyBatch{}, fmt.Errorf("load daily records: %w", err)
		}
	}
	return batch, nil
}

// ingestFile folds one export into agg and station. It returns the parameter
// named by the file's table header, or "" when the file has none.
func (p *Pipeline) ingestFile(g Group, file string, station *domain.StationMetadata, agg *domain.Aggregator) (domain.Parameter, error) {
	p.logger.Info("processing file", "group", g.Parameter, "path", file)

	label := string(g.Parameter)
	parser := domain.NewFileParser(station)
	var kept, skipped, beforeStart, nulls int

	for line, err := range localfs.Lines(file) {
		if err != nil {
			return "", err
		}

		inTable := parser.InTable()
		m, ok := parser.ParseLine(line)
		if !ok {
			if inTable && strings.TrimSpace(line) != "" {
				skipped++
			}
			continue
		}

		accepted, err := agg.Add(m)
		if err != nil {
			return "", fmt.Errorf("%s: %w", file, err)
		}
		if !accepted {
			beforeStart++
			continue
		}

		kept++
		if m.Value == nil {
			nulls++
		}
		if kept%p.opts.ProgressEvery == 0 {
			p.progress(g.Parameter, file, kept)
		}
	}

	p.metrics.FilesProcessed.WithLabelValues(label).Inc()
	p.metrics.Rows.WithLabelValues(label, "parsed").Add(float64(kept))
	p.metrics.Rows.WithLabelValues(label, "skipped").Add(float64(skipped))
	p.metrics.Rows.WithLabelValues(label, "before_start").Add(float64(beforeStart))
	p.metrics.NullValues.WithLabelValues(label).Add(float64(nulls))

	if !parser.InTable() {
		p.logger.Warn("no table header found, file contributed metadata only", "group", g.Parameter, "path", file)
		return "", nil
	}
	p.logger.Debug("file done", "path", file, "rows", kept, "skipped", skipped, "before_start", beforeStart)
	return parser.Parameter(), nil
}

func (p *Pipeline) writeMetadata(meta domain.RunMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run metadata: %w", err)
	}
	if err := localfs.WriteFileAtomic(p.MetadataPath(), data); err != nil {
		return fmt.Errorf("write run metadata: %w", err)
	}
	return nil
}

func (p *Pipeline) logProgress(group domain.Parameter, file string, rows int) {
	p.logger.Info("processed rows", "group", group, "path", file, "rows", rows)
}
