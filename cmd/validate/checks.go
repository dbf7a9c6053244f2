package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/river-gauge-etl/internal/adapter/parquet"
	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/couchcryptid/river-gauge-etl/internal/observability"
	"github.com/couchcryptid/river-gauge-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
)

const (
	generatedAtLayout = "2006-01-02T15:04:05.000Z"
	meanTolerance     = 1e-9
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// outputs is everything one run left in its output root.
type outputs struct {
	meta      domain.RunMetadata
	artifacts map[domain.Parameter][]domain.DailyRecord
}

func loadOutputs(root, station string) (*outputs, error) {
	metaPath := pipeline.MetadataPath(root)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	out := &outputs{artifacts: make(map[domain.Parameter][]domain.DailyRecord)}
	if err := json.Unmarshal(data, &out.meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", metaPath, err)
	}

	for _, g := range pipeline.Groups {
		path := pipeline.ArtifactPath(root, station, g)
		records, err := parquet.ReadDaily(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out.artifacts[g.Parameter] = records
	}
	return out, nil
}

func validateMetadata(meta domain.RunMetadata) *phase {
	p := &phase{name: "Run metadata"}

	if _, err := time.Parse(generatedAtLayout, meta.GeneratedAt); err != nil {
		p.errorf("generated_at %q is not an ISO-8601 UTC timestamp", meta.GeneratedAt)
	}
	if len(meta.WaterLevelFiles)+len(meta.WaterTemperatureFiles) == 0 {
		p.errorf("no input files listed")
	}
	if meta.Station == nil {
		p.errorf("station is missing")
	}
	for _, f := range append(append([]string{}, meta.WaterLevelFiles...), meta.WaterTemperatureFiles...) {
		if !filepath.IsAbs(f) {
			p.errorf("input path %q is not absolute", f)
		}
		if !strings.HasSuffix(f, ".csv") {
			p.errorf("input path %q is not a CSV export", f)
		}
	}
	return p
}

func validateArtifacts(out *outputs, startDate string) *phase {
	p := &phase{name: "Daily artifacts"}

	listed := map[domain.Parameter]bool{
		domain.ParameterWaterLevel:       len(out.meta.WaterLevelFiles) > 0,
		domain.ParameterWaterTemperature: len(out.meta.WaterTemperatureFiles) > 0,
	}
	for _, g := range pipeline.Groups {
		_, found := out.artifacts[g.Parameter]
		if listed[g.Parameter] && !found {
			p.errorf("%s: inputs listed but no artifact written", g.Parameter)
		}
	}

	var stationID *int32
	if out.meta.Station != nil {
		stationID = out.meta.Station.StationID
	}
	for group, records := range out.artifacts {
		checkRecords(p, string(group), records, startDate, stationID)
	}
	return p
}

// checkRecords reports every violated invariant of one artifact.
func checkRecords(p *phase, group string, records []domain.DailyRecord, startDate string, stationID *int32) {
	for i, r := range records {
		at := fmt.Sprintf("%s[%s]", group, r.Date)

		if i > 0 && r.Date <= records[i-1].Date {
			p.errorf("%s: dates not strictly ascending after %s", at, records[i-1].Date)
		}
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			p.errorf("%s: date is not YYYY-MM-DD", at)
		}
		if r.Date < startDate {
			p.errorf("%s: before start date %s", at, startDate)
		}
		if r.Count <= 0 {
			p.errorf("%s: count %d is not positive", at, r.Count)
		}
		if r.Min == nil || r.Max == nil {
			p.errorf("%s: min or max missing on a day with values", at)
		} else if below(r.Mean, *r.Min) || below(*r.Max, r.Mean) {
			p.errorf("%s: mean %.4f outside [%.4f, %.4f]", at, r.Mean, *r.Min, *r.Max)
		}
		if i > 0 && r.Parameter != records[0].Parameter {
			p.errorf("%s: parameter %q differs from %q", at, r.Parameter, records[0].Parameter)
		}
		if stationID != nil && (r.StationID == nil || *r.StationID != *stationID) {
			p.errorf("%s: station_id does not match run metadata", at)
		}
	}
}

// below reports a < b beyond rounding: a mean of identical readings can land
// one ulp outside them.
func below(a, b float64) bool {
	return a < b-meanTolerance*math.Max(1, math.Abs(b))
}

// validateReproducible reruns ingestion into a scratch directory and compares
// the artifacts record by record.
func validateReproducible(out *outputs, dataRoot, station, startDate string, logger *slog.Logger) *phase {
	p := &phase{name: "Reproducible from inputs"}

	scratch, err := os.MkdirTemp("", "river-validate-*")
	if err != nil {
		p.errorf("create scratch directory: %v", err)
		return p
	}
	defer os.RemoveAll(scratch)

	rerun := pipeline.New(pipeline.Options{
		DataRoot:  dataRoot,
		OutRoot:   scratch,
		StationID: station,
		StartDate: startDate,
	}, parquet.NewWriter(), logger, observability.NewMetricsForTesting())

	meta, err := rerun.Run(context.Background())
	if err != nil {
		p.errorf("rerun failed: %v", err)
		return p
	}
	if diff := cmp.Diff(out.meta.Station, meta.Station); diff != "" {
		p.errorf("station metadata differs (-recorded +rerun):\n%s", diff)
	}

	for _, g := range pipeline.Groups {
		want, recorded := out.artifacts[g.Parameter]
		got, err := parquet.ReadDaily(rerun.ArtifactPath(g))
		if errors.Is(err, fs.ErrNotExist) {
			if recorded {
				p.errorf("%s: rerun produced no artifact", g.Parameter)
			}
			continue
		}
		if err != nil {
			p.errorf("%s: read rerun artifact: %v", g.Parameter, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			p.errorf("%s: records differ (-recorded +rerun):\n%s", g.Parameter, diff)
		}
	}
	return p
}
