// Package parquet stores daily aggregates as Parquet files.
package parquet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

// partialSuffix marks an artifact that is still being written. Readers only
// ever open the final name, which appears after the footer is on disk.
const partialSuffix = ".partial"

const defaultRowGroupSize = 8 * 1024 * 1024

// DailyRow is the on-disk schema of a daily artifact.
type DailyRow struct {
	StationID  *int32   `parquet:"name=station_id, type=INT32, repetitiontype=OPTIONAL"`
	Parameter  string   `parquet:"name=parameter, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Date       string   `parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Count      int32    `parquet:"name=count, type=INT32"`
	Mean       float64  `parquet:"name=mean, type=DOUBLE"`
	Min        *float64 `parquet:"name=min, type=DOUBLE, repetitiontype=OPTIONAL"`
	Max        *float64 `parquet:"name=max, type=DOUBLE, repetitiontype=OPTIONAL"`
	StatusMode *string  `parquet:"name=status_mode, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// Writer writes daily artifacts.
type Writer struct {
	rowGroupSize int64
	compression  parquet.CompressionCodec
}

// NewWriter returns a Writer with snappy compression.
func NewWriter() *Writer {
	return &Writer{
		rowGroupSize: defaultRowGroupSize,
		compression:  parquet.CompressionCodec_SNAPPY,
	}
}

// WriteDaily writes records, in order, to path. The file is built under a
// temporary name and renamed into place only after it was closed cleanly; on
// failure the temporary file is removed and any previous artifact at path is
// left untouched.
func (w *Writer) WriteDaily(path string, records []domain.DailyRecord) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	tmp := path + partialSuffix
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	fw, err := local.NewLocalFileWriter(tmp)
	if err != nil {
		return fmt.Errorf("open %s: %w", tmp, err)
	}

	pw, err := writer.NewParquetWriter(fw, new(DailyRow), 1)
	if err != nil {
		fw.Close()
		return fmt.Errorf("init parquet writer: %w", err)
	}
	pw.RowGroupSize = w.rowGroupSize
	pw.CompressionType = w.compression

	for i := range records {
		if err := pw.Write(toRow(records[i])); err != nil {
			fw.Close()
			return fmt.Errorf("write row %s: %w", records[i].Date, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("finalize parquet: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

func toRow(r domain.DailyRecord) DailyRow {
	return DailyRow{
		StationID:  r.StationID,
		Parameter:  string(r.Parameter),
		Date:       r.Date,
		Count:      r.Count,
		Mean:       r.Mean,
		Min:        r.Min,
		Max:        r.Max,
		StatusMode: r.StatusMode,
	}
}

func fromRow(r DailyRow) domain.DailyRecord {
	return domain.DailyRecord{
		StationID:  r.StationID,
		Parameter:  domain.Parameter(r.Parameter),
		Date:       r.Date,
		Count:      r.Count,
		Mean:       r.Mean,
		Min:        r.Min,
		Max:        r.Max,
		StatusMode: r.StatusMode,
	}
}
