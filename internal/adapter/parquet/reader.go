package parquet

import (
	"fmt"

	"github.com/couchcryptid/river-gauge-etl/internal/domain"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

// ReadDaily loads every record of a daily artifact.
func ReadDaily(path string) ([]domain.DailyRecord, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(DailyRow), 1)
	if err != nil {
		return nil, fmt.Errorf("init parquet reader: %w", err)
	}
	defer pr.ReadStop()

	rows := make([]DailyRow, int(pr.GetNumRows()))
	if len(rows) > 0 {
		if err := pr.Read(&rows); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	records := make([]domain.DailyRecord, len(rows))
	for i := range rows {
		records[i] = fromRow(rows[i])
	}
	return records, nil
}
