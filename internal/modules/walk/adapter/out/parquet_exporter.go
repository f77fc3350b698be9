package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"pacer/internal/modules/walk/domain"
	walkout "pacer/internal/modules/walk/port/out"
)

type walkParquetRow struct {
	ID             string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	DateUTCISO     string  `parquet:"name=date_utc_iso, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DateUnixMS     int64   `parquet:"name=date_unix_ms, type=INT64"`
	DurationMS     int64   `parquet:"name=duration_ms, type=INT64"`
	Steps          int64   `parquet:"name=steps, type=INT64"`
	StepsPerMinute float64 `parquet:"name=steps_per_minute, type=DOUBLE"`
}

type ParquetExporter struct{}

func NewParquetExporter() walkout.Exporter {
	return ParquetExporter{}
}

func (ParquetExporter) Format() string { return "parquet" }

func (ParquetExporter) Export(_ context.Context, path string, records []domain.WalkRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(walkParquetRow), 1)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range records {
		row := walkParquetRow{
			ID:             r.ID,
			DateUTCISO:     r.Date.UTC().Format(time.RFC3339Nano),
			DateUnixMS:     r.Date.UnixMilli(),
			DurationMS:     r.DurationMS,
			Steps:          int64(r.Steps),
			StepsPerMinute: r.StepsPerMinute,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
