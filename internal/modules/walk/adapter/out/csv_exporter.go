package out

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"pacer/internal/modules/walk/domain"
	walkout "pacer/internal/modules/walk/port/out"
)

type CSVExporter struct{}

func NewCSVExporter() walkout.Exporter {
	return CSVExporter{}
}

func (CSVExporter) Format() string { return "csv" }

func (CSVExporter) Export(_ context.Context, path string, records []domain.WalkRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "date", "duration_ms", "steps", "steps_per_minute"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Date.UTC().Format(time.RFC3339Nano),
			strconv.FormatInt(r.DurationMS, 10),
			strconv.Itoa(r.Steps),
			strconv.FormatFloat(r.StepsPerMinute, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
