package out

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pacer/internal/modules/sensor/domain"
	sensorout "pacer/internal/modules/sensor/port/out"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
)

type recordedSample struct {
	offset time.Duration
	x      *float64
	y      *float64
	z      *float64
}

// ReplayDevice plays back a recorded CSV of t_ms,x,y,z rows at the pace they
// were recorded. An empty cell is a missing axis.
type ReplayDevice struct {
	path  string
	clock clock.Clock
}

func NewReplayDevice(path string, clock clock.Clock) sensorout.Device {
	return &ReplayDevice{path: path, clock: clock}
}

func (d *ReplayDevice) Probe(_ context.Context) (domain.Info, error) {
	samples, err := d.load()
	if err != nil {
		return domain.Info{}, err
	}
	return domain.Info{
		Name:   filepath.Base(d.path),
		Mode:   domain.ModeReplay,
		RateHz: estimateRate(samples),
	}, nil
}

func (d *ReplayDevice) Stream(ctx context.Context, emit func(domain.Sample)) error {
	samples, err := d.load()
	if err != nil {
		return err
	}
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	var last time.Duration
	for _, s := range samples {
		if wait := s.offset - last; wait > 0 {
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return ctx.Err()
		}
		last = s.offset
		emit(domain.Sample{At: d.clock.Now(), X: s.x, Y: s.y, Z: s.z})
	}
	return nil
}

func (d *ReplayDevice) load() ([]recordedSample, error) {
	if d.path == "" {
		return nil, apperrors.ErrSensorUnavailable
	}
	f, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSensorUnavailable, err)
	}
	defer f.Close()
	samples, err := parseRecording(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrSensorUnavailable, filepath.Base(d.path), err)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: %s has no samples", apperrors.ErrSensorUnavailable, filepath.Base(d.path))
	}
	return samples, nil
}

func parseRecording(r io.Reader) ([]recordedSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var out []recordedSample
	var origin int64
	line := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(row) == 0 || strings.HasPrefix(strings.TrimSpace(row[0]), "#") {
			continue
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("line %d: bad t_ms %q", line, row[0])
		}
		if len(out) == 0 {
			origin = ms
		}
		s := recordedSample{offset: time.Duration(ms-origin) * time.Millisecond}
		axes := []**float64{&s.x, &s.y, &s.z}
		for i, dst := range axes {
			if i+1 >= len(row) {
				break
			}
			cell := strings.TrimSpace(row[i+1])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: bad axis value %q", line, cell)
			}
			*dst = domain.Axis(v)
		}
		if len(out) > 0 && s.offset < out[len(out)-1].offset {
			return nil, fmt.Errorf("line %d: t_ms goes backwards", line)
		}
		out = append(out, s)
	}
	return out, nil
}

func estimateRate(samples []recordedSample) int {
	if len(samples) < 2 {
		return 0
	}
	span := samples[len(samples)-1].offset
	if span <= 0 {
		return 0
	}
	return int(float64(len(samples)-1) / span.Seconds())
}
