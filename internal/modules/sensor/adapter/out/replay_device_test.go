package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sensorout "pacer/internal/modules/sensor/adapter/out"
	"pacer/internal/modules/sensor/domain"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
)

func writeRecording(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "walk.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}
	return path
}

func TestReplayDeviceStreamsRowsWithMissingAxes(t *testing.T) {
	t.Parallel()
	path := writeRecording(t, "t_ms,x,y,z\n1000,0.1,0.2,9.8\n1005,,0.3,11.5\n1010,0.4,,\n")
	device := sensorout.NewReplayDevice(path, clock.SystemClock{})

	info, err := device.Probe(context.Background())
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if info.Mode != domain.ModeReplay || info.Name != "walk.csv" {
		t.Fatalf("unexpected info: %+v", info)
	}

	var got []domain.Sample
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := device.Stream(ctx, func(s domain.Sample) { got = append(got, s) }); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(got))
	}
	if got[1].X != nil || got[1].Y == nil || *got[1].Z != 11.5 {
		t.Fatalf("second row axes not parsed: %+v", got[1])
	}
	x, y, z := got[2].Components()
	if x != 0.4 || y != 0 || z != 0 {
		t.Fatalf("missing axes should read as zero, got %v %v %v", x, y, z)
	}
}

func TestReplayDeviceMissingFileIsUnavailable(t *testing.T) {
	t.Parallel()
	device := sensorout.NewReplayDevice(filepath.Join(t.TempDir(), "nope.csv"), clock.SystemClock{})
	if _, err := device.Probe(context.Background()); !errors.Is(err, apperrors.ErrSensorUnavailable) {
		t.Fatalf("expected sensor unavailable, got %v", err)
	}
}

func TestReplayDeviceRejectsBadRows(t *testing.T) {
	t.Parallel()
	device := sensorout.NewReplayDevice(writeRecording(t, "0,1,2,3\nsoon,1,2,3\n"), clock.SystemClock{})
	if _, err := device.Probe(context.Background()); !errors.Is(err, apperrors.ErrSensorUnavailable) {
		t.Fatalf("expected malformed recording to be unavailable, got %v", err)
	}
}

func TestReplayDeviceStopsOnCancel(t *testing.T) {
	t.Parallel()
	device := sensorout.NewReplayDevice(writeRecording(t, "0,0,0,9.8\n60000,0,0,9.8\n"), clock.SystemClock{})
	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	done := make(chan error, 1)
	go func() {
		done <- device.Stream(ctx, func(domain.Sample) { count++ })
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop on cancel")
	}
	if count != 1 {
		t.Fatalf("expected only the first sample before cancel, got %d", count)
	}
}

func TestNoDeviceAndStaticGate(t *testing.T) {
	t.Parallel()
	if _, err := sensorout.NewNoDevice().Probe(context.Background()); !errors.Is(err, apperrors.ErrSensorUnavailable) {
		t.Fatalf("no device should be unavailable, got %v", err)
	}
	granted, err := sensorout.NewStaticGate(false).Request(context.Background())
	if err != nil || granted {
		t.Fatalf("denying gate returned granted=%v err=%v", granted, err)
	}
}
