package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sensoradapter "pacer/internal/modules/sensor/adapter/out"
	sensordomain "pacer/internal/modules/sensor/domain"
	sensorservice "pacer/internal/modules/sensor/service"
	sensorusecase "pacer/internal/modules/sensor/usecase"
	sessionout "pacer/internal/modules/session/adapter/out"
	"pacer/internal/modules/session/domain"
	sessionin "pacer/internal/modules/session/port/in"
	"pacer/internal/modules/session/service"
	"pacer/internal/modules/session/usecase"
	walkadapter "pacer/internal/modules/walk/adapter/out"
	walkin "pacer/internal/modules/walk/port/in"
	walkservice "pacer/internal/modules/walk/service"
	walkusecase "pacer/internal/modules/walk/usecase"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
	"pacer/internal/platform/id"
	"pacer/internal/platform/logging"
)

type wiring struct {
	session sessionin.Usecase
	walks   walkin.Usecase
	clock   *clock.Manual
}

func wire(t *testing.T, permission bool) wiring {
	t.Helper()
	clk := clock.NewManual(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	logger := logging.Discard()

	kv, err := walkadapter.NewSQLiteKVStore(filepath.Join(t.TempDir(), ".pacer", "pacer.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })
	walks := walkusecase.NewInteractor(walkservice.NewWalkService(clk, id.UUID{}, kv, logger))

	feeds := sensorservice.NewFeedService(sensoradapter.NewNoDevice(), sensoradapter.NewStaticGate(permission), clk, logger, sensorservice.Options{
		Synthetic: sensordomain.Synthetic{Interval: time.Millisecond, Skip: 0},
	})
	sensor := sensorusecase.NewInteractor(feeds)

	machine := domain.NewMachine(4, domain.Detector{Threshold: 1.2, MinInterval: 50 * time.Millisecond})
	engine := service.NewEngine(machine, clk, sessionout.NewSensorSourceAdapter(sensor), sessionout.NewWalkRecorderAdapter(walks), sessionout.NewNoopHaptics(), logger, service.Options{TickInterval: 5 * time.Millisecond, ResetDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = engine.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return wiring{session: usecase.NewInteractor(engine), walks: walks, clock: clk}
}

func TestSyntheticWalkIsRecorded(t *testing.T) {
	t.Parallel()
	w := wire(t, true)
	ctx := context.Background()

	start, err := w.session.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if start.Mode != string(sensordomain.ModeSynthetic) {
		t.Fatalf("expected synthetic fallback, got %q", start.Mode)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		w.clock.Advance(60 * time.Millisecond)
		readout, err := w.session.Readout(ctx)
		if err != nil {
			t.Fatalf("readout: %v", err)
		}
		if readout.Steps >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("synthetic pulses never counted: %+v", readout)
		}
		time.Sleep(2 * time.Millisecond)
	}

	w.clock.Set(start.StartedAt.Add(90 * time.Second))
	stop, err := w.session.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !stop.Recorded || stop.WalkID == "" || stop.DurationMS != 90000 {
		t.Fatalf("unexpected stop output: %+v", stop)
	}

	list, err := w.walks.List(ctx)
	if err != nil {
		t.Fatalf("list walks: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one stored walk, got %d", len(list))
	}
	if list[0].ID != stop.WalkID || list[0].Steps != stop.Steps || list[0].DurationMS != 90000 {
		t.Fatalf("stored walk does not match the stopped session: %+v vs %+v", list[0], stop)
	}
}

func TestPermissionDeniedAbortsStart(t *testing.T) {
	t.Parallel()
	w := wire(t, false)
	if _, err := w.session.Start(context.Background()); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	readout, err := w.session.Readout(context.Background())
	if err != nil {
		t.Fatalf("readout: %v", err)
	}
	if readout.Status != string(domain.StatusIdle) {
		t.Fatalf("expected idle, got %s", readout.Status)
	}
}

func TestStopWithoutSession(t *testing.T) {
	t.Parallel()
	w := wire(t, true)
	if _, err := w.session.Stop(context.Background()); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}
}
