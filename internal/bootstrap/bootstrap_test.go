package bootstrap_test

import (
	"context"
	"testing"

	"pacer/internal/bootstrap"
	"pacer/internal/platform/config"
	"pacer/internal/platform/logging"
)

func TestNewWiresEveryBackend(t *testing.T) {
	t.Parallel()
	for _, storage := range []string{config.StorageSQLite, config.StorageFile} {
		cfg, err := config.New(t.TempDir())
		if err != nil {
			t.Fatalf("config: %v", err)
		}
		cfg.Storage = storage
		cfg.Session.Haptics = false

		app, err := bootstrap.NewWithLogger(cfg, logging.Discard())
		if err != nil {
			t.Fatalf("%s: new app: %v", storage, err)
		}
		ctx := context.Background()

		probe, err := app.SensorCLI.Probe(ctx)
		if err != nil {
			t.Fatalf("%s: probe: %v", storage, err)
		}
		if probe.Available {
			t.Fatalf("%s: expected no device without plugin or replay, got %+v", storage, probe)
		}

		walks, err := app.WalkCLI.List(ctx, "all")
		if err != nil {
			t.Fatalf("%s: list: %v", storage, err)
		}
		if len(walks) != 0 {
			t.Fatalf("%s: expected empty history, got %d", storage, len(walks))
		}

		readout, err := app.SessionCLI.Readout(ctx)
		if err != nil {
			t.Fatalf("%s: readout: %v", storage, err)
		}
		if readout.Status != "idle" {
			t.Fatalf("%s: expected idle engine, got %q", storage, readout.Status)
		}
		if err := app.Close(); err != nil {
			t.Fatalf("%s: close: %v", storage, err)
		}
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Storage = "etcd"
	if _, err := bootstrap.NewWithLogger(cfg, logging.Discard()); err == nil {
		t.Fatal("expected unknown storage backend to fail")
	}
}
