package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"pacer/internal/httpapi"
	sensorinadapter "pacer/internal/modules/sensor/adapter/in"
	sensoroutadapter "pacer/internal/modules/sensor/adapter/out"
	sensordomain "pacer/internal/modules/sensor/domain"
	sensorout "pacer/internal/modules/sensor/port/out"
	sensorservice "pacer/internal/modules/sensor/service"
	sensorusecase "pacer/internal/modules/sensor/usecase"
	sessioninadapter "pacer/internal/modules/session/adapter/in"
	sessionoutadapter "pacer/internal/modules/session/adapter/out"
	sessiondomain "pacer/internal/modules/session/domain"
	sessionout "pacer/internal/modules/session/port/out"
	sessionservice "pacer/internal/modules/session/service"
	sessionusecase "pacer/internal/modules/session/usecase"
	walkinadapter "pacer/internal/modules/walk/adapter/in"
	walkoutadapter "pacer/internal/modules/walk/adapter/out"
	walkout "pacer/internal/modules/walk/port/out"
	walkservice "pacer/internal/modules/walk/service"
	walkusecase "pacer/internal/modules/walk/usecase"
	"pacer/internal/platform/clock"
	"pacer/internal/platform/config"
	"pacer/internal/platform/id"
	"pacer/internal/platform/logging"
	uiapp "pacer/internal/ui/app"
)

// App is the wired application. The session engine runs from New until Close.
type App struct {
	Config config.Config
	Logger *slog.Logger

	SessionCLI sessioninadapter.CLIHandler
	WalkCLI    walkinadapter.CLIHandler
	WalkTUI    walkinadapter.TUIHandler
	SensorCLI  sensorinadapter.CLIHandler
	API        *httpapi.Server

	stopEngine context.CancelFunc
	engineDone chan struct{}
	closers    []io.Closer
}

// New builds the application from cfg and logs to stderr.
func New(cfg config.Config) (*App, error) {
	return NewWithLogger(cfg, logging.New(os.Stderr, cfg.LogLevel))
}

func NewWithLogger(cfg config.Config, logger *slog.Logger) (*App, error) {
	clk := clock.SystemClock{}
	app := &App{Config: cfg, Logger: logger}

	kv, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	walkUC := walkusecase.NewInteractor(
		walkservice.NewWalkService(clk, id.UUID{}, kv, logger.With("module", "walk")),
		walkoutadapter.NewCSVExporter(),
		walkoutadapter.NewParquetExporter(),
	)

	sensorUC := sensorusecase.NewInteractor(sensorservice.NewFeedService(
		selectDevice(cfg, clk),
		sensoroutadapter.NewStaticGate(!strings.EqualFold(cfg.Sensor.Permission, config.PermissionDenied)),
		clk,
		logger.With("module", "sensor"),
		sensorservice.Options{
			Synthetic:      sensordomain.Synthetic{Interval: cfg.Sensor.SyntheticInterval, Skip: cfg.Sensor.SyntheticSkip},
			ForceSynthetic: cfg.Sensor.Synthetic,
		},
	))

	var haptics sessionout.Haptics = sessionoutadapter.NewNoopHaptics()
	if cfg.Session.Haptics {
		haptics = sessionoutadapter.NewBellHaptics(os.Stderr)
	}
	engine := sessionservice.NewEngine(
		sessiondomain.NewMachine(cfg.Detector.BufferSize, sessiondomain.Detector{
			Threshold:   cfg.Detector.StepThreshold,
			MinInterval: cfg.Detector.MinStepInterval,
		}),
		clk,
		sessionoutadapter.NewSensorSourceAdapter(sensorUC),
		sessionoutadapter.NewWalkRecorderAdapter(walkUC),
		haptics,
		logger.With("module", "session"),
		sessionservice.Options{TickInterval: cfg.Session.TickInterval, ResetDelay: cfg.Session.ResetDelay},
	)
	sessionUC := sessionusecase.NewInteractor(engine)

	ctx, cancel := context.WithCancel(context.Background())
	app.stopEngine = cancel
	app.engineDone = make(chan struct{})
	go func() {
		defer close(app.engineDone)
		if err := engine.Run(ctx); err != nil {
			logger.Error("session engine exited", "err", err)
		}
	}()

	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.WalkCLI = walkinadapter.NewCLIHandler(walkUC)
	app.WalkTUI = walkinadapter.NewTUIHandler(walkUC)
	app.SensorCLI = sensorinadapter.NewCLIHandler(sensorUC)
	app.API = httpapi.New(sessionUC, walkUC, logger.With("module", "http"))
	return app, nil
}

// Close stops the session engine, dropping any walk in progress, and
// releases storage.
func (a *App) Close() error {
	a.stopEngine()
	<-a.engineDone
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.SessionCLI, app.WalkTUI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func openStore(cfg config.Config) (walkout.KVStore, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageFile:
		return walkoutadapter.NewFileKVStore(cfg.DataDir), nil, nil
	case config.StorageSQLite, "":
		store, err := walkoutadapter.NewSQLiteKVStore(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open walk store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}

// selectDevice prefers a replay file, then a sensor plugin. With neither the
// feed service falls back to the synthetic feed.
func selectDevice(cfg config.Config, clk clock.Clock) sensorout.Device {
	switch {
	case cfg.Sensor.ReplayFile != "":
		return sensoroutadapter.NewReplayDevice(cfg.Sensor.ReplayFile, clk)
	case cfg.Sensor.Plugin != "":
		debug := io.Discard
		if logging.ParseLevel(cfg.LogLevel) <= slog.LevelDebug {
			debug = os.Stderr
		}
		return sensoroutadapter.NewGRPCDevice(
			sensordomain.Manifest{Binary: cfg.Sensor.Plugin, SHA256: cfg.Sensor.PluginSHA256},
			cfg.Sensor.PollInterval,
			debug,
		)
	default:
		return sensoroutadapter.NewNoDevice()
	}
}
