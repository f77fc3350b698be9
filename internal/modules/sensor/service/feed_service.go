package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"pacer/internal/modules/sensor/domain"
	sensorout "pacer/internal/modules/sensor/port/out"
	"pacer/internal/platform/clock"
	apperrors "pacer/internal/platform/errors"
)

type Options struct {
	Synthetic      domain.Synthetic
	ForceSynthetic bool
	// Rand draws in [0, 1) for the synthetic skip decision.
	Rand func() float64
}

// Feed is a selected motion source for one session.
type Feed interface {
	Mode() domain.Mode
	Run(ctx context.Context, emit func(domain.Event)) error
}

type FeedService struct {
	device sensorout.Device
	gate   sensorout.PermissionGate
	clock  clock.Clock
	logger *slog.Logger
	opts   Options
}

func NewFeedService(device sensorout.Device, gate sensorout.PermissionGate, clock clock.Clock, logger *slog.Logger, opts Options) *FeedService {
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Synthetic.Validate() != nil {
		opts.Synthetic = domain.DefaultSynthetic()
	}
	return &FeedService{device: device, gate: gate, clock: clock, logger: logger, opts: opts}
}

// Authorize asks the permission gate for motion access.
func (s *FeedService) Authorize(ctx context.Context) error {
	if s.gate == nil {
		return nil
	}
	granted, err := s.gate.Request(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPermissionDenied, err)
	}
	if !granted {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

func (s *FeedService) Probe(ctx context.Context) (domain.Info, error) {
	if s.opts.ForceSynthetic || s.device == nil {
		return domain.Info{Name: "synthetic", Mode: domain.ModeSynthetic}, apperrors.ErrSensorUnavailable
	}
	info, err := s.device.Probe(ctx)
	if err != nil {
		if !errors.Is(err, apperrors.ErrSensorUnavailable) {
			err = fmt.Errorf("%w: %v", apperrors.ErrSensorUnavailable, err)
		}
		return domain.Info{Name: "synthetic", Mode: domain.ModeSynthetic}, err
	}
	return info, nil
}

// Select probes once and returns the device feed, or the synthetic pulse feed
// when no device is available.
func (s *FeedService) Select(ctx context.Context) Feed {
	info, err := s.Probe(ctx)
	if err != nil {
		s.logger.Info("motion sensor unavailable, using synthetic steps", slog.Any("error", err))
		return s.synthetic()
	}
	s.logger.Debug("motion sensor selected", slog.String("name", info.Name), slog.String("mode", string(info.Mode)))
	return &deviceFeed{device: s.device, mode: info.Mode}
}

func (s *FeedService) synthetic() Feed {
	return &SyntheticFeed{schedule: s.opts.Synthetic, rand: s.opts.Rand, clock: s.clock}
}

type deviceFeed struct {
	device sensorout.Device
	mode   domain.Mode
}

func (f *deviceFeed) Mode() domain.Mode { return f.mode }

func (f *deviceFeed) Run(ctx context.Context, emit func(domain.Event)) error {
	return f.device.Stream(ctx, func(sample domain.Sample) {
		emit(domain.SampleEvent(sample))
	})
}
