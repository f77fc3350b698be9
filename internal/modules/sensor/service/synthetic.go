package service

import (
	"context"
	"time"

	"pacer/internal/modules/sensor/domain"
	"pacer/internal/platform/clock"
)

// SyntheticFeed emits a step pulse every interval, dropping each with the
// schedule's skip probability.
type SyntheticFeed struct {
	schedule domain.Synthetic
	rand     func() float64
	clock    clock.Clock
}

func NewSyntheticFeed(schedule domain.Synthetic, rand func() float64, clock clock.Clock) *SyntheticFeed {
	return &SyntheticFeed{schedule: schedule, rand: rand, clock: clock}
}

func (f *SyntheticFeed) Mode() domain.Mode { return domain.ModeSynthetic }

func (f *SyntheticFeed) Run(ctx context.Context, emit func(domain.Event)) error {
	ticker := time.NewTicker(f.schedule.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !f.schedule.Fires(f.rand()) {
				continue
			}
			emit(domain.Event{Kind: domain.EventPulse, At: f.clock.Now()})
		}
	}
}
