package out

import (
	"context"

	"pacer/internal/modules/sensor/dto"
	sensorin "pacer/internal/modules/sensor/port/in"
	"pacer/internal/modules/session/domain"
	sessionout "pacer/internal/modules/session/port/out"
)

type SensorSourceAdapter struct {
	sensor sensorin.Usecase
}

func NewSensorSourceAdapter(sensor sensorin.Usecase) sessionout.MotionSource {
	return &SensorSourceAdapter{sensor: sensor}
}

func (a *SensorSourceAdapter) Authorize(ctx context.Context) error {
	return a.sensor.Authorize(ctx)
}

func (a *SensorSourceAdapter) Open(ctx context.Context) (sessionout.Feed, error) {
	feed, err := a.sensor.Open(ctx)
	if err != nil {
		return nil, err
	}
	return sensorFeed{feed: feed}, nil
}

type sensorFeed struct {
	feed sensorin.Feed
}

func (f sensorFeed) Mode() string { return f.feed.Mode() }

func (f sensorFeed) Run(ctx context.Context, emit func(domain.Motion)) error {
	return f.feed.Run(ctx, func(e dto.Event) {
		kind := domain.MotionSample
		if e.Kind == string(domain.MotionPulse) {
			kind = domain.MotionPulse
		}
		emit(domain.Motion{Kind: kind, At: e.At, X: e.X, Y: e.Y, Z: e.Z})
	})
}
