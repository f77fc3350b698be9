package usecase

import (
	"context"

	"pacer/internal/modules/sensor/domain"
	"pacer/internal/modules/sensor/dto"
	sensorin "pacer/internal/modules/sensor/port/in"
	"pacer/internal/modules/sensor/service"
)

type Interactor struct {
	svc *service.FeedService
}

func NewInteractor(svc *service.FeedService) sensorin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Authorize(ctx context.Context) error {
	return i.svc.Authorize(ctx)
}

// Probe never fails: an unavailable sensor is reported in the output.
func (i *Interactor) Probe(ctx context.Context) (dto.ProbeOutput, error) {
	info, err := i.svc.Probe(ctx)
	out := dto.ProbeOutput{
		Available: err == nil,
		Mode:      string(info.Mode),
		Name:      info.Name,
		Version:   info.Version,
		RateHz:    info.RateHz,
	}
	if err != nil {
		out.Detail = err.Error()
	}
	return out, nil
}

func (i *Interactor) Open(ctx context.Context) (sensorin.Feed, error) {
	return feedAdapter{feed: i.svc.Select(ctx)}, nil
}

type feedAdapter struct {
	feed service.Feed
}

func (a feedAdapter) Mode() string { return string(a.feed.Mode()) }

func (a feedAdapter) Run(ctx context.Context, emit func(dto.Event)) error {
	return a.feed.Run(ctx, func(e domain.Event) {
		emit(dto.Event{Kind: string(e.Kind), At: e.At, X: e.X, Y: e.Y, Z: e.Z})
	})
}
