package usecase

import (
	"context"

	sessiondto "pacer/internal/modules/session/dto"
	sessionin "pacer/internal/modules/session/port/in"
	"pacer/internal/modules/session/service"
)

type Interactor struct {
	engine *service.Engine
}

func NewInteractor(engine *service.Engine) sessionin.Usecase {
	return &Interactor{engine: engine}
}

func (i *Interactor) Start(ctx context.Context) (sessiondto.StartOutput, error) {
	snap, err := i.engine.Start(ctx)
	if err != nil {
		return sessiondto.StartOutput{}, err
	}
	return sessiondto.StartOutput{StartedAt: snap.StartedAt, Mode: snap.Mode}, nil
}

func (i *Interactor) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	result, err := i.engine.Stop(ctx)
	if err != nil {
		return sessiondto.StopOutput{}, err
	}
	return sessiondto.StopOutput{
		DurationMS:     result.Readout.Elapsed.Milliseconds(),
		Steps:          result.Readout.Steps,
		StepsPerMinute: result.Readout.StepsPerMinute,
		Recorded:       result.Recorded,
		WalkID:         result.WalkID,
	}, nil
}

func (i *Interactor) Readout(ctx context.Context) (sessiondto.ReadoutOutput, error) {
	snap, err := i.engine.Readout(ctx)
	if err != nil {
		return sessiondto.ReadoutOutput{}, err
	}
	return sessiondto.ReadoutOutput{
		Status:         string(snap.Status),
		ElapsedMS:      snap.Elapsed.Milliseconds(),
		Steps:          snap.Steps,
		StepsPerMinute: snap.StepsPerMinute,
		Mode:           snap.Mode,
	}, nil
}
