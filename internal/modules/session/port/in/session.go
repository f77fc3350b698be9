package in

import (
	"context"

	"pacer/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context) (dto.StartOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	Readout(ctx context.Context) (dto.ReadoutOutput, error)
}
