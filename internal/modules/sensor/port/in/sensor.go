package in

import (
	"context"

	"pacer/internal/modules/sensor/dto"
)

type Feed interface {
	Mode() string
	Run(ctx context.Context, emit func(dto.Event)) error
}

type Usecase interface {
	Authorize(ctx context.Context) error
	Probe(ctx context.Context) (dto.ProbeOutput, error)
	Open(ctx context.Context) (Feed, error)
}
