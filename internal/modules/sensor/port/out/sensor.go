package out

import (
	"context"

	"pacer/internal/modules/sensor/domain"
)

// Device is a hardware-like motion source. Probe returns
// apperrors.ErrSensorUnavailable when nothing can be streamed.
type Device interface {
	Probe(ctx context.Context) (domain.Info, error)
	Stream(ctx context.Context, emit func(domain.Sample)) error
}

type PermissionGate interface {
	Request(ctx context.Context) (bool, error)
}
