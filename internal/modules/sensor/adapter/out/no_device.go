package out

import (
	"context"

	"pacer/internal/modules/sensor/domain"
	sensorout "pacer/internal/modules/sensor/port/out"
	apperrors "pacer/internal/platform/errors"
)

// NoDevice is used when no sensor is configured.
type NoDevice struct{}

func NewNoDevice() sensorout.Device { return NoDevice{} }

func (NoDevice) Probe(context.Context) (domain.Info, error) {
	return domain.Info{}, apperrors.ErrSensorUnavailable
}

func (NoDevice) Stream(context.Context, func(domain.Sample)) error {
	return apperrors.ErrSensorUnavailable
}
