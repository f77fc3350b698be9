package out

import (
	"context"

	sensorout "pacer/internal/modules/sensor/port/out"
)

type StaticGate struct {
	granted bool
}

func NewStaticGate(granted bool) sensorout.PermissionGate {
	return StaticGate{granted: granted}
}

func (g StaticGate) Request(context.Context) (bool, error) {
	return g.granted, nil
}
