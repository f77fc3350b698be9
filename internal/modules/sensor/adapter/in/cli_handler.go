package in

import (
	"context"

	sensordto "pacer/internal/modules/sensor/dto"
	sensorin "pacer/internal/modules/sensor/port/in"
)

type CLIHandler struct {
	usecase sensorin.Usecase
}

func NewCLIHandler(usecase sensorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Probe(ctx context.Context) (sensordto.ProbeOutput, error) {
	return h.usecase.Probe(ctx)
}
