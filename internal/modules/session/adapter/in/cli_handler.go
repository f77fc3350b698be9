package in

import (
	"context"

	sessiondto "pacer/internal/modules/session/dto"
	sessionin "pacer/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (sessiondto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Readout(ctx context.Context) (sessiondto.ReadoutOutput, error) {
	return h.usecase.Readout(ctx)
}
