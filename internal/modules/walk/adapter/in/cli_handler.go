package in

import (
	"context"

	walkdto "pacer/internal/modules/walk/dto"
	walkin "pacer/internal/modules/walk/port/in"
)

type CLIHandler struct {
	usecase walkin.Usecase
}

func NewCLIHandler(usecase walkin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context, period string) ([]walkdto.WalkOutput, error) {
	return h.usecase.Filter(ctx, period)
}

func (h CLIHandler) Delete(ctx context.Context, index int) (walkdto.DeleteOutput, error) {
	return h.usecase.Delete(ctx, index)
}

func (h CLIHandler) DeleteByID(ctx context.Context, walkID string) (walkdto.DeleteOutput, error) {
	return h.usecase.DeleteByID(ctx, walkID)
}

func (h CLIHandler) Stats(ctx context.Context, period string) (walkdto.StatsOutput, error) {
	return h.usecase.Stats(ctx, period)
}

func (h CLIHandler) Chart(ctx context.Context, period string) ([]walkdto.ChartPoint, error) {
	return h.usecase.Chart(ctx, period)
}

func (h CLIHandler) Export(ctx context.Context, format, path, period string) (walkdto.ExportOutput, error) {
	return h.usecase.Export(ctx, walkdto.ExportInput{Format: format, Path: path, Period: period})
}
