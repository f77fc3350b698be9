package in

import (
	"context"

	walkdto "pacer/internal/modules/walk/dto"
	walkin "pacer/internal/modules/walk/port/in"
)

type TUIHandler struct {
	usecase walkin.Usecase
}

func NewTUIHandler(usecase walkin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Filter(ctx context.Context, period string) ([]walkdto.WalkOutput, error) {
	return h.usecase.Filter(ctx, period)
}

func (h TUIHandler) Stats(ctx context.Context, period string) (walkdto.StatsOutput, error) {
	return h.usecase.Stats(ctx, period)
}

func (h TUIHandler) Chart(ctx context.Context, period string) ([]walkdto.ChartPoint, error) {
	return h.usecase.Chart(ctx, period)
}

func (h TUIHandler) DeleteByID(ctx context.Context, walkID string) (walkdto.DeleteOutput, error) {
	return h.usecase.DeleteByID(ctx, walkID)
}

func (h TUIHandler) Export(ctx context.Context, input walkdto.ExportInput) (walkdto.ExportOutput, error) {
	return h.usecase.Export(ctx, input)
}
