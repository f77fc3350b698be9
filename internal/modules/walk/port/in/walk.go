package in

import (
	"context"

	"pacer/internal/modules/walk/dto"
)

type Usecase interface {
	Append(ctx context.Context, input dto.AppendInput) (dto.WalkOutput, error)
	List(ctx context.Context) ([]dto.WalkOutput, error)
	Filter(ctx context.Context, period string) ([]dto.WalkOutput, error)
	Delete(ctx context.Context, index int) (dto.DeleteOutput, error)
	DeleteByID(ctx context.Context, id string) (dto.DeleteOutput, error)
	Stats(ctx context.Context, period string) (dto.StatsOutput, error)
	Chart(ctx context.Context, period string) ([]dto.ChartPoint, error)
	Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
