package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"pacer/internal/modules/walk/domain"
	"pacer/internal/modules/walk/dto"
	walkin "pacer/internal/modules/walk/port/in"
	walkout "pacer/internal/modules/walk/port/out"
	"pacer/internal/modules/walk/service"
	apperrors "pacer/internal/platform/errors"
)

type Interactor struct {
	svc       *service.WalkService
	exporters map[string]walkout.Exporter
	location  *time.Location
}

func NewInteractor(svc *service.WalkService, exporters ...walkout.Exporter) walkin.Usecase {
	byFormat := make(map[string]walkout.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Format()] = e
	}
	return &Interactor{svc: svc, exporters: byFormat, location: time.Local}
}

func (i *Interactor) Append(ctx context.Context, input dto.AppendInput) (dto.WalkOutput, error) {
	record, err := i.svc.Append(ctx, input.Date, input.DurationMS, input.Steps, input.StepsPerMinute)
	if err != nil {
		return dto.WalkOutput{}, err
	}
	all := i.svc.All(ctx)
	return toOutput(record, all.IndexOf(record.ID)), nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.WalkOutput, error) {
	all := i.svc.All(ctx)
	out := make([]dto.WalkOutput, 0, len(all))
	for idx, r := range all {
		out = append(out, toOutput(r, idx))
	}
	return out, nil
}

func (i *Interactor) Filter(ctx context.Context, period string) ([]dto.WalkOutput, error) {
	records, err := i.filter(ctx, period)
	if err != nil {
		return nil, err
	}
	all := i.svc.All(ctx)
	out := make([]dto.WalkOutput, 0, len(records))
	for _, r := range records {
		out = append(out, toOutput(r, all.IndexOf(r.ID)))
	}
	return out, nil
}

func (i *Interactor) Delete(ctx context.Context, index int) (dto.DeleteOutput, error) {
	removed, ok := i.svc.Delete(ctx, index)
	if !ok {
		return dto.DeleteOutput{}, nil
	}
	return dto.DeleteOutput{Deleted: true, Walk: toOutput(removed, index)}, nil
}

func (i *Interactor) DeleteByID(ctx context.Context, walkID string) (dto.DeleteOutput, error) {
	if strings.TrimSpace(walkID) == "" {
		return dto.DeleteOutput{}, fmt.Errorf("%w: walk id is required", apperrors.ErrInvalidInput)
	}
	removed, index, ok := i.svc.DeleteByID(ctx, walkID)
	if !ok {
		return dto.DeleteOutput{}, nil
	}
	return dto.DeleteOutput{Deleted: true, Walk: toOutput(removed, index)}, nil
}

func (i *Interactor) Stats(ctx context.Context, period string) (dto.StatsOutput, error) {
	records, err := i.filter(ctx, period)
	if err != nil {
		return dto.StatsOutput{}, err
	}
	s := domain.Summarize(records)
	return dto.StatsOutput{
		Period:          string(normalizePeriod(period)),
		AverageSteps:    s.AverageSteps,
		AveragePace:     s.AveragePace,
		WalkCount:       s.WalkCount,
		TotalSteps:      s.TotalSteps,
		TotalDurationMS: s.TotalDuration.Milliseconds(),
		BestSteps:       s.BestSteps,
	}, nil
}

func (i *Interactor) Chart(ctx context.Context, period string) ([]dto.ChartPoint, error) {
	records, err := i.filter(ctx, period)
	if err != nil {
		return nil, err
	}
	series := domain.DailySeries(records, i.location)
	out := make([]dto.ChartPoint, 0, len(series))
	for _, d := range series {
		out = append(out, dto.ChartPoint{Day: d.Day, Steps: d.Steps, Walks: d.Walks, DurationMS: d.DurationMS})
	}
	return out, nil
}

func (i *Interactor) Export(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	format := strings.ToLower(strings.TrimSpace(input.Format))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(input.Path)), ".")
	}
	exporter, ok := i.exporters[format]
	if !ok {
		return dto.ExportOutput{}, fmt.Errorf("%w: unsupported export format %q", apperrors.ErrInvalidInput, format)
	}
	if strings.TrimSpace(input.Path) == "" {
		return dto.ExportOutput{}, fmt.Errorf("%w: export path is required", apperrors.ErrInvalidInput)
	}
	records, err := i.filter(ctx, input.Period)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	if err := exporter.Export(ctx, input.Path, records); err != nil {
		return dto.ExportOutput{}, fmt.Errorf("export %s: %w", format, err)
	}
	return dto.ExportOutput{Path: input.Path, Format: format, Count: len(records)}, nil
}

func (i *Interactor) filter(ctx context.Context, period string) (domain.Collection, error) {
	return i.svc.Filter(ctx, normalizePeriod(period))
}

func normalizePeriod(period string) domain.Period {
	p := strings.ToLower(strings.TrimSpace(period))
	if p == "" {
		return domain.PeriodAll
	}
	return domain.Period(p)
}

func toOutput(r domain.WalkRecord, index int) dto.WalkOutput {
	return dto.WalkOutput{
		ID:             r.ID,
		Index:          index,
		Date:           r.Date,
		DurationMS:     r.DurationMS,
		Steps:          r.Steps,
		StepsPerMinute: r.StepsPerMinute,
	}
}
