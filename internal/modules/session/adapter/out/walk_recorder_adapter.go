package out

import (
	"context"

	"pacer/internal/modules/session/domain"
	sessionout "pacer/internal/modules/session/port/out"
	walkdto "pacer/internal/modules/walk/dto"
	walkin "pacer/internal/modules/walk/port/in"
)

type WalkRecorderAdapter struct {
	walks walkin.Usecase
}

func NewWalkRecorderAdapter(walks walkin.Usecase) sessionout.WalkRecorder {
	return &WalkRecorderAdapter{walks: walks}
}

func (a *WalkRecorderAdapter) Record(ctx context.Context, record domain.Record) (string, error) {
	out, err := a.walks.Append(ctx, walkdto.AppendInput{
		Date:           record.Date,
		DurationMS:     record.DurationMS,
		Steps:          record.Steps,
		StepsPerMinute: record.StepsPerMinute,
	})
	if err != nil {
		return "", err
	}
	return out.ID, nil
}
