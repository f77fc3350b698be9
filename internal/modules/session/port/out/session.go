package out

import (
	"context"

	"pacer/internal/modules/session/domain"
)

// Feed is a motion subscription. Run blocks until ctx is canceled or the
// source runs dry; it is not restartable.
type Feed interface {
	Mode() string
	Run(ctx context.Context, emit func(domain.Motion)) error
}

type MotionSource interface {
	Authorize(ctx context.Context) error
	Open(ctx context.Context) (Feed, error)
}

type WalkRecorder interface {
	Record(ctx context.Context, record domain.Record) (string, error)
}

type Haptics interface {
	Pulse()
}
