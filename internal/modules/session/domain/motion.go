package domain

import "time"

type MotionKind string

const (
	MotionSample MotionKind = "sample"
	MotionPulse  MotionKind = "pulse"
)

// Motion is one item from a motion feed before it is tagged with an epoch.
type Motion struct {
	Kind    MotionKind
	At      time.Time
	X, Y, Z float64
}

// Tag turns a motion into the message Apply consumes for the given session.
func (m Motion) Tag(epoch uint64) Msg {
	if m.Kind == MotionPulse {
		return Pulse{Epoch: epoch, At: m.At}
	}
	return Sample{Epoch: epoch, At: m.At, X: m.X, Y: m.Y, Z: m.Z}
}
