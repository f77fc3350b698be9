package domain

import "time"

const GravityBaseline = 9.8

// Detector decides whether a smoothed magnitude is a step.
type Detector struct {
	Threshold   float64
	MinInterval time.Duration
}

func DefaultDetector() Detector {
	return Detector{Threshold: 1.2, MinInterval: 250 * time.Millisecond}
}

// Ready reports whether enough time has passed since the last step. A zero
// last step is always ready.
func (d Detector) Ready(now, lastStep time.Time) bool {
	if lastStep.IsZero() {
		return true
	}
	return now.Sub(lastStep) > d.MinInterval
}

func (d Detector) IsStep(smoothed float64, now, lastStep time.Time) bool {
	deviation := smoothed - GravityBaseline
	if deviation < 0 {
		deviation = -deviation
	}
	return deviation > d.Threshold && d.Ready(now, lastStep)
}
