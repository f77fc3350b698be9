package domain

import (
	"fmt"
	"math"
	"time"

	apperrors "pacer/internal/platform/errors"
)

// MinWalkDuration is the shortest session that produces a walk record.
const MinWalkDuration = 1000 * time.Millisecond

type Status string

const (
	StatusIdle   Status = "idle"
	StatusActive Status = "active"
)

type State struct {
	Status    Status
	StartTime time.Time
	Elapsed   time.Duration
	Steps     int
	Filter    Filter
	LastStep  time.Time
	Epoch     uint64
}

// Msg is an input to Apply. Every message except Start and Stop is tagged with
// the epoch of the session that produced it.
type Msg interface{ msg() }

type (
	Start struct{ At time.Time }
	Stop  struct{ At time.Time }
	Tick  struct {
		Epoch uint64
		At    time.Time
	}
	Sample struct {
		Epoch   uint64
		At      time.Time
		X, Y, Z float64
	}
	Pulse struct {
		Epoch uint64
		At    time.Time
	}
	Reset struct{ Epoch uint64 }
)

func (Start) msg()  {}
func (Stop) msg()   {}
func (Tick) msg()   {}
func (Sample) msg() {}
func (Pulse) msg()  {}
func (Reset) msg()  {}

type Effect interface{ effect() }

type (
	// Haptic asks for a short vibration on each counted step.
	Haptic struct{}
	// Record carries a completed walk to be stored.
	Record struct {
		Date           time.Time
		DurationMS     int64
		Steps          int
		StepsPerMinute float64
	}
	// ScheduleReset asks for a Reset carrying Epoch once the final readout has
	// been shown long enough.
	ScheduleReset struct{ Epoch uint64 }
)

func (Haptic) effect()        {}
func (Record) effect()        {}
func (ScheduleReset) effect() {}

// Machine holds the tuning that Apply runs with.
type Machine struct {
	BufferSize int
	Detector   Detector
}

func NewMachine(bufferSize int, detector Detector) Machine {
	return Machine{BufferSize: bufferSize, Detector: detector}
}

func (m Machine) Initial() State {
	return State{Status: StatusIdle, Filter: NewFilter(m.BufferSize)}
}

// Apply is the pure transition function. It never mutates s.
func (m Machine) Apply(s State, msg Msg) (State, []Effect, error) {
	switch v := msg.(type) {
	case Start:
		if s.Status == StatusActive {
			return s, nil, apperrors.ErrActiveSessionExists
		}
		return State{
			Status:    StatusActive,
			StartTime: v.At,
			Filter:    NewFilter(m.BufferSize),
			Epoch:     s.Epoch + 1,
		}, nil, nil

	case Stop:
		if s.Status != StatusActive {
			return s, nil, apperrors.ErrNoActiveSession
		}
		next := s
		next.Status = StatusIdle
		next.Elapsed = elapsedSince(s.StartTime, v.At)
		next.Filter = s.Filter.Reset()
		effects := []Effect{}
		if next.Elapsed > MinWalkDuration {
			effects = append(effects, Record{
				Date:           v.At,
				DurationMS:     next.Elapsed.Milliseconds(),
				Steps:          next.Steps,
				StepsPerMinute: Pace(next.Steps, next.Elapsed),
			})
		}
		effects = append(effects, ScheduleReset{Epoch: s.Epoch})
		return next, effects, nil

	case Tick:
		if !s.live(v.Epoch) {
			return s, nil, nil
		}
		next := s
		next.Elapsed = elapsedSince(s.StartTime, v.At)
		return next, nil, nil

	case Sample:
		if !s.live(v.Epoch) {
			return s, nil, nil
		}
		next := s
		var smoothed float64
		next.Filter, smoothed = s.Filter.Push(Magnitude(v.X, v.Y, v.Z))
		if !m.Detector.IsStep(smoothed, v.At, s.LastStep) {
			return next, nil, nil
		}
		next.Steps++
		next.LastStep = v.At
		return next, []Effect{Haptic{}}, nil

	case Pulse:
		if !s.live(v.Epoch) || !m.Detector.Ready(v.At, s.LastStep) {
			return s, nil, nil
		}
		next := s
		next.Steps++
		next.LastStep = v.At
		return next, []Effect{Haptic{}}, nil

	case Reset:
		if s.Status != StatusIdle || v.Epoch != s.Epoch {
			return s, nil, nil
		}
		next := m.Initial()
		next.Epoch = s.Epoch
		return next, nil, nil

	default:
		return s, nil, fmt.Errorf("%w: unknown message %T", apperrors.ErrInvalidInput, msg)
	}
}

func (s State) live(epoch uint64) bool {
	return s.Status == StatusActive && epoch == s.Epoch
}

// Pace is steps per minute to one decimal place, zero when no time has passed.
func Pace(steps int, elapsed time.Duration) float64 {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 0
	}
	pace := float64(steps) / (float64(ms) / 60000)
	return math.Round(pace*10) / 10
}

// Readout is what presentation layers show for the current or last session.
type Readout struct {
	Status         Status
	Elapsed        time.Duration
	Steps          int
	StepsPerMinute float64
	Epoch          uint64
}

func (s State) Readout() Readout {
	return Readout{
		Status:         s.Status,
		Elapsed:        s.Elapsed,
		Steps:          s.Steps,
		StepsPerMinute: Pace(s.Steps, s.Elapsed),
		Epoch:          s.Epoch,
	}
}

func elapsedSince(start, now time.Time) time.Duration {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}
