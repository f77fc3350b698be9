package domain

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

type Mode string

const (
	ModeDevice    Mode = "device"
	ModeReplay    Mode = "replay"
	ModeSynthetic Mode = "synthetic"
)

var (
	ErrChecksumMismatch = errors.New("sensor plugin checksum mismatch")
	ErrPluginTimeout    = errors.New("sensor plugin timeout")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Sample is one accelerometer reading in m/s². A nil axis was not reported.
type Sample struct {
	At time.Time
	X  *float64
	Y  *float64
	Z  *float64
}

func Axis(v float64) *float64 { return &v }

// Components returns the three axes with missing ones read as zero.
func (s Sample) Components() (x, y, z float64) {
	return value(s.X), value(s.Y), value(s.Z)
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Info describes a motion source that answered a probe.
type Info struct {
	Name    string
	Version string
	Mode    Mode
	RateHz  int
}

// Manifest pins an out-of-process sensor plugin binary.
type Manifest struct {
	Binary string
	SHA256 string
}

func (m Manifest) Validate() error {
	if m.Binary == "" {
		return fmt.Errorf("sensor plugin binary path is required")
	}
	if m.SHA256 != "" && !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("sensor plugin sha256 must be lowercase 64-char hex")
	}
	return nil
}

type EventKind string

const (
	EventSample EventKind = "sample"
	EventPulse  EventKind = "pulse"
)

// Event is what a feed delivers: either a sample with all axes resolved or a
// synthetic step pulse.
type Event struct {
	Kind    EventKind
	At      time.Time
	X, Y, Z float64
}

func SampleEvent(s Sample) Event {
	x, y, z := s.Components()
	return Event{Kind: EventSample, At: s.At, X: x, Y: y, Z: z}
}

// Synthetic is the fallback pulse schedule used when no sensor is available.
type Synthetic struct {
	Interval time.Duration
	Skip     float64
}

func DefaultSynthetic() Synthetic {
	return Synthetic{Interval: 550 * time.Millisecond, Skip: 0.1}
}

func (s Synthetic) Validate() error {
	if s.Interval <= 0 {
		return fmt.Errorf("synthetic interval must be positive")
	}
	if s.Skip < 0 || s.Skip >= 1 {
		return fmt.Errorf("synthetic skip must be in [0, 1)")
	}
	return nil
}

// Fires reports whether a pulse drawn with r in [0, 1) is emitted.
func (s Synthetic) Fires(r float64) bool {
	return r >= s.Skip
}
