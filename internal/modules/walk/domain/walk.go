package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	SchemaVersion = 1
	// StorageKey is the fixed key the serialized collection lives under.
	StorageKey = "walks"
)

// WalkRecord is the immutable summary of one completed session.
type WalkRecord struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	DurationMS     int64     `json:"duration"`
	Steps          int       `json:"steps"`
	StepsPerMinute float64   `json:"stepsPerMinute"`
}

func (r WalkRecord) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

func (r WalkRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("walk id is required")
	}
	if r.Date.IsZero() {
		return fmt.Errorf("walk date is required")
	}
	if r.DurationMS < 0 {
		return fmt.Errorf("walk duration must be non-negative")
	}
	if r.Steps < 0 {
		return fmt.Errorf("walk steps must be non-negative")
	}
	if r.StepsPerMinute < 0 || math.IsNaN(r.StepsPerMinute) || math.IsInf(r.StepsPerMinute, 0) {
		return fmt.Errorf("walk pace must be a non-negative number")
	}
	return nil
}

// Collection is the insertion-ordered set of stored walks.
type Collection []WalkRecord

// Delete returns a copy without the record at index, or ok=false when the
// index is out of range.
func (c Collection) Delete(index int) (Collection, WalkRecord, bool) {
	if index < 0 || index >= len(c) {
		return c, WalkRecord{}, false
	}
	removed := c[index]
	out := make(Collection, 0, len(c)-1)
	out = append(out, c[:index]...)
	out = append(out, c[index+1:]...)
	return out, removed, true
}

func (c Collection) IndexOf(id string) int {
	for i, r := range c {
		if r.ID == id {
			return i
		}
	}
	return -1
}
