package clock

import (
	"sync"
	"time"
)

// Clock abstracts time to keep sessions and period filters deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock keeps the monotonic reading so elapsed times ignore wall-clock
// jumps. Convert to UTC where a time is stored.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Manual is a Clock that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
