package out

import (
	"io"
	"sync"

	sessionout "pacer/internal/modules/session/port/out"
)

// BellHaptics rings the terminal bell on each step.
type BellHaptics struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBellHaptics(w io.Writer) sessionout.Haptics {
	return &BellHaptics{w: w}
}

func (h *BellHaptics) Pulse() {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, _ = h.w.Write([]byte{'\a'})
}

type NoopHaptics struct{}

func NewNoopHaptics() sessionout.Haptics { return NoopHaptics{} }

func (NoopHaptics) Pulse() {}
