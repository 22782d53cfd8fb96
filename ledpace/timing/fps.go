package timing

import (
	"math"
	"sync/atomic"
	"time"
)

// epsilon guards the reciprocal against a zero delta on degenerate
// timestamps. It is far below any delta a real presentation can produce.
const epsilon = 1e-9

// FPSMeter tracks the instantaneous frame rate of a presentation loop:
// the reciprocal of the wall-clock delta between the last two updates,
// with no averaging or smoothing. The value is stored as atomic float
// bits so diagnostic readers never observe a torn write.
type FPSMeter struct {
	bits atomic.Uint64
	last time.Time
}

func NewFPSMeter() *FPSMeter {
	return &FPSMeter{}
}

// Update records a presentation at the given instant and recomputes the
// rate. Only the pacing loop calls this; readers use FPS.
func (m *FPSMeter) Update(now time.Time) {
	delta := now.Sub(m.last).Seconds()
	m.last = now
	m.bits.Store(math.Float64bits(1.0 / (delta + epsilon)))
}

// FPS returns the most recently computed rate. Safe to call from any
// goroutine concurrently with Update.
func (m *FPSMeter) FPS() float64 {
	return math.Float64frombits(m.bits.Load())
}

// Reset clears the meter, as after a pause or before a new run.
func (m *FPSMeter) Reset() {
	m.last = time.Time{}
	m.bits.Store(0)
}
