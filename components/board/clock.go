package board

import (
	"time"

	"github.com/benbjohnson/clock"
)

// A Clock is the monotonic timebase used to time pin transitions. It must not wrap within a
// single reading.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// NewClock returns a Clock backed by the system monotonic clock.
func NewClock() Clock {
	return clock.New()
}

// BusyWait spins until at least d has elapsed on clk. It is used for pulses too short for
// time.Sleep to honor.
func BusyWait(clk Clock, d time.Duration) {
	start := clk.Now()
	for clk.Since(start) < d {
	}
}
