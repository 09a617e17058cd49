package fake

import (
	"sync"
	"time"
)

// Clock is a board.Clock that moves forward by a fixed step every time it is read. Busy-wait and
// polling loops driven by it therefore terminate after a predictable number of iterations without
// any real time passing.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewClock returns a stepping clock starting at the Unix epoch.
func NewClock(step time.Duration) *Clock {
	return &Clock{now: time.Unix(0, 0).UTC(), step: step}
}

// Now advances the clock by one step and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Since advances the clock by one step and returns the time elapsed since t.
func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Peek returns the current time without advancing the clock.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add moves the clock forward by d.
func (c *Clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
