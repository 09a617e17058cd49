package ultrasonic

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Watch takes a reading right away and then once per interval on clk, handing each to fn. It
// returns nil once fn returns false, or the context's error if ctx ends first. Readings are
// passed through untouched.
func (s *Sensor) Watch(
	ctx context.Context,
	clk clock.Clock,
	interval time.Duration,
	fn func(Reading, error) bool,
) error {
	if interval <= 0 {
		return errors.Errorf("watch interval must be positive, got %v", interval)
	}
	ticker := clk.Ticker(interval)
	defer ticker.Stop()

	for {
		if !fn(s.Read(ctx)) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
