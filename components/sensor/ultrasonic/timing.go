package ultrasonic

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/ultrasonic/components/board"
)

const (
	// settleTime holds the trigger low before the pulse so the rising edge is clean.
	settleTime = 2 * time.Microsecond
	// triggerPulse is the pulse width that starts a ranging cycle.
	triggerPulse = 10 * time.Microsecond
)

// ranging carries one pass through the timing state machine.
type ranging struct {
	phase   Phase
	expired Phase

	timeout    time.Duration
	waitStart  time.Time
	pulseStart time.Time
	duration   time.Duration
}

func (r *ranging) timedOut() bool {
	return r.phase == PhaseTimedOut
}

// timing runs the state machine from Idle until it is Done or TimedOut. Each polling phase gets
// the full timeout, measured from the moment that phase was entered.
func (s *Sensor) timing(ctx context.Context) (*ranging, error) {
	r := &ranging{
		phase:   PhaseIdle,
		timeout: time.Duration(s.Timeout()) * time.Microsecond,
	}

	for {
		switch r.phase {
		case PhaseIdle:
			r.phase = PhaseTriggering

		case PhaseTriggering:
			if err := s.sendTrigger(ctx); err != nil {
				return nil, err
			}
			r.waitStart = s.clock.Now()
			r.phase = PhaseAwaitingEchoStart

		case PhaseAwaitingEchoStart:
			high, err := s.echo.Get(ctx, nil)
			if err != nil {
				return nil, errors.Wrap(err, "cannot read echo pin")
			}
			switch {
			case high:
				r.pulseStart = s.clock.Now()
				r.phase = PhaseMeasuringEcho
			case s.clock.Since(r.waitStart) > r.timeout:
				r.expired = r.phase
				r.phase = PhaseTimedOut
			}

		case PhaseMeasuringEcho:
			high, err := s.echo.Get(ctx, nil)
			if err != nil {
				return nil, errors.Wrap(err, "cannot read echo pin")
			}
			switch {
			case !high:
				r.duration = s.clock.Since(r.pulseStart)
				r.phase = PhaseDone
			case s.clock.Since(r.pulseStart) > r.timeout:
				r.expired = r.phase
				r.phase = PhaseTimedOut
			}

		case PhaseDone:
			s.logger.CDebugw(ctx, "echo measured", "echo_us", r.duration.Microseconds())
			return r, nil

		case PhaseTimedOut:
			s.logger.CDebugw(ctx, "echo timed out", "phase", r.expired, "timeout_us", r.timeout.Microseconds())
			return r, nil

		default:
			return nil, errors.Errorf("unknown ranging phase %d", r.phase)
		}
	}
}

// sendTrigger performs the Triggering phase. A shared pin is switched to an output for the pulse
// and back to an input so it can carry the echo.
func (s *Sensor) sendTrigger(ctx context.Context) error {
	if s.shared {
		if err := s.trigger.SetDirection(ctx, board.DirectionOutput, nil); err != nil {
			return errors.Wrap(err, "cannot set shared pin to output")
		}
	}

	if err := s.trigger.Set(ctx, false, nil); err != nil {
		return errors.Wrap(err, "cannot set trigger pin to low")
	}
	board.BusyWait(s.clock, settleTime)

	if err := s.trigger.Set(ctx, true, nil); err != nil {
		return errors.Wrap(err, "cannot set trigger pin to high")
	}
	board.BusyWait(s.clock, triggerPulse)
	if err := s.trigger.Set(ctx, false, nil); err != nil {
		return errors.Wrap(err, "cannot set trigger pin to low")
	}

	if s.shared {
		if err := s.echo.SetDirection(ctx, board.DirectionInput, nil); err != nil {
			return errors.Wrap(err, "cannot set shared pin to input")
		}
	}
	return nil
}
