// Package ultrasonic implements a driver for ultrasonic time-of-flight ranging modules such as
// the HC-SR04 (separate trigger and echo pins) and Ping style modules (one shared signal pin).
//
// A reading sends a 10µs trigger pulse, busy-waits for the echo line to rise and then times how
// long it stays high. Both waits are bounded by the sensor's timeout, applied to each wait on its
// own. Readings block the calling goroutine and cannot be cancelled once started.
//
// A Sensor supports one concurrent reader: overlapping trigger pulses corrupt each other's
// measurements, so callers sharing a Sensor between goroutines must serialize Read calls
// themselves. Sensors on distinct pins may be read concurrently.
package ultrasonic

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
)

// DefaultTimeoutUs is the per-phase timeout used when none is configured.
const DefaultTimeoutUs = 20000

// A Reading is the result of one measurement.
type Reading struct {
	// Distance is the measured distance in Unit. It is 0 when TimedOut is set.
	Distance float64
	Unit     Unit
	// EchoDuration is how long the echo line was held high.
	EchoDuration time.Duration
	// TimedOut reports that no echo was measured: either the echo never started or it lasted
	// longer than the timeout.
	TimedOut bool
	// Phase is PhaseDone for a measurement, or the phase whose budget expired when TimedOut is set.
	Phase Phase
}

type options struct {
	echoPin   string
	timeoutUs uint
	unit      Unit
}

// An Option configures a Sensor at construction.
type Option func(*options)

// WithEchoPin wires the echo line to a pin other than the trigger pin (4-pin modules). Without it,
// or when it names the trigger pin, the sensor runs in shared-pin mode.
func WithEchoPin(pin string) Option {
	return func(o *options) {
		if pin != "" {
			o.echoPin = pin
		}
	}
}

// WithTimeout sets the per-phase timeout in microseconds.
func WithTimeout(timeoutUs uint) Option {
	return func(o *options) {
		o.timeoutUs = timeoutUs
	}
}

// WithMaxDistance sets the timeout to the round trip time of the given range in centimeters.
func WithMaxDistance(cm uint) Option {
	return func(o *options) {
		o.timeoutUs = TimeoutForDistance(cm)
	}
}

// WithUnit sets the unit Read reports in.
func WithUnit(unit Unit) Option {
	return func(o *options) {
		o.unit = unit
	}
}

// Sensor is an ultrasonic ranging module wired to a board.
type Sensor struct {
	triggerName string
	echoName    string
	trigger     board.GPIOPin
	echo        board.GPIOPin
	shared      bool
	clock       board.Clock
	logger      logging.Logger

	mu        sync.Mutex
	timeoutUs uint
	unit      Unit
}

// New configures the trigger pin as a low output and the echo pin as an input, and returns the
// sensor. The echo pin defaults to the trigger pin.
func New(ctx context.Context, b board.Board, triggerPin string, logger logging.Logger, opts ...Option) (*Sensor, error) {
	o := options{echoPin: triggerPin, timeoutUs: DefaultTimeoutUs, unit: Centimeters}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Sensor{
		triggerName: triggerPin,
		echoName:    o.echoPin,
		shared:      o.echoPin == triggerPin,
		clock:       b.Clock(),
		logger:      logger,
		timeoutUs:   o.timeoutUs,
		unit:        o.unit,
	}

	trigger, err := b.GPIOPinByName(triggerPin)
	if err != nil {
		return nil, errors.Wrapf(err, "ultrasonic: cannot grab gpio %q", triggerPin)
	}
	s.trigger = trigger
	s.echo = trigger
	if !s.shared {
		echo, err := b.GPIOPinByName(o.echoPin)
		if err != nil {
			return nil, errors.Wrapf(err, "ultrasonic: cannot grab gpio %q", o.echoPin)
		}
		s.echo = echo
	}

	if err := s.trigger.SetDirection(ctx, board.DirectionOutput, nil); err != nil {
		return nil, errors.Wrap(err, "ultrasonic: cannot set trigger pin to output")
	}
	// the idle level is driven before a shared pin turns into the echo input
	if err := s.trigger.Set(ctx, false, nil); err != nil {
		return nil, errors.Wrap(err, "ultrasonic: cannot set trigger pin to low")
	}
	if err := s.echo.SetDirection(ctx, board.DirectionInput, nil); err != nil {
		return nil, errors.Wrap(err, "ultrasonic: cannot set echo pin to input")
	}

	logger.CDebugw(ctx, "built ultrasonic sensor",
		"trigger_pin", s.triggerName, "echo_pin", s.echoName, "shared", s.shared,
		"timeout_us", s.timeoutUs, "unit", s.unit)
	return s, nil
}

// NewFromConfig builds a sensor from a validated Config.
func NewFromConfig(ctx context.Context, b board.Board, conf *Config, logger logging.Logger) (*Sensor, error) {
	opts, err := conf.options()
	if err != nil {
		return nil, err
	}
	return New(ctx, b, conf.TriggerPin, logger, opts...)
}

func (s *Sensor) namedError(err error) error {
	return errors.Wrapf(err, "ultrasonic sensor on pin %s", s.triggerName)
}

// Shared reports whether the trigger and echo lines share one pin.
func (s *Sensor) Shared() bool {
	return s.shared
}

// Timeout returns the per-phase timeout in microseconds.
func (s *Sensor) Timeout() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeoutUs
}

// SetTimeout sets the per-phase timeout in microseconds. It applies from the next reading on.
// A zero timeout makes every reading whose echo has not already started time out.
func (s *Sensor) SetTimeout(timeoutUs uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeoutUs = timeoutUs
}

// SetMaxDistance sets the timeout to the round trip time of cm centimeters, replacing any timeout
// set before.
func (s *Sensor) SetMaxDistance(cm uint) {
	s.SetTimeout(TimeoutForDistance(cm))
}

// Unit returns the unit Read reports in.
func (s *Sensor) Unit() Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unit
}

// SetUnit sets the unit Read reports in.
func (s *Sensor) SetUnit(unit Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unit = unit
}

// Read takes a reading in the sensor's default unit.
func (s *Sensor) Read(ctx context.Context) (Reading, error) {
	return s.ReadIn(ctx, s.Unit())
}

// ReadIn takes a reading in the given unit. A timeout is reported through Reading.TimedOut; the
// returned error is only set when a pin could not be driven or sampled.
func (s *Sensor) ReadIn(ctx context.Context, unit Unit) (Reading, error) {
	unit = unit.valid()
	result, err := s.timing(ctx)
	if err != nil {
		return Reading{}, s.namedError(err)
	}
	if result.timedOut() {
		return Reading{Unit: unit, TimedOut: true, Phase: result.expired}, nil
	}
	return Reading{
		Distance:     Convert(result.duration, unit),
		Unit:         unit,
		EchoDuration: result.duration,
		Phase:        PhaseDone,
	}, nil
}

// ReadOrZero takes a reading in the given unit and returns 0 when no echo was measured. Pin
// failures are logged and also reported as 0, so a 0 can mean a timeout, a failure or an object
// touching the sensor.
func (s *Sensor) ReadOrZero(ctx context.Context, unit Unit) float64 {
	reading, err := s.ReadIn(ctx, unit)
	if err != nil {
		s.logger.Warnw("reading failed", "error", err)
		return 0
	}
	return reading.Distance
}
