// Package fake implements a fake board whose pins can simulate the echo line of an ultrasonic
// ranging module.
package fake

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
	"go.viam.com/ultrasonic/utils"
)

// microsecondsPerCm is the round trip time of sound per centimeter of range.
const microsecondsPerCm = 29.1

// Never is used as an Echo delay or width to simulate a module that never raises or never drops
// its echo line.
const Never = time.Duration(math.MaxInt64)

// Echo describes how a simulated module answers a trigger pulse.
type Echo struct {
	// Delay is the time from the trigger's falling edge to the echo's rising edge.
	Delay time.Duration
	// Width is how long the echo line stays high.
	Width time.Duration
}

// EchoForDistance returns the echo a module reports for an object cm centimeters away.
func EchoForDistance(cm float64, delay time.Duration) Echo {
	width := time.Duration(math.Round(cm*2*microsecondsPerCm)) * time.Microsecond
	return Echo{Delay: delay, Width: width}
}

// EchoConfig wires a simulated module to a pair of pins.
type EchoConfig struct {
	TriggerPin string  `json:"trigger_pin"`
	EchoPin    string  `json:"echo_pin,omitempty"`
	DistanceCm float64 `json:"distance_cm"`
	DelayUs    uint    `json:"delay_us,omitempty"`
}

// A Config describes the configuration of a fake board.
type Config struct {
	StepUs uint         `json:"step_us,omitempty"`
	Echoes []EchoConfig `json:"echoes,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for idx, echo := range conf.Echoes {
		echoPath := fmt.Sprintf("%s.%s.%d", path, "echoes", idx)
		if echo.TriggerPin == "" {
			return goutils.NewConfigValidationFieldRequiredError(echoPath, "trigger_pin")
		}
		if echo.DistanceCm < 0 {
			return errors.Errorf("%s: distance_cm must not be negative, got %v", echoPath, echo.DistanceCm)
		}
	}
	return nil
}

func init() {
	board.RegisterModel("fake", func(
		ctx context.Context,
		attributes map[string]interface{},
		logger logging.Logger,
	) (board.Board, error) {
		var conf Config
		if err := utils.TransformAttributeMapToStruct(&conf, attributes); err != nil {
			return nil, err
		}
		if err := conf.Validate("board"); err != nil {
			return nil, err
		}
		return NewBoardFromConfig(&conf, logger), nil
	})
}

// NewBoardFromConfig builds a fake board and attaches the configured simulated modules.
func NewBoardFromConfig(conf *Config, logger logging.Logger) *Board {
	step := time.Microsecond
	if conf.StepUs > 0 {
		step = time.Duration(conf.StepUs) * time.Microsecond
	}
	b := NewBoard(NewClock(step), logger)
	for _, echo := range conf.Echoes {
		echoPin := echo.EchoPin
		if echoPin == "" {
			echoPin = echo.TriggerPin
		}
		delay := time.Duration(echo.DelayUs) * time.Microsecond
		b.AttachEcho(echo.TriggerPin, echoPin, EchoForDistance(echo.DistanceCm, delay))
	}
	return b
}

// NewBoard returns a new fake board timed by clk.
func NewBoard(clk *Clock, logger logging.Logger) *Board {
	return &Board{
		GPIOPins: map[string]*GPIOPin{},
		clock:    clk,
		logger:   logger,
	}
}

// A Board provides dummy pins and a stepping clock.
type Board struct {
	mu       sync.Mutex
	GPIOPins map[string]*GPIOPin
	clock    *Clock
	logger   logging.Logger
	closed   bool
}

// GPIOPinByName returns the GPIO pin by the given name, creating it if needed.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	return b.pin(name)
}

func (b *Board) pin(name string) (*GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("board is closed")
	}
	p, ok := b.GPIOPins[name]
	if !ok {
		p = &GPIOPin{clock: b.clock}
		b.GPIOPins[name] = p
	}
	return p, nil
}

// Clock returns the board's stepping clock.
func (b *Board) Clock() board.Clock {
	return b.clock
}

// AttachEcho makes the echo pin answer pulses on the trigger pin. Both names may be the same to
// simulate a 3-pin module.
func (b *Board) AttachEcho(triggerPin, echoPin string, echo Echo) {
	trigger, err := b.pin(triggerPin)
	if err != nil {
		b.logger.Warnw("cannot attach echo", "trigger_pin", triggerPin, "error", err)
		return
	}
	line, err := b.pin(echoPin)
	if err != nil {
		b.logger.Warnw("cannot attach echo", "echo_pin", echoPin, "error", err)
		return
	}
	m := &module{echo: echo}
	trigger.mu.Lock()
	trigger.trigger = m
	trigger.mu.Unlock()
	line.mu.Lock()
	line.echo = m
	line.mu.Unlock()
	b.logger.Debugw("attached simulated module",
		"trigger_pin", triggerPin, "echo_pin", echoPin, "delay", echo.Delay, "width", echo.Width)
}

// SetEcho changes the answer of the module whose trigger is triggerPin.
func (b *Board) SetEcho(triggerPin string, echo Echo) error {
	p, err := b.pin(triggerPin)
	if err != nil {
		return err
	}
	p.mu.Lock()
	m := p.trigger
	p.mu.Unlock()
	if m == nil {
		return errors.Errorf("no simulated module on pin %q", triggerPin)
	}
	m.mu.Lock()
	m.echo = echo
	m.mu.Unlock()
	return nil
}

// Close marks the board closed.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// module is a simulated ranging module. It fires on the trigger's falling edge.
type module struct {
	mu      sync.Mutex
	echo    Echo
	firedAt time.Time
	fired   bool
}

func (m *module) fire(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.firedAt = at
	m.fired = true
}

func (m *module) level(now time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fired || m.echo.Delay == Never {
		return false
	}
	start := m.firedAt.Add(m.echo.Delay)
	if now.Before(start) {
		return false
	}
	if m.echo.Width == Never {
		return true
	}
	return now.Before(start.Add(m.echo.Width))
}

// A GPIOPin reads back the level it was set to unless it is the echo line of a simulated module.
// Pins start out as inputs.
type GPIOPin struct {
	mu         sync.Mutex
	clock      *Clock
	dir        board.Direction
	high       bool
	directions []board.Direction
	trigger    *module
	echo       *module
}

// Set sets the pin to either low or high.
func (gp *GPIOPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.dir != board.DirectionOutput {
		return board.ErrPinIsInput
	}
	if gp.trigger != nil && gp.high && !high {
		gp.trigger.fire(gp.clock.Peek())
	}
	gp.high = high
	return nil
}

// Get gets the high/low state of the pin.
func (gp *GPIOPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.dir == board.DirectionInput && gp.echo != nil {
		return gp.echo.level(gp.clock.Peek()), nil
	}
	return gp.high, nil
}

// SetDirection reconfigures the pin and records the change.
func (gp *GPIOPin) SetDirection(ctx context.Context, dir board.Direction, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	gp.dir = dir
	gp.directions = append(gp.directions, dir)
	return nil
}

// Direction returns the current direction of the pin.
func (gp *GPIOPin) Direction() board.Direction {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return gp.dir
}

// DirectionHistory returns every direction the pin has been configured with, oldest first.
func (gp *GPIOPin) DirectionHistory() []board.Direction {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	return append([]board.Direction(nil), gp.directions...)
}
