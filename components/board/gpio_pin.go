package board

import (
	"context"

	"github.com/pkg/errors"
)

// Direction is the electrical role of a GPIO pin.
type Direction int

const (
	// DirectionInput configures a pin to be sampled.
	DirectionInput Direction = iota
	// DirectionOutput configures a pin to be driven.
	DirectionOutput
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	default:
		return "unknown"
	}
}

// ErrPinIsInput is returned when a pin configured as an input is asked to drive a level.
var ErrPinIsInput = errors.New("pin is configured as an input")

// A GPIOPin represents an individual GPIO pin on a board.
type GPIOPin interface {
	// Set sets the pin to either low or high.
	Set(ctx context.Context, high bool, extra map[string]interface{}) error

	// Get gets the high/low state of the pin.
	Get(ctx context.Context, extra map[string]interface{}) (bool, error)

	// SetDirection reconfigures the pin as an input or an output. Pins shared between the
	// trigger and echo lines of a 3-pin sensor are switched on every reading.
	SetDirection(ctx context.Context, dir Direction, extra map[string]interface{}) error
}
