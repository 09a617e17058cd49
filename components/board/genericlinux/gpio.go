//go:build linux

package genericlinux

import (
	"context"
	"sync"

	"github.com/mkch/gpio"
	"go.viam.com/utils"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
)

const consumerName = "ultrasonic"

type gpioPin struct {
	// These values should both be considered immutable.
	devicePath string
	offset     uint32

	// These values are mutable. Lock the mutex when interacting with them.
	mu   sync.Mutex
	dir  board.Direction
	line *gpio.Line

	logger logging.Logger
}

// This is a private helper function that should only be called when the mutex is locked. It sets
// pin.line to a valid struct requested with the pin's current direction, or returns an error.
func (pin *gpioPin) openGpioFd() error {
	if pin.line != nil {
		return nil // If the pin is already opened, don't re-open it.
	}

	chip, err := gpio.OpenChip(pin.devicePath)
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(chip.Close)

	flags := gpio.Input
	if pin.dir == board.DirectionOutput {
		flags = gpio.Output
	}
	// The 0 just means the default value for an output line is low.
	line, err := chip.OpenLine(pin.offset, 0, flags, consumerName)
	if err != nil {
		return err
	}
	pin.line = line
	return nil
}

// This helps implement the board.GPIOPin interface for gpioPin.
func (pin *gpioPin) Set(ctx context.Context, isHigh bool, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.dir != board.DirectionOutput {
		return board.ErrPinIsInput
	}
	if err := pin.openGpioFd(); err != nil {
		return err
	}

	var value byte
	if isHigh {
		value = 1
	}
	return pin.line.SetValue(value)
}

// This helps implement the board.GPIOPin interface for gpioPin.
func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if err := pin.openGpioFd(); err != nil {
		return false, err
	}

	value, err := pin.line.Value()
	if err != nil {
		return false, err
	}

	// We'd expect value to be either 0 or 1, but any non-zero value should be considered high.
	return value != 0, nil
}

// SetDirection releases the line and requests it again with the new direction. The kernel only
// lets a line handle change direction by being re-requested.
func (pin *gpioPin) SetDirection(ctx context.Context, dir board.Direction, extra map[string]interface{}) error {
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line != nil && pin.dir == dir {
		return nil
	}
	if pin.line != nil {
		if err := pin.line.Close(); err != nil {
			pin.logger.Debugw("cannot release gpio line", "chip", pin.devicePath, "offset", pin.offset, "error", err)
		}
		pin.line = nil
	}
	pin.dir = dir
	return pin.openGpioFd()
}

func (pin *gpioPin) Close() error {
	// We keep the gpio.Line object open indefinitely, so it holds its state for as long as this
	// struct is around. This function is a way to close it when we're about to go out of scope, so
	// we don't leak file descriptors.
	pin.mu.Lock()
	defer pin.mu.Unlock()

	if pin.line == nil {
		return nil // Never opened, so no need to close
	}

	err := pin.line.Close()
	pin.line = nil
	return err
}
