//go:build !linux

package genericlinux

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
)

var errNoCharacterDevice = errors.New("gpio character devices are only available on linux")

type gpioPin struct {
	// This struct is implemented in the Linux version. We have a dummy struct here just to get
	// things to compile on non-Linux environments.
	devicePath string
	offset     uint32
	logger     logging.Logger
}

func (pin *gpioPin) Set(ctx context.Context, isHigh bool, extra map[string]interface{}) error {
	return errNoCharacterDevice
}

func (pin *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	return false, errNoCharacterDevice
}

func (pin *gpioPin) SetDirection(ctx context.Context, dir board.Direction, extra map[string]interface{}) error {
	return errNoCharacterDevice
}

func (pin *gpioPin) Close() error {
	return nil
}
