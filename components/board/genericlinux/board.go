// Package genericlinux implements a Linux board whose GPIO pins are lines on a GPIO character
// device (/dev/gpiochipN), driven through the ioctl interface by way of mkch's gpio package.
package genericlinux

import (
	"context"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
	"go.viam.com/ultrasonic/utils"
)

// DefaultGPIOChip is the character device used when the config does not name one.
const DefaultGPIOChip = "/dev/gpiochip0"

const modelName = "genericlinux"

// A Config describes the configuration of a character device backed board.
type Config struct {
	GPIOChip string          `json:"gpio_chip,omitempty"`
	Pins     map[string]uint `json:"pins,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	for name := range conf.Pins {
		if name == "" {
			return errors.Errorf("%s.pins: pin aliases must not be empty", path)
		}
	}
	return nil
}

func init() {
	board.RegisterModel(modelName, func(
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
		return NewBoard(&conf, logger), nil
	})
}

// Board hands out lines of a single GPIO chip. Pins are named either by their line offset
// ("17") or by an alias from the config.
type Board struct {
	mu      sync.Mutex
	chip    string
	aliases map[string]uint32
	pins    map[uint32]*gpioPin
	clock   board.Clock
	logger  logging.Logger
}

// NewBoard returns a board on the configured GPIO chip. Lines are not requested from the kernel
// until a pin is first used.
func NewBoard(conf *Config, logger logging.Logger) *Board {
	chip := conf.GPIOChip
	if chip == "" {
		chip = DefaultGPIOChip
	}
	aliases := make(map[string]uint32, len(conf.Pins))
	for name, offset := range conf.Pins {
		aliases[name] = uint32(offset)
	}
	return &Board{
		chip:    chip,
		aliases: aliases,
		pins:    map[uint32]*gpioPin{},
		clock:   board.NewClock(),
		logger:  logger,
	}
}

func (b *Board) lineOffset(name string) (uint32, error) {
	if offset, ok := b.aliases[name]; ok {
		return offset, nil
	}
	offset, err := strconv.ParseUint(name, 10, 32)
	if err != nil {
		return 0, errors.Errorf("no gpio pin named %q on %s", name, b.chip)
	}
	return uint32(offset), nil
}

// GPIOPinByName returns the line with the given offset or alias.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	offset, err := b.lineOffset(name)
	if err != nil {
		return nil, err
	}
	if pin, ok := b.pins[offset]; ok {
		return pin, nil
	}
	pin := &gpioPin{devicePath: b.chip, offset: offset, logger: b.logger}
	b.pins[offset] = pin
	return pin, nil
}

// Clock returns the system monotonic clock.
func (b *Board) Clock() board.Clock {
	return b.clock
}

// Close releases every line that was requested.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for _, pin := range b.pins {
		err = multierr.Combine(err, pin.Close())
	}
	b.pins = map[uint32]*gpioPin{}
	return err
}
