// Package commonsysfs implements a board on top of periph.io's GPIO registry, which covers sysfs
// GPIO as well as the memory mapped drivers periph.io ships for common single board computers.
package commonsysfs

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
	"go.viam.com/ultrasonic/utils"
)

const modelName = "sysfs"

// A Config describes the configuration of a periph.io backed board.
type Config struct {
	// Pull is the bias applied to pins configured as inputs: "down" (default), "up" or "none".
	Pull string            `json:"pull,omitempty"`
	Pins map[string]string `json:"pins,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if _, err := parsePull(conf.Pull); err != nil {
		return errors.Wrapf(err, "%s.pull", path)
	}
	return nil
}

func parsePull(pull string) (gpio.Pull, error) {
	switch strings.ToLower(pull) {
	case "", "down":
		return gpio.PullDown, nil
	case "up":
		return gpio.PullUp, nil
	case "none", "float":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, errors.Errorf("unknown pull %q", pull)
	}
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
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "cannot initialize periph host drivers")
		}
		return NewBoard(&conf, gpioreg.ByName, logger)
	})
}

// Board resolves pins through a periph.io style registry lookup.
type Board struct {
	mu      sync.Mutex
	byName  func(name string) gpio.PinIO
	pull    gpio.Pull
	aliases map[string]string
	pins    map[string]*gpioPin
	clock   board.Clock
	logger  logging.Logger
}

// NewBoard returns a board that looks pins up with byName, normally gpioreg.ByName.
func NewBoard(conf *Config, byName func(name string) gpio.PinIO, logger logging.Logger) (*Board, error) {
	pull, err := parsePull(conf.Pull)
	if err != nil {
		return nil, err
	}
	return &Board{
		byName:  byName,
		pull:    pull,
		aliases: conf.Pins,
		pins:    map[string]*gpioPin{},
		clock:   board.NewClock(),
		logger:  logger,
	}, nil
}

// GPIOPinByName returns the pin with the given periph.io name or config alias.
func (b *Board) GPIOPinByName(name string) (board.GPIOPin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	pinName := name
	if alias, ok := b.aliases[name]; ok {
		pinName = alias
	}
	if pin, ok := b.pins[pinName]; ok {
		return pin, nil
	}
	p := b.byName(pinName)
	if p == nil {
		return nil, errors.Errorf("no global pin found for %q", pinName)
	}
	pin := &gpioPin{pin: p, pull: b.pull}
	b.pins[pinName] = pin
	return pin, nil
}

// Clock returns the system monotonic clock.
func (b *Board) Clock() board.Clock {
	return b.clock
}

// Close halts every pin that was handed out.
func (b *Board) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	for name, pin := range b.pins {
		err = multierr.Combine(err, errors.Wrapf(pin.pin.Halt(), "cannot halt pin %q", name))
	}
	b.pins = map[string]*gpioPin{}
	return err
}

type gpioPin struct {
	mu    sync.Mutex
	pin   gpio.PinIO
	pull  gpio.Pull
	dir   board.Direction
	level gpio.Level
}

func (gp *gpioPin) Set(ctx context.Context, high bool, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	if gp.dir != board.DirectionOutput {
		return board.ErrPinIsInput
	}
	l := gpio.Low
	if high {
		l = gpio.High
	}
	if err := gp.pin.Out(l); err != nil {
		return err
	}
	gp.level = l
	return nil
}

func (gp *gpioPin) Get(ctx context.Context, extra map[string]interface{}) (bool, error) {
	return gp.pin.Read() == gpio.High, nil
}

func (gp *gpioPin) SetDirection(ctx context.Context, dir board.Direction, extra map[string]interface{}) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()

	var err error
	switch dir {
	case board.DirectionOutput:
		err = gp.pin.Out(gp.level)
	case board.DirectionInput:
		err = gp.pin.In(gp.pull, gpio.NoEdge)
	default:
		return errors.Errorf("unknown direction %d", dir)
	}
	if err != nil {
		return errors.Wrapf(err, "cannot set %s to %s", gp.pin.Name(), dir)
	}
	gp.dir = dir
	return nil
}
