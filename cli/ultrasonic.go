package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/ultrasonic/components/board"
	// for boards.
	_ "go.viam.com/ultrasonic/components/board/register"
	"go.viam.com/ultrasonic/components/sensor/ultrasonic"
	"go.viam.com/ultrasonic/config"
	"go.viam.com/ultrasonic/logging"
)

var timedOutColor = color.New(color.FgYellow, color.Bold)

// ReadAction takes one reading and prints it.
func ReadAction(c *cli.Context) (err error) {
	s, b, logger, err := newSensor(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close(c.Context))
	}()
	ctx := debugContext(c)

	if c.Bool(flagLegacy) {
		printf(c.App.Writer, "%.2f", s.ReadOrZero(ctx, s.Unit()))
		return nil
	}
	reading, err := s.Read(ctx)
	if err != nil {
		return err
	}
	logger.CDebugw(ctx, "took reading", "echo", reading.EchoDuration, "phase", reading.Phase)
	printReading(c.App.Writer, reading)
	return nil
}

// WatchAction prints readings until interrupted or until --count readings were taken.
func WatchAction(c *cli.Context) (err error) {
	s, b, logger, err := newSensor(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, b.Close(c.Context))
	}()
	ctx, cancel := context.WithCancel(debugContext(c))
	defer cancel()

	limit := c.Int(flagCount)
	taken := 0
	var watchErr error
	var wg sync.WaitGroup
	wg.Add(1)
	goutils.ManagedGo(func() {
		watchErr = s.Watch(ctx, clock.New(), c.Duration(flagInterval), func(reading ultrasonic.Reading, err error) bool {
			if err != nil {
				logger.Warnw("reading failed", "error", err)
			} else {
				printReading(c.App.Writer, reading)
			}
			taken++
			return limit <= 0 || taken < limit
		})
	}, wg.Done)
	wg.Wait()

	if errors.Is(watchErr, context.Canceled) {
		return nil
	}
	return watchErr
}

// TimeoutAction prints the per-phase timeout that lets an echo from the given distance complete.
func TimeoutAction(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("expected exactly one distance in centimeters")
	}
	cm, err := strconv.ParseUint(c.Args().First(), 10, 32)
	if err != nil {
		return errors.Wrapf(err, "invalid distance %q", c.Args().First())
	}
	printf(c.App.Writer, "%d", ultrasonic.TimeoutForDistance(uint(cm)))
	return nil
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

func printReading(w io.Writer, reading ultrasonic.Reading) {
	if reading.TimedOut {
		timedOutColor.Fprintf(w, "timed out (%s)\n", reading.Phase) //nolint:errcheck
		return
	}
	printf(w, "%.2f %s", reading.Distance, reading.Unit)
}

func newLogger(c *cli.Context) logging.Logger {
	logger := logging.NewBlankLogger("ultrasonic")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.WARN)
	}
	return logger
}

func debugContext(c *cli.Context) context.Context {
	if c.Bool(flagDebug) {
		return logging.EnableDebugMode(c.Context, "")
	}
	return c.Context
}

// loadConfig reads the config file if one was given and lets explicitly set flags override it.
func loadConfig(c *cli.Context, logger logging.Logger) (*config.Config, error) {
	conf := &config.Config{Board: board.Config{Model: c.String(flagBoard)}}
	if path := c.String(flagConfig); path != "" {
		var err error
		if conf, err = config.Read(path, logger); err != nil {
			return nil, err
		}
		if conf.Debug {
			logger.SetLevel(logging.DEBUG)
		}
	}

	if c.IsSet(flagBoard) {
		conf.Board = board.Config{Model: c.String(flagBoard)}
	}
	if c.IsSet(flagTrigger) {
		conf.Sensor.TriggerPin = c.String(flagTrigger)
	}
	if c.IsSet(flagEcho) {
		conf.Sensor.EchoPin = c.String(flagEcho)
	}
	if c.IsSet(flagUnit) {
		conf.Sensor.Unit = c.String(flagUnit)
	}
	if c.IsSet(flagTimeoutUs) {
		conf.Sensor.TimeoutUs = c.Uint(flagTimeoutUs)
		conf.Sensor.MaxDistanceCm = 0
	}
	if c.IsSet(flagMaxDistanceCm) {
		conf.Sensor.MaxDistanceCm = c.Uint(flagMaxDistanceCm)
		conf.Sensor.TimeoutUs = 0
	}
	if conf.Board.Model == defaultBoardModel && len(conf.Board.Attributes) == 0 {
		conf.Board.Attributes = fakeAttributes(conf.Sensor, c.Float64(flagFakeDistanceCm))
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// fakeAttributes wires a simulated module to the sensor's pins.
func fakeAttributes(sensor ultrasonic.Config, distanceCm float64) map[string]interface{} {
	return map[string]interface{}{
		"echoes": []interface{}{
			map[string]interface{}{
				"trigger_pin": sensor.TriggerPin,
				"echo_pin":    sensor.EchoPin,
				"distance_cm": distanceCm,
			},
		},
	}
}

func newSensor(c *cli.Context) (*ultrasonic.Sensor, board.Board, logging.Logger, error) {
	logger := newLogger(c)
	conf, err := loadConfig(c, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	b, err := board.New(c.Context, conf.Board, logger.Sublogger("board"))
	if err != nil {
		return nil, nil, nil, err
	}
	s, err := ultrasonic.NewFromConfig(c.Context, b, &conf.Sensor, logger.Sublogger("sensor"))
	if err != nil {
		return nil, nil, nil, multierr.Combine(err, b.Close(c.Context))
	}
	return s, b, logger, nil
}
