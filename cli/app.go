// Package cli contains the command line for reading an ultrasonic sensor.
package cli

import (
	"io"
	"time"

	"github.com/urfave/cli/v2"
)

const (
	flagConfig          = "config"
	flagDebug           = "debug"
	flagBoard           = "board"
	flagTrigger         = "trigger"
	flagEcho            = "echo"
	flagUnit            = "unit"
	flagTimeoutUs       = "timeout-us"
	flagMaxDistanceCm   = "max-distance-cm"
	flagFakeDistanceCm  = "fake-distance-cm"
	flagLegacy          = "legacy"
	flagInterval        = "interval"
	flagCount           = "count"
	defaultBoardModel   = "fake"
	defaultFakeDistance = 100.0
)

var app = &cli.App{
	Name:            "ultrasonic",
	Usage:           "take readings from an ultrasonic ranging module",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "load configuration from `FILE`",
		},
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:  flagBoard,
			Value: defaultBoardModel,
			Usage: "board `MODEL` the sensor is wired to",
		},
		&cli.StringFlag{
			Name:  flagTrigger,
			Usage: "trigger `PIN`, also used for the echo on 3-pin modules",
		},
		&cli.StringFlag{
			Name:  flagEcho,
			Usage: "echo `PIN` of a 4-pin module",
		},
		&cli.StringFlag{
			Name:  flagUnit,
			Usage: "report distances in `UNIT` (cm, m, mm, in, yd, mi)",
		},
		&cli.UintFlag{
			Name:  flagTimeoutUs,
			Usage: "per-phase timeout in microseconds",
		},
		&cli.UintFlag{
			Name:  flagMaxDistanceCm,
			Usage: "derive the timeout from the furthest distance worth measuring",
		},
		&cli.Float64Flag{
			Name:   flagFakeDistanceCm,
			Hidden: true,
			Value:  defaultFakeDistance,
			Usage:  "distance reported by the simulated module of an unconfigured fake board",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "read",
			Usage:  "take a single reading",
			Action: ReadAction,
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  flagLegacy,
					Usage: "print 0 instead of reporting a timeout",
				},
			},
		},
		{
			Name:   "watch",
			Usage:  "take readings periodically",
			Action: WatchAction,
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  flagInterval,
					Value: time.Second,
					Usage: "time between readings",
				},
				&cli.IntFlag{
					Name:  flagCount,
					Usage: "stop after this many readings, 0 to run until interrupted",
				},
			},
		},
		{
			Name:      "timeout",
			Usage:     "print the timeout that covers a distance",
			ArgsUsage: "<distance-cm>",
			Action:    TimeoutAction,
		},
	},
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	app.Writer = out
	app.ErrWriter = errOut
	return app
}
