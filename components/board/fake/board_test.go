package fake

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/ultrasonic/components/board"
	"go.viam.com/ultrasonic/logging"
)

func TestFakeBoard(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	b := NewBoard(NewClock(time.Microsecond), logger)

	p, err := b.GPIOPinByName("7")
	test.That(t, err, test.ShouldBeNil)

	// pins start as inputs and refuse to be driven
	test.That(t, p.Set(ctx, true, nil), test.ShouldBeError, board.ErrPinIsInput)

	test.That(t, p.SetDirection(ctx, board.DirectionOutput, nil), test.ShouldBeNil)
	test.That(t, p.Set(ctx, true, nil), test.ShouldBeNil)
	high, err := p.Get(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeTrue)

	same, err := b.GPIOPinByName("7")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, same, test.ShouldEqual, p)
	test.That(t, b.GPIOPins["7"].DirectionHistory(), test.ShouldResemble, []board.Direction{board.DirectionOutput})

	test.That(t, b.Close(ctx), test.ShouldBeNil)
	_, err = b.GPIOPinByName("8")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSimulatedEcho(t *testing.T) {
	ctx := context.Background()
	clk := NewClock(time.Microsecond)
	b := NewBoard(clk, logging.NewTestLogger(t))
	b.AttachEcho("trig", "echo", Echo{Delay: 100 * time.Microsecond, Width: 50 * time.Microsecond})

	trig, err := b.GPIOPinByName("trig")
	test.That(t, err, test.ShouldBeNil)
	echo, err := b.GPIOPinByName("echo")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, trig.SetDirection(ctx, board.DirectionOutput, nil), test.ShouldBeNil)

	high, err := echo.Get(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, high, test.ShouldBeFalse)

	test.That(t, trig.Set(ctx, true, nil), test.ShouldBeNil)
	test.That(t, trig.Set(ctx, false, nil), test.ShouldBeNil)

	clk.Add(99 * time.Microsecond)
	high, _ = echo.Get(ctx, nil)
	test.That(t, high, test.ShouldBeFalse)

	clk.Add(time.Microsecond)
	high, _ = echo.Get(ctx, nil)
	test.That(t, high, test.ShouldBeTrue)

	clk.Add(49 * time.Microsecond)
	high, _ = echo.Get(ctx, nil)
	test.That(t, high, test.ShouldBeTrue)

	clk.Add(time.Microsecond)
	high, _ = echo.Get(ctx, nil)
	test.That(t, high, test.ShouldBeFalse)

	test.That(t, b.SetEcho("trig", Echo{Delay: 0, Width: Never}), test.ShouldBeNil)
	high, _ = echo.Get(ctx, nil)
	test.That(t, high, test.ShouldBeTrue)

	test.That(t, b.SetEcho("echo", Echo{}), test.ShouldNotBeNil)
}

func TestClock(t *testing.T) {
	clk := NewClock(2 * time.Microsecond)
	start := clk.Peek()
	test.That(t, clk.Now().Sub(start), test.ShouldEqual, 2*time.Microsecond)
	test.That(t, clk.Since(start), test.ShouldEqual, 4*time.Microsecond)
	test.That(t, clk.Peek().Sub(start), test.ShouldEqual, 4*time.Microsecond)

	board.BusyWait(clk, 10*time.Microsecond)
	test.That(t, clk.Peek().Sub(start), test.ShouldEqual, 16*time.Microsecond)
}

func TestEchoForDistance(t *testing.T) {
	echo := EchoForDistance(100, 200*time.Microsecond)
	test.That(t, echo.Width, test.ShouldEqual, 5820*time.Microsecond)
	test.That(t, echo.Delay, test.ShouldEqual, 200*time.Microsecond)
}

func TestConfigValidate(t *testing.T) {
	conf := Config{Echoes: []EchoConfig{{}}}
	err := conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `path.echoes.0`)
	test.That(t, err.Error(), test.ShouldContainSubstring, `trigger_pin`)

	conf.Echoes[0] = EchoConfig{TriggerPin: "7", DistanceCm: -1}
	err = conf.Validate("path")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "distance_cm")

	conf.Echoes[0].DistanceCm = 42
	test.That(t, conf.Validate("path"), test.ShouldBeNil)
}

func TestRegisteredModel(t *testing.T) {
	ctx := context.Background()
	b, err := board.New(ctx, board.Config{
		Model: "fake",
		Attributes: map[string]interface{}{
			"step_us": 1,
			"echoes": []interface{}{
				map[string]interface{}{"trigger_pin": "7", "distance_cm": 10.0},
			},
		},
	}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	fb, ok := b.(*Board)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, fb.GPIOPins["7"].trigger, test.ShouldNotBeNil)
	test.That(t, fb.GPIOPins["7"].echo, test.ShouldEqual, fb.GPIOPins["7"].trigger)

	_, err = board.New(ctx, board.Config{Model: "fake", Attributes: map[string]interface{}{"bogus": 1}},
		logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}
