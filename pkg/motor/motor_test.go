package motor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/gpio"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
	"github.com/halio-project/halio-go/pkg/motor"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/timer"
)

const (
	pinForward  = 1
	pinBackward = 2
)

func newMotor(t *testing.T, withTimer bool) (*halsim.GPIO, *halsim.Timer, *motor.Linear) {
	t.Helper()
	port := halsim.NewGPIO("gpiob")
	fwd, err := gpio.NewOutput(port, pinForward, gpio.Low)
	require.NoError(t, err)
	back, err := gpio.NewOutput(port, pinBackward, gpio.Low)
	require.NoError(t, err)

	var tmr *timer.Timer
	var drvTimer *halsim.Timer
	if withTimer {
		bus := halsim.NewBus()
		drvTimer = halsim.NewTimer(bus, "tim3")
		cfg := timer.DefaultConfig()
		cfg.PollInterval = time.Millisecond
		tmr, err = timer.Open(nil, drvTimer, tag.New(), cfg)
		require.NoError(t, err)
		t.Cleanup(func() { tmr.Close() })
	}

	m, err := motor.New(fwd, back, tmr)
	require.NoError(t, err)
	return port, drvTimer, m
}

func TestNewStartsStopped(t *testing.T) {
	port, _, _ := newMotor(t, false)

	assert.Equal(t, gpio.Low, port.ReadPin(pinForward))
	assert.Equal(t, gpio.Low, port.ReadPin(pinBackward))
}

func TestDirectionsAreMutuallyExclusive(t *testing.T) {
	port, _, m := newMotor(t, false)

	m.Forward()
	assert.Equal(t, gpio.High, port.ReadPin(pinForward))
	assert.Equal(t, gpio.Low, port.ReadPin(pinBackward))

	m.Backward()
	assert.Equal(t, gpio.Low, port.ReadPin(pinForward))
	assert.Equal(t, gpio.High, port.ReadPin(pinBackward))

	m.Stop()
	assert.Equal(t, gpio.Low, port.ReadPin(pinForward))
	assert.Equal(t, gpio.Low, port.ReadPin(pinBackward))
}

func TestForwardForStopsAfterTicks(t *testing.T) {
	port, drvTimer, m := newMotor(t, true)

	go func() {
		for i := 0; i < 20; i++ {
			time.Sleep(2 * time.Millisecond)
			drvTimer.Advance(1)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.ForwardFor(ctx, 5))

	assert.Equal(t, gpio.Low, port.ReadPin(pinForward), "the motor stops after the run")
	assert.Equal(t, gpio.Low, port.ReadPin(pinBackward))
}

func TestTimedRunStopsOnCancel(t *testing.T) {
	port, _, m := newMotor(t, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err := m.BackwardFor(ctx, 1000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, gpio.Low, port.ReadPin(pinBackward), "cancel still stops the motor")
}

func TestTimedRunWithoutTimer(t *testing.T) {
	_, _, m := newMotor(t, false)

	assert.Error(t, m.ForwardFor(context.Background(), 1))
}

func TestNewRequiresBothPins(t *testing.T) {
	port := halsim.NewGPIO("gpiob")
	fwd, err := gpio.NewOutput(port, pinForward, gpio.Low)
	require.NoError(t, err)

	_, err = motor.New(fwd, nil, nil)
	assert.Error(t, err)
}
