package timer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/timer"
)

func TestCounterOperations(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	tmr, err := timer.Open(nil, drv, tag.Named("tim3"), timer.DefaultConfig())
	require.NoError(t, err)
	defer tmr.Close()

	drv.Advance(7)
	assert.Equal(t, uint32(7), tmr.Counter())

	tmr.SetCounter(100)
	assert.Equal(t, uint32(100), tmr.Counter())

	tmr.Reset()
	assert.Equal(t, uint32(0), tmr.Counter())
}

func TestSleepFor(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	cfg := timer.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	tmr, err := timer.Open(nil, drv, tag.Named("tim3"), cfg)
	require.NoError(t, err)
	defer tmr.Close()

	go func() {
		for i := 0; i < 20; i++ {
			time.Sleep(2 * time.Millisecond)
			drv.Advance(1)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tmr.SleepFor(ctx, 10))
	assert.GreaterOrEqual(t, tmr.Counter(), uint32(10))
}

func TestSleepForHonorsContext(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	cfg := timer.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	tmr, err := timer.Open(nil, drv, tag.Named("tim3"), cfg)
	require.NoError(t, err)
	defer tmr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	// The counter never advances, so only the context ends the sleep.
	err = tmr.SleepFor(ctx, 1000)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSleepUntil(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	cfg := timer.DefaultConfig()
	cfg.PollInterval = time.Millisecond
	tmr, err := timer.Open(nil, drv, tag.Named("tim3"), cfg)
	require.NoError(t, err)
	defer tmr.Close()

	tmr.SetCounter(50)
	ctx := context.Background()
	require.NoError(t, tmr.SleepUntil(ctx, 40), "target already reached")
}

func TestPeriodElapsedCallback(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	cfg := timer.DefaultConfig()
	cfg.Mode = hal.ModeInterrupt
	tmr, err := timer.Open(bus, drv, tag.Named("tim3"), cfg)
	require.NoError(t, err)
	defer tmr.Close()

	ticks := 0
	require.NoError(t, tmr.OnPeriodElapsed(func() { ticks++ }))

	drv.RaisePeriod()
	drv.RaisePeriod()
	assert.Equal(t, 2, ticks)
}

func TestPeriodCallbackRequiresInterruptMode(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")

	tmr, err := timer.Open(nil, drv, tag.Named("tim3"), timer.DefaultConfig())
	require.NoError(t, err)
	defer tmr.Close()

	assert.Error(t, tmr.OnPeriodElapsed(func() {}))
}

func TestCloseReleasesPeriodSlot(t *testing.T) {
	bus := halsim.NewBus()
	drv := halsim.NewTimer(bus, "tim3")
	instance := tag.Named("tim3-instance")

	cfg := timer.DefaultConfig()
	cfg.Mode = hal.ModeInterrupt
	tmr, err := timer.Open(bus, drv, instance, cfg)
	require.NoError(t, err)
	require.NoError(t, tmr.Close())

	assert.False(t, drv.RaisePeriod(), "a closed timer's completions are dropped")

	again, err := timer.Open(bus, drv, instance, cfg)
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}
