// Package timer provides a free-running counter façade with
// context-aware sleeps and an optional period-elapsed callback.
package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/halio-project/halio-go/pkg/callback"
	"github.com/halio-project/halio-go/pkg/dispatch"
	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/trace"
)

// Driver is the backend half of a hardware timer.
type Driver interface {
	hal.Handle

	Start(mode hal.Mode) error
	Stop(mode hal.Mode) error
	Counter() uint32
	SetCounter(value uint32)
}

// Config holds timer façade settings.
type Config struct {
	// Mode is the working mode the timer is started in. The
	// period-elapsed slot is only bound in interrupt mode.
	Mode hal.Mode

	// PollInterval is how often sleeps re-check the counter.
	PollInterval time.Duration

	// Logger receives slot trace events. Nil disables tracing.
	Logger trace.Logger
}

// DefaultConfig returns the default timer settings.
func DefaultConfig() Config {
	return Config{
		Mode:         hal.ModeBlocking,
		PollInterval: 100 * time.Microsecond,
	}
}

func (c Config) validate() error {
	if c.Mode != hal.ModeBlocking && c.Mode != hal.ModeInterrupt {
		return fmt.Errorf("timer: mode must be blocking or interrupt, got %s", c.Mode)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("timer: poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}

// purposePeriod is package-level so that two timers opened with the
// same instance tag collide at bind time.
var purposePeriod = tag.Named("timer/period-elapsed")

// Timer is a started hardware timer.
type Timer struct {
	drv        Driver
	cfg        Config
	periodSlot *dispatch.Slot
}

// Open validates the configuration, starts the timer and, in
// interrupt mode, binds the period-elapsed slot. src may be nil in
// blocking mode.
func Open(src hal.EventSource, drv Driver, instance tag.Tag, cfg Config) (*Timer, error) {
	if drv == nil {
		return nil, errors.New("timer: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = trace.NoopLogger{}
	}

	t := &Timer{drv: drv, cfg: cfg}
	if cfg.Mode == hal.ModeInterrupt {
		slot, err := dispatch.Bind(src, drv, instance, purposePeriod,
			hal.EventPeriodElapsed, dispatch.WithLogger(cfg.Logger))
		if err != nil {
			return nil, err
		}
		t.periodSlot = slot
	}
	if err := drv.Start(cfg.Mode); err != nil {
		if t.periodSlot != nil {
			t.periodSlot.Close()
		}
		return nil, fmt.Errorf("timer: start: %w", err)
	}
	return t, nil
}

// Close stops the timer and releases the period-elapsed slot if one
// was bound.
func (t *Timer) Close() error {
	err := t.drv.Stop(t.cfg.Mode)
	if t.periodSlot != nil {
		err = errors.Join(err, t.periodSlot.Close())
	}
	return err
}

// OnPeriodElapsed arms fn to run on every period rollover. Only
// available in interrupt mode.
func (t *Timer) OnPeriodElapsed(fn callback.Func) error {
	if t.periodSlot == nil {
		return fmt.Errorf("timer: period callback requires %s mode, timer runs in %s",
			hal.ModeInterrupt, t.cfg.Mode)
	}
	t.periodSlot.Set(fn)
	return nil
}

// Counter returns the current counter value.
func (t *Timer) Counter() uint32 {
	return t.drv.Counter()
}

// SetCounter loads the counter with value.
func (t *Timer) SetCounter(value uint32) {
	t.drv.SetCounter(value)
}

// Reset loads the counter with zero.
func (t *Timer) Reset() {
	t.drv.SetCounter(0)
}

// SleepFor blocks until the counter has advanced by at least ticks
// from its value at the call, or ctx is done. Counter wraparound is
// handled by unsigned subtraction.
func (t *Timer) SleepFor(ctx context.Context, ticks uint32) error {
	start := t.drv.Counter()
	for t.drv.Counter()-start < ticks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.PollInterval):
		}
	}
	return nil
}

// SleepUntil blocks until the counter reaches at least target, or ctx
// is done.
func (t *Timer) SleepUntil(ctx context.Context, target uint32) error {
	for t.drv.Counter() < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.cfg.PollInterval):
		}
	}
	return nil
}
