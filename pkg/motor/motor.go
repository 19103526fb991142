// Package motor drives an H-bridge linear motor (L298N style) through
// two direction pins, with timed runs measured on a hardware timer.
package motor

import (
	"context"
	"errors"

	"github.com/halio-project/halio-go/pkg/gpio"
	"github.com/halio-project/halio-go/pkg/timer"
)

// Linear is a single H-bridge channel. Exactly one direction pin is
// driven high at a time; Stop drives both low.
type Linear struct {
	forward  *gpio.Output
	backward *gpio.Output
	tmr      *timer.Timer
}

// New returns a stopped motor. tmr is used for the timed run methods
// and may be nil if they are not needed.
func New(forward, backward *gpio.Output, tmr *timer.Timer) (*Linear, error) {
	if forward == nil || backward == nil {
		return nil, errors.New("motor: both direction pins required")
	}
	m := &Linear{forward: forward, backward: backward, tmr: tmr}
	m.Stop()
	return m, nil
}

// Forward runs the motor forward until Stop.
func (m *Linear) Forward() {
	m.backward.Write(gpio.Low)
	m.forward.Write(gpio.High)
}

// Backward runs the motor backward until Stop.
func (m *Linear) Backward() {
	m.forward.Write(gpio.Low)
	m.backward.Write(gpio.High)
}

// Stop releases both direction pins.
func (m *Linear) Stop() {
	m.forward.Write(gpio.Low)
	m.backward.Write(gpio.Low)
}

// ForwardFor runs forward for ticks timer ticks, then stops. The
// motor is stopped even when the sleep is cancelled.
func (m *Linear) ForwardFor(ctx context.Context, ticks uint32) error {
	if m.tmr == nil {
		return errors.New("motor: timed run requires a timer")
	}
	m.Forward()
	defer m.Stop()
	return m.tmr.SleepFor(ctx, ticks)
}

// BackwardFor runs backward for ticks timer ticks, then stops.
func (m *Linear) BackwardFor(ctx context.Context, ticks uint32) error {
	if m.tmr == nil {
		return errors.New("motor: timed run requires a timer")
	}
	m.Backward()
	defer m.Stop()
	return m.tmr.SleepFor(ctx, ticks)
}
