package halsim

import (
	"sync/atomic"

	"github.com/halio-project/halio-go/pkg/hal"
)

// Timer is a simulated hardware timer. The counter only moves when
// the test advances it, keeping sleeps deterministic.
type Timer struct {
	bus  *Bus
	name string

	counter atomic.Uint32
	running atomic.Bool
}

// NewTimer creates a simulated timer named name on bus.
func NewTimer(bus *Bus, name string) *Timer {
	return &Timer{bus: bus, name: name}
}

// Peripheral returns the timer's name.
func (t *Timer) Peripheral() string {
	return t.name
}

// Start begins counting.
func (t *Timer) Start(_ hal.Mode) error {
	if !t.running.CompareAndSwap(false, true) {
		return hal.ErrBusy
	}
	return nil
}

// Stop ends counting.
func (t *Timer) Stop(_ hal.Mode) error {
	t.running.Store(false)
	return nil
}

// Counter returns the current counter value.
func (t *Timer) Counter() uint32 {
	return t.counter.Load()
}

// SetCounter loads the counter.
func (t *Timer) SetCounter(value uint32) {
	t.counter.Store(value)
}

// Advance moves the counter forward by ticks. A stopped timer does
// not move.
func (t *Timer) Advance(ticks uint32) {
	if !t.running.Load() {
		return
	}
	t.counter.Add(ticks)
}

// RaisePeriod raises a period-elapsed completion synchronously.
func (t *Timer) RaisePeriod() bool {
	return t.bus.RaiseSync(t, hal.EventPeriodElapsed)
}
