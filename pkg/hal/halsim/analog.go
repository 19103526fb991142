package halsim

import (
	"sync"
	"time"

	"github.com/halio-project/halio-go/pkg/dac"
	"github.com/halio-project/halio-go/pkg/hal"
)

// ADC is a simulated ADC channel fed from a sample queue. A Poll with
// an empty queue fails like a hardware timeout, so tests can model
// missed conversions.
type ADC struct {
	name string

	mu      sync.Mutex
	samples []uint32
	value   uint32
	started bool
}

// NewADC creates a simulated ADC channel named name.
func NewADC(name string) *ADC {
	return &ADC{name: name}
}

// Peripheral returns the channel's name.
func (a *ADC) Peripheral() string {
	return a.name
}

// QueueSamples appends raw samples for upcoming conversions.
func (a *ADC) QueueSamples(samples ...uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.samples = append(a.samples, samples...)
}

// Start begins a conversion sequence.
func (a *ADC) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return hal.ErrBusy
	}
	a.started = true
	return nil
}

// Poll completes the conversion with the next queued sample.
func (a *ADC) Poll(_ time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.started {
		return hal.ErrNotRegistered
	}
	if len(a.samples) == 0 {
		return hal.ErrTimeout
	}
	a.value = a.samples[0]
	a.samples = a.samples[1:]
	return nil
}

// Value returns the last completed conversion's sample.
func (a *ADC) Value() uint32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value
}

// Stop ends the conversion sequence.
func (a *ADC) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = false
	return nil
}

// DAC is a simulated DAC peripheral holding one register per channel.
type DAC struct {
	name string

	mu      sync.Mutex
	values  map[dac.Channel]uint32
	started map[dac.Channel]bool
}

// NewDAC creates a simulated DAC named name.
func NewDAC(name string) *DAC {
	return &DAC{
		name:    name,
		values:  make(map[dac.Channel]uint32),
		started: make(map[dac.Channel]bool),
	}
}

// Peripheral returns the peripheral's name.
func (d *DAC) Peripheral() string {
	return d.name
}

// Start enables ch.
func (d *DAC) Start(ch dac.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started[ch] = true
	return nil
}

// Stop disables ch.
func (d *DAC) Stop(ch dac.Channel) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.started[ch] = false
	return nil
}

// SetValue writes the channel register. Writing a stopped channel
// fails.
func (d *DAC) SetValue(ch dac.Channel, _ dac.Alignment, value uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started[ch] {
		return hal.ErrNotRegistered
	}
	d.values[ch] = value
	return nil
}

// Value reads the channel register.
func (d *DAC) Value(ch dac.Channel) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[ch]
}
