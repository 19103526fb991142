package halsim

import (
	"sync"

	"github.com/halio-project/halio-go/pkg/hal"
)

// PWM is a simulated PWM output channel with a fixed period.
type PWM struct {
	name   string
	period uint32

	mu      sync.Mutex
	compare uint32
	running bool
}

// NewPWM creates a simulated PWM channel named name with the given
// timer period (auto-reload value).
func NewPWM(name string, period uint32) *PWM {
	return &PWM{name: name, period: period}
}

// Peripheral returns the channel's name.
func (p *PWM) Peripheral() string {
	return p.name
}

// Period returns the auto-reload value.
func (p *PWM) Period() uint32 {
	return p.period
}

// Compare reads the compare register.
func (p *PWM) Compare() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.compare
}

// SetCompare writes the compare register.
func (p *PWM) SetCompare(value uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.compare = value
}

// Start begins pulse generation.
func (p *PWM) Start(_ hal.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return hal.ErrBusy
	}
	p.running = true
	return nil
}

// Stop ends pulse generation.
func (p *PWM) Stop(_ hal.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	return nil
}

// Running reports whether the channel is generating pulses.
func (p *PWM) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}
