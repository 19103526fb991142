package halsim

import (
	"sync"

	"github.com/halio-project/halio-go/pkg/gpio"
)

// GPIO is a simulated GPIO port. Pins not written read low.
type GPIO struct {
	name string

	mu   sync.Mutex
	pins map[uint16]gpio.PinState
}

// NewGPIO creates a simulated GPIO port named name.
func NewGPIO(name string) *GPIO {
	return &GPIO{name: name, pins: make(map[uint16]gpio.PinState)}
}

// Peripheral returns the port's name.
func (g *GPIO) Peripheral() string {
	return g.name
}

// ReadPin returns the pin's level.
func (g *GPIO) ReadPin(pin uint16) gpio.PinState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pins[pin]
}

// WritePin drives the pin to s.
func (g *GPIO) WritePin(pin uint16, s gpio.PinState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pins[pin] = s
}

// TogglePin inverts the pin's level.
func (g *GPIO) TogglePin(pin uint16) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pins[pin] == gpio.Low {
		g.pins[pin] = gpio.High
	} else {
		g.pins[pin] = gpio.Low
	}
}

// Compile-time interface satisfaction check.
var _ gpio.Driver = (*GPIO)(nil)
