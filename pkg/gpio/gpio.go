// Package gpio provides typed input and output pin façades.
package gpio

import (
	"errors"
	"fmt"
)

// PinState is the logic level of a pin.
type PinState uint8

const (
	// Low is logic level 0.
	Low PinState = iota
	// High is logic level 1.
	High
)

// String returns the state name.
func (s PinState) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return fmt.Sprintf("pin-state(%d)", uint8(s))
	}
}

// Driver is the backend half of a GPIO port.
type Driver interface {
	// Peripheral returns the port's instance name, e.g. "gpioa".
	Peripheral() string

	ReadPin(pin uint16) PinState
	WritePin(pin uint16, s PinState)
	TogglePin(pin uint16)
}

// Input is a read-only pin.
type Input struct {
	drv Driver
	pin uint16
}

// NewInput returns an input façade for pin on drv.
func NewInput(drv Driver, pin uint16) (*Input, error) {
	if drv == nil {
		return nil, errors.New("gpio: nil driver")
	}
	return &Input{drv: drv, pin: pin}, nil
}

// Read returns the pin's current level.
func (i *Input) Read() PinState {
	return i.drv.ReadPin(i.pin)
}

// Output is a writable pin.
type Output struct {
	drv Driver
	pin uint16
}

// NewOutput returns an output façade for pin on drv, driven to the
// given initial level.
func NewOutput(drv Driver, pin uint16, initial PinState) (*Output, error) {
	if drv == nil {
		return nil, errors.New("gpio: nil driver")
	}
	o := &Output{drv: drv, pin: pin}
	o.Write(initial)
	return o, nil
}

// Write drives the pin to s.
func (o *Output) Write(s PinState) {
	o.drv.WritePin(o.pin, s)
}

// Toggle inverts the pin's level.
func (o *Output) Toggle() {
	o.drv.TogglePin(o.pin)
}

// Read returns the level the pin is driven to.
func (o *Output) Read() PinState {
	return o.drv.ReadPin(o.pin)
}
