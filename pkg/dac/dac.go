// Package dac provides a DAC channel façade with input-range mapping
// onto the alignment's resolution.
package dac

import (
	"errors"
	"fmt"
)

// Alignment selects the data register format of the converter.
type Alignment uint8

const (
	// Align12BitRight writes 12-bit right-aligned values.
	Align12BitRight Alignment = iota
	// Align12BitLeft writes 12-bit left-aligned values.
	Align12BitLeft
	// Align8BitRight writes 8-bit right-aligned values.
	Align8BitRight
)

// Max returns the largest register value for the alignment.
func (a Alignment) Max() uint32 {
	switch a {
	case Align12BitRight, Align12BitLeft:
		return 4095
	case Align8BitRight:
		return 255
	default:
		return 0
	}
}

// String returns the alignment name.
func (a Alignment) String() string {
	switch a {
	case Align12BitRight:
		return "12-bit-right"
	case Align12BitLeft:
		return "12-bit-left"
	case Align8BitRight:
		return "8-bit-right"
	default:
		return fmt.Sprintf("alignment(%d)", uint8(a))
	}
}

// IsValid reports whether a is a defined alignment.
func (a Alignment) IsValid() bool {
	return a <= Align8BitRight
}

// Channel identifies one converter output of the peripheral.
type Channel uint8

const (
	// Channel1 is the first converter output.
	Channel1 Channel = iota
	// Channel2 is the second converter output.
	Channel2
)

// Driver is the backend half of a DAC peripheral.
type Driver interface {
	// Peripheral returns the instance name, e.g. "dac1".
	Peripheral() string

	Start(ch Channel) error
	Stop(ch Channel) error
	SetValue(ch Channel, align Alignment, value uint32) error
	Value(ch Channel) uint32
}

// Config holds DAC façade settings.
type Config struct {
	// Channel is the converter output this façade drives.
	Channel Channel

	// Alignment is the register format values are written in.
	Alignment Alignment

	// InputMax is the upper bound of the accepted input range
	// [0, InputMax]; inputs map linearly onto the alignment's
	// register range.
	InputMax uint32
}

// DefaultConfig returns the default DAC settings.
func DefaultConfig() Config {
	return Config{
		Channel:   Channel1,
		Alignment: Align12BitRight,
		InputMax:  100,
	}
}

func (c Config) validate() error {
	if c.Channel > Channel2 {
		return fmt.Errorf("dac: invalid channel %d", c.Channel)
	}
	if !c.Alignment.IsValid() {
		return fmt.Errorf("dac: invalid alignment %s", c.Alignment)
	}
	if c.InputMax == 0 {
		return errors.New("dac: input max must be positive")
	}
	return nil
}

// DAC is a started DAC channel.
type DAC struct {
	drv Driver
	cfg Config
}

// Open validates the configuration, starts the channel and drives it
// to zero.
func Open(drv Driver, cfg Config) (*DAC, error) {
	if drv == nil {
		return nil, errors.New("dac: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := &DAC{drv: drv, cfg: cfg}
	if err := drv.Start(cfg.Channel); err != nil {
		return nil, fmt.Errorf("dac: start channel: %w", err)
	}
	if err := d.Set(0); err != nil {
		drv.Stop(cfg.Channel)
		return nil, err
	}
	return d, nil
}

// Close stops the channel.
func (d *DAC) Close() error {
	return d.drv.Stop(d.cfg.Channel)
}

// Set drives the output to value. Inputs above InputMax are clamped.
func (d *DAC) Set(value uint32) error {
	if value > d.cfg.InputMax {
		value = d.cfg.InputMax
	}
	reg := mapRange(value, d.cfg.InputMax, d.cfg.Alignment.Max())
	return d.drv.SetValue(d.cfg.Channel, d.cfg.Alignment, reg)
}

// Get returns the current output mapped back onto the input range.
func (d *DAC) Get() uint32 {
	reg := d.drv.Value(d.cfg.Channel)
	return mapRange(reg, d.cfg.Alignment.Max(), d.cfg.InputMax)
}

// mapRange scales value from [0, fromMax] onto [0, toMax], rounding
// to nearest.
func mapRange(value, fromMax, toMax uint32) uint32 {
	if value > fromMax {
		value = fromMax
	}
	return uint32(float64(value)*float64(toMax)/float64(fromMax) + 0.5)
}
