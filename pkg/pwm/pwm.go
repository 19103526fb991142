// Package pwm provides a PWM output façade mapping an input range
// onto a duty-cycle window.
//
// The timer period defines the compare-register resolution; an input
// value is first clamped to the allowed window, then scaled from the
// input range onto [DutyMin%, DutyMax%] of the period.
package pwm

import (
	"errors"
	"fmt"

	"github.com/halio-project/halio-go/pkg/hal"
)

// Driver is the backend half of one PWM output channel.
type Driver interface {
	hal.Handle

	// Period returns the timer auto-reload value; the compare
	// resolution is Period()+1.
	Period() uint32

	Compare() uint32
	SetCompare(value uint32)

	Start(mode hal.Mode) error
	Stop(mode hal.Mode) error
}

// Config holds PWM façade settings.
type Config struct {
	// Mode is the working mode the output is started in.
	Mode hal.Mode

	// DutyMin and DutyMax bound the generated duty cycle, percent.
	DutyMin float64
	DutyMax float64

	// ScaleMin and ScaleMax define the full input scale mapped onto
	// the duty-cycle window.
	ScaleMin float64
	ScaleMax float64

	// Min and Max bound accepted inputs; a window within the scale.
	// Default is the value driven at start.
	Min     float64
	Max     float64
	Default float64
}

// DefaultConfig returns the default PWM settings: the full 0..100
// scale mapped onto 0..100% duty.
func DefaultConfig() Config {
	return Config{
		Mode:     hal.ModeBlocking,
		DutyMin:  0,
		DutyMax:  100,
		ScaleMin: 0,
		ScaleMax: 100,
		Min:      0,
		Max:      100,
		Default:  0,
	}
}

func (c Config) validate() error {
	if !c.Mode.IsValid() {
		return fmt.Errorf("pwm: invalid mode %s", c.Mode)
	}
	if c.DutyMin < 0 || c.DutyMax > 100 || c.DutyMin >= c.DutyMax {
		return fmt.Errorf("pwm: duty window [%g, %g] must lie within [0, 100]", c.DutyMin, c.DutyMax)
	}
	if c.ScaleMin >= c.ScaleMax {
		return fmt.Errorf("pwm: input scale [%g, %g] is empty", c.ScaleMin, c.ScaleMax)
	}
	if c.Min < c.ScaleMin || c.Max > c.ScaleMax || c.Min >= c.Max {
		return fmt.Errorf("pwm: input window [%g, %g] must lie within scale [%g, %g]",
			c.Min, c.Max, c.ScaleMin, c.ScaleMax)
	}
	if c.Default < c.Min || c.Default > c.Max {
		return fmt.Errorf("pwm: default %g outside input window [%g, %g]", c.Default, c.Min, c.Max)
	}
	return nil
}

// PWM is a started PWM output.
type PWM struct {
	drv Driver
	cfg Config
}

// Open validates the configuration, starts the output and drives it
// to the configured default.
func Open(drv Driver, cfg Config) (*PWM, error) {
	if drv == nil {
		return nil, errors.New("pwm: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	p := &PWM{drv: drv, cfg: cfg}
	if err := drv.Start(cfg.Mode); err != nil {
		return nil, fmt.Errorf("pwm: start output: %w", err)
	}
	p.Set(cfg.Default)
	return p, nil
}

// Close stops the output.
func (p *PWM) Close() error {
	return p.drv.Stop(p.cfg.Mode)
}

// Set drives the output to value. Values outside the input window are
// clamped to it.
func (p *PWM) Set(value float64) {
	if value < p.cfg.Min {
		value = p.cfg.Min
	}
	if value > p.cfg.Max {
		value = p.cfg.Max
	}
	p.drv.SetCompare(p.toCompare(value))
}

// Get returns the current output mapped back onto the input scale.
func (p *PWM) Get() float64 {
	return p.fromCompare(p.drv.Compare())
}

// toCompare maps an input value onto the compare register: the input
// scale spans the duty-cycle window of the timer period.
func (p *PWM) toCompare(value float64) uint32 {
	res := float64(p.drv.Period()) + 1
	lo := res * p.cfg.DutyMin / 100
	hi := res * p.cfg.DutyMax / 100
	frac := (value - p.cfg.ScaleMin) / (p.cfg.ScaleMax - p.cfg.ScaleMin)
	return uint32(lo + frac*(hi-lo) + 0.5)
}

// fromCompare inverts toCompare.
func (p *PWM) fromCompare(compare uint32) float64 {
	res := float64(p.drv.Period()) + 1
	lo := res * p.cfg.DutyMin / 100
	hi := res * p.cfg.DutyMax / 100
	if hi == lo {
		return p.cfg.ScaleMin
	}
	frac := (float64(compare) - lo) / (hi - lo)
	return p.cfg.ScaleMin + frac*(p.cfg.ScaleMax-p.cfg.ScaleMin)
}
