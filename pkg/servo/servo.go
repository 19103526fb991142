// Package servo provides a hobby-servo angle façade over a PWM
// output. Angles span 0-180 degrees, generated as a 2.5-12% duty
// cycle.
package servo

import (
	"fmt"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/pwm"
)

const (
	// MinAngle and MaxAngle bound the servo's full travel, degrees.
	MinAngle = 0
	MaxAngle = 180

	// DefaultAngle is the position driven at start.
	DefaultAngle = 90

	// dutyMin and dutyMax are the pulse widths for full travel,
	// percent of the PWM period.
	dutyMin = 2.5
	dutyMax = 12
)

// Config holds servo settings.
type Config struct {
	// Min and Max bound accepted angles; a window within full
	// travel. Default is the angle driven at start.
	Min     float64
	Max     float64
	Default float64
}

// DefaultConfig returns the full-travel servo settings.
func DefaultConfig() Config {
	return Config{Min: MinAngle, Max: MaxAngle, Default: DefaultAngle}
}

// Servo is a started servo output.
type Servo struct {
	out *pwm.PWM
}

// Open starts the PWM output with the servo duty-cycle window and
// drives it to the configured default angle.
func Open(drv pwm.Driver, cfg Config) (*Servo, error) {
	if cfg.Min < MinAngle || cfg.Max > MaxAngle || cfg.Min >= cfg.Max {
		return nil, fmt.Errorf("servo: angle window [%g, %g] must lie within [%d, %d]",
			cfg.Min, cfg.Max, MinAngle, MaxAngle)
	}

	out, err := pwm.Open(drv, pwm.Config{
		Mode:     hal.ModeBlocking,
		DutyMin:  dutyMin,
		DutyMax:  dutyMax,
		ScaleMin: MinAngle,
		ScaleMax: MaxAngle,
		Min:      cfg.Min,
		Max:      cfg.Max,
		Default:  cfg.Default,
	})
	if err != nil {
		return nil, err
	}
	return &Servo{out: out}, nil
}

// Close stops the PWM output.
func (s *Servo) Close() error {
	return s.out.Close()
}

// Set drives the servo to angle degrees, clamped to the configured
// window.
func (s *Servo) Set(angle float64) {
	s.out.Set(angle)
}

// Get returns the servo's current angle in degrees.
func (s *Servo) Get() float64 {
	return s.out.Get()
}
