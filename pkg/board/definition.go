package board

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/halio-project/halio-go/pkg/adc"
	"github.com/halio-project/halio-go/pkg/dac"
	"github.com/halio-project/halio-go/pkg/hal"
)

// Definition is a parsed board file.
type Definition struct {
	// Board is the board's display name.
	Board string `yaml:"board"`

	UARTs  []UARTDef  `yaml:"uarts,omitempty"`
	SPIs   []SPIDef   `yaml:"spis,omitempty"`
	I2Cs   []I2CDef   `yaml:"i2cs,omitempty"`
	ADCs   []ADCDef   `yaml:"adcs,omitempty"`
	DACs   []DACDef   `yaml:"dacs,omitempty"`
	PWMs   []PWMDef   `yaml:"pwms,omitempty"`
	Timers []TimerDef `yaml:"timers,omitempty"`
	GPIOs  []GPIODef  `yaml:"gpios,omitempty"`
}

// UARTDef declares one UART port.
type UARTDef struct {
	Name      string   `yaml:"name"`
	Mode      hal.Mode `yaml:"mode,omitempty"`
	TimeoutMS int      `yaml:"timeout_ms,omitempty"`
}

// SPIDef declares one SPI master port.
type SPIDef struct {
	Name      string   `yaml:"name"`
	Mode      hal.Mode `yaml:"mode,omitempty"`
	TimeoutMS int      `yaml:"timeout_ms,omitempty"`
}

// I2CDef declares one I2C master port.
type I2CDef struct {
	Name      string   `yaml:"name"`
	Mode      hal.Mode `yaml:"mode,omitempty"`
	TimeoutMS int      `yaml:"timeout_ms,omitempty"`
	AddrBits  int      `yaml:"addr_bits,omitempty"`
	Devices   []uint16 `yaml:"devices,omitempty"`
}

// ADCDef declares one ADC channel.
type ADCDef struct {
	Name       string `yaml:"name"`
	Resolution int    `yaml:"resolution,omitempty"`
	OutputMax  uint32 `yaml:"output_max,omitempty"`
	FilterSize int    `yaml:"filter_size,omitempty"`
}

// DACDef declares one DAC channel.
type DACDef struct {
	Name      string `yaml:"name"`
	Channel   int    `yaml:"channel,omitempty"`
	Alignment string `yaml:"alignment,omitempty"`
	InputMax  uint32 `yaml:"input_max,omitempty"`
}

// PWMDef declares one PWM output channel.
type PWMDef struct {
	Name    string  `yaml:"name"`
	Period  uint32  `yaml:"period"`
	DutyMin float64 `yaml:"duty_min,omitempty"`
	DutyMax float64 `yaml:"duty_max,omitempty"`
}

// TimerDef declares one hardware timer.
type TimerDef struct {
	Name string   `yaml:"name"`
	Mode hal.Mode `yaml:"mode,omitempty"`
}

// GPIODef declares one GPIO port.
type GPIODef struct {
	Name string `yaml:"name"`
}

// Load reads and parses a board file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a board definition. Unknown fields are rejected.
func Parse(data []byte) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("board: parse: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// FieldError describes one invalid definition field.
type FieldError struct {
	Path   string
	Value  any
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("board: %s: %v: %s", e.Path, e.Value, e.Reason)
}

func fieldErr(path string, value any, reason string) *FieldError {
	return &FieldError{Path: path, Value: value, Reason: reason}
}

// Validate checks the definition for completeness and consistency.
// All problems are reported, joined into one error.
func (d *Definition) Validate() error {
	var errs []error
	if d.Board == "" {
		errs = append(errs, fieldErr("board", "", "board name required"))
	}

	names := make(map[string]bool)
	unique := func(path, name string) {
		if name == "" {
			errs = append(errs, fieldErr(path+".name", "", "peripheral name required"))
			return
		}
		if names[name] {
			errs = append(errs, fieldErr(path+".name", name, "duplicate peripheral name"))
		}
		names[name] = true
	}

	for i, u := range d.UARTs {
		path := fmt.Sprintf("uarts[%d]", i)
		unique(path, u.Name)
		if u.TimeoutMS < 0 {
			errs = append(errs, fieldErr(path+".timeout_ms", u.TimeoutMS, "must not be negative"))
		}
	}
	for i, s := range d.SPIs {
		path := fmt.Sprintf("spis[%d]", i)
		unique(path, s.Name)
		if s.TimeoutMS < 0 {
			errs = append(errs, fieldErr(path+".timeout_ms", s.TimeoutMS, "must not be negative"))
		}
	}
	for i, c := range d.I2Cs {
		path := fmt.Sprintf("i2cs[%d]", i)
		unique(path, c.Name)
		if c.AddrBits != 0 && c.AddrBits != 8 && c.AddrBits != 16 {
			errs = append(errs, fieldErr(path+".addr_bits", c.AddrBits, "must be 8 or 16"))
		}
	}
	for i, a := range d.ADCs {
		path := fmt.Sprintf("adcs[%d]", i)
		unique(path, a.Name)
		if _, err := a.resolution(); err != nil {
			errs = append(errs, fieldErr(path+".resolution", a.Resolution, err.Error()))
		}
		if a.FilterSize < 0 || (a.FilterSize > 0 && a.FilterSize%2 == 0) {
			errs = append(errs, fieldErr(path+".filter_size", a.FilterSize, "must be odd"))
		}
	}
	for i, da := range d.DACs {
		path := fmt.Sprintf("dacs[%d]", i)
		unique(path, da.Name)
		if da.Channel < 0 || da.Channel > 1 {
			errs = append(errs, fieldErr(path+".channel", da.Channel, "must be 0 or 1"))
		}
		if _, err := da.alignment(); err != nil {
			errs = append(errs, fieldErr(path+".alignment", da.Alignment, err.Error()))
		}
	}
	for i, p := range d.PWMs {
		path := fmt.Sprintf("pwms[%d]", i)
		unique(path, p.Name)
		if p.Period == 0 {
			errs = append(errs, fieldErr(path+".period", p.Period, "period required"))
		}
		if p.DutyMin < 0 || p.DutyMax > 100 || (p.DutyMax != 0 && p.DutyMin >= p.DutyMax) {
			errs = append(errs, fieldErr(path+".duty_min", p.DutyMin, "duty window must lie within [0, 100]"))
		}
	}
	for i, tm := range d.Timers {
		path := fmt.Sprintf("timers[%d]", i)
		unique(path, tm.Name)
		if tm.Mode == hal.ModeDMA {
			errs = append(errs, fieldErr(path+".mode", tm.Mode.String(), "timers run blocking or interrupt"))
		}
	}
	for i, g := range d.GPIOs {
		unique(fmt.Sprintf("gpios[%d]", i), g.Name)
	}

	return errors.Join(errs...)
}

func (u UARTDef) timeout() time.Duration {
	if u.TimeoutMS == 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

func (s SPIDef) timeout() time.Duration {
	if s.TimeoutMS == 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

func (c I2CDef) timeout() time.Duration {
	if c.TimeoutMS == 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

func (a ADCDef) resolution() (adc.Resolution, error) {
	switch a.Resolution {
	case 0, 12:
		return adc.Res12Bit, nil
	case 10:
		return adc.Res10Bit, nil
	case 8:
		return adc.Res8Bit, nil
	default:
		return 0, errors.New("must be 8, 10 or 12")
	}
}

func (d DACDef) alignment() (dac.Alignment, error) {
	switch d.Alignment {
	case "", "12-bit-right":
		return dac.Align12BitRight, nil
	case "12-bit-left":
		return dac.Align12BitLeft, nil
	case "8-bit-right":
		return dac.Align8BitRight, nil
	default:
		return 0, errors.New("must be 12-bit-right, 12-bit-left or 8-bit-right")
	}
}
