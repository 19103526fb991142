package board

import (
	"errors"
	"fmt"

	"github.com/halio-project/halio-go/pkg/adc"
	"github.com/halio-project/halio-go/pkg/dac"
	"github.com/halio-project/halio-go/pkg/hal/halsim"
	"github.com/halio-project/halio-go/pkg/i2c"
	"github.com/halio-project/halio-go/pkg/pwm"
	"github.com/halio-project/halio-go/pkg/spi"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/timer"
	"github.com/halio-project/halio-go/pkg/trace"
	"github.com/halio-project/halio-go/pkg/uart"
)

// Board is a built simulated board: every declared peripheral wired
// onto one halsim bus, façades opened and slots bound.
type Board struct {
	Name string
	Bus  *halsim.Bus

	UARTs  map[string]*uart.UART
	SPIs   map[string]*spi.SPI
	I2Cs   map[string]*i2c.I2C
	ADCs   map[string]*adc.ADC
	DACs   map[string]*dac.DAC
	PWMs   map[string]*pwm.PWM
	Timers map[string]*timer.Timer
	GPIOs  map[string]*halsim.GPIO

	// Sim handles for driving the fake hardware from tests and
	// tooling.
	SimUARTs  map[string]*halsim.UART
	SimSPIs   map[string]*halsim.SPI
	SimI2Cs   map[string]*halsim.I2C
	SimADCs   map[string]*halsim.ADC
	SimPWMs   map[string]*halsim.PWM
	SimTimers map[string]*halsim.Timer

	closers []func() error
}

// Build wires the definition onto a fresh simulated bus. logger
// receives the dispatch trace of every opened façade; nil disables
// tracing. On error everything already opened is closed again.
func (d *Definition) Build(logger trace.Logger) (*Board, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = trace.NoopLogger{}
	}

	b := &Board{
		Name:      d.Board,
		Bus:       halsim.NewBus(halsim.WithLogger(logger)),
		UARTs:     make(map[string]*uart.UART),
		SPIs:      make(map[string]*spi.SPI),
		I2Cs:      make(map[string]*i2c.I2C),
		ADCs:      make(map[string]*adc.ADC),
		DACs:      make(map[string]*dac.DAC),
		PWMs:      make(map[string]*pwm.PWM),
		Timers:    make(map[string]*timer.Timer),
		GPIOs:     make(map[string]*halsim.GPIO),
		SimUARTs:  make(map[string]*halsim.UART),
		SimSPIs:   make(map[string]*halsim.SPI),
		SimI2Cs:   make(map[string]*halsim.I2C),
		SimADCs:   make(map[string]*halsim.ADC),
		SimPWMs:   make(map[string]*halsim.PWM),
		SimTimers: make(map[string]*halsim.Timer),
	}

	fail := func(name string, err error) (*Board, error) {
		b.Close()
		return nil, fmt.Errorf("board: build %s: %w", name, err)
	}

	for _, def := range d.UARTs {
		drv := halsim.NewUART(b.Bus, def.Name)
		cfg := uart.DefaultConfig()
		if def.Mode.IsAsync() {
			cfg.Mode = def.Mode
		}
		cfg.Timeout = def.timeout()
		cfg.Logger = logger
		port, err := uart.Open(b.Bus, drv, tag.Named(def.Name), cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.UARTs[def.Name] = port
		b.SimUARTs[def.Name] = drv
		b.closers = append(b.closers, port.Close)
	}

	for _, def := range d.SPIs {
		drv := halsim.NewSPI(b.Bus, def.Name)
		cfg := spi.DefaultConfig()
		if def.Mode.IsAsync() {
			cfg.Mode = def.Mode
		}
		cfg.Timeout = def.timeout()
		cfg.Logger = logger
		port, err := spi.Open(b.Bus, drv, tag.Named(def.Name), cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.SPIs[def.Name] = port
		b.SimSPIs[def.Name] = drv
		b.closers = append(b.closers, port.Close)
	}

	for _, def := range d.I2Cs {
		drv := halsim.NewI2C(b.Bus, def.Name)
		for _, dev := range def.Devices {
			drv.AttachDevice(dev)
		}
		cfg := i2c.DefaultConfig()
		if def.Mode.IsAsync() {
			cfg.Mode = def.Mode
		}
		cfg.Timeout = def.timeout()
		if def.AddrBits == 16 {
			cfg.AddrSize = i2c.Addr16Bit
		}
		cfg.Logger = logger
		port, err := i2c.Open(b.Bus, drv, tag.Named(def.Name), cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.I2Cs[def.Name] = port
		b.SimI2Cs[def.Name] = drv
		b.closers = append(b.closers, port.Close)
	}

	for _, def := range d.ADCs {
		drv := halsim.NewADC(def.Name)
		cfg := adc.DefaultConfig()
		cfg.Resolution, _ = def.resolution()
		if def.OutputMax != 0 {
			cfg.OutputMax = def.OutputMax
		}
		if def.FilterSize != 0 {
			cfg.FilterSize = def.FilterSize
		}
		a, err := adc.Open(drv, cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.ADCs[def.Name] = a
		b.SimADCs[def.Name] = drv
	}

	for _, def := range d.DACs {
		drv := halsim.NewDAC(def.Name)
		cfg := dac.DefaultConfig()
		cfg.Channel = dac.Channel(def.Channel)
		cfg.Alignment, _ = def.alignment()
		if def.InputMax != 0 {
			cfg.InputMax = def.InputMax
		}
		da, err := dac.Open(drv, cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.DACs[def.Name] = da
		b.closers = append(b.closers, da.Close)
	}

	for _, def := range d.PWMs {
		drv := halsim.NewPWM(def.Name, def.Period)
		cfg := pwm.DefaultConfig()
		if def.DutyMax != 0 {
			cfg.DutyMin = def.DutyMin
			cfg.DutyMax = def.DutyMax
		}
		p, err := pwm.Open(drv, cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.PWMs[def.Name] = p
		b.SimPWMs[def.Name] = drv
		b.closers = append(b.closers, p.Close)
	}

	for _, def := range d.Timers {
		drv := halsim.NewTimer(b.Bus, def.Name)
		cfg := timer.DefaultConfig()
		cfg.Mode = def.Mode
		cfg.Logger = logger
		tm, err := timer.Open(b.Bus, drv, tag.Named(def.Name), cfg)
		if err != nil {
			return fail(def.Name, err)
		}
		b.Timers[def.Name] = tm
		b.SimTimers[def.Name] = drv
		b.closers = append(b.closers, tm.Close)
	}

	for _, def := range d.GPIOs {
		b.GPIOs[def.Name] = halsim.NewGPIO(def.Name)
	}

	return b, nil
}

// Close closes every opened façade, releasing all dispatch slots.
func (b *Board) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Peripherals lists every declared peripheral name by kind, for
// display.
func (b *Board) Peripherals() map[string][]string {
	out := make(map[string][]string)
	for n := range b.UARTs {
		out["uart"] = append(out["uart"], n)
	}
	for n := range b.SPIs {
		out["spi"] = append(out["spi"], n)
	}
	for n := range b.I2Cs {
		out["i2c"] = append(out["i2c"], n)
	}
	for n := range b.ADCs {
		out["adc"] = append(out["adc"], n)
	}
	for n := range b.DACs {
		out["dac"] = append(out["dac"], n)
	}
	for n := range b.PWMs {
		out["pwm"] = append(out["pwm"], n)
	}
	for n := range b.Timers {
		out["timer"] = append(out["timer"], n)
	}
	for n := range b.GPIOs {
		out["gpio"] = append(out["gpio"], n)
	}
	return out
}
