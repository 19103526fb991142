// Package adc provides an ADC channel façade with median filtering
// and output-range mapping.
package adc

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// Resolution is the converter's sample width.
type Resolution uint8

const (
	// Res12Bit samples span 0..4095.
	Res12Bit Resolution = iota
	// Res10Bit samples span 0..1023.
	Res10Bit
	// Res8Bit samples span 0..255.
	Res8Bit
)

// Max returns the largest raw sample value for the resolution.
func (r Resolution) Max() uint32 {
	switch r {
	case Res12Bit:
		return 4095
	case Res10Bit:
		return 1023
	case Res8Bit:
		return 255
	default:
		return 0
	}
}

// String returns the resolution name.
func (r Resolution) String() string {
	switch r {
	case Res12Bit:
		return "12-bit"
	case Res10Bit:
		return "10-bit"
	case Res8Bit:
		return "8-bit"
	default:
		return fmt.Sprintf("resolution(%d)", uint8(r))
	}
}

// IsValid reports whether r is a defined resolution.
func (r Resolution) IsValid() bool {
	return r <= Res8Bit
}

// Driver is the backend half of one ADC channel. A conversion is a
// Start / Poll / Value / Stop sequence.
type Driver interface {
	// Peripheral returns the channel's instance name, e.g. "adc1".
	Peripheral() string

	Start() error
	Poll(timeout time.Duration) error
	Value() uint32
	Stop() error
}

// Config holds ADC façade settings.
type Config struct {
	// Resolution is the converter's configured sample width.
	Resolution Resolution

	// OutputMax is the upper bound of the mapped output range
	// [0, OutputMax] returned by Read.
	OutputMax uint32

	// FilterSize is the median filter window for Read. Must be odd.
	FilterSize int

	// Timeout bounds each conversion poll.
	Timeout time.Duration
}

// DefaultConfig returns the default ADC settings: 12-bit resolution,
// output range 0..100, 5-sample median filter.
func DefaultConfig() Config {
	return Config{
		Resolution: Res12Bit,
		OutputMax:  100,
		FilterSize: 5,
		Timeout:    5 * time.Second,
	}
}

func (c Config) validate() error {
	if !c.Resolution.IsValid() {
		return fmt.Errorf("adc: invalid resolution %s", c.Resolution)
	}
	if c.OutputMax == 0 {
		return errors.New("adc: output max must be positive")
	}
	if c.FilterSize < 1 || c.FilterSize%2 == 0 {
		return fmt.Errorf("adc: filter size must be odd and positive, got %d", c.FilterSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("adc: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// ErrNoConversion is returned by Read when every conversion in the
// filter window failed.
var ErrNoConversion = errors.New("adc: no conversion completed")

// ADC is a configured ADC channel.
type ADC struct {
	drv Driver
	cfg Config
}

// Open validates the configuration and returns the façade.
func Open(drv Driver, cfg Config) (*ADC, error) {
	if drv == nil {
		return nil, errors.New("adc: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &ADC{drv: drv, cfg: cfg}, nil
}

// Raw runs a single conversion and returns the unmapped sample.
func (a *ADC) Raw() (uint32, error) {
	if err := a.drv.Start(); err != nil {
		return 0, fmt.Errorf("adc: start conversion: %w", err)
	}
	defer a.drv.Stop()

	if err := a.drv.Poll(a.cfg.Timeout); err != nil {
		return 0, fmt.Errorf("adc: poll conversion: %w", err)
	}
	return a.drv.Value(), nil
}

// Read runs FilterSize conversions, takes the median of the ones that
// completed and maps it onto [0, OutputMax]. Failed conversions are
// skipped; if none completed, ErrNoConversion is returned.
func (a *ADC) Read() (uint32, error) {
	samples := make([]uint32, 0, a.cfg.FilterSize)
	for i := 0; i < a.cfg.FilterSize; i++ {
		raw, err := a.Raw()
		if err != nil {
			continue
		}
		samples = append(samples, raw)
	}
	if len(samples) == 0 {
		return 0, ErrNoConversion
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	median := samples[len(samples)/2]
	return a.mapToOutput(median), nil
}

// mapToOutput scales a raw sample onto the configured output range,
// rounding to nearest.
func (a *ADC) mapToOutput(raw uint32) uint32 {
	max := a.cfg.Resolution.Max()
	if raw > max {
		raw = max
	}
	scaled := float64(raw) * float64(a.cfg.OutputMax) / float64(max)
	return uint32(scaled + 0.5)
}
