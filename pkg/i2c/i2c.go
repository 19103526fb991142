package i2c

import (
	"errors"
	"fmt"
	"time"

	"github.com/halio-project/halio-go/pkg/callback"
	"github.com/halio-project/halio-go/pkg/dispatch"
	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/trace"
)

// AddrSize is the width of a device memory address.
type AddrSize uint8

const (
	// Addr8Bit addresses device memory with one byte.
	Addr8Bit AddrSize = iota
	// Addr16Bit addresses device memory with two bytes.
	Addr16Bit
)

// String returns the address size name.
func (a AddrSize) String() string {
	switch a {
	case Addr8Bit:
		return "8-bit"
	case Addr16Bit:
		return "16-bit"
	default:
		return fmt.Sprintf("addr-size(%d)", uint8(a))
	}
}

// IsValid reports whether a is a defined address size.
func (a AddrSize) IsValid() bool {
	return a <= Addr16Bit
}

// Driver is the backend half of an I2C master. dev is the 7-bit
// device address.
type Driver interface {
	hal.Handle

	MasterTransmit(dev uint16, p []byte, timeout time.Duration) error
	MasterReceive(dev uint16, p []byte, timeout time.Duration) error
	MasterTransmitAsync(dev uint16, p []byte, mode hal.Mode) error
	MasterReceiveAsync(dev uint16, p []byte, mode hal.Mode) error

	MemoryWrite(dev, addr uint16, size AddrSize, p []byte, timeout time.Duration) error
	MemoryRead(dev, addr uint16, size AddrSize, p []byte, timeout time.Duration) error
	MemoryWriteAsync(dev, addr uint16, size AddrSize, p []byte, mode hal.Mode) error
	MemoryReadAsync(dev, addr uint16, size AddrSize, p []byte, mode hal.Mode) error

	// IsDeviceReady probes dev, retrying up to trials times.
	IsDeviceReady(dev uint16, trials int, timeout time.Duration) bool
}

// Config holds I2C façade settings.
type Config struct {
	// Mode is the working mode for asynchronous transfers.
	Mode hal.Mode

	// Timeout bounds blocking transfers.
	Timeout time.Duration

	// AddrSize is the device memory address width for memory
	// operations.
	AddrSize AddrSize

	// ReadyTrials is how many probe attempts IsDeviceReady makes.
	ReadyTrials int

	// Logger receives slot trace events. Nil disables tracing.
	Logger trace.Logger
}

// DefaultConfig returns the default I2C settings.
func DefaultConfig() Config {
	return Config{
		Mode:        hal.ModeInterrupt,
		Timeout:     100 * time.Millisecond,
		AddrSize:    Addr8Bit,
		ReadyTrials: 3,
	}
}

func (c Config) validate() error {
	if !c.Mode.IsValid() || !c.Mode.IsAsync() {
		return fmt.Errorf("i2c: async working mode required, got %s", c.Mode)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("i2c: timeout must be positive, got %s", c.Timeout)
	}
	if !c.AddrSize.IsValid() {
		return fmt.Errorf("i2c: invalid address size %s", c.AddrSize)
	}
	if c.ReadyTrials < 1 {
		return fmt.Errorf("i2c: ready trials must be at least 1, got %d", c.ReadyTrials)
	}
	return nil
}

// Purpose tags for the port's slots. Package-level so that two ports
// opened with the same instance tag collide at bind time.
var (
	purposeTx    = tag.Named("i2c/tx-complete")
	purposeRx    = tag.Named("i2c/rx-complete")
	purposeMemTx = tag.Named("i2c/mem-tx-complete")
	purposeMemRx = tag.Named("i2c/mem-rx-complete")
)

// I2C is an open I2C master port.
type I2C struct {
	drv       Driver
	cfg       Config
	txSlot    *dispatch.Slot
	rxSlot    *dispatch.Slot
	memTxSlot *dispatch.Slot
	memRxSlot *dispatch.Slot
}

// Open binds the port's four completion slots and returns the façade.
func Open(src hal.EventSource, drv Driver, instance tag.Tag, cfg Config) (*I2C, error) {
	if drv == nil {
		return nil, errors.New("i2c: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = trace.NoopLogger{}
	}

	d := &I2C{drv: drv, cfg: cfg}
	bindings := []struct {
		slot    **dispatch.Slot
		purpose tag.Tag
		event   hal.Event
	}{
		{&d.txSlot, purposeTx, hal.EventTxComplete},
		{&d.rxSlot, purposeRx, hal.EventRxComplete},
		{&d.memTxSlot, purposeMemTx, hal.EventMemTxComplete},
		{&d.memRxSlot, purposeMemRx, hal.EventMemRxComplete},
	}
	var bound []*dispatch.Slot
	for _, b := range bindings {
		slot, err := dispatch.Bind(src, drv, instance, b.purpose,
			b.event, dispatch.WithLogger(cfg.Logger))
		if err != nil {
			for _, s := range bound {
				s.Close()
			}
			return nil, err
		}
		*b.slot = slot
		bound = append(bound, slot)
	}
	return d, nil
}

// Close releases all completion slots. Safe to call multiple times.
func (d *I2C) Close() error {
	return errors.Join(
		d.txSlot.Close(),
		d.rxSlot.Close(),
		d.memTxSlot.Close(),
		d.memRxSlot.Close(),
	)
}

// Transmit sends p to device dev, blocking until completion or
// timeout.
func (d *I2C) Transmit(dev uint16, p []byte) error {
	return d.drv.MasterTransmit(dev, clamp(p), d.cfg.Timeout)
}

// Receive fills p from device dev, blocking until completion or
// timeout.
func (d *I2C) Receive(dev uint16, p []byte) error {
	return d.drv.MasterReceive(dev, clamp(p), d.cfg.Timeout)
}

// TransmitAsync sends p to device dev asynchronously; done runs on
// tx-complete.
func (d *I2C) TransmitAsync(dev uint16, p []byte, done callback.Func) error {
	d.txSlot.Set(done)
	if err := d.drv.MasterTransmitAsync(dev, clamp(p), d.cfg.Mode); err != nil {
		d.txSlot.Clear()
		return err
	}
	return nil
}

// ReceiveAsync fills p from device dev asynchronously; done runs on
// rx-complete.
func (d *I2C) ReceiveAsync(dev uint16, p []byte, done callback.Func) error {
	d.rxSlot.Set(done)
	if err := d.drv.MasterReceiveAsync(dev, clamp(p), d.cfg.Mode); err != nil {
		d.rxSlot.Clear()
		return err
	}
	return nil
}

// WriteMemory writes p to register addr of device dev, blocking until
// completion or timeout.
func (d *I2C) WriteMemory(dev, addr uint16, p []byte) error {
	return d.drv.MemoryWrite(dev, addr, d.cfg.AddrSize, clamp(p), d.cfg.Timeout)
}

// ReadMemory fills p from register addr of device dev, blocking until
// completion or timeout.
func (d *I2C) ReadMemory(dev, addr uint16, p []byte) error {
	return d.drv.MemoryRead(dev, addr, d.cfg.AddrSize, clamp(p), d.cfg.Timeout)
}

// WriteMemoryAsync writes p to register addr of device dev
// asynchronously; done runs on mem-tx-complete.
func (d *I2C) WriteMemoryAsync(dev, addr uint16, p []byte, done callback.Func) error {
	d.memTxSlot.Set(done)
	if err := d.drv.MemoryWriteAsync(dev, addr, d.cfg.AddrSize, clamp(p), d.cfg.Mode); err != nil {
		d.memTxSlot.Clear()
		return err
	}
	return nil
}

// ReadMemoryAsync fills p from register addr of device dev
// asynchronously; done runs on mem-rx-complete.
func (d *I2C) ReadMemoryAsync(dev, addr uint16, p []byte, done callback.Func) error {
	d.memRxSlot.Set(done)
	if err := d.drv.MemoryReadAsync(dev, addr, d.cfg.AddrSize, clamp(p), d.cfg.Mode); err != nil {
		d.memRxSlot.Clear()
		return err
	}
	return nil
}

// IsDeviceReady probes device dev with the configured trial count and
// timeout.
func (d *I2C) IsDeviceReady(dev uint16) bool {
	return d.drv.IsDeviceReady(dev, d.cfg.ReadyTrials, d.cfg.Timeout)
}

func clamp(p []byte) []byte {
	if len(p) > hal.MaxTransferLen {
		return p[:hal.MaxTransferLen]
	}
	return p
}
