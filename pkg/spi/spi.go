package spi

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

// Driver is the backend half of an SPI master.
type Driver interface {
	hal.Handle

	Transmit(p []byte, timeout time.Duration) error
	Receive(p []byte, timeout time.Duration) error

	// TransmitReceive shifts tx out while filling rx. Both slices
	// must have the same length.
	TransmitReceive(tx, rx []byte, timeout time.Duration) error

	TransmitAsync(p []byte, mode hal.Mode) error
	ReceiveAsync(p []byte, mode hal.Mode) error
	TransmitReceiveAsync(tx, rx []byte, mode hal.Mode) error
}

// Config holds SPI façade settings.
type Config struct {
	// Mode is the working mode for asynchronous transfers.
	Mode hal.Mode

	// Timeout bounds blocking transfers.
	Timeout time.Duration

	// Logger receives slot trace events. Nil disables tracing.
	Logger trace.Logger
}

// DefaultConfig returns the default SPI settings.
func DefaultConfig() Config {
	return Config{
		Mode:    hal.ModeInterrupt,
		Timeout: 100 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if !c.Mode.IsValid() || !c.Mode.IsAsync() {
		return fmt.Errorf("spi: async working mode required, got %s", c.Mode)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("spi: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Purpose tags for the port's slots. Package-level so that two ports
// opened with the same instance tag collide at bind time.
var (
	purposeTx   = tag.Named("spi/tx-complete")
	purposeRx   = tag.Named("spi/rx-complete")
	purposeTxRx = tag.Named("spi/txrx-complete")
)

// SPI is an open SPI master port.
type SPI struct {
	drv      Driver
	cfg      Config
	txSlot   *dispatch.Slot
	rxSlot   *dispatch.Slot
	txrxSlot *dispatch.Slot
}

// Open binds the port's three completion slots and returns the façade.
func Open(src hal.EventSource, drv Driver, instance tag.Tag, cfg Config) (*SPI, error) {
	if drv == nil {
		return nil, errors.New("spi: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = trace.NoopLogger{}
	}

	s := &SPI{drv: drv, cfg: cfg}

	var err error
	if s.txSlot, err = dispatch.Bind(src, drv, instance, purposeTx,
		hal.EventTxComplete, dispatch.WithLogger(cfg.Logger)); err != nil {
		return nil, err
	}
	if s.rxSlot, err = dispatch.Bind(src, drv, instance, purposeRx,
		hal.EventRxComplete, dispatch.WithLogger(cfg.Logger)); err != nil {
		s.txSlot.Close()
		return nil, err
	}
	if s.txrxSlot, err = dispatch.Bind(src, drv, instance, purposeTxRx,
		hal.EventTxRxComplete, dispatch.WithLogger(cfg.Logger)); err != nil {
		s.txSlot.Close()
		s.rxSlot.Close()
		return nil, err
	}
	return s, nil
}

// Close releases all completion slots. Safe to call multiple times.
func (s *SPI) Close() error {
	return errors.Join(s.txSlot.Close(), s.rxSlot.Close(), s.txrxSlot.Close())
}

// Transmit sends p, blocking until completion or timeout.
func (s *SPI) Transmit(p []byte) error {
	return s.drv.Transmit(clamp(p), s.cfg.Timeout)
}

// Receive fills p, blocking until completion or timeout.
func (s *SPI) Receive(p []byte) error {
	return s.drv.Receive(clamp(p), s.cfg.Timeout)
}

// TransmitReceive runs a full-duplex transfer, blocking until
// completion or timeout. tx and rx must have the same length.
func (s *SPI) TransmitReceive(tx, rx []byte) error {
	if len(tx) != len(rx) {
		return fmt.Errorf("spi: buffer length mismatch: tx %d, rx %d", len(tx), len(rx))
	}
	return s.drv.TransmitReceive(clamp(tx), clamp(rx), s.cfg.Timeout)
}

// TransmitAsync sends p in the configured asynchronous mode; done runs
// on tx-complete.
func (s *SPI) TransmitAsync(p []byte, done callback.Func) error {
	s.txSlot.Set(done)
	if err := s.drv.TransmitAsync(clamp(p), s.cfg.Mode); err != nil {
		s.txSlot.Clear()
		return err
	}
	return nil
}

// ReceiveAsync fills p in the configured asynchronous mode; done runs
// on rx-complete.
func (s *SPI) ReceiveAsync(p []byte, done callback.Func) error {
	s.rxSlot.Set(done)
	if err := s.drv.ReceiveAsync(clamp(p), s.cfg.Mode); err != nil {
		s.rxSlot.Clear()
		return err
	}
	return nil
}

// TransmitReceiveAsync runs a full-duplex transfer in the configured
// asynchronous mode; done runs on txrx-complete.
func (s *SPI) TransmitReceiveAsync(tx, rx []byte, done callback.Func) error {
	if len(tx) != len(rx) {
		return fmt.Errorf("spi: buffer length mismatch: tx %d, rx %d", len(tx), len(rx))
	}
	s.txrxSlot.Set(done)
	if err := s.drv.TransmitReceiveAsync(clamp(tx), clamp(rx), s.cfg.Mode); err != nil {
		s.txrxSlot.Clear()
		return err
	}
	return nil
}

func clamp(p []byte) []byte {
	if len(p) > hal.MaxTransferLen {
		return p[:hal.MaxTransferLen]
	}
	return p
}
