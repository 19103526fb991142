package uart

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

// Driver is the backend half of a UART port: the transfer operations
// plus the handle identity the event source dispatches on.
type Driver interface {
	hal.Handle

	// Transmit sends p synchronously, returning when the transfer
	// finished or the timeout expired.
	Transmit(p []byte, timeout time.Duration) error

	// Receive fills p synchronously.
	Receive(p []byte, timeout time.Duration) error

	// TransmitAsync arms an asynchronous send of p. Completion is
	// raised as hal.EventTxComplete.
	TransmitAsync(p []byte, mode hal.Mode) error

	// ReceiveAsync arms an asynchronous receive into p. Completion is
	// raised as hal.EventRxComplete.
	ReceiveAsync(p []byte, mode hal.Mode) error
}

// Config holds UART façade settings.
type Config struct {
	// Mode is the working mode for asynchronous transfers
	// (interrupt or DMA).
	Mode hal.Mode

	// Timeout bounds blocking transfers.
	Timeout time.Duration

	// Logger receives slot lifecycle and dispatch trace events.
	// Nil disables tracing.
	Logger trace.Logger
}

// DefaultConfig returns the default UART settings: interrupt mode,
// 100ms blocking timeout, tracing disabled.
func DefaultConfig() Config {
	return Config{
		Mode:    hal.ModeInterrupt,
		Timeout: 100 * time.Millisecond,
	}
}

func (c Config) validate() error {
	if !c.Mode.IsValid() || !c.Mode.IsAsync() {
		return fmt.Errorf("uart: async working mode required, got %s", c.Mode)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("uart: timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// Purpose tags for the port's slots. Package-level so that two ports
// opened with the same instance tag collide at bind time instead of
// silently sharing storage.
var (
	purposeTx = tag.Named("uart/tx-complete")
	purposeRx = tag.Named("uart/rx-complete")
)

// UART is an open UART port.
type UART struct {
	drv    Driver
	cfg    Config
	txSlot *dispatch.Slot
	rxSlot *dispatch.Slot
}

// Open binds the port's completion slots and returns the façade.
// instance identifies this port's slot storage; opening two ports with
// the same instance tag fails with dispatch.ErrSlotBound.
func Open(src hal.EventSource, drv Driver, instance tag.Tag, cfg Config) (*UART, error) {
	if drv == nil {
		return nil, errors.New("uart: nil driver")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = trace.NoopLogger{}
	}

	txSlot, err := dispatch.Bind(src, drv, instance, purposeTx,
		hal.EventTxComplete, dispatch.WithLogger(cfg.Logger))
	if err != nil {
		return nil, err
	}
	rxSlot, err := dispatch.Bind(src, drv, instance, purposeRx,
		hal.EventRxComplete, dispatch.WithLogger(cfg.Logger))
	if err != nil {
		txSlot.Close()
		return nil, err
	}

	return &UART{drv: drv, cfg: cfg, txSlot: txSlot, rxSlot: rxSlot}, nil
}

// Close releases both completion slots. Safe to call multiple times.
func (u *UART) Close() error {
	return errors.Join(u.txSlot.Close(), u.rxSlot.Close())
}

// Transmit sends p, blocking until completion or the configured
// timeout. Messages longer than hal.MaxTransferLen are truncated.
func (u *UART) Transmit(p []byte) error {
	return u.drv.Transmit(clamp(p), u.cfg.Timeout)
}

// Receive fills p, blocking until completion or the configured
// timeout.
func (u *UART) Receive(p []byte) error {
	return u.drv.Receive(clamp(p), u.cfg.Timeout)
}

// TransmitAsync sends p in the configured asynchronous mode. done is
// armed before the transfer starts and runs in the completion context
// when the hardware raises tx-complete; nil means no callback.
func (u *UART) TransmitAsync(p []byte, done callback.Func) error {
	u.txSlot.Set(done)
	if err := u.drv.TransmitAsync(clamp(p), u.cfg.Mode); err != nil {
		u.txSlot.Clear()
		return err
	}
	return nil
}

// ReceiveAsync fills p in the configured asynchronous mode. done runs
// in the completion context when the hardware raises rx-complete.
func (u *UART) ReceiveAsync(p []byte, done callback.Func) error {
	u.rxSlot.Set(done)
	if err := u.drv.ReceiveAsync(clamp(p), u.cfg.Mode); err != nil {
		u.rxSlot.Clear()
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
