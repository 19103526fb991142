// Package serialhal is a hal backend bridging a host serial device
// onto the UART driver contract.
//
// A Port is both the event source and the driver for one device:
// blocking transfers go straight to the port, asynchronous transfers
// are serviced by background goroutines that raise tx-/rx-complete
// events when the transfer finishes. Useful for exercising the
// dispatch stack against real hardware attached to the host.
package serialhal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tarm/serial"
	"golang.org/x/sync/errgroup"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/trace"
	"github.com/halio-project/halio-go/pkg/uart"
)

// Config holds serial port settings.
type Config struct {
	// Device is the host device path, e.g. /dev/ttyUSB0.
	Device string

	// Baud is the line rate.
	Baud int

	// ReadTimeout bounds each low-level read.
	ReadTimeout time.Duration

	// Logger receives drop and error trace events. Nil disables
	// tracing.
	Logger trace.Logger
}

// DefaultConfig returns common settings for a USB serial adapter.
func DefaultConfig(device string) Config {
	return Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100 * time.Millisecond,
	}
}

// Port is an open serial device usable as both hal.EventSource and
// uart driver.
type Port struct {
	name   string
	port   *serial.Port
	logger trace.Logger

	mu        sync.Mutex
	callbacks map[hal.Event]hal.Trampoline
	closed    bool

	armCh  chan []byte
	group  *errgroup.Group
	cancel context.CancelFunc
}

// Open opens the device and starts the receive pump. name is the
// peripheral name the port reports to the dispatch layer.
func Open(name string, cfg Config) (*Port, error) {
	if cfg.Logger == nil {
		cfg.Logger = trace.NoopLogger{}
	}

	sp, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("serialhal: open %s: %w", cfg.Device, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &Port{
		name:      name,
		port:      sp,
		logger:    cfg.Logger,
		callbacks: make(map[hal.Event]hal.Trampoline),
		armCh:     make(chan []byte, 1),
		group:     group,
		cancel:    cancel,
	}
	group.Go(func() error { return p.readPump(ctx) })
	return p, nil
}

// Peripheral returns the port's name.
func (p *Port) Peripheral() string {
	return p.name
}

// Close stops the pump and closes the device. Safe to call multiple
// times.
func (p *Port) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	err := p.port.Close()
	if werr := p.group.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		err = errors.Join(err, werr)
	}
	return err
}

// RegisterCallback installs fn for event e on this port. The handle
// must be the port itself.
func (p *Port) RegisterCallback(h hal.Handle, e hal.Event, fn hal.Trampoline) error {
	if h != hal.Handle(p) {
		return fmt.Errorf("serialhal: foreign handle for %s", e)
	}
	if fn == nil {
		return fmt.Errorf("serialhal: nil trampoline for %s", e)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.callbacks[e]; exists {
		return hal.ErrAlreadyRegistered
	}
	p.callbacks[e] = fn
	return nil
}

// UnregisterCallback removes the entry for event e.
func (p *Port) UnregisterCallback(h hal.Handle, e hal.Event) error {
	if h != hal.Handle(p) {
		return fmt.Errorf("serialhal: foreign handle for %s", e)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.callbacks[e]; !exists {
		return hal.ErrNotRegistered
	}
	delete(p.callbacks, e)
	return nil
}

// Transmit writes p to the device, blocking until the OS accepted the
// whole buffer.
func (p *Port) Transmit(buf []byte, _ time.Duration) error {
	_, err := p.port.Write(buf)
	return err
}

// Receive fills buf from the device. The configured read timeout
// bounds each low-level read.
func (p *Port) Receive(buf []byte, _ time.Duration) error {
	_, err := io.ReadFull(p.port, buf)
	return err
}

// TransmitAsync writes buf on a background goroutine and raises
// tx-complete when done.
func (p *Port) TransmitAsync(buf []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	p.group.Go(func() error {
		if _, err := p.port.Write(buf); err != nil {
			p.logError(err, "async transmit")
			return nil
		}
		p.raise(hal.EventTxComplete)
		return nil
	})
	return nil
}

// ReceiveAsync arms buf as the target of the receive pump; rx-complete
// is raised once the buffer is full. Only one receive may be armed at
// a time.
func (p *Port) ReceiveAsync(buf []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	select {
	case p.armCh <- buf:
		return nil
	default:
		return hal.ErrBusy
	}
}

// readPump services armed asynchronous receives.
func (p *Port) readPump(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case buf := <-p.armCh:
			if _, err := io.ReadFull(p.port, buf); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				p.logError(err, "async receive")
				continue
			}
			p.raise(hal.EventRxComplete)
		}
	}
}

// raise delivers a completion to the registered trampoline, dropping
// it when none is installed.
func (p *Port) raise(e hal.Event) {
	p.mu.Lock()
	fn := p.callbacks[e]
	p.mu.Unlock()

	if fn == nil {
		ev := trace.New(trace.CategoryDrop)
		ev.Peripheral = p.name
		ev.Kind = e
		p.logger.Log(ev)
		return
	}
	fn(p)
}

func (p *Port) logError(err error, context string) {
	ev := trace.New(trace.CategoryError)
	ev.Peripheral = p.name
	ev.Error = &trace.ErrorData{Message: err.Error(), Context: context}
	p.logger.Log(ev)
}

// Compile-time interface satisfaction checks.
var (
	_ hal.EventSource = (*Port)(nil)
	_ uart.Driver     = (*Port)(nil)
)
