package halsim

import (
	"fmt"
	"sync"

	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/trace"
)

// busKey addresses one dispatch table entry.
type busKey struct {
	handle hal.Handle
	event  hal.Event
}

// Bus is a simulated event source. The zero value is not usable;
// create buses with NewBus.
type Bus struct {
	mu     sync.RWMutex
	table  map[busKey]hal.Trampoline
	logger trace.Logger
	wg     sync.WaitGroup
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger directs drop and panic events to l.
func WithLogger(l trace.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty simulated bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		table:  make(map[busKey]hal.Trampoline),
		logger: trace.NoopLogger{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterCallback installs fn for (h, e).
func (b *Bus) RegisterCallback(h hal.Handle, e hal.Event, fn hal.Trampoline) error {
	if fn == nil {
		return fmt.Errorf("halsim: nil trampoline for %s/%s", h.Peripheral(), e)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	k := busKey{handle: h, event: e}
	if _, exists := b.table[k]; exists {
		return hal.ErrAlreadyRegistered
	}
	b.table[k] = fn
	return nil
}

// UnregisterCallback removes the entry for (h, e).
func (b *Bus) UnregisterCallback(h hal.Handle, e hal.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	k := busKey{handle: h, event: e}
	if _, exists := b.table[k]; !exists {
		return hal.ErrNotRegistered
	}
	delete(b.table, k)
	return nil
}

// RaiseSync delivers a completion in the caller's goroutine and
// reports whether a trampoline was registered. Events with no
// registration are dropped, as real hardware drops an interrupt whose
// handler was never installed.
func (b *Bus) RaiseSync(h hal.Handle, e hal.Event) bool {
	b.mu.RLock()
	fn, ok := b.table[busKey{handle: h, event: e}]
	b.mu.RUnlock()

	if !ok {
		b.logDrop(h, e)
		return false
	}
	fn(h)
	return true
}

// Raise delivers a completion on a fresh goroutine, modelling the
// asynchronous completion context. A panicking callback is recovered
// and recorded so a broken callback cannot take down the process.
// Use Wait to join in-flight deliveries.
func (b *Bus) Raise(h hal.Handle, e hal.Event) {
	b.mu.RLock()
	fn, ok := b.table[busKey{handle: h, event: e}]
	b.mu.RUnlock()

	if !ok {
		b.logDrop(h, e)
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logPanic(h, e, r)
			}
		}()
		fn(h)
	}()
}

// Wait blocks until all deliveries started by Raise have returned.
func (b *Bus) Wait() {
	b.wg.Wait()
}

func (b *Bus) logDrop(h hal.Handle, e hal.Event) {
	ev := trace.New(trace.CategoryDrop)
	ev.Peripheral = h.Peripheral()
	ev.Kind = e
	b.logger.Log(ev)
}

func (b *Bus) logPanic(h hal.Handle, e hal.Event, r any) {
	ev := trace.New(trace.CategoryError)
	ev.Peripheral = h.Peripheral()
	ev.Kind = e
	ev.Error = &trace.ErrorData{
		Message: fmt.Sprintf("callback panic: %v", r),
		Context: "raise",
	}
	b.logger.Log(ev)
}

// Compile-time interface satisfaction check.
var _ hal.EventSource = (*Bus)(nil)
