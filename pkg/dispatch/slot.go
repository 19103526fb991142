package dispatch

import (
	"errors"
	"fmt"
	"sync"

	"github.com/halio-project/halio-go/pkg/callback"
	"github.com/halio-project/halio-go/pkg/hal"
	"github.com/halio-project/halio-go/pkg/tag"
	"github.com/halio-project/halio-go/pkg/trace"
)

var (
	// ErrSlotBound is returned by Bind when the (instance, purpose)
	// identity pair is already reserved by a live slot.
	ErrSlotBound = errors.New("dispatch: identity pair already bound")

	// ErrInvalidTag is returned by Bind when either tag is the zero
	// value.
	ErrInvalidTag = errors.New("dispatch: invalid tag")

	// ErrNilSource is returned by Bind when no event source is given.
	ErrNilSource = errors.New("dispatch: nil event source")
)

// Slot is one live binding of a callback cell to a completion event.
// Create slots with Bind; a Slot must not be copied.
type Slot struct {
	src    hal.EventSource
	handle hal.Handle
	event  hal.Event
	key    slotKey
	cell   *callback.Cell
	logger trace.Logger

	mu     sync.Mutex
	closed bool
}

// Option configures a Slot at bind time.
type Option func(*Slot)

// WithLogger directs the slot's lifecycle and dispatch events to l.
func WithLogger(l trace.Logger) Option {
	return func(s *Slot) {
		if l != nil {
			s.logger = l
		}
	}
}

// Bind reserves storage for the (instance, purpose) identity pair and
// registers a trampoline for (handle, event) with the event source.
// The new slot starts empty: a completion arriving before Set is a
// safe no-op.
//
// Bind fails with ErrSlotBound if the identity pair is in use, and
// surfaces any registration error from the event source; in both cases
// nothing is left registered or reserved.
func Bind(src hal.EventSource, handle hal.Handle, instance, purpose tag.Tag, event hal.Event, opts ...Option) (*Slot, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if !instance.Valid() || !purpose.Valid() {
		return nil, ErrInvalidTag
	}

	key := slotKey{instance: instance, purpose: purpose}
	cell, err := global.claim(key)
	if err != nil {
		return nil, err
	}

	s := &Slot{
		src:    src,
		handle: handle,
		event:  event,
		key:    key,
		cell:   cell,
		logger: trace.NoopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := src.RegisterCallback(handle, event, s.dispatch); err != nil {
		global.release(key)
		s.logError(err, "register callback")
		return nil, fmt.Errorf("dispatch: register %s for %s: %w", event, key, err)
	}

	s.log(trace.CategoryRegister)
	return s, nil
}

// Set arms the slot with fn, replacing any previously armed callback.
// A nil fn disarms the slot, equivalent to Clear. Safe to call while
// completions are being delivered.
func (s *Slot) Set(fn callback.Func) {
	s.cell.Set(fn)
	if fn == nil {
		s.log(trace.CategoryDisarm)
		return
	}
	s.log(trace.CategoryArm)
}

// Clear disarms the slot. Subsequent completions are safe no-ops.
func (s *Slot) Clear() {
	s.cell.Reset()
	s.log(trace.CategoryDisarm)
}

// IsSet reports whether the slot is currently armed.
func (s *Slot) IsSet() bool {
	return s.cell.IsSet()
}

// Handle returns the handle the slot was bound with.
func (s *Slot) Handle() hal.Handle {
	return s.handle
}

// Event returns the completion-event kind the slot is bound to.
func (s *Slot) Event() hal.Event {
	return s.event
}

// Close unregisters the trampoline from the event source, disarms the
// cell and releases the identity pair for reuse. Close is idempotent;
// the unregistration error from the first call, if any, is returned.
// The cell is emptied and the key released even when unregistration
// fails.
func (s *Slot) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	err := s.src.UnregisterCallback(s.handle, s.event)
	s.cell.Reset()
	global.release(s.key)

	if err != nil {
		s.logError(err, "unregister callback")
		return fmt.Errorf("dispatch: unregister %s for %s: %w", s.event, s.key, err)
	}
	s.log(trace.CategoryUnregister)
	return nil
}

// dispatch is the trampoline registered with the event source. It runs
// in the completion context; the handle argument is ignored, the
// registration alone selects this slot's cell.
func (s *Slot) dispatch(hal.Handle) {
	if s.cell.Invoke() {
		s.log(trace.CategoryDispatch)
		return
	}
	s.log(trace.CategoryEmptyDispatch)
}

func (s *Slot) log(category trace.Category) {
	e := trace.New(category)
	s.fill(&e)
	s.logger.Log(e)
}

func (s *Slot) logError(err error, context string) {
	e := trace.New(trace.CategoryError)
	s.fill(&e)
	e.Error = &trace.ErrorData{Message: err.Error(), Context: context}
	s.logger.Log(e)
}

func (s *Slot) fill(e *trace.Event) {
	if s.handle != nil {
		e.Peripheral = s.handle.Peripheral()
	}
	e.Kind = s.event
	e.Instance = s.key.instance.String()
	e.Purpose = s.key.purpose.String()
}
