package hal

import "errors"

// MaxTransferLen is the largest transfer length a peripheral accepts
// in one operation. Longer messages are truncated by the façades,
// matching the 16-bit length registers of the underlying hardware.
const MaxTransferLen = 0xFFFF

// Handle identifies one peripheral instance to its event source.
// Handles are opaque to the dispatch core.
type Handle interface {
	// Peripheral returns a stable human-readable instance name,
	// e.g. "uart2". Used for diagnostics and tracing only.
	Peripheral() string
}

// Trampoline is the callable shape an event source invokes on
// completion. Implementations must tolerate being called with any
// handle value, including nil: the registration, not the argument,
// selects the callback that runs.
type Trampoline func(Handle)

// EventSource is the registration surface of a backend.
//
// RegisterCallback installs fn for (h, e); it fails with
// ErrAlreadyRegistered if a trampoline is already installed there.
// UnregisterCallback removes the entry and fails with ErrNotRegistered
// if none exists. After UnregisterCallback returns, the backend no
// longer calls the removed trampoline for newly raised events.
type EventSource interface {
	RegisterCallback(h Handle, e Event, fn Trampoline) error
	UnregisterCallback(h Handle, e Event) error
}

var (
	// ErrAlreadyRegistered is returned by RegisterCallback when the
	// (handle, event) entry is occupied.
	ErrAlreadyRegistered = errors.New("hal: callback already registered")

	// ErrNotRegistered is returned by UnregisterCallback when no
	// trampoline is installed for the (handle, event) entry.
	ErrNotRegistered = errors.New("hal: callback not registered")

	// ErrTimeout is returned by blocking operations that did not
	// complete within their timeout.
	ErrTimeout = errors.New("hal: operation timed out")

	// ErrBusy is returned when an asynchronous operation is armed
	// while a previous one on the same channel is still pending.
	ErrBusy = errors.New("hal: peripheral busy")
)
