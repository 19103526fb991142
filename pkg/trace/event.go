package trace

import (
	"time"

	"github.com/google/uuid"

	"github.com/halio-project/halio-go/pkg/hal"
)

// Event represents one captured dispatch event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the process run that produced the event
	// (UUID, one per process).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Peripheral is the handle's instance name, e.g. "uart2".
	Peripheral string `cbor:"4,keyasint,omitempty"`

	// Kind is the completion-event kind the slot is bound to. Always
	// encoded: the zero kind is a valid completion event.
	Kind hal.Event `cbor:"5,keyasint"`

	// Instance is the diagnostic rendering of the instance tag.
	Instance string `cbor:"6,keyasint,omitempty"`

	// Purpose is the diagnostic rendering of the purpose tag.
	Purpose string `cbor:"7,keyasint,omitempty"`

	// Error carries error details for CategoryError events.
	Error *ErrorData `cbor:"8,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryRegister indicates a slot bound to its event source.
	CategoryRegister Category = 0
	// CategoryUnregister indicates a slot released from its event source.
	CategoryUnregister Category = 1
	// CategoryArm indicates a callback stored into a slot.
	CategoryArm Category = 2
	// CategoryDisarm indicates a slot's callback cleared.
	CategoryDisarm Category = 3
	// CategoryDispatch indicates a completion delivered to an armed slot.
	CategoryDispatch Category = 4
	// CategoryEmptyDispatch indicates a completion delivered to an
	// empty slot (the safe no-op path).
	CategoryEmptyDispatch Category = 5
	// CategoryDrop indicates a completion raised with no registered
	// trampoline, discarded by the event source.
	CategoryDrop Category = 6
	// CategoryError indicates an error event.
	CategoryError Category = 7
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryRegister:
		return "REGISTER"
	case CategoryUnregister:
		return "UNREGISTER"
	case CategoryArm:
		return "ARM"
	case CategoryDisarm:
		return "DISARM"
	case CategoryDispatch:
		return "DISPATCH"
	case CategoryEmptyDispatch:
		return "EMPTY-DISPATCH"
	case CategoryDrop:
		return "DROP"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ErrorData captures error details.
type ErrorData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}

// sessionID is assigned once per process and stamped into every event
// built through New.
var sessionID = uuid.New().String()

// SessionID returns the trace session identifier for this process.
func SessionID() string {
	return sessionID
}

// New builds an event stamped with the current time and the process
// session ID.
func New(category Category) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  category,
	}
}
