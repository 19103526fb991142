package halsim

import (
	"sync"
	"time"

	"github.com/halio-project/halio-go/pkg/hal"
)

// UART is a simulated UART port. Transmitted frames are recorded;
// received data is fed in by the test through FeedRx.
type UART struct {
	bus  *Bus
	name string

	mu        sync.Mutex
	sent      [][]byte
	rxQueue   [][]byte
	rxPending []byte
	txPending bool
}

// NewUART creates a simulated UART named name on bus.
func NewUART(bus *Bus, name string) *UART {
	return &UART{bus: bus, name: name}
}

// Peripheral returns the port's name.
func (u *UART) Peripheral() string {
	return u.name
}

// Transmit records p as a sent frame.
func (u *UART) Transmit(p []byte, _ time.Duration) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sent = append(u.sent, append([]byte(nil), p...))
	return nil
}

// Receive fills p from the next queued frame. With nothing queued it
// fails like a hardware timeout.
func (u *UART) Receive(p []byte, _ time.Duration) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.rxQueue) == 0 {
		return hal.ErrTimeout
	}
	copy(p, u.rxQueue[0])
	u.rxQueue = u.rxQueue[1:]
	return nil
}

// TransmitAsync records p and marks a transmit pending until
// CompleteTx.
func (u *UART) TransmitAsync(p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.txPending {
		return hal.ErrBusy
	}
	u.txPending = true
	u.sent = append(u.sent, append([]byte(nil), p...))
	return nil
}

// ReceiveAsync arms p as the target buffer of the next FeedRx.
func (u *UART) ReceiveAsync(p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.rxPending != nil {
		return hal.ErrBusy
	}
	u.rxPending = p
	return nil
}

// CompleteTx finishes a pending transmit and raises tx-complete
// synchronously. It reports whether a completion was delivered.
func (u *UART) CompleteTx() bool {
	u.mu.Lock()
	if !u.txPending {
		u.mu.Unlock()
		return false
	}
	u.txPending = false
	u.mu.Unlock()

	return u.bus.RaiseSync(u, hal.EventTxComplete)
}

// FeedRx delivers data to the port. An armed asynchronous receive is
// filled and rx-complete raised synchronously; otherwise the data is
// queued for blocking Receive calls.
func (u *UART) FeedRx(data []byte) {
	u.mu.Lock()
	if u.rxPending != nil {
		copy(u.rxPending, data)
		u.rxPending = nil
		u.mu.Unlock()
		u.bus.RaiseSync(u, hal.EventRxComplete)
		return
	}
	u.rxQueue = append(u.rxQueue, append([]byte(nil), data...))
	u.mu.Unlock()
}

// Sent returns copies of all transmitted frames in order.
func (u *UART) Sent() [][]byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([][]byte, len(u.sent))
	for i, f := range u.sent {
		out[i] = append([]byte(nil), f...)
	}
	return out
}
