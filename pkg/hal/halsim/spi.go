package halsim

import (
	"sync"
	"time"

	"github.com/halio-project/halio-go/pkg/hal"
)

// SPI is a simulated SPI master. Shifted-out frames are recorded;
// shifted-in data comes from a response queue.
type SPI struct {
	bus  *Bus
	name string

	mu          sync.Mutex
	sent        [][]byte
	responses   [][]byte
	rxPending   []byte
	txrxPending []byte
	txPending   bool
}

// NewSPI creates a simulated SPI master named name on bus.
func NewSPI(bus *Bus, name string) *SPI {
	return &SPI{bus: bus, name: name}
}

// Peripheral returns the port's name.
func (s *SPI) Peripheral() string {
	return s.name
}

func (s *SPI) popResponse(p []byte) error {
	if len(s.responses) == 0 {
		return hal.ErrTimeout
	}
	copy(p, s.responses[0])
	s.responses = s.responses[1:]
	return nil
}

// Transmit records p.
func (s *SPI) Transmit(p []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, append([]byte(nil), p...))
	return nil
}

// Receive fills p from the next queued response.
func (s *SPI) Receive(p []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.popResponse(p)
}

// TransmitReceive records tx and fills rx from the next queued
// response.
func (s *SPI) TransmitReceive(tx, rx []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, append([]byte(nil), tx...))
	return s.popResponse(rx)
}

// TransmitAsync records p and marks a transmit pending.
func (s *SPI) TransmitAsync(p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txPending {
		return hal.ErrBusy
	}
	s.txPending = true
	s.sent = append(s.sent, append([]byte(nil), p...))
	return nil
}

// ReceiveAsync arms p as the target of the next CompleteRx.
func (s *SPI) ReceiveAsync(p []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rxPending != nil {
		return hal.ErrBusy
	}
	s.rxPending = p
	return nil
}

// TransmitReceiveAsync records tx and arms rx for the next
// CompleteTxRx.
func (s *SPI) TransmitReceiveAsync(tx, rx []byte, mode hal.Mode) error {
	if !mode.IsAsync() {
		return hal.ErrBusy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.txrxPending != nil {
		return hal.ErrBusy
	}
	s.sent = append(s.sent, append([]byte(nil), tx...))
	s.txrxPending = rx
	return nil
}

// CompleteTx finishes a pending transmit and raises tx-complete.
func (s *SPI) CompleteTx() bool {
	s.mu.Lock()
	if !s.txPending {
		s.mu.Unlock()
		return false
	}
	s.txPending = false
	s.mu.Unlock()
	return s.bus.RaiseSync(s, hal.EventTxComplete)
}

// CompleteRx fills the armed receive buffer with data and raises
// rx-complete.
func (s *SPI) CompleteRx(data []byte) bool {
	s.mu.Lock()
	if s.rxPending == nil {
		s.mu.Unlock()
		return false
	}
	copy(s.rxPending, data)
	s.rxPending = nil
	s.mu.Unlock()
	return s.bus.RaiseSync(s, hal.EventRxComplete)
}

// CompleteTxRx fills the armed full-duplex buffer with data and
// raises txrx-complete.
func (s *SPI) CompleteTxRx(data []byte) bool {
	s.mu.Lock()
	if s.txrxPending == nil {
		s.mu.Unlock()
		return false
	}
	copy(s.txrxPending, data)
	s.txrxPending = nil
	s.mu.Unlock()
	return s.bus.RaiseSync(s, hal.EventTxRxComplete)
}

// QueueResponse queues data for blocking receives.
func (s *SPI) QueueResponse(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, append([]byte(nil), data...))
}

// Sent returns copies of all shifted-out frames in order.
func (s *SPI) Sent() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	for i, f := range s.sent {
		out[i] = append([]byte(nil), f...)
	}
	return out
}
