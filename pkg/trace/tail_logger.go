package trace

import "sync"

// TailLogger keeps the most recent events in a fixed-size ring buffer.
// It backs the console's trace tail without needing a file on disk.
type TailLogger struct {
	mu     sync.Mutex
	events []Event
	next   int
	filled bool
}

// NewTailLogger creates a TailLogger retaining the last capacity
// events. Capacity values below 1 are treated as 1.
func NewTailLogger(capacity int) *TailLogger {
	if capacity < 1 {
		capacity = 1
	}
	return &TailLogger{events: make([]Event, capacity)}
}

// Log records the event, evicting the oldest retained event when the
// buffer is full.
func (t *TailLogger) Log(event Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events[t.next] = event
	t.next++
	if t.next == len(t.events) {
		t.next = 0
		t.filled = true
	}
}

// Tail returns up to n of the most recent events, oldest first.
// n values below 1 return all retained events.
func (t *TailLogger) Tail(n int) []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var ordered []Event
	if t.filled {
		ordered = append(ordered, t.events[t.next:]...)
		ordered = append(ordered, t.events[:t.next]...)
	} else {
		ordered = append(ordered, t.events[:t.next]...)
	}
	if n >= 1 && n < len(ordered) {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}

// Compile-time interface satisfaction check.
var _ Logger = (*TailLogger)(nil)
