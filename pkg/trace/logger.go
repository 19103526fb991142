package trace

// Logger is the interface components implement to receive trace
// events. Pass NoopLogger to disable capture.
type Logger interface {
	// Log records a trace event. Implementations must be thread-safe;
	// Log may be called from completion contexts, so it should return
	// quickly.
	Log(event Event)
}

// NoopLogger discards all events. Use when tracing is disabled.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
