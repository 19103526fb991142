// Package hal defines the boundary between the dispatch core and the
// hardware (or simulated) layer that raises completion events.
//
// A backend implements EventSource: a table from (Handle, Event) to a
// registered Trampoline. When an asynchronous operation completes, the
// backend calls the trampoline registered for that handle and event
// kind from its completion context. Which trampoline was registered,
// not the handle value passed at call time, determines whose callback
// runs; trampolines ignore their argument.
//
// Backends live in subpackages: halsim (in-memory simulated bus) and
// serialhal (host serial port).
package hal
