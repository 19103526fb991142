// Package callback provides the Cell type, a tear-free holder for a
// single no-argument completion callback.
//
// A Cell is the storage half of a dispatch slot: foreground code stores
// a callback with Set, and an asynchronous completion context fires it
// with Invoke. Publication is a single atomic pointer swap, so a
// concurrent Invoke observes either the fully-old or the fully-new
// callable, never a torn intermediate. An empty cell invokes as a
// no-op.
//
// Cells are not meant to be copied; they carry a vet-visible noCopy
// marker. Transfer ownership with MoveFrom or Take instead.
package callback
