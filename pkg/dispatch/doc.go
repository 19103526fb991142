// Package dispatch binds callback cells to hardware completion events.
//
// A Slot ties one callback.Cell to one completion-event registration on
// a hal.EventSource. Bind reserves process-wide storage for the slot's
// (instance, purpose) identity pair and installs the slot's trampoline
// with the event source; Close unregisters the trampoline, empties the
// cell and releases the storage. While a slot is alive, foreground code
// arms it with Set and the event source fires it by calling the
// trampoline from its completion context.
//
// Two live slots never share a cell: Bind fails with ErrSlotBound if
// the identity pair is already in use, which catches accidental reuse
// of the same tags for two different peripherals.
//
// The dispatch path is lock-free: the trampoline performs a single
// atomic load of the armed callback. Set and Clear are atomic swaps, so
// an arm racing a completion delivers either the old callback, the new
// one, or nothing - never a torn state.
package dispatch
