package callback

import "sync/atomic"

// Func is a completion callback. It takes no arguments and returns
// nothing; any context it needs must be captured by the closure.
type Func func()

// Cell holds at most one Func. The zero Cell is empty and ready to use.
//
// Set, Reset, Take and MoveFrom may be called from foreground code
// while Invoke runs concurrently from a completion context; all
// transitions are single atomic pointer operations.
type Cell struct {
	_  noCopy
	fn atomic.Pointer[Func]
}

// Set stores fn, replacing any previously stored callable.
// Setting a nil Func empties the cell.
func (c *Cell) Set(fn Func) {
	if fn == nil {
		c.fn.Store(nil)
		return
	}
	c.fn.Store(&fn)
}

// Reset empties the cell.
func (c *Cell) Reset() {
	c.fn.Store(nil)
}

// IsSet reports whether the cell currently holds a callable.
func (c *Cell) IsSet() bool {
	return c.fn.Load() != nil
}

// Invoke calls the stored callable and reports whether one ran.
// Invoking an empty cell is a safe no-op.
func (c *Cell) Invoke() bool {
	p := c.fn.Load()
	if p == nil {
		return false
	}
	(*p)()
	return true
}

// Take removes and returns the stored callable, leaving the cell
// empty. It returns nil if the cell was already empty.
func (c *Cell) Take() Func {
	p := c.fn.Swap(nil)
	if p == nil {
		return nil
	}
	return *p
}

// MoveFrom transfers the callable stored in src into c, replacing any
// callable c held. src is left empty. Moving from nil or from c itself
// is a no-op.
func (c *Cell) MoveFrom(src *Cell) {
	if src == nil || src == c {
		return
	}
	c.fn.Store(src.fn.Swap(nil))
}

// noCopy may be embedded into structs which must not be copied after
// first use. go vet's copylocks check reports violations.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
