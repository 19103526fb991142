package mocks

import "github.com/halio-project/halio-go/pkg/hal"

// Handle is a trivial hal.Handle carrying only a peripheral name.
type Handle string

// Peripheral returns the handle's name.
func (h Handle) Peripheral() string {
	return string(h)
}

// Compile-time interface satisfaction check.
var _ hal.Handle = Handle("")
