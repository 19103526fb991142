package dispatch

import (
	"fmt"
	"sync"

	"github.com/halio-project/halio-go/pkg/callback"
	"github.com/halio-project/halio-go/pkg/tag"
)

// slotKey is the identity pair reserving one storage cell.
type slotKey struct {
	instance tag.Tag
	purpose  tag.Tag
}

func (k slotKey) String() string {
	return fmt.Sprintf("%s/%s", k.instance, k.purpose)
}

// registry owns the process-wide storage cells, one per live identity
// pair. Cells outlive nothing: a released key frees its cell, and a
// later claim of the same key allocates a fresh one.
type registry struct {
	mu    sync.Mutex
	cells map[slotKey]*callback.Cell
}

var global = &registry{cells: make(map[slotKey]*callback.Cell)}

// claim reserves k and returns its cell. It fails with ErrSlotBound if
// k is already reserved by a live slot.
func (r *registry) claim(k slotKey) (*callback.Cell, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cells[k]; exists {
		return nil, fmt.Errorf("%w: %s", ErrSlotBound, k)
	}
	cell := &callback.Cell{}
	r.cells[k] = cell
	return cell, nil
}

// release frees k. Releasing an unclaimed key is a no-op.
func (r *registry) release(k slotKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cells, k)
}

// size returns the number of live reservations. Test hook.
func (r *registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cells)
}
