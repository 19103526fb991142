package tag

import (
	"fmt"
	"sync/atomic"
)

var counter atomic.Uint64

// Tag is an opaque, comparable identity. Tags are usable as map keys
// and compared with ==. The zero Tag is invalid.
type Tag struct {
	id   uint64
	name string
}

// New allocates a fresh Tag, distinct from every Tag allocated before
// it in this process.
func New() Tag {
	return Tag{id: counter.Add(1)}
}

// Named allocates a fresh Tag carrying a human-readable name. The name
// is for diagnostics only; it does not participate in identity, so two
// Named Tags with the same name are still distinct.
func Named(name string) Tag {
	return Tag{id: counter.Add(1), name: name}
}

// Valid reports whether t was obtained from New or Named.
func (t Tag) Valid() bool {
	return t.id != 0
}

// String returns a diagnostic rendering of the tag.
func (t Tag) String() string {
	if !t.Valid() {
		return "tag(invalid)"
	}
	if t.name != "" {
		return fmt.Sprintf("tag(%d:%s)", t.id, t.name)
	}
	return fmt.Sprintf("tag(%d)", t.id)
}
