package registry

import "fmt"

// SpanID addresses one span record as a (slot, generation) pair. The
// generation tag increments every time the slot is recycled, so a stale
// holder of an old id can never touch the slot's new occupant.
//
// The zero value is the reserved "disabled" sentinel returned for spans
// that were filtered out before allocation.
type SpanID struct {
	Slot uint32
	Gen  uint32
}

// Disabled is the sentinel id for filtered-out spans. Every store
// operation on it is a silent no-op.
var Disabled = SpanID{}

// Valid reports whether the id addresses a real slot.
func (id SpanID) Valid() bool {
	return id.Slot != 0
}

func (id SpanID) String() string {
	if !id.Valid() {
		return "span#disabled"
	}
	return fmt.Sprintf("span#%d.%d", id.Slot, id.Gen)
}
