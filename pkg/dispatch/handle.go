package dispatch

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/petermattis/goid"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/registry"
)

// ErrAlreadyInstalled is returned when a pipeline is already active; the
// caller keeps using the existing one.
var ErrAlreadyInstalled = errors.New("a pipeline is already active")

var (
	active atomic.Pointer[Dispatcher]

	// goroutine-scoped test overrides: gid -> *Dispatcher
	overrides sync.Map
	// fast path: skip the override map when no test override exists
	numOverride atomic.Int64
)

// Install makes d the process-wide pipeline. First writer wins; later
// attempts are rejected.
func Install(d *Dispatcher) error {
	if d == nil {
		return errors.New("nil dispatcher")
	}
	if !active.CompareAndSwap(nil, d) {
		return ErrAlreadyInstalled
	}
	return nil
}

// Reset clears the process-wide handle. Test lifecycle only.
func Reset() {
	active.Store(nil)
}

// Active returns the dispatcher for the calling goroutine: its test
// override when one is set, otherwise the process-wide handle, otherwise
// nil.
func Active() *Dispatcher {
	if numOverride.Load() > 0 {
		if v, hit := overrides.Load(goid.Get()); hit {
			return v.(*Dispatcher)
		}
	}
	return active.Load()
}

// WithOverride runs fn with d as the calling goroutine's dispatcher,
// shadowing the process-wide handle for fn's duration. Overrides nest.
func WithOverride(d *Dispatcher, fn func()) {
	gid := goid.Get()
	prev, had := overrides.Load(gid)
	overrides.Store(gid, d)
	if !had {
		numOverride.Add(1)
	}
	defer func() {
		if had {
			overrides.Store(gid, prev)
		} else {
			overrides.Delete(gid)
			numOverride.Add(-1)
		}
	}()
	fn()
}

// Package-level entry points against the active pipeline. With no pipeline
// installed they cost one atomic load and do nothing.

func Enabled(md *callsite.Metadata) bool {
	d := Active()
	if d == nil {
		return false
	}
	return d.Enabled(md)
}

func NewSpan(md *callsite.Metadata, values callsite.Fields) registry.SpanID {
	d := Active()
	if d == nil {
		return registry.Disabled
	}
	return d.NewSpan(md, values)
}

func Event(md *callsite.Metadata, values callsite.Fields) {
	if d := Active(); d != nil {
		d.Event(md, values)
	}
}

func Enter(id registry.SpanID) *Guard {
	d := Active()
	if d == nil {
		return &Guard{}
	}
	return d.Enter(id)
}

func Record(id registry.SpanID, values callsite.Fields) {
	if d := Active(); d != nil {
		d.Record(id, values)
	}
}

func Drop(id registry.SpanID) {
	if d := Active(); d != nil {
		d.Drop(id)
	}
}
