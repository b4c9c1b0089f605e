package dispatch

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/filter"
	"github.com/stleox/seetrace/pkg/layer"
	"github.com/stleox/seetrace/pkg/registry"
)

// Dispatcher ties the span store, the per-goroutine context stacks and the
// layer chain together behind the public record/enter/exit/event
// operations.
//
// Span state machine: Created -> (Entered <-> Exited)* -> Closed. Entered
// and Exited may repeat through re-entrant guards; Closed happens exactly
// once, driven solely by the ref count reaching zero, and may happen on a
// span that was never entered.
type Dispatcher struct {
	store  *registry.Store
	stacks *registry.StackSet
	chain  *layer.Chain

	// callsites already announced to the chain
	registered sync.Map
}

func New(chain *layer.Chain) *Dispatcher {
	return &Dispatcher{
		store:  registry.NewStore(),
		stacks: registry.NewStackSet(),
		chain:  chain,
	}
}

// register announces a callsite to the chain once, on first use.
func (d *Dispatcher) register(md *callsite.Metadata) {
	if _, loaded := d.registered.LoadOrStore(md, struct{}{}); !loaded {
		d.chain.OnRegister(md)
	}
}

// Interest is the chain-wide cached decision for md.
func (d *Dispatcher) Interest(md *callsite.Metadata) filter.Interest {
	d.register(md)
	return d.chain.Interest(md)
}

// Enabled is the caller's pre-check: when it returns false the caller can
// skip building field values entirely. Sometimes counts as enabled here
// because the decision needs the values.
func (d *Dispatcher) Enabled(md *callsite.Metadata) bool {
	return d.Interest(md) != filter.InterestNever
}

// NewSpan creates a span with the goroutine's current span as parent. A
// filtered-out callsite yields the disabled sentinel without touching the
// store.
func (d *Dispatcher) NewSpan(md *callsite.Metadata, values callsite.Fields) registry.SpanID {
	switch d.Interest(md) {
	case filter.InterestNever:
		return registry.Disabled
	case filter.InterestSometimes:
		if !d.chain.Evaluate(md, values) {
			return registry.Disabled
		}
	}

	parent, _ := d.stacks.Current()
	if parent.Valid() {
		// the child holds a ref on its parent until it closes
		d.store.Clone(parent)
	}
	id := d.store.Create(md, parent, values)
	d.chain.OnNewSpan(id, d.store.Get(id))
	return id
}

// Event emits a point-in-time record through the chain; no span record is
// created.
func (d *Dispatcher) Event(md *callsite.Metadata, values callsite.Fields) {
	switch d.Interest(md) {
	case filter.InterestNever:
		return
	case filter.InterestSometimes:
		if !d.chain.Evaluate(md, values) {
			return
		}
	}
	d.chain.OnEvent(md, values)
}

// Record merges values into the span and reports them to the chain.
func (d *Dispatcher) Record(id registry.SpanID, values callsite.Fields) {
	if !id.Valid() {
		return
	}
	d.store.Record(id, values)
	if rec := d.store.Get(id); rec != nil {
		d.chain.OnRecord(id, rec, values)
	}
}

// Enter pushes id on the goroutine's stack and returns the guard whose
// Exit pops it. Exit must run on every path, normally via defer.
func (d *Dispatcher) Enter(id registry.SpanID) *Guard {
	if !id.Valid() {
		return &Guard{}
	}
	rec := d.store.Get(id)
	if rec == nil {
		logrus.Warnf("SeeTrace couldn't enter stale %s", id)
		return &Guard{}
	}
	d.stacks.Push(id)
	d.chain.OnEnter(id, rec)
	return &Guard{d: d, id: id}
}

// Clone increments the span's ref count and returns the same id.
func (d *Dispatcher) Clone(id registry.SpanID) registry.SpanID {
	d.store.Clone(id)
	return id
}

// Drop releases one reference. The drop that brings the count to zero
// fires OnClose exactly once, then releases the ref the span held on its
// parent.
func (d *Dispatcher) Drop(id registry.SpanID) {
	if !id.Valid() {
		return
	}
	rec, closed := d.store.Drop(id)
	if !closed {
		return
	}
	d.chain.OnClose(id, rec)
	if rec.Parent().Valid() {
		d.Drop(rec.Parent())
	}
}

// Current returns the goroutine's innermost entered span id.
func (d *Dispatcher) Current() (registry.SpanID, bool) {
	return d.stacks.Current()
}

// Snapshot returns the goroutine's entered ids, root first.
func (d *Dispatcher) Snapshot() []registry.SpanID {
	return d.stacks.Snapshot()
}

// GetRecord exposes a span's record to collaborators that render context.
// Returns nil for disabled, stale or closed ids.
func (d *Dispatcher) GetRecord(id registry.SpanID) *registry.Record {
	return d.store.Get(id)
}

// Guard is the scoped handle for one enter. The zero value (returned for
// disabled spans) exits nothing.
type Guard struct {
	d        *Dispatcher
	id       registry.SpanID
	released bool
}

// Exit pops the entry and reports the exit. Idempotent; extra calls are
// no-ops.
func (g *Guard) Exit() {
	if g.d == nil || g.released {
		return
	}
	g.released = true
	g.d.stacks.Pop(g.id)
	if rec := g.d.store.Get(g.id); rec != nil {
		g.d.chain.OnExit(g.id, rec)
	}
}
