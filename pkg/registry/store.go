package registry

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/config"
)

// Record is the store-owned state of one live span.
type Record struct {
	meta   *callsite.Metadata
	parent SpanID
	start  time.Time

	refs atomic.Int64

	muFields sync.RWMutex
	fields   callsite.Fields

	ext Extensions
}

func (r *Record) Metadata() *callsite.Metadata { return r.meta }
func (r *Record) Parent() SpanID               { return r.parent }
func (r *Record) Start() time.Time             { return r.start }
func (r *Record) Extensions() *Extensions      { return &r.ext }

// Refs returns the current reference count. Only meaningful as a
// diagnostic snapshot; the count may change immediately after.
func (r *Record) Refs() int64 {
	return r.refs.Load()
}

// Fields returns a copy of the record's field values.
func (r *Record) Fields() callsite.Fields {
	r.muFields.RLock()
	defer r.muFields.RUnlock()
	out := make(callsite.Fields, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

func (r *Record) merge(values callsite.Fields) {
	if len(values) == 0 {
		return
	}
	r.muFields.Lock()
	defer r.muFields.Unlock()
	if r.fields == nil {
		r.fields = make(callsite.Fields, len(values))
	}
	for k, v := range values {
		r.fields[k] = v
	}
}

type slot struct {
	gen uint32
	rec *Record // nil while the slot sits on the free list
}

// Store owns all span records. Slots are recycled through a free list;
// each recycle bumps the slot's generation so stale ids miss.
type Store struct {
	mu    sync.RWMutex
	slots []slot
	free  []uint32
}

func NewStore() *Store {
	return &Store{
		slots: make([]slot, 0, config.InitNumSlot),
	}
}

// Create allocates a slot for a new span with ref count 1. It never fails
// and makes no filtering decision.
func (s *Store) Create(md *callsite.Metadata, parent SpanID, values callsite.Fields) SpanID {
	rec := &Record{
		meta:   md,
		parent: parent,
		start:  time.Now(),
	}
	rec.refs.Store(1)
	rec.merge(values)

	s.mu.Lock()
	defer s.mu.Unlock()
	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{gen: 1})
		idx = uint32(len(s.slots) - 1)
	}
	s.slots[idx].rec = rec
	return SpanID{Slot: idx + 1, Gen: s.slots[idx].gen}
}

// Get returns the live record for id, or nil when the id is disabled,
// stale, or already closed.
func (s *Store) Get(id SpanID) *Record {
	if !id.Valid() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := int(id.Slot) - 1
	if idx >= len(s.slots) {
		return nil
	}
	sl := &s.slots[idx]
	if sl.gen != id.Gen {
		return nil
	}
	return sl.rec
}

// Clone increments the ref count. A stale id is a no-op with a
// diagnostic; the count is never resurrected from zero.
func (s *Store) Clone(id SpanID) {
	if !id.Valid() {
		return
	}
	rec := s.Get(id)
	if rec == nil {
		logrus.Warnf("SeeTrace couldn't clone stale %s", id)
		return
	}
	for {
		n := rec.refs.Load()
		if n <= 0 {
			logrus.Warnf("SeeTrace couldn't clone closing %s", id)
			return
		}
		if rec.refs.CompareAndSwap(n, n+1) {
			return
		}
	}
}

// Drop decrements the ref count. Exactly one caller observes the count
// reaching zero; that caller gets (record, true) and the slot goes back to
// the free list with its generation bumped. The count saturates at zero,
// so a double drop is a diagnostic, not an underflow.
func (s *Store) Drop(id SpanID) (*Record, bool) {
	if !id.Valid() {
		return nil, false
	}
	rec := s.Get(id)
	if rec == nil {
		logrus.Warnf("SeeTrace couldn't drop stale %s", id)
		return nil, false
	}
	for {
		n := rec.refs.Load()
		if n <= 0 {
			logrus.Warnf("SeeTrace detected a double drop of %s", id)
			return nil, false
		}
		if rec.refs.CompareAndSwap(n, n-1) {
			if n == 1 {
				s.release(id)
				return rec, true
			}
			return rec, false
		}
	}
}

// release detaches the record and recycles the slot.
func (s *Store) release(id SpanID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := int(id.Slot) - 1
	if idx >= len(s.slots) || s.slots[idx].gen != id.Gen {
		return
	}
	s.slots[idx].rec = nil
	s.slots[idx].gen++
	s.free = append(s.free, uint32(idx))
}

// Record merges values into the span's field set.
func (s *Store) Record(id SpanID, values callsite.Fields) {
	if !id.Valid() {
		return
	}
	rec := s.Get(id)
	if rec == nil {
		logrus.Warnf("SeeTrace couldn't record on stale %s", id)
		return
	}
	rec.merge(values)
}
