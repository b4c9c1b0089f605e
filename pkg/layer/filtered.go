package layer

import (
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/filter"
	"github.com/stleox/seetrace/pkg/registry"
)

// Filtered attaches a directive filter to an inner layer. The filter only
// participates in the chain-wide interest computation; callbacks for spans
// and events that exist are always delivered to the inner layer, since an
// existing span's lifecycle must stay observable once created.
type Filtered struct {
	inner Layer
	cache *filter.Cache
}

// WithFilter wraps l with a per-callsite cached filter.
func WithFilter(l Layer, f *filter.Filter) *Filtered {
	return &Filtered{inner: l, cache: filter.NewCache(f)}
}

func (f *Filtered) Interest(md *callsite.Metadata) filter.Interest {
	return f.cache.Interest(md)
}

func (f *Filtered) Evaluate(md *callsite.Metadata, values callsite.Fields) bool {
	return f.cache.Filter().Evaluate(md, values)
}

func (f *Filtered) OnRegister(md *callsite.Metadata) { f.inner.OnRegister(md) }

func (f *Filtered) OnNewSpan(id registry.SpanID, rec *registry.Record) {
	f.inner.OnNewSpan(id, rec)
}

func (f *Filtered) OnRecord(id registry.SpanID, rec *registry.Record, values callsite.Fields) {
	f.inner.OnRecord(id, rec, values)
}

func (f *Filtered) OnEnter(id registry.SpanID, rec *registry.Record) { f.inner.OnEnter(id, rec) }

func (f *Filtered) OnExit(id registry.SpanID, rec *registry.Record) { f.inner.OnExit(id, rec) }

func (f *Filtered) OnClose(id registry.SpanID, rec *registry.Record) { f.inner.OnClose(id, rec) }

func (f *Filtered) OnEvent(md *callsite.Metadata, values callsite.Fields) {
	f.inner.OnEvent(md, values)
}
