package layer

import (
	"github.com/stleox/seetrace/pkg/callsite"
	"github.com/stleox/seetrace/pkg/filter"
	"github.com/stleox/seetrace/pkg/registry"
)

// Layer is one consumer of lifecycle callbacks. Embed Base to get no-op
// defaults and override what the layer cares about.
//
// Every layer in a chain receives every callback for spans and events that
// exist; no layer short-circuits another. Whether a span or event should
// exist at all is the chain-wide interest computation, see Chain.Interest.
type Layer interface {
	OnRegister(md *callsite.Metadata)
	OnNewSpan(id registry.SpanID, rec *registry.Record)
	OnRecord(id registry.SpanID, rec *registry.Record, values callsite.Fields)
	OnEnter(id registry.SpanID, rec *registry.Record)
	OnExit(id registry.SpanID, rec *registry.Record)
	OnClose(id registry.SpanID, rec *registry.Record)
	OnEvent(md *callsite.Metadata, values callsite.Fields)
}

// Interested is implemented by layers that carry their own filter. A layer
// without it wants everything.
type Interested interface {
	Interest(md *callsite.Metadata) filter.Interest
}

// Evaluator resolves a Sometimes interest with runtime field values.
type Evaluator interface {
	Evaluate(md *callsite.Metadata, values callsite.Fields) bool
}

// Base provides no-op defaults for the full Layer contract.
type Base struct{}

func (Base) OnRegister(*callsite.Metadata)                                {}
func (Base) OnNewSpan(registry.SpanID, *registry.Record)                  {}
func (Base) OnRecord(registry.SpanID, *registry.Record, callsite.Fields)  {}
func (Base) OnEnter(registry.SpanID, *registry.Record)                    {}
func (Base) OnExit(registry.SpanID, *registry.Record)                     {}
func (Base) OnClose(registry.SpanID, *registry.Record)                    {}
func (Base) OnEvent(*callsite.Metadata, callsite.Fields)                  {}

// Chain is a fixed-order composition of layers, assembled once at startup
// via Builder and never reordered afterwards.
type Chain struct {
	layers []Layer
}

// Builder assembles a Chain.
type Builder struct {
	layers []Layer
}

func NewBuilder() *Builder {
	return &Builder{}
}

// With appends a layer; nil layers are skipped.
func (b *Builder) With(l Layer) *Builder {
	if l != nil {
		b.layers = append(b.layers, l)
	}
	return b
}

func (b *Builder) Build() *Chain {
	layers := make([]Layer, len(b.layers))
	copy(layers, b.layers)
	return &Chain{layers: layers}
}

// Len returns the number of composed layers.
func (c *Chain) Len() int {
	return len(c.layers)
}

// Interest is the chain-wide creation decision: the maximum (most
// permissive) interest across all layers, so callers can skip building
// field values when no layer wants the data.
func (c *Chain) Interest(md *callsite.Metadata) filter.Interest {
	out := filter.InterestNever
	for _, l := range c.layers {
		li := filter.InterestAlways
		if f, ok := l.(Interested); ok {
			li = f.Interest(md)
		}
		out = filter.Max(out, li)
		if out == filter.InterestAlways {
			break
		}
	}
	return out
}

// Evaluate resolves a Sometimes decision: enabled when any layer accepts
// the runtime field values.
func (c *Chain) Evaluate(md *callsite.Metadata, values callsite.Fields) bool {
	for _, l := range c.layers {
		f, ok := l.(Interested)
		if !ok {
			return true
		}
		switch f.Interest(md) {
		case filter.InterestNever:
			continue
		case filter.InterestAlways:
			return true
		case filter.InterestSometimes:
			ev, ok := l.(Evaluator)
			if !ok || ev.Evaluate(md, values) {
				return true
			}
		}
	}
	return false
}

func (c *Chain) OnRegister(md *callsite.Metadata) {
	for _, l := range c.layers {
		l.OnRegister(md)
	}
}

func (c *Chain) OnNewSpan(id registry.SpanID, rec *registry.Record) {
	for _, l := range c.layers {
		l.OnNewSpan(id, rec)
	}
}

func (c *Chain) OnRecord(id registry.SpanID, rec *registry.Record, values callsite.Fields) {
	for _, l := range c.layers {
		l.OnRecord(id, rec, values)
	}
}

func (c *Chain) OnEnter(id registry.SpanID, rec *registry.Record) {
	for _, l := range c.layers {
		l.OnEnter(id, rec)
	}
}

func (c *Chain) OnExit(id registry.SpanID, rec *registry.Record) {
	for _, l := range c.layers {
		l.OnExit(id, rec)
	}
}

func (c *Chain) OnClose(id registry.SpanID, rec *registry.Record) {
	for _, l := range c.layers {
		l.OnClose(id, rec)
	}
}

func (c *Chain) OnEvent(md *callsite.Metadata, values callsite.Fields) {
	for _, l := range c.layers {
		l.OnEvent(md, values)
	}
}
