package filter

import (
	"testing"

	r "github.com/stretchr/testify/require"
	"github.com/stleox/seetrace/pkg/callsite"
)

func TestFilter_ComputeInterest_1(t *testing.T) {
	// spec'd specificity example
	f := New("app=info,app::db=debug")

	poolEvent := callsite.NewEvent("acquire", "app::db::pool", callsite.LevelDebug)
	r.Equal(t, InterestAlways, f.ComputeInterest(poolEvent))

	cacheEvent := callsite.NewEvent("hit", "app::cache", callsite.LevelDebug)
	r.Equal(t, InterestNever, f.ComputeInterest(cacheEvent))
}

func TestFilter_ComputeInterest_2(t *testing.T) {
	// no match falls back to the default level
	f := New("warn,app::db=debug")

	md := callsite.NewEvent("tick", "other", callsite.LevelInfo)
	r.Equal(t, InterestNever, f.ComputeInterest(md))

	md = callsite.NewEvent("boom", "other", callsite.LevelError)
	r.Equal(t, InterestAlways, f.ComputeInterest(md))
}

func TestFilter_ComputeInterest_3(t *testing.T) {
	// a field-matcher directive defers to runtime values
	f := New(`[request{method="GET"}]=trace`)

	md := callsite.NewEvent("request", "app", callsite.LevelDebug)
	r.Equal(t, InterestSometimes, f.ComputeInterest(md))
}

func TestFilter_ComputeInterest_Determinism(t *testing.T) {
	f := New("app=info,app::db=debug,warn")
	md := callsite.NewEvent("acquire", "app::db::pool", callsite.LevelDebug)

	first := f.ComputeInterest(md)
	for i := 0; i < 100; i++ {
		r.Equal(t, first, f.ComputeInterest(md))
	}
}

func TestFilter_Evaluate_1(t *testing.T) {
	// spec'd field matcher example
	f := New(`[request{method="GET"}]=trace`)
	md := callsite.NewEvent("request", "app", callsite.LevelDebug)

	r.False(t, f.Evaluate(md, callsite.Fields{"method": "POST"}))
	r.True(t, f.Evaluate(md, callsite.Fields{"method": "GET"}))
}

func TestFilter_Evaluate_2(t *testing.T) {
	// a failed field match falls through to less specific directives
	f := New(`app=debug,app[request{method="GET"}]=off`)
	md := callsite.NewEvent("request", "app", callsite.LevelDebug)

	r.False(t, f.Evaluate(md, callsite.Fields{"method": "GET"}))
	r.True(t, f.Evaluate(md, callsite.Fields{"method": "POST"}))
}

func TestFilter_Evaluate_Pattern(t *testing.T) {
	// unquoted values are patterns
	f := New(`[request{path=/users/[0-9]+}]=trace`)
	md := callsite.NewEvent("request", "app", callsite.LevelTrace)

	r.True(t, f.Evaluate(md, callsite.Fields{"path": "/users/42"}))
	r.False(t, f.Evaluate(md, callsite.Fields{"path": "/health"}))
}

func TestFilter_Evaluate_TieBreak(t *testing.T) {
	// equal specificity: the first declared directive matches first
	f := New(`app[req{method="GET"}]=trace,app[req{method=.*}]=off`)
	md := callsite.NewEvent("req", "app", callsite.LevelDebug)

	r.True(t, f.Evaluate(md, callsite.Fields{"method": "GET"}))
	r.False(t, f.Evaluate(md, callsite.Fields{"method": "POST"}))
}

func TestFilter_Reload(t *testing.T) {
	f := New("app=info")
	md := callsite.NewEvent("tick", "app", callsite.LevelDebug)
	r.Equal(t, InterestNever, f.ComputeInterest(md))

	before := f.Epoch()
	f.Reload("app=debug")
	r.Greater(t, f.Epoch(), before)
	r.Equal(t, InterestAlways, f.ComputeInterest(md))
}
