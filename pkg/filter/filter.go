package filter

import (
	"sync/atomic"

	"github.com/stleox/seetrace/pkg/callsite"
)

// snapshot is one immutable compiled directive set. Readers grab the
// pointer once and never see a partial reload.
type snapshot struct {
	directives   []Directive
	defaultLevel callsite.Level
}

// Filter answers interest queries against an atomically swappable
// directive snapshot. Reload bumps the epoch so cached interests expire.
type Filter struct {
	snap  atomic.Pointer[snapshot]
	epoch atomic.Uint64
}

// New compiles text into a ready filter at epoch 1.
func New(text string) *Filter {
	f := &Filter{}
	f.Reload(text)
	return f
}

// Reload atomically installs a new directive snapshot and bumps the epoch.
// Readers are never blocked.
func (f *Filter) Reload(text string) {
	dirs, def := Parse(text)
	f.snap.Store(&snapshot{directives: dirs, defaultLevel: def})
	f.epoch.Add(1)
}

// Epoch returns the current filter epoch.
func (f *Filter) Epoch() uint64 {
	return f.epoch.Load()
}

// DefaultLevel returns the active default level.
func (f *Filter) DefaultLevel() callsite.Level {
	return f.snap.Load().defaultLevel
}

// ComputeInterest scans most-specific-first; the first directive whose
// target and span-name match decides. Field matchers defer the decision to
// Evaluate.
func (f *Filter) ComputeInterest(md *callsite.Metadata) Interest {
	s := f.snap.Load()
	for i := range s.directives {
		d := &s.directives[i]
		if !d.matchMeta(md) {
			continue
		}
		if len(d.Fields) > 0 {
			return InterestSometimes
		}
		if d.Level.Enables(md.Level) {
			return InterestAlways
		}
		return InterestNever
	}
	if s.defaultLevel.Enables(md.Level) {
		return InterestAlways
	}
	return InterestNever
}

// Evaluate resolves a Sometimes callsite with runtime field values. A
// field-matcher directive whose values don't match does not stop the scan.
func (f *Filter) Evaluate(md *callsite.Metadata, values callsite.Fields) bool {
	s := f.snap.Load()
	for i := range s.directives {
		d := &s.directives[i]
		if !d.matchMeta(md) {
			continue
		}
		if !d.matchFields(values) {
			continue
		}
		return d.Level.Enables(md.Level)
	}
	return s.defaultLevel.Enables(md.Level)
}
