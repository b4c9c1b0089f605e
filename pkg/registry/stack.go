package registry

import (
	"sync"

	"github.com/petermattis/goid"
	"github.com/sirupsen/logrus"
	"github.com/stleox/seetrace/pkg/config"
)

// StackSet holds one active-span stack per goroutine, keyed by goroutine
// id across a fixed set of mutex shards. Stacks are strictly
// goroutine-local: the same span id entered from two goroutines gets two
// independent entries.
type StackSet struct {
	shards []stackShard
}

type stackShard struct {
	mu sync.Mutex
	// gid -> entered ids, root first
	m map[int64][]SpanID
}

func NewStackSet() *StackSet {
	s := &StackSet{shards: make([]stackShard, config.NumStackShard)}
	for i := range s.shards {
		s.shards[i].m = make(map[int64][]SpanID)
	}
	return s
}

func (s *StackSet) shard(gid int64) *stackShard {
	return &s.shards[uint64(gid)%uint64(len(s.shards))]
}

// Push records id as the calling goroutine's innermost entered span.
// Re-entering an already-entered id pushes a fresh entry.
func (s *StackSet) Push(id SpanID) {
	if !id.Valid() {
		return
	}
	gid := goid.Get()
	sh := s.shard(gid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.m[gid] = append(sh.m[gid], id)
}

// Pop removes id from the calling goroutine's stack. The well-behaved
// case removes the top; an out-of-order exit removes the first matching
// entry below it, restores the LIFO invariant for the rest, and emits a
// misuse diagnostic. Unknown ids only produce a diagnostic.
func (s *StackSet) Pop(id SpanID) {
	if !id.Valid() {
		return
	}
	gid := goid.Get()
	sh := s.shard(gid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	stack := sh.m[gid]
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] != id {
			continue
		}
		if i != len(stack)-1 {
			logrus.Warnf("SeeTrace corrected an out-of-order exit of %s", id)
		}
		stack = append(stack[:i], stack[i+1:]...)
		if len(stack) == 0 {
			delete(sh.m, gid)
		} else {
			sh.m[gid] = stack
		}
		return
	}
	logrus.Warnf("SeeTrace couldn't exit %s: not entered on this goroutine", id)
}

// Current returns the calling goroutine's innermost entered span.
func (s *StackSet) Current() (SpanID, bool) {
	gid := goid.Get()
	sh := s.shard(gid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	stack := sh.m[gid]
	if len(stack) == 0 {
		return Disabled, false
	}
	return stack[len(stack)-1], true
}

// Snapshot returns a copy of the calling goroutine's stack, root first,
// for collaborators that render context.
func (s *StackSet) Snapshot() []SpanID {
	gid := goid.Get()
	sh := s.shard(gid)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	stack := sh.m[gid]
	if len(stack) == 0 {
		return nil
	}
	out := make([]SpanID, len(stack))
	copy(out, stack)
	return out
}
