package registry

import (
	"sync"
	"testing"

	r "github.com/stretchr/testify/require"
)

func TestStack_LIFO_1(t *testing.T) {
	s := NewStackSet()
	a := SpanID{Slot: 1, Gen: 1}
	b := SpanID{Slot: 2, Gen: 1}

	s.Push(a)
	s.Push(b)
	s.Pop(b)

	cur, ok := s.Current()
	r.True(t, ok)
	r.Equal(t, a, cur)

	s.Pop(a)
	_, ok = s.Current()
	r.False(t, ok)
}

func TestStack_Reentrant(t *testing.T) {
	// the same id may be entered twice on one goroutine
	s := NewStackSet()
	a := SpanID{Slot: 1, Gen: 1}

	s.Push(a)
	s.Push(a)
	r.Len(t, s.Snapshot(), 2)

	s.Pop(a)
	r.Len(t, s.Snapshot(), 1)
	s.Pop(a)
	r.Empty(t, s.Snapshot())
}

func TestStack_OutOfOrderExit(t *testing.T) {
	// exiting a non-top id removes the matching entry at depth and keeps
	// the rest intact
	s := NewStackSet()
	a := SpanID{Slot: 1, Gen: 1}
	b := SpanID{Slot: 2, Gen: 1}
	c := SpanID{Slot: 3, Gen: 1}

	s.Push(a)
	s.Push(b)
	s.Push(c)
	s.Pop(a)

	r.Equal(t, []SpanID{b, c}, s.Snapshot())

	// popping an id that was never entered only diagnoses
	s.Pop(SpanID{Slot: 9, Gen: 1})
	r.Equal(t, []SpanID{b, c}, s.Snapshot())
}

func TestStack_Snapshot(t *testing.T) {
	s := NewStackSet()
	a := SpanID{Slot: 1, Gen: 1}
	b := SpanID{Slot: 2, Gen: 1}

	r.Empty(t, s.Snapshot())
	s.Push(a)
	s.Push(b)
	// root first
	r.Equal(t, []SpanID{a, b}, s.Snapshot())
}

func TestStack_PerGoroutine(t *testing.T) {
	// stacks are goroutine-local: the same id entered on two goroutines
	// keeps two independent entries
	s := NewStackSet()
	a := SpanID{Slot: 1, Gen: 1}
	s.Push(a)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := s.Current()
			r.False(t, ok)

			s.Push(a)
			cur, ok := s.Current()
			r.True(t, ok)
			r.Equal(t, a, cur)
			s.Pop(a)

			_, ok = s.Current()
			r.False(t, ok)
		}()
	}
	wg.Wait()

	cur, ok := s.Current()
	r.True(t, ok)
	r.Equal(t, a, cur)
}

func TestStack_DisabledIgnored(t *testing.T) {
	s := NewStackSet()
	s.Push(Disabled)
	r.Empty(t, s.Snapshot())
	s.Pop(Disabled)
}
