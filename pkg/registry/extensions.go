package registry

import "sync"

// Extensions is the type-keyed bag of data attached to a span record.
// Layers use private key types to stash per-span state; later layers in
// the chain and formatting collaborators observe earlier writes.
type Extensions struct {
	mu sync.RWMutex
	m  map[any]any
}

func (e *Extensions) Set(key, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.m == nil {
		e.m = make(map[any]any)
	}
	e.m[key] = value
}

func (e *Extensions) Get(key any) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, hit := e.m[key]
	return v, hit
}

func (e *Extensions) Delete(key any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.m, key)
}
