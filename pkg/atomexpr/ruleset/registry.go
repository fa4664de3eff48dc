package ruleset

import (
	"slices"
	"sync"
)

// registry is a thread-safe map of rules by name.
// It uses sync.RWMutex since rule sets are read far more than they change.
type registry[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

func newRegistry[V any]() *registry[V] {
	return &registry[V]{
		entries: make(map[string]V),
	}
}

// add stores value under name unless the name is taken.
func (r *registry[V]) add(name string, value V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return false
	}
	r.entries[name] = value
	return true
}

func (r *registry[V]) get(name string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

func (r *registry[V]) remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return false
	}
	delete(r.entries, name)
	return true
}

// names returns every name in sorted order.
func (r *registry[V]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

func (r *registry[V]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// snapshot returns the entries sorted by name, taken under one read lock,
// so callers may add or remove rules while iterating.
func (r *registry[V]) snapshot() []V {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for k := range r.entries {
		names = append(names, k)
	}
	slices.Sort(names)
	out := make([]V, len(names))
	for i, name := range names {
		out[i] = r.entries[name]
	}
	r.mu.RUnlock()
	return out
}
