// Package memstore provides the insertion-ordered map behind every
// in-memory repository.
package memstore

import "sync"

// Ordered is a map that remembers insertion order. Values are stored and
// returned as copies, so callers can't mutate stored state through a
// returned pointer.
type Ordered[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
	order []K
}

// New creates an empty Ordered map.
func New[K comparable, V any]() *Ordered[K, V] {
	return &Ordered[K, V]{items: make(map[K]V)}
}

// Insert adds v under k. It reports false if k is already present.
func (o *Ordered[K, V]) Insert(k K, v V) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.items[k]; exists {
		return false
	}
	o.items[k] = v
	o.order = append(o.order, k)
	return true
}

// Replace overwrites the value under an existing key, keeping its position.
// It reports false if k is absent.
func (o *Ordered[K, V]) Replace(k K, v V) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.items[k]; !exists {
		return false
	}
	o.items[k] = v
	return true
}

// Get returns the value under k.
func (o *Ordered[K, V]) Get(k K) (V, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.items[k]
	return v, ok
}

// Len returns the number of entries.
func (o *Ordered[K, V]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}

// Filter returns, in insertion order, every value for which keep returns
// true. A nil keep selects everything.
func (o *Ordered[K, V]) Filter(keep func(V) bool) []V {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]V, 0, len(o.order))
	for _, k := range o.order {
		v := o.items[k]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}
