package goap

import "sync"

// Blackboard is the live, non-canonical world state: raw facts keyed by
// predicate key. The host mutates it as the world changes, and an Agent writes
// action effects into it.
//
// Usage: create with new(Blackboard) or NewBlackboard. The internal map is
// lazily initialized on the first write. All methods are safe for concurrent
// use.
type Blackboard struct {
	mu   sync.RWMutex
	data map[Key]any
}

// NewBlackboard returns a blackboard seeded with a copy of facts.
func NewBlackboard(facts map[Key]any) *Blackboard {
	b := new(Blackboard)
	for k, v := range facts {
		b.Set(k, v)
	}
	return b
}

func (b *Blackboard) init() {
	if b.data == nil {
		b.data = make(map[Key]any)
	}
}

// Get returns the value for key, or nil if absent.
func (b *Blackboard) Get(key Key) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data[key]
}

// Lookup returns the value for key and whether it was present.
func (b *Blackboard) Lookup(key Key) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

// Set stores a value.
func (b *Blackboard) Set(key Key, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	b.data[key] = value
}

// Update atomically replaces the value for key with fn(current). current is
// nil when the key is absent.
func (b *Blackboard) Update(key Key, fn func(current any) any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.init()
	b.data[key] = fn(b.data[key])
}

// Has reports whether key is present.
func (b *Blackboard) Has(key Key) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.data[key]
	return ok
}

// Delete removes key.
func (b *Blackboard) Delete(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

// Len returns the number of keys present.
func (b *Blackboard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}

// Snapshot returns a shallow copy of the facts.
func (b *Blackboard) Snapshot() map[Key]any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make(map[Key]any, len(b.data))
	for k, v := range b.data {
		out[k] = v
	}
	return out
}
