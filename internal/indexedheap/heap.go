// Package indexedheap implements a fixed-capacity binary heap that tracks the
// position of every element, giving O(1) membership checks and lookups.
//
// The index table is what lets a search frontier answer "is this node already
// queued" without a linear scan, and re-sift a node in place after its
// priority improved.
package indexedheap

// absent is the index recorded for elements that have left the heap.
const absent = -1

// Element is the contract for heap values: they must be usable as map keys
// (the index table) and admit a total order via a three-way comparison.
//
// Compare returns a negative number when the receiver orders before other,
// zero when they are equivalent, and a positive number otherwise.
type Element[T any] interface {
	comparable
	Compare(other T) int
}

// Heap is an array-backed binary heap with an element -> index table.
//
// Capacity semantics: a heap constructed with capacity c holds at most c-1
// elements. IsFull reports true once that many are present, and Push refuses
// further elements. Callers wanting room for n elements must pass n+1.
//
// Heap is not safe for concurrent use.
type Heap[T Element[T]] struct {
	items   []T
	index   map[T]int
	cap     int
	reverse bool
}

// New constructs a heap of the given capacity. With reverse false it is a
// min-heap (Top is the smallest element); with reverse true it is a max-heap.
func New[T Element[T]](capacity int, reverse bool) *Heap[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Heap[T]{
		items:   make([]T, 0, capacity),
		index:   make(map[T]int, capacity),
		cap:     capacity,
		reverse: reverse,
	}
}

// Len returns the number of elements currently in the heap.
func (h *Heap[T]) Len() int { return len(h.items) }

// Cap returns the capacity the heap was constructed with.
func (h *Heap[T]) Cap() int { return h.cap }

// IsEmpty reports whether the heap has no elements.
func (h *Heap[T]) IsEmpty() bool { return len(h.items) == 0 }

// IsFull reports whether the heap holds capacity-1 elements.
func (h *Heap[T]) IsFull() bool { return len(h.items) >= h.cap-1 }

// At returns the element stored at backing index i, in heap order (index 0
// is the top). It panics if i is out of range.
func (h *Heap[T]) At(i int) T { return h.items[i] }

// Top returns the best element without removing it.
func (h *Heap[T]) Top() (T, bool) {
	if len(h.items) == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Push inserts v. It returns false, leaving the heap untouched, if the heap
// is full or v is already present.
func (h *Heap[T]) Push(v T) bool {
	if h.IsFull() || h.Contains(v) {
		return false
	}
	i := len(h.items)
	h.items = append(h.items, v)
	h.index[v] = i
	h.up(i)
	return true
}

// Pop removes and returns the best element.
func (h *Heap[T]) Pop() (T, bool) {
	n := len(h.items)
	if n == 0 {
		var zero T
		return zero, false
	}
	top := h.items[0]
	h.index[top] = absent
	last := h.items[n-1]
	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]
	if n > 1 {
		h.items[0] = last
		h.index[last] = 0
		h.down(0)
	}
	return top, true
}

// Contains reports whether v is currently in the heap.
func (h *Heap[T]) Contains(v T) bool {
	i, ok := h.index[v]
	return ok && i != absent
}

// Find returns the heap-resident element equal to v.
func (h *Heap[T]) Find(v T) (T, bool) {
	if i, ok := h.index[v]; ok && i != absent {
		return h.items[i], true
	}
	var zero T
	return zero, false
}

// Fix restores heap order after the ordering key of v changed in place.
// It returns false if v is not in the heap.
func (h *Heap[T]) Fix(v T) bool {
	i, ok := h.index[v]
	if !ok || i == absent {
		return false
	}
	if !h.down(i) {
		h.up(i)
	}
	return true
}

// Remove deletes v from the heap, returning false if it was not present.
func (h *Heap[T]) Remove(v T) bool {
	i, ok := h.index[v]
	if !ok || i == absent {
		return false
	}
	n := len(h.items) - 1
	if i != n {
		h.swap(i, n)
	}
	h.index[v] = absent
	var zero T
	h.items[n] = zero
	h.items = h.items[:n]
	if i != n {
		if !h.down(i) {
			h.up(i)
		}
	}
	return true
}

// Clear empties the heap and forgets all recorded indexes.
func (h *Heap[T]) Clear() {
	clear(h.items)
	h.items = h.items[:0]
	clear(h.index)
}

func (h *Heap[T]) better(a, b T) bool {
	if h.reverse {
		return b.Compare(a) < 0
	}
	return a.Compare(b) < 0
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.index[h.items[i]] = i
	h.index[h.items[j]] = j
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) >> 1
		if !h.better(h.items[i], h.items[parent]) {
			return
		}
		h.swap(i, parent)
		i = parent
	}
}

// down sifts i toward the leaves, always following the better child. It
// reports whether the element moved.
func (h *Heap[T]) down(i int) bool {
	start := i
	n := len(h.items)
	for {
		left := i<<1 + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && h.better(h.items[right], h.items[left]) {
			child = right
		}
		if !h.better(h.items[child], h.items[i]) {
			break
		}
		h.swap(i, child)
		i = child
	}
	return i > start
}
