package goap

import (
	"slices"

	"github.com/joeycumines/go-goap/internal/astar"
)

// WorldState is a canonical planning state: the single pool-held instance for
// its Mask. Identity stands in for equality, so *WorldState is compared with
// ==.
//
// The predicates of a canonical state never change. Its neighbor table (the
// outgoing action transitions and their costs) grows as actions are
// registered, and is shared by every search that reaches the state.
type WorldState struct {
	pool      *StatePool
	mask      Mask
	preds     Predicates
	neighbors []*WorldState
	costs     map[*WorldState]float64
}

// Mask returns the canonical bitmask.
func (w *WorldState) Mask() Mask { return w.mask }

// Predicates returns a copy of the predicates the state was created from,
// restricted to enumerated keys.
func (w *WorldState) Predicates() Predicates { return w.preds.Clone() }

// Get returns the predicate value for k and whether it is specified.
func (w *WorldState) Get(k Key) (value, ok bool) {
	value, ok = w.preds[k]
	return
}

// Neighbors returns the states reachable by one registered action, in the
// order their first connecting action was registered.
func (w *WorldState) Neighbors() []*WorldState { return slices.Clone(w.neighbors) }

// Cost returns the transition cost to a neighbor.
func (w *WorldState) Cost(to *WorldState) (float64, bool) {
	c, ok := w.costs[to]
	return c, ok
}

// Distance is the A* heuristic: the number of predicate bits that differ
// between the two masks, scaled by the pool's heuristic scale.
func (w *WorldState) Distance(other *WorldState) float64 {
	if w == other {
		return 0
	}
	return float64((w.mask ^ other.mask).Count()) * w.pool.scale
}

// Successors lists the neighbors with their transition costs.
func (w *WorldState) Successors(*ActionSet) []astar.Successor[*WorldState] {
	out := make([]astar.Successor[*WorldState], len(w.neighbors))
	for i, n := range w.neighbors {
		out[i] = astar.Successor[*WorldState]{Node: n, Cost: w.costs[n]}
	}
	return out
}

// String renders the set predicates by name.
func (w *WorldState) String() string { return w.pool.schema.FormatMask(w.mask) }

func (w *WorldState) setNeighbor(to *WorldState, cost float64) {
	if _, ok := w.costs[to]; !ok {
		w.neighbors = append(w.neighbors, to)
	}
	w.costs[to] = cost
}

func (w *WorldState) dropNeighbor(to *WorldState) {
	if _, ok := w.costs[to]; !ok {
		return
	}
	delete(w.costs, to)
	if i := slices.Index(w.neighbors, to); i >= 0 {
		w.neighbors = slices.Delete(w.neighbors, i, i+1)
	}
}

// StatePool interns WorldStates by Mask: for any mask there is at most one
// WorldState per pool. Entries are created lazily and never evicted.
//
// A pool is owned by whoever constructs it and threaded explicitly through
// the ActionSet and Agent. It is not safe for concurrent use; hosts sharing a
// pool across goroutines must serialize access.
type StatePool struct {
	schema *Schema
	states map[Mask]*WorldState
	scale  float64
}

// PoolOption configures a StatePool.
type PoolOption func(*StatePool)

// WithHeuristicScale multiplies the bit-difference heuristic. Values below 1
// favor accumulated cost over the estimate; non-positive values are ignored.
func WithHeuristicScale(scale float64) PoolOption {
	return func(p *StatePool) {
		if scale > 0 {
			p.scale = scale
		}
	}
}

// NewStatePool returns an empty pool over schema.
func NewStatePool(schema *Schema, opts ...PoolOption) *StatePool {
	p := &StatePool{
		schema: schema,
		states: make(map[Mask]*WorldState),
		scale:  1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Schema returns the key set the pool canonicalizes over.
func (p *StatePool) Schema() *Schema { return p.schema }

// Len returns the number of canonical states created so far.
func (p *StatePool) Len() int { return len(p.states) }

// GetOrCreateState returns the canonical state for preds, creating it on
// first use. Maps that agree on every enumerated key yield the same instance.
func (p *StatePool) GetOrCreateState(preds Predicates) *WorldState {
	mask := p.schema.Mask(preds)
	if w, ok := p.states[mask]; ok {
		return w
	}
	w := &WorldState{
		pool:  p,
		mask:  mask,
		preds: make(Predicates, len(preds)),
		costs: make(map[*WorldState]float64),
	}
	for k, v := range preds {
		if p.schema.Has(k) {
			w.preds[k] = v
		}
	}
	p.states[mask] = w
	return w
}

// Lookup returns the canonical state for mask, if one exists.
func (p *StatePool) Lookup(mask Mask) (*WorldState, bool) {
	w, ok := p.states[mask]
	return w, ok
}
