// Package astar implements a bounded, generic A* best-first search.
//
// The searcher is agnostic to the search space: nodes describe their own
// successors (given an opaque space handle) and heuristic. Per-search cost
// bookkeeping is kept in an arena owned by the searcher, so nodes shared
// between several searches (for example canonical, pooled states) are never
// mutated by a search.
package astar

import (
	"log/slog"
	"slices"

	"github.com/joeycumines/go-goap/internal/indexedheap"
)

// DefaultMaxNodes bounds a search when no explicit bound is given.
const DefaultMaxNodes = 200

// minMaxNodes is the smallest usable bound: a heap of capacity 1 cannot hold
// even the start node.
const minMaxNodes = 2

// Successor is a node reachable in one step, and the cost of that step
// (the successor's SelfCost, relative to the node that generated it).
type Successor[N any] struct {
	Node N
	Cost float64
}

// Node is the contract a searchable node type satisfies. M is the search-space
// handle passed, untouched, from the Searcher to Successors.
//
// Node equality (==) decides both target detection and explored-set
// membership.
type Node[M, N any] interface {
	comparable
	// Distance estimates the remaining cost to other. It must not overestimate
	// for the result to be optimal.
	Distance(other N) float64
	// Successors lists the nodes reachable in one step.
	Successors(space M) []Successor[N]
}

// Stats describes the most recent FindPath call.
type Stats struct {
	Explored int
	// Dropped counts successors refused by a full frontier.
	Dropped int
	// Bounded is true if the search stopped on its node bound rather than
	// reaching the target or exhausting the frontier.
	Bounded bool
}

// record is the arena entry for one discovered node.
type record[N comparable] struct {
	node     N
	self     int
	parent   int
	selfCost float64
	g, h     float64
}

func (r *record[N]) fCost() float64 { return r.g + r.h }

// Compare orders by FCost, breaking ties on HCost.
func (r *record[N]) Compare(other *record[N]) int {
	switch f, of := r.fCost(), other.fCost(); {
	case f < of:
		return -1
	case f > of:
		return 1
	}
	switch {
	case r.h < other.h:
		return -1
	case r.h > other.h:
		return 1
	}
	return 0
}

type options struct {
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*options)

// WithLogger sets the logger used for bound and capacity events.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Searcher runs A* over the space M. It is reusable but not safe for
// concurrent use; every FindPath call starts from a clean slate.
type Searcher[M any, N Node[M, N]] struct {
	space    M
	maxNodes int
	logger   *slog.Logger

	frontier *indexedheap.Heap[*record[N]]
	arena    []*record[N]
	byNode   map[N]int
	explored map[N]struct{}
	stats    Stats
}

// NewSearcher builds a searcher over space. maxNodes bounds both the frontier
// (which holds at most maxNodes-1 nodes) and the explored set; values below 2
// are raised to 2, and 0 selects DefaultMaxNodes.
func NewSearcher[M any, N Node[M, N]](space M, maxNodes int, opts ...Option) *Searcher[M, N] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if maxNodes == 0 {
		maxNodes = DefaultMaxNodes
	}
	if maxNodes < minMaxNodes {
		maxNodes = minMaxNodes
	}
	return &Searcher[M, N]{
		space:    space,
		maxNodes: maxNodes,
		logger:   o.logger,
		frontier: indexedheap.New[*record[N]](maxNodes, false),
		byNode:   make(map[N]int),
		explored: make(map[N]struct{}),
	}
}

// MaxNodes returns the search bound.
func (s *Searcher[M, N]) MaxNodes() int { return s.maxNodes }

// Stats returns counters for the most recent search.
func (s *Searcher[M, N]) Stats() Stats { return s.stats }

// FindPath searches from start to target. The returned path runs from start
// to its last node inclusive, and reached reports whether that last node is
// target.
//
// When the node bound is hit first, the path leads to the node being expanded
// at that moment and reached is false. When the frontier drains without
// reaching target (target unreachable), the path is nil.
func (s *Searcher[M, N]) FindPath(start, target N) (path []N, reached bool) {
	s.reset()

	root := s.discover(start)
	root.parent = -1
	root.h = start.Distance(target)
	s.frontier.Push(root)

	for !s.frontier.IsEmpty() {
		cur, _ := s.frontier.Pop()
		s.explored[cur.node] = struct{}{}
		s.stats.Explored = len(s.explored)

		if cur.node == target {
			return s.trace(cur), true
		}
		if s.frontier.IsFull() || len(s.explored) >= s.maxNodes {
			s.stats.Bounded = true
			s.logger.Warn("astar: search bound reached before target",
				"maxNodes", s.maxNodes,
				"explored", len(s.explored),
				"frontier", s.frontier.Len(),
				"bestCost", cur.g)
			return s.trace(cur), false
		}
		s.expand(cur, target)
	}

	s.logger.Debug("astar: frontier exhausted, target unreachable",
		"explored", len(s.explored))
	return nil, false
}

func (s *Searcher[M, N]) expand(cur *record[N], target N) {
	for _, succ := range cur.node.Successors(s.space) {
		if _, done := s.explored[succ.Node]; done {
			continue
		}
		tentative := cur.g + succ.Cost

		var rec *record[N]
		if i, ok := s.byNode[succ.Node]; ok {
			rec = s.arena[i]
		}
		queued := rec != nil && s.frontier.Contains(rec)
		if queued && tentative >= rec.g {
			continue
		}
		if rec == nil {
			rec = s.discover(succ.Node)
		}
		rec.selfCost = succ.Cost
		rec.g = tentative
		rec.h = succ.Node.Distance(target)
		rec.parent = cur.self

		if queued {
			s.frontier.Fix(rec)
		} else if !s.frontier.Push(rec) {
			s.stats.Dropped++
			s.logger.Debug("astar: frontier full, successor dropped",
				"capacity", s.frontier.Cap(),
				"dropped", s.stats.Dropped)
		}
	}
}

func (s *Searcher[M, N]) discover(n N) *record[N] {
	rec := &record[N]{node: n, self: len(s.arena), parent: -1}
	s.arena = append(s.arena, rec)
	s.byNode[n] = rec.self
	return rec
}

func (s *Searcher[M, N]) trace(end *record[N]) []N {
	var path []N
	for i := end.self; i >= 0; i = s.arena[i].parent {
		path = append(path, s.arena[i].node)
	}
	slices.Reverse(path)
	return path
}

func (s *Searcher[M, N]) reset() {
	s.frontier.Clear()
	clear(s.arena)
	s.arena = s.arena[:0]
	clear(s.byNode)
	clear(s.explored)
	s.stats = Stats{}
}
