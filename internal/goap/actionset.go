package goap

import (
	"fmt"
	"sort"

	"github.com/joeycumines/go-goap/internal/multigraph"
)

type transition struct {
	from, to *WorldState
}

// ActionSet is the registry of named actions and the state-transition graph
// they induce. Every action contributes its precondition state, its effect
// state, and one edge between them labeled with the action name.
//
// Edge weights live on the canonical states' neighbor tables, not on the
// graph: when several actions join the same pair of states, the neighbor cost
// is the cheapest of them and TransitionAction names that action.
//
// ActionSet is not safe for concurrent use.
type ActionSet struct {
	pool    *StatePool
	graph   *multigraph.Graph[*WorldState, string]
	actions map[string]*Action
	edges   map[string]transition
}

// NewActionSet returns an empty set interning states in pool.
func NewActionSet(pool *StatePool) *ActionSet {
	return &ActionSet{
		pool:    pool,
		graph:   multigraph.New[*WorldState, string](),
		actions: make(map[string]*Action),
		edges:   make(map[string]transition),
	}
}

// Pool returns the state pool the set interns into.
func (s *ActionSet) Pool() *StatePool { return s.pool }

// Schema is shorthand for Pool().Schema().
func (s *ActionSet) Schema() *Schema { return s.pool.schema }

// Graph exposes the state-transition graph. Callers must not mutate it.
func (s *ActionSet) Graph() *multigraph.Graph[*WorldState, string] { return s.graph }

// AddAction registers action under name. Re-using a name replaces the
// previous action and its transition.
func (s *ActionSet) AddAction(name string, action *Action) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAction)
	}
	if action == nil {
		return fmt.Errorf("%w: %q is nil", ErrInvalidAction, name)
	}
	if err := action.Validate(); err != nil {
		return fmt.Errorf("action %q: %w", name, err)
	}

	if old, ok := s.edges[name]; ok {
		s.graph.RemoveEdge(old.from, old.to, name)
		s.refreshCost(old.from, old.to)
	}

	from := s.pool.GetOrCreateState(action.pre)
	to := s.pool.GetOrCreateState(action.EffectPredicates())
	s.graph.AddNode(from)
	s.graph.AddNode(to)
	s.graph.AddEdge(from, to, name)

	s.actions[name] = action
	s.edges[name] = transition{from, to}
	s.refreshCost(from, to)
	return nil
}

// refreshCost recomputes from's neighbor entry for to from the actions still
// joining the pair.
func (s *ActionSet) refreshCost(from, to *WorldState) {
	labels := s.graph.FindEdge(from, to)
	if len(labels) == 0 {
		from.dropNeighbor(to)
		return
	}
	best := s.actions[labels[0]].cost
	for _, name := range labels[1:] {
		if c := s.actions[name].cost; c < best {
			best = c
		}
	}
	from.setNeighbor(to, best)
}

// Action returns the action registered under name.
func (s *ActionSet) Action(name string) (*Action, bool) {
	a, ok := s.actions[name]
	return a, ok
}

// HasAction reports whether name is registered.
func (s *ActionSet) HasAction(name string) bool {
	_, ok := s.actions[name]
	return ok
}

// Len returns the number of registered actions.
func (s *ActionSet) Len() int { return len(s.actions) }

// Names returns every registered action name, sorted.
func (s *ActionSet) Names() []string {
	names := make([]string, 0, len(s.actions))
	for name := range s.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Endpoints returns the precondition and effect states of the named action.
func (s *ActionSet) Endpoints(name string) (from, to *WorldState, ok bool) {
	t, ok := s.edges[name]
	return t.from, t.to, ok
}

// TransitionAction names the cheapest action leading from one state to
// another; ties go to the earliest registered.
func (s *ActionSet) TransitionAction(from, to *WorldState) (string, bool) {
	labels := s.graph.FindEdge(from, to)
	if len(labels) == 0 {
		return "", false
	}
	best := labels[0]
	for _, name := range labels[1:] {
		if s.actions[name].cost < s.actions[best].cost {
			best = name
		}
	}
	return best, true
}

// PlanFor converts a state path into the action names joining each
// consecutive pair. Paths with fewer than two states yield an empty plan.
func (s *ActionSet) PlanFor(path []*WorldState) ([]string, error) {
	if len(path) < 2 {
		return nil, nil
	}
	plan := make([]string, 0, len(path)-1)
	for i := 1; i < len(path); i++ {
		name, ok := s.TransitionAction(path[i-1], path[i])
		if !ok {
			return nil, fmt.Errorf("%w: no action from %s to %s", ErrUnknownAction, path[i-1], path[i])
		}
		plan = append(plan, name)
	}
	return plan, nil
}

// Cost returns the total cost of running the named actions in order.
func (s *ActionSet) Cost(plan []string) (float64, error) {
	var total float64
	for _, name := range plan {
		a, ok := s.actions[name]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
		}
		total += a.cost
	}
	return total, nil
}
