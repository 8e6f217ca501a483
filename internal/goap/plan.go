package goap

import (
	"log/slog"

	"github.com/joeycumines/go-goap/internal/astar"
)

// Plan is the outcome of one planning search.
type Plan struct {
	From, To *WorldState
	// Path runs from From to the last state reached; nil if To is
	// unreachable.
	Path []*WorldState
	// Actions join consecutive states of Path.
	Actions []string
	Cost    float64
	// Reached reports whether Path ends at To. A false value with a non-nil
	// Path is a partial plan cut short by the search bound.
	Reached bool
	Stats   astar.Stats
}

// FindPlan runs a single search from the state matching from toward goal.
// maxNodes bounds the search as in astar.NewSearcher.
func (s *ActionSet) FindPlan(from, goal Predicates, maxNodes int, logger *slog.Logger) (Plan, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return s.search(astar.NewSearcher[*ActionSet, *WorldState](s, maxNodes, astar.WithLogger(logger)), from, goal)
}

func (s *ActionSet) search(searcher *astar.Searcher[*ActionSet, *WorldState], from, goal Predicates) (Plan, error) {
	p := Plan{
		From: s.pool.GetOrCreateState(from),
		To:   s.pool.GetOrCreateState(goal),
	}
	p.Path, p.Reached = searcher.FindPath(p.From, p.To)
	p.Stats = searcher.Stats()

	var err error
	if p.Actions, err = s.PlanFor(p.Path); err != nil {
		return p, err
	}
	p.Cost, err = s.Cost(p.Actions)
	return p, err
}
