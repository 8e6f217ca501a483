package goap

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/go-goap/internal/astar"
)

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithMaxNodes bounds each planning search. Zero selects
// astar.DefaultMaxNodes.
func WithMaxNodes(n int) AgentOption {
	return func(a *Agent) { a.maxNodes = n }
}

// WithLogger sets the logger. The agent and its searcher log through it with
// the agent ID attached.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithID overrides the generated agent ID.
func WithID(id string) AgentOption {
	return func(a *Agent) {
		if id != "" {
			a.id = id
		}
	}
}

// Agent plans over an ActionSet and executes the plan one action per Step,
// replanning whenever an action fails or the live world diverges from what
// the plan assumed.
//
// The status is a bt.Status, driven by the transition function in Step:
//
//	zero, Failure -> replan, dequeue, run
//	Success       -> apply effects, dequeue, run
//	Running       -> run the current action again
//
// where "run" checks the action's preconditions against the live state and
// ticks its node, and an empty queue or unmet precondition yields Failure.
//
// Agent methods are safe for concurrent use. Action behaviors are ticked while
// the agent is locked and must not call back into it.
type Agent struct {
	mu       sync.Mutex
	id       string
	actions  *ActionSet
	live     *Blackboard
	logger   *slog.Logger
	maxNodes int
	searcher *astar.Searcher[*ActionSet, *WorldState]
	nodes    map[string]bt.Node

	status  bt.Status
	plan    []string
	path    []*WorldState
	current string
	replans int
	stats   astar.Stats
}

// NewAgent returns an idle agent over actions whose live world state is live.
// The first Step plans.
func NewAgent(actions *ActionSet, live *Blackboard, opts ...AgentOption) *Agent {
	if live == nil {
		live = new(Blackboard)
	}
	a := &Agent{
		id:      uuid.NewString(),
		actions: actions,
		live:    live,
		logger:  slog.Default(),
		nodes:   make(map[string]bt.Node),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("agent", a.id)
	a.searcher = astar.NewSearcher[*ActionSet, *WorldState](actions, a.maxNodes, astar.WithLogger(a.logger))
	return a
}

// ID returns the agent identifier.
func (a *Agent) ID() string { return a.id }

// Live returns the live world state.
func (a *Agent) Live() *Blackboard { return a.live }

// Actions returns the action set the agent plans over.
func (a *Agent) Actions() *ActionSet { return a.actions }

// SetActionNode binds the behavior that performs the named action. A tick
// error counts as Failure.
func (a *Agent) SetActionNode(name string, node bt.Node) error {
	if !a.actions.HasAction(name) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	if node == nil {
		return fmt.Errorf("%w: nil node for %q", ErrInvalidAction, name)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nodes[name] = node
	return nil
}

// SetActionFunc binds fn as the behavior of the named action.
func (a *Agent) SetActionFunc(name string, fn func() bt.Status) error {
	if fn == nil {
		return fmt.Errorf("%w: nil func for %q", ErrInvalidAction, name)
	}
	return a.SetActionNode(name, bt.New(func([]bt.Node) (bt.Status, error) {
		return fn(), nil
	}))
}

// Step advances the agent toward goal by one transition and returns the new
// status.
func (a *Agent) Step(goal Predicates) bt.Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch a.status {
	case bt.Running:
	case bt.Success:
		a.applyCurrent()
	default:
		a.replan(goal)
	}

	if a.status != bt.Running {
		if len(a.plan) == 0 {
			a.current = ""
			a.status = bt.Failure
			a.logger.Debug("[GOAP] no action left to run")
			return a.status
		}
		a.current = a.plan[0]
		a.plan = a.plan[1:]
	}

	action := a.actions.actions[a.current]
	if state := a.projected(); !action.MetCondition(state) {
		a.logger.Info("[GOAP] precondition unmet, plan abandoned",
			"action", a.current,
			"want", a.actions.Schema().Format(action.pre),
			"live", a.actions.Schema().Format(state))
		a.status = bt.Failure
		return a.status
	}

	a.status = a.run(a.current)
	return a.status
}

func (a *Agent) replan(goal Predicates) {
	a.plan = a.plan[:0]
	a.current = ""
	a.replans++

	p, err := a.actions.search(a.searcher, a.projected(), goal)
	a.path = p.Path
	a.stats = p.Stats
	if err != nil {
		a.logger.Error("[GOAP] failed to convert state path into actions", "error", err)
		return
	}
	a.plan = p.Actions

	switch {
	case p.Reached:
		a.logger.Debug("[GOAP] planned",
			"from", p.From.String(),
			"to", p.To.String(),
			"plan", p.Actions,
			"cost", p.Cost,
			"explored", p.Stats.Explored)
	case p.Path != nil:
		a.logger.Warn("[GOAP] executing partial plan, search bound reached",
			"from", p.From.String(),
			"to", p.To.String(),
			"plan", p.Actions,
			"explored", p.Stats.Explored)
	default:
		a.logger.Debug("[GOAP] goal unreachable",
			"from", p.From.String(),
			"to", p.To.String())
	}
}

func (a *Agent) applyCurrent() {
	action, ok := a.actions.actions[a.current]
	if !ok {
		return
	}
	if err := action.EffectOnRun(a.live); err != nil {
		a.logger.Warn("[GOAP] effect not fully applied", "action", a.current, "error", err)
	}
}

func (a *Agent) run(name string) bt.Status {
	node, ok := a.nodes[name]
	if !ok {
		a.logger.Warn("[GOAP] no behavior bound to action", "action", name)
		return bt.Failure
	}
	status, err := node.Tick()
	if err != nil {
		a.logger.Warn("[GOAP] action failed", "action", name, "error", err)
		return bt.Failure
	}
	switch status {
	case bt.Running, bt.Success, bt.Failure:
		return status
	default:
		a.logger.Warn("[GOAP] action returned invalid status", "action", name, "status", int(status))
		return bt.Failure
	}
}

func (a *Agent) projected() Predicates {
	return a.actions.Schema().Project(a.live.Snapshot())
}

// Satisfied reports whether every goal predicate holds in the live state.
// Keys absent from the live state count as false.
func (a *Agent) Satisfied(goal Predicates) bool {
	state := a.projected()
	for k, want := range goal {
		if state[k] != want {
			return false
		}
	}
	return true
}

// Node wraps the agent as a behavior tree node: Success once goal holds in
// the live state, otherwise one Step and Running.
func (a *Agent) Node(goal Predicates) bt.Node {
	goal = goal.Clone()
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if a.Satisfied(goal) {
			return bt.Success, nil
		}
		a.Step(goal)
		return bt.Running, nil
	})
}

// Status returns the status of the last Step. The zero value means no Step
// has run.
func (a *Agent) Status() bt.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// Current returns the name of the action being run, if any.
func (a *Agent) Current() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Plan returns the action names still queued after Current.
func (a *Agent) Plan() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.plan)
}

// StatePath returns the canonical state path of the latest plan.
func (a *Agent) StatePath() []*WorldState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.path)
}

// Replans returns how many times the agent has planned.
func (a *Agent) Replans() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.replans
}

// SearchStats returns the counters of the latest planning search.
func (a *Agent) SearchStats() astar.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
