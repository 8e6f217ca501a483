package reactive

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/go-goap/internal/goap"
)

var _ pabtpkg.IState = (*State)(nil)

// Option configures a State.
type Option func(*State)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// State implements pabtpkg.IState over a GOAP action set and the live world
// state. Variables are keyed by goap.Key.
type State struct {
	actions *goap.ActionSet
	live    *goap.Blackboard
	logger  *slog.Logger

	mu    sync.RWMutex
	nodes map[string]bt.Node
}

// NewState creates a State. A nil live state starts empty.
func NewState(actions *goap.ActionSet, live *goap.Blackboard, opts ...Option) *State {
	if live == nil {
		live = new(goap.Blackboard)
	}
	s := &State{
		actions: actions,
		live:    live,
		logger:  slog.Default(),
		nodes:   make(map[string]bt.Node),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Live returns the live world state.
func (s *State) Live() *goap.Blackboard { return s.live }

// SetActionNode binds the behavior that performs the named action.
func (s *State) SetActionNode(name string, node bt.Node) error {
	if !s.actions.HasAction(name) {
		return fmt.Errorf("%w: %q", goap.ErrUnknownAction, name)
	}
	if node == nil {
		return fmt.Errorf("%w: nil node for %q", goap.ErrInvalidAction, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[name] = node
	return nil
}

// SetActionFunc binds fn as the behavior of the named action.
func (s *State) SetActionFunc(name string, fn func() bt.Status) error {
	if fn == nil {
		return fmt.Errorf("%w: nil func for %q", goap.ErrInvalidAction, name)
	}
	return s.SetActionNode(name, bt.New(func([]bt.Node) (bt.Status, error) {
		return fn(), nil
	}))
}

// Variable implements pabtpkg.IState. It returns the projected boolean for a
// goap.Key; keys absent from the live state read as false.
func (s *State) Variable(key any) (any, error) {
	k, ok := key.(goap.Key)
	if !ok {
		return nil, fmt.Errorf("unsupported key type: %T", key)
	}
	schema := s.actions.Schema()
	if !schema.Has(k) {
		return nil, fmt.Errorf("%w: %d", goap.ErrUnknownKey, k)
	}
	value, present := s.live.Lookup(k)
	if !present {
		return false, nil
	}
	return schema.Project(map[goap.Key]any{k: value})[k], nil
}

// Actions implements pabtpkg.IState. It returns, sorted by name, every action
// with an effect on the failed key whose outcome the condition accepts.
func (s *State) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	var out []pabtpkg.IAction
	for _, name := range s.actions.Names() {
		action, _ := s.actions.Action(name)
		if failed != nil && !relevant(action, failed) {
			continue
		}
		out = append(out, s.wrap(name, action))
	}
	s.logger.Debug("[PA-BT] candidate actions",
		"failed", failedKey(failed),
		"count", len(out))
	return out, nil
}

func relevant(action *goap.Action, failed pabtpkg.Condition) bool {
	for k, outcome := range action.EffectPredicates() {
		if failed.Key() == k && failed.Match(outcome) {
			return true
		}
	}
	return false
}

func failedKey(failed pabtpkg.Condition) any {
	if failed == nil {
		return nil
	}
	return failed.Key()
}

func (s *State) wrap(name string, action *goap.Action) *Action {
	pre := action.Preconditions()
	keys := make([]goap.Key, 0, len(pre))
	for k := range pre {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	conds := make(pabtpkg.IConditions, len(keys))
	for i, k := range keys {
		conds[i] = Condition{key: k, value: pre[k]}
	}

	effects := make(pabtpkg.Effects, 0, len(action.Effects()))
	for _, e := range action.Effects() {
		effects = append(effects, Effect{key: e.Key, value: e.Outcome})
	}

	return &Action{
		Name:       name,
		conditions: []pabtpkg.IConditions{conds},
		effects:    effects,
		node:       s.actionNode(name, action),
	}
}

// actionNode ticks the host behavior bound to name and writes the action's
// effects into the live state once it succeeds.
func (s *State) actionNode(name string, action *goap.Action) bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		s.mu.RLock()
		node, ok := s.nodes[name]
		s.mu.RUnlock()
		if !ok {
			s.logger.Warn("[PA-BT] no behavior bound to action", "action", name)
			return bt.Failure, nil
		}
		status, err := node.Tick()
		if err != nil {
			return bt.Failure, fmt.Errorf("action %q: %w", name, err)
		}
		if status == bt.Success {
			if err := action.EffectOnRun(s.live); err != nil {
				s.logger.Warn("[PA-BT] effect not fully applied", "action", name, "error", err)
			}
		}
		return status, nil
	})
}

// Goal converts predicates into a single conjunctive PA-BT goal, ordered by
// key.
func Goal(goal goap.Predicates) []pabtpkg.IConditions {
	keys := make([]goap.Key, 0, len(goal))
	for k := range goal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	conds := make(pabtpkg.IConditions, len(keys))
	for i, k := range keys {
		conds[i] = Condition{key: k, value: goal[k]}
	}
	return []pabtpkg.IConditions{conds}
}

// NewPlan builds the PA-BT tree pursuing goal over state.
func NewPlan(state *State, goal goap.Predicates) (bt.Node, error) {
	if len(goal) == 0 {
		return nil, fmt.Errorf("reactive: empty goal")
	}
	plan, err := pabtpkg.INew(state, Goal(goal))
	if err != nil {
		return nil, fmt.Errorf("reactive: %w", err)
	}
	return plan.Node(), nil
}
