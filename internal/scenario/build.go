package scenario

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/expr-lang/expr"
	bt "github.com/joeycumines/go-behaviortree"

	"github.com/joeycumines/go-goap/internal/goap"
)

// Options tunes the planner built for a scenario.
type Options struct {
	// MaxNodes bounds each search; zero selects the default.
	MaxNodes int
	// HeuristicScale scales the bit-difference heuristic; zero keeps 1.
	HeuristicScale float64
	// Logger receives agent and transform logs; nil selects slog.Default.
	Logger *slog.Logger
	// AgentID overrides the generated agent ID.
	AgentID string
}

// Binder accepts scripted action behaviors. Both goap.Agent and
// reactive.State satisfy it.
type Binder interface {
	SetActionFunc(name string, fn func() bt.Status) error
}

// World is a scenario instantiated as live planning objects, with the
// scripted action behaviors already bound to Agent.
type World struct {
	Scenario *Scenario
	Schema   *goap.Schema
	Pool     *goap.StatePool
	Actions  *goap.ActionSet
	Live     *goap.Blackboard
	Goal     goap.Predicates
	Agent    *goap.Agent

	mu      sync.Mutex
	scripts map[string][]bt.Status
	runs    map[string]int
	trace   []string
}

// Build instantiates s.
func (s *Scenario) Build(opts Options) (*World, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := goap.NewSchema(s.Keys...)
	if err != nil {
		return nil, err
	}
	for name, src := range s.Converters {
		k, ok := schema.Key(name)
		if !ok {
			return nil, fmt.Errorf("converter: %w: %q", goap.ErrUnknownKey, name)
		}
		if err := schema.SetExprConverter(k, src); err != nil {
			return nil, err
		}
	}

	var poolOpts []goap.PoolOption
	if opts.HeuristicScale > 0 {
		poolOpts = append(poolOpts, goap.WithHeuristicScale(opts.HeuristicScale))
	}
	pool := goap.NewStatePool(schema, poolOpts...)
	actions := goap.NewActionSet(pool)

	w := &World{
		Scenario: s,
		Schema:   schema,
		Pool:     pool,
		Actions:  actions,
		scripts:  make(map[string][]bt.Status),
		runs:     make(map[string]int),
	}

	for _, spec := range s.Actions {
		action, err := buildAction(schema, spec, logger)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", spec.Name, err)
		}
		if err := actions.AddAction(spec.Name, action); err != nil {
			return nil, err
		}
		script, err := parseScript(spec.Script)
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", spec.Name, err)
		}
		w.scripts[spec.Name] = script
	}

	facts := make(map[goap.Key]any, len(s.Facts))
	for name, v := range s.Facts {
		k, ok := schema.Key(name)
		if !ok {
			return nil, fmt.Errorf("fact: %w: %q", goap.ErrUnknownKey, name)
		}
		facts[k] = v
	}
	w.Live = goap.NewBlackboard(facts)

	if w.Goal, err = schema.Predicates(s.Goal); err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}

	agentOpts := []goap.AgentOption{
		goap.WithMaxNodes(opts.MaxNodes),
		goap.WithLogger(logger),
	}
	if opts.AgentID != "" {
		agentOpts = append(agentOpts, goap.WithID(opts.AgentID))
	}
	w.Agent = goap.NewAgent(actions, w.Live, agentOpts...)
	if err := w.Bind(w.Agent); err != nil {
		return nil, err
	}
	return w, nil
}

func buildAction(schema *goap.Schema, spec Action, logger *slog.Logger) (*goap.Action, error) {
	cost := goap.DefaultCost
	if spec.Cost != nil {
		cost = *spec.Cost
	}
	action := goap.NewAction(cost)

	pre, err := schema.Predicates(spec.Pre)
	if err != nil {
		return nil, fmt.Errorf("precondition: %w", err)
	}
	for k, v := range pre {
		action.WithPrecondition(k, v)
	}

	for _, e := range spec.Effects {
		k, ok := schema.Key(e.Key)
		if !ok {
			return nil, fmt.Errorf("effect: %w: %q", goap.ErrUnknownKey, e.Key)
		}
		outcome := e.Outcome == nil || *e.Outcome
		switch {
		case e.Set != nil:
			action.WithEffect(goap.SetEffect(k, *e.Set))
		case e.Delta != nil:
			action.WithEffect(goap.DeltaEffect(k, *e.Delta, outcome))
		case e.Assign != nil:
			value := e.Assign
			action.WithEffect(goap.TransformEffect(k, func(any) any { return value }, outcome))
		case e.Transform != "":
			fn, err := compileTransform(e.Key, e.Transform, logger)
			if err != nil {
				return nil, err
			}
			action.WithEffect(goap.TransformEffect(k, fn, outcome))
		default:
			return nil, fmt.Errorf("effect on %q: no change given", e.Key)
		}
	}
	return action, nil
}

// compileTransform compiles an expr-lang expression over "value" into an
// effect transform. A failing evaluation leaves the value unchanged.
func compileTransform(key, src string, logger *slog.Logger) (func(any) any, error) {
	program, err := expr.Compile(src,
		expr.Env(goap.ExprEnv{}),
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("transform for %q: %w", key, err)
	}
	return func(current any) any {
		next, err := expr.Run(program, goap.ExprEnv{Value: current})
		if err != nil {
			logger.Warn("[Scenario] transform evaluation failed",
				"key", key,
				"expression", src,
				"error", err)
			return current
		}
		return next
	}, nil
}

func parseScript(names []string) ([]bt.Status, error) {
	if len(names) == 0 {
		return []bt.Status{bt.Success}, nil
	}
	out := make([]bt.Status, len(names))
	for i, name := range names {
		switch name {
		case "running":
			out[i] = bt.Running
		case "success":
			out[i] = bt.Success
		case "failure":
			out[i] = bt.Failure
		default:
			return nil, fmt.Errorf("unknown script status %q", name)
		}
	}
	return out, nil
}

// Bind registers the scripted behavior of every action with b.
func (w *World) Bind(b Binder) error {
	for _, name := range w.Actions.Names() {
		if err := b.SetActionFunc(name, func() bt.Status { return w.run(name) }); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) run(name string) bt.Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	script := w.scripts[name]
	i := min(w.runs[name], len(script)-1)
	w.runs[name]++
	w.trace = append(w.trace, name)
	return script[i]
}

// Trace returns the action names run so far, in order.
func (w *World) Trace() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.trace)
}

// Plan computes the plan the agent would follow from the current live
// state, without running anything.
func (w *World) Plan(opts Options) (goap.Plan, error) {
	return w.Actions.FindPlan(w.Schema.Project(w.Live.Snapshot()), w.Goal, opts.MaxNodes, opts.Logger)
}
