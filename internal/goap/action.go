package goap

import (
	"errors"
	"fmt"
	"slices"
)

// DefaultCost is the cost of an action that does not specify one.
const DefaultCost = 1.0

// EffectOp enumerates the ways an effect changes the live world state.
type EffectOp uint8

const (
	// OpSet writes the effect's boolean outcome.
	OpSet EffectOp = iota + 1
	// OpDelta adds a numeric delta to the current value.
	OpDelta
	// OpTransform replaces the current value with Transform(current).
	OpTransform
)

// String implements fmt.Stringer.
func (op EffectOp) String() string {
	switch op {
	case OpSet:
		return "set"
	case OpDelta:
		return "delta"
	case OpTransform:
		return "transform"
	default:
		return fmt.Sprintf("EffectOp(%d)", op)
	}
}

// Effect is one change an action makes. Outcome is what the planner assumes
// the key's predicate becomes; Op says how the live value actually changes.
// Construct effects with SetEffect, DeltaEffect or TransformEffect.
type Effect struct {
	Key       Key
	Op        EffectOp
	Outcome   bool
	Delta     float64
	Transform func(current any) any
}

// SetEffect sets key to value.
func SetEffect(key Key, value bool) Effect {
	return Effect{Key: key, Op: OpSet, Outcome: value}
}

// DeltaEffect adds delta to the numeric value at key, which the planner
// assumes leaves the key's predicate equal to outcome. A missing value counts
// as zero.
func DeltaEffect(key Key, delta float64, outcome bool) Effect {
	return Effect{Key: key, Op: OpDelta, Outcome: outcome, Delta: delta}
}

// TransformEffect rewrites the value at key with fn, which the planner
// assumes leaves the key's predicate equal to outcome.
func TransformEffect(key Key, fn func(current any) any, outcome bool) Effect {
	return Effect{Key: key, Op: OpTransform, Outcome: outcome, Transform: fn}
}

func (e Effect) apply(live *Blackboard) error {
	switch e.Op {
	case OpSet:
		live.Set(e.Key, e.Outcome)
		return nil
	case OpDelta:
		var err error
		live.Update(e.Key, func(current any) any {
			next, ok := addDelta(current, e.Delta)
			if !ok {
				err = fmt.Errorf("delta on non-numeric value %T", current)
				return current
			}
			return next
		})
		return err
	case OpTransform:
		if e.Transform == nil {
			return fmt.Errorf("transform effect without function")
		}
		live.Update(e.Key, e.Transform)
		return nil
	default:
		return fmt.Errorf("unknown effect op %d", e.Op)
	}
}

// addDelta adds delta to a numeric value, preserving its dynamic type.
func addDelta(current any, delta float64) (any, bool) {
	switch v := current.(type) {
	case nil:
		return delta, true
	case int:
		return v + int(delta), true
	case int8:
		return v + int8(delta), true
	case int16:
		return v + int16(delta), true
	case int32:
		return v + int32(delta), true
	case int64:
		return v + int64(delta), true
	case uint:
		return uint(int64(v) + int64(delta)), true
	case uint8:
		return uint8(int64(v) + int64(delta)), true
	case uint16:
		return uint16(int64(v) + int64(delta)), true
	case uint32:
		return uint32(int64(v) + int64(delta)), true
	case uint64:
		return uint64(int64(v) + int64(delta)), true
	case float32:
		return v + float32(delta), true
	case float64:
		return v + delta, true
	default:
		return current, false
	}
}

// Action is a planning operator: preconditions that must hold, effects it
// produces, and a cost in (0, 1]. Costs are bounded by 1 to stay on the scale
// of the bit-difference heuristic, one unit per differing predicate.
type Action struct {
	cost    float64
	pre     Predicates
	effects []Effect
}

// NewAction returns an action with the given cost and no conditions or
// effects. The cost is validated when the action is registered.
func NewAction(cost float64) *Action {
	return &Action{cost: cost, pre: make(Predicates)}
}

// WithPrecondition requires key to equal value.
func (a *Action) WithPrecondition(key Key, value bool) *Action {
	a.pre[key] = value
	return a
}

// WithEffect adds an effect. An effect on a key already affected replaces the
// earlier one.
func (a *Action) WithEffect(e Effect) *Action {
	if i := slices.IndexFunc(a.effects, func(x Effect) bool { return x.Key == e.Key }); i >= 0 {
		a.effects[i] = e
		return a
	}
	a.effects = append(a.effects, e)
	return a
}

// Cost returns the action cost.
func (a *Action) Cost() float64 { return a.cost }

// Preconditions returns a copy of the precondition predicates.
func (a *Action) Preconditions() Predicates { return a.pre.Clone() }

// Effects returns a copy of the effects, in registration order.
func (a *Action) Effects() []Effect { return slices.Clone(a.effects) }

// EffectPredicates returns each effect's planning outcome.
func (a *Action) EffectPredicates() Predicates {
	out := make(Predicates, len(a.effects))
	for _, e := range a.effects {
		out[e.Key] = e.Outcome
	}
	return out
}

// Validate checks the cost range and effect well-formedness.
func (a *Action) Validate() error {
	if !(a.cost > 0 && a.cost <= 1) {
		return fmt.Errorf("%w: got %v", ErrInvalidCost, a.cost)
	}
	for _, e := range a.effects {
		switch e.Op {
		case OpSet, OpDelta:
		case OpTransform:
			if e.Transform == nil {
				return fmt.Errorf("%w: transform effect on key %d has no function", ErrInvalidAction, e.Key)
			}
		default:
			return fmt.Errorf("%w: effect on key %d has unknown op %d", ErrInvalidAction, e.Key, e.Op)
		}
	}
	return nil
}

// MetCondition reports whether every precondition key is present in state
// with the required value. Missing keys fail the check.
func (a *Action) MetCondition(state Predicates) bool {
	for k, want := range a.pre {
		if got, ok := state[k]; !ok || got != want {
			return false
		}
	}
	return true
}

// EffectOnRun applies every effect to the live world state. Effects that
// cannot be applied (a delta on a non-numeric value) are skipped and reported
// in the returned error; the remaining effects still apply.
func (a *Action) EffectOnRun(live *Blackboard) error {
	var errs []error
	for _, e := range a.effects {
		if err := e.apply(live); err != nil {
			errs = append(errs, fmt.Errorf("effect %s on key %d: %w", e.Op, e.Key, err))
		}
	}
	return errors.Join(errs...)
}
