// Package reactive runs GOAP domains as PA-BT (planning and acting with
// behavior trees) instead of up-front A* plans.
//
// A State exposes an ActionSet and its live Blackboard through the go-pabt
// IState interface: condition variables are the projected boolean
// predicates, and the candidate actions for a failed condition are the
// registered actions whose effect outcome satisfies it. The resulting
// bt.Node expands lazily as conditions fail, and reacts to world changes on
// every tick.
//
// Usage:
//
//	state := reactive.NewState(actions, live)
//	_ = state.SetActionFunc("walk", walk)
//	node, err := reactive.NewPlan(state, goal)
//	ticker := bt.NewTicker(ctx, 100*time.Millisecond, node)
package reactive
