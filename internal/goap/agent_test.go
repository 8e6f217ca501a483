package goap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	bt "github.com/joeycumines/go-behaviortree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder binds every action of set to a func that logs its name and
// returns the status queued for it, defaulting to Success.
type recorder struct {
	calls  []string
	script map[string][]bt.Status
}

func newRecorder(t *testing.T, agent *Agent) *recorder {
	t.Helper()
	r := &recorder{script: make(map[string][]bt.Status)}
	for _, name := range agent.Actions().Names() {
		require.NoError(t, agent.SetActionFunc(name, func() bt.Status {
			r.calls = append(r.calls, name)
			if queued := r.script[name]; len(queued) > 0 {
				r.script[name] = queued[1:]
				return queued[0]
			}
			return bt.Success
		}))
	}
	return r
}

func walkApproachSet(t *testing.T) *ActionSet {
	t.Helper()
	set := NewActionSet(NewStatePool(walkerSchema()))
	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))
	require.NoError(t, set.AddAction("approach", NewAction(1).
		WithPrecondition(isWalking, true).
		WithEffect(SetEffect(isNearby, true))))
	return set
}

func TestAgent_WalkThenApproach(t *testing.T) {
	t.Parallel()

	live := NewBlackboard(map[Key]any{hasLeg: true})
	agent := NewAgent(walkApproachSet(t), live)
	rec := newRecorder(t, agent)
	goal := Predicates{isNearby: true}

	assert.Equal(t, bt.Status(0), agent.Status())

	assert.Equal(t, bt.Success, agent.Step(goal))
	assert.Equal(t, "walk", agent.Current())
	assert.Equal(t, []string{"approach"}, agent.Plan())
	assert.Len(t, agent.StatePath(), 3)
	assert.Equal(t, 1, agent.Replans())
	assert.False(t, agent.Satisfied(goal))

	assert.Equal(t, bt.Success, agent.Step(goal))
	assert.Equal(t, "approach", agent.Current())
	assert.Equal(t, true, live.Get(isWalking))
	assert.Empty(t, agent.Plan())

	// the effect of the second action lands on the following step, which
	// then finds the queue exhausted
	assert.Equal(t, bt.Failure, agent.Step(goal))
	assert.True(t, agent.Satisfied(goal))
	assert.Equal(t, true, live.Get(isNearby))
	assert.Equal(t, []string{"walk", "approach"}, rec.calls)
	assert.Equal(t, 1, agent.Replans())
}

func TestAgent_PreconditionUnmetReplans(t *testing.T) {
	t.Parallel()

	live := NewBlackboard(map[Key]any{hasLeg: true})
	agent := NewAgent(walkApproachSet(t), live)
	rec := newRecorder(t, agent)
	rec.script["walk"] = []bt.Status{bt.Running}
	goal := Predicates{isNearby: true}

	assert.Equal(t, bt.Running, agent.Step(goal))
	assert.Equal(t, "walk", agent.Current())

	// the world moves on without the agent: walking, but the leg is gone
	live.Set(hasLeg, false)
	live.Set(isWalking, true)

	assert.Equal(t, bt.Failure, agent.Step(goal))
	assert.Equal(t, []string{"walk"}, rec.calls)

	assert.Equal(t, bt.Success, agent.Step(goal))
	assert.Equal(t, 2, agent.Replans())
	assert.Equal(t, "approach", agent.Current())
	require.Len(t, agent.StatePath(), 2)
	assert.Equal(t, "{IsWalking}", agent.StatePath()[0].String())
	assert.Equal(t, []string{"walk", "approach"}, rec.calls)

	agent.Step(goal)
	assert.True(t, agent.Satisfied(goal))
}

func TestAgent_FailureReplans(t *testing.T) {
	t.Parallel()

	live := NewBlackboard(map[Key]any{hasLeg: true})
	agent := NewAgent(walkApproachSet(t), live)
	rec := newRecorder(t, agent)
	rec.script["walk"] = []bt.Status{bt.Failure}
	goal := Predicates{isNearby: true}

	assert.Equal(t, bt.Failure, agent.Step(goal))
	assert.Nil(t, live.Get(isWalking))

	assert.Equal(t, bt.Success, agent.Step(goal))
	assert.Equal(t, "walk", agent.Current())
	assert.Equal(t, 2, agent.Replans())
	assert.Equal(t, []string{"walk", "walk"}, rec.calls)
}

func TestAgent_CheaperChain(t *testing.T) {
	t.Parallel()

	schema := MustSchema("Start", "B1", "B2", "A1", "Done")
	start, b1, b2, a1, done := Key(0), Key(1), Key(2), Key(3), Key(4)
	set := NewActionSet(NewStatePool(schema))

	for _, step := range []struct {
		name     string
		from, to Key
	}{
		{"b1", start, b1},
		{"b2", b1, b2},
		{"b3", b2, done},
		{"a1", start, a1},
		{"a2", a1, done},
	} {
		require.NoError(t, set.AddAction(step.name, NewAction(1).
			WithPrecondition(step.from, true).
			WithEffect(SetEffect(step.to, true))))
	}

	agent := NewAgent(set, NewBlackboard(map[Key]any{start: true}))
	rec := newRecorder(t, agent)
	goal := Predicates{done: true}

	require.Equal(t, bt.Success, agent.Step(goal))
	plan := append([]string{agent.Current()}, agent.Plan()...)
	assert.Equal(t, []string{"a1", "a2"}, plan)

	cost, err := set.Cost(plan)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cost)

	agent.Step(goal)
	agent.Step(goal)
	assert.True(t, agent.Satisfied(goal))
	assert.Equal(t, []string{"a1", "a2"}, rec.calls)
}

// walkerWorld is the flying-versus-walking domain: raw values for distance
// and flight ability are projected through expression converters, and the
// flight route is cheaper than picking a target on foot.
func walkerWorld(t *testing.T) (*ActionSet, *Blackboard) {
	t.Helper()
	schema := walkerSchema()
	require.NoError(t, schema.SetExprConverter(canFly, `value == "can fly"`))
	require.NoError(t, schema.SetExprConverter(isNearby, "value < 10"))

	set := NewActionSet(NewStatePool(schema))
	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))
	require.NoError(t, set.AddAction("pick target", NewAction(1).
		WithPrecondition(isWalking, true).
		WithEffect(SetEffect(hasTarget, true))))
	require.NoError(t, set.AddAction("want to fly", NewAction(0.3).
		WithPrecondition(isWalking, true).
		WithEffect(TransformEffect(canFly, func(any) any { return "can fly" }, true))))
	require.NoError(t, set.AddAction("fly close", NewAction(1).
		WithPrecondition(canFly, true).
		WithEffect(DeltaEffect(isNearby, -45, true))))
	require.NoError(t, set.AddAction("approach", NewAction(1).
		WithPrecondition(hasTarget, true).
		WithEffect(DeltaEffect(isNearby, -45, true))))

	live := NewBlackboard(map[Key]any{
		hasLeg:    true,
		isWalking: false,
		hasTarget: false,
		canFly:    "cannot fly",
		isNearby:  50,
	})
	return set, live
}

func TestAgent_Node(t *testing.T) {
	t.Parallel()

	set, live := walkerWorld(t)
	agent := NewAgent(set, live)
	rec := newRecorder(t, agent)
	goal := Predicates{isNearby: true}

	node := agent.Node(goal)
	tick, children := node()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ticker := bt.NewTickerStopOnFailure(ctx, time.Millisecond, bt.New(bt.Not(tick), children...))
	defer ticker.Stop()

	select {
	case <-ticker.Done():
	case <-ctx.Done():
		t.Fatal("agent did not reach the goal")
	}

	assert.Equal(t, []string{"walk", "want to fly", "fly close"}, rec.calls)
	assert.Equal(t, 5, live.Get(isNearby))
	assert.Equal(t, "can fly", live.Get(canFly))
	assert.Equal(t, false, live.Get(hasTarget))

	status, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, bt.Success, status)
}

func TestAgent_UnreachableGoal(t *testing.T) {
	t.Parallel()

	agent := NewAgent(walkApproachSet(t), NewBlackboard(map[Key]any{hasLeg: true}))
	newRecorder(t, agent)
	goal := Predicates{canFly: true}

	for i := 1; i <= 3; i++ {
		assert.Equal(t, bt.Failure, agent.Step(goal))
		assert.Equal(t, i, agent.Replans())
		assert.Empty(t, agent.Plan())
		assert.Empty(t, agent.Current())
		assert.Nil(t, agent.StatePath())
	}
}

func TestAgent_PartialPlan(t *testing.T) {
	t.Parallel()

	names := []string{"K0", "K1", "K2", "K3", "K4", "K5"}
	set := NewActionSet(NewStatePool(MustSchema(names...)))
	for i := 0; i < len(names)-1; i++ {
		require.NoError(t, set.AddAction(fmt.Sprintf("step%d", i), NewAction(1).
			WithPrecondition(Key(i), true).
			WithEffect(SetEffect(Key(i+1), true))))
	}

	agent := NewAgent(set, NewBlackboard(map[Key]any{Key(0): true}), WithMaxNodes(3))
	newRecorder(t, agent)

	assert.Equal(t, bt.Success, agent.Step(Predicates{Key(5): true}))
	assert.Equal(t, "step0", agent.Current())
	assert.Equal(t, []string{"step1"}, agent.Plan())

	stats := agent.SearchStats()
	assert.True(t, stats.Bounded)
	assert.Equal(t, 3, stats.Explored)
}

func TestAgent_Bindings(t *testing.T) {
	t.Parallel()

	set := walkApproachSet(t)
	agent := NewAgent(set, NewBlackboard(map[Key]any{hasLeg: true}))
	goal := Predicates{isNearby: true}

	assert.ErrorIs(t, agent.SetActionFunc("fly", func() bt.Status { return bt.Success }), ErrUnknownAction)
	assert.ErrorIs(t, agent.SetActionNode("fly", bt.New(func([]bt.Node) (bt.Status, error) {
		return bt.Success, nil
	})), ErrUnknownAction)
	assert.ErrorIs(t, agent.SetActionNode("walk", nil), ErrInvalidAction)
	assert.ErrorIs(t, agent.SetActionFunc("walk", nil), ErrInvalidAction)

	// no behavior bound
	assert.Equal(t, bt.Failure, agent.Step(goal))
	assert.Equal(t, "walk", agent.Current())

	require.NoError(t, agent.SetActionNode("walk", bt.New(func([]bt.Node) (bt.Status, error) {
		return bt.Success, errors.New("leg cramp")
	})))
	assert.Equal(t, bt.Failure, agent.Step(goal))

	require.NoError(t, agent.SetActionNode("walk", bt.New(func([]bt.Node) (bt.Status, error) {
		return bt.Status(42), nil
	})))
	assert.Equal(t, bt.Failure, agent.Step(goal))

	assert.Nil(t, agent.Live().Get(isWalking))
	assert.Equal(t, 3, agent.Replans())
}

func TestAgent_ID(t *testing.T) {
	t.Parallel()

	set := walkApproachSet(t)
	a := NewAgent(set, nil)
	_, err := uuid.Parse(a.ID())
	assert.NoError(t, err)
	assert.NotNil(t, a.Live())

	b := NewAgent(set, nil, WithID("scout-1"), WithLogger(nil))
	assert.Equal(t, "scout-1", b.ID())
	assert.NotEqual(t, a.ID(), NewAgent(set, nil).ID())
}
