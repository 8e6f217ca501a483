package goap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionSet_AddAction(t *testing.T) {
	t.Parallel()

	pool := NewStatePool(walkerSchema())
	set := NewActionSet(pool)

	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))

	from := pool.GetOrCreateState(Predicates{hasLeg: true})
	to := pool.GetOrCreateState(Predicates{isWalking: true})

	g := set.Graph()
	assert.True(t, g.HasNode(from))
	assert.True(t, g.HasNode(to))
	assert.Equal(t, []string{"walk"}, g.FindEdge(from, to))
	assert.Equal(t, []*WorldState{to}, from.Neighbors())

	cost, ok := from.Cost(to)
	require.True(t, ok)
	assert.Equal(t, 1.0, cost)

	name, ok := set.TransitionAction(from, to)
	require.True(t, ok)
	assert.Equal(t, "walk", name)
	_, ok = set.TransitionAction(to, from)
	assert.False(t, ok)

	a, ok := set.Action("walk")
	require.True(t, ok)
	assert.Equal(t, 1.0, a.Cost())
	assert.True(t, set.HasAction("walk"))
	assert.False(t, set.HasAction("fly"))
	_, ok = set.Action("fly")
	assert.False(t, ok)

	gotFrom, gotTo, ok := set.Endpoints("walk")
	require.True(t, ok)
	assert.Same(t, from, gotFrom)
	assert.Same(t, to, gotTo)
}

func TestActionSet_AddAction_Invalid(t *testing.T) {
	t.Parallel()

	set := NewActionSet(NewStatePool(walkerSchema()))
	assert.ErrorIs(t, set.AddAction("", NewAction(1)), ErrInvalidAction)
	assert.ErrorIs(t, set.AddAction("noop", nil), ErrInvalidAction)
	assert.ErrorIs(t, set.AddAction("free", NewAction(0)), ErrInvalidCost)
	assert.ErrorIs(t, set.AddAction("pricey", NewAction(2)), ErrInvalidCost)
	assert.Equal(t, 0, set.Len())
	assert.Equal(t, 0, set.Graph().NodeCount())
}

func TestActionSet_ParallelActions(t *testing.T) {
	t.Parallel()

	pool := NewStatePool(walkerSchema())
	set := NewActionSet(pool)

	for _, tc := range []struct {
		name string
		cost float64
	}{
		{"stroll", 0.8},
		{"march", 0.4},
		{"hike", 0.4},
	} {
		require.NoError(t, set.AddAction(tc.name, NewAction(tc.cost).
			WithPrecondition(hasLeg, true).
			WithEffect(SetEffect(isWalking, true))))
	}

	from := pool.GetOrCreateState(Predicates{hasLeg: true})
	to := pool.GetOrCreateState(Predicates{isWalking: true})

	assert.Equal(t, []string{"stroll", "march", "hike"}, set.Graph().FindEdge(from, to))
	cost, _ := from.Cost(to)
	assert.Equal(t, 0.4, cost)

	name, ok := set.TransitionAction(from, to)
	require.True(t, ok)
	assert.Equal(t, "march", name)
	assert.Equal(t, []string{"hike", "march", "stroll"}, set.Names())
}

func TestActionSet_Overwrite(t *testing.T) {
	t.Parallel()

	pool := NewStatePool(walkerSchema())
	set := NewActionSet(pool)

	require.NoError(t, set.AddAction("move", NewAction(0.5).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))
	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))

	leg := pool.GetOrCreateState(Predicates{hasLeg: true})
	walking := pool.GetOrCreateState(Predicates{isWalking: true})
	flying := pool.GetOrCreateState(Predicates{canFly: true})

	// re-registering "move" elsewhere drops its old edge and leaves "walk"
	require.NoError(t, set.AddAction("move", NewAction(0.3).
		WithPrecondition(isWalking, true).
		WithEffect(SetEffect(canFly, true))))

	assert.Equal(t, []string{"walk"}, set.Graph().FindEdge(leg, walking))
	cost, _ := leg.Cost(walking)
	assert.Equal(t, 1.0, cost)
	assert.Equal(t, []string{"move"}, set.Graph().FindEdge(walking, flying))
	assert.Equal(t, 2, set.Len())

	// re-registering "walk" elsewhere drops the last edge between the pair
	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(canFly, true).
		WithEffect(SetEffect(isNearby, true))))
	assert.Empty(t, set.Graph().FindEdge(leg, walking))
	assert.Empty(t, leg.Neighbors())
	_, ok := leg.Cost(walking)
	assert.False(t, ok)
}

func TestActionSet_PlanFor(t *testing.T) {
	t.Parallel()

	pool := NewStatePool(walkerSchema())
	set := NewActionSet(pool)
	require.NoError(t, set.AddAction("walk", NewAction(1).
		WithPrecondition(hasLeg, true).
		WithEffect(SetEffect(isWalking, true))))
	require.NoError(t, set.AddAction("fly", NewAction(0.3).
		WithPrecondition(isWalking, true).
		WithEffect(SetEffect(canFly, true))))

	leg := pool.GetOrCreateState(Predicates{hasLeg: true})
	walking := pool.GetOrCreateState(Predicates{isWalking: true})
	flying := pool.GetOrCreateState(Predicates{canFly: true})

	plan, err := set.PlanFor([]*WorldState{leg, walking, flying})
	require.NoError(t, err)
	assert.Equal(t, []string{"walk", "fly"}, plan)

	plan, err = set.PlanFor([]*WorldState{leg})
	require.NoError(t, err)
	assert.Empty(t, plan)

	_, err = set.PlanFor([]*WorldState{leg, flying})
	assert.ErrorIs(t, err, ErrUnknownAction)

	cost, err := set.Cost([]string{"walk", "fly"})
	require.NoError(t, err)
	assert.InDelta(t, 1.3, cost, 1e-9)
	_, err = set.Cost([]string{"swim"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
