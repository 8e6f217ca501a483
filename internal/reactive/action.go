package reactive

import (
	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"

	"github.com/joeycumines/go-goap/internal/goap"
)

// Condition requires a predicate key to hold a boolean value.
type Condition struct {
	key   goap.Key
	value bool
}

var _ pabtpkg.Condition = Condition{}

// NewCondition returns the condition key == value.
func NewCondition(key goap.Key, value bool) Condition {
	return Condition{key: key, value: value}
}

// Key implements pabtpkg.Condition.
func (c Condition) Key() any { return c.key }

// Match implements pabtpkg.Condition.
func (c Condition) Match(value any) bool {
	b, ok := value.(bool)
	return ok && b == c.value
}

// Effect is the planning outcome of a GOAP effect.
type Effect struct {
	key   goap.Key
	value bool
}

var _ pabtpkg.Effect = Effect{}

// Key implements pabtpkg.Effect.
func (e Effect) Key() any { return e.key }

// Value implements pabtpkg.Effect.
func (e Effect) Value() any { return e.value }

// Action is a GOAP action exposed as a pabtpkg.IAction.
type Action struct {
	Name       string
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
	node       bt.Node
}

var _ pabtpkg.IAction = (*Action)(nil)

// Conditions implements pabtpkg.IAction.
func (a *Action) Conditions() []pabtpkg.IConditions { return a.conditions }

// Effects implements pabtpkg.IAction.
func (a *Action) Effects() pabtpkg.Effects { return a.effects }

// Node implements pabtpkg.IAction.
func (a *Action) Node() bt.Node { return a.node }
