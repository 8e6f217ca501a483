package multigraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNode(t *testing.T) {
	t.Parallel()

	g := New[string, string]()
	assert.True(t, g.AddNode("a"))
	assert.False(t, g.AddNode("a"))
	assert.True(t, g.HasNode("a"))
	assert.False(t, g.HasNode("b"))
	assert.Equal(t, 1, g.NodeCount())
}

func TestGraph_AddEdgeRequiresMembers(t *testing.T) {
	t.Parallel()

	g := New[string, string]()
	g.AddNode("a")

	assert.False(t, g.AddEdge("a", "b", "x"))
	assert.False(t, g.AddEdge("b", "a", "x"))
	assert.Nil(t, g.FindEdge("a", "b"))
	assert.Empty(t, g.Neighbors("a"))
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_AddEdgeIdempotent(t *testing.T) {
	t.Parallel()

	g := New[string, string]()
	g.AddNode("a")
	g.AddNode("b")

	require.True(t, g.AddEdge("a", "b", "x"))
	assert.False(t, g.AddEdge("a", "b", "x"))
	assert.Equal(t, []string{"x"}, g.FindEdge("a", "b"))
	assert.Equal(t, []string{"b"}, g.Neighbors("a"))
}

func TestGraph_ParallelLabels(t *testing.T) {
	t.Parallel()

	g := New[int, string]()
	g.AddNode(1)
	g.AddNode(2)
	g.AddNode(3)
	g.AddEdge(1, 2, "walk")
	g.AddEdge(1, 2, "run")
	g.AddEdge(1, 3, "fly")

	assert.Equal(t, []string{"walk", "run"}, g.FindEdge(1, 2))
	// one neighbor entry per label
	assert.Equal(t, []int{2, 2, 3}, g.Neighbors(1))
	// labels reported once each
	assert.Equal(t, []string{"walk", "run", "fly"}, g.ConnectedEdges(1))
	assert.Empty(t, g.ConnectedEdges(3))
	assert.Equal(t, 3, g.EdgeCount())
}

func TestGraph_RemoveEdge(t *testing.T) {
	t.Parallel()

	g := New[int, string]()
	g.AddNode(1)
	g.AddNode(2)
	g.AddEdge(1, 2, "walk")
	g.AddEdge(1, 2, "run")

	assert.True(t, g.RemoveEdge(1, 2, "walk"))
	assert.False(t, g.RemoveEdge(1, 2, "walk"))
	assert.Equal(t, []string{"run"}, g.FindEdge(1, 2))
	assert.Equal(t, []int{2}, g.Neighbors(1))

	assert.True(t, g.RemoveEdge(1, 2, "run"))
	assert.Nil(t, g.FindEdge(1, 2))
	assert.Empty(t, g.Neighbors(1))
}

func TestGraph_RemoveEdgeList(t *testing.T) {
	t.Parallel()

	g := New[int, string]()
	g.AddNode(1)
	g.AddNode(2)
	g.AddEdge(1, 2, "walk")
	g.AddEdge(1, 2, "run")

	assert.True(t, g.RemoveEdgeList(1, 2))
	assert.False(t, g.RemoveEdgeList(1, 2))
	assert.Empty(t, g.Neighbors(1))
}

func TestGraph_RemoveNode(t *testing.T) {
	t.Parallel()

	g := New[int, string]()
	for i := 1; i <= 3; i++ {
		g.AddNode(i)
	}
	g.AddEdge(1, 2, "a")
	g.AddEdge(2, 3, "b")
	g.AddEdge(1, 3, "c")

	require.True(t, g.RemoveNode(2))
	assert.False(t, g.RemoveNode(2))
	assert.Equal(t, []int{1, 3}, g.Nodes())
	assert.Nil(t, g.FindEdge(1, 2))
	assert.Nil(t, g.FindEdge(2, 3))
	assert.Equal(t, []int{3}, g.Neighbors(1))
	assert.Equal(t, 1, g.EdgeCount())
}
