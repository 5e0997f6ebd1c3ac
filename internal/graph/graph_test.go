package graph_test

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// chain builds a -> b -> c plus an unconnected d.
func chain(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("g1", "test")
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, g.AddNode(graph.NewAction(id, i*300, 0, "SET_VARIABLE")))
	}
	mustConnect(t, g, "a", "b")
	mustConnect(t, g, "b", "c")
	return g
}

func mustConnect(t *testing.T, g *graph.Graph, from, to string) {
	t.Helper()
	added, err := g.Connect(from, to)
	require.NoError(t, err)
	require.True(t, added, "%s -> %s", from, to)
}

func assertMirrored(t *testing.T, g *graph.Graph) {
	t.Helper()
	assert.NoError(t, g.Check())
}

func TestAddNode(t *testing.T) {
	g := graph.New("g", "")
	require.NoError(t, g.AddNode(graph.NewDialogue("n1", 10, 20, "hero", "hi")))

	err := g.AddNode(graph.NewDialogue("n1", 0, 0, "", ""))
	assert.ErrorIs(t, err, graph.ErrDuplicateID)
	assert.ErrorIs(t, g.AddNode(nil), graph.ErrInvalidNode)
	assert.ErrorIs(t, g.AddNode(&graph.Node{}), graph.ErrInvalidNode)
	assert.Equal(t, 1, g.Len())

	n := g.Node("n1")
	require.NotNil(t, n)
	assert.Equal(t, graph.KindDialogue, n.Kind())
	assert.Equal(t, image.Rect(10, 20, 250, 180), n.Rect())
	assert.NotNil(t, n.Inputs)
	assert.NotNil(t, n.Outputs)
}

func TestAddNodeWithAdjacency(t *testing.T) {
	g := chain(t)

	t.Run("mirrors known peers", func(t *testing.T) {
		n := graph.NewDialogue("x", 0, 0, "", "")
		n.Inputs = []string{"a", "a"}
		n.Outputs = []string{"c"}
		require.NoError(t, g.AddNode(n))
		assert.Equal(t, []string{"a"}, n.Inputs)
		assert.Contains(t, g.Node("a").Outputs, "x")
		assert.Contains(t, g.Node("c").Inputs, "x")
		require.NoError(t, g.Check())
	})

	t.Run("rejects unknown peer", func(t *testing.T) {
		n := graph.NewDialogue("e", 0, 0, "", "")
		n.Outputs = []string{"ghost"}
		assert.ErrorIs(t, g.AddNode(n), graph.ErrNodeNotFound)
		assert.Nil(t, g.Node("e"))
		require.NoError(t, g.Check())
	})

	t.Run("rejects self reference", func(t *testing.T) {
		n := graph.NewDialogue("f", 0, 0, "", "")
		n.Inputs = []string{"f"}
		assert.ErrorIs(t, g.AddNode(n), graph.ErrSelfLoop)
		assert.Nil(t, g.Node("f"))
	})
}

func TestConnect(t *testing.T) {
	g := chain(t)
	a, b := g.Node("a"), g.Node("b")
	assert.Equal(t, []string{"b"}, a.Outputs)
	assert.Equal(t, []string{"a"}, b.Inputs)
	assert.Equal(t, 2, g.EdgeCount())

	t.Run("duplicate is a no-op", func(t *testing.T) {
		added, err := g.Connect("a", "b")
		require.NoError(t, err)
		assert.False(t, added)
		assert.Equal(t, []string{"b"}, a.Outputs)
	})

	t.Run("self loop rejected", func(t *testing.T) {
		_, err := g.Connect("a", "a")
		assert.ErrorIs(t, err, graph.ErrSelfLoop)
		assert.Empty(t, a.Inputs)
	})

	t.Run("unknown endpoint", func(t *testing.T) {
		_, err := g.Connect("a", "zzz")
		assert.ErrorIs(t, err, graph.ErrNodeNotFound)
		_, err = g.Connect("zzz", "a")
		assert.ErrorIs(t, err, graph.ErrNodeNotFound)
		assert.Equal(t, []string{"b"}, a.Outputs)
	})

	t.Run("cycles are allowed", func(t *testing.T) {
		mustConnect(t, g, "c", "a")
		assertMirrored(t, g)
	})
}

func TestDisconnect(t *testing.T) {
	g := chain(t)
	removed, err := g.Disconnect("a", "b")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, g.Node("a").Outputs)
	assert.Empty(t, g.Node("b").Inputs)

	removed, err = g.Disconnect("a", "b")
	require.NoError(t, err)
	assert.False(t, removed)
	assertMirrored(t, g)
}

func TestRemoveNodeOrphansNeighbours(t *testing.T) {
	g := chain(t)
	require.NoError(t, g.RemoveNode("b"))

	assert.Nil(t, g.Node("b"))
	assert.Empty(t, g.Node("a").Outputs)
	assert.Empty(t, g.Node("c").Inputs)
	// No rewiring from predecessor to successor.
	assert.NotContains(t, g.Node("a").Outputs, "c")
	assertMirrored(t, g)

	assert.ErrorIs(t, g.RemoveNode("b"), graph.ErrNodeNotFound)
}

func TestRemoveNodeKeepsDrawOrder(t *testing.T) {
	g := chain(t)
	require.NoError(t, g.RemoveNode("b"))
	var ids []string
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"a", "c", "d"}, ids)
}

func TestRootNodesAndBounds(t *testing.T) {
	g := chain(t)
	var roots []string
	for _, n := range g.RootNodes() {
		roots = append(roots, n.ID)
	}
	assert.Equal(t, []string{"a", "d"}, roots)

	r, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 900+graph.DefaultWidth, graph.DefaultHeight), r)

	_, ok = graph.New("empty", "").Bounds()
	assert.False(t, ok)
}

func TestResizeClamps(t *testing.T) {
	n := graph.NewCondition("c", 0, 0, "HAS_ITEM")
	n.Resize(10, 10)
	assert.Equal(t, image.Pt(graph.MinWidth, graph.MinHeight), n.Size())
	n.Resize(400, 300)
	assert.Equal(t, image.Pt(400, 300), n.Size())
}

func TestNewNodeGeneric(t *testing.T) {
	n := graph.NewNode("Timer", "t1", 0, 0)
	assert.Equal(t, graph.KindGeneric, n.Kind())
	assert.Equal(t, "Timer", n.TypeName())
	assert.Equal(t, "Action", graph.NewNode(graph.KindAction, "x", 0, 0).TypeName())
}
