package graph_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

func TestSequentialIDsNeverReused(t *testing.T) {
	g := graph.New("g", "")
	require.NoError(t, g.AddNode(graph.NewDialogue("node_4", 0, 0, "", "")))
	require.NoError(t, g.AddNode(graph.NewDialogue("intro", 0, 0, "", "")))

	gen := graph.NewIDGenerator(graph.IDSequential, "")
	gen.Observe(g)

	id := gen.Next(g)
	assert.Equal(t, "node_5", id)
	require.NoError(t, g.AddNode(graph.NewDialogue(id, 0, 0, "", "")))
	require.NoError(t, g.RemoveNode(id))

	// Deleting the highest node does not free its id.
	assert.Equal(t, "node_6", gen.Next(g))
}

func TestSequentialSkipsTakenIDs(t *testing.T) {
	g := graph.New("g", "")
	gen := graph.NewIDGenerator(graph.IDSequential, "n")
	first := gen.Next(g)
	require.NoError(t, g.AddNode(graph.NewDialogue("n2", 0, 0, "", "")))
	assert.Equal(t, "n1", first)
	assert.Equal(t, "n3", gen.Next(g))
}

func TestUUIDIDs(t *testing.T) {
	gen := graph.NewIDGenerator(graph.IDUUID, "node_")
	a, b := gen.Next(nil), gen.Next(nil)
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(strings.TrimPrefix(a, "node_"))
	assert.NoError(t, err)
}
