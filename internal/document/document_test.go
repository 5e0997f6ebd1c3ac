package document_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

func sample(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New("intro", "Intro scene")
	d := graph.NewDialogue("d1", 0, 0, "hero", "Where am I?")
	c := graph.NewCondition("c1", 300, 0, "ATTRIBUTE_CHECK")
	a := graph.NewAction("a1", 600, 40, "SET_PLAYER_POS")
	a.Resize(300, 200)
	for _, n := range []*graph.Node{d, c, a} {
		require.NoError(t, g.AddNode(n))
	}
	require.NoError(t, graph.SetParam(c, "attribute_id", "strength"))
	require.NoError(t, graph.SetParam(c, "comparison", ">="))
	require.NoError(t, graph.SetParam(c, "value", "5"))
	require.NoError(t, graph.SetParam(a, "pos_x", 12))
	require.NoError(t, graph.SetParam(a, "loop", true))
	_, err := g.Connect("d1", "c1")
	require.NoError(t, err)
	_, err = g.Connect("c1", "a1")
	require.NoError(t, err)
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sample(t)
	data, err := document.Marshal([]*graph.Graph{g})
	require.NoError(t, err)

	out, report, err := document.Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Equal(t, 3, report.Nodes)
	require.Len(t, out, 1)

	got := out[0]
	assert.Equal(t, "intro", got.ID)
	assert.Equal(t, "Intro scene", got.Name)
	require.Equal(t, g.Len(), got.Len())
	for i, want := range g.Nodes() {
		n := got.Nodes()[i]
		assert.Equal(t, want.ID, n.ID)
		assert.Equal(t, want.Kind(), n.Kind())
		assert.Equal(t, want.Rect(), n.Rect())
		assert.Equal(t, want.Inputs, n.Inputs)
		assert.Equal(t, want.Outputs, n.Outputs)
		assert.Equal(t, want.Payload, n.Payload)
	}
}

func TestMalformedDocument(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":     `[{"id": "g", `,
		"not array":  `{"id": "g"}`,
		"bare value": `42`,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := document.Unmarshal([]byte(doc))
			assert.ErrorIs(t, err, document.ErrMalformedDocument)
		})
	}
}

func TestLegacyParametersMigration(t *testing.T) {
	doc := `[{"id": "g", "name": "", "nodes": [
		{"id": "c1", "node_type": "Condition", "x": 1, "y": 2,
		 "condition_type": "VARIABLE_EQUALS",
		 "parent_id": "x", "children_ids": ["y"],
		 "parameters": {"VarName": "v", "Value": "open"}},
		{"id": "a1", "node_type": "Action", "x": 0, "y": 0,
		 "action_command": "INVENTORY_ADD", "item_id": "modern",
		 "parameters": {"ItemID": "legacy", "Amount": "3", "Loop": "true"}}
	]}]`
	out, report, err := document.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"c1", "a1"}, report.Migrated)

	g := out[0]
	c := g.Node("c1").Payload.(*graph.Condition)
	assert.Equal(t, "v", c.VarName)
	assert.Equal(t, "open", c.Value)

	a := g.Node("a1").Payload.(*graph.Action)
	assert.Equal(t, "modern", a.ItemID, "typed field wins over legacy parameters")
	assert.Equal(t, 3, a.Amount)
	assert.True(t, a.Loop)

	// Missing width/height fall back to the default box.
	assert.Equal(t, graph.DefaultWidth, g.Node("c1").Width)

	again, err := document.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(again), "parameters")
	assert.NotContains(t, string(again), "children_ids")

	out2, report2, err := document.Unmarshal(again)
	require.NoError(t, err)
	assert.Empty(t, report2.Migrated)
	assert.Equal(t, "v", out2[0].Node("c1").Payload.(*graph.Condition).VarName)
}

func TestUnknownNodeTypeRoundTrips(t *testing.T) {
	doc := `[{"id": "g", "name": "n", "nodes": [
		{"id": "cs", "node_type": "Cutscene", "x": 40, "y": 70, "width": 200, "height": 120,
		 "inputs": [], "outputs": [], "clip": "intro.mp4", "duration": 12.5}
	]}]`
	out, report, err := document.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"cs"}, report.Generic)

	n := out[0].Node("cs")
	require.NotNil(t, n)
	assert.Equal(t, graph.KindGeneric, n.Kind())
	assert.Equal(t, "Cutscene", n.TypeName())
	assert.Equal(t, 40, n.X)
	assert.Equal(t, 70, n.Y)

	data, err := document.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"node_type": "Cutscene"`)
	assert.Contains(t, string(data), `"clip": "intro.mp4"`)
	assert.Contains(t, string(data), `"duration": 12.5`)
}

func TestBadRecordsAreSkipped(t *testing.T) {
	doc := `[
		"not a graph",
		{"id": "g", "name": "", "nodes": [
			{"id": "ok", "node_type": "Dialogue", "x": 0, "y": 0, "outputs": ["gone", "dup"]},
			17,
			{"node_type": "Dialogue"},
			{"id": "dup", "node_type": "Action", "x": "far"},
			{"id": "dup", "node_type": "Dialogue", "x": 0, "y": 0},
			{"id": "dup", "node_type": "Dialogue", "x": 5, "y": 5}
		]}
	]`
	out, report, err := document.Unmarshal([]byte(doc))
	require.NoError(t, err)
	require.Len(t, out, 1)
	g := out[0]

	assert.Equal(t, 2, g.Len())
	assert.Len(t, report.Skipped, 5)
	assert.False(t, report.Clean())

	// Connectivity is repaired: dangling output dropped, mirror restored.
	assert.Equal(t, []string{"dup"}, g.Node("ok").Outputs)
	assert.Equal(t, []string{"ok"}, g.Node("dup").Inputs)
	assert.NoError(t, g.Check())
}

func TestFractionalNumbersDecode(t *testing.T) {
	doc := `[{"id": "g", "name": "", "nodes": [
		{"id": "d1", "node_type": "Dialogue", "x": 312.5, "y": 40.25, "width": 263.0, "height": 160,
		 "inputs": [], "outputs": ["c1"], "character_id": "hero", "dialogue_text": "Hi"},
		{"id": "c1", "node_type": "Condition", "x": 0, "y": 0, "inputs": ["d1"], "outputs": [],
		 "condition_type": "HAS_ITEM", "parameters": {"Amount": 3.0, "ItemID": "key"}}
	]}]`
	out, report, err := document.Unmarshal([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Repaired)
	require.Len(t, out, 1)
	g := out[0]
	require.Equal(t, 2, g.Len())

	d := g.Node("d1")
	assert.Equal(t, 313, d.X)
	assert.Equal(t, 40, d.Y)
	assert.Equal(t, 263, d.Width)
	assert.Equal(t, []string{"c1"}, d.Outputs)

	c := g.Node("c1").Payload.(*graph.Condition)
	assert.Equal(t, 3, c.Amount)
	assert.Equal(t, "key", c.ItemID)
	assert.Equal(t, []string{"c1"}, report.Migrated)
}

func TestDuplicateGraphIDIsSkipped(t *testing.T) {
	doc := `[
		{"id": "intro", "name": "first", "nodes": [{"id": "d1", "node_type": "Dialogue", "x": 0, "y": 0}]},
		{"id": "intro", "name": "second", "nodes": [{"id": "d2", "node_type": "Dialogue", "x": 0, "y": 0}]},
		{"id": "shop", "name": "", "nodes": []}
	]`
	out, report, err := document.Unmarshal([]byte(doc))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Name)
	assert.Equal(t, "shop", out[1].ID)
	assert.Equal(t, 2, report.Graphs)
	assert.Equal(t, 1, report.Nodes)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, document.Skip{Graph: "intro", Index: 1, Reason: `graph "intro": duplicate graph id`}, report.Skipped[0])
}

func TestLoadMissingFile(t *testing.T) {
	graphs, report, err := document.LoadFile(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	assert.Empty(t, graphs)
	assert.True(t, report.Missing)
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := document.Dialogue.Path(dir)
	assert.Equal(t, filepath.Join(dir, "Logic", "DialogueGraphs.json"), path)

	require.NoError(t, document.SaveFile(path, []*graph.Graph{sample(t)}))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")

	graphs, report, err := document.LoadFile(path, nil)
	require.NoError(t, err)
	assert.False(t, report.Missing)
	require.Len(t, graphs, 1)
	assert.Equal(t, 3, graphs[0].Len())
}

func TestEncodeIsIndented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, document.Encode(&buf, []*graph.Graph{graph.New("g", "")}))
	assert.Equal(t, "[\n  {\n    \"id\": \"g\",\n    \"name\": \"\",\n    \"nodes\": []\n  }\n]\n", buf.String())
}

func TestParseCollection(t *testing.T) {
	c, err := document.ParseCollection("logic")
	require.NoError(t, err)
	assert.Equal(t, document.Logic, c)
	_, err = document.ParseCollection("quests")
	assert.Error(t, err)
}
