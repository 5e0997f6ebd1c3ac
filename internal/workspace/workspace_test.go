package workspace_test

import (
	"image"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/canvas"
	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/workspace"
)

func open(t *testing.T, dir string) *workspace.Workspace {
	t.Helper()
	w, err := workspace.Open(dir, workspace.Options{
		Canvas: canvas.Options{GridSnap: true, GridSize: 20},
	})
	require.NoError(t, err)
	return w
}

func TestOpenEmptyProject(t *testing.T) {
	w := open(t, t.TempDir())
	for _, c := range document.Collections {
		assert.Empty(t, w.Graphs(c))
		require.NotNil(t, w.Report(c))
		assert.True(t, w.Report(c).Missing)
	}
	assert.False(t, w.Dirty())

	_, err := w.Graph(document.Logic, "main")
	assert.ErrorIs(t, err, workspace.ErrGraphNotFound)
}

func TestEditSaveAndReopen(t *testing.T) {
	dir := t.TempDir()
	w := open(t, dir)

	_, err := w.NewGraph(document.Logic, "main", "Main logic")
	require.NoError(t, err)
	_, err = w.NewGraph(document.Logic, "main", "again")
	assert.ErrorIs(t, err, workspace.ErrGraphExists)
	assert.True(t, w.Dirty())

	ctl, err := w.Attach(document.Logic, "main", canvas.Options{})
	require.NoError(t, err)
	a, err := ctl.AddNode(graph.KindCondition, image.Pt(13, 27))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 20), a.Pos())
	b, err := ctl.AddNode(graph.KindAction, image.Pt(400, 0))
	require.NoError(t, err)
	_, err = ctl.Graph().Connect(a.ID, b.ID)
	require.NoError(t, err)

	require.NoError(t, w.Save())
	assert.False(t, w.Dirty())
	_, err = os.Stat(document.Dialogue.Path(dir))
	assert.NoError(t, err, "every collection is written")

	again := open(t, dir)
	g, err := again.Graph(document.Logic, "main")
	require.NoError(t, err)
	assert.Equal(t, "Main logic", g.Name)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []string{b.ID}, g.Node(a.ID).Outputs)
	assert.True(t, again.Report(document.Logic).Clean())
}

func TestSaveRefusedDuringGesture(t *testing.T) {
	w := open(t, t.TempDir())
	_, err := w.NewGraph(document.Dialogue, "intro", "")
	require.NoError(t, err)
	ctl, err := w.Attach(document.Dialogue, "intro", canvas.Options{})
	require.NoError(t, err)

	ctl.PointerDown(image.Pt(500, 500), 0)
	require.True(t, w.Busy())
	assert.ErrorIs(t, w.Save(), workspace.ErrGestureInFlight)
	assert.ErrorIs(t, w.Reload(), workspace.ErrGestureInFlight)

	ctl.PointerUp(image.Pt(500, 500), 0)
	assert.False(t, w.Busy())
	assert.NoError(t, w.Save())
}

func TestIDsUniqueAcrossControllers(t *testing.T) {
	w := open(t, t.TempDir())
	_, err := w.NewGraph(document.Logic, "a", "")
	require.NoError(t, err)
	_, err = w.NewGraph(document.Logic, "b", "")
	require.NoError(t, err)
	ca, err := w.Attach(document.Logic, "a", canvas.Options{})
	require.NoError(t, err)
	cb, err := w.Attach(document.Logic, "b", canvas.Options{})
	require.NoError(t, err)

	n1, err := ca.AddNode(graph.KindDialogue, image.Point{})
	require.NoError(t, err)
	n2, err := cb.AddNode(graph.KindDialogue, image.Point{})
	require.NoError(t, err)
	assert.NotEqual(t, n1.ID, n2.ID)
	assert.Equal(t, 2, w.Controllers())
}

func TestRemoveGraphDetachesControllers(t *testing.T) {
	w := open(t, t.TempDir())
	_, err := w.NewGraph(document.Logic, "main", "")
	require.NoError(t, err)
	ctl, err := w.Attach(document.Logic, "main", canvas.Options{})
	require.NoError(t, err)

	require.NoError(t, w.RemoveGraph(document.Logic, "main"))
	assert.Empty(t, w.Graphs(document.Logic))
	assert.Zero(t, w.Controllers())
	assert.False(t, w.Detach(ctl))
	assert.ErrorIs(t, w.RemoveGraph(document.Logic, "main"), workspace.ErrGraphNotFound)
}

func TestReloadDiscardsUnsavedEdits(t *testing.T) {
	w := open(t, t.TempDir())
	_, err := w.NewGraph(document.Logic, "main", "")
	require.NoError(t, err)
	require.NoError(t, w.Save())

	ctl, err := w.Attach(document.Logic, "main", canvas.Options{})
	require.NoError(t, err)
	_, err = ctl.AddNode(graph.KindAction, image.Point{})
	require.NoError(t, err)
	require.True(t, w.Dirty())

	require.NoError(t, w.Reload())
	assert.False(t, w.Dirty())
	assert.Zero(t, w.Controllers())
	g, err := w.Graph(document.Logic, "main")
	require.NoError(t, err)
	assert.Zero(t, g.Len())
}

func TestWatchPicksUpExternalSaves(t *testing.T) {
	dir := t.TempDir()
	w := open(t, dir)
	stop, err := w.Watch()
	require.NoError(t, err)
	defer stop()

	g := graph.New("external", "")
	require.NoError(t, g.AddNode(graph.NewDialogue("d", 0, 0, "hero", "hello")))
	require.NoError(t, document.SaveFile(document.Dialogue.Path(dir), []*graph.Graph{g}))

	assert.Eventually(t, func() bool {
		_, err := w.Graph(document.Dialogue, "external")
		return err == nil
	}, 5*time.Second, 25*time.Millisecond)
}
