package raster_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/advlogic/internal/canvas"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/raster"
)

func TestRenderPNGSizedToBounds(t *testing.T) {
	g := graph.New("g", "")
	require.NoError(t, g.AddNode(graph.NewDialogue("d", 100, 100, "hero", "hi")))
	require.NoError(t, g.AddNode(graph.NewCondition("c", 500, 300, "HAS_ITEM")))
	_, err := g.Connect("d", "c")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, raster.RenderPNG(&buf, g, nil, raster.Options{Margin: 20, Selected: []string{"c"}}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 680, 400), img.Bounds())

	// The margin corner shows the background colour.
	r, gr, b, _ := img.At(2, 2).RGBA()
	assert.InDelta(t, 0.15*0xffff, float64(r), 0x200)
	assert.InDelta(t, 0.15*0xffff, float64(gr), 0x200)
	assert.InDelta(t, 0.15*0xffff, float64(b), 0x200)

	// Inside the dialogue header band: green dominates.
	r, gr, b, _ = img.At(20+220, 20+10).RGBA()
	assert.Greater(t, gr, r)
	assert.Greater(t, gr, b)
}

func TestRenderEmptyGraph(t *testing.T) {
	c, err := raster.RenderGraph(graph.New("g", ""), nil, raster.Options{})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 360), c.Image().Bounds())
}

func TestLargeGraphIsScaledDown(t *testing.T) {
	g := graph.New("g", "")
	require.NoError(t, g.AddNode(graph.NewAction("a", 0, 0, "")))
	require.NoError(t, g.AddNode(graph.NewAction("b", 20000, 0, "")))
	c, err := raster.RenderGraph(g, nil, raster.Options{})
	require.NoError(t, err)
	assert.Equal(t, raster.MaxSide, c.Image().Bounds().Dx())
}

func TestCanvasImplementsSurface(t *testing.T) {
	c, err := raster.NewCanvas(50, 50, image.Pt(-10, -10), 1)
	require.NoError(t, err)
	var s canvas.Surface = c
	s.Clear(canvas.RGB(0, 0, 0))
	s.FillRect(image.Rect(0, 0, 10, 10), canvas.RGB(1, 0, 0))

	r, _, _, _ := c.Image().At(15, 15).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = c.Image().At(5, 5).RGBA()
	assert.Zero(t, r)

	_, err = raster.NewCanvas(0, 10, image.Point{}, 1)
	assert.Error(t, err)
}

func TestRenderAll(t *testing.T) {
	var graphs []*graph.Graph
	for _, id := range []string{"intro", "shop", "ending"} {
		g := graph.New(id, "")
		require.NoError(t, g.AddNode(graph.NewDialogue("d", 0, 0, "", "")))
		graphs = append(graphs, g)
	}
	dir := filepath.Join(t.TempDir(), "out")

	results := raster.RenderAll(context.Background(), graphs, nil, raster.Options{}, dir, 2)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, graphs[i].ID, r.Graph)
		assert.Equal(t, filepath.Join(dir, graphs[i].ID+".png"), r.Path)
		assert.FileExists(t, r.Path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results = raster.RenderAll(ctx, graphs, nil, raster.Options{}, dir, 4)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestRenderAllKeepsFileNamesDistinct(t *testing.T) {
	var graphs []*graph.Graph
	for _, id := range []string{"a/x", "b/x", "intro", "Intro", "", "../up"} {
		graphs = append(graphs, graph.New(id, ""))
	}
	dir := t.TempDir()

	results := raster.RenderAll(context.Background(), graphs, nil, raster.Options{}, dir, 3)
	require.Len(t, results, len(graphs))
	seen := map[string]bool{}
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, dir, filepath.Dir(r.Path), "%q stays inside the output dir", r.Graph)
		assert.False(t, seen[r.Path], "%q reuses %s", r.Graph, r.Path)
		seen[r.Path] = true
		assert.FileExists(t, r.Path)
	}
	assert.Equal(t, filepath.Join(dir, "a%2Fx.png"), results[0].Path)
	assert.Equal(t, filepath.Join(dir, "b%2Fx.png"), results[1].Path)
	assert.Equal(t, filepath.Join(dir, "Intro~2.png"), results[3].Path)
	assert.Equal(t, filepath.Join(dir, "_.png"), results[4].Path)
}
