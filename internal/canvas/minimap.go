package canvas

import (
	"image"
	"math"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// fitFactor leaves a margin around the graph in the minimap.
const fitFactor = 0.9

// Transform maps canvas coordinates onto a smaller viewport.
type Transform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// Apply maps a canvas rectangle through t.
func (t Transform) Apply(r image.Rectangle) image.Rectangle {
	x0 := float64(r.Min.X)*t.Scale + t.OffsetX
	y0 := float64(r.Min.Y)*t.Scale + t.OffsetY
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x0+float64(r.Dx())*t.Scale)),
		int(math.Round(y0+float64(r.Dy())*t.Scale)),
	)
}

// Fit computes the transform that centres bounds inside a w×h viewport at 90%
// of the largest scale that fits. ok is false when bounds has no area.
func Fit(bounds image.Rectangle, w, h int) (t Transform, ok bool) {
	gw, gh := float64(bounds.Dx()), float64(bounds.Dy())
	if gw <= 0 || gh <= 0 || w <= 0 || h <= 0 {
		return Transform{}, false
	}
	t.Scale = math.Min(float64(w)/gw, float64(h)/gh) * fitFactor
	t.OffsetX = (float64(w)-gw*t.Scale)/2 - float64(bounds.Min.X)*t.Scale
	t.OffsetY = (float64(h)-gh*t.Scale)/2 - float64(bounds.Min.Y)*t.Scale
	return t, true
}

// RenderMinimap draws an overview of every node box of g into a w×h
// viewport. The transform is recomputed from the graph bounds on every call.
func RenderMinimap(s Surface, g *graph.Graph, w, h int) {
	s.Clear(MinimapBack)
	bounds, ok := g.Bounds()
	if !ok {
		return
	}
	t, ok := Fit(bounds, w, h)
	if !ok {
		return
	}
	for _, n := range g.Nodes() {
		s.FillRect(t.Apply(n.Rect()), MinimapNode)
	}
}
