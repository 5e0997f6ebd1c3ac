package canvas

import (
	"image"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// Palette.
var (
	Background   = RGB(0.15, 0.15, 0.15)
	NodeBody     = RGB(0.2, 0.2, 0.2)
	TitleText    = RGB(1, 1, 1)
	BodyText     = RGB(0.9, 0.9, 0.9)
	HintText     = RGB(0.7, 0.7, 0.7)
	Selection    = RGB(1, 1, 0)
	Connector    = RGB(0.8, 0.8, 0.2)
	Handle       = RGB(0.5, 0.5, 0.5)
	MarqueeFill  = Color{R: 0.2, G: 0.5, B: 1, A: 0.3}
	MinimapBack  = RGB(0.1, 0.1, 0.1)
	MinimapNode  = RGB(0.5, 0.5, 0.5)
	headerColors = map[graph.Kind]Color{
		graph.KindDialogue:  RGB(0.4, 0.6, 0.4),
		graph.KindCondition: RGB(0.6, 0.4, 0.4),
		graph.KindAction:    RGB(0.4, 0.4, 0.6),
		graph.KindGeneric:   RGB(0.5, 0.5, 0.5),
	}
)

// EmptyHint is drawn on a canvas with no nodes.
const EmptyHint = "No nodes yet. Right-click or use the Tool Palette to add one."

// HeaderColor returns the header band colour for a node kind.
func HeaderColor(k graph.Kind) Color {
	if c, ok := headerColors[k]; ok {
		return c
	}
	return headerColors[graph.KindGeneric]
}

// Frame describes what to draw besides the graph itself.
type Frame struct {
	Selected func(id string) bool
	Gesture  Gesture
	// Viewport is the visible area; only its size is used, to place the
	// empty-graph hint.
	Viewport image.Rectangle
}

// Render draws the controller's graph, selection and gesture feedback.
func (c *Controller) Render(s Surface, viewport image.Rectangle) {
	DrawGraph(s, c.g, c.opts.Catalog, Frame{Selected: c.Selected, Gesture: c.state, Viewport: viewport})
}

// DrawGraph draws g onto s. It is the whole renderer: the controller and the
// raster exporter both call it.
func DrawGraph(s Surface, g *graph.Graph, cat *catalog.Catalog, f Frame) {
	s.Clear(Background)
	nodes := g.Nodes()
	if len(nodes) == 0 {
		at := image.Pt(f.Viewport.Min.X+20, f.Viewport.Min.Y+f.Viewport.Dy()/2-50)
		s.Text(at, EmptyHint, HintText)
	}
	for _, n := range nodes {
		drawNode(s, n, cat, f.Selected != nil && f.Selected(n.ID))
		for _, id := range n.Outputs {
			if to := g.Node(id); to != nil {
				drawEdge(s, n, to)
			}
		}
	}

	switch st := f.Gesture.(type) {
	case *Connecting:
		s.Line(OutputPoint(st.Node), st.Pointer, Connector, 2)
	case *Marquee:
		s.FillRect(st.Rect(), MarqueeFill)
	}
}

func drawNode(s Surface, n *graph.Node, cat *catalog.Catalog, selected bool) {
	r := n.Rect()
	s.FillRect(r, NodeBody)
	s.FillRect(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+HeaderHeight), HeaderColor(n.Kind()))
	if selected {
		s.StrokeRect(r.Inset(-2), Selection, 3)
	}
	s.Text(r.Min.Add(image.Pt(10, 5)), n.TypeName()+": "+n.ID, TitleText)
	s.Text(r.Min.Add(image.Pt(10, 35)), graph.Summary(n, cat), BodyText)

	half := image.Pt(HotspotRadius, HotspotRadius)
	in, out := InputPoint(n), OutputPoint(n)
	s.FillRect(image.Rectangle{Min: in.Sub(half), Max: in.Add(half)}, Connector)
	s.FillRect(image.Rectangle{Min: out.Sub(half), Max: out.Add(half)}, Connector)
	s.FillRect(ResizeHandle(n), Handle)
}

func drawEdge(s Surface, from, to *graph.Node) {
	p0, p3 := OutputPoint(from), InputPoint(to)
	s.Curve(p0, p0.Add(image.Pt(CurveOffset, 0)), p3.Sub(image.Pt(CurveOffset, 0)), p3, Connector, 2)
}
