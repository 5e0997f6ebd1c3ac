package canvas

import (
	"image"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// Fixed canvas metrics, in canvas units.
const (
	HandleSize    = 10 // resize handle square at a node's bottom-right corner
	HotspotRadius = 5  // connector hotspots extend this far around the connector point
	HeaderHeight  = 25
	CurveOffset   = 50 // horizontal control-point offset of edge curves
)

// Part is the region of a node a point falls on.
type Part int

const (
	PartNone Part = iota
	PartResize
	PartOutput
	PartInput
	PartBody
)

func (p Part) String() string {
	switch p {
	case PartResize:
		return "resize"
	case PartOutput:
		return "output"
	case PartInput:
		return "input"
	case PartBody:
		return "body"
	default:
		return "none"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Node *graph.Node
	Part Part
}

// OutputPoint is the centre of a node's output connector.
func OutputPoint(n *graph.Node) image.Point {
	return image.Pt(n.X+n.Width, n.Y+n.Height/2)
}

// InputPoint is the centre of a node's input connector.
func InputPoint(n *graph.Node) image.Point {
	return image.Pt(n.X, n.Y+n.Height/2)
}

// ResizeHandle is the handle square inside a node's bottom-right corner.
func ResizeHandle(n *graph.Node) image.Rectangle {
	r := n.Rect()
	return image.Rect(r.Max.X-HandleSize, r.Max.Y-HandleSize, r.Max.X, r.Max.Y)
}

// HitTest finds what a press at p lands on. Parts are tried in precedence
// order across all nodes, topmost first for each: a resize handle wins over
// any connector, which wins over any body.
func HitTest(g *graph.Graph, p image.Point) Hit {
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if contains(ResizeHandle(nodes[i]), p) {
			return Hit{Node: nodes[i], Part: PartResize}
		}
	}
	for i := len(nodes) - 1; i >= 0; i-- {
		if near(p, OutputPoint(nodes[i])) {
			return Hit{Node: nodes[i], Part: PartOutput}
		}
	}
	if n := NodeAt(g, p); n != nil {
		return Hit{Node: n, Part: PartBody}
	}
	return Hit{}
}

// NodeAt returns the topmost node whose box contains p, edges included.
func NodeAt(g *graph.Graph, p image.Point) *graph.Node {
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if contains(nodes[i].Rect(), p) {
			return nodes[i]
		}
	}
	return nil
}

// InputAt returns the topmost node other than exclude whose input connector
// hotspot contains p.
func InputAt(g *graph.Graph, p image.Point, exclude *graph.Node) *graph.Node {
	nodes := g.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i] != exclude && near(p, InputPoint(nodes[i])) {
			return nodes[i]
		}
	}
	return nil
}

// contains is Point.In with the max edges included.
func contains(r image.Rectangle, p image.Point) bool {
	return r.Min.X <= p.X && p.X <= r.Max.X && r.Min.Y <= p.Y && p.Y <= r.Max.Y
}

func near(p, c image.Point) bool {
	return abs(p.X-c.X) <= HotspotRadius && abs(p.Y-c.Y) <= HotspotRadius
}

// touches reports whether two canonical rectangles share any point, edges
// included, so a zero-height marquee still selects what it crosses.
func touches(a, b image.Rectangle) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X && a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Snap rounds v to the nearest multiple of grid, halves away from zero.
func Snap(v, grid int) int {
	if grid <= 1 {
		return v
	}
	if v < 0 {
		return -Snap(-v, grid)
	}
	return (v + grid/2) / grid * grid
}
