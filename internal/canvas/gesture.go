package canvas

import (
	"image"

	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// Gesture is the controller's pointer state. Exactly one is active at a
// time; the implementations are Idle, *Resizing, *Connecting, *Dragging and
// *Marquee.
type Gesture interface {
	Name() string
	origin() *Press
}

// Press is what every non-idle gesture remembers about its pointer-down.
type Press struct {
	At    image.Point
	Node  *graph.Node // nil on empty canvas
	Prior []string    // selection before the press
	Moved bool        // pointer travelled beyond the drag threshold
}

// Idle means no pointer button is held.
type Idle struct{}

func (Idle) Name() string   { return "idle" }
func (Idle) origin() *Press { return nil }

// Resizing drags a node's bottom-right corner.
type Resizing struct {
	Press
	StartSize image.Point
}

func (*Resizing) Name() string     { return "resize" }
func (g *Resizing) origin() *Press { return &g.Press }

// Connecting draws a rubber band from a node's output connector.
type Connecting struct {
	Press
	Pointer image.Point
}

func (*Connecting) Name() string     { return "connect" }
func (g *Connecting) origin() *Press { return &g.Press }

// Dragging moves every node of the selection together.
type Dragging struct {
	Press
	Nodes   []*graph.Node
	Offsets []image.Point // press point minus each node's origin
	Origins []image.Point
}

func (*Dragging) Name() string     { return "drag" }
func (g *Dragging) origin() *Press { return &g.Press }

// Marquee is a rubber-band selection rectangle on empty canvas.
type Marquee struct {
	Press
	End image.Point
}

func (*Marquee) Name() string     { return "marquee" }
func (g *Marquee) origin() *Press { return &g.Press }

// Rect returns the canonical selection rectangle.
func (g *Marquee) Rect() image.Rectangle {
	return image.Rectangle{Min: g.At, Max: g.End}.Canon()
}
