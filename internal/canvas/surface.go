package canvas

import (
	"fmt"
	"image"
)

// Color is an RGBA colour with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGB returns an opaque colour.
func RGB(r, g, b float64) Color { return Color{R: r, G: g, B: b, A: 1} }

// Surface is the drawing target a frame is rendered onto.
type Surface interface {
	Clear(c Color)
	FillRect(r image.Rectangle, c Color)
	StrokeRect(r image.Rectangle, c Color, width float64)
	Line(from, to image.Point, c Color, width float64)
	// Curve strokes a cubic Bézier from p0 to p3 with control points p1 and p2.
	Curve(p0, p1, p2, p3 image.Point, c Color, width float64)
	// Text draws s with its top-left corner at at. Newlines start new lines.
	Text(at image.Point, s string, c Color)
}

// OpKind names a recorded drawing operation.
type OpKind string

const (
	OpClear      OpKind = "clear"
	OpFillRect   OpKind = "fill_rect"
	OpStrokeRect OpKind = "stroke_rect"
	OpLine       OpKind = "line"
	OpCurve      OpKind = "curve"
	OpText       OpKind = "text"
)

// Op is one recorded drawing operation. Unused fields are zero.
type Op struct {
	Kind   OpKind          `json:"kind"`
	Rect   image.Rectangle `json:"rect,omitempty"`
	Points []image.Point   `json:"points,omitempty"`
	Color  Color           `json:"color"`
	Width  float64         `json:"width,omitempty"`
	Text   string          `json:"text,omitempty"`
}

func (o Op) String() string {
	switch o.Kind {
	case OpFillRect, OpStrokeRect:
		return fmt.Sprintf("%s %v", o.Kind, o.Rect)
	case OpText:
		return fmt.Sprintf("%s %v %q", o.Kind, o.Points, o.Text)
	default:
		return fmt.Sprintf("%s %v", o.Kind, o.Points)
	}
}

// DisplayList is a Surface that records operations for later replay.
type DisplayList struct {
	Ops []Op
}

func (d *DisplayList) Clear(c Color) {
	d.Ops = append(d.Ops, Op{Kind: OpClear, Color: c})
}

func (d *DisplayList) FillRect(r image.Rectangle, c Color) {
	d.Ops = append(d.Ops, Op{Kind: OpFillRect, Rect: r, Color: c})
}

func (d *DisplayList) StrokeRect(r image.Rectangle, c Color, width float64) {
	d.Ops = append(d.Ops, Op{Kind: OpStrokeRect, Rect: r, Color: c, Width: width})
}

func (d *DisplayList) Line(from, to image.Point, c Color, width float64) {
	d.Ops = append(d.Ops, Op{Kind: OpLine, Points: []image.Point{from, to}, Color: c, Width: width})
}

func (d *DisplayList) Curve(p0, p1, p2, p3 image.Point, c Color, width float64) {
	d.Ops = append(d.Ops, Op{Kind: OpCurve, Points: []image.Point{p0, p1, p2, p3}, Color: c, Width: width})
}

func (d *DisplayList) Text(at image.Point, s string, c Color) {
	d.Ops = append(d.Ops, Op{Kind: OpText, Points: []image.Point{at}, Color: c, Text: s})
}

// Replay draws the recorded operations onto s.
func (d *DisplayList) Replay(s Surface) {
	for _, o := range d.Ops {
		switch o.Kind {
		case OpClear:
			s.Clear(o.Color)
		case OpFillRect:
			s.FillRect(o.Rect, o.Color)
		case OpStrokeRect:
			s.StrokeRect(o.Rect, o.Color, o.Width)
		case OpLine:
			s.Line(o.Points[0], o.Points[1], o.Color, o.Width)
		case OpCurve:
			s.Curve(o.Points[0], o.Points[1], o.Points[2], o.Points[3], o.Color, o.Width)
		case OpText:
			s.Text(o.Points[0], o.Text, o.Color)
		}
	}
}

// Filter returns the operations of the given kind.
func (d *DisplayList) Filter(kind OpKind) []Op {
	var out []Op
	for _, o := range d.Ops {
		if o.Kind == kind {
			out = append(out, o)
		}
	}
	return out
}
