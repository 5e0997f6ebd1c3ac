// Package raster renders graph frames to PNG images.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/gyaneshwarpardhi/advlogic/internal/canvas"
	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
)

// MaxSide caps either image dimension; larger graphs are scaled down.
const MaxSide = 8192

const fontSize = 12.0

var parsedFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gomono.TTF)
})

// Canvas is a canvas.Surface backed by an in-memory RGBA image. Canvas
// coordinates are translated by -Origin and multiplied by the scale, so a
// graph's bounding box can start anywhere.
type Canvas struct {
	dc     *gg.Context
	origin image.Point
	scale  float64
}

// NewCanvas allocates a w×h image showing canvas coordinates from origin.
func NewCanvas(w, h int, origin image.Point, scale float64) (*Canvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: invalid size %dx%d", w, h)
	}
	if scale <= 0 {
		scale = 1
	}
	f, err := parsedFont()
	if err != nil {
		return nil, fmt.Errorf("raster: parse font: %w", err)
	}
	dc := gg.NewContext(w, h)
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{
		Size:    fontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))
	return &Canvas{dc: dc, origin: origin, scale: scale}, nil
}

func (c *Canvas) pt(p image.Point) (float64, float64) {
	return float64(p.X-c.origin.X) * c.scale, float64(p.Y-c.origin.Y) * c.scale
}

func (c *Canvas) setColor(col canvas.Color) {
	c.dc.SetRGBA(col.R, col.G, col.B, col.A)
}

func (c *Canvas) rect(r image.Rectangle) {
	x, y := c.pt(r.Min)
	c.dc.DrawRectangle(x, y, float64(r.Dx())*c.scale, float64(r.Dy())*c.scale)
}

func (c *Canvas) Clear(col canvas.Color) {
	c.setColor(col)
	c.dc.Clear()
}

func (c *Canvas) FillRect(r image.Rectangle, col canvas.Color) {
	c.rect(r)
	c.setColor(col)
	c.dc.Fill()
}

func (c *Canvas) StrokeRect(r image.Rectangle, col canvas.Color, width float64) {
	c.rect(r)
	c.setColor(col)
	c.dc.SetLineWidth(width * c.scale)
	c.dc.Stroke()
}

func (c *Canvas) Line(from, to image.Point, col canvas.Color, width float64) {
	x1, y1 := c.pt(from)
	x2, y2 := c.pt(to)
	c.dc.DrawLine(x1, y1, x2, y2)
	c.setColor(col)
	c.dc.SetLineWidth(width * c.scale)
	c.dc.Stroke()
}

func (c *Canvas) Curve(p0, p1, p2, p3 image.Point, col canvas.Color, width float64) {
	x0, y0 := c.pt(p0)
	x1, y1 := c.pt(p1)
	x2, y2 := c.pt(p2)
	x3, y3 := c.pt(p3)
	c.dc.MoveTo(x0, y0)
	c.dc.CubicTo(x1, y1, x2, y2, x3, y3)
	c.setColor(col)
	c.dc.SetLineWidth(width * c.scale)
	c.dc.Stroke()
}

func (c *Canvas) Text(at image.Point, s string, col canvas.Color) {
	x, y := c.pt(at)
	c.setColor(col)
	lineHeight := c.dc.FontHeight() * 1.3
	for i, line := range strings.Split(s, "\n") {
		c.dc.DrawStringAnchored(line, x, y+float64(i)*lineHeight, 0, 1)
	}
}

// Image returns the rendered image.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// EncodePNG writes the image as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// Options controls RenderPNG.
type Options struct {
	Margin   int
	Selected []string
	// EmptySize is the image size used for a graph with no nodes.
	EmptySize image.Point
}

// RenderGraph draws g into a new Canvas sized to the graph's bounds plus
// the margin.
func RenderGraph(g *graph.Graph, cat *catalog.Catalog, opts Options) (*Canvas, error) {
	if opts.EmptySize == (image.Point{}) {
		opts.EmptySize = image.Pt(640, 360)
	}
	if cat == nil {
		cat = catalog.Default()
	}
	area, ok := g.Bounds()
	if !ok {
		area = image.Rectangle{Max: opts.EmptySize}
	}
	area = area.Inset(-opts.Margin)

	scale := 1.0
	if side := max(area.Dx(), area.Dy()); side > MaxSide {
		scale = float64(MaxSide) / float64(side)
	}
	w := int(math.Round(float64(area.Dx()) * scale))
	h := int(math.Round(float64(area.Dy()) * scale))
	c, err := NewCanvas(max(w, 1), max(h, 1), area.Min, scale)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(opts.Selected))
	for _, id := range opts.Selected {
		selected[id] = true
	}
	canvas.DrawGraph(c, g, cat, canvas.Frame{
		Selected: func(id string) bool { return selected[id] },
		Gesture:  canvas.Idle{},
		Viewport: area,
	})
	return c, nil
}

// RenderPNG renders g and writes it to w as PNG.
func RenderPNG(w io.Writer, g *graph.Graph, cat *catalog.Catalog, opts Options) error {
	c, err := RenderGraph(g, cat, opts)
	if err != nil {
		return err
	}
	return c.EncodePNG(w)
}
