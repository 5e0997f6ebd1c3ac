// Package canvas turns pointer and keyboard events on a node-graph canvas
// into graph mutations and describes each frame as drawing operations.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"

	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

// ErrInvalidParent is returned by AddChild when the parent cannot take a child
// of the requested kind.
var ErrInvalidParent = errors.New("invalid parent for child node")

// childGap is the horizontal space AddChild leaves between parent and child.
const childGap = 60

// Modifiers is the set of modifier keys held during a pointer event.
type Modifiers uint8

// ModAdditive turns click-select into a toggle and adds a pressed node to the
// selection instead of replacing it (Shift in most hosts).
const ModAdditive Modifiers = 1 << iota

// Key is a keyboard key the controller handles.
type Key int

const (
	KeyDelete Key = iota + 1
	KeyEscape
)

// Menu is the context menu a secondary click asks the host to show.
type Menu int

const (
	MenuNone Menu = iota
	MenuNode
	MenuCanvas
)

// Project receives the unsaved-changes flag.
type Project interface {
	SetDirty(bool)
}

// Invalidator schedules a redraw of the canvas.
type Invalidator interface {
	QueueDraw()
}

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	Project     Project
	Invalidator Invalidator
	Logger      *slog.Logger
	Catalog     *catalog.Catalog
	IDs         *graph.IDGenerator

	GridSnap      bool
	GridSize      int // default 20
	DragThreshold int // default 3
	DefaultWidth  int
	DefaultHeight int

	// OnSelect is called after the selection changes.
	OnSelect func(ids []string)
}

// Controller is the interaction state for one graph. It is driven from a
// single goroutine; every callback runs to completion and requests a redraw
// before returning when it changed anything visible.
type Controller struct {
	g      *graph.Graph
	opts   Options
	logger *slog.Logger

	state     Gesture
	selection []string
}

// New attaches a controller to g.
func New(g *graph.Graph, opts Options) *Controller {
	if opts.GridSize <= 0 {
		opts.GridSize = 20
	}
	if opts.DragThreshold <= 0 {
		opts.DragThreshold = 3
	}
	if opts.DefaultWidth <= 0 {
		opts.DefaultWidth = graph.DefaultWidth
	}
	if opts.DefaultHeight <= 0 {
		opts.DefaultHeight = graph.DefaultHeight
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.IDs == nil {
		opts.IDs = graph.NewIDGenerator(graph.IDSequential, "")
	}
	opts.IDs.Observe(g)
	return &Controller{
		g:      g,
		opts:   opts,
		logger: logging.OrNop(opts.Logger).With("graph", g.ID),
		state:  Idle{},
	}
}

// Graph returns the graph the controller edits.
func (c *Controller) Graph() *graph.Graph { return c.g }

// State returns the current gesture.
func (c *Controller) State() Gesture { return c.state }

// Busy reports whether a gesture is in progress. Hosts must not save or
// reload the graph while it is.
func (c *Controller) Busy() bool {
	_, idle := c.state.(Idle)
	return !idle
}

// Selection returns the selected node ids in selection order.
func (c *Controller) Selection() []string { return slices.Clone(c.selection) }

// Selected reports whether id is selected.
func (c *Controller) Selected(id string) bool { return slices.Contains(c.selection, id) }

// Select replaces the selection. Unknown ids are ignored.
func (c *Controller) Select(ids ...string) {
	sel := make([]string, 0, len(ids))
	for _, id := range ids {
		if c.g.Node(id) != nil && !slices.Contains(sel, id) {
			sel = append(sel, id)
		}
	}
	c.setSelection(sel)
	c.redraw()
}

// PointerDown starts a gesture at p.
func (c *Controller) PointerDown(p image.Point, mods Modifiers) {
	if c.Busy() {
		return
	}
	hit := HitTest(c.g, p)
	pr := Press{At: p, Node: hit.Node, Prior: c.Selection()}

	switch hit.Part {
	case PartResize:
		c.state = &Resizing{Press: pr, StartSize: hit.Node.Size()}
	case PartOutput:
		c.state = &Connecting{Press: pr, Pointer: p}
	case PartBody:
		switch {
		case c.Selected(hit.Node.ID):
		case mods&ModAdditive != 0:
			c.setSelection(append(c.Selection(), hit.Node.ID))
		default:
			c.setSelection([]string{hit.Node.ID})
		}
		d := &Dragging{Press: pr}
		for _, n := range c.g.Nodes() {
			if !c.Selected(n.ID) {
				continue
			}
			d.Nodes = append(d.Nodes, n)
			d.Offsets = append(d.Offsets, p.Sub(n.Pos()))
			d.Origins = append(d.Origins, n.Pos())
		}
		c.state = d
	default:
		c.state = &Marquee{Press: pr, End: p}
	}
	c.logger.Debug("gesture started", "gesture", c.state.Name(), "at", p)
	c.redraw()
}

// PointerMove updates the gesture in progress.
func (c *Controller) PointerMove(p image.Point) {
	pr := c.state.origin()
	if pr == nil {
		return
	}
	if !pr.Moved {
		d := p.Sub(pr.At)
		pr.Moved = abs(d.X) > c.opts.DragThreshold || abs(d.Y) > c.opts.DragThreshold
	}

	switch s := c.state.(type) {
	case *Resizing:
		if !pr.Moved {
			return
		}
		d := p.Sub(s.At)
		s.Node.Resize(s.StartSize.X+d.X, s.StartSize.Y+d.Y)
	case *Connecting:
		s.Pointer = p
	case *Dragging:
		if !pr.Moved {
			return
		}
		for i, n := range s.Nodes {
			pos := p.Sub(s.Offsets[i])
			if c.opts.GridSnap {
				pos = image.Pt(Snap(pos.X, c.opts.GridSize), Snap(pos.Y, c.opts.GridSize))
			}
			n.X, n.Y = pos.X, pos.Y
		}
	case *Marquee:
		s.End = p
	}
	c.redraw()
}

// PointerUp finishes the gesture. A press that never moved beyond the drag
// threshold is a click: the selection from before the press is restored and
// then click-select applies.
func (c *Controller) PointerUp(p image.Point, mods Modifiers) {
	if !c.Busy() {
		return
	}
	c.PointerMove(p)
	state := c.state
	pr := state.origin()
	c.state = Idle{}

	if !pr.Moved {
		c.clickSelect(pr.Prior, pr.Node, mods)
		metrics.Gestures.WithLabelValues(state.Name(), "click").Inc()
		c.redraw()
		return
	}

	outcome := "committed"
	switch s := state.(type) {
	case *Resizing:
		if s.Node.Size() != s.StartSize {
			c.markDirty()
		}
	case *Dragging:
		for i, n := range s.Nodes {
			if n.Pos() != s.Origins[i] {
				c.markDirty()
				break
			}
		}
	case *Connecting:
		outcome = c.finishConnect(s, p)
	case *Marquee:
		rect := s.Rect()
		var sel []string
		for _, n := range c.g.Nodes() {
			if touches(rect, n.Rect()) {
				sel = append(sel, n.ID)
			}
		}
		c.setSelection(sel)
	}
	metrics.Gestures.WithLabelValues(state.Name(), outcome).Inc()
	c.logger.Debug("gesture finished", "gesture", state.Name(), "outcome", outcome)
	c.redraw()
}

func (c *Controller) finishConnect(s *Connecting, p image.Point) string {
	target := InputAt(c.g, p, s.Node)
	if target == nil {
		return "abandoned"
	}
	added, err := c.g.Connect(s.Node.ID, target.ID)
	if err != nil {
		c.logger.Debug("connect rejected", "from", s.Node.ID, "to", target.ID, "error", err)
		return "abandoned"
	}
	if added {
		c.markDirty()
	}
	return "committed"
}

// clickSelect applies a click on n (nil for empty canvas) to the selection
// base and installs the result.
func (c *Controller) clickSelect(base []string, n *graph.Node, mods Modifiers) {
	switch {
	case n == nil:
		c.setSelection(nil)
	case mods&ModAdditive == 0:
		c.setSelection([]string{n.ID})
	case slices.Contains(base, n.ID):
		c.setSelection(slices.DeleteFunc(slices.Clone(base), func(id string) bool { return id == n.ID }))
	default:
		c.setSelection(append(slices.Clone(base), n.ID))
	}
}

// KeyPress handles Delete (remove the selection) and Escape (cancel the
// gesture in progress).
func (c *Controller) KeyPress(k Key) {
	switch k {
	case KeyEscape:
		c.Cancel()
	case KeyDelete:
		if c.Busy() {
			return
		}
		c.DeleteSelection()
	}
}

// Cancel abandons the gesture in progress, restoring the geometry and
// selection from before the press.
func (c *Controller) Cancel() {
	pr := c.state.origin()
	if pr == nil {
		return
	}
	switch s := c.state.(type) {
	case *Resizing:
		s.Node.Width, s.Node.Height = s.StartSize.X, s.StartSize.Y
	case *Dragging:
		for i, n := range s.Nodes {
			n.X, n.Y = s.Origins[i].X, s.Origins[i].Y
		}
	}
	metrics.Gestures.WithLabelValues(c.state.Name(), "cancelled").Inc()
	c.state = Idle{}
	c.setSelection(pr.Prior)
	c.redraw()
}

// DeleteSelection removes every selected node as one edit: the project is
// marked dirty once and one redraw is requested. It returns the number of
// nodes removed.
func (c *Controller) DeleteSelection() int {
	if len(c.selection) == 0 {
		return 0
	}
	removed := 0
	for _, id := range c.selection {
		if err := c.g.RemoveNode(id); err != nil {
			c.logger.Debug("delete skipped", "node", id, "error", err)
			continue
		}
		removed++
	}
	c.setSelection(nil)
	if removed > 0 {
		c.markDirty()
	}
	c.redraw()
	return removed
}

// SecondaryClick selects the node under p, if any, and reports which context
// menu the host should open.
func (c *Controller) SecondaryClick(p image.Point) (Menu, *graph.Node) {
	if c.Busy() {
		return MenuNone, nil
	}
	n := NodeAt(c.g, p)
	if n == nil {
		return MenuCanvas, nil
	}
	c.setSelection([]string{n.ID})
	c.redraw()
	return MenuNode, n
}

// AddNode creates a node of the given kind with its top-left corner at at,
// selects it and marks the project dirty.
func (c *Controller) AddNode(kind graph.Kind, at image.Point) (*graph.Node, error) {
	return c.create(kind, at, nil)
}

// AddChild creates a node of the given kind to the right of parentID, already
// connected from it, and selects it. Action children only go under Dialogue
// nodes.
func (c *Controller) AddChild(kind graph.Kind, parentID string) (*graph.Node, error) {
	parent := c.g.Node(parentID)
	if parent == nil {
		return nil, fmt.Errorf("add child: parent %q: %w", parentID, graph.ErrNodeNotFound)
	}
	if kind == graph.KindAction && parent.Kind() != graph.KindDialogue {
		return nil, fmt.Errorf("add child: %s under %s %q: %w", kind, parent.Kind(), parentID, ErrInvalidParent)
	}
	at := image.Pt(parent.X+parent.Width+childGap, parent.Y)
	return c.create(kind, at, []string{parentID})
}

func (c *Controller) create(kind graph.Kind, at image.Point, inputs []string) (*graph.Node, error) {
	if c.opts.GridSnap {
		at = image.Pt(Snap(at.X, c.opts.GridSize), Snap(at.Y, c.opts.GridSize))
	}
	n := graph.NewNode(kind, c.opts.IDs.Next(c.g), at.X, at.Y)
	n.Width, n.Height = c.opts.DefaultWidth, c.opts.DefaultHeight
	n.Inputs = inputs
	if err := c.g.AddNode(n); err != nil {
		return nil, err
	}
	c.setSelection([]string{n.ID})
	c.markDirty()
	c.redraw()
	return n, nil
}

func (c *Controller) setSelection(ids []string) {
	if slices.Equal(ids, c.selection) {
		return
	}
	c.selection = ids
	if c.opts.OnSelect != nil {
		c.opts.OnSelect(c.Selection())
	}
}

func (c *Controller) markDirty() {
	if c.opts.Project != nil {
		c.opts.Project.SetDirty(true)
	}
}

func (c *Controller) redraw() {
	if c.opts.Invalidator != nil {
		c.opts.Invalidator.QueueDraw()
	}
}
