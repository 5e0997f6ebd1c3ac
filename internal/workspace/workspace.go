// Package workspace holds the graph collections of one project directory and
// the canvas controllers editing them.
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/gyaneshwarpardhi/advlogic/internal/canvas"
	"github.com/gyaneshwarpardhi/advlogic/internal/catalog"
	"github.com/gyaneshwarpardhi/advlogic/internal/document"
	"github.com/gyaneshwarpardhi/advlogic/internal/graph"
	"github.com/gyaneshwarpardhi/advlogic/internal/logging"
	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

var (
	// ErrGestureInFlight is returned by Save and Reload while an attached
	// controller is in the middle of a pointer gesture.
	ErrGestureInFlight = errors.New("gesture in flight")
	// ErrGraphNotFound is returned when a collection has no graph with the id.
	ErrGraphNotFound = errors.New("graph not found")
	// ErrGraphExists is returned by NewGraph when the id is taken.
	ErrGraphExists = errors.New("graph already exists")
)

// Options configures a Workspace. Zero values select the defaults.
type Options struct {
	Logger *slog.Logger
	// Catalog supplies the command catalog; nil uses the built-in table.
	Catalog *catalog.Loader
	// IDs is shared by every controller so ids stay unique per session.
	IDs *graph.IDGenerator
	// Canvas is the template for controllers created by Attach.
	Canvas canvas.Options
}

// snapshot is one immutable view of every collection. Mutations build a new
// snapshot and swap it in; readers never see a half-loaded project.
type snapshot struct {
	graphs  map[document.Collection][]*graph.Graph
	reports map[document.Collection]*document.Report
}

// Workspace is the session for one project directory. Collection reads are
// safe from any goroutine. Graph contents are mutated only by attached
// controllers, from the goroutine driving them.
type Workspace struct {
	dir    string
	opts   Options
	logger *slog.Logger

	state atomic.Pointer[snapshot]
	dirty atomic.Bool

	mu          sync.RWMutex // serialises mutations of state and controllers
	controllers map[*canvas.Controller]struct{}
}

// Open loads every collection of projectDir. Missing documents load as empty
// collections.
func Open(projectDir string, opts Options) (*Workspace, error) {
	if opts.IDs == nil {
		opts.IDs = graph.NewIDGenerator(graph.IDSequential, "")
	}
	w := &Workspace{
		dir:         projectDir,
		opts:        opts,
		logger:      logging.OrNop(opts.Logger).With("project", projectDir),
		controllers: make(map[*canvas.Controller]struct{}),
	}
	snap, err := w.load()
	if err != nil {
		return nil, err
	}
	w.state.Store(snap)
	w.publishGauges(snap)
	return w, nil
}

// Dir returns the project directory.
func (w *Workspace) Dir() string { return w.dir }

// Catalog returns the current command catalog.
func (w *Workspace) Catalog() *catalog.Catalog {
	if w.opts.Catalog == nil {
		return catalog.Default()
	}
	return w.opts.Catalog.Catalog()
}

// Graphs returns the graphs of a collection in document order.
func (w *Workspace) Graphs(c document.Collection) []*graph.Graph {
	return slices.Clone(w.state.Load().graphs[c])
}

// Report returns the load report of a collection, or nil before any load.
func (w *Workspace) Report(c document.Collection) *document.Report {
	return w.state.Load().reports[c]
}

// Graph finds a graph by id.
func (w *Workspace) Graph(c document.Collection, id string) (*graph.Graph, error) {
	for _, g := range w.state.Load().graphs[c] {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, fmt.Errorf("%s graph %q: %w", c, id, ErrGraphNotFound)
}

// NewGraph appends an empty graph to a collection.
func (w *Workspace) NewGraph(c document.Collection, id, name string) (*graph.Graph, error) {
	if _, err := document.ParseCollection(string(c)); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("new graph: %w", graph.ErrInvalidNode)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.Graph(c, id); err == nil {
		return nil, fmt.Errorf("new %s graph %q: %w", c, id, ErrGraphExists)
	}
	g := graph.New(id, name)
	w.swap(func(next *snapshot) {
		next.graphs[c] = append(slices.Clone(next.graphs[c]), g)
	})
	w.SetDirty(true)
	w.logger.Info("graph created", "collection", c, "graph", id)
	return g, nil
}

// RemoveGraph deletes a graph and detaches every controller editing it.
func (w *Workspace) RemoveGraph(c document.Collection, id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, err := w.Graph(c, id)
	if err != nil {
		return err
	}
	for ctl := range w.controllers {
		if ctl.Graph() == g {
			delete(w.controllers, ctl)
		}
	}
	w.swap(func(next *snapshot) {
		next.graphs[c] = slices.DeleteFunc(slices.Clone(next.graphs[c]), func(x *graph.Graph) bool { return x == g })
	})
	w.SetDirty(true)
	w.logger.Info("graph removed", "collection", c, "graph", id)
	return nil
}

// Attach creates a controller for one graph. Options left zero in opts are
// taken from the workspace template; the workspace always receives the
// dirty flag and supplies the id generator and catalog.
func (w *Workspace) Attach(c document.Collection, id string, opts canvas.Options) (*canvas.Controller, error) {
	g, err := w.Graph(c, id)
	if err != nil {
		return nil, err
	}
	tmpl := w.opts.Canvas
	if opts.Invalidator == nil {
		opts.Invalidator = tmpl.Invalidator
	}
	if opts.Logger == nil {
		opts.Logger = logging.OrNop(w.opts.Logger)
	}
	if opts.OnSelect == nil {
		opts.OnSelect = tmpl.OnSelect
	}
	if opts.GridSize == 0 {
		opts.GridSnap = tmpl.GridSnap
		opts.GridSize = tmpl.GridSize
	}
	if opts.DragThreshold == 0 {
		opts.DragThreshold = tmpl.DragThreshold
	}
	if opts.DefaultWidth == 0 {
		opts.DefaultWidth = tmpl.DefaultWidth
	}
	if opts.DefaultHeight == 0 {
		opts.DefaultHeight = tmpl.DefaultHeight
	}
	opts.Project = w
	opts.IDs = w.opts.IDs
	opts.Catalog = w.Catalog()

	ctl := canvas.New(g, opts)
	w.mu.Lock()
	w.controllers[ctl] = struct{}{}
	w.mu.Unlock()
	return ctl, nil
}

// Detach forgets a controller. It reports whether ctl was attached.
func (w *Workspace) Detach(ctl *canvas.Controller) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.controllers[ctl]
	delete(w.controllers, ctl)
	return ok
}

// Controllers returns the number of attached controllers.
func (w *Workspace) Controllers() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.controllers)
}

// Busy reports whether any attached controller has a gesture in flight.
func (w *Workspace) Busy() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.busyLocked()
}

func (w *Workspace) busyLocked() bool {
	for ctl := range w.controllers {
		if ctl.Busy() {
			return true
		}
	}
	return false
}

// SetDirty records whether there are unsaved changes.
func (w *Workspace) SetDirty(dirty bool) { w.dirty.Store(dirty) }

// Dirty reports whether there are unsaved changes.
func (w *Workspace) Dirty() bool { return w.dirty.Load() }

// Save writes every collection to its document and clears the dirty flag.
func (w *Workspace) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busyLocked() {
		return fmt.Errorf("save: %w", ErrGestureInFlight)
	}
	snap := w.state.Load()
	for _, c := range document.Collections {
		path := c.Path(w.dir)
		if err := document.SaveFile(path, snap.graphs[c]); err != nil {
			w.logger.Error("save failed", "collection", c, "err", err)
			return err
		}
		w.logger.Info("collection saved", "collection", c, "path", path, "graphs", len(snap.graphs[c]))
	}
	w.publishGauges(snap)
	w.SetDirty(false)
	return nil
}

// Reload re-reads every document from disk, replacing all collections and
// discarding unsaved changes. Attached controllers edit the replaced graphs,
// so they are detached.
func (w *Workspace) Reload() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busyLocked() {
		return fmt.Errorf("reload: %w", ErrGestureInFlight)
	}
	snap, err := w.load()
	if err != nil {
		return err
	}
	clear(w.controllers)
	w.state.Store(snap)
	w.publishGauges(snap)
	w.SetDirty(false)
	return nil
}

func (w *Workspace) load() (*snapshot, error) {
	snap := &snapshot{
		graphs:  make(map[document.Collection][]*graph.Graph, len(document.Collections)),
		reports: make(map[document.Collection]*document.Report, len(document.Collections)),
	}
	for _, c := range document.Collections {
		path := c.Path(w.dir)
		graphs, report, err := document.LoadFile(path, w.logger.With("collection", c))
		if err != nil {
			return nil, fmt.Errorf("load %s collection: %w", c, err)
		}
		for _, g := range graphs {
			w.opts.IDs.Observe(g)
		}
		snap.graphs[c] = graphs
		snap.reports[c] = report
		w.logger.Info("collection loaded",
			"collection", c,
			"graphs", report.Graphs,
			"nodes", report.Nodes,
			"skipped", len(report.Skipped),
			"missing", report.Missing,
		)
	}
	return snap, nil
}

// swap publishes a copy of the current snapshot after edit. Callers hold mu.
func (w *Workspace) swap(edit func(next *snapshot)) {
	cur := w.state.Load()
	next := &snapshot{
		graphs:  make(map[document.Collection][]*graph.Graph, len(cur.graphs)),
		reports: cur.reports,
	}
	for c, gs := range cur.graphs {
		next.graphs[c] = gs
	}
	edit(next)
	w.state.Store(next)
	w.publishGauges(next)
}

func (w *Workspace) publishGauges(snap *snapshot) {
	for _, c := range document.Collections {
		n := 0
		for _, g := range snap.graphs[c] {
			n += g.Len()
		}
		metrics.GraphNodes.WithLabelValues(string(c)).Set(float64(n))
	}
}
