package graph

import (
	"fmt"
	"image"
	"slices"

	"github.com/gyaneshwarpardhi/advlogic/internal/metrics"
)

// Graph holds an ordered list of nodes and owns their connectivity.
//
// For every pair of nodes A and B, B is in A.Outputs exactly when A is in
// B.Inputs, and every id in any Inputs/Outputs list names a node of this
// graph. Edges are unique and never loop back to their source.
//
// A Graph is not safe for concurrent mutation; callers mutate it from a
// single goroutine.
type Graph struct {
	ID   string
	Name string

	nodes []*Node          // draw order; last is topmost
	index map[string]*Node // id → node
}

// New allocates an empty Graph.
func New(id, name string) *Graph {
	return &Graph{
		ID:    id,
		Name:  name,
		index: make(map[string]*Node),
	}
}

// AddNode appends n to the graph. Ids already listed in n.Inputs and
// n.Outputs must name nodes of the graph; each such edge is mirrored on the
// peer and duplicates are dropped. An unknown id fails with ErrNodeNotFound,
// the node's own id with ErrSelfLoop, and the graph is left unchanged.
func (g *Graph) AddNode(n *Node) error {
	if err := g.admit(n); err != nil {
		return err
	}
	for _, ids := range [][]string{n.Inputs, n.Outputs} {
		for _, id := range ids {
			if id == n.ID {
				return fmt.Errorf("add node %q: %w", n.ID, ErrSelfLoop)
			}
			if g.index[id] == nil {
				return fmt.Errorf("add node %q: peer %q: %w", n.ID, id, ErrNodeNotFound)
			}
		}
	}
	n.Inputs = dedupe(n.Inputs)
	n.Outputs = dedupe(n.Outputs)
	g.insert(n)
	for _, id := range n.Inputs {
		if peer := g.index[id]; !slices.Contains(peer.Outputs, n.ID) {
			peer.Outputs = append(peer.Outputs, n.ID)
		}
	}
	for _, id := range n.Outputs {
		if peer := g.index[id]; !slices.Contains(peer.Inputs, n.ID) {
			peer.Inputs = append(peer.Inputs, n.ID)
		}
	}
	return nil
}

// Rejection is a node Restore left out, by its position in the input.
type Rejection struct {
	Index int
	Err   error
}

// Restore builds a graph from nodes whose adjacency was recorded elsewhere,
// such as a persisted document, where lists may name nodes that come later.
// Nodes with an empty or repeated id are rejected; the rest are inserted with
// their lists as given and the graph is then repaired, so the returned graph
// satisfies every connectivity invariant. The repaired problems are returned.
func Restore(id, name string, nodes []*Node) (*Graph, []Rejection, []Problem) {
	g := New(id, name)
	var rejected []Rejection
	for i, n := range nodes {
		if err := g.admit(n); err != nil {
			rejected = append(rejected, Rejection{Index: i, Err: err})
			continue
		}
		g.insert(n)
	}
	return g, rejected, g.Repair()
}

func (g *Graph) admit(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("add node: %w", ErrInvalidNode)
	}
	if _, exists := g.index[n.ID]; exists {
		return fmt.Errorf("add node %q: %w", n.ID, ErrDuplicateID)
	}
	return nil
}

func (g *Graph) insert(n *Node) {
	if n.Inputs == nil {
		n.Inputs = []string{}
	}
	if n.Outputs == nil {
		n.Outputs = []string{}
	}
	g.nodes = append(g.nodes, n)
	g.index[n.ID] = n
	metrics.NodesAdded.Inc()
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// RemoveNode deletes a node and strips its id from every remaining node's
// inputs and outputs. Former predecessors are not rewired to former successors.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.index[id]; !ok {
		return fmt.Errorf("remove node %q: %w", id, ErrNodeNotFound)
	}
	delete(g.index, id)
	g.nodes = slices.DeleteFunc(g.nodes, func(n *Node) bool { return n.ID == id })
	for _, n := range g.nodes {
		n.Inputs = without(n.Inputs, id)
		n.Outputs = without(n.Outputs, id)
	}
	metrics.NodesRemoved.Inc()
	return nil
}

// Connect adds the edge from → to on both sides. Connecting a pair that is
// already connected changes nothing and reports added == false.
func (g *Graph) Connect(fromID, toID string) (added bool, err error) {
	from, to, err := g.endpoints("connect", fromID, toID)
	if err != nil {
		metrics.EdgeOps.WithLabelValues("connect", "rejected").Inc()
		return false, err
	}
	if fromID == toID {
		metrics.EdgeOps.WithLabelValues("connect", "rejected").Inc()
		return false, fmt.Errorf("connect %q: %w", fromID, ErrSelfLoop)
	}
	hasOut := slices.Contains(from.Outputs, toID)
	hasIn := slices.Contains(to.Inputs, fromID)
	if !hasOut {
		from.Outputs = append(from.Outputs, toID)
	}
	if !hasIn {
		to.Inputs = append(to.Inputs, fromID)
	}
	if hasOut && hasIn {
		metrics.EdgeOps.WithLabelValues("connect", "duplicate").Inc()
		return false, nil
	}
	metrics.EdgeOps.WithLabelValues("connect", "ok").Inc()
	return true, nil
}

// Disconnect removes the edge from → to on both sides.
func (g *Graph) Disconnect(fromID, toID string) (removed bool, err error) {
	from, to, err := g.endpoints("disconnect", fromID, toID)
	if err != nil {
		metrics.EdgeOps.WithLabelValues("disconnect", "rejected").Inc()
		return false, err
	}
	removed = slices.Contains(from.Outputs, toID) || slices.Contains(to.Inputs, fromID)
	from.Outputs = without(from.Outputs, toID)
	to.Inputs = without(to.Inputs, fromID)
	metrics.EdgeOps.WithLabelValues("disconnect", "ok").Inc()
	return removed, nil
}

func (g *Graph) endpoints(op, fromID, toID string) (*Node, *Node, error) {
	from, ok := g.index[fromID]
	if !ok {
		return nil, nil, fmt.Errorf("%s %q -> %q: source %w", op, fromID, toID, ErrNodeNotFound)
	}
	to, ok := g.index[toID]
	if !ok {
		return nil, nil, fmt.Errorf("%s %q -> %q: target %w", op, fromID, toID, ErrNodeNotFound)
	}
	return from, to, nil
}

// FindNode returns the node with the given id.
func (g *Graph) FindNode(id string) (*Node, error) {
	n, ok := g.index[id]
	if !ok {
		return nil, fmt.Errorf("find node %q: %w", id, ErrNodeNotFound)
	}
	return n, nil
}

// Node returns a node by id (nil if not found).
func (g *Graph) Node(id string) *Node {
	return g.index[id]
}

// Nodes returns the nodes in draw order. The slice is a copy; the nodes are not.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	total := 0
	for _, n := range g.nodes {
		total += len(n.Outputs)
	}
	return total
}

// RootNodes returns the nodes nothing points into, in draw order.
func (g *Graph) RootNodes() []*Node {
	var roots []*Node
	for _, n := range g.nodes {
		if len(n.Inputs) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Bounds returns the box enclosing every node; ok is false for an empty graph.
func (g *Graph) Bounds() (r image.Rectangle, ok bool) {
	for i, n := range g.nodes {
		if i == 0 {
			r = n.Rect()
			continue
		}
		r = r.Union(n.Rect())
	}
	return r, len(g.nodes) > 0
}

func without(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(s string) bool { return s == id })
}
