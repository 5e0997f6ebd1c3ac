package graph

// Visit is one step of a depth-first walk.
type Visit struct {
	Node   *Node
	Parent string // "" for a seed
	Depth  int
	// Revisit is set when Node was already reached earlier in the walk
	// (a shared successor or a cycle); its outputs are not expanded again.
	Revisit bool
}

// Walk does a depth-first traversal through outputs, seeded from the root
// nodes in draw order and then from any node still unvisited (nodes that only
// sit on cycles have no root). Each node is expanded once. fn returning false
// stops the walk.
func (g *Graph) Walk(fn func(Visit) bool) {
	seen := make(map[string]bool, len(g.nodes))
	seeds := g.RootNodes()
	for _, root := range seeds {
		if !g.dfs(root, "", 0, seen, fn) {
			return
		}
	}
	for _, n := range g.nodes {
		if seen[n.ID] {
			continue
		}
		if !g.dfs(n, "", 0, seen, fn) {
			return
		}
	}
}

// dfs reports false when fn asked to stop.
func (g *Graph) dfs(n *Node, parent string, depth int, seen map[string]bool, fn func(Visit) bool) bool {
	if seen[n.ID] {
		return fn(Visit{Node: n, Parent: parent, Depth: depth, Revisit: true})
	}
	seen[n.ID] = true
	if !fn(Visit{Node: n, Parent: parent, Depth: depth}) {
		return false
	}
	for _, childID := range n.Outputs {
		child := g.index[childID]
		if child == nil {
			continue
		}
		if !g.dfs(child, n.ID, depth+1, seen, fn) {
			return false
		}
	}
	return true
}

// TreeNode is a node in the tree view of a graph.
type TreeNode struct {
	ID       string      `json:"id"`
	Kind     Kind        `json:"kind"`
	Revisit  bool        `json:"revisit,omitempty"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Tree renders the graph as a forest for tree-style displays such as the
// dialogue outline. A node reachable along several paths appears expanded
// once; later occurrences are Revisit leaves, which keeps cycles finite.
func (g *Graph) Tree() []*TreeNode {
	var forest []*TreeNode
	var stack []*TreeNode
	g.Walk(func(v Visit) bool {
		tn := &TreeNode{ID: v.Node.ID, Kind: v.Node.Kind(), Revisit: v.Revisit}
		stack = stack[:v.Depth]
		if v.Depth == 0 {
			forest = append(forest, tn)
		} else {
			parent := stack[v.Depth-1]
			parent.Children = append(parent.Children, tn)
		}
		stack = append(stack, tn)
		return true
	})
	return forest
}

// Reachable returns the ids reachable from id through outputs, id first.
func (g *Graph) Reachable(id string) ([]string, error) {
	start, err := g.FindNode(id)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool)
	g.dfs(start, "", 0, seen, func(v Visit) bool {
		if !v.Revisit {
			out = append(out, v.Node.ID)
		}
		return true
	})
	return out, nil
}
