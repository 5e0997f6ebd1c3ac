package graph

import (
	"fmt"
	"slices"
	"strings"
)

// ProblemKind classifies a structural defect found by Check.
type ProblemKind string

const (
	DanglingOutput ProblemKind = "dangling_output" // output names a node not in the graph
	DanglingInput  ProblemKind = "dangling_input"
	MissingMirror  ProblemKind = "missing_mirror" // one side of an edge without the other
	DuplicateEdge  ProblemKind = "duplicate_edge"
	SelfLoop       ProblemKind = "self_loop"
)

// Problem is one structural defect.
type Problem struct {
	Kind ProblemKind `json:"kind"`
	Node string      `json:"node"`
	Peer string      `json:"peer"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s <-> %s", p.Kind, p.Node, p.Peer)
}

// CheckError aggregates every problem found in one graph.
type CheckError struct {
	Graph    string
	Problems []Problem
}

func (e *CheckError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("graph %q has %d problem(s):\n  - %s", e.Graph, len(e.Problems), strings.Join(lines, "\n  - "))
}

// Problems lists every structural defect in the graph, in draw order. A graph
// built only through AddNode, Connect, Disconnect and RemoveNode has none;
// records loaded from disk may.
func (g *Graph) Problems() []Problem {
	var out []Problem
	for _, n := range g.nodes {
		out = append(out, g.sideProblems(n, n.Outputs, true)...)
		out = append(out, g.sideProblems(n, n.Inputs, false)...)
	}
	return out
}

func (g *Graph) sideProblems(n *Node, ids []string, outputs bool) []Problem {
	var out []Problem
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		switch {
		case id == n.ID:
			out = append(out, Problem{Kind: SelfLoop, Node: n.ID, Peer: id})
			continue
		case seen[id]:
			out = append(out, Problem{Kind: DuplicateEdge, Node: n.ID, Peer: id})
			continue
		}
		seen[id] = true
		peer, ok := g.index[id]
		if !ok {
			kind := DanglingInput
			if outputs {
				kind = DanglingOutput
			}
			out = append(out, Problem{Kind: kind, Node: n.ID, Peer: id})
			continue
		}
		mirror := peer.Outputs
		if outputs {
			mirror = peer.Inputs
		}
		if !slices.Contains(mirror, n.ID) {
			out = append(out, Problem{Kind: MissingMirror, Node: n.ID, Peer: id})
		}
	}
	return out
}

// Check returns a *CheckError listing every problem, or nil.
func (g *Graph) Check() error {
	problems := g.Problems()
	if len(problems) == 0 {
		return nil
	}
	return &CheckError{Graph: g.ID, Problems: problems}
}

// Repair fixes every problem Check reports and returns what it fixed.
// Dangling ids, self references and duplicates are dropped; a one-sided edge
// gets its missing side added.
func (g *Graph) Repair() []Problem {
	problems := g.Problems()
	if len(problems) == 0 {
		return nil
	}
	for _, n := range g.nodes {
		n.Outputs = g.cleanSide(n, n.Outputs)
		n.Inputs = g.cleanSide(n, n.Inputs)
	}
	for _, n := range g.nodes {
		for _, id := range n.Outputs {
			peer := g.index[id]
			if !slices.Contains(peer.Inputs, n.ID) {
				peer.Inputs = append(peer.Inputs, n.ID)
			}
		}
		for _, id := range n.Inputs {
			peer := g.index[id]
			if !slices.Contains(peer.Outputs, n.ID) {
				peer.Outputs = append(peer.Outputs, n.ID)
			}
		}
	}
	return problems
}

func (g *Graph) cleanSide(n *Node, ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == n.ID || g.index[id] == nil || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
