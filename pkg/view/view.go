// Package view projects a full graph onto the slice that is currently shown:
// one root and its direct children.
//
// A projection never mutates the graph it reads. Nodes in the result are
// copies, the root is always flagged IsRoot, and HasChildren reflects the
// full graph so a child that looks like a leaf in the current view can still
// be expanded later.
package view

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/graph"
)

// Subgraph is the visible slice of a graph: the root first, then its
// children in edge order, plus the edges connecting them.
type Subgraph struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`
}

// IsEmpty reports whether the subgraph has no nodes.
func (s Subgraph) IsEmpty() bool { return len(s.Nodes) == 0 }

// Root returns the first node of the subgraph.
func (s Subgraph) Root() (graph.Node, bool) {
	if len(s.Nodes) == 0 {
		return graph.Node{}, false
	}
	return s.Nodes[0], true
}

// Node returns the visible node with the given ID.
func (s Subgraph) Node(id string) (graph.Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

// Clone returns a copy of s whose slices share nothing with s.
func (s Subgraph) Clone() Subgraph {
	out := Subgraph{
		Nodes: make([]graph.Node, len(s.Nodes)),
		Edges: make([]graph.Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		n.Fields = append([]graph.Field(nil), n.Fields...)
		out.Nodes[i] = n
	}
	copy(out.Edges, s.Edges)
	return out
}

// Empty returns a subgraph with no nodes and no edges. Its slices are
// non-nil so it encodes as empty JSON arrays.
func Empty() Subgraph {
	return Subgraph{Nodes: []graph.Node{}, Edges: []graph.Edge{}}
}

// Project returns rootID and its direct children from g. When rootID is not
// in g the result is empty and a warning is logged; this happens when a
// stale ID outlives the graph it came from. A nil logger discards output.
func Project(g *graph.Graph, rootID string, logger *log.Logger) Subgraph {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if g == nil {
		logger.Warn("projection on empty graph", "root", rootID)
		return Empty()
	}

	root, ok := g.Node(rootID)
	if !ok {
		logger.Warn("projection root not found", "root", rootID, "nodes", g.NodeCount())
		return Empty()
	}
	root.IsRoot = true
	root.HasChildren = g.HasOutgoing(root.ID)

	out := Empty()
	out.Nodes = append(out.Nodes, root)
	for _, e := range g.OutEdges(rootID) {
		child, ok := g.Node(e.Target)
		if !ok {
			logger.Warn("edge target not found", "edge", e.ID, "target", e.Target)
			continue
		}
		child.IsRoot = false
		child.HasChildren = g.HasOutgoing(child.ID)
		out.Nodes = append(out.Nodes, child)
		out.Edges = append(out.Edges, e)
	}

	logger.Debug("projected view", "root", rootID, "children", len(out.Nodes)-1)
	return out
}
