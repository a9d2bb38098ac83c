package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/PeterMaltzoff/huh/pkg/value"
)

var (
	ErrDuplicateNodeID = errors.New("duplicate node ID")
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")
	ErrUnknownEndpoint = errors.New("edge endpoint not found")
	ErrNoRoot          = errors.New("graph has no root")
	ErrMultipleRoots   = errors.New("graph has more than one root")
	ErrRootHasParent   = errors.New("root node has an incoming edge")
	ErrMultipleParents = errors.New("node has more than one parent")
	ErrUnreachableNode = errors.New("node is not reachable from the root")
)

// =============================================================================
// Core Types
// =============================================================================

// Point is a position in layout space. The origin is the top-left corner.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Field is one extra key/value pair folded into a special-format node.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Node is one labelled vertex of a graph.
type Node struct {
	ID    string     `json:"id"`
	Kind  value.Kind `json:"kind"`
	Label string     `json:"label"`

	// Key is the member name ("age") or array index ("[2]") this node was
	// built from. Empty for roots and raw-text nodes.
	Key string `json:"key,omitempty"`

	// Value is the formatted value fragment: the primitive text or a
	// container marker.
	Value string `json:"value,omitempty"`

	// Name and Fields are set on special-format nodes only.
	Name   string  `json:"name,omitempty"`
	Fields []Field `json:"fields,omitempty"`

	IsRoot          bool  `json:"isRoot"`
	IsSpecialFormat bool  `json:"isSpecialFormat,omitempty"`
	HasChildren     bool  `json:"hasChildren"`
	Position        Point `json:"position"`
}

// Edge connects a parent node to a child node.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is a rooted tree of nodes. Nodes and edges keep insertion order,
// which for materialized graphs is document pre-order.
type Graph struct {
	nodes []Node
	edges []Edge
	index map[string]int
	out   map[string][]int
}

// New builds a graph from nodes and edges, recomputing every node's
// HasChildren flag. The slices are copied. New does not validate; call
// [Graph.Validate] for untrusted input.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes: slices.Clone(nodes),
		edges: slices.Clone(edges),
	}
	g.reindex()
	return g
}

// NewView builds a graph from a projected slice of a larger graph. Unlike
// [New] it keeps every node's HasChildren flag, which reflects the full
// graph rather than the edges present in the slice.
func NewView(nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		nodes: slices.Clone(nodes),
		edges: slices.Clone(edges),
	}
	g.buildIndex()
	return g
}

func (g *Graph) reindex() {
	g.buildIndex()
	for i := range g.nodes {
		g.nodes[i].HasChildren = len(g.out[g.nodes[i].ID]) > 0
	}
}

func (g *Graph) buildIndex() {
	g.index = make(map[string]int, len(g.nodes))
	g.out = make(map[string][]int)
	for i, n := range g.nodes {
		if _, ok := g.index[n.ID]; !ok {
			g.index[n.ID] = i
		}
	}
	for i, e := range g.edges {
		g.out[e.Source] = append(g.out[e.Source], i)
	}
}

// =============================================================================
// Queries
// =============================================================================

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns a copy of the nodes in insertion order.
func (g *Graph) Nodes() []Node { return cloneNodes(g.nodes) }

// Edges returns a copy of the edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return cloneNode(g.nodes[i]), true
}

// Root returns the first node flagged as root.
func (g *Graph) Root() (Node, bool) {
	for _, n := range g.nodes {
		if n.IsRoot {
			return cloneNode(n), true
		}
	}
	return Node{}, false
}

// HasOutgoing reports whether id is the source of at least one edge.
func (g *Graph) HasOutgoing(id string) bool { return len(g.out[id]) > 0 }

// OutEdges returns the edges leaving id in insertion order.
func (g *Graph) OutEdges(id string) []Edge {
	idx := g.out[id]
	out := make([]Edge, len(idx))
	for i, ei := range idx {
		out[i] = g.edges[ei]
	}
	return out
}

// Children returns the IDs of the direct children of id in insertion order.
func (g *Graph) Children(id string) []string {
	idx := g.out[id]
	out := make([]string, len(idx))
	for i, ei := range idx {
		out[i] = g.edges[ei].Target
	}
	return out
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph { return NewView(cloneNodes(g.nodes), g.edges) }

// Validate checks that g is a well-formed tree: unique node and edge IDs,
// edges between known nodes, exactly one root without a parent, at most one
// parent per node, and every node reachable from the root.
func (g *Graph) Validate() error {
	if len(g.nodes) == 0 {
		return ErrNoRoot
	}

	seen := make(map[string]bool, len(g.nodes))
	var roots []string
	for _, n := range g.nodes {
		if seen[n.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID)
		}
		seen[n.ID] = true
		if n.IsRoot {
			roots = append(roots, n.ID)
		}
	}
	switch len(roots) {
	case 0:
		return ErrNoRoot
	case 1:
	default:
		return fmt.Errorf("%w: %v", ErrMultipleRoots, roots)
	}

	edgeIDs := make(map[string]bool, len(g.edges))
	parent := make(map[string]string, len(g.edges))
	for _, e := range g.edges {
		if edgeIDs[e.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateEdgeID, e.ID)
		}
		edgeIDs[e.ID] = true
		if !seen[e.Source] {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, e.Source)
		}
		if !seen[e.Target] {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, e.Target)
		}
		if e.Target == roots[0] {
			return fmt.Errorf("%w: %s", ErrRootHasParent, e.Target)
		}
		if p, ok := parent[e.Target]; ok {
			return fmt.Errorf("%w: %s (%s, %s)", ErrMultipleParents, e.Target, p, e.Source)
		}
		parent[e.Target] = e.Source
	}

	reached := map[string]bool{roots[0]: true}
	queue := []string{roots[0]}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range g.Children(id) {
			if !reached[c] {
				reached[c] = true
				queue = append(queue, c)
			}
		}
	}
	for _, n := range g.nodes {
		if !reached[n.ID] {
			return fmt.Errorf("%w: %s", ErrUnreachableNode, n.ID)
		}
	}
	return nil
}

// =============================================================================
// JSON Encoding
// =============================================================================

type wireGraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// MarshalJSON encodes g as {"nodes": [...], "edges": [...]}.
func (g *Graph) MarshalJSON() ([]byte, error) {
	w := wireGraph{Nodes: g.nodes, Edges: g.edges}
	if w.Nodes == nil {
		w.Nodes = []Node{}
	}
	if w.Edges == nil {
		w.Edges = []Edge{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a node-link document and rebuilds the indexes.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	g.nodes = w.Nodes
	g.edges = w.Edges
	g.reindex()
	return nil
}

func cloneNode(n Node) Node {
	n.Fields = slices.Clone(n.Fields)
	return n
}

func cloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = cloneNode(n)
	}
	return out
}
