package layout

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/observability"
	"github.com/PeterMaltzoff/huh/pkg/view"
)

// =============================================================================
// Engine Contract
// =============================================================================

// NodeSpec is one node handed to an engine. X and Y are optional position
// hints.
type NodeSpec struct {
	ID     string
	Width  float64
	Height float64
	X, Y   *float64
}

// EdgeSpec is one edge handed to an engine.
type EdgeSpec struct {
	ID      string
	Sources []string
	Targets []string
}

// Request is the input of one layout computation.
type Request struct {
	Nodes   []NodeSpec
	Edges   []EdgeSpec
	Options map[string]string
}

// Engine computes node positions. It may return positions for a subset of
// the requested nodes.
type Engine interface {
	Compute(ctx context.Context, req Request) (map[string]graph.Point, error)
}

// EngineFunc adapts a function to [Engine].
type EngineFunc func(ctx context.Context, req Request) (map[string]graph.Point, error)

// Compute calls f.
func (f EngineFunc) Compute(ctx context.Context, req Request) (map[string]graph.Point, error) {
	return f(ctx, req)
}

// =============================================================================
// Node Size
// =============================================================================

// Node box dimensions in pixels.
const (
	BaseWidth    = 180.0
	WidthPerChar = 8.0
	MaxWidth     = 450.0
	NodeHeight   = 100.0
)

// NodeSize estimates the box of a node from its label length.
func NodeSize(n graph.Node) (width, height float64) {
	w := BaseWidth + WidthPerChar*float64(len([]rune(n.Label)))
	return min(w, MaxWidth), NodeHeight
}

// =============================================================================
// Adapter
// =============================================================================

// Adapter runs layouts of visible subgraphs through an Engine.
type Adapter struct {
	engine Engine
	logger *log.Logger
}

// NewAdapter returns an adapter over engine. A nil logger discards output.
func NewAdapter(engine Engine, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Adapter{engine: engine, logger: logger}
}

// Layout positions the nodes of sub using kind, with overrides merged over
// the kind's defaults. It returns copies of sub's nodes; sub is not
// modified. Nodes the engine skips keep their current position. On engine
// failure the error is returned with no nodes.
func (a *Adapter) Layout(ctx context.Context, sub view.Subgraph, kind Kind, overrides map[string]string) ([]graph.Node, error) {
	if !kind.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidLayout, "unknown layout kind %q", kind)
	}

	nodes := sub.Clone().Nodes
	if len(nodes) == 0 {
		return nodes, nil
	}

	req := Request{
		Nodes:   make([]NodeSpec, len(nodes)),
		Edges:   make([]EdgeSpec, len(sub.Edges)),
		Options: MergeOptions(kind, overrides),
	}
	for i, n := range nodes {
		w, h := NodeSize(n)
		spec := NodeSpec{ID: n.ID, Width: w, Height: h}
		if n.Position != (graph.Point{}) {
			x, y := n.Position.X, n.Position.Y
			spec.X, spec.Y = &x, &y
		}
		req.Nodes[i] = spec
	}
	for i, e := range sub.Edges {
		req.Edges[i] = EdgeSpec{ID: e.ID, Sources: []string{e.Source}, Targets: []string{e.Target}}
	}

	hooks := observability.Layout()
	hooks.OnLayoutStart(ctx, string(kind), len(nodes))
	start := time.Now()

	positions, err := a.engine.Compute(ctx, req)
	if err != nil {
		hooks.OnLayoutComplete(ctx, string(kind), 0, time.Since(start), err)
		a.logger.Debug("layout failed", "kind", kind, "nodes", len(nodes), "err", err)
		return nil, fmt.Errorf("layout %s: %w", kind, err)
	}

	placed := 0
	for i := range nodes {
		if p, ok := positions[nodes[i].ID]; ok {
			nodes[i].Position = p
			placed++
		}
	}
	hooks.OnLayoutComplete(ctx, string(kind), placed, time.Since(start), nil)
	a.logger.Debug("layout complete", "kind", kind, "nodes", len(nodes), "placed", placed, "took", time.Since(start))
	return nodes, nil
}
