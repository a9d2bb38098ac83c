// Package layout positions the nodes of a visible subgraph.
//
// # Overview
//
// The placement math is delegated to an [Engine]. This package owns the
// contract around it: which parameters each layout [Kind] hands the engine,
// how caller overrides merge with them, and how returned positions are
// folded back onto nodes.
//
//	adapter := layout.NewAdapter(layout.NewGraphvizEngine(), logger)
//	nodes, err := adapter.Layout(ctx, sub, layout.Radial, nil)
//
// # Kinds
//
//   - [Vertical]: layered, top to bottom
//   - [Horizontal]: layered, left to right, wider spacing between layers
//   - [Radial]: rings around the root
//   - [Force]: force-directed with a fixed iteration count
//
// Each kind maps to a set of string options ([DefaultOptions]). Options given
// to [Adapter.Layout] win over the defaults. The "layout" option names the
// Graphviz engine (dot, twopi, fdp, ...); every other option is passed as a
// graph attribute.
//
// # Merging
//
// Nodes the engine returns no position for keep the position they had. When
// the engine fails the adapter returns the error and no node is touched.
//
// # Graphviz
//
// [GraphvizEngine] runs Graphviz in-process through
// [github.com/goccy/go-graphviz] and reads positions from its "plain" output.
// Positions are converted to points with the origin at the top-left corner
// and refer to the top-left corner of each node box.
package layout
