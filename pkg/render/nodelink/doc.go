// Package nodelink renders JSON graphs as node-link diagrams.
//
// Nodes appear as rounded boxes labelled "key: value" and connected by
// arrows from container to member. The diagram uses the same Graphviz
// attributes as the interactive layout of the chosen [layout.Kind], so an
// exported SVG looks like the explorer view.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Kind: layout.Radial})
//	svg, err := nodelink.RenderSVG(ctx, dot, layout.Radial)
//
// # Styling
//
//   - Objects and arrays are filled grey
//   - Special-format nodes have a dashed outline
//   - The root has a thicker border
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
