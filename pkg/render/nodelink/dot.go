package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/value"
)

// DefaultMaxLabel is the label length used when Options.MaxLabel is zero.
const DefaultMaxLabel = 60

// Options configures node-link diagram rendering.
type Options struct {
	// Kind selects the graph attributes (rank direction, spacing) of the
	// diagram. The zero value means [layout.Vertical].
	Kind layout.Kind

	// Detailed adds the node ID and value kind under each label.
	Detailed bool

	// MaxLabel truncates labels to this many characters.
	MaxLabel int
}

// ToDOT converts a graph to Graphviz DOT format for node-link visualization.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Container nodes are filled grey, the root is drawn bold and
// special-format nodes use a dashed outline.
func ToDOT(g *graph.Graph, opts Options) string {
	kind := opts.Kind
	if !kind.Valid() {
		kind = layout.Vertical
	}
	limit := opts.MaxLabel
	if limit <= 0 {
		limit = DefaultMaxLabel
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	attrs := layout.DefaultOptions(kind)
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if k == layout.OptionEngine {
			continue
		}
		fmt.Fprintf(&buf, "  %s=%q;\n", k, attrs[k])
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed, limit)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, label), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool, limit int) string {
	label := truncate(n.Label, limit)
	if !detailed {
		return label
	}
	return label + "\n" + n.ID + " (" + string(n.Kind) + ")"
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsSpecialFormat:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightyellow")
	case n.Kind == value.KindObject || n.Kind == value.KindArray:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if n.IsRoot {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

// RenderSVG renders a DOT graph to SVG using the Graphviz engine of kind.
func RenderSVG(ctx context.Context, dot string, kind layout.Kind) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	if !kind.Valid() {
		kind = layout.Vertical
	}
	gv.SetLayout(graphviz.Layout(layout.DefaultOptions(kind)[layout.OptionEngine]))

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
