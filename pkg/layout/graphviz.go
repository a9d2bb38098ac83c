package layout

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/PeterMaltzoff/huh/pkg/graph"
)

// pointsPerInch converts between Graphviz inches and pixels.
const pointsPerInch = 72.0

// GraphvizEngine computes layouts with an in-process Graphviz.
type GraphvizEngine struct {
	// DefaultEngine is used when a request carries no "layout" option.
	DefaultEngine string
}

// NewGraphvizEngine returns an engine that defaults to dot.
func NewGraphvizEngine() *GraphvizEngine {
	return &GraphvizEngine{DefaultEngine: "dot"}
}

// Compute renders req with Graphviz and reads node positions back from the
// plain output format.
func (e *GraphvizEngine) Compute(ctx context.Context, req Request) (map[string]graph.Point, error) {
	engine := req.Options[OptionEngine]
	if engine == "" {
		engine = e.DefaultEngine
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(req)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	gv.SetLayout(graphviz.Layout(engine))

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.Format("plain"), &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", engine, err)
	}
	return ParsePlain(buf.Bytes())
}

// ToDOT writes req as a Graphviz digraph with fixed-size boxes. Options
// other than "layout" become graph attributes, sorted by key.
func ToDOT(req Request) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	for _, k := range slices.Sorted(maps.Keys(req.Options)) {
		if k == OptionEngine {
			continue
		}
		fmt.Fprintf(&buf, "  %s=%q;\n", k, req.Options[k])
	}
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for _, n := range req.Nodes {
		attrs := []string{
			"width=" + inches(n.Width),
			"height=" + inches(n.Height),
		}
		if n.X != nil && n.Y != nil {
			attrs = append(attrs, fmt.Sprintf("pos=\"%s,%s\"", inches(*n.X), inches(-*n.Y)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range req.Edges {
		for _, s := range e.Sources {
			for _, t := range e.Targets {
				fmt.Fprintf(&buf, "  %q -> %q;\n", s, t)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 3, 64)
}

// ParsePlain reads node positions from Graphviz plain output. Graphviz
// reports node centres in inches with the origin at the bottom-left; the
// result holds top-left corners in pixels with the origin at the top-left.
func ParsePlain(data []byte) (map[string]graph.Point, error) {
	out := make(map[string]graph.Point)
	var height float64
	sawGraph := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		fields, err := splitPlain(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("plain line %d: %w", line, err)
		}
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "graph":
			if len(fields) < 4 {
				return nil, fmt.Errorf("plain line %d: short graph statement", line)
			}
			if height, err = strconv.ParseFloat(fields[3], 64); err != nil {
				return nil, fmt.Errorf("plain line %d: graph height: %w", line, err)
			}
			sawGraph = true
		case "node":
			if len(fields) < 6 {
				return nil, fmt.Errorf("plain line %d: short node statement", line)
			}
			if !sawGraph {
				return nil, fmt.Errorf("plain line %d: node before graph statement", line)
			}
			nums, err := parseFloats(fields[2:6])
			if err != nil {
				return nil, fmt.Errorf("plain line %d: %w", line, err)
			}
			x, y, w, h := nums[0], nums[1], nums[2], nums[3]
			out[fields[1]] = graph.Point{
				X: (x - w/2) * pointsPerInch,
				Y: (height - y - h/2) * pointsPerInch,
			}
		case "stop":
			return out, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseFloats(fields []string) ([]float64, error) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// splitPlain splits a plain-format line on spaces, honouring double-quoted
// fields with backslash escapes.
func splitPlain(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote, inField, escaped := false, false, false

	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case inQuote && r == '\\':
			escaped = true
		case r == '"':
			inQuote = !inQuote
			inField = true
		case !inQuote && (r == ' ' || r == '\t'):
			if inField {
				fields = append(fields, cur.String())
				cur.Reset()
				inField = false
			}
		default:
			cur.WriteRune(r)
			inField = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if inField {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
