// Package pipeline turns an ingestion response into exportable artifacts.
//
// The pipeline has three stages:
//
//  1. Materialize: build the document graph, or the raw-text graph when the
//     response has no valid JSON
//  2. Project: optionally narrow the graph to the view rooted at one node
//  3. Render: write graph JSON, Graphviz DOT or SVG
//
// SVG rendering is the only expensive stage and is cached by a hash of the
// DOT source.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, resp, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	    Kind:    layout.Radial,
//	})
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/layout"
)

// =============================================================================
// Default Values
// =============================================================================

// Output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultRenderTTL is how long rendered SVG stays cached.
const DefaultRenderTTL = 7 * 24 * time.Hour

// AllFormats lists the supported formats in output order.
var AllFormats = []string{FormatJSON, FormatDOT, FormatSVG}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Formats to produce. Empty means JSON only.
	Formats []string

	// Kind selects the diagram attributes and Graphviz engine.
	Kind layout.Kind

	// RootID, when set, limits output to the view rooted at that node.
	RootID string

	// Detailed adds node IDs and kinds to diagram labels.
	Detailed bool

	// Graph configures materialization.
	Graph []graph.Option
}

// ValidateAndSetDefaults fills empty fields and rejects unknown values.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	for _, f := range o.Formats {
		if !slices.Contains(AllFormats, f) {
			return fmt.Errorf("unknown format %q (want %s)", f, strings.Join(AllFormats, ", "))
		}
	}
	if o.Kind == "" {
		o.Kind = layout.Vertical
	}
	if !o.Kind.Valid() {
		_, err := layout.ParseKind(string(o.Kind))
		return err
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	if s == "" {
		return []string{FormatJSON}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Result
// =============================================================================

// Result holds the output of a pipeline run.
type Result struct {
	// Graph is the exported graph: the full graph or the projected view.
	Graph *graph.Graph

	// Artifacts maps each requested format to its bytes.
	Artifacts map[string][]byte

	// Raw reports that the response had no valid JSON.
	Raw bool

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and stage timings.
type Stats struct {
	NodeCount       int
	EdgeCount       int
	MaterializeTime time.Duration
	RenderTime      time.Duration
}

// CacheInfo reports which stages were served from cache.
type CacheInfo struct {
	RenderHit bool
}
