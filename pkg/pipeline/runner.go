package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/cache"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/render/nodelink"
	"github.com/PeterMaltzoff/huh/pkg/view"
)

// SVGRenderer draws DOT source with the engine of kind.
type SVGRenderer func(ctx context.Context, dot string, kind layout.Kind) ([]byte, error)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// RenderSVG defaults to [nodelink.RenderSVG].
	RenderSVG SVGRenderer
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Cache:     c,
		Keyer:     keyer,
		Logger:    logger,
		RenderSVG: nodelink.RenderSVG,
	}
}

// Execute runs materialize → project → render for resp.
func (r *Runner) Execute(ctx context.Context, resp *ingest.Response, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
		Raw:       !resp.IsValidJSON,
	}

	// Stage 1: Materialize
	start := time.Now()
	g := resp.Graph(opts.Graph...)
	result.Stats.MaterializeTime = time.Since(start)

	// Stage 2: Project
	if opts.RootID != "" {
		sub := view.Project(g, opts.RootID, r.Logger)
		if sub.IsEmpty() {
			return nil, fmt.Errorf("node %q not found", opts.RootID)
		}
		g = graph.NewView(sub.Nodes, sub.Edges)
	}
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	r.Logger.Debug("materialized graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"raw", result.Raw,
		"duration", result.Stats.MaterializeTime)

	// Stage 3: Render
	start = time.Now()
	dot := nodelink.ToDOT(g, nodelink.Options{Kind: opts.Kind, Detailed: opts.Detailed})
	for _, format := range opts.Formats {
		var (
			data []byte
			hit  bool
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = graph.MarshalGraph(g)
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, hit, err = r.renderSVG(ctx, dot, opts.Kind)
			result.CacheInfo.RenderHit = hit
		}
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		result.Artifacts[format] = data
	}
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// renderSVG renders dot, serving repeated diagrams from the cache.
func (r *Runner) renderSVG(ctx context.Context, dot string, kind layout.Kind) ([]byte, bool, error) {
	engine := layout.DefaultOptions(kind)[layout.OptionEngine]
	key := r.Keyer.RenderKey(cache.Hash([]byte(dot)), engine)

	if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}

	data, err := r.RenderSVG(ctx, dot, kind)
	if err != nil {
		return nil, false, err
	}
	if err := r.Cache.Set(ctx, key, data, DefaultRenderTTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
	}
	return data, false, nil
}
