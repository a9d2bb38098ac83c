package layout

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/PeterMaltzoff/huh/pkg/cache"
	"github.com/PeterMaltzoff/huh/pkg/graph"
)

// CachedEngine memoizes the positions computed by another engine. Equal
// requests (same nodes, sizes, hints, edges and options) share one entry,
// so flipping back and forth between two views does not rerun Graphviz.
type CachedEngine struct {
	inner Engine
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedEngine wraps inner. A nil keyer uses [cache.NewDefaultKeyer].
func NewCachedEngine(inner Engine, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedEngine {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedEngine{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Compute returns cached positions for req or computes and stores them.
// Cache failures fall through to the inner engine.
func (e *CachedEngine) Compute(ctx context.Context, req Request) (map[string]graph.Point, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return e.inner.Compute(ctx, req)
	}
	key := e.keyer.LayoutKey(cache.Hash(data))

	var positions map[string]graph.Point
	if err := cache.GetJSON(ctx, e.cache, "layout", key, &positions); err == nil {
		return positions, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		return e.inner.Compute(ctx, req)
	}

	positions, err = e.inner.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	_ = cache.SetJSON(ctx, e.cache, "layout", key, positions, e.ttl)
	return positions, nil
}

var _ Engine = (*CachedEngine)(nil)
