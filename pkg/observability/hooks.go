// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; the defaults do
// nothing. A binary that wants metrics registers its own implementations at
// startup:
//
//	func main() {
//	    observability.SetIngestHooks(&myIngestHooks{})
//	    observability.SetLayoutHooks(&myLayoutHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks around the work they do:
//
//	observability.Ingest().OnIngestStart(ctx, model, len(text))
//	// ... two model calls ...
//	observability.Ingest().OnIngestComplete(ctx, model, valid, time.Since(start), err)
//
// Hook registration lives here, not in the libraries, so no backend becomes
// a dependency of pkg/.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Ingest Hooks
// =============================================================================

// IngestHooks receives events from the text-to-JSON ingestion flow.
type IngestHooks interface {
	OnIngestStart(ctx context.Context, model string, textLen int)
	OnIngestComplete(ctx context.Context, model string, validJSON bool, duration time.Duration, err error)

	// OnGenerate records one call to the model service.
	OnGenerate(ctx context.Context, model string, promptLen int, duration time.Duration, err error)
}

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from layout computations.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, kind string, nodeCount int)
	OnLayoutComplete(ctx context.Context, kind string, positioned int, duration time.Duration, err error)

	// OnLayoutDiscarded records a result dropped because the view moved on
	// while it was computed.
	OnLayoutDiscarded(ctx context.Context, kind string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopIngestHooks is a no-op implementation of IngestHooks.
type NoopIngestHooks struct{}

func (NoopIngestHooks) OnIngestStart(context.Context, string, int) {}
func (NoopIngestHooks) OnIngestComplete(context.Context, string, bool, time.Duration, error) {
}
func (NoopIngestHooks) OnGenerate(context.Context, string, int, time.Duration, error) {}

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                          {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, int, time.Duration, error) {}
func (NoopLayoutHooks) OnLayoutDiscarded(context.Context, string)                           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	ingestHooks IngestHooks = NoopIngestHooks{}
	layoutHooks LayoutHooks = NoopLayoutHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetIngestHooks registers custom ingest hooks.
// This should be called once at application startup.
func SetIngestHooks(h IngestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		ingestHooks = h
	}
}

// SetLayoutHooks registers custom layout hooks.
func SetLayoutHooks(h LayoutHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		layoutHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Ingest returns the registered ingest hooks.
func Ingest() IngestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return ingestHooks
}

// Layout returns the registered layout hooks.
func Layout() LayoutHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return layoutHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	ingestHooks = NoopIngestHooks{}
	layoutHooks = NoopLayoutHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
