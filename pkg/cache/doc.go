// Package cache stores model responses and layout results between requests.
//
// # Backends
//
//   - [NullCache]: stores nothing (--no-cache)
//   - [MemoryCache]: bounded in-process LRU, the server default
//   - [FileCache]: one JSON file per entry under ~/.cache/huh, the CLI default
//   - [RedisCache]: shared across server instances
//
// # Keys
//
// A [Keyer] derives keys from what is being cached. Ingestion responses
// are keyed by a hash of the model name and the submitted text; layouts by
// a hash of the engine request. Wrap a keyer with [NewScopedKeyer] to give a
// deployment its own namespace.
//
// [GetJSON] and [SetJSON] handle encoding and report hits, misses and writes
// to the observability cache hooks.
package cache
