// Package ingest sends user text to a local language model and recovers a
// JSON document from the answer.
//
// # Flow
//
// [Service.Ingest] makes two calls to the model:
//
//  1. "Explain this: <text>"
//  2. "Convert this into JSON: <explanation>" followed by an instruction
//     to answer with nothing but a JSON object.
//
// The second answer goes through [Extract], which strips markdown fences and
// falls back to the span between the first '{' and the last '}'. Output that
// still does not parse is returned with IsValidJSON unset; callers render
// it with the raw-text graph rather than treating it as a failure.
//
// # Backends
//
// [OllamaClient] talks to the Ollama generate API. [RemoteClient] talks to
// another huh server's /api/ollama endpoint and implements [Ingestor] as
// well, so the CLI can share a server's model and cache.
//
// # Caching
//
// Responses are cached by model and text with [WithCache]. The file cache
// suits the CLI; the server uses an in-memory LRU or Redis.
package ingest
