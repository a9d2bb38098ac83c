// Package pkg provides the core libraries of huh.
//
// # Overview
//
// huh asks a language model to explain text as JSON and lets a user walk the
// resulting document one level at a time. The pkg directory is organized
// into four areas:
//
//  1. Document model: [value], [graph], [view]
//  2. Navigation: [nav], [layout], [session]
//  3. Ingestion: [ingest], [httputil], [cache], [events]
//  4. Export: [pipeline], [render/nodelink]
//
// # Architecture
//
// The typical data flow:
//
//	text
//	  ↓
//	[ingest] (explain, restate as JSON, extract)
//	  ↓
//	[graph] (materialize the document, or the raw-text fallback)
//	  ↓
//	[view] (project root + children)
//	  ↓
//	[layout] (position the visible nodes through Graphviz)
//	  ↓
//	[nav] controller → [session] → HTTP, websocket or terminal
//
// Shared support packages: [errors] for coded errors, [observability] for
// hooks and [buildinfo] for version data.
package pkg
