// Package graph turns decoded JSON documents into navigable node-link graphs.
//
// # Overview
//
// A [Graph] is a rooted tree of labelled nodes. Every container member or
// array item becomes one node whose label reads "key: value", with nested
// containers shown by a type marker ({Object} or [Array]) and expanded as
// children of that node.
//
//	v, _ := value.Parse([]byte(`{"a": 1, "b": {"c": true}}`))
//	g := graph.Materialize(v)
//	// node-0 "{Object}" -> node-1 "a: 1"
//	//                   -> node-2 "b: {Object}" -> node-3 "c: true"
//
// # Identity
//
// Node IDs are assigned in pre-order ("node-0", "node-1", ...) so the same
// document always yields the same graph. Edge IDs are derived from their
// endpoints ("edge-node-0-node-1").
//
// # Special Format
//
// An object holding a "name" key and exactly one other primitive field is
// collapsed into a single child node labelled "Ann|age: 30". The rule can be
// tuned or switched off with [WithSpecialFormat].
//
// # Raw Text
//
// When a model response carries no usable JSON, [RawText] builds a fallback
// graph that splits the text into fixed-size chunks under a "Raw Response"
// root.
//
// # Serialization
//
// Graphs encode to a node-link JSON document:
//
//	{
//	  "nodes": [{"id": "node-0", "kind": "object", "label": "{Object}", ...}],
//	  "edges": [{"id": "edge-node-0-node-1", "source": "node-0", "target": "node-1"}]
//	}
//
// Use [WriteGraph], [ReadGraph] and friends to move graphs across files and
// wire boundaries. [ReadGraph] validates the tree shape with [Graph.Validate].
//
// # Concurrency
//
// A Graph is not mutated after construction; concurrent reads are safe.
package graph
