package graph

import (
	"fmt"

	"github.com/PeterMaltzoff/huh/pkg/value"
)

// ChunkSize is the number of characters per raw-text chunk node.
const ChunkSize = 300

// Fixed IDs of the raw-text graph.
const (
	RawRootID          = "root"
	RawTextID          = "raw-text"
	OriginalResponseID = "original-response"
)

// RawText builds the fallback graph shown when a response has no usable
// JSON. The displayed text is result, or rawResponse when result is empty.
// Text longer than [ChunkSize] is split into "Part N" chunks; shorter text
// becomes a single node. When rawResponse differs from the displayed text
// a truncated copy of it is attached as well.
func RawText(result, rawResponse string) *Graph {
	text := result
	if text == "" {
		text = rawResponse
	}

	nodes := []Node{{
		ID:     RawRootID,
		Kind:   value.KindString,
		Label:  "Raw Response",
		IsRoot: true,
	}}
	var edges []Edge
	link := func(n Node, edgeID string) {
		n.Kind = value.KindString
		nodes = append(nodes, n)
		edges = append(edges, Edge{ID: edgeID, Source: RawRootID, Target: n.ID})
	}

	runes := []rune(text)
	if len(runes) > ChunkSize {
		for i, chunk := range chunkRunes(runes, ChunkSize) {
			link(Node{
				ID:    fmt.Sprintf("chunk-%d", i),
				Label: fmt.Sprintf("Part %d: %s", i+1, chunk),
				Value: chunk,
			}, fmt.Sprintf("edge-root-%d", i))
		}
	} else {
		link(Node{ID: RawTextID, Label: text, Value: text}, "edge-root-raw")
	}

	if rawResponse != "" && rawResponse != text {
		preview := rawResponse
		if r := []rune(rawResponse); len(r) > ChunkSize {
			preview = string(r[:ChunkSize]) + "..."
		}
		link(Node{
			ID:    OriginalResponseID,
			Label: "Original Response (first 300 chars): " + preview,
			Value: preview,
		}, "edge-root-original")
	}

	return New(nodes, edges)
}

func chunkRunes(r []rune, size int) []string {
	var out []string
	for start := 0; start < len(r); start += size {
		end := min(start+size, len(r))
		out = append(out, string(r[start:end]))
	}
	return out
}
