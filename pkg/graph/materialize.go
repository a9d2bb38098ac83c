package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/value"
)

// SpecialFormat controls collapsing of small named objects into one node.
type SpecialFormat struct {
	// Enabled turns the rule on.
	Enabled bool

	// NameKey is the member that supplies the leading label fragment.
	NameKey string

	// MaxExtraFields is the largest number of primitive members besides
	// NameKey an object may hold and still collapse.
	MaxExtraFields int
}

// DefaultSpecialFormat collapses {"name": X, "k": v} into "X|k: v".
func DefaultSpecialFormat() SpecialFormat {
	return SpecialFormat{Enabled: true, NameKey: "name", MaxExtraFields: 1}
}

type options struct {
	special SpecialFormat
	logger  *log.Logger
}

// Option configures [Materialize].
type Option func(*options)

// WithSpecialFormat replaces the special-format rule.
func WithSpecialFormat(sf SpecialFormat) Option {
	return func(o *options) { o.special = sf }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Materialize converts v into a graph. The root node carries the container
// marker (or the formatted primitive when v is not a container) and every
// member or item becomes a child labelled "key: value". IDs are assigned in
// pre-order, so equal documents produce equal graphs.
func Materialize(v value.Value, opts ...Option) *Graph {
	o := options{special: DefaultSpecialFormat()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	b := &builder{special: o.special}
	frag := value.Format(v)
	rootID := b.add("", Node{
		Kind:   value.Classify(v),
		Label:  frag,
		Value:  frag,
		IsRoot: true,
	})
	if v.IsContainer() {
		b.expand(rootID, v)
	}

	g := New(b.nodes, b.edges)
	o.logger.Debug("materialized graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g
}

type builder struct {
	nodes   []Node
	edges   []Edge
	next    int
	special SpecialFormat
}

// add appends n with the next pre-order ID and links it under parent.
func (b *builder) add(parent string, n Node) string {
	n.ID = fmt.Sprintf("node-%d", b.next)
	b.next++
	b.nodes = append(b.nodes, n)
	if parent != "" {
		b.edges = append(b.edges, Edge{
			ID:     EdgeID(parent, n.ID),
			Source: parent,
			Target: n.ID,
		})
	}
	return n.ID
}

func (b *builder) expand(parent string, v value.Value) {
	switch v.Type() {
	case value.TypeArray:
		for i, item := range v.Items() {
			b.entry(parent, fmt.Sprintf("[%d]", i), item)
		}
	case value.TypeObject:
		if b.collapse(parent, v) {
			return
		}
		for _, m := range v.Members() {
			b.entry(parent, m.Key, m.Value)
		}
	}
}

func (b *builder) entry(parent, key string, v value.Value) {
	frag := value.Format(v)
	id := b.add(parent, Node{
		Kind:  value.Classify(v),
		Label: key + ": " + frag,
		Key:   key,
		Value: frag,
	})
	if v.IsContainer() {
		b.expand(id, v)
	}
}

// collapse emits a single special-format child for obj when the rule
// applies and reports whether it did.
func (b *builder) collapse(parent string, obj value.Value) bool {
	sf := b.special
	if !sf.Enabled || sf.MaxExtraFields < 1 {
		return false
	}
	if n := obj.Len(); n < 2 || n > sf.MaxExtraFields+1 {
		return false
	}
	name, ok := obj.Get(sf.NameKey)
	if !ok || !name.IsPrimitive() {
		return false
	}

	nameText := value.Format(name)
	parts := []string{nameText}
	var fields []Field
	for _, m := range obj.Members() {
		if m.Key == sf.NameKey {
			continue
		}
		if !m.Value.IsPrimitive() {
			return false
		}
		f := Field{Key: m.Key, Value: value.Format(m.Value)}
		fields = append(fields, f)
		parts = append(parts, f.Key+": "+f.Value)
	}

	b.add(parent, Node{
		Kind:            value.KindObject,
		Label:           strings.Join(parts, "|"),
		Name:            nameText,
		Fields:          fields,
		IsSpecialFormat: true,
	})
	return true
}

// EdgeID returns the ID of the edge from source to target.
func EdgeID(source, target string) string {
	return "edge-" + source + "-" + target
}
