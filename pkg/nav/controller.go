package nav

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/events"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/observability"
	"github.com/PeterMaltzoff/huh/pkg/view"
)

// ErrBusy is returned by transitions attempted while a layout is in flight.
var ErrBusy = errors.New(errors.ErrCodeBusy, "layout in progress")

// Layouter positions the nodes of a visible subgraph. *layout.Adapter
// implements it.
type Layouter interface {
	Layout(ctx context.Context, sub view.Subgraph, kind layout.Kind, overrides map[string]string) ([]graph.Node, error)
}

// State is the navigation state. An empty RootID means no graph is loaded.
type State struct {
	RootID     string      `json:"rootId"`
	Layout     layout.Kind `json:"layout"`
	Generation uint64      `json:"generation"`
	Busy       bool        `json:"busy"`
}

// Snapshot is a committed view together with the state it belongs to.
type Snapshot struct {
	State
	View view.Subgraph `json:"view"`

	// LayoutError is set when the last layout failed and the view carries
	// placeholder positions.
	LayoutError string `json:"layoutError,omitempty"`
}

// Sink receives every committed snapshot. Show is called with the
// controller locked: it must not call back into the controller and should
// not block.
type Sink interface {
	Show(Snapshot)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(Snapshot)

// Show calls f.
func (f SinkFunc) Show(s Snapshot) { f(s) }

// Controller owns a full graph and the navigation state over it. It is
// safe for concurrent use.
type Controller struct {
	layouter  Layouter
	overrides map[layout.Kind]map[string]string
	initial   layout.Kind
	sink      Sink
	publisher events.Publisher
	logger    *log.Logger
	name      string

	mu        sync.Mutex
	full      *graph.Graph
	state     State
	visible   view.Subgraph
	layoutErr string
}

// Option configures a Controller.
type Option func(*Controller)

// WithSink sets the sink that receives committed views.
func WithSink(s Sink) Option { return func(c *Controller) { c.sink = s } }

// WithPublisher sets the publisher for view events.
func WithPublisher(p events.Publisher) Option { return func(c *Controller) { c.publisher = p } }

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(c *Controller) { c.logger = l } }

// WithName labels events and log lines with a session name.
func WithName(name string) Option { return func(c *Controller) { c.name = name } }

// WithInitialLayout sets the layout kind used after Load and Clear.
func WithInitialLayout(k layout.Kind) Option { return func(c *Controller) { c.initial = k } }

// WithLayoutOverrides sets per-kind options passed to every layout call.
func WithLayoutOverrides(o map[layout.Kind]map[string]string) Option {
	return func(c *Controller) { c.overrides = o }
}

// New returns an empty controller that lays views out with l.
func New(l Layouter, opts ...Option) *Controller {
	c := &Controller{
		layouter: l,
		initial:  layout.DefaultKind,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.publisher == nil {
		c.publisher = &events.NoopPublisher{}
	}
	if !c.initial.Valid() {
		c.initial = layout.DefaultKind
	}
	c.state.Layout = c.initial
	c.visible = view.Empty()
	return c
}

// SetSink replaces the sink. It is meant for wiring before first use.
func (c *Controller) SetSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = s
}

// =============================================================================
// Queries
// =============================================================================

// State returns the current navigation state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a layout is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Busy
}

// View returns the current snapshot.
func (c *Controller) View() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Graph returns the loaded full graph, or nil when empty.
func (c *Controller) Graph() *graph.Graph {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.full
}

// =============================================================================
// Transitions
// =============================================================================

// LoadOption configures [Controller.Load].
type LoadOption func(*loadOptions)

type loadOptions struct {
	keepLayout bool
}

// KeepLayout keeps the current layout kind instead of resetting it.
func KeepLayout() LoadOption { return func(o *loadOptions) { o.keepLayout = true } }

// Load replaces the full graph with g and roots the view at g's root node.
// It is never rejected as busy; a layout still in flight is superseded. Load
// returns an error only when g is nil or has no root. A layout failure is
// recorded on the snapshot and logged, not returned.
func (c *Controller) Load(ctx context.Context, g *graph.Graph, opts ...LoadOption) error {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	if g == nil {
		return errors.New(errors.ErrCodeInvalidInput, "no graph to load")
	}
	root, ok := g.Root()
	if !ok {
		return errors.New(errors.ErrCodeInvalidInput, "graph has no root")
	}

	c.mu.Lock()
	c.full = g
	c.state.RootID = root.ID
	if !o.keepLayout {
		c.state.Layout = c.initial
	}
	gen, kind := c.beginLocked()
	c.mu.Unlock()

	sub := view.Project(g, root.ID, c.logger)
	resetPositions(sub)
	snap, committed := c.layoutAndCommit(ctx, gen, sub, kind)
	if committed {
		c.publish(ctx, events.TopicViewLoaded, events.ViewLoaded{
			Session: c.name,
			RootID:  root.ID,
			Nodes:   g.NodeCount(),
			Layout:  string(kind),
		})
		c.logger.Info("loaded graph", "session", c.name, "nodes", g.NodeCount(), "root", root.ID, "visible", len(snap.View.Nodes))
	}
	return nil
}

// Promote makes id the root of the view. It reports false without changing
// anything when no graph is loaded, id is already the root, or id has no
// outgoing edge in the full graph (leaves and unknown IDs). It returns
// [ErrBusy] while a layout is in flight.
//
// The visible view is cleared and shown empty before the new projection is
// computed, reset to placeholder positions and laid out.
func (c *Controller) Promote(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		return false, ErrBusy
	}
	if c.full == nil || id == c.state.RootID || !c.full.HasOutgoing(id) {
		c.mu.Unlock()
		c.logger.Debug("promote ignored", "session", c.name, "node", id)
		return false, nil
	}
	from := c.state.RootID
	g := c.full
	c.state.RootID = id
	gen, kind := c.beginLocked()
	c.mu.Unlock()

	sub := view.Project(g, id, c.logger)
	resetPositions(sub)
	snap, committed := c.layoutAndCommit(ctx, gen, sub, kind)
	if committed {
		c.publish(ctx, events.TopicViewPromoted, events.ViewPromoted{
			Session:  c.name,
			FromRoot: from,
			RootID:   id,
			Visible:  len(snap.View.Nodes),
		})
	}
	return true, nil
}

// SetLayout re-lays the current view with kind. Current positions are
// passed to the engine as hints. With no graph loaded only the kind is
// recorded. It returns [ErrBusy] while a layout is in flight.
func (c *Controller) SetLayout(ctx context.Context, kind layout.Kind) error {
	if !kind.Valid() {
		return errors.New(errors.ErrCodeInvalidLayout, "unknown layout kind %q", kind)
	}

	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state.Layout = kind
	if c.full == nil {
		c.mu.Unlock()
		return nil
	}
	sub := c.visible.Clone()
	if sub.IsEmpty() {
		sub = view.Project(c.full, c.state.RootID, c.logger)
	}
	gen, _ := c.beginLockedKeepView()
	c.mu.Unlock()

	snap, committed := c.layoutAndCommit(ctx, gen, sub, kind)
	if committed {
		positioned := 0
		if snap.LayoutError == "" {
			positioned = len(snap.View.Nodes)
		}
		c.publish(ctx, events.TopicViewLayout, events.ViewLayout{
			Session:    c.name,
			RootID:     snap.RootID,
			Layout:     string(kind),
			Positioned: positioned,
			Failed:     snap.LayoutError != "",
		})
	}
	return nil
}

// Clear discards the full graph and returns to the empty state. It returns
// [ErrBusy] while a layout is in flight.
func (c *Controller) Clear(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.full = nil
	c.state.RootID = ""
	c.state.Layout = c.initial
	c.state.Generation++
	c.visible = view.Empty()
	c.layoutErr = ""
	c.emitLocked()
	c.mu.Unlock()

	c.publish(ctx, events.TopicViewCleared, events.ViewCleared{Session: c.name})
	c.logger.Debug("cleared graph", "session", c.name)
	return nil
}

// =============================================================================
// Internals
// =============================================================================

// beginLocked starts a transition: a new generation, the busy flag, and an
// empty view shown to the sink.
func (c *Controller) beginLocked() (uint64, layout.Kind) {
	gen, kind := c.beginLockedKeepView()
	c.visible = view.Empty()
	c.emitLocked()
	return gen, kind
}

func (c *Controller) beginLockedKeepView() (uint64, layout.Kind) {
	c.state.Generation++
	c.state.Busy = true
	c.layoutErr = ""
	return c.state.Generation, c.state.Layout
}

// layoutAndCommit runs the layout unlocked and commits the result if gen is
// still current. It reports whether the result was committed.
func (c *Controller) layoutAndCommit(ctx context.Context, gen uint64, sub view.Subgraph, kind layout.Kind) (Snapshot, bool) {
	nodes, err := c.layouter.Layout(ctx, sub, kind, c.overrides[kind])

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Generation != gen {
		observability.Layout().OnLayoutDiscarded(ctx, string(kind))
		c.logger.Debug("discarded stale layout", "session", c.name, "generation", gen, "current", c.state.Generation)
		return Snapshot{}, false
	}

	c.state.Busy = false
	if err != nil {
		c.layoutErr = err.Error()
		c.visible = sub
		c.logger.Warn("layout failed, keeping placeholder positions", "session", c.name, "kind", kind, "err", err)
	} else {
		sub.Nodes = nodes
		c.visible = sub
	}
	c.emitLocked()
	return c.snapshotLocked(), true
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{State: c.state, View: c.visible.Clone(), LayoutError: c.layoutErr}
}

func (c *Controller) emitLocked() {
	if c.sink != nil {
		c.sink.Show(c.snapshotLocked())
	}
}

func (c *Controller) publish(ctx context.Context, topic string, event any) {
	if err := c.publisher.Publish(ctx, topic, event); err != nil {
		c.logger.Warn("publish failed", "topic", topic, "err", err)
	}
}

func resetPositions(sub view.Subgraph) {
	for i := range sub.Nodes {
		sub.Nodes[i].Position = graph.Point{}
	}
}
