// Package nav owns the navigation state of one explored graph.
//
// # States
//
// A [Controller] is either empty (no graph loaded) or rooted at one node of
// its full graph. The visible view is always the projection of the current
// root: the root and its direct children.
//
//	c := nav.New(layout.NewAdapter(layout.NewGraphvizEngine(), logger))
//	c.Load(ctx, g)              // rooted at g's root
//	c.Promote(ctx, "node-2")    // rooted at node-2, if it has children
//	c.Clear()                   // empty
//
// # Transitions
//
//   - Load replaces the full graph and roots it at the graph's root node.
//   - Promote moves the root to a node that has children and is not the
//     current root. Any other node is a silent no-op.
//   - SetLayout re-lays the current view with another layout kind.
//   - Clear discards the graph.
//
// # Busy Flag
//
// Layout runs without the controller lock held. While one is in flight
// Promote, SetLayout and Clear fail with [ErrBusy]. Load is never rejected;
// it supersedes whatever was in flight.
//
// Every layout request carries the generation it was issued under. A result
// that arrives after a later transition is dropped rather than applied.
//
// # Sinks
//
// A [Sink] receives every committed view, including the empty view that a
// promotion shows before the new projection is laid out. Renderers key
// elements by node ID, so the empty step forces them to drop stale
// positions.
package nav
