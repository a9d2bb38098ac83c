// Package session ties one user's submissions to one navigation
// controller.
//
// A [Session] keeps the last ingestion response, the view mode (the JSON
// graph or the raw-text graph) and the [nav.Controller] exploring it. A
// [Store] holds sessions in memory, bounded in count and idle time; graphs
// are never persisted.
//
// # Usage
//
//	store := session.NewStore(func(id string) *session.Session {
//	    return session.New(id, ingestor, nav.New(adapter))
//	}, session.DefaultCapacity, session.DefaultTTL)
//
//	sess := store.Create()
//	sess.Submit(ctx, "explain monads")
//	sess.Promote(ctx, "node-3")
//	sess.Toggle(ctx) // raw text of the same response
package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/ingest"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/nav"
)

// Mode selects how the last response is shown.
type Mode string

const (
	ModeJSON Mode = "json"
	ModeRaw  Mode = "raw"
)

// Errors returned by session operations.
var (
	// ErrSubmitting is returned when a submission is already in flight.
	ErrSubmitting = huherrors.New(huherrors.ErrCodeBusy, "submission in progress")

	// ErrNoResponse is returned by Toggle before anything was submitted.
	ErrNoResponse = huherrors.New(huherrors.ErrCodeInvalidInput, "nothing submitted yet")

	// ErrNoValidJSON is returned when switching to the JSON view of a
	// response that has none.
	ErrNoValidJSON = huherrors.New(huherrors.ErrCodeInvalidInput, "No valid JSON available to display.")
)

// View is what a client renders: the controller snapshot plus the mode.
type View struct {
	nav.Snapshot
	Session     string `json:"session"`
	Mode        Mode   `json:"mode"`
	HasResponse bool   `json:"hasResponse"`
	IsValidJSON bool   `json:"isValidJson"`
	Submitting  bool   `json:"submitting"`
}

// Session is one user's exploration. It is safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time

	ingestor  ingest.Ingestor
	ctrl      *nav.Controller
	graphOpts []graph.Option
	logger    *log.Logger

	mu         sync.Mutex
	last       *ingest.Response
	mode       Mode
	submitting bool
	subs       map[int]chan View
	nextSub    int
}

// Option configures a Session.
type Option func(*Session)

// WithGraphOptions sets the options used to materialize responses.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(s *Session) { s.graphOpts = opts }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New returns a session that ingests with ing and navigates with ctrl.
// The session registers itself as ctrl's sink; ctrl must not have another.
func New(id string, ing ingest.Ingestor, ctrl *nav.Controller, opts ...Option) *Session {
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		ingestor:  ing,
		ctrl:      ctrl,
		mode:      ModeJSON,
		subs:      make(map[int]chan View),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	ctrl.SetSink(s)
	return s
}

// =============================================================================
// Operations
// =============================================================================

// Submit ingests text and loads the result. A response without valid JSON
// is loaded as the raw-text graph and the session switches to raw mode.
// Ingestion failures leave the current graph untouched. A second Submit
// while one is in flight fails with [ErrSubmitting].
func (s *Session) Submit(ctx context.Context, text string) (*ingest.Response, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitting
	}
	s.submitting = true
	s.mu.Unlock()
	s.broadcast(s.ctrl.View())

	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
		s.broadcast(s.ctrl.View())
	}()

	resp, err := s.ingestor.Ingest(ctx, text)
	if err != nil {
		s.logger.Warn("ingestion failed", "session", s.ID, "err", err)
		return nil, err
	}

	mode := ModeJSON
	g := resp.Graph(s.graphOpts...)
	if !resp.IsValidJSON {
		mode = ModeRaw
	}

	s.mu.Lock()
	s.last = resp
	s.mode = mode
	s.mu.Unlock()

	if err := s.ctrl.Load(ctx, g); err != nil {
		return nil, err
	}
	return resp, nil
}

// LoadResponse shows resp as if it had just been submitted.
func (s *Session) LoadResponse(ctx context.Context, resp *ingest.Response) error {
	mode := ModeJSON
	if !resp.IsValidJSON {
		mode = ModeRaw
	}
	s.mu.Lock()
	s.last = resp
	s.mode = mode
	s.mu.Unlock()
	return s.ctrl.Load(ctx, resp.Graph(s.graphOpts...))
}

// Toggle switches between the JSON graph and the raw-text graph of the last
// response and returns the new mode. The layout kind is kept.
func (s *Session) Toggle(ctx context.Context) (Mode, error) {
	if s.ctrl.Busy() {
		return "", nav.ErrBusy
	}

	s.mu.Lock()
	resp, mode := s.last, s.mode
	s.mu.Unlock()

	if resp == nil {
		return mode, ErrNoResponse
	}

	var g *graph.Graph
	next := ModeRaw
	if mode == ModeRaw {
		if !resp.IsValidJSON {
			return mode, ErrNoValidJSON
		}
		next = ModeJSON
		g = graph.Materialize(resp.Result, s.graphOpts...)
	} else {
		g = resp.RawGraph()
	}

	s.mu.Lock()
	s.mode = next
	s.mu.Unlock()

	if err := s.ctrl.Load(ctx, g, nav.KeepLayout()); err != nil {
		return mode, err
	}
	return next, nil
}

// Promote makes id the root of the view. See [nav.Controller.Promote].
func (s *Session) Promote(ctx context.Context, id string) (bool, error) {
	if err := huherrors.ValidateNodeID(id); err != nil {
		return false, err
	}
	return s.ctrl.Promote(ctx, id)
}

// SetLayout re-lays the view with kind.
func (s *Session) SetLayout(ctx context.Context, kind layout.Kind) error {
	return s.ctrl.SetLayout(ctx, kind)
}

// Clear drops the graph and the last response.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return ErrSubmitting
	}
	s.mu.Unlock()

	if err := s.ctrl.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.last = nil
	s.mode = ModeJSON
	s.mu.Unlock()
	s.broadcast(s.ctrl.View())
	return nil
}

// Response returns the last ingestion response, or nil.
func (s *Session) Response() *ingest.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Graph returns the full graph being explored, or nil.
func (s *Session) Graph() *graph.Graph { return s.ctrl.Graph() }

// View returns the current view.
func (s *Session) View() View {
	return s.compose(s.ctrl.View())
}

// =============================================================================
// Subscriptions
// =============================================================================

// Subscribe returns a channel receiving every committed view and a function
// that ends the subscription. Slow subscribers miss intermediate views.
func (s *Session) Subscribe() (<-chan View, func()) {
	ch := make(chan View, 16)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Show implements [nav.Sink].
func (s *Session) Show(snap nav.Snapshot) { s.broadcast(snap) }

func (s *Session) broadcast(snap nav.Snapshot) {
	v := s.compose(snap)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func (s *Session) compose(snap nav.Snapshot) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		Snapshot:    snap,
		Session:     s.ID,
		Mode:        s.mode,
		HasResponse: s.last != nil,
		Submitting:  s.submitting,
	}
	if s.last != nil {
		v.IsValidJSON = s.last.IsValidJSON
	}
	return v
}
