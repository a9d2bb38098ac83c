// Package events publishes view lifecycle events to external listeners.
package events

import (
	"context"
	"sync"
)

// Event topic constants
const (
	TopicViewLoaded   = "huh.view.loaded"
	TopicViewPromoted = "huh.view.promoted"
	TopicViewCleared  = "huh.view.cleared"
	TopicViewLayout   = "huh.view.layout"

	TopicIngestCompleted = "huh.ingest.completed"
)

// Event types

type ViewLoaded struct {
	Session string `json:"session,omitempty"`
	RootID  string `json:"root_id"`
	Nodes   int    `json:"nodes"`
	Layout  string `json:"layout"`
}

type ViewPromoted struct {
	Session  string `json:"session,omitempty"`
	FromRoot string `json:"from_root"`
	RootID   string `json:"root_id"`
	Visible  int    `json:"visible"`
}

type ViewCleared struct {
	Session string `json:"session,omitempty"`
}

type ViewLayout struct {
	Session    string `json:"session,omitempty"`
	RootID     string `json:"root_id"`
	Layout     string `json:"layout"`
	Positioned int    `json:"positioned"`
	Failed     bool   `json:"failed,omitempty"`
}

type IngestCompleted struct {
	Session     string `json:"session,omitempty"`
	Model       string `json:"model"`
	IsValidJSON bool   `json:"is_valid_json"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// NoopPublisher is a Publisher that does nothing (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}

// Message is one event captured by a [Recorder].
type Message struct {
	Topic string
	Event any
}

// Recorder keeps every published event in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Publish(ctx context.Context, topic string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Topic: topic, Event: event})
	return nil
}

func (r *Recorder) Close() error {
	return nil
}

// Messages returns a copy of the recorded events in publish order.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Topics returns the topics of the recorded events in publish order.
func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	for i, m := range r.messages {
		out[i] = m.Topic
	}
	return out
}
