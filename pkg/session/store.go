package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
)

const (
	// DefaultCapacity bounds the number of live sessions.
	DefaultCapacity = 1024

	// DefaultTTL is how long an untouched session is kept.
	DefaultTTL = 2 * time.Hour
)

// Factory builds a session for a freshly minted ID.
type Factory func(id string) *Session

// Store keeps sessions in memory. The least recently used session is
// evicted when capacity is reached, and idle sessions expire after the TTL.
type Store struct {
	factory Factory
	lru     *expirable.LRU[string, *Session]
}

// NewStore returns a store creating sessions with factory.
func NewStore(factory Factory, capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		factory: factory,
		lru:     expirable.NewLRU[string, *Session](capacity, nil, ttl),
	}
}

// Create mints a new session.
func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := s.factory(id)
	s.lru.Add(id, sess)
	return sess
}

// Get returns the session with id and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.lru.Get(id)
	if !ok {
		return nil, huherrors.New(huherrors.ErrCodeSessionNotFound, "session not found: %s", id)
	}
	s.lru.Add(id, sess)
	return sess, nil
}

// Delete removes the session with id. It reports whether it existed.
func (s *Store) Delete(id string) bool {
	return s.lru.Remove(id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.lru.Len()
}
