package preference

import (
	"context"
	"strconv"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
)

// KeyPrefix namespaces preference blobs in the store.
const KeyPrefix = "able_user_preferences:"

// DefaultIdleTimeout is how long an unused session stays in memory.
const DefaultIdleTimeout = 30 * time.Minute

// Key is the store key for a user's preferences.
func Key(userID int) string {
	return KeyPrefix + strconv.Itoa(userID)
}

type session struct {
	model    *Model
	lastUsed time.Time
}

// Sessions hands out one Model per user, loading it on first use. Sessions
// idle longer than the idle timeout are closed by EvictIdle and reloaded from
// the store on the next request.
type Sessions struct {
	store Store
	bus   evbus.Bus
	idle  time.Duration
	now   func() time.Time

	mu      sync.Mutex
	models  map[int]*session
	closing map[int]*Model
}

type SessionsOption func(*Sessions)

// WithIdleTimeout sets the idle window; non-positive values keep the default.
func WithIdleTimeout(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithSessionClock replaces time.Now for idle tracking.
func WithSessionClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// NewSessions creates a registry; bus may be nil.
func NewSessions(store Store, bus evbus.Bus, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		store:   store,
		bus:     bus,
		idle:    DefaultIdleTimeout,
		now:     time.Now,
		models:  map[int]*session{},
		closing: map[int]*Model{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sessions) Get(ctx context.Context, userID int) *Model {
	s.mu.Lock()
	for {
		if sess, ok := s.models[userID]; ok {
			sess.lastUsed = s.now()
			s.mu.Unlock()
			return sess.model
		}
		old, ok := s.closing[userID]
		if !ok {
			break
		}
		// the evicted model must flush before the store is read again
		s.mu.Unlock()
		<-old.done
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	var opts []ModelOption
	if s.bus != nil {
		opts = append(opts, WithEvents(s.bus))
	}
	m := Open(ctx, Key(userID), s.store, opts...)
	s.models[userID] = &session{model: m, lastUsed: s.now()}
	return m
}

// Len reports the number of sessions held in memory.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.models)
}

// EvictIdle closes every session unused for longer than the idle timeout and
// returns how many were closed.
func (s *Sessions) EvictIdle() int {
	cutoff := s.now().Add(-s.idle)
	s.mu.Lock()
	evicted := map[int]*Model{}
	for id, sess := range s.models {
		if sess.lastUsed.Before(cutoff) {
			evicted[id] = sess.model
			s.closing[id] = sess.model
			delete(s.models, id)
		}
	}
	s.mu.Unlock()

	for _, m := range evicted {
		m.Close()
	}

	s.mu.Lock()
	for id, m := range evicted {
		if s.closing[id] == m {
			delete(s.closing, id)
		}
	}
	s.mu.Unlock()
	return len(evicted)
}

// Close flushes and stops every open model.
func (s *Sessions) Close() {
	s.mu.Lock()
	models := s.models
	s.models = map[int]*session{}
	s.mu.Unlock()
	for _, sess := range models {
		sess.model.Close()
	}
}
