// Package sessions keeps one booking controller per visitor in memory.
// Nothing survives a restart; idle sessions are treated as abandoned.
package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sadonamonday/crtvsite/internal/booking"
	"github.com/sadonamonday/crtvsite/pkg/logging"
)

const defaultIdleTimeout = 30 * time.Minute

// Factory builds the controller of a new session. It typically loads the
// catalog, so it receives the creating request's context.
type Factory func(ctx context.Context) *booking.Controller

type entry struct {
	controller *booking.Controller
	lastSeen   time.Time
}

// Store maps session IDs to controllers.
type Store struct {
	mu          sync.Mutex
	sessions    map[string]*entry
	factory     Factory
	idleTimeout time.Duration
	now         func() time.Time
	logger      *logging.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store. A non-positive idleTimeout uses 30m.
func NewStore(factory Factory, idleTimeout time.Duration, logger *logging.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	if idleTimeout <= 0 {
		idleTimeout = defaultIdleTimeout
	}
	s := &Store{
		sessions:    make(map[string]*entry),
		factory:     factory,
		idleTimeout: idleTimeout,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session.
func (s *Store) Create(ctx context.Context) (string, *booking.Controller) {
	ctrl := s.factory(ctx)
	id := uuid.NewString()

	s.mu.Lock()
	s.sessions[id] = &entry{controller: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Debug("booking session created", "session_id", id)
	return id, ctrl
}

// Get returns the session's controller and marks it as active.
func (s *Store) Get(id string) (*booking.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.controller, true
}

// Delete abandons a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the idle timeout and returns
// how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTimeout)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = s.idleTimeout / 2
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Info("abandoned booking sessions dropped", "count", n)
			}
		}
	}
}
