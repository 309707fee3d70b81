package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Store holds the orchestrators of the running process keyed by session id.
type Store struct {
	deps Deps

	mu       sync.RWMutex
	sessions map[string]*Orchestrator
	latest   string
}

// NewStore creates an empty store whose sessions share deps.
func NewStore(deps Deps) (*Store, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Store{
		deps:     deps,
		sessions: make(map[string]*Orchestrator),
	}, nil
}

// Start sets up a new session and makes it the latest one.
func (s *Store) Start(ctx context.Context, req SetupRequest) (*Orchestrator, error) {
	o, err := New(s.deps)
	if err != nil {
		return nil, err
	}
	if _, err := o.Setup(ctx, req); err != nil {
		return nil, fmt.Errorf("setup session: %w", err)
	}

	s.mu.Lock()
	s.sessions[o.ID()] = o
	s.latest = o.ID()
	s.mu.Unlock()

	return o, nil
}

// Get returns the session with id.
func (s *Store) Get(id string) (*Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return o, nil
}

// Latest returns the most recently started session still in the store.
func (s *Store) Latest() (*Orchestrator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.sessions[s.latest]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return o, nil
}

// Resolve looks up id, or the latest session when id is blank.
func (s *Store) Resolve(id string) (*Orchestrator, error) {
	if id = strings.TrimSpace(id); id != "" {
		return s.Get(id)
	}
	return s.Latest()
}

// Abandon terminates the session and drops it from the store.
func (s *Store) Abandon(ctx context.Context, id string) (Reply, error) {
	s.mu.Lock()
	o, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return Reply{}, ErrSessionNotFound
	}
	delete(s.sessions, id)
	if s.latest == id {
		s.latest = ""
	}
	s.mu.Unlock()

	return o.Terminate(ctx), nil
}

// Len is the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
