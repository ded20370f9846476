package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrCodeTaken = errors.New("game code already in use")
)

// entry pairs a session with the mutex that guards it. The outer store lock
// only protects the maps; per-session state is guarded here so a slow write
// to one game never blocks another.
type entry struct {
	mu      sync.Mutex
	session *engine.GameSession
}

// Store is the in-memory session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	codes    map[string]string // uppercase join code -> session ID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entry),
		codes:    make(map[string]string),
	}
}

// Insert registers a new session. It fails with ErrCodeTaken when another
// live session already owns the same join code, so callers can re-roll the
// code and retry.
func (s *Store) Insert(gs *engine.GameSession) error {
	code := strings.ToUpper(gs.Code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[code]; exists {
		return ErrCodeTaken
	}
	s.sessions[gs.ID] = &entry{session: gs}
	s.codes[code] = gs.ID
	return nil
}

// Get returns the session with the given ID.
func (s *Store) Get(id string) (*engine.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}
	return e.session, nil
}

// GetByCode returns the session with the given join code, matched
// case-insensitively.
func (s *Store) GetByCode(code string) (*engine.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.codes[strings.ToUpper(code)]
	if !exists {
		return nil, ErrNotFound
	}
	return s.sessions[id].session, nil
}

// WithLock runs fn with exclusive access to the session's state. This is the
// only sanctioned way to mutate a session after Insert. The store's own lock
// is released before fn runs, so fn may be slow without stalling other
// sessions, but it must not call back into the store.
func (s *Store) WithLock(id string, fn func(*engine.GameSession) error) error {
	s.mu.RLock()
	e, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Remove deletes a session and frees its join code.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.sessions[id]
	if !exists {
		return ErrNotFound
	}
	delete(s.sessions, id)
	delete(s.codes, strings.ToUpper(e.session.Code))
	return nil
}

// List returns all live sessions.
func (s *Store) List() []*engine.GameSession {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*engine.GameSession, 0, len(s.sessions))
	for _, e := range s.sessions {
		result = append(result, e.session)
	}
	return result
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions whose last activity is older than maxInactive and
// returns the IDs it removed. The stale check and the map deletion happen
// under the same per-session lock, so a WithLock mutation that touches the
// session can never interleave between check and removal. Lock order is
// entry then store; WithLock never waits on an entry while holding the
// store lock, so the orders cannot cycle.
func (s *Store) Sweep(maxInactive time.Duration) []string {
	cutoff := time.Now().Add(-maxInactive)

	s.mu.RLock()
	candidates := make(map[string]*entry)
	for id, e := range s.sessions {
		candidates[id] = e
	}
	s.mu.RUnlock()

	var removed []string
	for id, e := range candidates {
		e.mu.Lock()
		if e.session.LastActivity.Before(cutoff) {
			s.mu.Lock()
			if cur, ok := s.sessions[id]; ok && cur == e {
				delete(s.sessions, id)
				delete(s.codes, strings.ToUpper(e.session.Code))
				removed = append(removed, id)
			}
			s.mu.Unlock()
		}
		e.mu.Unlock()
	}
	return removed
}
