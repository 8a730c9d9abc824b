package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("session not found")

// SessionFactory builds the service backing a new session
type SessionFactory func() *SessionService

type storedSession struct {
	service  *SessionService
	lastUsed time.Time
}

// SessionStore keeps the live browse sessions in memory
type SessionStore struct {
	mu       sync.Mutex
	factory  SessionFactory
	sessions map[uuid.UUID]*storedSession
	idleTTL  time.Duration
	now      func() time.Time
}

// NewSessionStore creates a store. Sessions unused for idleTTL are pruned
// on the next Create; a zero idleTTL keeps them until deleted.
func NewSessionStore(factory SessionFactory, idleTTL time.Duration) *SessionStore {
	return &SessionStore{
		factory:  factory,
		sessions: make(map[uuid.UUID]*storedSession),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create starts a new session
func (s *SessionStore) Create() (uuid.UUID, *SessionService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked()
	id := uuid.New()
	svc := s.factory()
	s.sessions[id] = &storedSession{service: svc, lastUsed: s.now()}
	return id, svc
}

// Get returns the session with id and marks it used
func (s *SessionStore) Get(id uuid.UUID) (*SessionService, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.sessions[id]
	if !ok || s.expiredLocked(stored) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	stored.lastUsed = s.now()
	return stored.service, nil
}

// Delete ends a session
func (s *SessionStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) expiredLocked(stored *storedSession) bool {
	return s.idleTTL > 0 && s.now().Sub(stored.lastUsed) >= s.idleTTL
}

func (s *SessionStore) pruneLocked() {
	for id, stored := range s.sessions {
		if s.expiredLocked(stored) {
			delete(s.sessions, id)
		}
	}
}
