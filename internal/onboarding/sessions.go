package onboarding

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or discarded session ids
var ErrSessionNotFound = errors.New("onboarding session not found")

// Session pairs an engine with its owner for the duration of one dialogue
type Session struct {
	ID        string
	UserID    uint
	Engine    *Engine
	CreatedAt time.Time
}

// SessionManager tracks live sessions by id. Engines hold no cross-session
// state, so the map is the only shared structure and carries its own lock.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionManager creates an empty manager
func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// Create registers a new session for a user
func (m *SessionManager) Create(userID uint, engine *Engine) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Engine:    engine,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Restore registers an engine under an existing session id, used when a
// dialogue is rebuilt from its persisted transcript after the in-memory
// session was lost.
func (m *SessionManager) Restore(id string, userID uint, engine *Engine) *Session {
	s := &Session{
		ID:        id,
		UserID:    userID,
		Engine:    engine,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by id
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove discards a session once its profile has been handed off, or when
// the surface abandons it.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
