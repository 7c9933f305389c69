package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "academx_session"

type session struct {
	username  string
	expiresAt time.Time
}

// SessionManager issues and resolves opaque session tokens. Sessions are
// process-lifetime only, like the original deployment: a restart logs
// everyone out.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionManager creates a manager whose sessions expire after ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a fresh token bound to the username.
func (m *SessionManager) Create(username string) string {
	token := uuid.New().String()

	m.mu.Lock()
	m.sessions[token] = &session{
		username:  username,
		expiresAt: m.now().Add(m.ttl),
	}
	m.mu.Unlock()

	return token
}

// Lookup resolves a token to its username. Expired tokens are removed on
// the way out.
func (m *SessionManager) Lookup(token string) (string, bool) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()

	if !ok {
		return "", false
	}
	if m.now().After(s.expiresAt) {
		m.Destroy(token)
		return "", false
	}
	return s.username, true
}

// Destroy invalidates a token. Unknown tokens are a no-op.
func (m *SessionManager) Destroy(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Rename rebinds every live session for oldName to newName, so a
// username change does not log the user out.
func (m *SessionManager) Rename(oldName, newName string) {
	m.mu.Lock()
	for _, s := range m.sessions {
		if s.username == oldName {
			s.username = newName
		}
	}
	m.mu.Unlock()
}

// Count returns the number of live sessions, expired included until
// their next lookup.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
