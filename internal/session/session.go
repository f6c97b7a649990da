// Package session replaces the dashboard's ambient per-process state
// (login flag, theme flag, "already imported" marker) with an explicit
// session object scoped to one authenticated user.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the state of one logged-in user. The imported set is the
// import idempotency guard: it blocks accidental re-submission of the
// same upload within this session, not duplicate rows across uploads.
type Session struct {
	ID        string
	Username  string
	DarkMode  bool
	CreatedAt time.Time

	mu       sync.Mutex
	imported map[string]struct{}
}

// AlreadyImported reports whether an upload fingerprint was seen in
// this session.
func (s *Session) AlreadyImported(fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, seen := s.imported[fingerprint]
	return seen
}

// MarkImported records an upload fingerprint.
func (s *Session) MarkImported(fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.imported[fingerprint] = struct{}{}
}

// SetDarkMode flips the theme preference carried by the session.
func (s *Session) SetDarkMode(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DarkMode = on
}

// Manager tracks live sessions by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Create starts a fresh session for the given user.
func (m *Manager) Create(username string) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
		imported:  make(map[string]struct{}),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetOrCreate returns the session for id, minting a replacement under the
// same id when the server has restarted since the token was issued.
func (m *Manager) GetOrCreate(id, username string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := &Session{
		ID:        id,
		Username:  username,
		CreatedAt: time.Now().UTC(),
		imported:  make(map[string]struct{}),
	}
	m.sessions[id] = s
	return s
}

// Delete ends a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
