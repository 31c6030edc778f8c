package memory

import (
	"context"
	"sync"
	"time"

	"leadbot/internal/models"
	"leadbot/internal/storage"
)

// SessionStore keeps sessions in process memory. Sessions idle for longer
// than the TTL are invisible to Get and are removed by EvictIdle.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty store. A zero ttl disables idle expiry.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *SessionStore) expired(s *models.Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(s.UpdatedAt) > m.ttl
}

// Get returns a copy of the stored session
func (m *SessionStore) Get(ctx context.Context, id int64) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok || m.expired(s, m.now()) {
		return nil, storage.ErrNoSession
	}
	return s.Clone(), nil
}

// Save stores a copy of the session and refreshes its idle timer
func (m *SessionStore) Save(ctx context.Context, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := session.Clone()
	s.UpdatedAt = m.now()
	m.sessions[s.ID] = s
	return nil
}

// Delete removes a session
func (m *SessionStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// EvictIdle removes every session idle past the TTL and returns how many were removed
func (m *SessionStore) EvictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of stored sessions, including expired ones not yet evicted
func (m *SessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}

// Close does nothing for memory store
func (m *SessionStore) Close() error {
	return nil
}
