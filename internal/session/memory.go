package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[int64]Session
}

// MemoryOption customizes a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemoryStore constructs an empty store. A non-positive ttl selects DefaultTTL.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[int64]Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the live session for id. Expired entries are dropped on access.
func (m *MemoryStore) Get(_ context.Context, id int64) (Session, bool, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return Session{}, false, nil
	}
	if s.Expired(m.now()) {
		m.mu.Lock()
		// re-check: a concurrent Put may have refreshed it
		if cur, still := m.sessions[id]; still && cur.Expired(m.now()) {
			delete(m.sessions, id)
		}
		m.mu.Unlock()
		return Session{}, false, nil
	}
	return s, true, nil
}

func (m *MemoryStore) Put(_ context.Context, id int64, s Session) error {
	s.ExpiresAt = m.now().Add(m.ttl)
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Sweep(_ context.Context) (int, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
