package store

import (
	"context"
	"sync"
	"time"

	"storepos/checkout"
)

// MemorySessions is a SessionStore for a single process. It stores clones so
// callers never share state with the store.
type MemorySessions struct {
	mu       sync.RWMutex
	sessions map[string]*checkout.Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]*checkout.Session)}
}

func (m *MemorySessions) Create(_ context.Context, s *checkout.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.Version = 1
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemorySessions) Get(_ context.Context, id string) (*checkout.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

func (m *MemorySessions) Update(_ context.Context, s *checkout.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.sessions[s.ID]
	if !ok {
		return ErrSessionNotFound
	}
	if cur.Version != s.Version {
		return ErrVersionConflict
	}
	s.Version++
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessions) DeleteIdle(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(before) && s.Status != checkout.StatusProcessing {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}
