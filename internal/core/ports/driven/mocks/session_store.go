package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// MockSessionStore is an in-memory SessionStore for testing.
type MockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.RealtimeSession
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]*domain.RealtimeSession)}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.RealtimeSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *session
	m.sessions[session.SessionID] = &clone
	return nil
}

func (m *MockSessionStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.RealtimeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (m *MockSessionStore) UpdateStatus(ctx context.Context, sessionID, status string, metadata map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Status = status
	if session.Metadata == nil {
		session.Metadata = make(map[string]any)
	}
	for key, value := range metadata {
		session.Metadata[key] = value
	}
	session.UpdatedAt = time.Now()
	return nil
}
