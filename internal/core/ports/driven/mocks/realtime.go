package mocks

import (
	"context"
	"sync"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// FunctionResult records one SendFunctionResult call.
type FunctionResult struct {
	SessionID string
	CallID    string
	Text      string
	Data      map[string]any
}

// MockRealtimeClient is a mock implementation of RealtimeClient for testing.
type MockRealtimeClient struct {
	mu      sync.Mutex
	secret  *domain.ClientSecret
	results []FunctionResult

	// CreateErr / SendErr force the corresponding call to fail.
	CreateErr error
	SendErr   error
}

// NewMockRealtimeClient creates a new MockRealtimeClient
func NewMockRealtimeClient() *MockRealtimeClient {
	return &MockRealtimeClient{
		secret: &domain.ClientSecret{
			Value:     "ek_test_secret",
			ExpiresAt: 4102444800,
			Session: map[string]any{
				"id":                "sess_mock",
				"output_modalities": []any{"audio"},
			},
		},
	}
}

// SetSecret overrides the secret returned by CreateClientSecret.
func (m *MockRealtimeClient) SetSecret(secret *domain.ClientSecret) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secret = secret
}

func (m *MockRealtimeClient) CreateClientSecret(ctx context.Context, overrides, metadata map[string]any) (*domain.ClientSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	clone := *m.secret
	return &clone, nil
}

func (m *MockRealtimeClient) SendFunctionResult(ctx context.Context, sessionID, callID, text string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.results = append(m.results, FunctionResult{
		SessionID: sessionID,
		CallID:    callID,
		Text:      text,
		Data:      data,
	})
	return nil
}

// Results returns the recorded function results.
func (m *MockRealtimeClient) Results() []FunctionResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FunctionResult, len(m.results))
	copy(out, m.results)
	return out
}
