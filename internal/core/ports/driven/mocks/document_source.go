package mocks

import (
	"context"
	"sync"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// MockDocumentSource is a mock implementation of DocumentSource for testing.
type MockDocumentSource struct {
	mu        sync.Mutex
	documents []domain.Document
	facts     domain.FactTable
	loads     int

	// FailNext makes the next Load return the given error, then resets.
	FailNext error
}

// NewMockDocumentSource creates a source yielding the given documents and facts.
func NewMockDocumentSource(documents []domain.Document, facts domain.FactTable) *MockDocumentSource {
	if facts == nil {
		facts = domain.FactTable{}
	}
	return &MockDocumentSource{documents: documents, facts: facts}
}

func (m *MockDocumentSource) Load(ctx context.Context) ([]domain.Document, domain.FactTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return nil, nil, err
	}
	docs := make([]domain.Document, len(m.documents))
	copy(docs, m.documents)
	return docs, m.facts, nil
}

// Loads returns how many times Load was called.
func (m *MockDocumentSource) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}
