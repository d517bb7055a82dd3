package mocks

import (
	"context"
	"hash/fnv"
	"sync"
)

// MockEmbeddingService is a mock implementation of EmbeddingService for
// testing. By default it derives a deterministic vector from the text hash;
// specific texts can be pinned to hand-set vectors with SetVector.
type MockEmbeddingService struct {
	mu         sync.Mutex
	dimensions int
	model      string
	vectors    map[string][]float64
	calls      int

	// FailNext makes the next embedding call return the given error, then
	// resets.
	FailNext error
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{
		dimensions: 3,
		model:      "mock-embedding-model",
		vectors:    make(map[string][]float64),
	}
}

// SetVector pins the embedding returned for an exact input text.
func (m *MockEmbeddingService) SetVector(text string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vector
	if len(vector) > 0 {
		m.dimensions = len(vector)
	}
}

// Calls returns the number of embedding calls made (batch and single).
func (m *MockEmbeddingService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return nil, err
	}
	result := make([][]float64, len(texts))
	for i, text := range texts {
		if text == "" {
			result[i] = nil
			continue
		}
		result[i] = m.vectorFor(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedText(ctx context.Context, text string) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return nil, err
	}
	return m.vectorFor(text), nil
}

func (m *MockEmbeddingService) vectorFor(text string) []float64 {
	if v, ok := m.vectors[text]; ok {
		return v
	}
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()
	vector := make([]float64, m.dimensions)
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		vector[i] = float64(int64(seed>>33))/float64(1<<30) - 1
	}
	return vector
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}
