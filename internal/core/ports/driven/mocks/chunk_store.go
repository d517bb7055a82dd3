package mocks

import (
	"context"
	"strconv"
	"sync"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// MockChunkStore is an in-memory ChunkStore for testing. It preserves
// insertion order, the way the real store does.
type MockChunkStore struct {
	mu     sync.RWMutex
	chunks []*domain.Chunk
	nextID int

	// FailNext makes the next call return the given error, then resets.
	FailNext error
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{nextID: 1}
}

func (m *MockChunkStore) failNext() error {
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return err
	}
	return nil
}

func (m *MockChunkStore) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	m.chunks = nil
	return nil
}

func (m *MockChunkStore) InsertBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext(); err != nil {
		return err
	}
	for _, chunk := range chunks {
		clone := *chunk
		clone.ID = strconv.Itoa(m.nextID)
		chunk.ID = clone.ID
		m.nextID++
		m.chunks = append(m.chunks, &clone)
	}
	return nil
}

func (m *MockChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out, nil
}

func (m *MockChunkStore) ByDocuments(ctx context.Context, documentIDs []string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wanted := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}
	var out []*domain.Chunk
	for _, chunk := range m.chunks {
		if _, ok := wanted[chunk.DocumentID]; ok {
			out = append(out, chunk)
		}
	}
	return out, nil
}

func (m *MockChunkStore) UpdateNorm(ctx context.Context, chunkID string, norm float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, chunk := range m.chunks {
		if chunk.ID == chunkID {
			n := norm
			chunk.EmbeddingNorm = &n
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MockChunkStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}
