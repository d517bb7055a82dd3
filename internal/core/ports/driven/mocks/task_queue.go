package mocks

import (
	"context"
	"sync"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// MockTaskQueue is an in-memory TaskQueue for testing.
type MockTaskQueue struct {
	mu      sync.Mutex
	pending []*domain.Task
	byID    map[string]*domain.Task

	// FailNext makes the next Enqueue return the given error, then resets.
	FailNext error
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{byID: make(map[string]*domain.Task)}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.FailNext; err != nil {
		m.FailNext = nil
		return err
	}
	m.pending = append(m.pending, task)
	m.byID[task.ID] = task
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, nil
	}
	task := m.pending[0]
	m.pending = m.pending[1:]
	task.Status = domain.TaskStatusProcessing
	task.Attempts++
	return task, nil
}

func (m *MockTaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.byID[taskID]; ok {
		task.Status = domain.TaskStatusCompleted
		return nil
	}
	return domain.ErrNotFound
}

func (m *MockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.byID[taskID]
	if !ok {
		return domain.ErrNotFound
	}
	task.Error = reason
	if task.Attempts >= task.MaxAttempts {
		task.Status = domain.TaskStatusFailed
		return nil
	}
	task.Status = domain.TaskStatusPending
	m.pending = append(m.pending, task)
	return nil
}

func (m *MockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.byID[taskID]; ok {
		return task, nil
	}
	return nil, domain.ErrNotFound
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockTaskQueue) Close() error {
	return nil
}

// Pending returns the number of queued tasks.
func (m *MockTaskQueue) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}
