package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskType identifies the type of background task
type TaskType string

const (
	// TaskTypeRebuildIndex rebuilds the knowledge chunk index from scratch
	TaskTypeRebuildIndex TaskType = "rebuild_index"
	// TaskTypeWebhookEvent processes a realtime tool webhook event
	TaskTypeWebhookEvent TaskType = "webhook_event"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task represents a background job to be processed by workers.
type Task struct {
	ID   string   `json:"id"`
	Type TaskType `json:"type"`

	// Payload carries task-specific data.
	// For webhook_event: the JSON-encoded WebhookEvent.
	// For rebuild_index: empty.
	Payload json.RawMessage `json:"payload,omitempty"`

	Status TaskStatus `json:"status"`

	// Attempts is how many times this task has been attempted
	Attempts int `json:"attempts"`

	// MaxAttempts is the maximum retry count before giving up
	MaxAttempts int `json:"max_attempts"`

	// Error contains the last error message if failed
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ScheduledFor is when the task should be processed (for delayed tasks)
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewTask creates a new task with default values.
func NewTask(taskType TaskType, payload json.RawMessage) *Task {
	now := time.Now()
	return &Task{
		ID:           uuid.NewString(),
		Type:         taskType,
		Payload:      payload,
		Status:       TaskStatusPending,
		Attempts:     0,
		MaxAttempts:  3,
		CreatedAt:    now,
		UpdatedAt:    now,
		ScheduledFor: now,
	}
}

// NewRebuildIndexTask creates a task that triggers a full index rebuild.
func NewRebuildIndexTask() *Task {
	return NewTask(TaskTypeRebuildIndex, nil)
}

// NewWebhookEventTask creates a task carrying a realtime webhook event.
func NewWebhookEventTask(event *WebhookEvent) (*Task, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return NewTask(TaskTypeWebhookEvent, payload), nil
}

// WebhookEvent decodes the payload of a webhook_event task.
func (t *Task) WebhookEvent() (*WebhookEvent, error) {
	if t.Type != TaskTypeWebhookEvent || len(t.Payload) == 0 {
		return nil, ErrInvalidInput
	}
	var event WebhookEvent
	if err := json.Unmarshal(t.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
