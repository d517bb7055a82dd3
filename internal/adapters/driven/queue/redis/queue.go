// Package redis implements the task queue on a Redis list with per-task
// JSON records, suitable for the small task volume of a knowledge worker.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

const (
	pendingList   = "charlotte:tasks:pending"
	taskKeyPrefix = "charlotte:task:"

	// taskTTL bounds how long completed or abandoned task records linger.
	taskTTL = 24 * time.Hour
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// Queue implements TaskQueue using a Redis list. BRPOP gives blocking
// dequeue across instances; task state lives in per-task keys so GetTask
// works after the task leaves the list.
type Queue struct {
	client *redis.Client
}

// NewQueue creates a new Redis-backed task queue.
func NewQueue(client *redis.Client) (*Queue, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	return &Queue{client: client}, nil
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	task.Status = domain.TaskStatusPending
	task.UpdatedAt = time.Now()

	if err := q.saveTask(ctx, task); err != nil {
		return err
	}
	if err := q.client.LPush(ctx, pendingList, task.ID).Err(); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout pops the next task, blocking up to timeout seconds.
// Returns (nil, nil) when no task arrives in time.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	if timeout <= 0 {
		timeout = 1
	}

	values, err := q.client.BRPop(ctx, time.Duration(timeout)*time.Second, pendingList).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue task: %w", err)
	}
	// BRPOP returns [list, value]
	taskID := values[1]

	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatusProcessing
	task.Attempts++
	task.UpdatedAt = time.Now()
	if err := q.saveTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Ack marks a task as completed.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	task.Status = domain.TaskStatusCompleted
	task.UpdatedAt = time.Now()
	return q.saveTask(ctx, task)
}

// Nack records a failed attempt. The task is requeued until its attempts
// are exhausted, then marked failed.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	task, err := q.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	task.Error = reason
	task.UpdatedAt = time.Now()

	if task.Attempts >= task.MaxAttempts {
		task.Status = domain.TaskStatusFailed
		return q.saveTask(ctx, task)
	}

	task.Status = domain.TaskStatusPending
	if err := q.saveTask(ctx, task); err != nil {
		return err
	}
	if err := q.client.LPush(ctx, pendingList, task.ID).Err(); err != nil {
		return fmt.Errorf("failed to requeue task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	data, err := q.client.Get(ctx, taskKeyPrefix+taskID).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &task, nil
}

// Ping checks if the Redis backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (q *Queue) Close() error {
	return nil
}

func (q *Queue) saveTask(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if err := q.client.Set(ctx, taskKeyPrefix+task.ID, data, taskTTL).Err(); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}
	return nil
}
