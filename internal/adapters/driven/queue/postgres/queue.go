// Package postgres implements the task queue on the tasks table using
// SELECT FOR UPDATE SKIP LOCKED, as a fallback when Redis is not configured.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Vettuu/CHArloTte/internal/adapters/driven/postgres"
	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TaskQueue = (*Queue)(nil)

// pollInterval paces the dequeue loop; the table has no blocking pop.
const pollInterval = 500 * time.Millisecond

// Queue implements TaskQueue on PostgreSQL.
type Queue struct {
	db *postgres.DB
}

// NewQueue creates a new PostgreSQL-backed task queue.
func NewQueue(db *postgres.DB) (*Queue, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return &Queue{db: db}, nil
}

// Enqueue adds a task to the queue for processing.
func (q *Queue) Enqueue(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	query := `
		INSERT INTO tasks (id, type, payload, status, attempts, max_attempts, scheduled_for, created_at, updated_at)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7, now())
	`
	var payload any
	if len(task.Payload) > 0 {
		payload = []byte(task.Payload)
	}
	var scheduledFor sql.NullTime
	if !task.ScheduledFor.IsZero() {
		scheduledFor = sql.NullTime{Time: task.ScheduledFor, Valid: true}
	}

	_, err := q.db.ExecContext(ctx, query,
		task.ID,
		string(task.Type),
		payload,
		task.Attempts,
		task.MaxAttempts,
		scheduledFor,
		task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// DequeueWithTimeout polls for the next pending task for up to timeout
// seconds. Returns (nil, nil) when no task becomes available.
func (q *Queue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	if timeout <= 0 {
		timeout = 1
	}
	deadline := time.Now().Add(time.Duration(timeout) * time.Second)

	for {
		task, err := q.tryDequeue(ctx)
		if err != nil {
			return nil, err
		}
		if task != nil {
			return task, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// tryDequeue claims the oldest due pending task, if any.
func (q *Queue) tryDequeue(ctx context.Context) (*domain.Task, error) {
	var task *domain.Task

	err := q.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			SELECT id, type, payload, status, attempts, max_attempts, COALESCE(error, ''), created_at, updated_at
			FROM tasks
			WHERE status = 'pending'
			  AND (scheduled_for IS NULL OR scheduled_for <= now())
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		`
		row := tx.QueryRowContext(ctx, query)

		claimed, err := scanTask(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		claimed.Status = domain.TaskStatusProcessing
		claimed.Attempts++
		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET status = 'processing', attempts = attempts + 1, updated_at = now() WHERE id = $1`,
			claimed.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to claim task: %w", err)
		}

		task = claimed
		return nil
	})
	return task, err
}

// Ack marks a task as completed.
func (q *Queue) Ack(ctx context.Context, taskID string) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE tasks SET status = 'completed', updated_at = now() WHERE id = $1`,
		taskID,
	)
	if err != nil {
		return fmt.Errorf("failed to ack task: %w", err)
	}
	return requireRow(result)
}

// Nack records a failed attempt. The task goes back to pending until its
// attempts are exhausted, then is marked failed.
func (q *Queue) Nack(ctx context.Context, taskID string, reason string) error {
	query := `
		UPDATE tasks
		SET status = CASE WHEN attempts >= max_attempts THEN 'failed' ELSE 'pending' END,
			error = $1,
			updated_at = now()
		WHERE id = $2
	`
	result, err := q.db.ExecContext(ctx, query, reason, taskID)
	if err != nil {
		return fmt.Errorf("failed to nack task: %w", err)
	}
	return requireRow(result)
}

// GetTask retrieves a task by ID.
func (q *Queue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	query := `
		SELECT id, type, payload, status, attempts, max_attempts, COALESCE(error, ''), created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(q.db.QueryRowContext(ctx, query, taskID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// Ping checks if the PostgreSQL backend is healthy.
func (q *Queue) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}

// Close is a no-op; the database pool is owned by the caller.
func (q *Queue) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task     domain.Task
		taskType string
		status   string
		payload  []byte
	)
	err := row.Scan(
		&task.ID,
		&taskType,
		&payload,
		&status,
		&task.Attempts,
		&task.MaxAttempts,
		&task.Error,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Type = domain.TaskType(taskType)
	task.Status = domain.TaskStatus(status)
	task.Payload = payload
	return &task, nil
}

func requireRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
