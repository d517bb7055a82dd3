package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Scheduler periodically enqueues knowledge rebuild tasks so the index
// tracks changes in the document directory without manual rebuild calls.
//
// For multi-worker deployments, configure a DistributedLock to prevent
// duplicate enqueuing across instances.
type Scheduler struct {
	taskQueue driven.TaskQueue
	lock      driven.DistributedLock
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	interval     time.Duration
	lockTTL      time.Duration
	lockRequired bool
}

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	TaskQueue    driven.TaskQueue
	Lock         driven.DistributedLock // Optional: coordination across instances
	Logger       *slog.Logger
	Interval     time.Duration // How often to enqueue a rebuild (default: 1h)
	LockTTL      time.Duration // TTL for the distributed lock (default: 60s)
	LockRequired bool          // If true, skip the cycle when the lock cannot be acquired
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = time.Hour
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 60 * time.Second
	}

	lockRequired := cfg.LockRequired
	if cfg.Lock != nil {
		lockRequired = true
	}

	return &Scheduler{
		taskQueue:    cfg.TaskQueue,
		lock:         cfg.Lock,
		logger:       logger,
		interval:     interval,
		lockTTL:      lockTTL,
		lockRequired: lockRequired,
	}
}

// Start begins the scheduler loop. It runs until Stop is called or the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler starting", "interval", s.interval)

	go s.run(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("scheduler stopped")
}

// run is the main scheduler loop. The first rebuild fires after a full
// interval, not at startup, so a fresh deployment does not rebuild twice.
func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.enqueueRebuild(ctx)
		}
	}
}

// enqueueRebuild enqueues one rebuild task, holding the distributed lock
// when configured so only one instance enqueues per cycle.
func (s *Scheduler) enqueueRebuild(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, "scheduler", s.lockTTL)
		if err != nil {
			s.logger.Warn("failed to acquire scheduler lock", "error", err)
			if s.lockRequired {
				return
			}
		} else if !acquired {
			s.logger.Debug("scheduler lock held by another instance, skipping cycle")
			return
		} else {
			defer func() {
				if err := s.lock.Release(ctx, "scheduler"); err != nil {
					s.logger.Warn("failed to release scheduler lock", "error", err)
				}
			}()
		}
	}

	task := domain.NewRebuildIndexTask()
	if err := s.taskQueue.Enqueue(ctx, task); err != nil {
		s.logger.Error("failed to enqueue rebuild task", "error", err)
		return
	}

	s.logger.Info("enqueued scheduled rebuild", "task_id", task.ID)
}
