package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates exclusive operations across instances. The
// index rebuild takes a lock so at most one rebuild runs at a time.
type DistributedLock interface {
	// Acquire attempts to take a named lock with the given TTL.
	// Returns true if acquired, false if held elsewhere.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release releases a named lock if held by this instance.
	Release(ctx context.Context, name string) error

	// Extend refreshes the TTL of a currently held lock.
	Extend(ctx context.Context, name string, ttl time.Duration) error

	// Ping checks if the lock backend is healthy.
	Ping(ctx context.Context) error
}
