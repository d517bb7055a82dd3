package driven

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// SessionStore persists realtime voice sessions so webhook events can be
// correlated back to the token that was issued.
type SessionStore interface {
	// Save creates or replaces a session record.
	Save(ctx context.Context, session *domain.RealtimeSession) error

	// GetBySessionID returns the session with the given upstream session ID.
	// Returns domain.ErrSessionNotFound when absent.
	GetBySessionID(ctx context.Context, sessionID string) (*domain.RealtimeSession, error)

	// UpdateStatus updates a session's status and merges event metadata.
	UpdateStatus(ctx context.Context, sessionID, status string, metadata map[string]any) error
}
