package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const realtimeSessionPrefix = "charlotte:realtime:session:"

// sessionTTL bounds how long a realtime session record is kept. Voice
// sessions are short-lived; a day covers late webhook deliveries.
const sessionTTL = 24 * time.Hour

// SessionStore implements driven.SessionStore using Redis, keyed by the
// upstream session ID with automatic expiration.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save creates or replaces a realtime session record.
func (s *SessionStore) Save(ctx context.Context, session *domain.RealtimeSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime session: %w", err)
	}

	err = s.client.Set(ctx, realtimeSessionPrefix+session.SessionID, data, sessionTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save realtime session: %w", err)
	}
	return nil
}

// GetBySessionID retrieves a session by its upstream session ID.
func (s *SessionStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.RealtimeSession, error) {
	data, err := s.client.Get(ctx, realtimeSessionPrefix+sessionID).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get realtime session: %w", err)
	}

	var session domain.RealtimeSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal realtime session: %w", err)
	}
	return &session, nil
}

// UpdateStatus updates a session's status and merges event metadata,
// refreshing the record's TTL.
func (s *SessionStore) UpdateStatus(ctx context.Context, sessionID, status string, metadata map[string]any) error {
	session, err := s.GetBySessionID(ctx, sessionID)
	if err != nil {
		return err
	}

	session.Status = status
	if session.Metadata == nil {
		session.Metadata = make(map[string]any)
	}
	for key, value := range metadata {
		session.Metadata[key] = value
	}
	session.UpdatedAt = time.Now()

	return s.Save(ctx, session)
}
