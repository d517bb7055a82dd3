package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore using PostgreSQL.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save creates or replaces a realtime session record.
func (s *SessionStore) Save(ctx context.Context, session *domain.RealtimeSession) error {
	payload, err := marshalJSONMap(session.Payload)
	if err != nil {
		return fmt.Errorf("marshal session payload: %w", err)
	}
	metadata, err := marshalJSONMap(session.Metadata)
	if err != nil {
		return fmt.Errorf("marshal session metadata: %w", err)
	}

	query := `
		INSERT INTO realtime_sessions (id, session_id, mode, status, session_payload, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO UPDATE SET
			mode = EXCLUDED.mode,
			status = EXCLUDED.status,
			session_payload = EXCLUDED.session_payload,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.SessionID,
		session.Mode,
		session.Status,
		payload,
		metadata,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save realtime session: %w", err)
	}
	return nil
}

// GetBySessionID returns the session with the given upstream session ID.
func (s *SessionStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.RealtimeSession, error) {
	query := `
		SELECT id, session_id, mode, status, session_payload, metadata, created_at, updated_at
		FROM realtime_sessions
		WHERE session_id = $1
	`

	var (
		session  domain.RealtimeSession
		payload  []byte
		metadata []byte
	)
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&session.ID,
		&session.SessionID,
		&session.Mode,
		&session.Status,
		&payload,
		&metadata,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get realtime session: %w", err)
	}

	if session.Payload, err = unmarshalJSONMap(payload); err != nil {
		return nil, fmt.Errorf("unmarshal session payload: %w", err)
	}
	if session.Metadata, err = unmarshalJSONMap(metadata); err != nil {
		return nil, fmt.Errorf("unmarshal session metadata: %w", err)
	}
	return &session, nil
}

// UpdateStatus updates a session's status and merges event metadata into the
// stored metadata.
func (s *SessionStore) UpdateStatus(ctx context.Context, sessionID, status string, metadata map[string]any) error {
	merged, err := marshalJSONMap(metadata)
	if err != nil {
		return fmt.Errorf("marshal session metadata: %w", err)
	}

	query := `
		UPDATE realtime_sessions
		SET status = $1,
			metadata = COALESCE(metadata, '{}'::jsonb) || COALESCE($2::jsonb, '{}'::jsonb),
			updated_at = now()
		WHERE session_id = $3
	`
	result, err := s.db.ExecContext(ctx, query, status, merged, sessionID)
	if err != nil {
		return fmt.Errorf("update realtime session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func marshalJSONMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func unmarshalJSONMap(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
