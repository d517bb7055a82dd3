package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driving"
)

// Ensure realtimeService implements RealtimeService
var _ driving.RealtimeService = (*realtimeService)(nil)

// DefaultSessionMode is used when the upstream session omits its output
// modalities.
const DefaultSessionMode = "audio"

// realtimeService mints client secrets for the realtime voice API and
// processes its tool webhook events.
type realtimeService struct {
	client      driven.RealtimeClient
	sessions    driven.SessionStore
	tools       driving.ToolService
	defaultMode string
	logger      *slog.Logger
}

// RealtimeConfig holds dependencies for the realtime service.
type RealtimeConfig struct {
	Client      driven.RealtimeClient
	Sessions    driven.SessionStore
	Tools       driving.ToolService
	DefaultMode string
	Logger      *slog.Logger
}

// NewRealtime creates a new RealtimeService.
func NewRealtime(cfg RealtimeConfig) driving.RealtimeService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := cfg.DefaultMode
	if mode == "" {
		mode = DefaultSessionMode
	}
	return &realtimeService{
		client:      cfg.Client,
		sessions:    cfg.Sessions,
		tools:       cfg.Tools,
		defaultMode: mode,
		logger:      logger,
	}
}

// IssueToken mints an ephemeral client secret upstream and records the
// session as issued. An upstream failure surfaces as
// domain.ErrRealtimeUnavailable.
func (s *realtimeService) IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.ClientSecret, error) {
	overrides := make(map[string]any, len(req.Session)+1)
	for key, value := range req.Session {
		overrides[key] = value
	}
	if req.Mode != "" {
		overrides["output_modalities"] = []string{req.Mode}
	}

	secret, err := s.client.CreateClientSecret(ctx, overrides, req.Metadata)
	if err != nil {
		s.logger.Warn("unable to create realtime client secret", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrRealtimeUnavailable, err)
	}

	now := time.Now()
	session := &domain.RealtimeSession{
		ID:        uuid.NewString(),
		SessionID: sessionString(secret.Session, "id"),
		Mode:      s.sessionMode(secret.Session),
		Status:    domain.SessionStatusIssued,
		Payload:   secret.Session,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save realtime session: %w", err)
	}

	s.logger.Info("realtime token issued",
		"session_id", session.SessionID,
		"mode", session.Mode,
	)
	return secret, nil
}

// HandleWebhook processes a webhook event. A tool invocation is answered
// from the knowledge base and pushed back upstream; a delivery failure is
// logged, not returned, so the event still updates session state.
func (s *realtimeService) HandleWebhook(ctx context.Context, event *domain.WebhookEvent) error {
	s.logger.Info("processing realtime webhook event",
		"event", event.Event,
		"session_id", event.SessionID,
		"tool", event.ToolName,
	)

	if event.ToolName != "" && event.SessionID != "" && event.CallID != "" {
		response, err := s.tools.Handle(ctx, event.ToolName, event.Payload)
		if err != nil {
			return fmt.Errorf("handle tool %s: %w", event.ToolName, err)
		}

		if err := s.client.SendFunctionResult(ctx, event.SessionID, event.CallID, response.Text, response.Data); err != nil {
			s.logger.Error("failed to send function result upstream", "error", err)
		}
	}

	if event.SessionID == "" {
		return nil
	}

	status := event.Event
	if status == "" {
		status = "webhook_event"
	}
	metadata := map[string]any{
		"last_event": map[string]any{
			"event":       event.Event,
			"payload":     event.Payload,
			"occurred_at": time.Now().Format(time.RFC3339),
		},
	}
	if err := s.sessions.UpdateStatus(ctx, event.SessionID, status, metadata); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Debug("webhook event for unknown session", "session_id", event.SessionID)
			return nil
		}
		return fmt.Errorf("update session %s: %w", event.SessionID, err)
	}
	return nil
}

// sessionMode reads the first output modality of the upstream session,
// falling back to the configured default.
func (s *realtimeService) sessionMode(session map[string]any) string {
	modalities, ok := session["output_modalities"]
	if ok {
		switch values := modalities.(type) {
		case []string:
			if len(values) > 0 && values[0] != "" {
				return values[0]
			}
		case []any:
			if len(values) > 0 {
				if mode, ok := values[0].(string); ok && mode != "" {
					return mode
				}
			}
		}
	}
	return s.defaultMode
}

func sessionString(session map[string]any, key string) string {
	if session == nil {
		return ""
	}
	value, ok := session[key].(string)
	if !ok {
		return ""
	}
	return value
}
