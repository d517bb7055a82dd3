package driven

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// RealtimeClient talks to the third-party realtime voice API.
type RealtimeClient interface {
	// CreateClientSecret mints an ephemeral client secret for a new
	// realtime session, applying session overrides and caller metadata.
	CreateClientSecret(ctx context.Context, overrides map[string]any, metadata map[string]any) (*domain.ClientSecret, error)

	// SendFunctionResult delivers a tool call result back into an active
	// realtime session.
	SendFunctionResult(ctx context.Context, sessionID, callID, text string, data map[string]any) error
}
