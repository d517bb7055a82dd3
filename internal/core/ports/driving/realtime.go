package driving

import (
	"context"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
)

// RealtimeService issues session tokens for the realtime voice API and
// processes its tool webhook events.
type RealtimeService interface {
	// IssueToken mints a client secret upstream and records the session.
	IssueToken(ctx context.Context, req domain.TokenRequest) (*domain.ClientSecret, error)

	// HandleWebhook processes a dequeued webhook event: dispatches the
	// named tool, pushes the result upstream and updates session state.
	HandleWebhook(ctx context.Context, event *domain.WebhookEvent) error
}

// ToolService resolves realtime tool invocations against the knowledge base.
type ToolService interface {
	// Handle answers a tool call. Unknown tools produce a polite fallback
	// response, never an error.
	Handle(ctx context.Context, toolName string, payload map[string]any) (*domain.ToolResponse, error)
}
