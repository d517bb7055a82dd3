package domain

import "time"

// RealtimeSession tracks a client secret issued for the third-party realtime
// voice API, so webhook events can be correlated back to a session.
type RealtimeSession struct {
	ID        string         `json:"id"`
	SessionID string         `json:"session_id"`
	Mode      string         `json:"mode"`
	Status    string         `json:"status"`
	Payload   map[string]any `json:"session_payload,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Realtime session statuses.
const (
	SessionStatusIssued = "issued"
)

// TokenRequest is a client request for a realtime session token.
type TokenRequest struct {
	Mode     string         `json:"mode,omitempty"`
	Session  map[string]any `json:"session,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ClientSecret is the upstream response to a token request: an ephemeral
// secret the browser uses to open the realtime connection, plus the session
// description it was minted for.
type ClientSecret struct {
	Value     string         `json:"value"`
	ExpiresAt int64          `json:"expires_at"`
	Session   map[string]any `json:"session"`
}

// WebhookEvent is a tool-invocation callback from the realtime voice API.
type WebhookEvent struct {
	Event     string         `json:"event"`
	SessionID string         `json:"session_id,omitempty"`
	CallID    string         `json:"call_id,omitempty"`
	ToolName  string         `json:"tool_name,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// ToolResponse is the answer a knowledge tool produced for a webhook event.
type ToolResponse struct {
	Tool string         `json:"tool"`
	Text string         `json:"text"`
	Data map[string]any `json:"data,omitempty"`
}
