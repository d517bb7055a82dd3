package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Vettuu/CHArloTte/internal/core/domain"
	"github.com/Vettuu/CHArloTte/internal/core/ports/driven"
)

// Ensure Realtime implements RealtimeClient
var _ driven.RealtimeClient = (*Realtime)(nil)

// Realtime implements RealtimeClient against OpenAI's realtime API: it mints
// ephemeral client secrets for browser connections and pushes tool results
// into live sessions.
type Realtime struct {
	apiKey          string
	organization    string
	project         string
	baseURL         string
	sessionDefaults map[string]any
	client          *http.Client
}

// RealtimeConfig configures the realtime client. SessionDefaults is the base
// session description (model, instructions, audio formats); per-request
// overrides are merged on top.
type RealtimeConfig struct {
	APIKey          string
	Organization    string
	Project         string
	BaseURL         string
	SessionDefaults map[string]any
}

// NewRealtime creates a new OpenAI realtime client.
func NewRealtime(cfg RealtimeConfig) (*Realtime, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Realtime{
		apiKey:          cfg.APIKey,
		organization:    cfg.Organization,
		project:         cfg.Project,
		baseURL:         baseURL,
		sessionDefaults: cfg.SessionDefaults,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// CreateClientSecret mints an ephemeral client secret for a new realtime
// session. Overrides are merged over the configured session defaults, and
// only the first output modality is kept.
func (r *Realtime) CreateClientSecret(ctx context.Context, overrides map[string]any, metadata map[string]any) (*domain.ClientSecret, error) {
	session := make(map[string]any)
	domain.MergeTree(session, r.sessionDefaults)
	domain.MergeTree(session, overrides)

	if modalities, ok := session["output_modalities"]; ok {
		if first, ok := firstModality(modalities); ok {
			session["output_modalities"] = []string{first}
		}
	}

	payload := map[string]any{"session": session}
	if len(metadata) > 0 {
		payload["metadata"] = metadata
	}

	body, err := r.post(ctx, "/realtime/client_secrets", payload)
	if err != nil {
		return nil, err
	}

	var secret domain.ClientSecret
	if err := json.Unmarshal(body, &secret); err != nil {
		return nil, fmt.Errorf("parse client secret response: %w", err)
	}
	return &secret, nil
}

// SendFunctionResult delivers a tool call result into an active session and
// asks the model to respond with it.
func (r *Realtime) SendFunctionResult(ctx context.Context, sessionID, callID, text string, data map[string]any) error {
	output, err := json.Marshal(map[string]any{
		"text": text,
		"data": data,
	})
	if err != nil {
		return fmt.Errorf("marshal function output: %w", err)
	}

	events := []map[string]any{
		{
			"type":       "conversation.item.create",
			"session_id": sessionID,
			"item": map[string]any{
				"type":    "function_call_output",
				"call_id": callID,
				"output":  string(output),
			},
		},
		{
			"type": "response.create",
		},
	}

	path := fmt.Sprintf("/realtime/sessions/%s/events", sessionID)
	for _, event := range events {
		if _, err := r.post(ctx, path, event); err != nil {
			return err
		}
	}
	return nil
}

// post sends a JSON payload and returns the response body on 2xx.
func (r *Realtime) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	if r.organization != "" {
		req.Header.Set("OpenAI-Organization", r.organization)
	}
	if r.project != "" {
		req.Header.Set("OpenAI-Project", r.project)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("realtime request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read realtime response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("realtime API returned status %d: %s", resp.StatusCode, errorMessage(respBody))
	}
	return respBody, nil
}

// errorMessage extracts error.message from an API error body, falling back
// to a short raw excerpt.
func errorMessage(body []byte) string {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	excerpt := string(body)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	return excerpt
}

func firstModality(value any) (string, bool) {
	switch values := value.(type) {
	case []string:
		if len(values) > 0 {
			return values[0], true
		}
	case []any:
		if len(values) > 0 {
			if s, ok := values[0].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}
