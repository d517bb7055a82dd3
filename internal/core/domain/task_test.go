package domain

import "testing"

func TestNewWebhookEventTask_Roundtrip(t *testing.T) {
	event := &WebhookEvent{
		Event:     "tool.invoked",
		SessionID: "sess_123",
		CallID:    "call_456",
		ToolName:  "conference.general_info",
		Payload:   map[string]any{"topic": "ecm"},
	}

	task, err := NewWebhookEventTask(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type != TaskTypeWebhookEvent {
		t.Errorf("expected webhook_event type, got %s", task.Type)
	}
	if task.ID == "" {
		t.Error("expected a generated task ID")
	}
	if task.Status != TaskStatusPending {
		t.Errorf("expected pending status, got %s", task.Status)
	}

	decoded, err := task.WebhookEvent()
	if err != nil {
		t.Fatalf("unexpected error decoding payload: %v", err)
	}
	if decoded.SessionID != event.SessionID || decoded.ToolName != event.ToolName {
		t.Errorf("decoded event does not match: %+v", decoded)
	}
	if decoded.Payload["topic"] != "ecm" {
		t.Errorf("payload lost in roundtrip: %+v", decoded.Payload)
	}
}

func TestTask_WebhookEvent_WrongType(t *testing.T) {
	task := NewRebuildIndexTask()
	if _, err := task.WebhookEvent(); err == nil {
		t.Error("expected error decoding a rebuild task as webhook event")
	}
}
