package tasks

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewSessionCleanupTask(t *testing.T) {
	task, opts, err := NewSessionCleanupTask("s1", 10*time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Type() != TypeSessionCleanup {
		t.Errorf("type = %q, want %q", task.Type(), TypeSessionCleanup)
	}

	var payload SessionCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.SessionID != "s1" {
		t.Errorf("session id = %q", payload.SessionID)
	}
	if len(opts) != 1 {
		t.Fatalf("expected one option, got %d", len(opts))
	}
}
