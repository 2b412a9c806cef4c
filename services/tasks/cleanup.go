package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeSessionCleanup = "session:cleanup"

// SessionCleanupPayload identifies the session to clear.
type SessionCleanupPayload struct {
	SessionID string `json:"session_id"`
}

// NewSessionCleanupTask builds a deferred task that clears a finished
// session's history and draft details after the grace period.
func NewSessionCleanupTask(sessionID string, grace time.Duration) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(SessionCleanupPayload{SessionID: sessionID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSessionCleanup, b)
	opts := []asynq.Option{asynq.ProcessIn(grace)}

	return task, opts, nil
}
