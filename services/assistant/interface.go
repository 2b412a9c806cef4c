// File: services/assistant/interface.go
package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	"github.com/hibiken/asynq"
)

// AssistantService drives the conversational booking dialogue.
type AssistantService interface {
	// ProcessTurn runs one caller-input-to-structured-reply cycle. The
	// returned reply is always well-formed, including degraded and faulted
	// turns; a non-nil error reports why a turn faulted.
	ProcessTurn(ctx context.Context, req models.TurnRequest) (*models.AssistantReply, error)
	// ResetSession discards a session's history and draft booking details.
	ResetSession(ctx context.Context, sessionID string) error
}

// DefaultAssistantService wires the model client, tool registry, session
// store and prompt store into the turn loop.
type DefaultAssistantService struct {
	Model    ModelClient
	Registry *ToolRegistry
	Sessions SessionStore
	Prompts  PromptStore

	// Tasks schedules deferred session cleanup; optional.
	Tasks        *asynq.Client
	CleanupGrace time.Duration

	// MaxToolRounds bounds the ask-model/call-tool loop per turn;
	// TurnTimeout is the wall-clock budget for a whole turn.
	MaxToolRounds int
	TurnTimeout   time.Duration

	turnLocks sessionLockStore
}

// sessionLockStore holds one mutex per session id. Turns on the same session
// read and write the same aggregate and history, so they must run one at a
// time; turns on different sessions never block each other.
type sessionLockStore struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *sessionLockStore) get(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, exists := s.locks[sessionID]
	if !exists {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func NewDefaultAssistantService(
	model ModelClient,
	registry *ToolRegistry,
	sessions SessionStore,
	prompts PromptStore,
	maxToolRounds int,
	turnTimeout time.Duration,
) *DefaultAssistantService {
	return &DefaultAssistantService{
		Model:         model,
		Registry:      registry,
		Sessions:      sessions,
		Prompts:       prompts,
		MaxToolRounds: maxToolRounds,
		TurnTimeout:   turnTimeout,
	}
}

func (s *DefaultAssistantService) ResetSession(ctx context.Context, sessionID string) error {
	return s.Sessions.Reset(ctx, sessionID)
}
