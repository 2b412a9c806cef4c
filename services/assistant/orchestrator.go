// File: services/assistant/orchestrator.go
package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/services/tasks"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// ErrLoopExceeded reports a turn that hit the tool-round cap without the
// model producing a final answer.
var ErrLoopExceeded = errors.New("reasoning loop exceeded")

const (
	faultedNarration = "I'm sorry, I ran into a problem processing your request. Please try again."
	functionNudge    = "ok call those functions which you want to call"

	// degradedExcerptLimit bounds how much raw model text may leak into a
	// degraded reply's narration.
	degradedExcerptLimit = 200
)

// ProcessTurn drives one turn of the dialogue: send state to the model,
// dispatch any requested tool calls, feed results back, and repeat until a
// final structured reply arrives or a bound is hit.
func (s *DefaultAssistantService) ProcessTurn(ctx context.Context, req models.TurnRequest) (*models.AssistantReply, error) {
	logger := utils.GetLogger().With(zap.String("session_id", req.SessionID))

	if req.SessionID == "" {
		return faultedReply(models.BookingDetails{}), errors.New("session id is required")
	}

	// One turn at a time per session: an overlapping turn would load the
	// same aggregate baseline and its save would drop the other's merge.
	lock := s.turnLocks.get(req.SessionID)
	lock.Lock()
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.TurnTimeout)
	defer cancel()

	details, history, err := s.loadSessionState(ctx, req)
	if err != nil {
		logger.Error("Failed to load session state", zap.Error(err))
		return faultedReply(models.BookingDetails{}), err
	}

	prompt, err := s.Prompts.Load(ctx)
	if err != nil {
		logger.Error("Failed to load instruction prompt", zap.Error(err))
		return faultedReply(details), err
	}

	session := s.Model.StartSession(
		composeSystemInstruction(prompt, req.FirstInteraction),
		s.Registry.Declarations(),
		toGenaiHistory(history),
	)
	historyBaseline := len(history)

	parts, err := buildUserParts(req, details)
	if err != nil {
		logger.Error("Failed to build user message", zap.Error(err))
		return faultedReply(details), err
	}

	logger.Debug("Sending message to model", zap.Int("history_len", historyBaseline))
	reply, err := session.Send(ctx, parts...)
	if err != nil {
		return faultedReply(details), fmt.Errorf("model transport failure: %w", err)
	}

	for round := 1; ; round++ {
		if round > s.MaxToolRounds {
			logger.Warn("Turn exceeded tool-round cap", zap.Int("cap", s.MaxToolRounds))
			return faultedReply(details), ErrLoopExceeded
		}

		if len(reply.FunctionCalls) > 0 {
			// A caller abort must not start another dispatch cycle; calls
			// already dispatched below run to completion regardless.
			if cerr := ctx.Err(); cerr != nil {
				logger.Warn("Turn cancelled before tool dispatch", zap.Error(cerr))
				return faultedReply(details), fmt.Errorf("turn aborted: %w", cerr)
			}

			responses := s.dispatchCalls(ctx, logger, reply.FunctionCalls)
			reply, err = session.Send(ctx, responses...)
			if err != nil {
				return faultedReply(details), fmt.Errorf("model transport failure: %w", err)
			}
			continue
		}

		parsed, perr := ParseAssistantReply(reply.Text)
		if perr != nil {
			// A parse failure is not fatal to the session: advance history,
			// leave the aggregate untouched, hand back a bounded excerpt.
			logger.Warn("Model reply was not parseable", zap.Error(perr))
			if serr := s.persistTurn(ctx, req.SessionID, session, historyBaseline, nil); serr != nil {
				logger.Error("Failed to persist degraded turn", zap.Error(serr))
			}
			return degradedReply(details, reply.Text), nil
		}

		if wantsFunctionCall(parsed) {
			// The model answered in prose about wanting to call a tool
			// instead of issuing the call; nudge it once per round.
			logger.Debug("Model narrated a function call, nudging",
				zap.String("narration", parsed.Narration))
			reply, err = session.Send(ctx, genai.Text(functionNudge))
			if err != nil {
				return faultedReply(details), fmt.Errorf("model transport failure: %w", err)
			}
			continue
		}

		merged := details.Merge(parsed.UpdatedBookingDetails)
		parsed.UpdatedBookingDetails = merged

		if err := s.persistTurn(ctx, req.SessionID, session, historyBaseline, &merged); err != nil {
			logger.Error("Failed to persist turn", zap.Error(err))
			return faultedReply(details), err
		}

		if parsed.BookingComplete || parsed.ConversationEnded {
			s.scheduleCleanup(req.SessionID, logger)
		}

		logger.Debug("Turn finalized",
			zap.Bool("booking_complete", parsed.BookingComplete),
			zap.Int("rounds", round))
		return parsed, nil
	}
}

// loadSessionState resolves the working aggregate and prior history. A first
// interaction restarts the session; otherwise the caller-carried aggregate
// wins over the stored one.
func (s *DefaultAssistantService) loadSessionState(ctx context.Context, req models.TurnRequest) (models.BookingDetails, []models.Message, error) {
	if req.FirstInteraction {
		if err := s.Sessions.Reset(ctx, req.SessionID); err != nil {
			return models.BookingDetails{}, nil, fmt.Errorf("reset session: %w", err)
		}
		if req.BookingDetails != nil {
			return *req.BookingDetails, nil, nil
		}
		return models.BookingDetails{}, nil, nil
	}

	history, err := s.Sessions.LoadHistory(ctx, req.SessionID)
	if err != nil {
		return models.BookingDetails{}, nil, fmt.Errorf("load history: %w", err)
	}

	if req.BookingDetails != nil {
		return *req.BookingDetails, history, nil
	}
	stored, err := s.Sessions.LoadDetails(ctx, req.SessionID)
	if err != nil {
		return models.BookingDetails{}, nil, fmt.Errorf("load booking details: %w", err)
	}
	return *stored, history, nil
}

// dispatchCalls resolves every invocation through the registry, preserving
// invocation order. Tool execution is detached from the turn's cancellation
// so a reservation already dispatched is never left half-applied.
func (s *DefaultAssistantService) dispatchCalls(ctx context.Context, logger *zap.Logger, calls []genai.FunctionCall) []genai.Part {
	toolCtx := context.WithoutCancel(ctx)
	responses := make([]genai.Part, 0, len(calls))
	for _, call := range calls {
		logger.Debug("Dispatching tool call", zap.String("tool", call.Name), zap.Any("args", call.Args))
		result := s.Registry.Dispatch(toolCtx, call)
		responses = append(responses, genai.FunctionResponse{
			Name:     call.Name,
			Response: result,
		})
	}
	return responses
}

// persistTurn appends this turn's message delta to session history and, when
// merged is non-nil, saves the updated aggregate.
func (s *DefaultAssistantService) persistTurn(ctx context.Context, sessionID string, session ModelSession, baseline int, merged *models.BookingDetails) error {
	full := session.History()
	if baseline > len(full) {
		baseline = len(full)
	}
	delta := fromGenaiHistory(full[baseline:])
	if err := s.Sessions.AppendHistory(ctx, sessionID, delta); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if merged != nil {
		if err := s.Sessions.SaveDetails(ctx, sessionID, merged); err != nil {
			return fmt.Errorf("save booking details: %w", err)
		}
	}
	return nil
}

func (s *DefaultAssistantService) scheduleCleanup(sessionID string, logger *zap.Logger) {
	if s.Tasks == nil {
		return
	}
	task, opts, err := tasks.NewSessionCleanupTask(sessionID, s.CleanupGrace)
	if err != nil {
		logger.Warn("Failed to build cleanup task", zap.Error(err))
		return
	}
	if _, err := s.Tasks.Enqueue(task, opts...); err != nil {
		logger.Warn("Failed to enqueue cleanup task", zap.Error(err))
	}
}

// composeSystemInstruction assembles the per-turn system instruction from
// the stored prompt, the current date, and the first-turn greeting clause.
func composeSystemInstruction(prompt *InstructionPrompt, firstInteraction bool) string {
	today := time.Now().UTC().Format("2006-01-02")
	greeting := ""
	if firstInteraction {
		greeting = "This is the first interaction with user so greet properly."
	}
	return fmt.Sprintf("%s \n\nThe current date is %s\n\n%s\n\n%s",
		prompt.InstructionPrompt, today, greeting, prompt.ResponseStructure)
}

// buildUserParts serializes the aggregate as the leading message part,
// followed by typed text and/or the untouched inline audio payload.
func buildUserParts(req models.TurnRequest, details models.BookingDetails) ([]genai.Part, error) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("serialize booking details: %w", err)
	}
	parts := []genai.Part{genai.Text(string(detailsJSON))}

	if req.Text != "" {
		parts = append(parts, genai.Text(req.Text))
	}
	if req.AudioBase64 != "" {
		data, err := decodeAudioPayload(req.AudioBase64)
		if err != nil {
			return nil, fmt.Errorf("decode audio payload: %w", err)
		}
		mimeType := req.AudioMIMEType
		if mimeType == "" {
			mimeType = "audio/webm"
		}
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: data})
	}
	return parts, nil
}

// decodeAudioPayload accepts either a bare base64 string or a browser data
// URL ("data:audio/webm;base64,....").
func decodeAudioPayload(payload string) ([]byte, error) {
	if idx := strings.IndexByte(payload, ','); idx != -1 {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// wantsFunctionCall detects a finalized reply whose narration talks about
// calling a function, a sign the model answered in free text instead of
// issuing a tool call.
func wantsFunctionCall(reply *models.AssistantReply) bool {
	if reply.WantsToCallFunction {
		return true
	}
	for _, text := range []string{reply.Narration, reply.AgentThinking} {
		lower := strings.ToLower(text)
		if strings.Contains(lower, "call") || strings.Contains(lower, "function") {
			return true
		}
	}
	return false
}

func faultedReply(details models.BookingDetails) *models.AssistantReply {
	return &models.AssistantReply{
		Narration:             faultedNarration,
		UpdatedBookingDetails: details,
		BookingComplete:       false,
	}
}

func degradedReply(details models.BookingDetails, raw string) *models.AssistantReply {
	excerpt := strings.TrimSpace(raw)
	if len(excerpt) > degradedExcerptLimit {
		cut := degradedExcerptLimit
		// Never cut through a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
			cut--
		}
		excerpt = excerpt[:cut] + "…"
	}
	if excerpt == "" {
		excerpt = faultedNarration
	}
	return &models.AssistantReply{
		Narration:             excerpt,
		UpdatedBookingDetails: details,
		BookingComplete:       false,
	}
}
