package handlers

import (
	"errors"
	"net/http"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/services/assistant"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AssistantHandler exposes the conversational booking engine over HTTP.
type AssistantHandler struct {
	Service assistant.AssistantService
}

func NewAssistantHandler(svc assistant.AssistantService) *AssistantHandler {
	return &AssistantHandler{Service: svc}
}

// TurnHandler runs one conversation turn. The response body is always a
// well-formed structured reply, also on degraded and faulted turns.
func (h *AssistantHandler) TurnHandler(c *gin.Context) {
	logger := getLogger(c)

	var req models.TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid turn request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	reply, err := h.Service.ProcessTurn(c.Request.Context(), req)
	if err != nil {
		logger.Error("Turn faulted",
			zap.String("session_id", req.SessionID), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, assistant.ErrLoopExceeded) {
			// Bounded-loop faults are per-turn; the session is intact and the
			// caller can simply retry.
			status = http.StatusOK
		}
		c.JSON(status, reply)
		return
	}

	c.JSON(http.StatusOK, reply)
}

// ResetSessionHandler discards a session's history and draft booking.
func (h *AssistantHandler) ResetSessionHandler(c *gin.Context) {
	logger := getLogger(c)

	sessionID := c.Param("sessionID")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	if err := h.Service.ResetSession(c.Request.Context(), sessionID); err != nil {
		logger.Error("Failed to reset session",
			zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
