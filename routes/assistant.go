package routes

import (
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAssistantRoutes registers all endpoints for the conversational
// booking engine.
func RegisterAssistantRoutes(r *gin.Engine, h *handlers.AssistantHandler) {
	assistant := r.Group("/api/assistant")
	{
		assistant.POST("/turn", h.TurnHandler)                       // One conversation turn
		assistant.POST("/session/:sessionID/reset", h.ResetSessionHandler) // Restart a session
	}
}
