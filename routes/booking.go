package routes

import (
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers read endpoints over the inventory ledger.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	booking := r.Group("/api/booking")
	{
		booking.GET("/slots", h.ListSlotsHandler)           // Filter slots by origin/destination/date
		booking.GET("/seats", h.AvailableSeatsHandler)      // Open seats for one slot
		booking.GET("/:bookingID", h.GetBookingHandler)     // Booking lookup
	}

	r.GET("/health", handlers.HealthHandler)
}
