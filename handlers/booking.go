package handlers

import (
	"errors"
	"net/http"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database/repository/inventory"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes read access to the inventory ledger.
type BookingHandler struct {
	Ledger inventory.Ledger
}

func NewBookingHandler(ledger inventory.Ledger) *BookingHandler {
	return &BookingHandler{Ledger: ledger}
}

// ListSlotsHandler returns route slots filtered by any subset of origin,
// destination and date query parameters.
func (h *BookingHandler) ListSlotsHandler(c *gin.Context) {
	logger := getLogger(c)

	slots, err := h.Ledger.ListSlots(c.Request.Context(), inventory.SlotFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
	})
	if err != nil {
		logger.Error("Failed to list slots", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list slots"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// AvailableSeatsHandler returns the open seat set for one slot.
func (h *BookingHandler) AvailableSeatsHandler(c *gin.Context) {
	logger := getLogger(c)

	key := inventory.SlotKey{
		Origin:        c.Query("origin"),
		Destination:   c.Query("destination"),
		Date:          c.Query("date"),
		DepartureTime: c.Query("departure_time"),
	}
	seats, err := h.Ledger.AvailableSeats(c.Request.Context(), key)
	if err != nil {
		logger.Error("Failed to fetch seats", zap.String("slot", key.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"available_seats": seats})
}

// GetBookingHandler looks up one committed booking by id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	logger := getLogger(c)

	booking, err := h.Ledger.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		if errors.Is(err, inventory.ErrBookingNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		logger.Error("Failed to fetch booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}
	c.JSON(http.StatusOK, booking)
}
