package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"
)

// SlotKey identifies one bookable unit: a route, a date and a departure time.
type SlotKey struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	Date          string `json:"date"`
	DepartureTime string `json:"departure_time"`
}

// String renders the key in the origin_destination_date_time form used for
// storage keys and logs.
func (k SlotKey) String() string {
	return fmt.Sprintf("%s_%s_%s_%s", k.Origin, k.Destination, k.Date, k.DepartureTime)
}

// SlotFilter selects route slots by any subset of its fields; empty fields
// match everything.
type SlotFilter struct {
	Origin      string
	Destination string
	Date        string
}

// ReservationRequest carries everything Reserve needs to commit a booking.
type ReservationRequest struct {
	Slot         SlotKey
	SeatNumber   string
	CustomerName string
	PhoneNumber  string
}

// FailureCode classifies why a reservation was refused.
type FailureCode string

const (
	FailureMissingField FailureCode = "missing_field"
	FailureUnknownSlot  FailureCode = "unknown_slot"
	FailureSeatTaken    FailureCode = "seat_not_available"
)

// ReservationError is a refused reservation. It is a normal domain outcome,
// not a transport fault; callers forward Message to the model.
type ReservationError struct {
	Code    FailureCode
	Message string
}

func (e *ReservationError) Error() string { return e.Message }

// ErrBookingNotFound is returned by GetBooking for an unknown booking id.
var ErrBookingNotFound = errors.New("booking not found")

// Ledger owns seat availability and committed bookings. Reserve must apply
// its availability check and seat removal as one atomic step per slot:
// concurrent reservations for the same seat yield exactly one success.
type Ledger interface {
	ListSlots(ctx context.Context, filter SlotFilter) ([]models.RouteSlot, error)
	AvailableSeats(ctx context.Context, key SlotKey) ([]string, error)
	IsSeatAvailable(ctx context.Context, key SlotKey, seat string) (bool, error)
	Reserve(ctx context.Context, req ReservationRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
}

// validateReservation reports the first missing required field, matching the
// failure priority order: missing field before unknown slot before seat taken.
func validateReservation(req ReservationRequest) *ReservationError {
	required := []struct {
		name  string
		value string
	}{
		{"starting_point", req.Slot.Origin},
		{"destination", req.Slot.Destination},
		{"date", req.Slot.Date},
		{"departure_time", req.Slot.DepartureTime},
		{"seat_number", req.SeatNumber},
		{"customer_name", req.CustomerName},
		{"phone_number", req.PhoneNumber},
	}
	for _, f := range required {
		if f.value == "" {
			return &ReservationError{
				Code:    FailureMissingField,
				Message: fmt.Sprintf("missing required booking information: %s", f.name),
			}
		}
	}
	return nil
}
