// File: services/assistant/tools_test.go
package assistant

import (
	"context"
	"testing"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database/repository/inventory"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *ToolRegistry {
	ledger := inventory.NewMemoryLedger()
	ledger.AddSlot(inventory.SlotKey{
		Origin: "Karachi", Destination: "Lahore", Date: "2025-03-20", DepartureTime: "08:00",
	}, models.BusSchedule{
		DepartureTime: "08:00", BusType: "Business", Duration: "14h 30m", Fare: 4500,
	}, []string{"1A", "1B", "1C", "2A"})
	return NewToolRegistry(ledger)
}

func slotArgs() map[string]any {
	return map[string]any{
		"starting_point": "Karachi",
		"destination":    "Lahore",
		"date":           "2025-03-20",
		"departure_time": "08:00",
	}
}

func TestDispatch_UnsupportedOperation(t *testing.T) {
	registry := newTestRegistry()
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: "cancel_booking",
		Args: map[string]any{},
	})
	assert.Equal(t, "unsupported operation: cancel_booking", result["error"])
}

func TestDispatch_MissingRequiredArgument(t *testing.T) {
	registry := newTestRegistry()
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckAvailableBuses,
		Args: map[string]any{"destination": "Lahore"},
	})
	assert.Equal(t, "missing required argument: starting_point", result["error"])
}

func TestDispatch_WrongArgumentType(t *testing.T) {
	registry := newTestRegistry()
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckAvailableBuses,
		Args: map[string]any{"starting_point": 42.0},
	})
	assert.Equal(t, "argument starting_point has wrong type", result["error"])
}

func TestDispatch_ToleratesExtraKeys(t *testing.T) {
	registry := newTestRegistry()
	args := slotArgs()
	args["reasoning"] = "the user asked for morning buses"
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckAvailableSeats,
		Args: args,
	})
	assert.NotContains(t, result, "error")
	assert.ElementsMatch(t, []string{"1A", "1B", "1C", "2A"}, result["available_seats"])
}

func TestDispatch_CheckAvailableBuses(t *testing.T) {
	registry := newTestRegistry()
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckAvailableBuses,
		Args: map[string]any{"starting_point": "Karachi"},
	})

	buses, ok := result["buses"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, buses, 1)
	assert.Equal(t, "Lahore", buses[0]["destination"])
	assert.Equal(t, "Business", buses[0]["bus_type"])
	assert.Equal(t, 4, buses[0]["available_seats"])
}

func TestDispatch_CheckSeatAvailability(t *testing.T) {
	registry := newTestRegistry()

	args := slotArgs()
	args["seat_number"] = "1A"
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckSeatAvailability, Args: args,
	})
	assert.Equal(t, true, result["available"])

	args["seat_number"] = "9Z"
	result = registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolCheckSeatAvailability, Args: args,
	})
	assert.Equal(t, false, result["available"])
}

func TestDispatch_MakeReservation(t *testing.T) {
	registry := newTestRegistry()

	args := slotArgs()
	args["seat_number"] = "1A"
	args["customer_name"] = "Ali"
	args["phone_number"] = "0300-1234567"

	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolMakeReservation, Args: args,
	})
	require.Equal(t, true, result["success"])
	bookingID, _ := result["booking_id"].(string)
	assert.NotEmpty(t, bookingID)
	assert.Len(t, result["confirmation_code"], 6)

	// A refused reservation is a payload, not an error.
	result = registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolMakeReservation, Args: args,
	})
	assert.Equal(t, false, result["success"])
	assert.Equal(t, "selected seat is not available", result["error_message"])

	// Committed booking is readable back through the registry.
	result = registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolGetBookingDetails,
		Args: map[string]any{"booking_id": bookingID},
	})
	assert.Equal(t, bookingID, result["booking_id"])
	assert.Equal(t, "Ali", result["customer_name"])
	assert.Equal(t, "1A", result["seat_number"])
}

func TestDispatch_GetBookingDetails_NotFound(t *testing.T) {
	registry := newTestRegistry()
	result := registry.Dispatch(context.Background(), genai.FunctionCall{
		Name: ToolGetBookingDetails,
		Args: map[string]any{"booking_id": "missing"},
	})
	assert.Equal(t, "booking not found", result["error"])
}

func TestDeclarations_CoverEveryTool(t *testing.T) {
	registry := newTestRegistry()
	decls := registry.Declarations()
	require.Len(t, decls, 5)

	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{
		ToolCheckAvailableBuses,
		ToolCheckAvailableSeats,
		ToolCheckSeatAvailability,
		ToolMakeReservation,
		ToolGetBookingDetails,
	}, names)
}
