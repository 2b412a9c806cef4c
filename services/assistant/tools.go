// File: services/assistant/tools.go
package assistant

import (
	"context"
	"fmt"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database/repository/inventory"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// Tool operation names. The registry is the single source of truth for what
// the model may invoke; anything else gets an "unsupported operation"
// payload back.
const (
	ToolCheckAvailableBuses   = "check_available_buses"
	ToolCheckAvailableSeats   = "check_available_seats"
	ToolCheckSeatAvailability = "check_seat_availability"
	ToolMakeReservation       = "make_reservation"
	ToolGetBookingDetails     = "get_booking_details"
)

type toolHandler func(ctx context.Context, args map[string]any) map[string]any

type registeredTool struct {
	decl    *genai.FunctionDeclaration
	handler toolHandler
}

// ToolRegistry maps operation names to ledger calls. Dispatch never returns
// an error: validation and execution failures become error payloads the
// orchestrator forwards to the model as tool results.
type ToolRegistry struct {
	ledger inventory.Ledger
	tools  map[string]registeredTool
}

func NewToolRegistry(ledger inventory.Ledger) *ToolRegistry {
	r := &ToolRegistry{ledger: ledger}
	r.tools = map[string]registeredTool{
		ToolCheckAvailableBuses: {
			decl: &genai.FunctionDeclaration{
				Name:        ToolCheckAvailableBuses,
				Description: "Check available buses",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"starting_point": {Type: genai.TypeString, Description: "Origin city"},
						"destination":    {Type: genai.TypeString, Description: "Destination city (optional)"},
						"date":           {Type: genai.TypeString, Description: "Travel date (YYYY-MM-DD format) (optional)"},
					},
					Required: []string{"starting_point"},
				},
			},
			handler: r.checkAvailableBuses,
		},
		ToolCheckAvailableSeats: {
			decl: &genai.FunctionDeclaration{
				Name:        ToolCheckAvailableSeats,
				Description: "Check available seats for a specific bus",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"starting_point": {Type: genai.TypeString, Description: "Origin city"},
						"destination":    {Type: genai.TypeString, Description: "Destination city"},
						"date":           {Type: genai.TypeString, Description: "Travel date (YYYY-MM-DD format)"},
						"departure_time": {Type: genai.TypeString, Description: "Departure time (HH:MM format)"},
					},
					Required: []string{"starting_point", "destination", "date", "departure_time"},
				},
			},
			handler: r.checkAvailableSeats,
		},
		ToolCheckSeatAvailability: {
			decl: &genai.FunctionDeclaration{
				Name:        ToolCheckSeatAvailability,
				Description: "Check if a specific seat is available",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"starting_point": {Type: genai.TypeString, Description: "Origin city"},
						"destination":    {Type: genai.TypeString, Description: "Destination city"},
						"date":           {Type: genai.TypeString, Description: "Travel date (YYYY-MM-DD format)"},
						"departure_time": {Type: genai.TypeString, Description: "Departure time (HH:MM format)"},
						"seat_number":    {Type: genai.TypeString, Description: "Seat identifier (e.g., '1A')"},
					},
					Required: []string{"starting_point", "destination", "date", "departure_time", "seat_number"},
				},
			},
			handler: r.checkSeatAvailability,
		},
		ToolMakeReservation: {
			decl: &genai.FunctionDeclaration{
				Name:        ToolMakeReservation,
				Description: "Make a seat reservation",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"starting_point": {Type: genai.TypeString, Description: "Origin city"},
						"destination":    {Type: genai.TypeString, Description: "Destination city"},
						"date":           {Type: genai.TypeString, Description: "Travel date (YYYY-MM-DD format)"},
						"departure_time": {Type: genai.TypeString, Description: "Departure time (HH:MM format)"},
						"seat_number":    {Type: genai.TypeString, Description: "Seat identifier (e.g., '1A')"},
						"customer_name":  {Type: genai.TypeString, Description: "Customer's full name"},
						"phone_number":   {Type: genai.TypeString, Description: "Customer's phone number"},
					},
					Required: []string{"starting_point", "destination", "date", "departure_time", "seat_number", "customer_name", "phone_number"},
				},
			},
			handler: r.makeReservation,
		},
		ToolGetBookingDetails: {
			decl: &genai.FunctionDeclaration{
				Name:        ToolGetBookingDetails,
				Description: "Get details of an existing booking by ID",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"booking_id": {Type: genai.TypeString, Description: "The booking ID to look up"},
					},
					Required: []string{"booking_id"},
				},
			},
			handler: r.getBookingDetails,
		},
	}
	return r
}

// Declarations returns the tool schema list advertised to the model.
func (r *ToolRegistry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.tools))
	for _, name := range []string{
		ToolCheckAvailableBuses,
		ToolCheckAvailableSeats,
		ToolCheckSeatAvailability,
		ToolMakeReservation,
		ToolGetBookingDetails,
	} {
		decls = append(decls, r.tools[name].decl)
	}
	return decls
}

// Dispatch validates and executes one tool invocation, returning the result
// payload to feed back to the model.
func (r *ToolRegistry) Dispatch(ctx context.Context, call genai.FunctionCall) map[string]any {
	logger := utils.GetLogger()

	tool, ok := r.tools[call.Name]
	if !ok {
		logger.Warn("Model invoked unsupported operation", zap.String("name", call.Name))
		return map[string]any{"error": fmt.Sprintf("unsupported operation: %s", call.Name)}
	}

	if payload := validateArgs(tool.decl.Parameters, call.Args); payload != nil {
		logger.Warn("Tool argument validation failed",
			zap.String("tool", call.Name), zap.Any("args", call.Args))
		return payload
	}

	result := tool.handler(ctx, call.Args)
	logger.Debug("Tool dispatched", zap.String("tool", call.Name), zap.Any("result", result))
	return result
}

// validateArgs checks that required keys are present and all provided values
// match the declared primitive type. Returns an error payload, or nil when
// the arguments are valid.
func validateArgs(schema *genai.Schema, args map[string]any) map[string]any {
	for _, key := range schema.Required {
		if _, ok := args[key]; !ok {
			return map[string]any{"error": fmt.Sprintf("missing required argument: %s", key)}
		}
	}
	for key, value := range args {
		prop, ok := schema.Properties[key]
		if !ok {
			// Tolerate extra keys; the model sometimes adds commentary fields.
			continue
		}
		if !matchesType(prop.Type, value) {
			return map[string]any{"error": fmt.Sprintf("argument %s has wrong type", key)}
		}
	}
	return nil
}

func matchesType(t genai.Type, value any) bool {
	switch t {
	case genai.TypeString:
		_, ok := value.(string)
		return ok
	case genai.TypeNumber, genai.TypeInteger:
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case genai.TypeBoolean:
		_, ok := value.(bool)
		return ok
	default:
		return true
	}
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func (r *ToolRegistry) checkAvailableBuses(ctx context.Context, args map[string]any) map[string]any {
	slots, err := r.ledger.ListSlots(ctx, inventory.SlotFilter{
		Origin:      stringArg(args, "starting_point"),
		Destination: stringArg(args, "destination"),
		Date:        stringArg(args, "date"),
	})
	if err != nil {
		return map[string]any{"error": "failed to retrieve bus schedules"}
	}

	buses := make([]map[string]any, 0, len(slots))
	for _, slot := range slots {
		buses = append(buses, map[string]any{
			"origin":          slot.Origin,
			"destination":     slot.Destination,
			"date":            slot.Date,
			"departure_time":  slot.Schedule.DepartureTime,
			"bus_type":        slot.Schedule.BusType,
			"duration":        slot.Schedule.Duration,
			"fare":            slot.Schedule.Fare,
			"available_seats": slot.AvailableSeats,
		})
	}
	return map[string]any{"buses": buses}
}

func slotKeyFromArgs(args map[string]any) inventory.SlotKey {
	return inventory.SlotKey{
		Origin:        stringArg(args, "starting_point"),
		Destination:   stringArg(args, "destination"),
		Date:          stringArg(args, "date"),
		DepartureTime: stringArg(args, "departure_time"),
	}
}

func (r *ToolRegistry) checkAvailableSeats(ctx context.Context, args map[string]any) map[string]any {
	seats, err := r.ledger.AvailableSeats(ctx, slotKeyFromArgs(args))
	if err != nil {
		return map[string]any{"error": "failed to retrieve available seats"}
	}
	return map[string]any{"available_seats": seats}
}

func (r *ToolRegistry) checkSeatAvailability(ctx context.Context, args map[string]any) map[string]any {
	available, err := r.ledger.IsSeatAvailable(ctx, slotKeyFromArgs(args), stringArg(args, "seat_number"))
	if err != nil {
		return map[string]any{"error": "failed to check seat availability"}
	}
	return map[string]any{"available": available}
}

func (r *ToolRegistry) makeReservation(ctx context.Context, args map[string]any) map[string]any {
	booking, err := r.ledger.Reserve(ctx, inventory.ReservationRequest{
		Slot:         slotKeyFromArgs(args),
		SeatNumber:   stringArg(args, "seat_number"),
		CustomerName: stringArg(args, "customer_name"),
		PhoneNumber:  stringArg(args, "phone_number"),
	})
	if err != nil {
		if rerr, ok := err.(*inventory.ReservationError); ok {
			return map[string]any{"success": false, "error_message": rerr.Message}
		}
		return map[string]any{"success": false, "error_message": "reservation failed, please try again"}
	}
	return map[string]any{
		"success":           true,
		"booking_id":        booking.ID,
		"confirmation_code": booking.ConfirmationCode,
	}
}

func (r *ToolRegistry) getBookingDetails(ctx context.Context, args map[string]any) map[string]any {
	booking, err := r.ledger.GetBooking(ctx, stringArg(args, "booking_id"))
	if err != nil {
		if err == inventory.ErrBookingNotFound {
			return map[string]any{"error": "booking not found"}
		}
		return map[string]any{"error": "failed to look up booking"}
	}
	return map[string]any{
		"booking_id":        booking.ID,
		"confirmation_code": booking.ConfirmationCode,
		"starting_point":    booking.StartingPoint,
		"destination":       booking.Destination,
		"date":              booking.Date,
		"departure_time":    booking.DepartureTime,
		"seat_number":       booking.SeatNumber,
		"customer_name":     booking.CustomerName,
		"phone_number":      booking.PhoneNumber,
	}
}
