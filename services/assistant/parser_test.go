// File: services/assistant/parser_test.go
package assistant

import (
	"errors"
	"testing"
)

const validReplyJSON = `{
	"narration": "Your seat is booked!",
	"updatedBookingDetails": {"seat_number": "1A"},
	"bookingComplete": true,
	"bookingSuccessful": true
}`

func TestParseAssistantReply_WholeText(t *testing.T) {
	reply, err := ParseAssistantReply(validReplyJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Narration != "Your seat is booked!" {
		t.Errorf("narration = %q", reply.Narration)
	}
	if !reply.BookingComplete {
		t.Error("bookingComplete not decoded")
	}
	if reply.BookingSuccessful == nil || !*reply.BookingSuccessful {
		t.Error("bookingSuccessful not decoded")
	}
	if reply.UpdatedBookingDetails.SeatNumber == nil || *reply.UpdatedBookingDetails.SeatNumber != "1A" {
		t.Error("updatedBookingDetails not decoded")
	}
}

func TestParseAssistantReply_FencedBlock(t *testing.T) {
	raw := "Sure! ```json\n" + validReplyJSON + "\n```"
	reply, err := ParseAssistantReply(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Narration != "Your seat is booked!" {
		t.Errorf("narration = %q", reply.Narration)
	}
}

func TestParseAssistantReply_FencedBlockNoLanguageTag(t *testing.T) {
	raw := "```\n" + validReplyJSON + "\n```"
	if _, err := ParseAssistantReply(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseAssistantReply_BalancedBraces(t *testing.T) {
	raw := "Here is the result: " + validReplyJSON + " hope that helps"
	reply, err := ParseAssistantReply(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Narration != "Your seat is booked!" {
		t.Errorf("narration = %q", reply.Narration)
	}
}

func TestParseAssistantReply_BracesInsideStrings(t *testing.T) {
	raw := `prefix {"narration": "use {braces} freely", "updatedBookingDetails": {}, "bookingComplete": false} suffix`
	reply, err := ParseAssistantReply(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Narration != "use {braces} freely" {
		t.Errorf("narration = %q", reply.Narration)
	}
}

func TestParseAssistantReply_Failures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"plain prose", "I could not find any buses for that route."},
		{"empty", ""},
		{"missing narration", `{"updatedBookingDetails": {}, "bookingComplete": false}`},
		{"narration not a string", `{"narration": 42, "updatedBookingDetails": {}, "bookingComplete": false}`},
		{"missing updatedBookingDetails", `{"narration": "hi", "bookingComplete": false}`},
		{"details not an object", `{"narration": "hi", "updatedBookingDetails": "1A", "bookingComplete": false}`},
		{"missing bookingComplete", `{"narration": "hi", "updatedBookingDetails": {}}`},
		{"bookingComplete not a boolean", `{"narration": "hi", "updatedBookingDetails": {}, "bookingComplete": "yes"}`},
		{"unbalanced braces", `{"narration": "hi"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAssistantReply(tc.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %T", err)
			}
			if perr.Raw != tc.raw {
				t.Errorf("Raw = %q, want original text", perr.Raw)
			}
		})
	}
}

func TestParseAssistantReply_NullDetails(t *testing.T) {
	raw := `{"narration": "hi", "updatedBookingDetails": null, "bookingComplete": false}`
	reply, err := ParseAssistantReply(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.UpdatedBookingDetails.SeatNumber != nil {
		t.Error("null details should decode to zero value")
	}
}
