// File: services/assistant/parser.go
package assistant

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"
)

// ParseError is a model reply that could not be interpreted as the expected
// structure. The orchestrator degrades the turn instead of failing it.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse model reply: %s", e.Reason)
}

var fencedBlockRe = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ParseAssistantReply extracts the structured reply from raw model text.
// Fallback chain: whole text as JSON, then a fenced code block, then the
// first balanced {...} span. Each candidate must also pass the shape check.
func ParseAssistantReply(raw string) (*models.AssistantReply, error) {
	candidates := []string{raw}
	if m := fencedBlockRe.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, m[1])
	}
	if span := firstBalancedBraceSpan(raw); span != "" {
		candidates = append(candidates, span)
	}

	var lastReason string
	for _, candidate := range candidates {
		reply, reason := decodeReply(candidate)
		if reply != nil {
			return reply, nil
		}
		lastReason = reason
	}
	if lastReason == "" {
		lastReason = "no JSON found in response"
	}
	return nil, &ParseError{Raw: raw, Reason: lastReason}
}

// decodeReply parses one candidate string and validates the required
// top-level keys and their primitive types.
func decodeReply(candidate string) (*models.AssistantReply, string) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, "empty candidate"
	}

	var shape map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &shape); err != nil {
		return nil, err.Error()
	}

	narration, ok := shape["narration"]
	if !ok {
		return nil, "missing narration"
	}
	var narrationStr string
	if err := json.Unmarshal(narration, &narrationStr); err != nil {
		return nil, "narration is not a string"
	}

	if details, ok := shape["updatedBookingDetails"]; ok {
		var detailsObj map[string]json.RawMessage
		if err := json.Unmarshal(details, &detailsObj); err != nil && string(details) != "null" {
			return nil, "updatedBookingDetails is not an object"
		}
	} else {
		return nil, "missing updatedBookingDetails"
	}

	complete, ok := shape["bookingComplete"]
	if !ok {
		return nil, "missing bookingComplete"
	}
	var completeBool bool
	if err := json.Unmarshal(complete, &completeBool); err != nil {
		return nil, "bookingComplete is not a boolean"
	}

	var reply models.AssistantReply
	if err := json.Unmarshal([]byte(candidate), &reply); err != nil {
		return nil, err.Error()
	}
	return &reply, ""
}

// firstBalancedBraceSpan returns the first {...} span with balanced braces,
// ignoring braces inside JSON strings. Empty when none exists.
func firstBalancedBraceSpan(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
