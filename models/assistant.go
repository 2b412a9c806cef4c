package models

// TurnRequest is the payload coming from the frontend into /api/assistant/turn.
type TurnRequest struct {
	SessionID        string          `json:"session_id"`
	Text             string          `json:"text,omitempty"`             // typed input, if any
	AudioBase64      string          `json:"audio_base64,omitempty"`     // voice input, forwarded untouched
	AudioMIMEType    string          `json:"audio_mime_type,omitempty"`  // e.g. "audio/webm"
	BookingDetails   *BookingDetails `json:"booking_details,omitempty"`  // caller-carried aggregate; loaded from the session store when absent
	FirstInteraction bool            `json:"first_interaction,omitempty"`
}

// AssistantReply is the structured reply returned to the caller after every
// turn, including degraded and faulted turns.
type AssistantReply struct {
	Narration             string         `json:"narration"`
	AgentThinking         string         `json:"agentThinking,omitempty"`
	UpdatedBookingDetails BookingDetails `json:"updatedBookingDetails"`
	BookingComplete       bool           `json:"bookingComplete"`
	BookingSuccessful     *bool          `json:"bookingSuccessful,omitempty"`
	BookingID             string         `json:"booking_id,omitempty"`
	ConfirmationCode      string         `json:"confirmation_code,omitempty"`
	WantsToCallFunction   bool           `json:"wants_to_call_function,omitempty"`
	ConversationEnded     bool           `json:"conversationEnded,omitempty"`
}

// Message roles as stored in session history. They mirror the Gemini chat
// roles so history can round-trip through the model unchanged.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// FunctionCall is a tool invocation requested by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// FunctionResponse is the result payload of one tool invocation, fed back to
// the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response,omitempty"`
}

// InlineData carries a binary payload (caller audio) inside a message part.
type InlineData struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// MessagePart is one part of a conversation message. Exactly one field is
// set.
type MessagePart struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
	InlineData       *InlineData       `json:"inline_data,omitempty"`
}

// Message is one entry of the per-session conversation history.
type Message struct {
	Role  string        `json:"role"`
	Parts []MessagePart `json:"parts"`
}
