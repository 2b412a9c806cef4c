// File: services/assistant/prompt.go
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/config"
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InstructionPrompt is the system-instruction pair the orchestrator composes
// each turn: the behavioral prompt and the required response structure.
type InstructionPrompt struct {
	InstructionPrompt string `bson:"instructionPrompt" json:"instructionPrompt"`
	ResponseStructure string `bson:"responseStructure" json:"responseStructure"`
}

// PromptStore loads and saves the instruction prompt, so an operator (or an
// offline process) can revise it without a deploy.
type PromptStore interface {
	Load(ctx context.Context) (*InstructionPrompt, error)
	Save(ctx context.Context, prompt *InstructionPrompt) error
}

const defaultInstructionPrompt = `You are a helpful voice-based bus booking assistant.

You have access to the following tools to get accurate information about cities, buses, seat availability, and to make bookings.

Always prefer calling a function to **verify information** (such as starting point, destination, seat number, departure time) before confirming it with the user or proceeding with a booking.

In each step, decide whether you need more data or should call a tool.

Do not make assumptions. Never guess values like cities, dates, or seat numbers. Always check validity via the tools.

You will operate in a loop:
- Call tools as many times as needed.
- When no tool call is required, return the final user-facing response and exit.

If the user is just asking for information, give accurate responses by calling the appropriate functions.

Your final answer should not include tool calls.
`

const defaultResponseStructure = `
Your final response MUST be a valid JSON with this structure:
{
  narration: string,
  updatedBookingDetails: {
    starting_point: string | null,
    destination: string | null,
    date: string | null,
    departure_time: string | null,
    seat_number: string | null,
    customer_name: string | null,
    phone_number: string | null,
    confirmed: boolean
  },
  bookingComplete: boolean,
  bookingSuccessful?: boolean,
  booking_id?: string,
  confirmation_code?: string
}
`

// DefaultInstructionPrompt returns the built-in prompt pair.
func DefaultInstructionPrompt() *InstructionPrompt {
	return &InstructionPrompt{
		InstructionPrompt: defaultInstructionPrompt,
		ResponseStructure: defaultResponseStructure,
	}
}

const promptDocID = "assistant"

// MongoPromptStore keeps the instruction prompt as a single document,
// falling back to the built-in default when none has been saved.
type MongoPromptStore struct {
	coll *mongo.Collection
}

func NewMongoPromptStore() *MongoPromptStore {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoPromptStore{coll: db.Collection("prompts")}
}

func (s *MongoPromptStore) Load(ctx context.Context) (*InstructionPrompt, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var prompt InstructionPrompt
	err := s.coll.FindOne(ctx, bson.M{"_id": promptDocID}).Decode(&prompt)
	if err == mongo.ErrNoDocuments {
		return DefaultInstructionPrompt(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading instruction prompt: %w", err)
	}
	return &prompt, nil
}

func (s *MongoPromptStore) Save(ctx context.Context, prompt *InstructionPrompt) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": promptDocID},
		bson.M{"$set": prompt},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("error saving instruction prompt: %w", err)
	}
	return nil
}

// StaticPromptStore always serves a fixed prompt; used when no Mongo backend
// is configured.
type StaticPromptStore struct {
	Prompt *InstructionPrompt
}

func (s *StaticPromptStore) Load(ctx context.Context) (*InstructionPrompt, error) {
	if s.Prompt != nil {
		return s.Prompt, nil
	}
	return DefaultInstructionPrompt(), nil
}

func (s *StaticPromptStore) Save(ctx context.Context, prompt *InstructionPrompt) error {
	s.Prompt = prompt
	return nil
}
