// File: services/assistant/gemini.go
package assistant

import (
	"context"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelReply is one model response: narration text and/or requested tool
// invocations.
type ModelReply struct {
	Text          string
	FunctionCalls []genai.FunctionCall
}

// ModelSession is a single conversation with the LLM service. Send is the
// only suspension point of a turn.
type ModelSession interface {
	Send(ctx context.Context, parts ...genai.Part) (*ModelReply, error)
	History() []*genai.Content
}

// ModelClient opens model sessions primed with system instructions, the tool
// schema list and prior history.
type ModelClient interface {
	StartSession(systemInstruction string, declarations []*genai.FunctionDeclaration, history []*genai.Content) ModelSession
}

// GeminiClient implements ModelClient over the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelName: modelName}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) StartSession(systemInstruction string, declarations []*genai.FunctionDeclaration, history []*genai.Content) ModelSession {
	model := g.client.GenerativeModel(g.modelName)
	model.SystemInstruction = &genai.Content{
		Role:  "system",
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}
	if len(declarations) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: declarations}}
	}
	// Low temperature for consistent function calling.
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(2048)

	cs := model.StartChat()
	cs.History = history
	return &geminiSession{chat: cs}
}

type geminiSession struct {
	chat *genai.ChatSession
}

func (s *geminiSession) Send(ctx context.Context, parts ...genai.Part) (*ModelReply, error) {
	resp, err := s.chat.SendMessage(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini send error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return &ModelReply{}, nil
	}

	candidate := resp.Candidates[0]
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return &ModelReply{
		Text:          sb.String(),
		FunctionCalls: candidate.FunctionCalls(),
	}, nil
}

func (s *geminiSession) History() []*genai.Content {
	return s.chat.History
}
