// File: services/assistant/history.go
package assistant

import (
	"github.com/MuhammadJamshaidGhaffar/automatic-bus-ticketing/models"

	genai "github.com/google/generative-ai-go/genai"
)

// toGenaiHistory rebuilds genai chat content from stored session messages.
func toGenaiHistory(messages []models.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		content := &genai.Content{Role: msg.Role}
		for _, part := range msg.Parts {
			switch {
			case part.FunctionCall != nil:
				content.Parts = append(content.Parts, genai.FunctionCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				})
			case part.FunctionResponse != nil:
				content.Parts = append(content.Parts, genai.FunctionResponse{
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				})
			case part.InlineData != nil:
				content.Parts = append(content.Parts, genai.Blob{
					MIMEType: part.InlineData.MIMEType,
					Data:     part.InlineData.Data,
				})
			default:
				content.Parts = append(content.Parts, genai.Text(part.Text))
			}
		}
		history = append(history, content)
	}
	return history
}

// fromGenaiHistory converts genai chat content into the serializable message
// form the session store persists.
func fromGenaiHistory(contents []*genai.Content) []models.Message {
	messages := make([]models.Message, 0, len(contents))
	for _, content := range contents {
		msg := models.Message{Role: content.Role}
		for _, part := range content.Parts {
			switch p := part.(type) {
			case genai.Text:
				msg.Parts = append(msg.Parts, models.MessagePart{Text: string(p)})
			case genai.FunctionCall:
				msg.Parts = append(msg.Parts, models.MessagePart{
					FunctionCall: &models.FunctionCall{Name: p.Name, Args: p.Args},
				})
			case genai.FunctionResponse:
				msg.Parts = append(msg.Parts, models.MessagePart{
					FunctionResponse: &models.FunctionResponse{Name: p.Name, Response: p.Response},
				})
			case genai.Blob:
				msg.Parts = append(msg.Parts, models.MessagePart{
					InlineData: &models.InlineData{MIMEType: p.MIMEType, Data: p.Data},
				})
			}
		}
		messages = append(messages, msg)
	}
	return messages
}
