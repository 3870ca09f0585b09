package llm

import (
	"ignis-bot/internal/storage/models"
)

// ConvertToLLMMessages converts storage models to LLM messages
func ConvertToLLMMessages(storageMessages []models.Message) []Message {
	llmMessages := make([]Message, len(storageMessages))

	for i, msg := range storageMessages {
		llmMessages[i] = Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	return llmMessages
}

// WithSystemPrompt prepends a system message when the prompt is not empty
func WithSystemPrompt(systemPrompt string, messages ...Message) []Message {
	if systemPrompt == "" {
		return messages
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: string(models.RoleSystem), Content: systemPrompt})
	return append(out, messages...)
}
