// pkg/llm/providers/gemini.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

type GeminiProvider struct {
	apiKey string
	model  string
	client *genai.Client
	logger *zap.Logger
}

func NewGeminiProvider(ctx context.Context, config Config, logger *zap.Logger) (*GeminiProvider, error) {
	provider := &GeminiProvider{
		apiKey: config.APIKey,
		model:  config.Model,
		logger: logger.With(zap.String("provider", "gemini")),
	}

	if err := provider.ValidateConfig(); err != nil {
		return nil, err
	}

	opts := []option.ClientOption{option.WithAPIKey(provider.apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(strings.TrimRight(config.BaseURL, "/")))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	provider.client = client

	return provider, nil
}

func (p *GeminiProvider) GetName() string {
	return "gemini"
}

func (p *GeminiProvider) ValidateConfig() error {
	if p.apiKey == "" {
		return fmt.Errorf("API key is required for Gemini")
	}
	if p.model == "" {
		return fmt.Errorf("model is required for Gemini")
	}
	return nil
}

func (p *GeminiProvider) GetSupportedModels() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	}
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

// geminiConversation раскладывает сообщения на системную инструкцию, историю и последний вопрос
type geminiConversation struct {
	system  string
	history []*genai.Content
	prompt  string
}

func toGeminiConversation(messages []Message) (*geminiConversation, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("messages cannot be empty")
	}

	last := messages[len(messages)-1]
	if last.Role != "user" {
		return nil, fmt.Errorf("last message must come from the user, got %q", last.Role)
	}

	conv := &geminiConversation{prompt: last.Content}
	var system []string
	for _, msg := range messages[:len(messages)-1] {
		switch msg.Role {
		case "system":
			system = append(system, msg.Content)
		case "assistant":
			conv.history = append(conv.history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			conv.history = append(conv.history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	conv.system = strings.Join(system, "\n\n")

	return conv, nil
}

func (p *GeminiProvider) ChatCompletion(ctx context.Context, messages []Message) (*ChatResponse, error) {
	conv, err := toGeminiConversation(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to convert messages: %w", err)
	}

	// новая модель на каждый вызов: у каждой команды своя системная инструкция
	model := p.client.GenerativeModel(p.model)
	if conv.system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(conv.system)}}
	}
	chat := model.StartChat()
	chat.History = conv.history

	p.logger.Debug("Sending Gemini request",
		zap.String("model", p.model),
		zap.Int("messages_count", len(messages)),
	)

	resp, err := chat.SendMessage(ctx, genai.Text(conv.prompt))
	if err != nil {
		if isGeminiRateLimit(err) {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}

	return p.convertResponse(resp), nil
}

func (p *GeminiProvider) convertResponse(resp *genai.GenerateContentResponse) *ChatResponse {
	choices := make([]Choice, 0, len(resp.Candidates))
	for i, cand := range resp.Candidates {
		var text strings.Builder
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
		choices = append(choices, Choice{
			Index:        i,
			Message:      Message{Role: "assistant", Content: text.String()},
			FinishReason: cand.FinishReason.String(),
		})
	}

	out := &ChatResponse{Model: p.model, Choices: choices}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}

func isGeminiRateLimit(err error) bool {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.HTTPCode() == http.StatusTooManyRequests {
		return true
	}
	if st := apiErr.GRPCStatus(); st != nil && st.Code() == codes.ResourceExhausted {
		return true
	}
	return false
}
