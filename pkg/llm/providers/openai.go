package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"go.uber.org/zap"
)

// OpenAIProvider ходит в Chat Completions API OpenAI или совместимого сервиса
type OpenAIProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *openai.Client
	logger  *zap.Logger
}

func NewOpenAIProvider(config Config, logger *zap.Logger) (*OpenAIProvider, error) {
	return newOpenAICompatible("openai", config, logger)
}

func newOpenAICompatible(name string, config Config, logger *zap.Logger) (*OpenAIProvider, error) {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}

	provider := &OpenAIProvider{
		name:    name,
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		logger:  logger.With(zap.String("provider", name)),
	}

	if err := provider.ValidateConfig(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(provider.apiKey),
		option.WithHTTPClient(&http.Client{Timeout: config.Timeout}),
		// retries are handled by llm.Client
		option.WithMaxRetries(0),
	}
	if provider.baseURL != "" {
		opts = append(opts, option.WithBaseURL(provider.baseURL))
	}

	client := openai.NewClient(opts...)
	provider.client = &client

	return provider, nil
}

func (p *OpenAIProvider) GetName() string {
	return p.name
}

func (p *OpenAIProvider) ValidateConfig() error {
	if p.apiKey == "" {
		return fmt.Errorf("API key is required for %s", p.name)
	}
	if p.model == "" {
		return fmt.Errorf("model is required for %s", p.name)
	}
	return nil
}

func (p *OpenAIProvider) GetSupportedModels() []string {
	if p.name == "openrouter" {
		return []string{
			"openai/gpt-4o-mini",
			"anthropic/claude-sonnet-4",
			"google/gemma-3-27b-it:free",
			"meta/llama-3.1-8b-instruct:free",
		}
	}
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
	}
}

func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []Message) (*ChatResponse, error) {
	oaMessages := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			oaMessages = append(oaMessages, openai.SystemMessage(msg.Content))
		case "assistant":
			oaMessages = append(oaMessages, openai.AssistantMessage(msg.Content))
		default:
			oaMessages = append(oaMessages, openai.UserMessage(msg.Content))
		}
	}

	p.logger.Debug("Sending chat completion request",
		zap.String("model", p.model),
		zap.Int("messages_count", len(messages)),
	)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: oaMessages,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}

	return p.convertResponse(resp), nil
}

func (p *OpenAIProvider) convertResponse(resp *openai.ChatCompletion) *ChatResponse {
	choices := make([]Choice, len(resp.Choices))
	for i, choice := range resp.Choices {
		choices[i] = Choice{
			Index: int(choice.Index),
			Message: Message{
				Role:    "assistant",
				Content: choice.Message.Content,
			},
			FinishReason: string(choice.FinishReason),
		}
	}

	return &ChatResponse{
		ID:      resp.ID,
		Model:   resp.Model,
		Choices: choices,
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}
}
