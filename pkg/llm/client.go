package llm

import (
	"context"
	"strings"

	"ignis-bot/pkg/llm/providers"

	"go.uber.org/zap"
)

// Client обертка над провайдером: один запрос, одна строка ответа
type Client struct {
	provider providers.Provider
	retry    RetryConfig
	logger   *zap.Logger
}

type Message = providers.Message

type ChatResponse = providers.ChatResponse

type Choice = providers.Choice

type Usage = providers.Usage

// NewClientWithProvider создает клиент с готовым провайдером
func NewClientWithProvider(provider providers.Provider, retry RetryConfig, logger *zap.Logger) *Client {
	return &Client{
		provider: provider,
		retry:    retry,
		logger:   logger.With(zap.String("component", "llm_client")),
	}
}

// ChatCompletion выполняет запрос к LLM (делегирует провайдеру)
func (c *Client) ChatCompletion(ctx context.Context, messages []Message) (*ChatResponse, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyMessages
	}

	c.logger.Debug("Executing chat completion",
		zap.String("provider", c.provider.GetName()),
		zap.Int("messages_count", len(messages)),
	)

	return c.provider.ChatCompletion(ctx, messages)
}

// Complete отправляет сообщения один раз и возвращает текст первого варианта
// без пробелов по краям
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.ChatCompletion(ctx, messages)
	if err != nil {
		return "", err
	}
	return c.firstChoice(resp)
}

// CompleteWithRetry как Complete, но ErrRateLimited повторяется согласно RetryConfig клиента
func (c *Client) CompleteWithRetry(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.ChatCompletionWithRetry(ctx, messages, c.retry)
	if err != nil {
		return "", err
	}
	return c.firstChoice(resp)
}

func (c *Client) firstChoice(resp *ChatResponse) (string, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.Debug("Chat completion done",
		zap.String("model", resp.Model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.String("finish_reason", resp.Choices[0].FinishReason),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GetProviderName возвращает имя используемого провайдера
func (c *Client) GetProviderName() string {
	return c.provider.GetName()
}

func (c *Client) GetSupportedModels() []string {
	return c.provider.GetSupportedModels()
}

// Close освобождает ресурсы провайдера, если они есть (gemini держит gRPC соединение)
func (c *Client) Close() error {
	if closer, ok := c.provider.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
