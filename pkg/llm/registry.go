package llm

import (
	"strings"

	"ignis-bot/pkg/llm/providers"

	"go.uber.org/zap"
)

// ProviderInfo описание провайдера для /api/v1/config/info
type ProviderInfo struct {
	Name            string   `json:"name"`
	ID              string   `json:"id"`
	Description     string   `json:"description"`
	SupportedModels []string `json:"supported_models"`
	RequiredConfig  []string `json:"required_config"`
}

// Registry реестр доступных провайдеров
type Registry struct {
	factory providers.ProviderFactory
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		factory: providers.NewFactory(logger),
		logger:  logger,
	}
}

// GetAvailableProviders возвращает список доступных провайдеров с их описанием
func (r *Registry) GetAvailableProviders() []ProviderInfo {
	names := r.factory.GetSupportedProviders()
	infos := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		infos = append(infos, getProviderInfo(name))
	}
	return infos
}

// NewClient создает провайдер через фабрику и оборачивает его в Client
func (r *Registry) NewClient(config providers.Config, retry RetryConfig) (*Client, error) {
	provider, err := r.factory.CreateProvider(config)
	if err != nil {
		return nil, err
	}

	r.logger.Info("LLM provider created",
		zap.String("provider", provider.GetName()),
		zap.String("model", config.Model))

	return NewClientWithProvider(provider, retry, r.logger), nil
}

func getProviderInfo(provider string) ProviderInfo {
	switch strings.ToLower(provider) {
	case "openai":
		return ProviderInfo{
			Name:            "OpenAI",
			ID:              "openai",
			SupportedModels: []string{"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-3.5-turbo"},
			Description:     "OpenAI chat completions API",
			RequiredConfig:  []string{"api_key", "model"},
		}
	case "openrouter":
		return ProviderInfo{
			Name:            "OpenRouter",
			ID:              "openrouter",
			SupportedModels: []string{"openai/gpt-4o-mini", "google/gemma-3-27b-it:free", "meta-llama/llama-3.1-8b-instruct:free"},
			Description:     "OpenRouter provides access to multiple LLM providers through a unified API",
			RequiredConfig:  []string{"api_key", "model"},
		}
	case "gemini":
		return ProviderInfo{
			Name:            "Google Gemini",
			ID:              "gemini",
			SupportedModels: []string{"gemini-2.0-flash", "gemini-1.5-pro", "gemini-1.5-flash"},
			Description:     "Google's Gemini models",
			RequiredConfig:  []string{"api_key", "model"},
		}
	default:
		return ProviderInfo{
			Name:           provider,
			ID:             provider,
			Description:    "Unknown provider",
			RequiredConfig: []string{"api_key", "model"},
		}
	}
}
