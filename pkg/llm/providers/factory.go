package providers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

type Factory struct {
	logger *zap.Logger
}

func NewFactory(logger *zap.Logger) ProviderFactory {
	return &Factory{
		logger: logger,
	}
}

func (f *Factory) CreateProvider(config Config) (Provider, error) {
	var (
		provider Provider
		err      error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		provider, err = NewOpenAIProvider(config, f.logger)
	case "openrouter":
		// OpenRouter говорит на протоколе OpenAI, отличается только адрес
		if config.BaseURL == "" {
			config.BaseURL = defaultOpenRouterURL
		}
		provider, err = newOpenAICompatible("openrouter", config, f.logger)
	case "gemini":
		provider, err = NewGeminiProvider(context.Background(), config, f.logger)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: %s)",
			config.Provider, strings.Join(f.GetSupportedProviders(), ", "))
	}

	if err != nil {
		return nil, err
	}
	return provider, nil
}

func (f *Factory) GetSupportedProviders() []string {
	return []string{"openai", "openrouter", "gemini"}
}
