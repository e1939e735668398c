package llm

import (
	"context"
	"strings"
)

// Config sources for each provider's API key, referenced in error messages
const (
	openaiConfigKey = "openai_api_key"
	openaiEnvVar    = "OPENAI_API_KEY"
	geminiConfigKey = "gemini_api_key"
	geminiEnvVar    = "GEMINI_API_KEY"
)

// ProviderFactory creates providers based on model name
type ProviderFactory struct {
	openaiAPIKey string
	geminiAPIKey string
}

// NewProviderFactory creates a new provider factory. Keys may be empty;
// requesting a provider whose key is missing returns a *ConfigurationError.
func NewProviderFactory(openaiAPIKey, geminiAPIKey string) *ProviderFactory {
	return &ProviderFactory{
		openaiAPIKey: openaiAPIKey,
		geminiAPIKey: geminiAPIKey,
	}
}

// GetProvider returns the appropriate provider for the given model name
func (f *ProviderFactory) GetProvider(ctx context.Context, model string) (Provider, error) {
	modelLower := strings.ToLower(model)

	// Gemini models use Google's API
	if strings.HasPrefix(modelLower, "gemini-") {
		return f.geminiProvider(ctx)
	}

	// GPT models and anything unrecognized use OpenAI
	return f.openaiProvider()
}

func (f *ProviderFactory) openaiProvider() (Provider, error) {
	if f.openaiAPIKey == "" {
		return nil, &ConfigurationError{
			Provider:  providerNameOpenAI,
			ConfigKey: openaiConfigKey,
			EnvVar:    openaiEnvVar,
		}
	}
	return NewOpenAIProvider(f.openaiAPIKey), nil
}

func (f *ProviderFactory) geminiProvider(ctx context.Context) (Provider, error) {
	if f.geminiAPIKey == "" {
		return nil, &ConfigurationError{
			Provider:  providerNameGemini,
			ConfigKey: geminiConfigKey,
			EnvVar:    geminiEnvVar,
		}
	}
	return NewGeminiProvider(ctx, f.geminiAPIKey)
}
