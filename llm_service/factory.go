package llm_service

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-1.5-pro"
)

// New builds the service for the configured provider. The API key must
// already be resolved; a missing key is a setup error, not a per-item one.
func New(provider, apiKey, orgID string, logger *slog.Logger) (LLMService, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAIService(apiKey, orgID, logger), nil
	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set")
		}
		return NewGeminiService(apiKey, logger), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if strings.ToLower(provider) == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}
