package llm_service

import (
	"log/slog"
	"testing"
)

func TestNew(t *testing.T) {
	logger := slog.Default()

	tests := []struct {
		name          string
		provider      string
		apiKey        string
		expectedType  string
		expectedError bool
	}{
		{name: "openai", provider: "openai", apiKey: "sk-test", expectedType: "*llm_service.OpenAIService"},
		{name: "gemini", provider: "gemini", apiKey: "g-test", expectedType: "*llm_service.GeminiService"},
		{name: "case insensitive", provider: "OpenAI", apiKey: "sk-test", expectedType: "*llm_service.OpenAIService"},
		{name: "openai without key", provider: "openai", expectedError: true},
		{name: "gemini without key", provider: "gemini", expectedError: true},
		{name: "unknown provider", provider: "anthropic", apiKey: "x", expectedError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := New(tt.provider, tt.apiKey, "", logger)

			if tt.expectedError {
				if err == nil {
					t.Fatal("expected an error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			switch svc.(type) {
			case *OpenAIService:
				if tt.expectedType != "*llm_service.OpenAIService" {
					t.Errorf("unexpected service type %T", svc)
				}
			case *GeminiService:
				if tt.expectedType != "*llm_service.GeminiService" {
					t.Errorf("unexpected service type %T", svc)
				}
			default:
				t.Errorf("unexpected service type %T", svc)
			}
		})
	}
}

func TestDefaultModel(t *testing.T) {
	if got := DefaultModel("openai"); got != DefaultOpenAIModel {
		t.Errorf("expected %s, got %s", DefaultOpenAIModel, got)
	}
	if got := DefaultModel("gemini"); got != DefaultGeminiModel {
		t.Errorf("expected %s, got %s", DefaultGeminiModel, got)
	}
}
