package llm_service

import (
	"context"
)

type MockLLMService struct {
	GenerateFunc func(ctx context.Context, req CompletionRequest) (*Completion, error)
}

func (m *MockLLMService) Generate(ctx context.Context, req CompletionRequest) (*Completion, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &Completion{Content: "mock response"}, nil
}
