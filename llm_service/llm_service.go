package llm_service

import "context"

// CompletionRequest is a single text generation request. Model and
// Temperature are resolved by the caller before dispatch.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	Temperature  float64
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

type Completion struct {
	Content string
	Usage   Usage
}

// LLMService is the capability the pipeline depends on. Implementations are
// selected once at startup (see New); stages never inspect the concrete type.
type LLMService interface {
	Generate(ctx context.Context, req CompletionRequest) (*Completion, error)
}
