package llm_service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIServiceGenerate(t *testing.T) {
	var captured openAIChatRequest

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header: %s", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decoding request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "enhanced content"}},
			},
			"usage": map[string]int{
				"prompt_tokens":     120,
				"completion_tokens": 80,
				"total_tokens":      200,
			},
		})
	}))
	defer ts.Close()

	svc := NewOpenAIService("sk-test", "", slog.Default())
	svc.apiURL = ts.URL

	completion, err := svc.Generate(context.Background(), CompletionRequest{
		SystemPrompt: "system text",
		UserPrompt:   "user text",
		Model:        "gpt-4o-mini",
		Temperature:  0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if completion.Content != "enhanced content" {
		t.Errorf("expected content %q, got %q", "enhanced content", completion.Content)
	}
	if completion.Usage.TotalTokens != 200 {
		t.Errorf("expected 200 total tokens, got %d", completion.Usage.TotalTokens)
	}

	if captured.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", captured.Model)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", captured.Messages)
	}
}

func TestOpenAIServiceAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "Rate limit reached",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer ts.Close()

	svc := NewOpenAIService("sk-test", "", slog.Default())
	svc.apiURL = ts.URL
	// Every attempt fails, so keep the test fast with a single one.
	_, err := svc.callOpenAI(context.Background(), CompletionRequest{Model: "gpt-4o-mini"})
	if err == nil {
		t.Fatal("expected an error")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Rate limit reached" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
}

func TestGeminiServiceGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "g-test" {
			t.Errorf("expected key query parameter, got %q", r.URL.Query().Get("key"))
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "generated text"}},
				}},
			},
			"usageMetadata": map[string]int{
				"promptTokenCount":     50,
				"candidatesTokenCount": 30,
				"totalTokenCount":      80,
			},
		})
	}))
	defer ts.Close()

	svc := NewGeminiService("g-test", slog.Default())
	svc.apiBaseURL = ts.URL

	completion, err := svc.Generate(context.Background(), CompletionRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
		Model:        "gemini-1.5-pro",
		Temperature:  0.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if completion.Content != "generated text" {
		t.Errorf("expected %q, got %q", "generated text", completion.Content)
	}
	if completion.Usage.PromptTokens != 50 || completion.Usage.CompletionTokens != 30 || completion.Usage.TotalTokens != 80 {
		t.Errorf("unexpected usage: %+v", completion.Usage)
	}
}
