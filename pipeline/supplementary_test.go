package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/serisow/codedoc/finder"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/vector_store"
)

func TestGenerateTutorialTopicsTruncatesOverProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumTutorials = 3

	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			return &llm_service.Completion{
				Content: "1. Getting started\n2. Configuration\n3. Deployment\n4. Extra one\n5. Another extra",
				Usage:   llm_service.Usage{TotalTokens: 20},
			}, nil
		},
	}

	pctx := testContext(cfg, llm, &vector_store.MockClient{})
	topics, usage, err := generateTutorialTopics(context.Background(), pctx, "a.py\nb.py", cfg.NumTutorials)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("expected exactly 3 topics, got %d", len(topics))
	}
	if topics[0] != "Getting started" || topics[2] != "Deployment" {
		t.Errorf("unexpected topics: %v", topics)
	}
	if usage.TotalTokens != 20 {
		t.Errorf("expected 20 tokens from a single attempt, got %d", usage.TotalTokens)
	}
}

func TestGenerateTutorialTopicsRetriesUnderProduction(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumTutorials = 3

	calls := 0
	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			calls++
			if calls == 1 {
				return &llm_service.Completion{Content: "1. Only topic"}, nil
			}
			return &llm_service.Completion{Content: "1. First\n2. Second\n3. Third"}, nil
		},
	}

	pctx := testContext(cfg, llm, &vector_store.MockClient{})
	topics, _, err := generateTutorialTopics(context.Background(), pctx, "a.py", cfg.NumTutorials)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
	if len(topics) != 3 {
		t.Errorf("expected 3 topics after retry, got %d", len(topics))
	}
}

func TestGenerateTutorialTopicsPersistentShortfall(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumTutorials = 5

	calls := 0
	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			calls++
			return &llm_service.Completion{Content: "1. One\n2. Two"}, nil
		},
	}

	pctx := testContext(cfg, llm, &vector_store.MockClient{})
	_, _, err := generateTutorialTopics(context.Background(), pctx, "a.py", cfg.NumTutorials)
	if err == nil {
		t.Fatal("expected an error after persistent shortfall")
	}
	if calls != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", calls)
	}
}

func TestSupplementaryStageWritesDocuments(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumTutorials = 2
	files := []finder.FileRecord{
		writeInput(t, cfg, "a.py", []byte("x = 1")),
		writeInput(t, cfg, "sub/b.py", []byte("y = 2")),
	}

	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			if strings.Contains(req.UserPrompt, "tutorial topics") {
				return &llm_service.Completion{Content: "1. Setup Guide\n2. API Walkthrough"}, nil
			}
			return &llm_service.Completion{Content: "document body"}, nil
		},
	}

	pctx := testContext(cfg, llm, &vector_store.MockClient{})
	stage := runSupplementaryStage(context.Background(), pctx, files)

	if stage.Failed != 0 {
		t.Fatalf("expected no failures, got %d: %+v", stage.Failed, stage.Results)
	}

	for _, rel := range []string{"project_faq.md", "architecture.md"} {
		if _, err := os.Stat(filepath.Join(pctx.SupplementaryDir(), rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	entries, err := os.ReadDir(pctx.TutorialsDir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 tutorials, got %d", len(entries))
	}
	if entries[0].Name() != "01-setup-guide.md" {
		t.Errorf("unexpected tutorial filename %s", entries[0].Name())
	}
}

func TestSupplementaryStageIsolatesFailures(t *testing.T) {
	cfg := testConfig(t)
	cfg.NumTutorials = 1
	files := []finder.FileRecord{writeInput(t, cfg, "a.py", []byte("x = 1"))}

	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			// Fail the first document (the FAQ), succeed on everything else.
			if strings.Contains(req.UserPrompt, "Write a FAQ") {
				return nil, errors.New("provider unavailable")
			}
			return &llm_service.Completion{Content: "1. Overview"}, nil
		},
	}

	pctx := testContext(cfg, llm, &vector_store.MockClient{})
	stage := runSupplementaryStage(context.Background(), pctx, files)

	if stage.Failed == 0 {
		t.Fatal("expected the FAQ failure to be recorded")
	}
	if stage.Processed == 0 {
		t.Fatal("remaining documents should still have been generated")
	}
	if _, err := os.Stat(filepath.Join(pctx.SupplementaryDir(), "architecture.md")); err != nil {
		t.Errorf("architecture.md should exist despite FAQ failure: %v", err)
	}
}

func TestLoadSamplesCapsAndSkipsBinaries(t *testing.T) {
	cfg := testConfig(t)
	cfg.SampleFileCount = 2
	cfg.SampleMaxBytes = 10

	files := []finder.FileRecord{
		writeInput(t, cfg, "big.py", []byte("0123456789ABCDEF")),
		writeInput(t, cfg, "bin.py", []byte{0x00, 0x01}),
		writeInput(t, cfg, "small.py", []byte("ok")),
	}

	pctx := testContext(cfg, &llm_service.MockLLMService{}, &vector_store.MockClient{})
	samples := loadSamples(pctx, files)

	if !strings.Contains(samples.contentSamples, "0123456789\n... (truncated)") {
		t.Errorf("expected truncation marker in samples:\n%s", samples.contentSamples)
	}
	if strings.Contains(samples.contentSamples, "bin.py") {
		t.Error("binary file should not appear in samples")
	}
	if !strings.Contains(samples.contentSamples, "small.py") {
		t.Error("sampling should move past a skipped binary to the next file")
	}
	// The structural views cover every discovered file, sampled or not.
	for _, p := range []string{"big.py", "bin.py", "small.py"} {
		if !strings.Contains(samples.fileStructure, p) {
			t.Errorf("file structure missing %s", p)
		}
	}
}

func TestDirectoryTree(t *testing.T) {
	tree := directoryTree([]string{"main.py", "pkg/a.py", "pkg/b.py", "pkg/sub/c.py"})

	for _, want := range []string{"main.py\n", "pkg/\n", "  a.py\n", "pkg/sub/\n", "    c.py\n"} {
		if !strings.Contains(tree, want) {
			t.Errorf("tree missing %q:\n%s", want, tree)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"Getting Started", "getting-started"},
		{"  API: Design, Usage  ", "api-design-usage"},
		{"Client/Server Basics", "client-server-basics"},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.expected {
			t.Errorf("slugify(%q) = %q, expected %q", tt.in, got, tt.expected)
		}
	}
}

func TestSlugifyTruncatesOnRuneBoundary(t *testing.T) {
	topic := strings.Repeat("é", 80)
	slug := slugify(topic)

	if !utf8.ValidString(slug) {
		t.Errorf("truncated slug is not valid UTF-8: %q", slug)
	}
	if got := len([]rune(slug)); got != 60 {
		t.Errorf("expected 60 runes, got %d", got)
	}
}
