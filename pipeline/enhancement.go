package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/serisow/codedoc/finder"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/prompts"
)

func runEnhancementStage(ctx context.Context, pctx *Context, files []finder.FileRecord) StageResult {
	stage := StageResult{Stage: StageEnhancement}

	for _, rec := range files {
		result := enhanceFile(ctx, pctx, rec)
		stage.Append(result)

		if result.Success {
			pctx.Logger.Info("Enhanced file",
				slog.String("path", rec.Path),
				slog.Int("total_tokens", result.Usage.TotalTokens))
		} else {
			pctx.Logger.Error("Failed to enhance file",
				slog.String("path", rec.Path),
				slog.String("error", result.Error))
		}
	}

	return stage
}

// enhanceFile processes a single file to completion. Any failure is recorded
// in the returned result; the caller moves on to the next file regardless.
func enhanceFile(ctx context.Context, pctx *Context, rec finder.FileRecord) ProcessingResult {
	result := ProcessingResult{InputPath: rec.Path}

	content, err := readTextFile(pctx.Config.InputDir, rec.Path)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	system, user, err := prompts.Render(prompts.Enhancement, map[string]string{
		"project_name": pctx.Config.ProjectName,
		"file_path":    rec.Path,
		"content":      content,
	})
	if err != nil {
		result.Error = (&ConfigurationError{Reason: err.Error()}).Error()
		return result
	}

	completion, err := pctx.LLM.Generate(ctx, completionRequest(pctx, system, user))
	if err != nil {
		result.Error = (&ProviderError{Path: rec.Path, Err: err}).Error()
		return result
	}

	outPath := filepath.Join(pctx.EnhancedDir(), filepath.FromSlash(rec.Path))
	if err := writeOutputFile(outPath, completion.Content); err != nil {
		result.Error = (&IOError{Path: outPath, Err: err}).Error()
		return result
	}

	result.OutputPath = outPath
	result.Usage = completion.Usage
	result.Success = true
	return result
}

// readTextFile loads a file as UTF-8 text. Binary content (NUL bytes or
// invalid UTF-8) is a ContentError so the batch skips the file cleanly.
func readTextFile(root, relPath string) (string, error) {
	absPath := filepath.Join(root, filepath.FromSlash(relPath))

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", &IOError{Path: relPath, Err: err}
	}

	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", &ContentError{Path: relPath, Err: fmt.Errorf("content is not valid UTF-8 text")}
	}

	return string(data), nil
}

// writeOutputFile writes content byte-for-byte, creating parent directories.
func writeOutputFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0644)
}

func completionRequest(pctx *Context, system, user string) llm_service.CompletionRequest {
	return llm_service.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
		Model:        pctx.Model(),
		Temperature:  pctx.Config.Temperature,
	}
}
