package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/serisow/codedoc/finder"
	"github.com/serisow/codedoc/prompts"
)

type analysisReport struct {
	path       string
	patterns   string
	complexity string
}

func runAnalysisStage(ctx context.Context, pctx *Context, files []finder.FileRecord) StageResult {
	stage := StageResult{Stage: StageAnalysis}

	var reports []analysisReport
	for _, rec := range files {
		result, report := analyzeFile(ctx, pctx, rec)
		stage.Append(result)

		if result.Success {
			reports = append(reports, *report)
			pctx.Logger.Info("Analyzed file",
				slog.String("path", rec.Path),
				slog.Int("total_tokens", result.Usage.TotalTokens))
		} else {
			pctx.Logger.Error("Failed to analyze file",
				slog.String("path", rec.Path),
				slog.String("error", result.Error))
		}
	}

	if err := writeAnalysisReports(pctx, reports); err != nil {
		stage.Error = err.Error()
		pctx.Logger.Error("Failed to write analysis reports", slog.String("error", err.Error()))
	}

	return stage
}

// analyzeFile produces the two sub-reports for one file. Both must succeed
// for the item to count as processed; a partial result is recorded as failed.
func analyzeFile(ctx context.Context, pctx *Context, rec finder.FileRecord) (ProcessingResult, *analysisReport) {
	result := ProcessingResult{InputPath: rec.Path}

	content, err := readTextFile(pctx.Config.InputDir, rec.Path)
	if err != nil {
		result.Error = err.Error()
		return result, nil
	}

	vars := map[string]string{
		"file_path": rec.Path,
		"content":   content,
	}

	report := &analysisReport{path: rec.Path}

	for _, sub := range []struct {
		template prompts.Template
		target   *string
	}{
		{prompts.PatternAnalysis, &report.patterns},
		{prompts.ComplexityAnalysis, &report.complexity},
	} {
		system, user, err := prompts.Render(sub.template, vars)
		if err != nil {
			result.Error = (&ConfigurationError{Reason: err.Error()}).Error()
			return result, nil
		}

		completion, err := pctx.LLM.Generate(ctx, completionRequest(pctx, system, user))
		if err != nil {
			result.Error = (&ProviderError{Path: rec.Path, Err: err}).Error()
			return result, nil
		}

		*sub.target = completion.Content
		result.Usage.Add(completion.Usage)
	}

	result.Success = true
	return result, report
}

func writeAnalysisReports(pctx *Context, reports []analysisReport) error {
	patternsPath := filepath.Join(pctx.MetadataDir(), "file_patterns.md")
	complexityPath := filepath.Join(pctx.MetadataDir(), "file_complexity.md")

	var patterns, complexity strings.Builder
	fmt.Fprintf(&patterns, "# Pattern Recognition: %s\n", pctx.Config.ProjectName)
	fmt.Fprintf(&complexity, "# Complexity Analysis: %s\n", pctx.Config.ProjectName)

	for _, report := range reports {
		fmt.Fprintf(&patterns, "\n## %s\n\n%s\n", report.path, report.patterns)
		fmt.Fprintf(&complexity, "\n## %s\n\n%s\n", report.path, report.complexity)
	}

	if err := writeOutputFile(patternsPath, patterns.String()); err != nil {
		return &IOError{Path: patternsPath, Err: err}
	}
	if err := writeOutputFile(complexityPath, complexity.String()); err != nil {
		return &IOError{Path: complexityPath, Err: err}
	}
	return nil
}
