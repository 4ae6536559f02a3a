package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/finder"
	"github.com/serisow/codedoc/vector_store"
)

// Execute drives one run through the stage sequence
// Init -> Enhancement -> Analysis -> Supplementary -> Processing -> Upload -> Done.
// Only setup problems are fatal; every per-item failure is recorded in the
// run and the next item is attempted. Files are processed strictly in
// traversal order, one at a time.
func Execute(ctx context.Context, pctx *Context) (*PipelineRun, error) {
	run, files, err := Prepare(pctx)
	if err != nil {
		return nil, err
	}
	ExecuteRun(ctx, pctx, run, files)
	return run, nil
}

// Prepare validates the fatal preconditions, discovers the input files and
// registers a new run in the run store. The returned run has a stable ID
// before any stage work starts, so callers can hand it out and drive the
// stages on another goroutine.
func Prepare(pctx *Context) (*PipelineRun, []finder.FileRecord, error) {
	cfg := pctx.Config

	if strings.TrimSpace(cfg.ProjectName) == "" {
		return nil, nil, &ConfigurationError{Reason: "project name is required"}
	}

	if _, err := chunkingStrategy(cfg); err != nil {
		return nil, nil, &ConfigurationError{Reason: err.Error()}
	}

	files, err := finder.Find(cfg.InputDir, cfg.FilePatterns, excludeDirs(cfg), cfg.MaxFiles)
	if err != nil {
		var notFound *finder.NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil, &ConfigurationError{Reason: notFound.Error()}
		}
		return nil, nil, err
	}

	run := NewRun(cfg)
	run.FileCount = len(files)
	AddRun(run)

	return run, files, nil
}

// ExecuteRun drives a prepared run through the stages. The chunking strategy
// was validated in Prepare.
func ExecuteRun(ctx context.Context, pctx *Context, run *PipelineRun, files []finder.FileRecord) {
	cfg := pctx.Config
	strategy, _ := chunkingStrategy(cfg)

	pctx.Logger.Info("Starting pipeline run",
		slog.String("run_id", run.ID),
		slog.String("project", cfg.ProjectName),
		slog.Int("files", len(files)))

	if cfg.SkipEnhancement {
		run.AddStage(skippedStage(StageEnhancement))
	} else {
		run.AddStage(runEnhancementStage(ctx, pctx, files))
	}

	if cfg.SkipAnalysis {
		run.AddStage(skippedStage(StageAnalysis))
	} else {
		run.AddStage(runAnalysisStage(ctx, pctx, files))
	}

	if cfg.SkipSupplementary {
		run.AddStage(skippedStage(StageSupplementary))
	} else {
		run.AddStage(runSupplementaryStage(ctx, pctx, files))
	}

	var uploads uploadSet
	if cfg.SkipProcessing {
		run.AddStage(skippedStage(StageProcessing))
	} else {
		stage, set := runProcessingStage(ctx, pctx, files)
		run.AddStage(stage)
		uploads = set
	}

	if cfg.SkipUpload {
		run.AddStage(skippedStage(StageUpload))
	} else {
		run.AddStage(runUploadStage(ctx, pctx, run, uploads, strategy))
	}

	run.Complete()

	if err := writeRunSummary(pctx, run); err != nil {
		pctx.Logger.Error("Failed to write run summary", slog.String("error", err.Error()))
	}
}

// runUploadStage persists the file id index and binds the uploaded files
// into a vector store: a fresh one named after the project, or the
// configured existing one.
func runUploadStage(ctx context.Context, pctx *Context, run *PipelineRun, uploads uploadSet, strategy vector_store.ChunkingStrategy) StageResult {
	stage := StageResult{Stage: StageUpload}

	if len(uploads.ids) == 0 {
		pctx.Logger.Warn("No uploaded files, skipping vector store binding")
		stage.Skipped = true
		return stage
	}

	if err := writeFileIDs(pctx, uploads.byPath); err != nil {
		stage.Error = err.Error()
		pctx.Logger.Error("Failed to write file id index", slog.String("error", err.Error()))
	}

	fileIDs := uploads.ids
	result := ProcessingResult{InputPath: "vector_store"}

	if pctx.Config.VectorStoreID != "" {
		if err := pctx.VectorStore.AddFiles(ctx, pctx.Config.VectorStoreID, fileIDs, strategy); err != nil {
			result.Error = (&ProviderError{Path: "vector_store", Err: err}).Error()
			stage.Append(result)
			pctx.Logger.Error("Failed to add files to vector store", slog.String("error", result.Error))
			return stage
		}
		run.VectorStoreID = pctx.Config.VectorStoreID
	} else {
		name := fmt.Sprintf("%s-docs", pctx.Config.ProjectName)
		storeID, err := pctx.VectorStore.CreateVectorStore(ctx, name, fileIDs, strategy)
		if err != nil {
			result.Error = (&ProviderError{Path: "vector_store", Err: err}).Error()
			stage.Append(result)
			pctx.Logger.Error("Failed to create vector store", slog.String("error", result.Error))
			return stage
		}
		run.VectorStoreID = storeID
	}

	result.FileID = run.VectorStoreID
	result.Success = true
	stage.Append(result)

	pctx.Logger.Info("Vector store ready",
		slog.String("vector_store_id", run.VectorStoreID),
		slog.Int("files", len(fileIDs)))

	return stage
}

func chunkingStrategy(cfg config.Config) (vector_store.ChunkingStrategy, error) {
	if cfg.ChunkSizeTokens == 0 {
		return vector_store.AutoChunking(), nil
	}
	return vector_store.FixedSizeChunking(cfg.ChunkSizeTokens, cfg.ChunkOverlapTokens)
}

func excludeDirs(cfg config.Config) []string {
	if len(cfg.ExcludeDirs) == 0 {
		return finder.DefaultExcludeDirs
	}
	return cfg.ExcludeDirs
}

func writeRunSummary(pctx *Context, run *PipelineRun) error {
	path := filepath.Join(pctx.MetadataDir(), "run_summary.json")

	if err := os.MkdirAll(pctx.MetadataDir(), 0755); err != nil {
		return &IOError{Path: path, Err: err}
	}

	data, err := run.MarshalIndent()
	if err != nil {
		return &IOError{Path: path, Err: err}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return &IOError{Path: path, Err: err}
	}
	return nil
}
