package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/urfave/negroni"

	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/logging"
	"github.com/serisow/codedoc/pipeline"
	"github.com/serisow/codedoc/server"
	"github.com/serisow/codedoc/vector_store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var filePatterns, excludeDirs string

	cmd := &cobra.Command{
		Use:           "codedoc [input_dir]",
		Short:         "Generate LLM-enhanced documentation for a codebase",
		Long:          "codedoc walks a codebase, enhances file documentation and analyzes code through an LLM,\ngenerates project-level narrative documents, and uploads the artifacts to a hosted vector\nstore for semantic search.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.InputDir = args[0]
			cfg.FilePatterns = config.SplitList(filePatterns)
			cfg.ExcludeDirs = config.SplitList(excludeDirs)
			return runPipeline(cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&cfg.ProjectName, "project-name", "p", "", "project name used in prompts and artifacts (required)")
	flags.StringVarP(&cfg.OutputDir, "output-dir", "o", cfg.OutputDir, "directory for generated artifacts")
	flags.StringVar(&cfg.Model, "model", "", "model name (defaults per provider)")
	flags.StringVar(&cfg.LLMProvider, "llm-provider", cfg.LLMProvider, "LLM provider: openai or gemini")
	flags.StringVar(&filePatterns, "file-patterns", "", "comma-separated include globs (default: common source and doc extensions)")
	flags.StringVar(&excludeDirs, "exclude-dirs", "", "comma-separated directory names to skip")
	flags.IntVar(&cfg.MaxFiles, "max-files", 0, "cap on discovered files, 0 for unlimited")
	flags.StringVar(&cfg.VectorStoreID, "vector-store-id", "", "add files to this existing vector store instead of creating one")
	flags.IntVar(&cfg.ChunkSizeTokens, "chunk-size", 0, "fixed chunk size in tokens, 0 for the store's auto chunking")
	flags.IntVar(&cfg.ChunkOverlapTokens, "chunk-overlap", 0, "chunk overlap in tokens, used with --chunk-size")
	flags.BoolVar(&cfg.SkipEnhancement, "skip-enhancement", false, "skip the file enhancement stage")
	flags.BoolVar(&cfg.SkipAnalysis, "skip-analysis", false, "skip the code analysis stage")
	flags.BoolVar(&cfg.SkipSupplementary, "skip-supplementary", false, "skip supplementary content generation")
	flags.BoolVar(&cfg.SkipProcessing, "skip-processing", false, "skip uploading files to hosted storage")
	flags.BoolVar(&cfg.SkipUpload, "skip-upload", false, "skip vector store creation")
	cmd.MarkFlagRequired("project-name")

	cmd.AddCommand(newServeCmd(cfg))

	return cmd
}

func runPipeline(cfg config.Config) error {
	logger, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	llm, err := llm_service.New(cfg.LLMProvider, cfg.APIKey(), cfg.OpenAIOrgID, logger)
	if err != nil {
		return err
	}

	// Processing and upload always talk to the hosted storage API, which is
	// keyed like the OpenAI provider regardless of the chosen LLM.
	store := vector_store.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIOrgID, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pctx := pipeline.NewContext(cfg, llm, store, logger)

	run, err := pipeline.Execute(ctx, pctx)
	if err != nil {
		return err
	}

	printSummary(run)
	return nil
}

func newServeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve run summaries and semantic search over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := initLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			llm, err := llm_service.New(cfg.LLMProvider, cfg.APIKey(), cfg.OpenAIOrgID, logger)
			if err != nil {
				return err
			}

			store := vector_store.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIOrgID, logger)

			runRetention := 24 * time.Hour
			cleanupInterval := 1 * time.Hour
			pipeline.StartRunStoreCleanup(runRetention, cleanupInterval)
			defer pipeline.StopRunStoreCleanup()

			r := server.SetupRoutes(cfg, llm, store, logger)
			n := setupNegroni(r)

			if cfg.Environment == "production" {
				server.ServeProduction(n, cfg)
			} else {
				srv := &http.Server{
					Addr:         ":" + cfg.HTTPPort,
					Handler:      n,
					IdleTimeout:  time.Minute,
					ReadTimeout:  5 * time.Second,
					WriteTimeout: 10 * time.Second,
				}
				server.ServeDevelopment(srv)
			}
			return nil
		},
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	fileHandler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})
	if err != nil {
		return nil, err
	}

	logger := slog.New(fileHandler)
	return logger, nil
}

func printSummary(run *pipeline.PipelineRun) {
	fmt.Printf("\nPipeline run %s finished\n", run.ID)
	for _, stage := range run.Stages {
		if stage.Skipped {
			fmt.Printf("  %-13s skipped\n", stage.Stage)
			continue
		}
		fmt.Printf("  %-13s processed=%d failed=%d\n", stage.Stage, stage.Processed, stage.Failed)
	}
	fmt.Printf("  total tokens used: %d\n", run.TotalUsage.TotalTokens)

	if run.VectorStoreID != "" {
		fmt.Printf("  vector store: %s\n", run.VectorStoreID)
	}

	if failed := run.FailedResults(); len(failed) > 0 {
		fmt.Printf("\nFailed items:\n")
		for _, r := range failed {
			fmt.Printf("  %s: %s\n", r.InputPath, r.Error)
		}
	}
}
