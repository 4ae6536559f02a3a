package pipeline

import (
	"log/slog"
	"path/filepath"

	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/vector_store"
)

// Context carries everything a stage needs: the run configuration and the
// external collaborators. It is constructed once at startup and passed down
// by parameter; nothing here is ambient or mutated by stages.
type Context struct {
	Config      config.Config
	LLM         llm_service.LLMService
	VectorStore vector_store.Client
	Logger      *slog.Logger
}

func NewContext(cfg config.Config, llm llm_service.LLMService, store vector_store.Client, logger *slog.Logger) *Context {
	return &Context{
		Config:      cfg,
		LLM:         llm,
		VectorStore: store,
		Logger:      logger,
	}
}

// Model resolves the model name, falling back to the provider default.
func (c *Context) Model() string {
	if c.Config.Model != "" {
		return c.Config.Model
	}
	return llm_service.DefaultModel(c.Config.LLMProvider)
}

func (c *Context) EnhancedDir() string {
	return filepath.Join(c.Config.OutputDir, "enhanced-codebase")
}

func (c *Context) SupplementaryDir() string {
	return filepath.Join(c.Config.OutputDir, "supplementary-docs")
}

func (c *Context) TutorialsDir() string {
	return filepath.Join(c.SupplementaryDir(), "tutorials")
}

func (c *Context) MetadataDir() string {
	return filepath.Join(c.Config.OutputDir, "metadata")
}

func (c *Context) VectorStoreDir() string {
	return filepath.Join(c.Config.OutputDir, "vector-store")
}
