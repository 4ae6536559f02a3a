package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/pipeline"
	"github.com/serisow/codedoc/vector_store"
)

type RunHandler struct {
	baseConfig config.Config
	llm        llm_service.LLMService
	store      vector_store.Client
	logger     *slog.Logger
}

func NewRunHandler(cfg config.Config, llm llm_service.LLMService, store vector_store.Client, logger *slog.Logger) *RunHandler {
	return &RunHandler{
		baseConfig: cfg,
		llm:        llm,
		store:      store,
		logger:     logger,
	}
}

type executeRunRequest struct {
	ProjectName string `json:"project_name"`
	InputDir    string `json:"input_dir"`
	OutputDir   string `json:"output_dir,omitempty"`
	Model       string `json:"model,omitempty"`
}

// ExecuteRun starts a pipeline run in this process. Validation and file
// discovery happen before responding, so a bad request fails fast; the
// stages then run on their own goroutine and the client polls GetRun with
// the returned id.
func (h *RunHandler) ExecuteRun(w http.ResponseWriter, r *http.Request) {
	var req executeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.ProjectName == "" || req.InputDir == "" {
		writeJSONError(w, "project_name and input_dir are required", http.StatusBadRequest)
		return
	}

	cfg := h.baseConfig
	cfg.ProjectName = req.ProjectName
	cfg.InputDir = req.InputDir
	if req.OutputDir != "" {
		cfg.OutputDir = req.OutputDir
	}
	if req.Model != "" {
		cfg.Model = req.Model
	}

	pctx := pipeline.NewContext(cfg, h.llm, h.store, h.logger)

	run, files, err := pipeline.Prepare(pctx)
	if err != nil {
		var cfgErr *pipeline.ConfigurationError
		if errors.As(err, &cfgErr) {
			writeJSONError(w, cfgErr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to start pipeline run", slog.String("error", err.Error()))
		writeJSONError(w, "Failed to start pipeline run", http.StatusInternalServerError)
		return
	}

	go pipeline.ExecuteRun(context.Background(), pctx, run, files)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"run_id": run.ID,
		"status": string(run.Status),
	})
}

// GetRun returns the summary of a pipeline run held in the run store.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	run, exists := pipeline.GetRun(runID)
	if !exists {
		writeJSONError(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
