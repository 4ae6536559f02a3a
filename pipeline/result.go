package pipeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/llm_service"
)

type Stage string

const (
	StageEnhancement   Stage = "enhancement"
	StageAnalysis      Stage = "analysis"
	StageSupplementary Stage = "supplementary"
	StageProcessing    Stage = "processing"
	StageUpload        Stage = "upload"
)

// ProcessingResult records the outcome for one item in one stage. Exactly one
// is appended per item submitted, success or failure; never mutated after.
type ProcessingResult struct {
	InputPath  string            `json:"input_path"`
	OutputPath string            `json:"output_path,omitempty"`
	FileID     string            `json:"file_id,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Usage      llm_service.Usage `json:"usage,omitempty"`
}

type StageResult struct {
	Stage     Stage              `json:"stage"`
	Skipped   bool               `json:"skipped,omitempty"`
	Processed int                `json:"processed"`
	Failed    int                `json:"failed"`
	Error     string             `json:"error,omitempty"`
	Results   []ProcessingResult `json:"results,omitempty"`
}

func (sr *StageResult) Append(r ProcessingResult) {
	sr.Results = append(sr.Results, r)
	if r.Success {
		sr.Processed++
	} else {
		sr.Failed++
	}
}

func skippedStage(stage Stage) StageResult {
	return StageResult{Stage: stage, Skipped: true}
}

type RunStatus string

const (
	StatusStarted   RunStatus = "started"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// configSnapshot is the part of the configuration worth echoing in the
// summary; secrets are deliberately absent.
type configSnapshot struct {
	InputDir     string   `json:"input_dir"`
	OutputDir    string   `json:"output_dir"`
	LLMProvider  string   `json:"llm_provider"`
	Model        string   `json:"model,omitempty"`
	FilePatterns []string `json:"file_patterns,omitempty"`
	ExcludeDirs  []string `json:"exclude_dirs,omitempty"`
	MaxFiles     int      `json:"max_files,omitempty"`
}

// PipelineRun aggregates one invocation end to end. It is mutated only by
// the single orchestrating goroutine, stage by stage, then serialized once.
type PipelineRun struct {
	ID            string            `json:"run_id"`
	ProjectName   string            `json:"project_name"`
	Status        RunStatus         `json:"status"`
	Config        configSnapshot    `json:"config"`
	FileCount     int               `json:"file_count"`
	Stages        []StageResult     `json:"stages"`
	TotalUsage    llm_service.Usage `json:"total_usage"`
	VectorStoreID string            `json:"vector_store_id,omitempty"`
	StartTime     int64             `json:"start_time"`
	EndTime       int64             `json:"end_time,omitempty"`
	SubmittedAt   string            `json:"submitted_at"`
	CompletedAt   string            `json:"completed_at,omitempty"`
}

func NewRun(cfg config.Config) *PipelineRun {
	now := timeProvider.Now()
	return &PipelineRun{
		ID:          uuid.New().String(),
		ProjectName: cfg.ProjectName,
		Status:      StatusStarted,
		Config: configSnapshot{
			InputDir:     cfg.InputDir,
			OutputDir:    cfg.OutputDir,
			LLMProvider:  cfg.LLMProvider,
			Model:        cfg.Model,
			FilePatterns: cfg.FilePatterns,
			ExcludeDirs:  cfg.ExcludeDirs,
			MaxFiles:     cfg.MaxFiles,
		},
		StartTime:   now.Unix(),
		SubmittedAt: now.Format(time.RFC3339),
	}
}

func (pr *PipelineRun) AddStage(sr StageResult) {
	pr.Stages = append(pr.Stages, sr)
	for _, r := range sr.Results {
		pr.TotalUsage.Add(r.Usage)
	}
}

func (pr *PipelineRun) Complete() {
	now := timeProvider.Now()
	pr.Status = StatusCompleted
	pr.EndTime = now.Unix()
	pr.CompletedAt = now.Format(time.RFC3339)
}

func (pr *PipelineRun) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(pr, "", "  ")
}

// FailedResults enumerates every per-item failure across stages, so a user
// can re-run just those paths.
func (pr *PipelineRun) FailedResults() []ProcessingResult {
	var failed []ProcessingResult
	for _, sr := range pr.Stages {
		for _, r := range sr.Results {
			if !r.Success {
				failed = append(failed, r)
			}
		}
	}
	return failed
}
