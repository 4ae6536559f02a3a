package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/pipeline"
	"github.com/serisow/codedoc/vector_store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRunRouter(cfg config.Config, llm llm_service.LLMService, store vector_store.Client) *mux.Router {
	r := mux.NewRouter()
	h := NewRunHandler(cfg, llm, store, testLogger())
	r.HandleFunc("/runs", h.ExecuteRun).Methods("POST")
	r.HandleFunc("/runs/{id}", h.GetRun).Methods("GET")
	return r
}

func TestGetRun(t *testing.T) {
	run := pipeline.NewRun(config.Config{ProjectName: "demo"})
	pipeline.AddRun(run)

	r := newRunRouter(config.Config{}, &llm_service.MockLLMService{}, &vector_store.MockClient{})

	req := httptest.NewRequest("GET", "/runs/"+run.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var got pipeline.PipelineRun
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.ID != run.ID || got.ProjectName != "demo" {
		t.Errorf("unexpected run payload: %+v", got)
	}
}

func TestGetRunNotFound(t *testing.T) {
	r := newRunRouter(config.Config{}, &llm_service.MockLLMService{}, &vector_store.MockClient{})

	req := httptest.NewRequest("GET", "/runs/unknown-id", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestExecuteRunThenGetRun(t *testing.T) {
	inputDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(inputDir, "a.py"), []byte("x = 1"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Config{
		OutputDir:       t.TempDir(),
		LLMProvider:     "openai",
		SampleFileCount: 3,
		SampleMaxBytes:  2000,
		NumTutorials:    1,
		NumQuestions:    3,
	}
	llm := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, req llm_service.CompletionRequest) (*llm_service.Completion, error) {
			return &llm_service.Completion{Content: "generated"}, nil
		},
	}

	r := newRunRouter(cfg, llm, &vector_store.MockClient{})

	body, _ := json.Marshal(map[string]string{
		"project_name": "demo",
		"input_dir":    inputDir,
	})
	req := httptest.NewRequest("POST", "/runs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var started map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatal(err)
	}
	runID := started["run_id"]
	if runID == "" {
		t.Fatal("response should carry a run_id")
	}

	// The stages run on their own goroutine; poll until the run completes.
	deadline := time.Now().Add(5 * time.Second)
	var run pipeline.PipelineRun
	for {
		getReq := httptest.NewRequest("GET", "/runs/"+runID, nil)
		getRec := httptest.NewRecorder()
		r.ServeHTTP(getRec, getReq)

		if getRec.Code != http.StatusOK {
			t.Fatalf("expected 200 for started run, got %d", getRec.Code)
		}
		if err := json.NewDecoder(getRec.Body).Decode(&run); err != nil {
			t.Fatal(err)
		}
		if run.Status == pipeline.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("run %s did not complete in time, status %s", runID, run.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if len(run.Stages) != 5 {
		t.Errorf("expected 5 stages, got %d", len(run.Stages))
	}
	if run.FileCount != 1 {
		t.Errorf("expected 1 discovered file, got %d", run.FileCount)
	}
}

func TestExecuteRunValidation(t *testing.T) {
	r := newRunRouter(config.Config{}, &llm_service.MockLLMService{}, &vector_store.MockClient{})

	// Missing input_dir.
	req := httptest.NewRequest("POST", "/runs", bytes.NewReader([]byte(`{"project_name":"demo"}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing input_dir, got %d", rec.Code)
	}

	// Input dir that does not exist.
	body, _ := json.Marshal(map[string]string{
		"project_name": "demo",
		"input_dir":    filepath.Join(t.TempDir(), "missing"),
	})
	req = httptest.NewRequest("POST", "/runs", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing directory, got %d", rec.Code)
	}
}

func TestSearchHandler(t *testing.T) {
	client := &vector_store.MockClient{
		SearchFunc: func(ctx context.Context, vectorStoreID, query string, maxResults int) ([]vector_store.SearchResult, error) {
			if vectorStoreID != "vs-1" || query != "how to configure" {
				t.Errorf("unexpected search args: %s %q", vectorStoreID, query)
			}
			if maxResults != defaultMaxResults {
				t.Errorf("expected default max results, got %d", maxResults)
			}
			return []vector_store.SearchResult{{FileID: "file-1", Score: 0.9, Snippet: "snippet"}}, nil
		},
	}

	body, _ := json.Marshal(map[string]string{
		"vector_store_id": "vs-1",
		"query":           "how to configure",
	})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	NewSearchHandler(client, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Results []vector_store.SearchResult `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].FileID != "file-1" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestSearchHandlerValidation(t *testing.T) {
	req := httptest.NewRequest("POST", "/search", bytes.NewReader([]byte(`{"query":""}`)))
	rec := httptest.NewRecorder()
	NewSearchHandler(&vector_store.MockClient{}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestSearchHandlerUpstreamFailure(t *testing.T) {
	client := &vector_store.MockClient{
		SearchFunc: func(ctx context.Context, vectorStoreID, query string, maxResults int) ([]vector_store.SearchResult, error) {
			return nil, errors.New("store unavailable")
		},
	}

	body, _ := json.Marshal(map[string]string{"vector_store_id": "vs-1", "query": "anything"})
	req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	NewSearchHandler(client, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}
