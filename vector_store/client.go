package vector_store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const openAIAPIBaseURL = "https://api.openai.com/v1"

// SearchResult is one hit from a semantic search over a vector store.
type SearchResult struct {
	FileID  string  `json:"file_id"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}

// Client wraps the hosted file-storage and vector-store API. Identifiers are
// opaque; chunking strategies are forwarded, never retained.
type Client interface {
	UploadFile(ctx context.Context, path, purpose string) (string, error)
	CreateVectorStore(ctx context.Context, name string, fileIDs []string, strategy ChunkingStrategy) (string, error)
	AddFiles(ctx context.Context, vectorStoreID string, fileIDs []string, strategy ChunkingStrategy) error
	Search(ctx context.Context, vectorStoreID, query string, maxResults int) ([]SearchResult, error)
}

// UploadError is a per-file upload failure; siblings are unaffected.
type UploadError struct {
	Path string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

type OpenAIClient struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	orgID      string
}

func NewOpenAIClient(apiKey, orgID string, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		logger:     logger,
		baseURL:    openAIAPIBaseURL,
		apiKey:     apiKey,
		orgID:      orgID,
	}
}

func (c *OpenAIClient) UploadFile(ctx context.Context, path, purpose string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &UploadError{Path: path, Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("purpose", purpose); err != nil {
		return "", &UploadError{Path: path, Err: err}
	}
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", &UploadError{Path: path, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", &UploadError{Path: path, Err: err}
	}
	if err := writer.Close(); err != nil {
		return "", &UploadError{Path: path, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/files", &buf)
	if err != nil {
		return "", &UploadError{Path: path, Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setAuthHeaders(req)

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &result); err != nil {
		return "", &UploadError{Path: path, Err: err}
	}

	c.logger.Debug("Uploaded file to hosted storage",
		slog.String("path", path),
		slog.String("file_id", result.ID))

	return result.ID, nil
}

func (c *OpenAIClient) CreateVectorStore(ctx context.Context, name string, fileIDs []string, strategy ChunkingStrategy) (string, error) {
	payload := map[string]interface{}{
		"name":              name,
		"file_ids":          fileIDs,
		"chunking_strategy": strategy,
	}

	req, err := c.newJSONRequest(ctx, c.baseURL+"/vector_stores", payload)
	if err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &result); err != nil {
		return "", fmt.Errorf("error creating vector store %q: %w", name, err)
	}

	return result.ID, nil
}

func (c *OpenAIClient) AddFiles(ctx context.Context, vectorStoreID string, fileIDs []string, strategy ChunkingStrategy) error {
	payload := map[string]interface{}{
		"file_ids":          fileIDs,
		"chunking_strategy": strategy,
	}

	url := fmt.Sprintf("%s/vector_stores/%s/file_batches", c.baseURL, vectorStoreID)
	req, err := c.newJSONRequest(ctx, url, payload)
	if err != nil {
		return err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &result); err != nil {
		return fmt.Errorf("error adding files to vector store %s: %w", vectorStoreID, err)
	}

	return nil
}

func (c *OpenAIClient) Search(ctx context.Context, vectorStoreID, query string, maxResults int) ([]SearchResult, error) {
	payload := map[string]interface{}{
		"query":           query,
		"max_num_results": maxResults,
	}

	url := fmt.Sprintf("%s/vector_stores/%s/search", c.baseURL, vectorStoreID)
	req, err := c.newJSONRequest(ctx, url, payload)
	if err != nil {
		return nil, err
	}

	var result struct {
		Data []struct {
			FileID  string  `json:"file_id"`
			Score   float64 `json:"score"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"data"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, fmt.Errorf("error searching vector store %s: %w", vectorStoreID, err)
	}

	results := make([]SearchResult, 0, len(result.Data))
	for _, d := range result.Data {
		r := SearchResult{FileID: d.FileID, Score: d.Score}
		for _, content := range d.Content {
			if content.Type == "text" {
				r.Snippet = content.Text
				break
			}
		}
		results = append(results, r)
	}

	return results, nil
}

func (c *OpenAIClient) newJSONRequest(ctx context.Context, url string, payload interface{}) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(req)

	return req, nil
}

func (c *OpenAIClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.orgID != "" {
		req.Header.Set("OpenAI-Organization", c.orgID)
	}
}

func (c *OpenAIClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("vector store API error (HTTP %d): %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error unmarshaling response: %w", err)
		}
	}

	return nil
}
