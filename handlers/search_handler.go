package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/serisow/codedoc/vector_store"
)

const defaultMaxResults = 10

type SearchHandler struct {
	client vector_store.Client
	logger *slog.Logger
}

func NewSearchHandler(client vector_store.Client, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{client: client, logger: logger}
}

type searchRequest struct {
	VectorStoreID string `json:"vector_store_id"`
	Query         string `json:"query"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Results []vector_store.SearchResult `json:"results"`
}

// ServeHTTP proxies a semantic search to the hosted vector store.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.VectorStoreID == "" || req.Query == "" {
		writeJSONError(w, "vector_store_id and query are required", http.StatusBadRequest)
		return
	}
	if req.MaxResults <= 0 {
		req.MaxResults = defaultMaxResults
	}

	results, err := h.client.Search(r.Context(), req.VectorStoreID, req.Query, req.MaxResults)
	if err != nil {
		h.logger.Error("Vector store search failed",
			slog.String("vector_store_id", req.VectorStoreID),
			slog.String("error", err.Error()))
		writeJSONError(w, "Search failed", http.StatusBadGateway)
		return
	}

	h.logger.Info("Search completed",
		slog.String("vector_store_id", req.VectorStoreID),
		slog.Int("results", len(results)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(searchResponse{Results: results})
}
