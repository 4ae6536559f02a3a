package vector_store

import "context"

type MockClient struct {
	UploadFileFunc        func(ctx context.Context, path, purpose string) (string, error)
	CreateVectorStoreFunc func(ctx context.Context, name string, fileIDs []string, strategy ChunkingStrategy) (string, error)
	AddFilesFunc          func(ctx context.Context, vectorStoreID string, fileIDs []string, strategy ChunkingStrategy) error
	SearchFunc            func(ctx context.Context, vectorStoreID, query string, maxResults int) ([]SearchResult, error)
}

func (m *MockClient) UploadFile(ctx context.Context, path, purpose string) (string, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, path, purpose)
	}
	return "file-mock", nil
}

func (m *MockClient) CreateVectorStore(ctx context.Context, name string, fileIDs []string, strategy ChunkingStrategy) (string, error) {
	if m.CreateVectorStoreFunc != nil {
		return m.CreateVectorStoreFunc(ctx, name, fileIDs, strategy)
	}
	return "vs-mock", nil
}

func (m *MockClient) AddFiles(ctx context.Context, vectorStoreID string, fileIDs []string, strategy ChunkingStrategy) error {
	if m.AddFilesFunc != nil {
		return m.AddFilesFunc(ctx, vectorStoreID, fileIDs, strategy)
	}
	return nil
}

func (m *MockClient) Search(ctx context.Context, vectorStoreID, query string, maxResults int) ([]SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, vectorStoreID, query, maxResults)
	}
	return nil, nil
}
