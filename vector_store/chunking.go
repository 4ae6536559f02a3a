package vector_store

import (
	"encoding/json"
	"fmt"
)

const (
	chunkingAuto   = "auto"
	chunkingStatic = "static"

	minChunkSizeTokens = 100
	maxChunkSizeTokens = 4096
)

// ChunkingStrategy tells the hosted store how to split an uploaded document
// for indexing. It is a closed tagged variant validated at construction; the
// zero value means auto. Chunking itself happens server-side.
type ChunkingStrategy struct {
	kind    string
	size    int
	overlap int
}

func AutoChunking() ChunkingStrategy {
	return ChunkingStrategy{kind: chunkingAuto}
}

// FixedSizeChunking builds a static strategy. Bounds follow the hosted API:
// size within [100, 4096] tokens, overlap at most half the size.
func FixedSizeChunking(sizeTokens, overlapTokens int) (ChunkingStrategy, error) {
	if sizeTokens < minChunkSizeTokens || sizeTokens > maxChunkSizeTokens {
		return ChunkingStrategy{}, fmt.Errorf("chunk size must be between %d and %d tokens, got %d",
			minChunkSizeTokens, maxChunkSizeTokens, sizeTokens)
	}
	if overlapTokens < 0 || overlapTokens > sizeTokens/2 {
		return ChunkingStrategy{}, fmt.Errorf("chunk overlap must be between 0 and half the chunk size, got %d", overlapTokens)
	}
	return ChunkingStrategy{kind: chunkingStatic, size: sizeTokens, overlap: overlapTokens}, nil
}

func (cs ChunkingStrategy) IsAuto() bool {
	return cs.kind == "" || cs.kind == chunkingAuto
}

func (cs ChunkingStrategy) MarshalJSON() ([]byte, error) {
	if cs.IsAuto() {
		return json.Marshal(map[string]string{"type": chunkingAuto})
	}
	return json.Marshal(map[string]interface{}{
		"type": chunkingStatic,
		chunkingStatic: map[string]int{
			"max_chunk_size_tokens": cs.size,
			"chunk_overlap_tokens":  cs.overlap,
		},
	})
}
