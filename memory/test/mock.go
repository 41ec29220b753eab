package memorytest

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/nucleusmind/contextengine/memory"
	"github.com/pkg/errors"
)

// HashEmbedder generates deterministic unit vectors from a text hash, so
// similarity ordering is stable across runs without a provider.
type HashEmbedder struct {
	Dimensions int
}

var _ memory.Embedder = (*HashEmbedder)(nil)

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{Dimensions: 8}
}

func (m *HashEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embeddings[i] = m.embedOne(text)
	}
	return embeddings, nil
}

func (m *HashEmbedder) embedOne(text string) []float32 {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	embedding := make([]float32, m.Dimensions)
	for i := 0; i < m.Dimensions; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		embedding[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(embedding)
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = v / norm
	}
	return normalized
}

// FailingEmbedder always errors, for exercising degraded retrieval.
type FailingEmbedder struct{}

var _ memory.Embedder = (*FailingEmbedder)(nil)

func (FailingEmbedder) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	return nil, errors.New("embedding provider unavailable")
}
