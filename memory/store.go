package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nucleusmind/contextengine/entity"
	myerrors "github.com/nucleusmind/contextengine/errors"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type (
	// Store interface for memory storage. Search is scoped at the query
	// level: a memory outside the scope never enters scoring.
	Store interface {
		Save(ctx context.Context, memory *entity.Memory) error
		Get(ctx context.Context, scope Scope, id string) (*entity.Memory, error)
		Search(ctx context.Context, scope Scope, queryEmbedding []float32, opts SearchOptions) ([]ScoredMemory, error)
		RecordAccess(ctx context.Context, scope Scope, ids []string, at time.Time) error
		Close() error
	}

	// InMemoryStore is a simple in-memory implementation
	InMemoryStore struct {
		mu       sync.RWMutex
		memories map[string]*entity.Memory
	}
)

var (
	_ Store = (*InMemoryStore)(nil)
)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		memories: make(map[string]*entity.Memory),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, memory *entity.Memory) error {
	if memory.OrganizationID == "" {
		return errors.Wrapf(myerrors.ErrInvalidParams, "memory must carry an organization id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.memories[memory.ID]; ok && existing.OrganizationID != memory.OrganizationID {
		return errors.Errorf("memory '%s' belongs to another organization", memory.ID)
	}

	s.memories[memory.ID] = cloneMemory(memory)
	return nil
}

func (s *InMemoryStore) Get(ctx context.Context, scope Scope, id string) (*entity.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	memory, ok := s.memories[id]
	if !ok || !scope.Contains(memory) {
		return nil, errors.Wrapf(myerrors.ErrNotFound, "memory with id '%s' not found", id)
	}
	return cloneMemory(memory), nil
}

func (s *InMemoryStore) Search(ctx context.Context, scope Scope, queryEmbedding []float32, opts SearchOptions) ([]ScoredMemory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !scope.IsValid() {
		return nil, errors.Wrapf(myerrors.ErrInvalidParams, "search scope requires an organization id")
	}
	if len(queryEmbedding) == 0 {
		return nil, errors.Wrapf(myerrors.ErrInvalidParams, "query embedding is empty")
	}

	// Scope and feature filters happen before any scoring so that
	// out-of-tenant rows never reach the candidate matrix.
	var candidates []*entity.Memory
	for _, memory := range s.memories {
		if !scope.Contains(memory) {
			continue
		}
		if len(memory.ContentEmbedding) != len(queryEmbedding) {
			continue
		}
		if len(opts.Types) > 0 && !containsType(opts.Types, memory.MemoryType) {
			continue
		}
		if !opts.Since.IsZero() && memory.CreatedAt.Before(opts.Since) {
			continue
		}
		candidates = append(candidates, memory)
	}

	if len(candidates) == 0 {
		return []ScoredMemory{}, nil
	}

	numMemories := len(candidates)
	embeddingDim := len(queryEmbedding)

	queryVec := make([]float64, embeddingDim)
	for i, v := range queryEmbedding {
		queryVec[i] = float64(v)
	}

	memoryData := make([]float64, numMemories*embeddingDim)
	for i, memory := range candidates {
		for j, v := range memory.ContentEmbedding {
			memoryData[i*embeddingDim+j] = float64(v)
		}
	}

	queryVector := mat.NewVecDense(embeddingDim, queryVec)
	memoryMatrix := mat.NewDense(numMemories, embeddingDim, memoryData)

	// memoryMatrix * queryVector = similarity scores
	var resultVec mat.VecDense
	resultVec.MulVec(memoryMatrix, queryVector)

	// Embeddings are normalized, so the inner product lies in [-1, 1].
	// Transform to [0, 1]: (score + 1) * 0.5
	scoredResults := make([]ScoredMemory, 0, numMemories)
	for i, memory := range candidates {
		score := (resultVec.AtVec(i) + 1.0) * 0.5

		scoredResults = append(scoredResults, ScoredMemory{
			Memory:    cloneMemory(memory),
			Relevance: score,
		})
	}

	sort.Slice(scoredResults, func(i, j int) bool {
		if scoredResults[i].Relevance != scoredResults[j].Relevance {
			return scoredResults[i].Relevance > scoredResults[j].Relevance
		}
		return scoredResults[i].Memory.ID < scoredResults[j].Memory.ID
	})

	if opts.Limit > 0 && len(scoredResults) > opts.Limit {
		scoredResults = scoredResults[:opts.Limit]
	}

	return scoredResults, nil
}

func (s *InMemoryStore) RecordAccess(ctx context.Context, scope Scope, ids []string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		memory, ok := s.memories[id]
		if !ok || !scope.Contains(memory) {
			continue
		}
		memory.AccessCount++
		memory.LastAccessedAt = at
	}
	return nil
}

func (s *InMemoryStore) Close() error {
	return nil
}

// cloneMemory copies the record handed to callers. The store's own rows
// are mutated by RecordAccess, so a returned memory must never alias
// them.
func cloneMemory(m *entity.Memory) *entity.Memory {
	clone := *m
	return &clone
}

func containsType(types []entity.MemoryType, t entity.MemoryType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
