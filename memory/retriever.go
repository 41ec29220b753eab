package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/nucleusmind/contextengine/entity"
)

type (
	// Retriever turns a free-text query into scoped candidates. Retrieval
	// sits on a non-critical path: embedding or datastore failures degrade
	// to an empty candidate set instead of surfacing.
	Retriever struct {
		store    Store
		embedder Embedder
		logger   *slog.Logger

		candidateLimit    int
		recencyWindowDays int
	}

	RetrieveRequest struct {
		Query string
		Scope Scope

		// LongTermMemory includes every memory type regardless of age.
		// When false, retrieval is limited to recent interactions.
		LongTermMemory bool
	}
)

func NewRetriever(store Store, embedder Embedder, logger *slog.Logger, candidateLimit, recencyWindowDays int) *Retriever {
	if candidateLimit <= 0 {
		candidateLimit = 50
	}
	if recencyWindowDays <= 0 {
		recencyWindowDays = 30
	}
	return &Retriever{
		store:             store,
		embedder:          embedder,
		logger:            logger,
		candidateLimit:    candidateLimit,
		recencyWindowDays: recencyWindowDays,
	}
}

// Retrieve returns scoped nearest-neighbour candidates for the query. It
// never returns an error; the pipeline must always complete.
func (r *Retriever) Retrieve(ctx context.Context, req RetrieveRequest) []ScoredMemory {
	if !req.Scope.IsValid() {
		r.logger.Warn("retrieval skipped: missing organization id")
		return []ScoredMemory{}
	}

	embeddings, err := r.embedder.Embed(ctx, req.Query)
	if err != nil || len(embeddings) == 0 {
		r.logger.Warn("failed to embed query, returning empty candidates",
			slog.String("organizationId", req.Scope.OrganizationID),
			slog.Any("error", err))
		return []ScoredMemory{}
	}

	opts := SearchOptions{
		Limit: r.candidateLimit,
	}
	if !req.LongTermMemory {
		opts.Types = []entity.MemoryType{entity.MemoryTypeInteraction}
		opts.Since = time.Now().AddDate(0, 0, -r.recencyWindowDays)
	}

	results, err := r.store.Search(ctx, req.Scope, embeddings[0], opts)
	if err != nil {
		r.logger.Warn("memory search failed, returning empty candidates",
			slog.String("organizationId", req.Scope.OrganizationID),
			slog.Any("error", err))
		return []ScoredMemory{}
	}

	return results
}
