package contextwindow

import (
	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/memory"
)

// FitResult is the outcome of packing ranked memories into the budget.
type FitResult struct {
	Memories    []*entity.Memory
	TotalTokens int
	Truncated   bool
}

// FitToContextWindow packs memories greedily in rank order: each memory
// is added while the running total stays within the budget, and the
// first memory that would exceed it stops iteration entirely. A later,
// cheaper memory is never considered; this trades optimal packing for
// O(n) determinism and rank stability.
func FitToContextWindow(ranked []memory.ScoredMemory, maxContextSize int) FitResult {
	result := FitResult{
		Memories: []*entity.Memory{},
	}

	for _, candidate := range ranked {
		cost := EstimateTokens(candidate.Memory.Content)
		if result.TotalTokens+cost > maxContextSize {
			result.Truncated = true
			break
		}
		result.Memories = append(result.Memories, candidate.Memory)
		result.TotalTokens += cost
	}

	return result
}
