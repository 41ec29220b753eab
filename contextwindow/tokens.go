package contextwindow

import (
	"github.com/nucleusmind/contextengine/memory"
)

// EstimateTokens approximates the token cost of a piece of content as
// ceil(len/4): four bytes per token, the usual English-text heuristic.
// The estimate is deterministic and monotonically increasing in content
// length; tokenizer fidelity is deliberately not a goal. Non-empty
// content always costs at least one token.
func EstimateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	return (len(content) + 3) / 4
}

// EstimateTotalTokens sums the estimated cost of a candidate set.
func EstimateTotalTokens(memories []memory.ScoredMemory) int {
	total := 0
	for _, m := range memories {
		total += EstimateTokens(m.Memory.Content)
	}
	return total
}
