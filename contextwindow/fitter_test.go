package contextwindow_test

import (
	"strings"
	"testing"

	"github.com/nucleusmind/contextengine/contextwindow"
	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTokens builds a candidate whose estimated cost is exactly n tokens.
func withTokens(id string, n int) memory.ScoredMemory {
	return memory.ScoredMemory{
		Memory: &entity.Memory{
			ID:             id,
			OrganizationID: "org-a",
			Content:        strings.Repeat("x", n*4),
		},
		Relevance: 0.9,
	}
}

func TestFitToContextWindow_EmptyInput(t *testing.T) {
	result := contextwindow.FitToContextWindow(nil, 2000)
	assert.Empty(t, result.Memories)
	assert.Zero(t, result.TotalTokens)
	assert.False(t, result.Truncated)
}

func TestFitToContextWindow_GreedyPrefix(t *testing.T) {
	tests := []struct {
		name        string
		costs       []int
		budget      int
		wantCount   int
		wantTokens  int
		wantTruncat bool
	}{
		{"all fit", []int{500, 400, 300}, 2000, 3, 1200, false},
		{"exact fit", []int{1000, 1000}, 2000, 2, 2000, false},
		{"longest prefix", []int{800, 800, 800}, 2000, 2, 1600, true},
		{"first too large", []int{3000, 10}, 2000, 0, 0, true},
		{"zero budget", []int{1}, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := make([]memory.ScoredMemory, len(tt.costs))
			for i, cost := range tt.costs {
				ranked[i] = withTokens(string(rune('a'+i)), cost)
			}

			result := contextwindow.FitToContextWindow(ranked, tt.budget)
			assert.Len(t, result.Memories, tt.wantCount)
			assert.Equal(t, tt.wantTokens, result.TotalTokens)
			assert.Equal(t, tt.wantTruncat, result.Truncated)
		})
	}
}

func TestFitToContextWindow_StopsAtFirstRejection(t *testing.T) {
	// The third item would fit, but iteration stops at the rejected
	// second item: rank stability beats optimal packing.
	ranked := []memory.ScoredMemory{
		withTokens("big-1", 1500),
		withTokens("too-big", 1000),
		withTokens("small", 100),
	}

	result := contextwindow.FitToContextWindow(ranked, 2000)
	require.Len(t, result.Memories, 1)
	assert.Equal(t, "big-1", result.Memories[0].ID)
	assert.Equal(t, 1500, result.TotalTokens)
	assert.True(t, result.Truncated)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, contextwindow.EstimateTokens(""))
	assert.Equal(t, 1, contextwindow.EstimateTokens("a"))
	assert.Equal(t, 1, contextwindow.EstimateTokens("abcd"))
	assert.Equal(t, 2, contextwindow.EstimateTokens("abcde"))

	// Monotonically increasing in content length
	prev := 0
	for i := 1; i <= 64; i++ {
		cost := contextwindow.EstimateTokens(strings.Repeat("x", i))
		assert.GreaterOrEqual(t, cost, prev)
		prev = cost
	}
}
