package contextwindow_test

import (
	"testing"
	"time"

	"github.com/nucleusmind/contextengine/contextwindow"
	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(id string, importance float64, createdAt time.Time, relevance float64) memory.ScoredMemory {
	return memory.ScoredMemory{
		Memory: &entity.Memory{
			ID:              id,
			OrganizationID:  "org-a",
			Content:         "content of " + id,
			ImportanceScore: importance,
			CreatedAt:       createdAt,
		},
		Relevance: relevance,
	}
}

func weightedConfig() *contextwindow.ContextConfig {
	return &contextwindow.ContextConfig{
		MaxContextSize:     2000,
		RelevanceThreshold: 0.5,
		RecencyWeight:      0.3,
		ImportanceWeight:   0.5,
		FeatureFlags: contextwindow.FeatureFlags{
			EnableContextPrioritization: true,
		},
	}
}

func TestPrioritizer_EmptyInput(t *testing.T) {
	p := contextwindow.NewPrioritizer()

	ranked, strategy := p.Prioritize(nil, weightedConfig())
	assert.Empty(t, ranked)
	assert.Equal(t, contextwindow.StrategyWeighted, strategy)

	ranked, strategy = p.Prioritize([]memory.ScoredMemory{}, weightedConfig())
	assert.Empty(t, ranked)
	assert.Equal(t, contextwindow.StrategyWeighted, strategy)
}

func TestPrioritizer_RelevanceThreshold(t *testing.T) {
	now := time.Now()
	p := contextwindow.NewPrioritizer()

	ranked, _ := p.Prioritize([]memory.ScoredMemory{
		scored("keep", 0.9, now, 0.8),
		scored("drop", 0.9, now, 0.49),
		scored("boundary", 0.9, now, 0.5),
	}, weightedConfig())

	require.Len(t, ranked, 2)
	for _, r := range ranked {
		assert.NotEqual(t, "drop", r.Memory.ID)
	}
}

func TestPrioritizer_RecencyOnlyFallback(t *testing.T) {
	now := time.Now()
	conf := weightedConfig()
	conf.FeatureFlags.EnableContextPrioritization = false
	p := contextwindow.NewPrioritizer()

	// Importance says "old" should win; with prioritization disabled only
	// recency matters.
	ranked, strategy := p.Prioritize([]memory.ScoredMemory{
		scored("old", 1.0, now.AddDate(0, 0, -10), 0.9),
		scored("newest", 0.1, now, 0.9),
		scored("mid", 0.5, now.AddDate(0, 0, -5), 0.9),
	}, conf)

	assert.Equal(t, contextwindow.StrategyRecencyOnly, strategy)
	require.Len(t, ranked, 3)
	assert.Equal(t, "newest", ranked[0].Memory.ID)
	assert.Equal(t, "mid", ranked[1].Memory.ID)
	assert.Equal(t, "old", ranked[2].Memory.ID)
}

func TestPrioritizer_WeightedOrdering(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := contextwindow.NewPrioritizerAt(func() time.Time { return now })

	// A: 0.5*0.8 + 0.3*(1/2) = 0.55
	// B: 0.5*0.5 + 0.3*(1/3) = 0.35
	// C: 0.5*0.95 + 0.3*(1/4) = 0.55, older than A
	ranked, strategy := p.Prioritize([]memory.ScoredMemory{
		scored("B", 0.5, now.Add(-48*time.Hour), 0.9),
		scored("C", 0.95, now.Add(-72*time.Hour), 0.9),
		scored("A", 0.8, now.Add(-24*time.Hour), 0.9),
	}, weightedConfig())

	assert.Equal(t, contextwindow.StrategyWeighted, strategy)
	require.Len(t, ranked, 3)
	assert.Equal(t, "A", ranked[0].Memory.ID)
	assert.Equal(t, "C", ranked[1].Memory.ID)
	assert.Equal(t, "B", ranked[2].Memory.ID)
}

func TestPrioritizer_TieBreaks(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	p := contextwindow.NewPrioritizerAt(func() time.Time { return now })

	// Zero weights force every score to 0 so only tie-breaks order the set.
	conf := weightedConfig()
	conf.ImportanceWeight = 0
	conf.RecencyWeight = 0

	older := now.Add(-30 * time.Hour)
	newer := now.Add(-25 * time.Hour)

	ranked, _ := p.Prioritize([]memory.ScoredMemory{
		scored("b-same-time", 0.2, older, 0.9),
		scored("a-same-time", 0.7, older, 0.9),
		scored("newer", 0.1, newer, 0.9),
	}, conf)

	require.Len(t, ranked, 3)
	// More recently created wins first, then the lower identifier.
	assert.Equal(t, "newer", ranked[0].Memory.ID)
	assert.Equal(t, "a-same-time", ranked[1].Memory.ID)
	assert.Equal(t, "b-same-time", ranked[2].Memory.ID)
}
