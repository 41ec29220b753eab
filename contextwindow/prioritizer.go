package contextwindow

import (
	"math"
	"sort"
	"time"

	"github.com/nucleusmind/contextengine/memory"
	"github.com/samber/lo"
)

type (
	// Prioritizer orders retrieval candidates for packing. Ordering is
	// fully deterministic: score descending, then newer CreatedAt, then
	// lower id.
	Prioritizer struct {
		now func() time.Time
	}

	rankedMemory struct {
		memory.ScoredMemory
		score float64
	}
)

func NewPrioritizer() *Prioritizer {
	return &Prioritizer{now: time.Now}
}

// NewPrioritizerAt pins the reference time, for deterministic scoring.
func NewPrioritizerAt(now func() time.Time) *Prioritizer {
	return &Prioritizer{now: now}
}

// Prioritize filters candidates below the relevance threshold and sorts
// the remainder. Tiers without context prioritization get a plain
// recency ordering.
func (p *Prioritizer) Prioritize(candidates []memory.ScoredMemory, conf *ContextConfig) ([]memory.ScoredMemory, Strategy) {
	candidates = lo.Filter(candidates, func(c memory.ScoredMemory, _ int) bool {
		return c.Relevance >= conf.RelevanceThreshold
	})

	if !conf.FeatureFlags.EnableContextPrioritization {
		sort.Slice(candidates, func(i, j int) bool {
			a, b := candidates[i].Memory, candidates[j].Memory
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		})
		return candidates, StrategyRecencyOnly
	}

	now := p.now()
	ranked := lo.Map(candidates, func(c memory.ScoredMemory, _ int) rankedMemory {
		return rankedMemory{
			ScoredMemory: c,
			score:        p.score(c, conf, now),
		}
	})

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		a, b := ranked[i].Memory, ranked[j].Memory
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return lo.Map(ranked, func(r rankedMemory, _ int) memory.ScoredMemory {
		return r.ScoredMemory
	}), StrategyWeighted
}

// score blends importance and recency:
//
//	recency = 1 / (1 + ageInDays)
//	score   = importanceWeight*importance + recencyWeight*recency
//
// Age is whole elapsed days, so every memory created within the last day
// scores full recency and equal-age memories tie exactly.
func (p *Prioritizer) score(c memory.ScoredMemory, conf *ContextConfig, now time.Time) float64 {
	ageDays := math.Floor(now.Sub(c.Memory.CreatedAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	recency := 1.0 / (1.0 + ageDays)
	return conf.ImportanceWeight*c.Memory.ImportanceScore + conf.RecencyWeight*recency
}
