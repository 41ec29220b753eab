package contextwindow

import (
	"github.com/nucleusmind/contextengine/entity"
	"github.com/nucleusmind/contextengine/memory"
	"github.com/nucleusmind/contextengine/subscription"
)

type (
	// ContextConfig is the per-call resolved configuration. It is built
	// fresh on every resolution; the subscription record stays the source
	// of truth.
	ContextConfig struct {
		MaxContextSize     int     `json:"maxContextSize"`
		RelevanceThreshold float64 `json:"relevanceThreshold"`
		RecencyWeight      float64 `json:"recencyWeight"`
		ImportanceWeight   float64 `json:"importanceWeight"`

		SubscriptionTier subscription.Tier `json:"subscriptionTier"`
		FeatureFlags     FeatureFlags      `json:"featureFlags"`
	}

	FeatureFlags struct {
		EnableLongTermMemory        bool `json:"enableLongTermMemory"`
		EnableMemoryCompression     bool `json:"enableMemoryCompression"`
		EnableContextPrioritization bool `json:"enableContextPrioritization"`
	}

	// ContextResult is the assembled, budget-bounded context.
	ContextResult struct {
		Memories    []*entity.Memory `json:"memories"`
		TotalTokens int              `json:"totalTokens"`
		Truncated   bool             `json:"truncated"`

		PrioritizationStrategy Strategy       `json:"prioritizationStrategy"`
		Metadata               ResultMetadata `json:"metadata"`
	}

	ResultMetadata struct {
		MemoryCount        MemoryCount `json:"memoryCount"`
		ContextUtilization float64     `json:"contextUtilization"`
	}

	MemoryCount struct {
		Retrieved int `json:"retrieved"`
		Selected  int `json:"selected"`
	}

	// CompressionRecord captures what a compression pass did.
	CompressionRecord struct {
		OriginalMemories   []memory.ScoredMemory `json:"originalMemories"`
		CompressedMemories []memory.ScoredMemory `json:"compressedMemories"`

		// CompressionRatio is compressed/original token size, in (0, 1].
		CompressionRatio float64 `json:"compressionRatio"`
		TokenSavings     int     `json:"tokenSavings"`
	}

	Strategy = string
)

const (
	StrategyWeighted    Strategy = "weighted"
	StrategyRecencyOnly Strategy = "recency-only"
	StrategyError       Strategy = "error"
)

// EmptyResult is what callers receive when the pipeline degrades: a valid,
// empty context they are expected to proceed with.
func EmptyResult(strategy Strategy) *ContextResult {
	return &ContextResult{
		Memories:               []*entity.Memory{},
		TotalTokens:            0,
		Truncated:              false,
		PrioritizationStrategy: strategy,
	}
}
