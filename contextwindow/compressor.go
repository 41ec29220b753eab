package contextwindow

import (
	"log/slog"
	"unicode/utf8"

	"github.com/mokiat/gog"
	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/memory"
)

// Compressor shrinks an over-budget candidate set by truncating the
// content of lower-ranked memories while keeping the top ranks verbatim.
type Compressor struct {
	logger *slog.Logger

	triggerRatio float64
	preserveTop  int
	tailTokenCap int
}

const defaultTailTokenCap = 64

func NewCompressor(logger *slog.Logger, conf *config.EngineConfig) *Compressor {
	triggerRatio := conf.CompressionTriggerRatio
	if triggerRatio <= 0 {
		triggerRatio = 1.5
	}
	preserveTop := conf.CompressionPreserveTop
	if preserveTop <= 0 {
		preserveTop = 3
	}
	return &Compressor{
		logger:       logger,
		triggerRatio: triggerRatio,
		preserveTop:  preserveTop,
		tailTokenCap: defaultTailTokenCap,
	}
}

// Compress reduces the footprint of the prioritized set when compression
// is enabled and the set exceeds the trigger multiple of the budget.
// Lower-ranked memories are truncated from the bottom up until the set
// fits within trigger*budget or every tail memory has been compressed.
// The returned record always satisfies ratio in (0, 1].
func (c *Compressor) Compress(prioritized []memory.ScoredMemory, conf *ContextConfig) (result []memory.ScoredMemory, record *CompressionRecord) {
	defer func() {
		// Compression is an optimization, not a correctness requirement:
		// on panic fall back to the input unchanged.
		if p := recover(); p != nil {
			c.logger.Error("compression panicked, passing candidates through", slog.Any("panic", p))
			result = prioritized
			record = passThroughRecord(prioritized)
		}
	}()

	originalTokens := EstimateTotalTokens(prioritized)
	threshold := int(c.triggerRatio * float64(conf.MaxContextSize))

	if !conf.FeatureFlags.EnableMemoryCompression ||
		originalTokens <= threshold ||
		len(prioritized) <= c.preserveTop {
		return prioritized, passThroughRecord(prioritized)
	}

	compressed := make([]memory.ScoredMemory, len(prioritized))
	copy(compressed, prioritized)

	totalTokens := originalTokens
	for i := len(compressed) - 1; i >= c.preserveTop && totalTokens > threshold; i-- {
		before := EstimateTokens(compressed[i].Memory.Content)
		truncated := truncateContent(compressed[i].Memory.Content, c.tailTokenCap)
		after := EstimateTokens(truncated)
		if after >= before {
			continue
		}

		clone := *compressed[i].Memory
		clone.Content = truncated
		clone.Metadata = gog.Merge(compressed[i].Memory.Metadata, map[string]any{
			"compressed":     true,
			"originalTokens": before,
		})

		compressed[i] = memory.ScoredMemory{
			Memory:    &clone,
			Relevance: compressed[i].Relevance,
		}
		totalTokens += after - before
	}

	compressedTokens := EstimateTotalTokens(compressed)
	if compressedTokens >= originalTokens {
		return prioritized, passThroughRecord(prioritized)
	}

	return compressed, &CompressionRecord{
		OriginalMemories:   prioritized,
		CompressedMemories: compressed,
		CompressionRatio:   float64(compressedTokens) / float64(originalTokens),
		TokenSavings:       originalTokens - compressedTokens,
	}
}

func passThroughRecord(prioritized []memory.ScoredMemory) *CompressionRecord {
	return &CompressionRecord{
		OriginalMemories:   prioritized,
		CompressedMemories: prioritized,
		CompressionRatio:   1.0,
		TokenSavings:       0,
	}
}

// truncateContent cuts content down to at most capTokens worth of bytes,
// backing off to a rune boundary, and marks the cut with an ellipsis.
// The result is never longer than the input.
func truncateContent(content string, capTokens int) string {
	maxBytes := capTokens * 4
	if len(content) <= maxBytes {
		return content
	}

	const ellipsis = "…"
	cut := maxBytes - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut] + ellipsis
}
