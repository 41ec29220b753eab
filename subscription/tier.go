package subscription

import (
	"github.com/nucleusmind/contextengine/config"
)

type (
	// Tier is the closed set of subscription tiers. Feature grants are
	// explicit per-tier limit structs, never stringly-typed flag lookups.
	Tier string
)

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var defaultLimits = map[Tier]config.PlanLimits{
	TierFree: {
		MaxContextSize:     2000,
		RelevanceThreshold: 0.5,
		RecencyWeight:      0.3,
		ImportanceWeight:   0.5,
	},
	TierPro: {
		MaxContextSize:              8000,
		RelevanceThreshold:          0.4,
		RecencyWeight:               0.3,
		ImportanceWeight:            0.5,
		EnableMemoryCompression:     true,
		EnableContextPrioritization: true,
	},
	TierEnterprise: {
		MaxContextSize:              32000,
		RelevanceThreshold:          0.3,
		RecencyWeight:               0.3,
		ImportanceWeight:            0.5,
		EnableLongTermMemory:        true,
		EnableMemoryCompression:     true,
		EnableContextPrioritization: true,
	},
}

// ParseTier maps a stored plan identifier to a Tier. Anything
// unrecognized resolves to the free tier.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPro, TierEnterprise:
		return Tier(s)
	default:
		return TierFree
	}
}

// Limits returns the plan limits for a tier, with catalog overrides
// applied when a deployment supplies them. An unknown tier gets the free
// tier's limits.
func Limits(tier Tier, catalog config.PlanCatalog) config.PlanLimits {
	if catalog != nil {
		if limits, ok := catalog[string(tier)]; ok {
			return limits
		}
	}
	limits, ok := defaultLimits[tier]
	if !ok {
		return defaultLimits[TierFree]
	}
	return limits
}
