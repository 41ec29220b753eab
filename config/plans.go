package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"github.com/nucleusmind/contextengine/errors"
)

type (
	// PlanLimits is the set of budgets and feature flags a subscription
	// tier grants. Tiers are a closed enumeration; a catalog file may
	// override the limits of known tiers but cannot invent new ones.
	PlanLimits struct {
		MaxContextSize              int     `yaml:"maxContextSize"`
		RelevanceThreshold          float64 `yaml:"relevanceThreshold"`
		RecencyWeight               float64 `yaml:"recencyWeight"`
		ImportanceWeight            float64 `yaml:"importanceWeight"`
		EnableLongTermMemory        bool    `yaml:"enableLongTermMemory"`
		EnableMemoryCompression     bool    `yaml:"enableMemoryCompression"`
		EnableContextPrioritization bool    `yaml:"enableContextPrioritization"`
	}

	PlanCatalog map[string]PlanLimits
)

var knownTiers = map[string]struct{}{
	"free":       {},
	"pro":        {},
	"enterprise": {},
}

// LoadPlansFromFile reads per-tier limit overrides from a YAML catalog.
// Unknown tier names and non-positive budgets are rejected.
func LoadPlansFromFile(file string) (PlanCatalog, error) {
	yamlBytes, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", file)
	}

	var catalog PlanCatalog
	if err := yaml.Unmarshal(yamlBytes, &catalog); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal file %s", file)
	}

	for tier, limits := range catalog {
		if _, ok := knownTiers[tier]; !ok {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown tier %q in plan catalog", tier)
		}
		if limits.MaxContextSize <= 0 {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "tier %q must have a positive maxContextSize", tier)
		}
	}

	return catalog, nil
}
