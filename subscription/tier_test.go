package subscription_test

import (
	"testing"

	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/subscription"
	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	assert.Equal(t, subscription.TierFree, subscription.ParseTier("free"))
	assert.Equal(t, subscription.TierPro, subscription.ParseTier("pro"))
	assert.Equal(t, subscription.TierEnterprise, subscription.ParseTier("enterprise"))

	// Unknown identifiers degrade rather than fail
	assert.Equal(t, subscription.TierFree, subscription.ParseTier(""))
	assert.Equal(t, subscription.TierFree, subscription.ParseTier("PRO"))
	assert.Equal(t, subscription.TierFree, subscription.ParseTier("platinum"))
}

func TestLimits_Defaults(t *testing.T) {
	free := subscription.Limits(subscription.TierFree, nil)
	assert.Equal(t, 2000, free.MaxContextSize)
	assert.Equal(t, 0.5, free.RelevanceThreshold)
	assert.False(t, free.EnableLongTermMemory)
	assert.False(t, free.EnableMemoryCompression)
	assert.False(t, free.EnableContextPrioritization)

	pro := subscription.Limits(subscription.TierPro, nil)
	assert.Equal(t, 8000, pro.MaxContextSize)
	assert.Equal(t, 0.4, pro.RelevanceThreshold)
	assert.False(t, pro.EnableLongTermMemory)
	assert.True(t, pro.EnableMemoryCompression)
	assert.True(t, pro.EnableContextPrioritization)

	ent := subscription.Limits(subscription.TierEnterprise, nil)
	assert.Equal(t, 32000, ent.MaxContextSize)
	assert.Equal(t, 0.3, ent.RelevanceThreshold)
	assert.True(t, ent.EnableLongTermMemory)
	assert.True(t, ent.EnableMemoryCompression)
	assert.True(t, ent.EnableContextPrioritization)
}

func TestLimits_CatalogOverride(t *testing.T) {
	catalog := config.PlanCatalog{
		"pro": config.PlanLimits{
			MaxContextSize:          16000,
			RelevanceThreshold:      0.35,
			EnableMemoryCompression: true,
		},
	}

	pro := subscription.Limits(subscription.TierPro, catalog)
	assert.Equal(t, 16000, pro.MaxContextSize)
	assert.Equal(t, 0.35, pro.RelevanceThreshold)

	// Tiers absent from the catalog keep their defaults
	free := subscription.Limits(subscription.TierFree, catalog)
	assert.Equal(t, 2000, free.MaxContextSize)
}
