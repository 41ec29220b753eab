package contextwindow

import (
	"context"
	"log/slog"

	"github.com/nucleusmind/contextengine/config"
	"github.com/nucleusmind/contextengine/subscription"
)

// Resolver maps an organization's subscription to a ContextConfig. Any
// lookup failure degrades to the free tier: availability over precision
// on a non-critical path.
type Resolver struct {
	subscriptions subscription.Service
	catalog       config.PlanCatalog
	logger        *slog.Logger
}

func NewResolver(subscriptions subscription.Service, catalog config.PlanCatalog, logger *slog.Logger) *Resolver {
	return &Resolver{
		subscriptions: subscriptions,
		catalog:       catalog,
		logger:        logger,
	}
}

// Resolve builds a fresh configuration for the organization, applying a
// per-user context-size override when one exists. The override replaces
// the tier budget and is intentionally not clamped to the tier ceiling;
// see DESIGN.md.
func (r *Resolver) Resolve(ctx context.Context, organizationID, userID string) *ContextConfig {
	tier := subscription.TierFree

	plan, err := r.subscriptions.GetActivePlan(ctx, organizationID)
	if err != nil {
		r.logger.Warn("failed to resolve subscription, falling back to free tier",
			slog.String("organizationId", organizationID),
			slog.Any("error", err))
	} else {
		tier = subscription.ParseTier(plan.Tier)
	}

	limits := subscription.Limits(tier, r.catalog)

	conf := &ContextConfig{
		MaxContextSize:     limits.MaxContextSize,
		RelevanceThreshold: limits.RelevanceThreshold,
		RecencyWeight:      limits.RecencyWeight,
		ImportanceWeight:   limits.ImportanceWeight,
		SubscriptionTier:   tier,
		FeatureFlags: FeatureFlags{
			EnableLongTermMemory:        limits.EnableLongTermMemory,
			EnableMemoryCompression:     limits.EnableMemoryCompression,
			EnableContextPrioritization: limits.EnableContextPrioritization,
		},
	}

	if userID != "" {
		setting, err := r.subscriptions.GetUserSetting(ctx, organizationID, userID)
		if err == nil && setting.MaxContextSize > 0 {
			conf.MaxContextSize = setting.MaxContextSize
		}
	}

	return conf
}
