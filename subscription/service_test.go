package subscription_test

import (
	"log/slog"
	"testing"

	"github.com/nucleusmind/contextengine/errors"
	"github.com/nucleusmind/contextengine/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqliteService(t *testing.T) {
	ctx := t.Context()
	svc, err := subscription.NewSqliteService(":memory:", slog.Default())
	require.NoError(t, err)

	t.Run("active plan roundtrip", func(t *testing.T) {
		require.NoError(t, svc.SavePlan(ctx, &subscription.Plan{
			OrganizationID: "org-1",
			Tier:           "pro",
			Status:         subscription.PlanStatusActive,
		}))

		plan, err := svc.GetActivePlan(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, "pro", plan.Tier)
	})

	t.Run("missing plan is not found", func(t *testing.T) {
		_, err := svc.GetActivePlan(ctx, "org-absent")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("canceled plan is not active", func(t *testing.T) {
		require.NoError(t, svc.SavePlan(ctx, &subscription.Plan{
			OrganizationID: "org-2",
			Tier:           "enterprise",
			Status:         subscription.PlanStatusCanceled,
		}))

		_, err := svc.GetActivePlan(ctx, "org-2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("upsert replaces tier", func(t *testing.T) {
		require.NoError(t, svc.SavePlan(ctx, &subscription.Plan{
			OrganizationID: "org-1",
			Tier:           "enterprise",
			Status:         subscription.PlanStatusActive,
		}))

		plan, err := svc.GetActivePlan(ctx, "org-1")
		require.NoError(t, err)
		assert.Equal(t, "enterprise", plan.Tier)
	})

	t.Run("user setting roundtrip", func(t *testing.T) {
		require.NoError(t, svc.SaveUserSetting(ctx, &subscription.UserSetting{
			OrganizationID: "org-1",
			UserID:         "user-1",
			MaxContextSize: 12000,
		}))

		setting, err := svc.GetUserSetting(ctx, "org-1", "user-1")
		require.NoError(t, err)
		assert.Equal(t, 12000, setting.MaxContextSize)

		// Settings are keyed per organization and user
		_, err = svc.GetUserSetting(ctx, "org-2", "user-1")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})
}

func TestInMemoryService(t *testing.T) {
	ctx := t.Context()
	svc := subscription.NewInMemoryService()

	_, err := svc.GetActivePlan(ctx, "org-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	require.NoError(t, svc.SavePlan(ctx, &subscription.Plan{
		OrganizationID: "org-1",
		Tier:           "free",
		Status:         subscription.PlanStatusActive,
	}))

	plan, err := svc.GetActivePlan(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "free", plan.Tier)

	require.Error(t, svc.SavePlan(ctx, nil))
	require.Error(t, svc.SaveUserSetting(ctx, nil))
}
