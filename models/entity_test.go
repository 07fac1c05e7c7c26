package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategoryTier(t *testing.T) {
	require.Equal(t, TierCritical, CategoryPlayer.Tier())
	require.Equal(t, TierHigh, CategoryHostile.Tier())
	require.Equal(t, TierHigh, CategoryProjectile.Tier())
	require.Equal(t, TierMedium, CategoryPassive.Tier())
	require.Equal(t, TierMedium, CategoryVillager.Tier())
	require.Equal(t, TierMedium, CategoryVehicle.Tier())
	require.Equal(t, TierLow, CategoryItem.Tier())
	require.Equal(t, TierLow, CategoryOther.Tier())
}

func TestCategoryString(t *testing.T) {
	require.Equal(t, "player", CategoryPlayer.String())
	require.Equal(t, "other", CategoryOther.String())
	require.Equal(t, "other", Category(42).String())
}

func TestPriorityTierString(t *testing.T) {
	require.Equal(t, "critical", TierCritical.String())
	require.Equal(t, "low", TierLow.String())
}
