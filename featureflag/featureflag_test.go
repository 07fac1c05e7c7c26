package featureflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	f := New([]string{string(FlagDisableSIMDFiltering)})

	t.Run("is set", func(t *testing.T) {
		require.True(t, f.IsSet(FlagDisableSIMDFiltering))
		require.False(t, f.IsSet(FlagDisablePredictiveLoading))
	})

	t.Run("run if enabled", func(t *testing.T) {
		var runSIMD bool
		f.IfSet(FlagDisableSIMDFiltering, func() {
			runSIMD = true
		})
		require.True(t, runSIMD)

		var runPredictive bool
		f.IfSet(FlagDisablePredictiveLoading, func() {
			runPredictive = true
		})
		require.False(t, runPredictive)
	})

	t.Run("run if disabled", func(t *testing.T) {
		var runSIMD bool
		f.IfNotSet(FlagDisableSIMDFiltering, func() {
			runSIMD = true
		})
		require.False(t, runSIMD)

		var runPriority bool
		f.IfNotSet(FlagDisablePriorityScheduling, func() {
			runPriority = true
		})
		require.True(t, runPriority)
	})
}
