package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPositionCell(t *testing.T) {
	t.Run("origin maps to cell zero", func(t *testing.T) {
		cx, cz := NewPosition(0, 0, 0).Cell()
		require.Equal(t, int32(0), cx)
		require.Equal(t, int32(0), cz)
	})

	t.Run("positions inside one cell share coordinates", func(t *testing.T) {
		cx, cz := NewPosition(31.9, 64, 0.1).Cell()
		require.Equal(t, int32(0), cx)
		require.Equal(t, int32(0), cz)
	})

	t.Run("cell boundary starts a new cell", func(t *testing.T) {
		cx, cz := NewPosition(32, 0, 64).Cell()
		require.Equal(t, int32(1), cx)
		require.Equal(t, int32(2), cz)
	})

	t.Run("negative coordinates floor toward negative infinity", func(t *testing.T) {
		cx, cz := NewPosition(-0.5, 0, -32.5).Cell()
		require.Equal(t, int32(-1), cx)
		require.Equal(t, int32(-2), cz)
	})
}

func TestPositionApproxEqual(t *testing.T) {
	p := NewPosition(1, 2, 3)

	require.True(t, p.ApproxEqual(NewPosition(1.05, 2, 2.95)))
	require.False(t, p.ApproxEqual(NewPosition(1.2, 2, 3)))
}

func TestPositionDistance(t *testing.T) {
	a := NewPosition(0, 0, 0)
	b := NewPosition(3, 100, 4)

	require.Equal(t, float32(25), a.DistanceSqXZ(b))
	require.Equal(t, float32(5), a.DistanceXZ(b))
}

func TestPositionMath(t *testing.T) {
	a := NewPosition(1, 2, 3)
	b := NewPosition(4, 5, 6)

	require.Equal(t, NewPosition(5, 7, 9), Add(a, b))
	require.Equal(t, NewPosition(-3, -3, -3), Sub(a, b))
	require.Equal(t, NewPosition(2, 4, 6), Mul(a, 2))
}
