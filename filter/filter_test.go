package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyScalar(t *testing.T) {
	f := New()

	candidates := []Candidate{
		{ID: 1, X: 0, Z: 0},
		{ID: 2, X: 3, Z: 4},
		{ID: 3, X: 30, Z: 40},
	}

	t.Run("keeps candidates within the limit", func(t *testing.T) {
		ids := f.ApplyScalar(candidates, 0, 0, 100)
		require.Equal(t, []int64{1, 2}, ids)
	})

	t.Run("the limit is inclusive", func(t *testing.T) {
		ids := f.ApplyScalar(candidates, 0, 0, 25)
		require.Equal(t, []int64{1, 2}, ids)
	})

	t.Run("empty input yields an empty selection", func(t *testing.T) {
		ids := f.ApplyScalar(nil, 0, 0, 100)
		require.Empty(t, ids)
	})
}

func TestApplyBatched(t *testing.T) {
	f := New()

	t.Run("counts full batches", func(t *testing.T) {
		candidates := make([]Candidate, 20)
		for i := range candidates {
			candidates[i] = Candidate{ID: int64(i), X: float32(i), Z: 0}
		}

		ids, batches := f.ApplyBatched(candidates, 0, 0, 1e9)
		require.Len(t, ids, 20)
		require.Equal(t, 2, batches)
	})

	t.Run("below one batch everything goes through the tail", func(t *testing.T) {
		ids, batches := f.ApplyBatched([]Candidate{{ID: 1, X: 1, Z: 1}}, 0, 0, 100)
		require.Equal(t, []int64{1}, ids)
		require.Equal(t, 0, batches)
	})
}

func TestBatchedScalarEquivalence(t *testing.T) {
	f := New()
	rng := rand.New(rand.NewSource(7))

	sizes := []int{0, 1, 7, 8, 9, 64, 100, 1000}
	for _, size := range sizes {
		candidates := make([]Candidate, size)
		for i := range candidates {
			candidates[i] = Candidate{
				ID: int64(i + 1),
				X:  rng.Float32()*200 - 100,
				Z:  rng.Float32()*200 - 100,
			}
		}

		viewerX := rng.Float32()*20 - 10
		viewerZ := rng.Float32()*20 - 10
		maxDistSq := rng.Float32() * 5000

		batched, _ := f.ApplyBatched(candidates, viewerX, viewerZ, maxDistSq)
		scalar := f.ApplyScalar(candidates, viewerX, viewerZ, maxDistSq)

		require.ElementsMatch(t, scalar, batched, "size %d", size)
	}
}
