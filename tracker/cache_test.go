package tracker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxelhive/warden/models"
)

func TestCacheLookup(t *testing.T) {
	c := newQueryCache()
	c.store(models.NewPosition(10, 0, 10), 32, 100, []int64{1, 2, 3})

	t.Run("exact repeat hits", func(t *testing.T) {
		result, ok := c.lookup(models.NewPosition(10, 0, 10), 32, 100)
		require.True(t, ok)
		require.Equal(t, []int64{1, 2, 3}, result)
	})

	t.Run("near-identical query within tolerance hits", func(t *testing.T) {
		_, ok := c.lookup(models.NewPosition(10.4, 0, 9.6), 32.4, 100)
		require.True(t, ok)
	})

	t.Run("tolerance boundary is exclusive", func(t *testing.T) {
		_, ok := c.lookup(models.NewPosition(10.5, 0, 10), 32, 100)
		require.False(t, ok)
	})

	t.Run("y displacement never affects matching", func(t *testing.T) {
		_, ok := c.lookup(models.NewPosition(10, 200, 10), 32, 100)
		require.True(t, ok)
	})

	t.Run("entry expires after five ticks", func(t *testing.T) {
		_, ok := c.lookup(models.NewPosition(10, 0, 10), 32, 104)
		require.True(t, ok)

		_, ok = c.lookup(models.NewPosition(10, 0, 10), 32, 105)
		require.False(t, ok)
	})
}

func TestCacheIsolatesStoredResults(t *testing.T) {
	c := newQueryCache()

	stored := []int64{1, 2, 3}
	c.store(models.NewPosition(0, 0, 0), 32, 0, stored)

	t.Run("mutating the stored slice leaves the entry intact", func(t *testing.T) {
		stored[0] = 99

		result, ok := c.lookup(models.NewPosition(0, 0, 0), 32, 0)
		require.True(t, ok)
		require.Equal(t, []int64{1, 2, 3}, result)
	})

	t.Run("mutating a hit leaves later hits intact", func(t *testing.T) {
		first, ok := c.lookup(models.NewPosition(0, 0, 0), 32, 0)
		require.True(t, ok)
		first[0] = 99

		second, ok := c.lookup(models.NewPosition(0, 0, 0), 32, 0)
		require.True(t, ok)
		require.Equal(t, []int64{1, 2, 3}, second)
	})
}

func TestCacheEviction(t *testing.T) {
	c := newQueryCache()

	for i := 0; i < cacheCapacity+1; i++ {
		c.store(models.NewPosition(float32(i)*10, 0, 0), 32, 0, []int64{int64(i)})
	}

	require.Equal(t, cacheCapacity, c.len())

	t.Run("the oldest entry was evicted", func(t *testing.T) {
		_, ok := c.lookup(models.NewPosition(0, 0, 0), 32, 0)
		require.False(t, ok)
	})

	t.Run("newer entries survive", func(t *testing.T) {
		for i := 1; i < cacheCapacity+1; i++ {
			result, ok := c.lookup(models.NewPosition(float32(i)*10, 0, 0), 32, 0)
			require.True(t, ok, fmt.Sprintf("entry %d", i))
			require.Equal(t, []int64{int64(i)}, result)
		}
	})
}

func TestCacheSweep(t *testing.T) {
	c := newQueryCache()
	c.store(models.NewPosition(0, 0, 0), 32, 0, []int64{1})
	c.store(models.NewPosition(100, 0, 0), 32, 8, []int64{2})

	c.sweep(10)

	require.Equal(t, 1, c.len())

	_, ok := c.lookup(models.NewPosition(100, 0, 0), 32, 10)
	require.True(t, ok)
}
