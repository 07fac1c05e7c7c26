package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/voxelhive/warden/models"
)

func TestQuadNodeLeafInsert(t *testing.T) {
	n := newQuadNode(models.NewPosition(0, 0, 0), 64)

	for i := int64(1); i <= leafCapacity; i++ {
		n.insert(i, models.NewPosition(float32(i), 0, 0))
	}

	require.True(t, n.isLeaf())
	require.Len(t, n.entries, leafCapacity)
}

func TestQuadNodeSplit(t *testing.T) {
	n := newQuadNode(models.NewPosition(0, 0, 0), 64)

	// one entity per quadrant plus one more to push past the leaf capacity
	n.insert(1, models.NewPosition(-10, 0, -10))
	n.insert(2, models.NewPosition(10, 0, -10))
	n.insert(3, models.NewPosition(-10, 0, 10))
	n.insert(4, models.NewPosition(10, 0, 10))
	n.insert(5, models.NewPosition(12, 0, 12))

	require.False(t, n.isLeaf())
	require.Nil(t, n.entries)

	t.Run("children have fixed offsets and half size", func(t *testing.T) {
		require.Equal(t, models.NewPosition(-16, 0, -16), n.children[0].center)
		require.Equal(t, models.NewPosition(16, 0, -16), n.children[1].center)
		require.Equal(t, models.NewPosition(-16, 0, 16), n.children[2].center)
		require.Equal(t, models.NewPosition(16, 0, 16), n.children[3].center)
		for _, c := range n.children {
			require.Equal(t, float32(32), c.size)
		}
	})

	t.Run("entities land in the quadrant holding their real position", func(t *testing.T) {
		require.Equal(t, []quadEntry{{id: 1, pos: models.NewPosition(-10, 0, -10)}}, n.children[0].entries)
		require.Equal(t, []quadEntry{{id: 2, pos: models.NewPosition(10, 0, -10)}}, n.children[1].entries)
		require.Equal(t, []quadEntry{{id: 3, pos: models.NewPosition(-10, 0, 10)}}, n.children[2].entries)
		require.Len(t, n.children[3].entries, 2)
	})
}

func TestQuadNodeColocatedEntries(t *testing.T) {
	// Co-located entries always redistribute into the same child, so
	// subdivision has to terminate at the minimum node size and let that
	// leaf grow past capacity.
	n := newQuadNode(models.NewPosition(0, 0, 0), 64)

	pos := models.NewPosition(3, 0, 3)
	for i := int64(1); i <= 8; i++ {
		n.insert(i, pos)
	}

	ids := n.query(pos, 1, nil)
	require.ElementsMatch(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, ids)

	t.Run("the crowded leaf stays within the size floor", func(t *testing.T) {
		leaf := n
		for !leaf.isLeaf() {
			leaf = leaf.children[leaf.childIndex(pos)]
		}
		require.LessOrEqual(t, leaf.size, minSplitSize)
		require.Len(t, leaf.entries, 8)
	})

	t.Run("removal still finds every entry", func(t *testing.T) {
		for i := int64(1); i <= 8; i++ {
			require.True(t, n.remove(i))
		}
		require.Empty(t, n.query(pos, 1, nil))
	})
}

func TestQuadNodeRemove(t *testing.T) {
	t.Run("removing from a leaf", func(t *testing.T) {
		n := newQuadNode(models.NewPosition(0, 0, 0), 64)
		n.insert(1, models.NewPosition(1, 0, 1))

		require.True(t, n.remove(1))
		require.Empty(t, n.entries)
		require.False(t, n.remove(1))
	})

	t.Run("removing searches every child after a split", func(t *testing.T) {
		n := newQuadNode(models.NewPosition(0, 0, 0), 64)
		for i := int64(1); i <= 5; i++ {
			n.insert(i, models.NewPosition(float32(i), 0, float32(i)))
		}
		require.False(t, n.isLeaf())

		for i := int64(1); i <= 5; i++ {
			require.True(t, n.remove(i))
		}
		require.False(t, n.remove(1))
	})
}

func TestQuadNodeQuery(t *testing.T) {
	n := newQuadNode(models.NewPosition(0, 0, 0), 64)
	n.insert(1, models.NewPosition(0, 0, 0))
	n.insert(2, models.NewPosition(5, 0, 0))

	t.Run("returns leaves unfiltered", func(t *testing.T) {
		// id 2 is outside the radius but shares the leaf; exact filtering is
		// the caller's job.
		ids := n.query(models.NewPosition(0, 0, 0), 1, nil)
		require.ElementsMatch(t, []int64{1, 2}, ids)
	})

	t.Run("prunes subtrees conservatively", func(t *testing.T) {
		ids := n.query(models.NewPosition(1000, 0, 1000), 10, nil)
		require.Empty(t, ids)
	})

	t.Run("never prunes a subtree that may contain a match", func(t *testing.T) {
		// split the node, then query near a quadrant edge
		for i := int64(3); i <= 6; i++ {
			n.insert(i, models.NewPosition(float32(-i), 0, float32(-i)))
		}
		require.False(t, n.isLeaf())

		ids := n.query(models.NewPosition(5, 0, 0), 2, nil)
		require.Contains(t, ids, int64(2))
	})
}
