package grid

import (
	"github.com/voxelhive/warden/models"
)

// leafCapacity is the number of entities a quadtree leaf holds before it
// splits. A split is one-time: nodes never merge back.
const leafCapacity = 4

// minSplitSize bounds subdivision. A node at or below this size keeps
// accepting entries past leafCapacity: co-located entities would otherwise
// land in the same child on every redistribution and recurse forever.
const minSplitSize float32 = 1

type quadEntry struct {
	id  int64
	pos models.Position
}

// quadNode is one node of a region's quadrant index. A node is a leaf iff
// its first child pointer is unset.
type quadNode struct {
	center   models.Position
	size     float32
	entries  []quadEntry
	children [4]*quadNode
}

func newQuadNode(center models.Position, size float32) *quadNode {
	return &quadNode{
		center:  center,
		size:    size,
		entries: make([]quadEntry, 0, leafCapacity),
	}
}

func (n *quadNode) isLeaf() bool {
	return n.children[0] == nil
}

// childIndex selects the quadrant whose bounds contain the position.
func (n *quadNode) childIndex(pos models.Position) int {
	i := 0
	if pos.X >= n.center.X {
		i |= 1
	}
	if pos.Z >= n.center.Z {
		i |= 2
	}
	return i
}

func (n *quadNode) insert(id int64, pos models.Position) {
	if !n.isLeaf() {
		n.children[n.childIndex(pos)].insert(id, pos)
		return
	}

	n.entries = append(n.entries, quadEntry{id: id, pos: pos})
	if len(n.entries) > leafCapacity && n.size > minSplitSize {
		n.split()
	}
}

// split creates the four fixed-offset child quadrants (half size, offset
// ±size/4 on each axis) and redistributes entries by their stored positions.
func (n *quadNode) split() {
	half := n.size / 2
	offset := n.size / 4

	n.children[0] = newQuadNode(models.NewPosition(n.center.X-offset, n.center.Y, n.center.Z-offset), half)
	n.children[1] = newQuadNode(models.NewPosition(n.center.X+offset, n.center.Y, n.center.Z-offset), half)
	n.children[2] = newQuadNode(models.NewPosition(n.center.X-offset, n.center.Y, n.center.Z+offset), half)
	n.children[3] = newQuadNode(models.NewPosition(n.center.X+offset, n.center.Y, n.center.Z+offset), half)

	for _, e := range n.entries {
		n.children[n.childIndex(e.pos)].insert(e.id, e.pos)
	}
	n.entries = nil
}

// remove deletes the entry with the given id. Entries can drift from their
// insert-time quadrant while moving inside the region, so the search covers
// every child instead of routing by position.
func (n *quadNode) remove(id int64) bool {
	if n.isLeaf() {
		for i := range n.entries {
			if n.entries[i].id != id {
				continue
			}
			n.entries[i] = n.entries[len(n.entries)-1]
			n.entries = n.entries[:len(n.entries)-1]
			return true
		}
		return false
	}

	for _, c := range n.children {
		if c.remove(id) {
			return true
		}
	}
	return false
}

// query appends every id that may lie within radius of center. Subtrees are
// pruned with a conservative bounding test; leaves are returned unfiltered
// and exact distance filtering is left to the caller.
func (n *quadNode) query(center models.Position, radius float32, out []int64) []int64 {
	if center.DistanceXZ(n.center) > radius+n.size {
		return out
	}

	if n.isLeaf() {
		for _, e := range n.entries {
			out = append(out, e.id)
		}
		return out
	}

	for _, c := range n.children {
		out = c.query(center, radius, out)
	}
	return out
}
