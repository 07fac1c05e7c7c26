package grid

import (
	"github.com/voxelhive/warden/models"
)

// Region is one coarse grid cell. It owns the ids physically located inside
// the cell plus a quadrant index refining them for range queries.
type Region struct {
	entities []int64
	index    *quadNode
}

// EntityCount returns the number of entities in the region.
func (r *Region) EntityCount() int {
	return len(r.entities)
}

func (r *Region) removeEntity(id int64) bool {
	for i := range r.entities {
		if r.entities[i] != id {
			continue
		}
		r.entities[i] = r.entities[len(r.entities)-1]
		r.entities = r.entities[:len(r.entities)-1]
		return true
	}
	return false
}

// RegionGrid is the coarse spatial partition: an unbounded 2D grid of
// CellSize cells created lazily on first insert and pruned when emptied.
//
// The grid is not synchronized. The owning tracker serializes access behind
// its own lock.
type RegionGrid struct {
	regions map[int32]map[int32]*Region
	count   int
}

func NewRegionGrid() *RegionGrid {
	return &RegionGrid{
		regions: make(map[int32]map[int32]*Region),
	}
}

// Insert adds an entity to the region holding pos, creating the region and
// its quadrant index on first use. The index is sized at twice the cell size
// and centered at the first inserted position; it does not re-center as
// entities move within the cell.
func (g *RegionGrid) Insert(id int64, pos models.Position) {
	cellX, cellZ := pos.Cell()

	row, ok := g.regions[cellX]
	if !ok {
		row = make(map[int32]*Region)
		g.regions[cellX] = row
	}

	region, ok := row[cellZ]
	if !ok {
		region = &Region{
			index: newQuadNode(pos, 2*models.CellSize),
		}
		row[cellZ] = region
		g.count++
	}

	region.entities = append(region.entities, id)
	region.index.insert(id, pos)
}

// Remove deletes an entity from the region holding pos. Emptied regions are
// pruned at both map levels.
func (g *RegionGrid) Remove(id int64, pos models.Position) {
	cellX, cellZ := pos.Cell()

	row, ok := g.regions[cellX]
	if !ok {
		return
	}
	region, ok := row[cellZ]
	if !ok {
		return
	}

	region.removeEntity(id)
	region.index.remove(id)

	if len(region.entities) == 0 {
		delete(row, cellZ)
		g.count--
		if len(row) == 0 {
			delete(g.regions, cellX)
		}
	}
}

// QueryNeighborhood returns the ids of every entity that may lie within
// radius of center, gathered from the center's cell and its 8 neighbors.
// Results are candidates only: the quadrant index prunes conservatively and
// never re-checks the radius per entity.
func (g *RegionGrid) QueryNeighborhood(center models.Position, radius float32) []int64 {
	cellX, cellZ := center.Cell()

	out := make([]int64, 0, 16)
	for dx := int32(-1); dx <= 1; dx++ {
		row, ok := g.regions[cellX+dx]
		if !ok {
			continue
		}
		for dz := int32(-1); dz <= 1; dz++ {
			region, ok := row[cellZ+dz]
			if !ok {
				continue
			}
			if region.index != nil {
				out = region.index.query(center, radius, out)
			} else {
				out = append(out, region.entities...)
			}
		}
	}
	return out
}

// RegionCount returns the number of live regions.
func (g *RegionGrid) RegionCount() int {
	return g.count
}

// RegionAt returns the region for the given cell coordinates, if any.
func (g *RegionGrid) RegionAt(cellX, cellZ int32) (*Region, bool) {
	row, ok := g.regions[cellX]
	if !ok {
		return nil, false
	}
	region, ok := row[cellZ]
	return region, ok
}
