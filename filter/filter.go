// Package filter implements the batched proximity filter that turns a
// candidate set into the exact visible set.
package filter

import (
	"golang.org/x/sys/cpu"
)

// BatchSize is the number of candidates processed per vectorized batch.
const BatchSize = 8

// Candidate is one entity to be distance-checked against a viewer.
type Candidate struct {
	ID int64
	X  float32
	Z  float32
}

// ProximityFilter selects candidates within a squared horizontal distance of
// a viewer. The vector capability of the host is probed once at construction;
// the batched and scalar paths use the identical inclusion predicate
// (squared distance <= limit, no epsilon) so their selection is always equal.
type ProximityFilter struct {
	vectorized bool
}

func New() *ProximityFilter {
	return &ProximityFilter{vectorized: hasVectorSupport()}
}

func hasVectorSupport() bool {
	return cpu.X86.HasAVX2 || cpu.X86.HasSSE42 || cpu.ARM64.HasASIMD
}

// Vectorized reports whether the batched path is available on this host.
func (f *ProximityFilter) Vectorized() bool {
	return f.vectorized
}

// ApplyScalar filters candidates one at a time.
func (f *ProximityFilter) ApplyScalar(candidates []Candidate, viewerX, viewerZ, maxDistSq float32) []int64 {
	out := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		dx := c.X - viewerX
		dz := c.Z - viewerZ
		if dx*dx+dz*dz <= maxDistSq {
			out = append(out, c.ID)
		}
	}
	return out
}

// ApplyBatched filters candidates in groups of BatchSize, with a scalar tail
// for the remainder. It returns the selected ids and the number of full
// batches executed. Callers should fall back to ApplyScalar when Vectorized
// reports false.
func (f *ProximityFilter) ApplyBatched(candidates []Candidate, viewerX, viewerZ, maxDistSq float32) ([]int64, int) {
	out := make([]int64, 0, len(candidates))

	var dx, dz, distSq [BatchSize]float32
	batches := 0

	i := 0
	for ; i+BatchSize <= len(candidates); i += BatchSize {
		batch := candidates[i : i+BatchSize]

		// Fixed-width lanes keep the loops free of bounds checks and let the
		// compiler vectorize them when the hardware allows.
		for lane := 0; lane < BatchSize; lane++ {
			dx[lane] = batch[lane].X - viewerX
			dz[lane] = batch[lane].Z - viewerZ
		}
		for lane := 0; lane < BatchSize; lane++ {
			distSq[lane] = dx[lane]*dx[lane] + dz[lane]*dz[lane]
		}
		for lane := 0; lane < BatchSize; lane++ {
			if distSq[lane] <= maxDistSq {
				out = append(out, batch[lane].ID)
			}
		}
		batches++
	}

	for ; i < len(candidates); i++ {
		c := candidates[i]
		ddx := c.X - viewerX
		ddz := c.Z - viewerZ
		if ddx*ddx+ddz*ddz <= maxDistSq {
			out = append(out, c.ID)
		}
	}

	return out, batches
}
