package meshing

import (
	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

// NeighborLookup returns the material at an absolute block position.
type NeighborLookup func(x, y, z int) material.Material

// ResolveFaces decides which faces of the block at (x, y, z) must be emitted.
// A face survives when the material renders it against the neighbor and the
// neighbor does not occlude the touching face. Invisible materials and
// materials without a model return immediately without consulting lookup.
func ResolveFaces(m material.Material, x, y, z int, lookup NeighborLookup) (visible world.FaceMask, fullyOccluded bool) {
	if m.IsInvisible() || m.Model() == nil {
		return 0, true
	}
	data := m.Data()
	for _, face := range world.Faces {
		dx, dy, dz := face.Offset()
		neighbor := lookup(x+dx, y+dy, z+dz)
		if !m.IsFaceRendered(face, neighbor) {
			continue
		}
		if neighbor != nil && neighbor.Occlusion(data).Has(face.Opposite()) {
			continue
		}
		visible = visible.With(face)
	}
	return visible, visible == 0
}
