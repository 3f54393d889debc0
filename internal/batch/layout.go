package batch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/config"
	"voxbatch/internal/world"
)

// Layout groups chunks into fixed-size cuboid regions.
type Layout struct {
	X, Y, Z int
}

// NewLayout validates a region size in chunks.
func NewLayout(size [3]int) (Layout, error) {
	for axis, n := range size {
		if n <= 0 {
			return Layout{}, fmt.Errorf("%w: axis %d is %d", config.ErrInvalidRegion, axis, n)
		}
	}
	return Layout{X: size[0], Y: size[1], Z: size[2]}, nil
}

// Region returns the origin of the region containing c, in region units.
// Negative chunks floor toward the negative region.
func (l Layout) Region(c world.ChunkCoord) world.ChunkCoord {
	return world.ChunkCoord{
		X: world.FloorDiv(c.X, l.X),
		Y: world.FloorDiv(c.Y, l.Y),
		Z: world.FloorDiv(c.Z, l.Z),
	}
}

// LocalIndex is the chunk's slot inside its region.
func (l Layout) LocalIndex(c world.ChunkCoord) int {
	x := world.FloorMod(c.X, l.X)
	y := world.FloorMod(c.Y, l.Y)
	z := world.FloorMod(c.Z, l.Z)
	return (x*l.Y+y)*l.Z + z
}

// Volume is the number of chunks in one region.
func (l Layout) Volume() int {
	return l.X * l.Y * l.Z
}

// Bounds returns the block-space box covered by a region.
func (l Layout) Bounds(region world.ChunkCoord) (lo, hi mgl32.Vec3) {
	size := mgl32.Vec3{float32(l.X * world.ChunkSize), float32(l.Y * world.ChunkSize), float32(l.Z * world.ChunkSize)}
	lo = mgl32.Vec3{float32(region.X) * size[0], float32(region.Y) * size[1], float32(region.Z) * size[2]}
	return lo, lo.Add(size)
}
