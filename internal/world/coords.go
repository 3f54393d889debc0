package world

import "fmt"

// ChunkSize is the edge length of a cubic chunk in blocks.
const ChunkSize = 16

const chunkVolume = ChunkSize * ChunkSize * ChunkSize

// ChunkCoord addresses a chunk in chunk units.
type ChunkCoord struct {
	X, Y, Z int
}

// ChunkCoordOf returns the chunk containing the absolute block position.
func ChunkCoordOf(x, y, z int) ChunkCoord {
	return ChunkCoord{X: floorDiv(x, ChunkSize), Y: floorDiv(y, ChunkSize), Z: floorDiv(z, ChunkSize)}
}

// Origin returns the absolute block position of the chunk's minimum corner.
func (c ChunkCoord) Origin() (x, y, z int) {
	return c.X * ChunkSize, c.Y * ChunkSize, c.Z * ChunkSize
}

func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{X: c.X + dx, Y: c.Y + dy, Z: c.Z + dz}
}

// Neighbor returns the chunk adjacent across face f.
func (c ChunkCoord) Neighbor(f BlockFace) ChunkCoord {
	dx, dy, dz := f.Offset()
	return c.Add(dx, dy, dz)
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// FloorDiv divides rounding toward negative infinity.
func FloorDiv(a, b int) int {
	return floorDiv(a, b)
}

// FloorMod is the non-negative remainder matching FloorDiv.
func FloorMod(a, b int) int {
	return mod(a, b)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
