package world

import "sync/atomic"

// Chunk stores a cubic section of blocks. Block storage is allocated on the
// first non-air write so empty chunks cost almost nothing.
//
// A Chunk is not safe for concurrent mutation. Generation fills it before it
// is published to a ChunkStore; afterwards only the owning thread writes to it.
// The dirty flag is the exception and may be raised from any goroutine.
type Chunk struct {
	X, Y, Z int

	blocks []BlockID
	solid  int
	dirty  atomic.Bool
}

func NewChunk(x, y, z int) *Chunk {
	c := &Chunk{X: x, Y: y, Z: z}
	c.dirty.Store(true)
	return c
}

func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Y: c.Y, Z: c.Z}
}

func index(x, y, z int) int {
	return (x*ChunkSize+y)*ChunkSize + z
}

func inBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSize && y >= 0 && y < ChunkSize && z >= 0 && z < ChunkSize
}

// GetBlock returns the block at chunk-local coordinates, or air when out of range.
func (c *Chunk) GetBlock(x, y, z int) BlockID {
	if c.blocks == nil || !inBounds(x, y, z) {
		return BlockAir
	}
	return c.blocks[index(x, y, z)]
}

// SetBlock writes a block at chunk-local coordinates and marks the chunk dirty.
func (c *Chunk) SetBlock(x, y, z int, id BlockID) {
	if !inBounds(x, y, z) {
		return
	}
	if c.blocks == nil {
		if id == BlockAir {
			return
		}
		c.blocks = make([]BlockID, chunkVolume)
	}
	i := index(x, y, z)
	prev := c.blocks[i]
	if prev == id {
		return
	}
	switch {
	case prev == BlockAir:
		c.solid++
	case id == BlockAir:
		c.solid--
	}
	c.blocks[i] = id
	c.dirty.Store(true)
}

// IsEmpty reports whether the chunk contains only air.
func (c *Chunk) IsEmpty() bool {
	return c.solid == 0
}

func (c *Chunk) SolidCount() int {
	return c.solid
}

func (c *Chunk) IsDirty() bool {
	return c.dirty.Load()
}

func (c *Chunk) MarkDirty() {
	c.dirty.Store(true)
}

// takeDirty clears the dirty flag and reports whether it was set.
func (c *Chunk) takeDirty() bool {
	return c.dirty.Swap(false)
}

// Snapshot copies the chunk's blocks into an immutable snapshot.
func (c *Chunk) Snapshot() *ChunkSnapshot {
	s := &ChunkSnapshot{Coord: c.Coord()}
	if c.solid > 0 {
		s.blocks = make([]BlockID, chunkVolume)
		copy(s.blocks, c.blocks)
	}
	return s
}
