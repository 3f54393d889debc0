package world

import (
	"time"

	"github.com/google/uuid"
)

// ChunkSnapshot is an immutable copy of a chunk's blocks.
// A nil block slice means every position is air.
type ChunkSnapshot struct {
	Coord  ChunkCoord
	blocks []BlockID
}

// NewChunkSnapshot wraps blocks laid out in chunk index order. The slice is
// retained, so callers must not modify it afterwards.
func NewChunkSnapshot(coord ChunkCoord, blocks []BlockID) *ChunkSnapshot {
	if len(blocks) != chunkVolume {
		blocks = nil
	}
	return &ChunkSnapshot{Coord: coord, blocks: blocks}
}

// Local returns the block at chunk-local coordinates.
func (s *ChunkSnapshot) Local(x, y, z int) BlockID {
	if s == nil || s.blocks == nil || !inBounds(x, y, z) {
		return BlockAir
	}
	return s.blocks[index(x, y, z)]
}

func (s *ChunkSnapshot) IsEmpty() bool {
	if s == nil || s.blocks == nil {
		return true
	}
	for _, b := range s.blocks {
		if b != BlockAir {
			return false
		}
	}
	return true
}

// SnapshotModel is the immutable input of one chunk meshing job: the center
// chunk plus its six face neighbors, captured at a single point in time.
// An unload model carries no snapshots and asks consumers to forget the chunk.
type SnapshotModel struct {
	World  uuid.UUID
	Coord  ChunkCoord
	Time   time.Time
	First  bool
	Unload bool

	center    *ChunkSnapshot
	neighbors [NumFaces]*ChunkSnapshot
	materials map[string]struct{}
}

func NewSnapshotModel(world uuid.UUID, center *ChunkSnapshot, neighbors [NumFaces]*ChunkSnapshot, first bool) *SnapshotModel {
	return &SnapshotModel{
		World:     world,
		Coord:     center.Coord,
		Time:      time.Now(),
		First:     first,
		center:    center,
		neighbors: neighbors,
	}
}

func NewUnloadModel(world uuid.UUID, coord ChunkCoord) *SnapshotModel {
	return &SnapshotModel{World: world, Coord: coord, Time: time.Now(), Unload: true}
}

func (m *SnapshotModel) Center() *ChunkSnapshot {
	return m.center
}

func (m *SnapshotModel) Neighbor(f BlockFace) *ChunkSnapshot {
	return m.neighbors[f]
}

// Origin returns the absolute position of the center chunk's minimum block.
func (m *SnapshotModel) Origin() (x, y, z int) {
	return m.Coord.Origin()
}

// BlockAt resolves an absolute block position against the center chunk or,
// when it lies one step outside, the matching face neighbor. Anything else
// reads as air.
func (m *SnapshotModel) BlockAt(x, y, z int) BlockID {
	ox, oy, oz := m.Coord.Origin()
	lx, ly, lz := x-ox, y-oy, z-oz
	if inBounds(lx, ly, lz) {
		return m.center.Local(lx, ly, lz)
	}
	var face BlockFace
	switch {
	case lx < 0 && inBounds(0, ly, lz):
		face = FaceWest
	case lx >= ChunkSize && inBounds(0, ly, lz):
		face = FaceEast
	case ly < 0 && inBounds(lx, 0, lz):
		face = FaceBottom
	case ly >= ChunkSize && inBounds(lx, 0, lz):
		face = FaceTop
	case lz < 0 && inBounds(lx, ly, 0):
		face = FaceNorth
	case lz >= ChunkSize && inBounds(lx, ly, 0):
		face = FaceSouth
	default:
		return BlockAir
	}
	return m.neighbors[face].Local(mod(lx, ChunkSize), mod(ly, ChunkSize), mod(lz, ChunkSize))
}

// RestrictMaterials limits meshing to the named render materials. With no
// restriction every render material is relevant.
func (m *SnapshotModel) RestrictMaterials(names ...string) {
	m.materials = make(map[string]struct{}, len(names))
	for _, n := range names {
		m.materials[n] = struct{}{}
	}
}

func (m *SnapshotModel) HasRenderMaterial(name string) bool {
	if m.materials == nil {
		return true
	}
	_, ok := m.materials[name]
	return ok
}
