package meshing

import (
	"fmt"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"voxbatch/internal/buffer"
	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

// Buffers maps each render material to the vertex data a chunk contributes.
type Buffers = orderedmap.OrderedMap[*material.RenderMaterial, *buffer.Set]

// ChunkMesh is the material-partitioned geometry of one chunk at one point
// in time. An unloaded mesh carries no buffers and signals removal.
type ChunkMesh struct {
	World    uuid.UUID
	Coord    world.ChunkCoord
	Time     time.Time
	First    bool
	Unloaded bool
	Buffers  *Buffers
}

func newChunkMesh(m *world.SnapshotModel) *ChunkMesh {
	mesh := &ChunkMesh{
		World:    m.World,
		Coord:    m.Coord,
		Time:     m.Time,
		First:    m.First,
		Unloaded: m.Unload,
	}
	if !m.Unload {
		mesh.Buffers = orderedmap.NewOrderedMap[*material.RenderMaterial, *buffer.Set]()
	}
	return mesh
}

// NewUnloadMesh builds a removal signal for coord without running a builder.
func NewUnloadMesh(worldID uuid.UUID, coord world.ChunkCoord) *ChunkMesh {
	return &ChunkMesh{World: worldID, Coord: coord, Time: time.Now(), Unloaded: true}
}

// bufferFor returns the set for rm, creating it on first use.
func (m *ChunkMesh) bufferFor(rm *material.RenderMaterial) *buffer.Set {
	if set, ok := m.Buffers.Get(rm); ok {
		return set
	}
	set := &buffer.Set{}
	m.Buffers.Set(rm, set)
	return set
}

// HasVertices reports whether any material received geometry.
func (m *ChunkMesh) HasVertices() bool {
	return m.Buffers != nil && m.Buffers.Len() > 0
}

// Vertices totals the vertex count across materials.
func (m *ChunkMesh) Vertices() int {
	if m.Buffers == nil {
		return 0
	}
	n := 0
	for el := m.Buffers.Front(); el != nil; el = el.Next() {
		n += el.Value.Vertices()
	}
	return n
}

func (m *ChunkMesh) String() string {
	if m.Unloaded {
		return fmt.Sprintf("unload %v@%s", m.Coord, m.World)
	}
	return fmt.Sprintf("mesh %v@%s materials=%d vertices=%d", m.Coord, m.World, m.Buffers.Len(), m.Vertices())
}
