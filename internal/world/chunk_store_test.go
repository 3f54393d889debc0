package world

import "testing"

func TestChunkSetBlockCountsSolids(t *testing.T) {
	c := NewChunk(0, 0, 0)
	if !c.IsEmpty() {
		t.Fatalf("new chunk should be empty")
	}
	c.SetBlock(1, 2, 3, 5)
	c.SetBlock(1, 2, 3, 6)
	if c.SolidCount() != 1 {
		t.Fatalf("solid = %d, want 1", c.SolidCount())
	}
	c.SetBlock(1, 2, 3, BlockAir)
	if !c.IsEmpty() {
		t.Fatalf("chunk should be empty after clearing")
	}
	c.SetBlock(-1, 0, 0, 5)
	if !c.IsEmpty() {
		t.Fatalf("out of range write should be ignored")
	}
}

func TestStoreSetMarksNeighborsDirty(t *testing.T) {
	cs := NewChunkStore()
	cs.Set(0, 0, 0, 1)
	cs.Set(-1, 0, 0, 1)

	west := cs.GetChunk(ChunkCoord{-1, 0, 0}, false)
	center := cs.GetChunk(ChunkCoord{0, 0, 0}, false)
	west.takeDirty()
	center.takeDirty()

	cs.Set(0, 5, 5, 2)
	if !west.IsDirty() {
		t.Fatalf("west neighbor should be dirty after border write")
	}
	if !center.IsDirty() {
		t.Fatalf("center should be dirty")
	}

	west.takeDirty()
	center.takeDirty()
	cs.Set(5, 5, 5, 2)
	if west.IsDirty() {
		t.Fatalf("interior write must not dirty neighbors")
	}
}

func TestStoreAddChunkDirtiesNeighbors(t *testing.T) {
	cs := NewChunkStore()
	a := NewChunk(0, 0, 0)
	cs.AddChunk(a)
	a.takeDirty()

	if !cs.AddChunk(NewChunk(0, 1, 0)) {
		t.Fatalf("expected chunk to be added")
	}
	if cs.AddChunk(NewChunk(0, 1, 0)) {
		t.Fatalf("duplicate chunk should be rejected")
	}
	if !a.IsDirty() {
		t.Fatalf("existing neighbor should be dirty")
	}
}

func TestSnapshotModelBlockAt(t *testing.T) {
	cs := NewChunkStore()
	cs.Set(3, 3, 3, 7)
	cs.Set(16, 3, 3, 8)  // east neighbor
	cs.Set(3, -1, 3, 9)  // bottom neighbor
	cs.Set(3, 3, -1, 10) // north neighbor
	cs.Set(16, 16, 3, 11)

	coord := ChunkCoord{}
	var nbs [NumFaces]*ChunkSnapshot
	for _, f := range Faces {
		nbs[f] = cs.Snapshot(coord.Neighbor(f))
	}
	m := NewSnapshotModel(New("t").ID, cs.Snapshot(coord), nbs, true)

	cases := []struct {
		x, y, z int
		want    BlockID
	}{
		{3, 3, 3, 7},
		{16, 3, 3, 8},
		{3, -1, 3, 9},
		{3, 3, -1, 10},
		{16, 16, 3, BlockAir}, // diagonal neighbors are not part of the model
		{-1, 3, 3, BlockAir},  // unloaded neighbor
	}
	for _, c := range cases {
		if got := m.BlockAt(c.x, c.y, c.z); got != c.want {
			t.Fatalf("BlockAt(%d,%d,%d) = %d, want %d", c.x, c.y, c.z, got, c.want)
		}
	}

	cs.Set(3, 3, 3, 1)
	if m.BlockAt(3, 3, 3) != 7 {
		t.Fatalf("snapshot must not observe later writes")
	}
}

func TestSnapshotModelRenderMaterials(t *testing.T) {
	m := NewUnloadModel(New("t").ID, ChunkCoord{})
	if !m.HasRenderMaterial("anything") {
		t.Fatalf("unrestricted model should accept every material")
	}
	m.RestrictMaterials("glass")
	if m.HasRenderMaterial("solid") || !m.HasRenderMaterial("glass") {
		t.Fatalf("restriction not applied")
	}
}

func TestEvictFarChunks(t *testing.T) {
	cs := NewChunkStore()
	cs.AddChunk(NewChunk(0, 0, 0))
	cs.AddChunk(NewChunk(5, 0, 0))
	cs.AddChunk(NewChunk(0, 2, 1))

	evicted := cs.EvictFarChunks(0, 0, 2, nil)
	if len(evicted) != 1 || evicted[0] != (ChunkCoord{5, 0, 0}) {
		t.Fatalf("evicted %v", evicted)
	}
	if cs.Len() != 2 {
		t.Fatalf("len = %d, want 2", cs.Len())
	}
}
