package meshing

import (
	"testing"

	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

func testRegistry(t testing.TB) *material.Registry {
	t.Helper()
	r := material.NewRegistry(nil)
	if err := r.Apply(material.Default()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return r
}

type placed struct {
	x, y, z int
	id      world.BlockID
}

// snapshotFor places blocks in a fresh world and returns the snapshot model
// of the chunk at coord.
func snapshotFor(t testing.TB, coord world.ChunkCoord, blocks ...placed) *world.SnapshotModel {
	t.Helper()
	w := world.New("test")
	w.EnableRenderQueue()
	for _, b := range blocks {
		w.Set(b.x, b.y, b.z, b.id)
	}
	w.Store().GetChunk(coord, true)
	for _, m := range w.CollectSnapshots(nil, 0) {
		if m.Coord == coord {
			return m
		}
	}
	t.Fatalf("no snapshot for %v", coord)
	return nil
}
