package batch_test

import (
	"testing"

	"github.com/google/uuid"

	"voxbatch/internal/assert"
	"voxbatch/internal/batch"
	"voxbatch/internal/batch/batchtest"
	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

type fixture struct {
	backend *batchtest.Backend
	index   *batch.Index
	world   uuid.UUID
	solid   *material.RenderMaterial
	glass   *material.RenderMaterial
	fluid   *material.RenderMaterial
}

func newFixture() *fixture {
	return &fixture{
		backend: batchtest.New(),
		index:   batch.NewIndex(),
		world:   uuid.New(),
		solid:   material.NewRenderMaterial("solid", 0),
		glass:   material.NewRenderMaterial("glass", 100),
		fluid:   material.NewRenderMaterial("fluid", 90),
	}
}

func (f *fixture) add(t *testing.T, region world.ChunkCoord, m *material.RenderMaterial) *batch.Aggregator {
	t.Helper()
	a := batch.NewAggregator(f.world, region, m, testLayout, f.backend)
	if !f.index.Insert(a) {
		t.Fatalf("insert %v rejected", a.Key())
	}
	if err := f.index.Verify(); err != nil {
		t.Fatalf("after insert: %v", err)
	}
	return a
}

func TestIndexViewsStayConsistent(t *testing.T) {
	f := newFixture()
	r0 := world.ChunkCoord{}
	r1 := world.ChunkCoord{X: 1}

	a := f.add(t, r0, f.solid)
	b := f.add(t, r0, f.glass)
	c := f.add(t, r1, f.solid)

	if f.index.Find(f.world, r0, f.solid) != a || f.index.Find(f.world, r1, f.glass) != nil {
		t.Fatalf("Find returned the wrong aggregator")
	}
	if got := f.index.AtRegion(f.world, r0, nil); len(got) != 2 {
		t.Fatalf("region r0 has %d aggregators", len(got))
	}

	if !f.index.Remove(b) || f.index.Remove(b) {
		t.Fatalf("remove should succeed exactly once")
	}
	if err := f.index.Verify(); err != nil {
		t.Fatal(err)
	}
	for _, g := range f.index.Groups() {
		if g.Material == f.glass {
			t.Fatalf("empty material group kept after removal")
		}
	}
	if got := f.index.AtRegion(f.world, r0, nil); len(got) != 1 || got[0] != a {
		t.Fatalf("region view diverged: %v", got)
	}

	// freed slot is reused
	d := f.add(t, r1, f.fluid)
	if f.index.Len() != 3 {
		t.Fatalf("len = %d", f.index.Len())
	}
	f.index.Remove(a)
	f.index.Remove(c)
	f.index.Remove(d)
	if f.index.Len() != 0 || len(f.index.Groups()) != 0 {
		t.Fatalf("index not empty")
	}
	if err := f.index.Verify(); err != nil {
		t.Fatal(err)
	}
}

func TestIndexRejectsDuplicateKey(t *testing.T) {
	if assert.Enabled {
		t.Skip("duplicate insert panics in debug builds")
	}
	f := newFixture()
	f.add(t, world.ChunkCoord{}, f.solid)
	dup := batch.NewAggregator(f.world, world.ChunkCoord{}, f.solid, testLayout, f.backend)
	if f.index.Insert(dup) {
		t.Fatalf("duplicate key accepted")
	}
	other := batch.NewAggregator(uuid.New(), world.ChunkCoord{}, f.solid, testLayout, f.backend)
	if !f.index.Insert(other) {
		t.Fatalf("same region in another world must be a distinct key")
	}
}

func TestIndexMaterialOrder(t *testing.T) {
	f := newFixture()
	f.add(t, world.ChunkCoord{}, f.glass)
	f.add(t, world.ChunkCoord{}, f.fluid)
	f.add(t, world.ChunkCoord{Z: 1}, f.solid)
	f.add(t, world.ChunkCoord{}, f.solid)

	var order []string
	f.index.EachMaterial(func(m *material.RenderMaterial, aggs []*batch.Aggregator) {
		order = append(order, m.Name)
		for _, a := range aggs {
			if a.Material() != m {
				t.Fatalf("aggregator %v listed under %s", a.Key(), m.Name)
			}
		}
		if m == f.solid && len(aggs) != 2 {
			t.Fatalf("solid has %d aggregators", len(aggs))
		}
	})
	want := []string{"solid", "fluid", "glass"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestIndexRemoveWorld(t *testing.T) {
	f := newFixture()
	f.add(t, world.ChunkCoord{}, f.solid)
	f.add(t, world.ChunkCoord{X: 1}, f.glass)
	other := batch.NewAggregator(uuid.New(), world.ChunkCoord{}, f.solid, testLayout, f.backend)
	f.index.Insert(other)

	removed := f.index.RemoveWorld(f.world)
	if len(removed) != 2 || f.index.Len() != 1 {
		t.Fatalf("removed %d, left %d", len(removed), f.index.Len())
	}
	if all := f.index.All(nil); len(all) != 1 || all[0] != other {
		t.Fatalf("wrong survivor")
	}
	if err := f.index.Verify(); err != nil {
		t.Fatal(err)
	}
}
