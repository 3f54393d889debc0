package world

import "testing"

func TestCollectSnapshotsRequiresRenderQueue(t *testing.T) {
	w := New("overworld")
	w.Set(1, 1, 1, 3)

	if got := w.CollectSnapshots(nil, 0); len(got) != 0 {
		t.Fatalf("collected %d models with render queue disabled", len(got))
	}

	w.EnableRenderQueue()
	got := w.CollectSnapshots(nil, 0)
	if len(got) != 1 {
		t.Fatalf("collected %d models, want 1", len(got))
	}
	m := got[0]
	if m.World != w.ID || !m.First || m.Unload {
		t.Fatalf("unexpected model %+v", m)
	}
	if m.BlockAt(1, 1, 1) != 3 {
		t.Fatalf("snapshot lost block")
	}

	if again := w.CollectSnapshots(nil, 0); len(again) != 0 {
		t.Fatalf("clean chunk collected again")
	}

	w.Set(2, 2, 2, 3)
	again := w.CollectSnapshots(nil, 0)
	if len(again) != 1 || again[0].First {
		t.Fatalf("rebuild should not be flagged first: %+v", again)
	}
}

func TestUnloadAfterMeshing(t *testing.T) {
	w := New("overworld")
	w.EnableRenderQueue()
	w.Set(1, 1, 1, 3)
	w.CollectSnapshots(nil, 0)

	if !w.UnloadChunk(ChunkCoord{}) {
		t.Fatalf("chunk should have been removed")
	}
	got := w.CollectSnapshots(nil, 0)
	if len(got) != 1 || !got[0].Unload || got[0].Coord != (ChunkCoord{}) {
		t.Fatalf("expected unload model, got %+v", got)
	}
	if got[0].Center() != nil {
		t.Fatalf("unload model must not carry snapshots")
	}

	// Unloading a chunk that never produced geometry emits nothing.
	w.Set(100, 1, 1, 3)
	w.UnloadChunk(ChunkCoordOf(100, 1, 1))
	if got := w.CollectSnapshots(nil, 0); len(got) != 0 {
		t.Fatalf("unexpected models %+v", got)
	}
}

func TestUnloadWhileInactiveProducesNoSignal(t *testing.T) {
	w := New("overworld")
	w.EnableRenderQueue()
	w.Set(1, 1, 1, 3)
	if got := w.CollectSnapshots(nil, 0); len(got) != 1 {
		t.Fatalf("collected %d models, want 1", len(got))
	}

	w.DisableRenderQueue()
	if !w.UnloadChunk(ChunkCoord{}) {
		t.Fatalf("chunk was not loaded")
	}
	w.EnableRenderQueue()
	if got := w.CollectSnapshots(nil, 0); len(got) != 0 {
		t.Fatalf("hand-off dropped the meshed set, want no models, got %+v", got)
	}

	// A chunk meshed after re-activation signals its unload again.
	w.Set(1, 1, 1, 3)
	w.CollectSnapshots(nil, 0)
	w.UnloadChunk(ChunkCoord{})
	if got := w.CollectSnapshots(nil, 0); len(got) != 1 || !got[0].Unload {
		t.Fatalf("want one unload model, got %+v", got)
	}
}

func TestCollectSnapshotsLimit(t *testing.T) {
	w := New("overworld")
	w.EnableRenderQueue()
	for i := 0; i < 4; i++ {
		w.Set(i*ChunkSize, 0, 0, 1)
	}
	first := w.CollectSnapshots(nil, 3)
	if len(first) != 3 {
		t.Fatalf("got %d, want 3", len(first))
	}
	rest := w.CollectSnapshots(nil, 3)
	if len(rest) != 1 {
		t.Fatalf("got %d, want 1", len(rest))
	}
}

func TestEnableRenderQueueRemeshesLoadedChunks(t *testing.T) {
	w := New("nether")
	w.EnableRenderQueue()
	w.Set(0, 0, 0, 1)
	w.CollectSnapshots(nil, 0)
	w.DisableRenderQueue()
	w.EnableRenderQueue()

	got := w.CollectSnapshots(nil, 0)
	if len(got) != 1 || !got[0].First {
		t.Fatalf("re-enabled world should remesh from scratch: %+v", got)
	}
}

type flatGenerator struct{ height int }

func (g flatGenerator) HeightAt(x, z int) int { return g.height }

func (g flatGenerator) PopulateChunk(c *Chunk) {
	_, oy, _ := c.Coord().Origin()
	for x := 0; x < ChunkSize; x++ {
		for z := 0; z < ChunkSize; z++ {
			for y := 0; y < ChunkSize && oy+y <= g.height; y++ {
				c.SetBlock(x, y, z, 1)
			}
		}
	}
}

func TestStreamerLoadsAndEvicts(t *testing.T) {
	w := New("overworld")
	s := NewStreamer(w, flatGenerator{height: 4}, 2)
	queued := s.StreamAround(0, 0, 1)
	s.Close()

	if queued != 9 {
		t.Fatalf("queued %d chunks, want 9", queued)
	}
	if w.Store().Len() != 9 {
		t.Fatalf("loaded %d chunks, want 9", w.Store().Len())
	}

	w.EnableRenderQueue()
	if got := w.CollectSnapshots(nil, 0); len(got) != 9 {
		t.Fatalf("collected %d models, want 9", len(got))
	}

	// Centred on chunk (1, 0) with radius 1, only the column itself and its
	// three neighbours inside the circle survive.
	if removed := s.EvictFarChunks(ChunkSize, 0, 1); removed != 5 {
		t.Fatalf("evicted %d, want 5", removed)
	}
	if w.Store().Len() != 4 {
		t.Fatalf("%d chunks remain, want 4", w.Store().Len())
	}
	for _, c := range []ChunkCoord{{0, 0, 0}, {1, 0, -1}, {1, 0, 0}, {1, 0, 1}} {
		if !w.Store().HasChunk(c) {
			t.Fatalf("chunk %v should survive eviction", c)
		}
	}
	unloads := 0
	for _, m := range w.CollectSnapshots(nil, 0) {
		if m.Unload {
			unloads++
		}
	}
	if unloads != 5 {
		t.Fatalf("got %d unload models, want 5", unloads)
	}
}

func TestNoiseGeneratorFillsBelowSurface(t *testing.T) {
	g := NewNoiseGenerator(42, Palette{Base: 1, Filler: 2, Surface: 3, Fluid: 4})
	h := g.HeightAt(7, 7)
	c := NewChunk(0, FloorDiv(h, ChunkSize), 0)
	g.PopulateChunk(c)
	if got := c.GetBlock(7, FloorMod(h, ChunkSize), 7); got != 3 {
		t.Fatalf("surface block = %d, want 3", got)
	}
}

func BenchmarkCollectSnapshots(b *testing.B) {
	w := New("bench")
	g := NewNoiseGenerator(1, Palette{Base: 1, Filler: 2, Surface: 3, Fluid: 4})
	for x := -2; x <= 2; x++ {
		for z := -2; z <= 2; z++ {
			for y := 0; y < 4; y++ {
				c := NewChunk(x, y, z)
				g.PopulateChunk(c)
				w.Store().AddChunk(c)
			}
		}
	}
	w.EnableRenderQueue()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Store().GetChunk(ChunkCoord{}, false).MarkDirty()
		w.CollectSnapshots(nil, 0)
	}
}
