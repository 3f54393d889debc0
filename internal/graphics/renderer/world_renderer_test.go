package renderer

import (
	"errors"
	"testing"
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxbatch/internal/batch/batchtest"
	"voxbatch/internal/buffer"
	"voxbatch/internal/config"
	"voxbatch/internal/graphics"
	"voxbatch/internal/material"
	"voxbatch/internal/meshing"
	"voxbatch/internal/world"
	"voxbatch/pkg/blockmodel"
)

var (
	solid       = material.NewRenderMaterial("solid", 0)
	translucent = material.NewRenderMaterial("translucent", 100)
)

// stepClock advances by step every time it is read.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// after returns a deadline that expires on the n-th read from now.
func (c *stepClock) after(n int) time.Time {
	return c.t.Add(time.Duration(n) * c.step)
}

func cubeAt(coord world.ChunkCoord) *buffer.Set {
	ox, oy, oz := coord.Origin()
	off := mgl32.Vec3{float32(ox), float32(oy), float32(oz)}
	s := &buffer.Set{}
	for _, f := range blockmodel.Cube().Faces {
		s.AppendTriangles([]blockmodel.Triangle{f.Triangle.Translate(off)})
	}
	return s
}

func meshOf(w *world.World, coord world.ChunkCoord, mats ...*material.RenderMaterial) *meshing.ChunkMesh {
	bufs := orderedmap.NewOrderedMap[*material.RenderMaterial, *buffer.Set]()
	for _, m := range mats {
		bufs.Set(m, cubeAt(coord))
	}
	return &meshing.ChunkMesh{World: w.ID, Coord: coord, Time: time.Now(), Buffers: bufs}
}

func newTestRenderer(t *testing.T, regionSize [3]int) (*WorldRenderer, *batchtest.Backend, *stepClock) {
	t.Helper()
	backend := batchtest.New()
	clock := &stepClock{t: time.Unix(0, 0), step: time.Millisecond}
	r, err := NewWorldRenderer(backend, regionSize, 8)
	if err != nil {
		t.Fatalf("NewWorldRenderer: %v", err)
	}
	r.SetClock(clock.now)
	return r, backend, clock
}

func countAt(r *WorldRenderer, w *world.World, coord world.ChunkCoord) int {
	return len(r.Index().AtRegion(w.ID, r.layout.Region(coord), nil))
}

var unitLayout = [3]int{1, 1, 1}

func TestNewWorldRendererRejectsBadRegion(t *testing.T) {
	for _, size := range [][3]int{{0, 1, 1}, {1, -2, 1}, {1, 1, 0}} {
		r, err := NewWorldRenderer(batchtest.New(), size, 8)
		if !errors.Is(err, config.ErrInvalidRegion) || r != nil {
			t.Fatalf("region %v: got %v, %v", size, r, err)
		}
	}
}

func TestUpdateResumesMidMesh(t *testing.T) {
	r, _, clock := newTestRenderer(t, unitLayout)
	w := world.New("a")
	a, b, c := world.ChunkCoord{X: 0}, world.ChunkCoord{X: 1}, world.ChunkCoord{X: 2}
	for _, coord := range []world.ChunkCoord{a, b, c} {
		r.SubmitChunkMesh(meshOf(w, coord, solid, translucent))
	}

	if r.Update(RenderContext{World: w, Deadline: clock.after(3)}) {
		t.Fatalf("first slice should hit the deadline")
	}
	if r.Index().Len() != 3 || countAt(r, w, b) != 1 {
		t.Fatalf("after 3 pairs: index=%d at b=%d", r.Index().Len(), countAt(r, w, b))
	}
	if r.QueueLength() != 1 {
		t.Fatalf("queue = %d, want 1", r.QueueLength())
	}

	if r.Update(RenderContext{World: w, Deadline: clock.after(1)}) {
		t.Fatalf("second slice should hit the deadline")
	}
	if countAt(r, w, b) != 2 || countAt(r, w, c) != 0 {
		t.Fatalf("interrupted mesh must finish before the next one starts")
	}

	if !r.Update(RenderContext{World: w, Deadline: clock.after(100)}) {
		t.Fatalf("third slice should drain the queue")
	}
	if r.Index().Len() != 6 {
		t.Fatalf("index = %d, want 6", r.Index().Len())
	}
	for _, agg := range r.Index().All(nil) {
		if agg.Vertices() != 36 || agg.Uploads() != 1 {
			t.Fatalf("%v applied %d times", agg, agg.Uploads())
		}
	}
}

func TestUpdateZeroDeadlineDrains(t *testing.T) {
	r, _, _ := newTestRenderer(t, unitLayout)
	w := world.New("a")
	for i := range 10 {
		r.SubmitChunkMesh(meshOf(w, world.ChunkCoord{Z: i}, solid))
	}
	if !r.Update(RenderContext{World: w}) || r.Index().Len() != 10 {
		t.Fatalf("zero deadline should drain everything, index=%d", r.Index().Len())
	}
}

func TestStaleWorldDiscarded(t *testing.T) {
	r, backend, _ := newTestRenderer(t, unitLayout)
	a, b := world.New("a"), world.New("b")
	r.SubmitChunkMesh(meshOf(a, world.ChunkCoord{}, solid))

	r.Update(RenderContext{World: b})
	if r.Index().Len() != 0 || len(backend.Buffers) != 0 {
		t.Fatalf("mesh of inactive world was applied")
	}
	if r.QueueLength() != 0 {
		t.Fatalf("stale mesh left in queue")
	}
}

func TestWorldSwitchHandOff(t *testing.T) {
	r, _, _ := newTestRenderer(t, unitLayout)
	a, b := world.New("a"), world.New("b")

	r.SubmitChunkMesh(meshOf(a, world.ChunkCoord{}, solid))
	r.RunFrame(RenderContext{World: a})
	if !a.RenderQueueEnabled() {
		t.Fatalf("active world must feed the render queue")
	}

	fs := r.RunFrame(RenderContext{World: b})
	if a.RenderQueueEnabled() || !b.RenderQueueEnabled() {
		t.Fatalf("render queue not handed off")
	}
	if r.Index().Len() != 1 {
		t.Fatalf("switching worlds must not clear batches")
	}
	if fs.Total != 0 || fs.Rendered != 0 {
		t.Fatalf("batches of the inactive world were considered: %v", fs)
	}

	if n := r.ReleaseWorld(a.ID); n != 1 || r.Index().Len() != 0 {
		t.Fatalf("ReleaseWorld released %d", n)
	}
}

func TestReleaseWorldClearsChunksUnloadedWhileInactive(t *testing.T) {
	r, _, _ := newTestRenderer(t, unitLayout)
	a, b := world.New("a"), world.New("b")
	coord := world.ChunkCoord{}

	a.Set(1, 1, 1, 3)
	r.Update(RenderContext{World: a})
	if got := a.CollectSnapshots(nil, 0); len(got) != 1 {
		t.Fatalf("collected %d models, want 1", len(got))
	}
	r.SubmitChunkMesh(meshOf(a, coord, solid))
	r.Update(RenderContext{World: a})

	r.Update(RenderContext{World: b})
	a.UnloadChunk(coord)
	r.Update(RenderContext{World: a})
	if got := a.CollectSnapshots(nil, 0); len(got) != 0 {
		t.Fatalf("unload while inactive should not be signalled, got %d models", len(got))
	}
	if countAt(r, a, coord) != 1 {
		t.Fatalf("geometry of the unloaded chunk should remain until released")
	}
	if n := r.ReleaseWorld(a.ID); n != 1 || countAt(r, a, coord) != 0 {
		t.Fatalf("ReleaseWorld released %d", n)
	}
}

func TestUnloadRemovesChunkFromEveryMaterial(t *testing.T) {
	r, backend, _ := newTestRenderer(t, [3]int{2, 2, 2})
	w := world.New("a")
	gone, kept := world.ChunkCoord{}, world.ChunkCoord{X: 1}

	r.SubmitChunkMesh(meshOf(w, gone, solid, translucent))
	r.SubmitChunkMesh(meshOf(w, kept, solid))
	r.Update(RenderContext{World: w})
	if r.Index().Len() != 2 {
		t.Fatalf("index = %d, want 2", r.Index().Len())
	}

	r.SubmitChunkMesh(meshing.NewUnloadMesh(w.ID, gone))
	r.Update(RenderContext{World: w})

	region := r.layout.Region(gone)
	if r.Index().Find(w.ID, region, translucent) != nil {
		t.Fatalf("empty translucent batch still indexed")
	}
	s := r.Index().Find(w.ID, region, solid)
	if s == nil || s.Chunks() != 1 || s.Vertices() != 36 {
		t.Fatalf("solid batch should keep the other chunk: %v", s)
	}
	if backend.Live() != 1 {
		t.Fatalf("live buffers = %d, want 1", backend.Live())
	}
	if err := r.Index().Verify(); err != nil {
		t.Fatal(err)
	}

	// unloading a chunk that never had geometry is a no-op
	r.SubmitChunkMesh(meshing.NewUnloadMesh(w.ID, world.ChunkCoord{X: 40}))
	r.Update(RenderContext{World: w})
	if r.Index().Len() != 1 {
		t.Fatalf("unknown unload changed the index")
	}
}

func TestRemeshDropsMissingMaterials(t *testing.T) {
	r, backend, _ := newTestRenderer(t, unitLayout)
	w := world.New("a")
	coord := world.ChunkCoord{Y: 1}

	r.SubmitChunkMesh(meshOf(w, coord, solid, translucent))
	r.SubmitChunkMesh(meshOf(w, coord, solid))
	r.Update(RenderContext{World: w})

	if r.Index().Len() != 1 || r.Index().Find(w.ID, coord, solid) == nil {
		t.Fatalf("only the solid batch should remain, index=%d", r.Index().Len())
	}
	if backend.Live() != 1 {
		t.Fatalf("live buffers = %d", backend.Live())
	}

	r.SubmitChunkMesh(meshOf(w, coord))
	r.Update(RenderContext{World: w})
	if r.Index().Len() != 0 || backend.Live() != 0 {
		t.Fatalf("empty mesh should clear the chunk")
	}
}

func TestDrawCullsOutsideFrustum(t *testing.T) {
	r, backend, _ := newTestRenderer(t, unitLayout)
	w := world.New("a")
	front := world.ChunkCoord{Z: -2}
	behind := world.ChunkCoord{Z: 2}
	r.SubmitChunkMesh(meshOf(w, front, solid, translucent))
	r.SubmitChunkMesh(meshOf(w, behind, solid))

	cam := graphics.NewCamera(800, 600)
	ctx := NewRenderContext(w, cam, 0, time.Time{})
	fs := r.RunFrame(ctx)

	if fs.Total != 3 || fs.Rendered+fs.Culled != fs.Total {
		t.Fatalf("counters do not add up: %v", fs)
	}
	if fs.Culled != 1 || fs.Rendered != 2 {
		t.Fatalf("want 2 rendered and 1 culled, got %v", fs)
	}
	if backend.Draws != 2 {
		t.Fatalf("draws = %d", backend.Draws)
	}
	if len(backend.Binds) != 2 || backend.Binds[0] != "solid" || backend.Binds[1] != "translucent" {
		t.Fatalf("binds = %v, want solid then translucent", backend.Binds)
	}
	if len(backend.Unbinds) != len(backend.Binds) {
		t.Fatalf("unbinds = %v", backend.Unbinds)
	}
	if !fs.Drained || fs.Queued != 0 {
		t.Fatalf("frame should have drained the queue: %v", fs)
	}
}

func TestEndToEndBuildAndUnload(t *testing.T) {
	reg := material.NewRegistry(nil)
	if err := reg.Apply(material.Default()); err != nil {
		t.Fatal(err)
	}
	builder := meshing.NewBuilder(reg)
	r, backend, _ := newTestRenderer(t, [3]int{4, 4, 4})
	w := world.New("a")
	r.SetWorld(w)
	w.Set(0, 0, 0, reg.ID("stone"))

	for _, m := range w.CollectSnapshots(nil, 0) {
		r.SubmitChunkMesh(builder.Build(m))
	}
	r.RunFrame(RenderContext{World: w})

	aggs := r.Index().All(nil)
	if len(aggs) != 1 || aggs[0].Material().Name != "solid" || aggs[0].Vertices() != 36 {
		t.Fatalf("unexpected batches %v", aggs)
	}

	w.UnloadChunk(world.ChunkCoord{})
	for _, m := range w.CollectSnapshots(nil, 0) {
		r.SubmitChunkMesh(builder.Build(m))
	}
	r.RunFrame(RenderContext{World: w})
	if r.Index().Len() != 0 || backend.Live() != 0 {
		t.Fatalf("unload left %d batches, %d buffers", r.Index().Len(), backend.Live())
	}
}

func TestStatsWindow(t *testing.T) {
	r, _, _ := newTestRenderer(t, unitLayout)
	r.stats.Window = 2
	w := world.New("a")
	for range 3 {
		r.RunFrame(RenderContext{World: w})
	}
	st := r.Stats()
	if st.Frames != 1 {
		t.Fatalf("frames = %d, want window roll to 1", st.Frames)
	}
	// three clock reads per frame, one millisecond apart
	if st.UpdateMax != time.Millisecond || st.RenderMin != time.Millisecond {
		t.Fatalf("timings %v/%v", st.UpdateMax, st.RenderMin)
	}
	if st.UpdateAvg() != time.Millisecond {
		t.Fatalf("avg = %v", st.UpdateAvg())
	}
}

func TestDisposeReleasesAll(t *testing.T) {
	r, backend, _ := newTestRenderer(t, unitLayout)
	w := world.New("a")
	for i := range 4 {
		r.SubmitChunkMesh(meshOf(w, world.ChunkCoord{X: i}, solid))
	}
	r.Update(RenderContext{World: w})
	r.Dispose()
	if backend.Live() != 0 || r.Index().Len() != 0 {
		t.Fatalf("dispose left %d buffers", backend.Live())
	}
	if r.ReleaseWorld(uuid.New()) != 0 {
		t.Fatalf("unknown world released batches")
	}
}

func BenchmarkUpdate(b *testing.B) {
	backend := batchtest.New()
	r, err := NewWorldRenderer(backend, [3]int{4, 4, 4}, 0)
	if err != nil {
		b.Fatal(err)
	}
	w := world.New("bench")
	meshes := make([]*meshing.ChunkMesh, 64)
	for i := range meshes {
		meshes[i] = meshOf(w, world.ChunkCoord{X: i % 4, Y: i / 16, Z: i / 4 % 4}, solid, translucent)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, m := range meshes {
			r.SubmitChunkMesh(m)
		}
		r.Update(RenderContext{World: w})
	}
}
