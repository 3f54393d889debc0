package renderer

import (
	"time"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"

	"voxbatch/internal/batch"
	"voxbatch/internal/buffer"
	"voxbatch/internal/logging"
	"voxbatch/internal/material"
	"voxbatch/internal/meshing"
	"voxbatch/internal/profiling"
	"voxbatch/internal/world"
)

type cursor = orderedmap.Element[*material.RenderMaterial, *buffer.Set]

// WorldRenderer integrates chunk meshes into region batches a slice at a
// time and draws the batches of the active world. Meshes may be submitted
// from any goroutine; everything else must run on the render thread.
type WorldRenderer struct {
	backend batch.Backend
	layout  batch.Layout
	index   *batch.Index
	queue   *meshing.Queue
	active  *world.World

	// partially applied mesh and the next pair to apply
	current *meshing.ChunkMesh
	next    *cursor

	now     func() time.Time
	stats   Stats
	scratch []*batch.Aggregator
}

var (
	_ meshing.Sink = (*WorldRenderer)(nil)
	_ Renderable   = (*WorldRenderer)(nil)
)

// NewWorldRenderer batches chunks into regions of regionSize chunks per
// axis. Every axis must be positive.
func NewWorldRenderer(backend batch.Backend, regionSize [3]int, statsWindow int) (*WorldRenderer, error) {
	layout, err := batch.NewLayout(regionSize)
	if err != nil {
		return nil, err
	}
	return &WorldRenderer{
		backend: backend,
		layout:  layout,
		index:   batch.NewIndex(),
		queue:   meshing.NewQueue(256),
		now:     time.Now,
		stats:   Stats{Window: statsWindow},
	}, nil
}

// SetClock replaces the time source used for deadlines and timings.
func (r *WorldRenderer) SetClock(now func() time.Time) {
	r.now = now
}

// SubmitChunkMesh enqueues a mesh for integration. It never blocks.
func (r *WorldRenderer) SubmitChunkMesh(mesh *meshing.ChunkMesh) {
	r.queue.Push(mesh)
}

// QueueLength is the number of meshes waiting, excluding a partial one.
func (r *WorldRenderer) QueueLength() int {
	return r.queue.Len()
}

func (r *WorldRenderer) Index() *batch.Index {
	return r.index
}

func (r *WorldRenderer) Stats() Stats {
	return r.stats
}

// ActiveWorld is the world whose meshes are integrated and drawn.
func (r *WorldRenderer) ActiveWorld() *world.World {
	return r.active
}

// Render implements Renderable.
func (r *WorldRenderer) Render(ctx RenderContext) {
	r.RunFrame(ctx)
}

// RunFrame integrates pending meshes until ctx.Deadline, then draws every
// visible batch of ctx.World.
func (r *WorldRenderer) RunFrame(ctx RenderContext) FrameStats {
	start := r.now()
	drained := r.Update(ctx)
	mid := r.now()
	fs := r.Draw(ctx)
	fs.Drained = drained
	fs.Update = mid.Sub(start)
	fs.Render = r.now().Sub(mid)
	r.stats.record(fs)
	return fs
}

// SetWorld makes w the active world. The previous world's render queue is
// disabled and w's enabled; existing batches are left in place.
func (r *WorldRenderer) SetWorld(w *world.World) {
	if w == r.active {
		return
	}
	if r.active != nil {
		r.active.DisableRenderQueue()
	}
	if w != nil {
		w.EnableRenderQueue()
		logging.Infof("renderer: active world %s (%s)", w.Name, w.ID)
	}
	r.active = w
}

// Update applies queued meshes one (material, buffer) pair at a time and
// suspends as soon as the deadline has passed, remembering the next pair.
// It reports whether the queue was drained.
func (r *WorldRenderer) Update(ctx RenderContext) bool {
	defer profiling.Track("renderer.update")()
	r.SetWorld(ctx.World)

	for {
		if r.current == nil {
			mesh := r.queue.Poll()
			if mesh == nil {
				return true
			}
			if r.active == nil || mesh.World != r.active.ID {
				logging.Debugf("renderer: discarding stale %v", mesh)
				continue
			}
			if mesh.Unloaded {
				r.unload(mesh)
				if r.expired(ctx.Deadline) {
					return false
				}
				continue
			}
			r.sweep(mesh)
			r.current = mesh
			r.next = mesh.Buffers.Front()
		}

		for r.next != nil {
			el := r.next
			r.next = el.Next()
			r.apply(r.current, el.Key, el.Value)
			if r.expired(ctx.Deadline) {
				if r.next == nil {
					r.current = nil
				}
				logging.Debugf("renderer: deadline reached, %d meshes queued", r.queue.Len())
				return false
			}
		}
		r.current = nil
	}
}

func (r *WorldRenderer) expired(deadline time.Time) bool {
	return !deadline.IsZero() && !r.now().Before(deadline)
}

// apply splices one material's buffer of mesh into its region batch.
func (r *WorldRenderer) apply(mesh *meshing.ChunkMesh, m *material.RenderMaterial, set *buffer.Set) {
	region := r.layout.Region(mesh.Coord)
	a := r.index.Find(mesh.World, region, m)
	if a == nil {
		if set.IsEmpty() {
			return
		}
		a = batch.NewAggregator(mesh.World, region, m, r.layout, r.backend)
		r.index.Insert(a)
		logging.Debugf("renderer: created %v", a)
	}
	a.SetSubBatch(set, r.layout.LocalIndex(mesh.Coord))
	r.commit(a)
}

// commit uploads a non-empty batch or removes and releases an empty one.
func (r *WorldRenderer) commit(a *batch.Aggregator) {
	if !a.IsEmpty() {
		a.Update()
		return
	}
	r.index.Remove(a)
	a.Release()
	logging.Debugf("renderer: released %v", a)
}

// sweep clears the chunk from batches of materials the new mesh no longer
// produces.
func (r *WorldRenderer) sweep(mesh *meshing.ChunkMesh) {
	idx := r.layout.LocalIndex(mesh.Coord)
	r.scratch = r.index.AtRegion(mesh.World, r.layout.Region(mesh.Coord), r.scratch[:0])
	for _, a := range r.scratch {
		if hasMaterial(mesh, a.Material().Name) {
			continue
		}
		a.SetSubBatch(nil, idx)
		r.commit(a)
	}
}

func hasMaterial(mesh *meshing.ChunkMesh, name string) bool {
	for el := mesh.Buffers.Front(); el != nil; el = el.Next() {
		if el.Key.Name == name {
			return true
		}
	}
	return false
}

// unload removes the chunk from every batch of its world at its region.
// Chunks that never produced geometry have no batches and are a no-op.
func (r *WorldRenderer) unload(mesh *meshing.ChunkMesh) {
	idx := r.layout.LocalIndex(mesh.Coord)
	r.scratch = r.index.AtRegion(mesh.World, r.layout.Region(mesh.Coord), r.scratch[:0])
	for _, a := range r.scratch {
		a.SetSubBatch(nil, idx)
		r.commit(a)
	}
}

// Draw binds each render material once, in index order, and draws its
// batches that intersect the frustum. Batches of inactive worlds are skipped.
func (r *WorldRenderer) Draw(ctx RenderContext) FrameStats {
	defer profiling.Track("renderer.render")()
	fs := FrameStats{Queued: r.queue.Len()}
	if r.active == nil {
		return fs
	}
	active := r.active.ID
	r.index.EachMaterial(func(m *material.RenderMaterial, aggs []*batch.Aggregator) {
		bound := false
		for _, a := range aggs {
			if a.World() != active {
				continue
			}
			fs.Total++
			lo, hi := a.Bounds()
			if !ctx.Frustum.IntersectsAABB(lo, hi) {
				fs.Culled++
				continue
			}
			if !bound {
				r.backend.Bind(m, ctx.View, ctx.Proj, ctx.Model)
				bound = true
			}
			a.Draw()
			fs.Rendered++
		}
		if bound {
			r.backend.Unbind(m)
		}
	})
	return fs
}

// ReleaseWorld drops every batch of a world.
func (r *WorldRenderer) ReleaseWorld(id uuid.UUID) int {
	if r.current != nil && r.current.World == id {
		r.current, r.next = nil, nil
	}
	removed := r.index.RemoveWorld(id)
	for _, a := range removed {
		a.Release()
	}
	if len(removed) > 0 {
		logging.Infof("renderer: released %d batches of world %s", len(removed), id)
	}
	return len(removed)
}

// Dispose releases every batch.
func (r *WorldRenderer) Dispose() {
	r.current, r.next = nil, nil
	for _, a := range r.index.All(nil) {
		r.index.Remove(a)
		a.Release()
	}
}
