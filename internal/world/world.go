package world

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// World owns a chunk store and feeds snapshot models to the meshing
// pipeline while its render queue is enabled.
type World struct {
	ID   uuid.UUID
	Name string

	store       *ChunkStore
	renderQueue atomic.Bool

	mu      sync.Mutex
	meshed  map[ChunkCoord]struct{}
	unloads []ChunkCoord
	scratch []ChunkCoord
}

func New(name string) *World {
	return &World{
		ID:     uuid.New(),
		Name:   name,
		store:  NewChunkStore(),
		meshed: make(map[ChunkCoord]struct{}),
	}
}

func (w *World) Store() *ChunkStore {
	return w.store
}

func (w *World) Get(x, y, z int) BlockID {
	return w.store.Get(x, y, z)
}

func (w *World) Set(x, y, z int, id BlockID) {
	w.store.Set(x, y, z, id)
}

// EnableRenderQueue starts feeding this world's chunks to meshing.
// Every loaded chunk is marked dirty so its geometry is rebuilt.
func (w *World) EnableRenderQueue() {
	if w.renderQueue.Swap(true) {
		return
	}
	w.store.mu.RLock()
	for _, c := range w.store.chunks {
		c.MarkDirty()
	}
	w.store.mu.RUnlock()
}

// DisableRenderQueue stops feeding. Geometry already produced is discarded
// downstream once the world is no longer active.
func (w *World) DisableRenderQueue() {
	if !w.renderQueue.Swap(false) {
		return
	}
	w.mu.Lock()
	clear(w.meshed)
	w.unloads = w.unloads[:0]
	w.mu.Unlock()
}

func (w *World) RenderQueueEnabled() bool {
	return w.renderQueue.Load()
}

// UnloadChunk removes a chunk and schedules an unload signal for it.
func (w *World) UnloadChunk(coord ChunkCoord) bool {
	removed := w.store.RemoveChunk(coord)
	w.noteUnloaded(coord)
	return removed
}

func (w *World) noteUnloaded(coord ChunkCoord) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.meshed[coord]; ok {
		delete(w.meshed, coord)
		w.unloads = append(w.unloads, coord)
	}
}

// CollectSnapshots appends pending work to dst: unload models first, then a
// snapshot model for each dirty chunk, up to limit entries when limit > 0.
// Nothing is collected while the render queue is disabled.
func (w *World) CollectSnapshots(dst []*SnapshotModel, limit int) []*SnapshotModel {
	if !w.renderQueue.Load() {
		return dst
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	for n < len(w.unloads) && (limit <= 0 || len(dst) < limit) {
		dst = append(dst, NewUnloadModel(w.ID, w.unloads[n]))
		n++
	}
	w.unloads = w.unloads[:copy(w.unloads, w.unloads[n:])]

	budget := 0
	if limit > 0 {
		budget = limit - len(dst)
		if budget <= 0 {
			return dst
		}
	}
	w.scratch = w.store.TakeDirty(w.scratch[:0], budget)
	for _, coord := range w.scratch {
		center := w.store.Snapshot(coord)
		if center == nil {
			continue
		}
		var neighbors [NumFaces]*ChunkSnapshot
		for _, f := range Faces {
			neighbors[f] = w.store.Snapshot(coord.Neighbor(f))
		}
		_, seen := w.meshed[coord]
		w.meshed[coord] = struct{}{}
		dst = append(dst, NewSnapshotModel(w.ID, center, neighbors, !seen))
	}
	return dst
}
