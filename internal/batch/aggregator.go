package batch

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"voxbatch/internal/assert"
	"voxbatch/internal/buffer"
	"voxbatch/internal/material"
	"voxbatch/internal/world"
)

// span is the range one chunk occupies in each layer of the merged buffer.
type span struct {
	start    [buffer.NumLayers]int
	length   [buffer.NumLayers]int
	vertices int
}

// Aggregator merges the buffers of every chunk in one region for one render
// material. Chunk contributions are laid out in local index order and
// replaced by splicing, so one chunk's update never rebuilds the others.
type Aggregator struct {
	world    uuid.UUID
	region   world.ChunkCoord
	material *material.RenderMaterial
	layout   Layout

	merged    buffer.Set
	spans     []span
	chunks    int
	dirty     bool
	committed bool
	hash      uint64
	uploads   int

	buf      Buffer
	released bool
}

func NewAggregator(worldID uuid.UUID, region world.ChunkCoord, m *material.RenderMaterial, layout Layout, backend Backend) *Aggregator {
	return &Aggregator{
		world:    worldID,
		region:   region,
		material: m,
		layout:   layout,
		spans:    make([]span, layout.Volume()),
		buf:      backend.NewBuffer(),
	}
}

func (a *Aggregator) World() uuid.UUID                   { return a.world }
func (a *Aggregator) Region() world.ChunkCoord           { return a.region }
func (a *Aggregator) Material() *material.RenderMaterial { return a.material }
func (a *Aggregator) Key() Key {
	return Key{World: a.world, Region: a.region, Material: a.material.Name}
}

// Vertices is the merged vertex count.
func (a *Aggregator) Vertices() int { return a.merged.Vertices() }

// Chunks is the number of chunks currently contributing geometry.
func (a *Aggregator) Chunks() int { return a.chunks }

// Uploads counts commits that reached the draw resource.
func (a *Aggregator) Uploads() int { return a.uploads }

// Merged exposes the merged buffer for inspection. It must not be modified.
func (a *Aggregator) Merged() *buffer.Set { return &a.merged }

// Bounds is the block-space box of the aggregator's region.
func (a *Aggregator) Bounds() (lo, hi mgl32.Vec3) {
	return a.layout.Bounds(a.region)
}

// SetSubBatch inserts, replaces or, when set is empty, removes the
// contribution of the chunk at local index idx.
func (a *Aggregator) SetSubBatch(set *buffer.Set, idx int) {
	assert.IsTrue(!a.released, "SetSubBatch on released aggregator %v", a.Key())
	old := a.spans[idx]
	if set.IsEmpty() && old.vertices == 0 {
		return
	}

	next := span{start: old.start}
	for l := buffer.Layer(0); l < buffer.NumLayers; l++ {
		var data []float32
		if !set.IsEmpty() {
			data = set.Layer(l)
		}
		a.merged.SetLayer(l, splice(a.merged.Layer(l), old.start[l], old.length[l], data))
		next.length[l] = len(data)

		delta := len(data) - old.length[l]
		if delta != 0 {
			for i := idx + 1; i < len(a.spans); i++ {
				a.spans[i].start[l] += delta
				assert.IsTrue(a.spans[i].start[l] >= 0, "negative span start in %v", a.Key())
			}
		}
	}
	if !set.IsEmpty() {
		next.vertices = set.Vertices()
	}

	switch {
	case old.vertices == 0 && next.vertices > 0:
		a.chunks++
	case old.vertices > 0 && next.vertices == 0:
		a.chunks--
	}
	a.merged.SetVertices(a.merged.Vertices() - old.vertices + next.vertices)
	a.spans[idx] = next
	a.dirty = true
}

// splice replaces dst[start:start+n] with src, shifting the tail.
func splice(dst []float32, start, n int, src []float32) []float32 {
	delta := len(src) - n
	switch {
	case delta > 0:
		tail := len(dst)
		dst = append(dst, make([]float32, delta)...)
		copy(dst[start+len(src):], dst[start+n:tail])
	case delta < 0:
		copy(dst[start+len(src):], dst[start+n:])
		dst = dst[:len(dst)+delta]
	}
	copy(dst[start:], src)
	return dst
}

// Update commits pending splices to the draw resource. It reports whether
// an upload happened; unchanged content is not uploaded again.
func (a *Aggregator) Update() bool {
	if !a.dirty || a.released {
		return false
	}
	a.dirty = false
	h := a.merged.Hash()
	if a.committed && h == a.hash {
		return false
	}
	a.hash = h
	a.committed = true
	a.uploads++
	a.buf.Upload(&a.merged)
	return true
}

// IsEmpty reports whether no chunk contributes geometry.
func (a *Aggregator) IsEmpty() bool {
	return a.chunks == 0
}

func (a *Aggregator) Draw() {
	if a.merged.Vertices() > 0 && a.committed {
		a.buf.Draw()
	}
}

// Release frees the draw resource. It must be called exactly once, after
// the aggregator left the index.
func (a *Aggregator) Release() {
	assert.IsTrue(!a.released, "double release of aggregator %v", a.Key())
	if a.released {
		return
	}
	a.released = true
	a.buf.Release()
	a.buf = nil
}

func (a *Aggregator) Released() bool {
	return a.released
}

func (a *Aggregator) String() string {
	return fmt.Sprintf("aggregator{%s region=%v chunks=%d vertices=%d}", a.material.Name, a.region, a.chunks, a.merged.Vertices())
}
