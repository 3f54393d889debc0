package meshing

import (
	"github.com/go-gl/mathgl/mgl32"
	lru "github.com/hashicorp/golang-lru"

	"voxbatch/internal/material"
	"voxbatch/internal/profiling"
	"voxbatch/internal/world"
	"voxbatch/pkg/blockmodel"
)

const defaultFaceCacheSize = 4096

type faceKey struct {
	mesh    *blockmodel.Mesh
	visible world.FaceMask
}

// Builder turns snapshot models into chunk meshes. It is safe for concurrent
// use by several workers.
type Builder struct {
	registry *material.Registry
	faces    *lru.Cache
}

func NewBuilder(registry *material.Registry) *Builder {
	faces, err := lru.New(defaultFaceCacheSize)
	if err != nil {
		panic(err)
	}
	return &Builder{registry: registry, faces: faces}
}

// Build meshes every block of the model's center chunk. Unload models
// short-circuit to an unload mesh.
func (b *Builder) Build(m *world.SnapshotModel) *ChunkMesh {
	mesh := newChunkMesh(m)
	if m.Unload {
		return mesh
	}
	defer profiling.Track("meshing.Build")()

	center := m.Center()
	if center.IsEmpty() {
		return mesh
	}
	lookup := func(x, y, z int) material.Material {
		return b.registry.Get(m.BlockAt(x, y, z))
	}

	ox, oy, oz := m.Origin()
	for lx := 0; lx < world.ChunkSize; lx++ {
		for ly := 0; ly < world.ChunkSize; ly++ {
			for lz := 0; lz < world.ChunkSize; lz++ {
				mat := b.registry.Get(center.Local(lx, ly, lz))
				if mat.IsInvisible() {
					continue
				}
				b.buildBlock(mesh, m, mat, ox+lx, oy+ly, oz+lz, lookup)
			}
		}
	}

	for el := mesh.Buffers.Front(); el != nil; el = el.Next() {
		for _, effect := range el.Key.Effects {
			effect.Post(m, el.Value)
		}
	}
	return mesh
}

func (b *Builder) buildBlock(mesh *ChunkMesh, m *world.SnapshotModel, mat material.Material, x, y, z int, lookup NeighborLookup) {
	model := mat.Model()
	if model == nil || !m.HasRenderMaterial(model.Render.Name) {
		return
	}
	visible, occluded := ResolveFaces(mat, x, y, z, lookup)
	if occluded {
		return
	}

	req := &material.MeshRequest{
		Material: mat,
		Snapshot: m,
		X:        x,
		Y:        y,
		Z:        z,
		Position: mgl32.Vec3{float32(x), float32(y), float32(z)},
		Visible:  visible,
		Mesh:     model.Mesh,
	}
	rm := model.Render
	rm.PreMesh(req)
	if req.Mesh != nil {
		req.Result = b.geometry(req.Mesh, req.Visible, req.Position)
	}
	rm.PostMesh(req)

	if len(req.Result) == 0 {
		return
	}
	mesh.bufferFor(rm).AppendTriangles(req.Result)
}

// geometry returns the triangles of mesh gated by visible, translated to pos.
func (b *Builder) geometry(mesh *blockmodel.Mesh, visible world.FaceMask, pos mgl32.Vec3) []blockmodel.Triangle {
	key := faceKey{mesh: mesh, visible: visible}
	var filtered []blockmodel.Triangle
	if v, ok := b.faces.Get(key); ok {
		filtered = v.([]blockmodel.Triangle)
	} else {
		filtered = mesh.Filter(visible, nil)
		b.faces.Add(key, filtered)
	}
	out := make([]blockmodel.Triangle, len(filtered))
	for i, tri := range filtered {
		out[i] = tri.Translate(pos)
	}
	return out
}
