package material

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/buffer"
	"voxbatch/internal/world"
	"voxbatch/pkg/blockmodel"
)

// Material describes how a block type meshes.
type Material interface {
	ID() world.BlockID
	Name() string
	// Data is the variant value passed to neighbors' Occlusion.
	Data() uint16
	IsInvisible() bool
	// IsFaceRendered reports whether face is a render candidate against
	// neighbor. neighbor is nil when the position has no material.
	IsFaceRendered(face world.BlockFace, neighbor Material) bool
	// Occlusion returns the faces of this material that hide an adjacent
	// face of a block with the given variant data.
	Occlusion(data uint16) world.FaceMask
	// Model returns nil for materials that never produce geometry.
	Model() *Model
}

// Model binds a render material to the geometry drawn with it.
type Model struct {
	Render *RenderMaterial
	Mesh   *blockmodel.Mesh
}

// MeshRequest carries one block through the mesh hook protocol. PreMesh may
// rewrite Mesh, Visible or Position before geometry is produced; PostMesh may
// rewrite Result.
type MeshRequest struct {
	Material Material
	Snapshot *world.SnapshotModel
	X, Y, Z  int
	Position mgl32.Vec3
	Visible  world.FaceMask
	Mesh     *blockmodel.Mesh
	Result   []blockmodel.Triangle
}

// MeshHooks customizes the geometry of every block drawn with a render material.
type MeshHooks interface {
	PreMesh(req *MeshRequest)
	PostMesh(req *MeshRequest)
}

// NopHooks leaves requests untouched.
type NopHooks struct{}

func (NopHooks) PreMesh(*MeshRequest)  {}
func (NopHooks) PostMesh(*MeshRequest) {}

// BufferEffect post-processes a render material's buffers once a chunk mesh
// has been built.
type BufferEffect interface {
	Post(model *world.SnapshotModel, set *buffer.Set)
}

// BufferEffectFunc adapts a function to BufferEffect.
type BufferEffectFunc func(model *world.SnapshotModel, set *buffer.Set)

func (f BufferEffectFunc) Post(model *world.SnapshotModel, set *buffer.Set) {
	f(model, set)
}

// RenderMaterial groups geometry that shares draw state.
type RenderMaterial struct {
	Name    string
	SortKey int
	Shader  string
	Hooks   MeshHooks
	Effects []BufferEffect
}

func NewRenderMaterial(name string, sortKey int) *RenderMaterial {
	return &RenderMaterial{Name: name, SortKey: sortKey, Shader: "default", Hooks: NopHooks{}}
}

func (r *RenderMaterial) PreMesh(req *MeshRequest) {
	if r.Hooks != nil {
		r.Hooks.PreMesh(req)
	}
}

func (r *RenderMaterial) PostMesh(req *MeshRequest) {
	if r.Hooks != nil {
		r.Hooks.PostMesh(req)
	}
}

// Less orders render materials by sort key, then name.
func (r *RenderMaterial) Less(o *RenderMaterial) bool {
	if r.SortKey != o.SortKey {
		return r.SortKey < o.SortKey
	}
	return r.Name < o.Name
}

// Compare is Less as a three-way comparison for slices.SortFunc.
func Compare(a, b *RenderMaterial) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

func (r *RenderMaterial) String() string {
	return r.Name
}
