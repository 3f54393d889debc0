package renderer

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/graphics"
	"voxbatch/internal/world"
)

// RenderContext provides shared context for all renderables. A zero
// Frustum accepts every box; a zero Deadline lets updates drain fully.
type RenderContext struct {
	Camera   *graphics.Camera
	World    *world.World
	DT       float64
	View     mgl32.Mat4
	Proj     mgl32.Mat4
	Model    mgl32.Mat4
	Frustum  graphics.Frustum
	Deadline time.Time
}

// NewRenderContext derives matrices and the frustum from cam.
func NewRenderContext(w *world.World, cam *graphics.Camera, dt float64, deadline time.Time) RenderContext {
	view := cam.ViewMatrix()
	proj := cam.ProjectionMatrix()
	return RenderContext{
		Camera:   cam,
		World:    w,
		DT:       dt,
		View:     view,
		Proj:     proj,
		Model:    mgl32.Ident4(),
		Frustum:  graphics.NewFrustum(proj, view),
		Deadline: deadline,
	}
}

// Renderable interface defines the lifecycle for renderable features
type Renderable interface {
	Render(ctx RenderContext)
	Dispose()
}
