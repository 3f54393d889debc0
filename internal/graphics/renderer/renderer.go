package renderer

import (
	"time"

	"voxbatch/internal/config"
	"voxbatch/internal/graphics"
	"voxbatch/internal/world"
)

// Renderer orchestrates rendering via renderable features
type Renderer struct {
	renderables []Renderable
	camera      *graphics.Camera
	now         func() time.Time
}

// NewRenderer creates a new renderer with the given renderables
func NewRenderer(camera *graphics.Camera, rs ...Renderable) *Renderer {
	return &Renderer{
		renderables: rs,
		camera:      camera,
		now:         time.Now,
	}
}

// Frame renders every feature once. The time slice for incremental work
// ends one frame budget after the frame starts.
func (r *Renderer) Frame(w *world.World, dt float64) RenderContext {
	deadline := r.now().Add(config.GetFrameBudget())
	ctx := NewRenderContext(w, r.camera, dt, deadline)
	for _, renderable := range r.renderables {
		renderable.Render(ctx)
	}
	return ctx
}

// Dispose cleans up all renderables in reverse order
func (r *Renderer) Dispose() {
	for i := len(r.renderables) - 1; i >= 0; i-- {
		r.renderables[i].Dispose()
	}
}

// Camera returns the camera instance
func (r *Renderer) Camera() *graphics.Camera {
	return r.camera
}

// UpdateViewport updates the camera's viewport dimensions
func (r *Renderer) UpdateViewport(width, height int) {
	r.camera.Resize(width, height)
}
