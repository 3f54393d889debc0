package batch

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/buffer"
	"voxbatch/internal/material"
)

// Buffer is a draw resource owned by exactly one aggregator.
type Buffer interface {
	// Upload replaces the resource contents with set.
	Upload(set *buffer.Set)
	Draw()
	Release()
}

// Backend allocates draw resources and switches material state.
type Backend interface {
	NewBuffer() Buffer
	Bind(m *material.RenderMaterial, view, projection, model mgl32.Mat4)
	Unbind(m *material.RenderMaterial)
}
