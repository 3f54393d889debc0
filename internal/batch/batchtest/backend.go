// Package batchtest provides an in-memory batch.Backend for tests.
package batchtest

import (
	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/batch"
	"voxbatch/internal/buffer"
	"voxbatch/internal/material"
)

// Backend records every call made by aggregators and the render pass.
type Backend struct {
	Buffers  []*Buffer
	Binds    []string
	Unbinds  []string
	Draws    int
	Released int
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) NewBuffer() batch.Buffer {
	buf := &Buffer{owner: b}
	b.Buffers = append(b.Buffers, buf)
	return buf
}

func (b *Backend) Bind(m *material.RenderMaterial, view, projection, model mgl32.Mat4) {
	b.Binds = append(b.Binds, m.Name)
}

func (b *Backend) Unbind(m *material.RenderMaterial) {
	b.Unbinds = append(b.Unbinds, m.Name)
}

// Live counts buffers that have not been released.
func (b *Backend) Live() int {
	return len(b.Buffers) - b.Released
}

// Buffer keeps a copy of the last upload.
type Buffer struct {
	owner    *Backend
	Uploads  int
	Vertices int
	Data     [buffer.NumLayers][]float32
	Draws    int
	Released bool
}

func (b *Buffer) Upload(set *buffer.Set) {
	b.Uploads++
	b.Vertices = set.Vertices()
	for l := buffer.Layer(0); l < buffer.NumLayers; l++ {
		b.Data[l] = append(b.Data[l][:0], set.Layer(l)...)
	}
}

func (b *Buffer) Draw() {
	b.Draws++
	b.owner.Draws++
}

func (b *Buffer) Release() {
	if b.Released {
		panic("buffer released twice")
	}
	b.Released = true
	b.owner.Released++
}
