package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"voxbatch/internal/buffer"
)

// glBuffer keeps one VBO per buffer layer behind a single VAO.
type glBuffer struct {
	owner    *Backend
	vao      uint32
	vbos     [buffer.NumLayers]uint32
	count    int32
	released bool
}

func newBuffer(owner *Backend) *glBuffer {
	b := &glBuffer{owner: owner}
	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(int32(len(b.vbos)), &b.vbos[0])
	return b
}

// Upload replaces all layers. Layers shorter than the position layer are
// disabled and read as a constant attribute instead.
func (b *glBuffer) Upload(set *buffer.Set) {
	n := set.Vertices()
	b.count = int32(n)

	gl.BindVertexArray(b.vao)
	for l := buffer.Layer(0); l < buffer.NumLayers; l++ {
		comp := buffer.Components[l]
		data := set.Layer(l)
		attr := uint32(l)

		gl.BindBuffer(gl.ARRAY_BUFFER, b.vbos[l])
		if n == 0 || len(data) != n*comp {
			gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
			gl.DisableVertexAttribArray(attr)
			gl.VertexAttrib4f(attr, 0, 1, 0, 0)
			continue
		}
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
		gl.VertexAttribPointer(attr, int32(comp), gl.FLOAT, false, int32(comp*4), gl.PtrOffset(0))
		gl.EnableVertexAttribArray(attr)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

func (b *glBuffer) Draw() {
	if b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, b.count)
	gl.BindVertexArray(0)
}

func (b *glBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	gl.DeleteBuffers(int32(len(b.vbos)), &b.vbos[0])
	gl.DeleteVertexArrays(1, &b.vao)
	b.owner.live--
}
