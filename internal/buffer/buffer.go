// Package buffer holds the per-material float arrays produced by meshing and
// merged by batching.
package buffer

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"

	"voxbatch/pkg/blockmodel"
)

// Layer identifies one attribute array of a Set.
type Layer int

const (
	Positions Layer = iota
	Normals
	TexCoords
	NumLayers
)

// Components is the number of floats each vertex contributes per layer.
var Components = [NumLayers]int{Positions: 4, Normals: 4, TexCoords: 2}

func (l Layer) String() string {
	switch l {
	case Positions:
		return "positions"
	case Normals:
		return "normals"
	case TexCoords:
		return "texcoords"
	}
	return "invalid"
}

// Set is the vertex data of one material. Positions carry w=1 and normals
// w=0. Normals and texture coordinates are only present for vertices that
// declare them, so those layers may be shorter than Positions.
type Set struct {
	layers   [NumLayers][]float32
	vertices int
}

// Append adds a vertex.
func (s *Set) Append(v blockmodel.Vertex) {
	p := v.Position
	s.layers[Positions] = append(s.layers[Positions], p[0], p[1], p[2], 1)
	if v.HasNormal {
		n := v.Normal
		s.layers[Normals] = append(s.layers[Normals], n[0], n[1], n[2], 0)
	}
	if v.HasTexCoord {
		s.layers[TexCoords] = append(s.layers[TexCoords], v.TexCoord[0], v.TexCoord[1])
	}
	s.vertices++
}

func (s *Set) AppendTriangles(tris []blockmodel.Triangle) {
	for i := range tris {
		for _, v := range tris[i] {
			s.Append(v)
		}
	}
}

func (s *Set) Layer(l Layer) []float32 {
	return s.layers[l]
}

// SetLayer replaces a layer's backing slice.
func (s *Set) SetLayer(l Layer, data []float32) {
	s.layers[l] = data
}

// Vertices is the number of vertices appended.
func (s *Set) Vertices() int {
	return s.vertices
}

// SetVertices overrides the vertex count after layers were edited directly.
func (s *Set) SetVertices(n int) {
	s.vertices = n
}

func (s *Set) IsEmpty() bool {
	return s == nil || s.vertices == 0
}

func (s *Set) Reset() {
	for l := range s.layers {
		s.layers[l] = s.layers[l][:0]
	}
	s.vertices = 0
}

// Hash digests every layer so identical contents hash identically.
func (s *Set) Hash() uint64 {
	h := xxh3.New()
	buf := make([]byte, 0, 4096)
	for _, layer := range s.layers {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(layer)))
		for _, f := range layer {
			if len(buf)+4 > cap(buf) {
				h.Write(buf)
				buf = buf[:0]
			}
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
		}
	}
	h.Write(buf)
	return h.Sum64()
}
