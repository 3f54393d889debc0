package blockmodel

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"voxbatch/internal/world"
)

// CubeName selects the builtin unit cube in LoadMesh.
const CubeName = "cube"

// Vertex is one corner of a baked triangle in block-local space (0..1).
type Vertex struct {
	Position    mgl32.Vec3
	Normal      mgl32.Vec3
	TexCoord    mgl32.Vec2
	HasNormal   bool
	HasTexCoord bool
}

type Triangle [3]Vertex

// Translate returns the triangle moved by off.
func (t Triangle) Translate(off mgl32.Vec3) Triangle {
	for i := range t {
		t[i].Position = t[i].Position.Add(off)
	}
	return t
}

// OrientedFace is a triangle tagged with the block faces that gate it.
// A triangle with no faces is interior geometry and always renders.
type OrientedFace struct {
	Faces world.FaceMask
	Triangle
}

// CanRender reports whether the triangle survives the visible face set.
func (f OrientedFace) CanRender(visible world.FaceMask) bool {
	return f.Faces == 0 || f.Faces&visible != 0
}

// Mesh is the baked, immutable geometry of a block model.
type Mesh struct {
	Name  string
	Faces []OrientedFace
}

// Filter appends the triangles that survive visible to dst.
func (m *Mesh) Filter(visible world.FaceMask, dst []Triangle) []Triangle {
	for _, f := range m.Faces {
		if f.CanRender(visible) {
			dst = append(dst, f.Triangle)
		}
	}
	return dst
}

// Corners of each face on the unit cube, counter-clockwise seen from outside.
var faceCorners = [world.NumFaces][4][3]float32{
	world.FaceNorth:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	world.FaceSouth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	world.FaceEast:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	world.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	world.FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	world.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

var (
	cubeOnce sync.Once
	cube     *Mesh
)

// Cube returns the shared unit cube mesh: twelve triangles, each gated by
// the face it lies on.
func Cube() *Mesh {
	cubeOnce.Do(func() {
		faces := make(map[string]Face, world.NumFaces)
		for _, f := range world.Faces {
			faces[f.String()] = Face{UV: [4]float32{0, 0, 16, 16}, CullFace: f.String()}
		}
		m, err := Bake(CubeName, &Model{Elements: []Element{{To: [3]float32{16, 16, 16}, Faces: faces}}})
		if err != nil {
			panic(err)
		}
		cube = m
	})
	return cube
}

// Bake converts model elements into oriented triangles. Each element face
// becomes two triangles; a face with a cullface is gated by that block face,
// otherwise it always renders.
func Bake(name string, m *Model) (*Mesh, error) {
	if len(m.Elements) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoElements)
	}
	mesh := &Mesh{Name: name}
	for ei, e := range m.Elements {
		from := mgl32.Vec3{e.From[0], e.From[1], e.From[2]}.Mul(1.0 / 16)
		to := mgl32.Vec3{e.To[0], e.To[1], e.To[2]}.Mul(1.0 / 16)
		size := to.Sub(from)

		rot, origin, rotated := elementRotation(e.Rotation)

		var present [world.NumFaces]*Face
		for faceName, face := range e.Faces {
			dir, ok := world.ParseFace(faceName)
			if !ok {
				return nil, fmt.Errorf("%s: element %d: unknown face %q", name, ei, faceName)
			}
			present[dir] = &face
		}

		for _, dir := range world.Faces {
			face := present[dir]
			if face == nil {
				continue
			}
			var gate world.FaceMask
			if face.CullFace != "" {
				cull, ok := world.ParseFace(face.CullFace)
				if !ok {
					return nil, fmt.Errorf("%s: element %d: unknown cullface %q", name, ei, face.CullFace)
				}
				gate = world.MaskOf(cull)
			}

			uv := face.UV
			if uv == [4]float32{} {
				uv = [4]float32{0, 0, 16, 16}
			}
			uvs := [4]mgl32.Vec2{
				{uv[0] / 16, uv[3] / 16},
				{uv[2] / 16, uv[3] / 16},
				{uv[2] / 16, uv[1] / 16},
				{uv[0] / 16, uv[1] / 16},
			}

			normal := dir.Normal()
			if rotated {
				normal = rot.Mul4x1(normal.Vec4(0)).Vec3().Normalize()
			}

			var quad [4]Vertex
			for i, c := range faceCorners[dir] {
				p := mgl32.Vec3{
					from[0] + c[0]*size[0],
					from[1] + c[1]*size[1],
					from[2] + c[2]*size[2],
				}
				if rotated {
					p = rot.Mul4x1(p.Sub(origin).Vec4(1)).Vec3().Add(origin)
				}
				quad[i] = Vertex{Position: p, Normal: normal, HasNormal: true, TexCoord: uvs[i], HasTexCoord: true}
			}
			mesh.Faces = append(mesh.Faces,
				OrientedFace{Faces: gate, Triangle: Triangle{quad[0], quad[1], quad[2]}},
				OrientedFace{Faces: gate, Triangle: Triangle{quad[0], quad[2], quad[3]}},
			)
		}
	}
	return mesh, nil
}

func elementRotation(r *Rotation) (mgl32.Mat4, mgl32.Vec3, bool) {
	if r == nil || r.Angle == 0 {
		return mgl32.Ident4(), mgl32.Vec3{}, false
	}
	var axis mgl32.Vec3
	switch r.Axis {
	case "x":
		axis = mgl32.Vec3{1, 0, 0}
	case "y":
		axis = mgl32.Vec3{0, 1, 0}
	case "z":
		axis = mgl32.Vec3{0, 0, 1}
	default:
		return mgl32.Ident4(), mgl32.Vec3{}, false
	}
	origin := mgl32.Vec3{r.Origin[0], r.Origin[1], r.Origin[2]}.Mul(1.0 / 16)
	return mgl32.HomogRotate3D(mgl32.DegToRad(r.Angle), axis), origin, true
}
