// Package glbackend draws batch aggregators with OpenGL 4.1 core.
package glbackend

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/zeebo/xxh3"

	"voxbatch/internal/batch"
	"voxbatch/internal/graphics"
	"voxbatch/internal/logging"
	"voxbatch/internal/material"
)

var (
	//go:embed shaders/default.vert
	defaultVert string
	//go:embed shaders/default.frag
	defaultFrag string
)

// ShaderTranslucent names the program used with blending enabled.
const ShaderTranslucent = "translucent"

// Backend implements batch.Backend. All methods must run on the thread that
// owns the GL context.
type Backend struct {
	programs map[string]*graphics.Shader
	fallback *graphics.Shader
	light    mgl32.Vec3
	live     int
}

var _ batch.Backend = (*Backend)(nil)

// New compiles the builtin programs and sets the fixed pipeline state. gl.Init
// must have been called.
func New() (*Backend, error) {
	def, err := graphics.NewShader(defaultVert, defaultFrag)
	if err != nil {
		return nil, fmt.Errorf("default program: %w", err)
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	b := &Backend{
		programs: map[string]*graphics.Shader{"default": def, ShaderTranslucent: def},
		fallback: def,
		light:    mgl32.Vec3{0.3, 1.0, 0.3}.Normalize(),
	}
	return b, nil
}

// Register makes an additional program available to render materials by name.
func (b *Backend) Register(name string, s *graphics.Shader) {
	b.programs[name] = s
}

func (b *Backend) program(name string) *graphics.Shader {
	if s, ok := b.programs[name]; ok {
		return s
	}
	logging.Warnf("glbackend: unknown shader %q, using default", name)
	b.programs[name] = b.fallback
	return b.fallback
}

func (b *Backend) NewBuffer() batch.Buffer {
	b.live++
	return newBuffer(b)
}

// Live reports buffers allocated and not yet released.
func (b *Backend) Live() int {
	return b.live
}

func (b *Backend) Bind(m *material.RenderMaterial, view, projection, model mgl32.Mat4) {
	s := b.program(m.Shader)
	s.Use()
	s.SetMatrix4("proj", projection)
	s.SetMatrix4("view", view)
	s.SetMatrix4("model", model)
	s.SetVector3("lightDir", b.light)
	s.SetVector3("baseColor", materialColor(m.Name))

	if m.Shader == ShaderTranslucent {
		s.SetFloat("alpha", 0.6)
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		gl.Disable(gl.CULL_FACE)
	} else {
		s.SetFloat("alpha", 1)
	}
}

func (b *Backend) Unbind(m *material.RenderMaterial) {
	if m.Shader == ShaderTranslucent {
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
		gl.Enable(gl.CULL_FACE)
	}
}

// Clear resets the framebuffer for a new frame.
func (b *Backend) Clear() {
	gl.ClearColor(0.53, 0.81, 0.92, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Viewport resizes the GL viewport.
func (b *Backend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Dispose deletes the programs. Buffers are released by their aggregators.
func (b *Backend) Dispose() {
	seen := make(map[*graphics.Shader]bool)
	for _, s := range b.programs {
		if !seen[s] {
			seen[s] = true
			s.Delete()
		}
	}
	if b.live != 0 {
		logging.Warnf("glbackend: disposed with %d live buffers", b.live)
	}
}

// materialColor gives each render material a stable flat color since the
// demo draws without textures.
func materialColor(name string) mgl32.Vec3 {
	v := xxh3.HashString(name)
	return mgl32.Vec3{
		0.35 + float32(v&0xff)/255*0.5,
		0.35 + float32(v>>8&0xff)/255*0.5,
		0.35 + float32(v>>16&0xff)/255*0.5,
	}
}
