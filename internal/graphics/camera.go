package graphics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Camera handles the view and projection matrices. Yaw and pitch are in
// degrees; yaw 0 looks down -Z.
type Camera struct {
	Position    mgl32.Vec3
	Yaw         float32
	Pitch       float32
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    1000.0,
	}
}

// Front is the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	return mgl32.Vec3{
		math32.Sin(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		-math32.Cos(yaw) * math32.Cos(pitch),
	}.Normalize()
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.ProjectionMatrix(), c.ViewMatrix())
}

// Rotate turns the camera, clamping pitch short of straight up or down.
func (c *Camera) Rotate(dYaw, dPitch float32) {
	c.Yaw = math32.Mod(c.Yaw+dYaw, 360)
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -89, 89)
}

// Resize updates the aspect ratio for a new framebuffer size.
func (c *Camera) Resize(width, height int) {
	if height > 0 {
		c.AspectRatio = float32(width) / float32(height)
	}
}
