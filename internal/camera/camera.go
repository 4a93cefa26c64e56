// Package camera is a first-person fly camera driven by keyboard and mouse.
package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Movement is a keyboard move direction.
type Movement int

const (
	Forward Movement = iota
	Backward
	Left
	Right
)

// Defaults match the classic fly camera: looking down -Z.
const (
	DefaultYaw         = -90
	DefaultPitch       = 0
	DefaultSpeed       = 2.5
	DefaultSensitivity = 0.1
	DefaultZoom        = 45
)

// Camera keeps Euler angles in degrees and derives its basis from them.
type Camera struct {
	Position mgl32.Vec3
	Front    mgl32.Vec3
	Up       mgl32.Vec3
	Right    mgl32.Vec3
	WorldUp  mgl32.Vec3

	Yaw   float32
	Pitch float32

	Speed       float32
	Sensitivity float32
	Zoom        float32 // vertical field of view, degrees

	Near, Far float32
}

// New returns a camera at position with default angles and speeds.
func New(position mgl32.Vec3, fov float32) *Camera {
	c := &Camera{
		Position:    position,
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Yaw:         DefaultYaw,
		Pitch:       DefaultPitch,
		Speed:       DefaultSpeed,
		Sensitivity: DefaultSensitivity,
		Zoom:        fov,
		Near:        0.1,
		Far:         100,
	}
	if c.Zoom <= 0 {
		c.Zoom = DefaultZoom
	}
	c.update()
	return c
}

// ViewMatrix returns the world→view transform.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

// Projection returns the perspective projection for the given aspect ratio.
func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.Zoom), aspect, c.Near, c.Far)
}

// ProcessKeyboard moves the camera along its basis for dt seconds.
func (c *Camera) ProcessKeyboard(dir Movement, dt float32) {
	v := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front.Mul(v))
	case Backward:
		c.Position = c.Position.Sub(c.Front.Mul(v))
	case Left:
		c.Position = c.Position.Sub(c.Right.Mul(v))
	case Right:
		c.Position = c.Position.Add(c.Right.Mul(v))
	}
}

// ProcessMouseMovement turns the camera by a mouse offset in pixels. Pitch
// is clamped short of straight up/down so the basis stays defined.
func (c *Camera) ProcessMouseMovement(dx, dy float32) {
	c.Yaw += dx * c.Sensitivity
	c.Pitch += dy * c.Sensitivity
	c.Pitch = math32.Max(-89, math32.Min(89, c.Pitch))
	c.update()
}

// ProcessMouseScroll zooms between 1 and 45 degrees.
func (c *Camera) ProcessMouseScroll(dy float32) {
	c.Zoom = math32.Max(1, math32.Min(45, c.Zoom-dy))
}

func (c *Camera) update() {
	yaw, pitch := mgl32.DegToRad(c.Yaw), mgl32.DegToRad(c.Pitch)
	c.Front = mgl32.Vec3{
		math32.Cos(yaw) * math32.Cos(pitch),
		math32.Sin(pitch),
		math32.Sin(yaw) * math32.Cos(pitch),
	}.Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}
