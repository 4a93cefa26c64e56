package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaultCameraLooksDownNegativeZ(t *testing.T) {
	c := New(mgl32.Vec3{0, 0, 3}, 0)
	if !c.Front.ApproxEqualThreshold(mgl32.Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("front = %v", c.Front)
	}
	if !c.Right.ApproxEqualThreshold(mgl32.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("right = %v", c.Right)
	}
	if c.Zoom != DefaultZoom {
		t.Errorf("zoom = %v", c.Zoom)
	}
	// The origin sits 3 units in front of the camera.
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	if math32.Abs(p[2]+3) > 1e-5 {
		t.Errorf("origin in view space = %v", p)
	}
}

func TestKeyboardMovesAlongBasis(t *testing.T) {
	c := New(mgl32.Vec3{}, 45)
	c.ProcessKeyboard(Forward, 1)
	c.ProcessKeyboard(Right, 2)
	want := mgl32.Vec3{2 * DefaultSpeed, 0, -DefaultSpeed}
	if !c.Position.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("position = %v, want %v", c.Position, want)
	}
}

func TestPitchIsClamped(t *testing.T) {
	c := New(mgl32.Vec3{}, 45)
	c.ProcessMouseMovement(0, 5000)
	if c.Pitch != 89 {
		t.Errorf("pitch = %v", c.Pitch)
	}
	c.ProcessMouseScroll(100)
	if c.Zoom != 1 {
		t.Errorf("zoom = %v", c.Zoom)
	}
}
