package viewmatrix

import (
	"math"
	"testing"

	"fbx-pbr-viewer/internal/mathutil"
)

func TestOrbitKeepsBoxInFrame(t *testing.T) {
	min, max := mathutil.Vec3{-2, -1, -3}, mathutil.Vec3{4, 5, 1}
	var corners []mathutil.Vec3
	for _, x := range []float64{min[0], max[0]} {
		for _, y := range []float64{min[1], max[1]} {
			for _, z := range []float64{min[2], max[2]} {
				corners = append(corners, mathutil.Vec3{x, y, z})
			}
		}
	}

	for _, yaw := range []float64{0, 45, 90, 180, 270} {
		v := Orbit(min, max, yaw, 20, 45, 1)
		mvp := mathutil.Mat4Mul(v.Projection, v.View)
		px, py, pz, pw := ProjectVertices(corners, mvp, 100, 100)
		for i := range corners {
			if pw[i] <= 0 {
				t.Fatalf("yaw %v: corner %d behind camera", yaw, i)
			}
			if px[i] < 0 || px[i] > 100 || py[i] < 0 || py[i] > 100 {
				t.Errorf("yaw %v: corner %d at (%.1f, %.1f) outside frame", yaw, i, px[i], py[i])
			}
			if pz[i] < -1 || pz[i] > 1 {
				t.Errorf("yaw %v: corner %d depth %v outside clip range", yaw, i, pz[i])
			}
		}
	}
}

func TestOrbitYawZeroLooksDownNegativeZ(t *testing.T) {
	v := Orbit(mathutil.Vec3{-1, -1, -1}, mathutil.Vec3{1, 1, 1}, 0, 0, 45, 1)
	if math.Abs(v.Eye[0]) > 1e-9 || v.Eye[2] <= 0 {
		t.Errorf("eye = %v, want on +Z axis", v.Eye)
	}
}

func TestBoundsAppliesModel(t *testing.T) {
	model := mathutil.Mat4Mul(mathutil.Translate(mathutil.Vec3{0, -15.75, -6}), mathutil.Scale(mathutil.Vec3{0.02, 0.02, 0.02}))
	min, max := Bounds([]mathutil.Vec3{{-100, 0, 0}, {100, 50, 200}}, model)
	wantMin, wantMax := mathutil.Vec3{-2, -15.75, -6}, mathutil.Vec3{2, -14.75, -2}
	for k := 0; k < 3; k++ {
		if math.Abs(min[k]-wantMin[k]) > 1e-9 || math.Abs(max[k]-wantMax[k]) > 1e-9 {
			t.Fatalf("bounds = %v %v, want %v %v", min, max, wantMin, wantMax)
		}
	}
}
