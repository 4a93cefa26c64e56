// Package viewmatrix frames a mesh for the headless renderer and projects
// its vertices to screen space.
package viewmatrix

import (
	"math"

	"fbx-pbr-viewer/internal/mathutil"
)

// View is a camera placement with its matrices.
type View struct {
	Eye        mathutil.Vec3
	Target     mathutil.Vec3
	View       mathutil.Mat4
	Projection mathutil.Mat4
}

// Bounds returns the world-space bounding box of positions under model.
func Bounds(positions []mathutil.Vec3, model mathutil.Mat4) (min, max mathutil.Vec3) {
	min = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range positions {
		t := model.MulPoint(p)
		for k := 0; k < 3; k++ {
			if t[k] < min[k] {
				min[k] = t[k]
			}
			if t[k] > max[k] {
				max[k] = t[k]
			}
		}
	}
	return min, max
}

// Orbit places the camera on a sphere around the bounding box so the whole
// box fits the vertical field of view. yaw and pitch are in degrees; yaw 0
// looks down -Z, like the interactive camera's starting pose.
func Orbit(min, max mathutil.Vec3, yaw, pitch, fovy, aspect float64) View {
	center := min.Add(max).Scale(0.5)
	radius := max.Sub(min).Len() / 2
	if radius < 1e-6 {
		radius = 1e-6
	}

	halfFOV := mathutil.Deg2Rad(fovy) / 2
	if aspect < 1 {
		// Narrow images are limited by the horizontal field of view.
		halfFOV = math.Atan(math.Tan(halfFOV) * aspect)
	}
	dist := radius / math.Sin(halfFOV) * 1.05

	eye := center.Add(mathutil.OrbitDirection(yaw, pitch).Scale(dist))

	near := math.Max(dist-radius*1.5, dist*0.01)
	far := dist + radius*1.5
	return View{
		Eye:        eye,
		Target:     center,
		View:       mathutil.LookAt(eye, center, mathutil.Vec3{0, 1, 0}),
		Projection: mathutil.Perspective(mathutil.Deg2Rad(fovy), aspect, near, far),
	}
}

// ProjectVertices transforms positions by mvp and maps them to pixel
// coordinates. pw holds 1/w for perspective-correct interpolation; it is
// zero for vertices at or behind the eye.
func ProjectVertices(positions []mathutil.Vec3, mvp mathutil.Mat4, width, height int) (px, py, pz, pw []float64) {
	n := len(positions)
	px = make([]float64, n)
	py = make([]float64, n)
	pz = make([]float64, n)
	pw = make([]float64, n)

	hw, hh := float64(width)/2, float64(height)/2
	for i, p := range positions {
		c := mvp.MulVec4(p, 1)
		if c[3] <= 1e-9 {
			continue
		}
		inv := 1 / c[3]
		px[i] = (c[0]*inv + 1) * hw
		py[i] = (1 - c[1]*inv) * hh
		pz[i] = c[2] * inv
		pw[i] = inv
	}
	return px, py, pz, pw
}
