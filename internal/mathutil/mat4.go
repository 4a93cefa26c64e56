package mathutil

import "math"

// Mat4 is a 4×4 matrix stored row-major. Used for node world transforms and
// the software renderer's model/view/projection chain.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// MulPoint transforms a 3D point (w=1) by the 4×4 matrix.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3],
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7],
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11],
	}
}

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	id := Mat4Identity()
	for i := 0; i < 16; i++ {
		d := m[i] - id[i]
		if d > 1e-8 || d < -1e-8 {
			return false
		}
	}
	return true
}

// Translate returns a translation matrix.
func Translate(t Vec3) Mat4 {
	m := Mat4Identity()
	m[3], m[7], m[11] = t[0], t[1], t[2]
	return m
}

// Scale returns a non-uniform scale matrix.
func Scale(s Vec3) Mat4 {
	return Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	}
}

// Perspective returns an OpenGL-style projection matrix mapping view space
// (camera looking down -Z) to clip space. fovy is in radians.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovy/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, 2 * far * near * nf,
		0, 0, -1, 0,
	}
}

// LookAt returns a right-handed view matrix.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s[0], s[1], s[2], -s.Dot(eye),
		u[0], u[1], u[2], -u.Dot(eye),
		-f[0], -f[1], -f[2], f.Dot(eye),
		0, 0, 0, 1,
	}
}

// MulVec4 returns M × (v, w).
func (m Mat4) MulVec4(v Vec3, w float64) [4]float64 {
	return [4]float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2] + m[3]*w,
		m[4]*v[0] + m[5]*v[1] + m[6]*v[2] + m[7]*w,
		m[8]*v[0] + m[9]*v[1] + m[10]*v[2] + m[11]*w,
		m[12]*v[0] + m[13]*v[1] + m[14]*v[2] + m[15]*w,
	}
}

// Mat3 returns the upper-left 3×3 block.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// NormalMatrix returns the inverse-transpose of the upper-left 3×3 block,
// used to carry normals through non-uniform scale.
func (m Mat4) NormalMatrix() Mat3 {
	return m.Mat3().Inverse().Transpose()
}

// ComposeTRS builds T × R × S.
func ComposeTRS(t Vec3, r Mat3, s Vec3) Mat4 {
	return FromMat3Translation(r.ScaleColumns(s), t)
}

// Float32 returns the matrix as column-major float32, the layout OpenGL and
// mgl32 expect.
func (m Mat4) Float32() [16]float32 {
	var out [16]float32
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = float32(m[r*4+c])
		}
	}
	return out
}
