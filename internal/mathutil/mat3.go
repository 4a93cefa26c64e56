package mathutil

// Mat3 is a row-major 3×3 matrix: the rotation/scale block of node
// transforms and the renderer's normal matrix.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (m Mat3) row(r int) Vec3 { return Vec3{m[r*3], m[r*3+1], m[r*3+2]} }
func (m Mat3) col(c int) Vec3 { return Vec3{m[c], m[3+c], m[6+c]} }

// Mul returns m × b.
func (m Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for i := range out {
		out[i] = m.row(i / 3).Dot(b.col(i % 3))
	}
	return out
}

// MulVec3 returns m × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{m.row(0).Dot(v), m.row(1).Dot(v), m.row(2).Dot(v)}
}

// ScaleColumns returns m × diag(s), scaling column k by s[k].
func (m Mat3) ScaleColumns(s Vec3) Mat3 {
	for i := range m {
		m[i] *= s[i%3]
	}
	return m
}

// Inverse returns m⁻¹, whose rows are the pairwise cross products of m's
// columns over the determinant. A singular m yields the identity.
func (m Mat3) Inverse() Mat3 {
	c0, c1, c2 := m.col(0), m.col(1), m.col(2)
	r0, r1, r2 := c1.Cross(c2), c2.Cross(c0), c0.Cross(c1)
	det := c0.Dot(r0)
	if det == 0 {
		return Mat3Identity()
	}
	r0, r1, r2 = r0.Scale(1/det), r1.Scale(1/det), r2.Scale(1/det)
	return Mat3{
		r0[0], r0[1], r0[2],
		r1[0], r1[1], r1[2],
		r2[0], r2[1], r2[2],
	}
}

func (m Mat3) Transpose() Mat3 {
	c0, c1, c2 := m.col(0), m.col(1), m.col(2)
	return Mat3{
		c0[0], c0[1], c0[2],
		c1[0], c1[1], c1[2],
		c2[0], c2[1], c2[2],
	}
}
