package mathutil

import "math"

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// RotX, RotY and RotZ rotate by a radians about one axis, counter-clockwise
// when looking down the axis toward the origin.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{1, 0, 0, 0, c, -s, 0, s, c}
}

func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, 0, s, 0, 1, 0, -s, 0, c}
}

func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{c, -s, 0, s, c, 0, 0, 0, 1}
}

// EulerXYZ returns the rotation for Euler angles in degrees applied X first,
// then Y, then Z, the default FBX rotation order.
func EulerXYZ(deg Vec3) Mat3 {
	return RotZ(Deg2Rad(deg[2])).Mul(RotY(Deg2Rad(deg[1]))).Mul(RotX(Deg2Rad(deg[0])))
}

// OrbitDirection is the unit vector from an orbit target toward the eye.
// Yaw 0 puts the eye on +Z and turns about +Y; positive pitch raises it.
// Both are in degrees.
func OrbitDirection(yaw, pitch float64) Vec3 {
	return RotY(Deg2Rad(yaw)).Mul(RotX(-Deg2Rad(pitch))).MulVec3(Vec3{0, 0, 1})
}
