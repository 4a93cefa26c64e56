package fbx

import "fbx-pbr-viewer/internal/mathutil"

// LocalMatrix returns the node's Lcl transform, T × R × S, with the Euler
// rotation applied in XYZ order. Pivots and pre/post rotations are ignored.
func (n *Node) LocalMatrix() mathutil.Mat4 {
	return mathutil.ComposeTRS(n.Translation, mathutil.EulerXYZ(n.Rotation), n.Scaling)
}

// WorldMatrix chains local transforms from the root down to this node.
func (n *Node) WorldMatrix() mathutil.Mat4 {
	world := mathutil.Mat4Identity()
	for p := n; p != nil && p.Parent != nil; p = p.Parent {
		world = mathutil.Mat4Mul(p.LocalMatrix(), world)
	}
	return world
}
