package fbx

import "fbx-pbr-viewer/internal/mathutil"

// AttributeType classifies what a node carries, mirroring the FBX SDK's
// node attribute enumeration.
type AttributeType int

const (
	AttrUnknown AttributeType = iota
	AttrNull
	AttrMarker
	AttrSkeleton
	AttrMesh
	AttrNurbs
	AttrPatch
	AttrCamera
	AttrCameraStereo
	AttrCameraSwitcher
	AttrLight
	AttrOpticalReference
	AttrOpticalMarker
	AttrNurbsCurve
	AttrTrimNurbsSurface
	AttrBoundary
	AttrNurbsSurface
	AttrShape
	AttrLODGroup
	AttrSubDiv
)

// String returns the lower-case display name used by scene dumps.
func (t AttributeType) String() string {
	switch t {
	case AttrUnknown:
		return "unidentified"
	case AttrNull:
		return "null"
	case AttrMarker, AttrOpticalMarker:
		return "marker"
	case AttrSkeleton:
		return "skeleton"
	case AttrMesh:
		return "mesh"
	case AttrNurbs:
		return "nurbs"
	case AttrPatch:
		return "patch"
	case AttrCamera:
		return "camera"
	case AttrCameraStereo:
		return "stereo"
	case AttrCameraSwitcher:
		return "camera switcher"
	case AttrLight:
		return "light"
	case AttrOpticalReference:
		return "optical reference"
	case AttrNurbsCurve:
		return "nurbs curve"
	case AttrTrimNurbsSurface:
		return "trim nurbs surface"
	case AttrBoundary:
		return "boundary"
	case AttrNurbsSurface:
		return "nurbs surface"
	case AttrShape:
		return "shape"
	case AttrLODGroup:
		return "lodgroup"
	case AttrSubDiv:
		return "subdiv"
	default:
		return "unknown"
	}
}

var geometryTypes = map[string]AttributeType{
	"Mesh":             AttrMesh,
	"Shape":            AttrShape,
	"NurbsCurve":       AttrNurbsCurve,
	"Nurbs":            AttrNurbs,
	"NurbsSurface":     AttrNurbsSurface,
	"TrimNurbsSurface": AttrTrimNurbsSurface,
	"Boundary":         AttrBoundary,
	"Patch":            AttrPatch,
}

var nodeAttributeTypes = map[string]AttributeType{
	"Null":             AttrNull,
	"Root":             AttrSkeleton,
	"Limb":             AttrSkeleton,
	"LimbNode":         AttrSkeleton,
	"Effector":         AttrSkeleton,
	"Light":            AttrLight,
	"Camera":           AttrCamera,
	"CameraStereo":     AttrCameraStereo,
	"CameraSwitcher":   AttrCameraSwitcher,
	"Marker":           AttrMarker,
	"OpticalReference": AttrOpticalReference,
	"OpticalMarker":    AttrOpticalMarker,
	"LodGroup":         AttrLODGroup,
	"SubDiv":           AttrSubDiv,
}

// Attribute is one typed payload attached to a node. Mesh is set only for
// AttrMesh attributes.
type Attribute struct {
	Type AttributeType
	Name string
	Mesh *Mesh
}

// Material is a surface material with the texture files bound to its
// properties ("DiffuseColor", "EmissiveColor", "NormalMap", ...).
type Material struct {
	Name     string
	Textures []TextureBinding
}

// TextureBinding ties a material property to an image file as recorded in
// the FBX file. The path is whatever the authoring tool wrote, often an
// absolute path on another machine.
type TextureBinding struct {
	Property string
	File     string
}

// Texture returns the file bound to a material property, or "".
func (m *Material) Texture(property string) string {
	for _, t := range m.Textures {
		if t.Property == property {
			return t.File
		}
	}
	return ""
}

// Node is a transform node of the scene graph.
type Node struct {
	ID          int64
	Name        string
	Translation mathutil.Vec3
	Rotation    mathutil.Vec3 // Euler XYZ, degrees
	Scaling     mathutil.Vec3
	Attributes  []Attribute
	Materials   []*Material
	Children    []*Node
	Parent      *Node
}

func newNode(id int64, name string) *Node {
	return &Node{ID: id, Name: name, Scaling: mathutil.Vec3{1, 1, 1}}
}

// Mesh returns the polygon mesh carried by this node, or nil when the node
// has no mesh attribute.
func (n *Node) Mesh() *Mesh {
	for _, a := range n.Attributes {
		if a.Type == AttrMesh && a.Mesh != nil {
			return a.Mesh
		}
	}
	return nil
}

// Scene is an imported FBX document.
type Scene struct {
	Root    *Node
	Version uint32
	Binary  bool
	Creator string
}

// FindMeshNode returns the first mesh-bearing node in depth-first order whose
// name matches. An empty name matches any mesh node.
func (s *Scene) FindMeshNode(name string) *Node {
	var found *Node
	s.Walk(func(n *Node, _ int) bool {
		if n.Mesh() != nil && (name == "" || n.Name == name) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Walk visits every node below the root depth-first, children in file order.
// Depth 0 is a direct child of the root. Returning false stops the walk.
func (s *Scene) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int) bool
	visit = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.Children {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, c := range s.Root.Children {
		if !visit(c, 0) {
			return
		}
	}
}
