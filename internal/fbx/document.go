package fbx

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fbx-pbr-viewer/internal/mathutil"
)

var (
	// ErrNotFBX reports input that is neither binary nor ASCII FBX.
	ErrNotFBX = errors.New("fbx: not an FBX file")
	// ErrTruncated reports a binary file that ends inside a record.
	ErrTruncated = errors.New("fbx: truncated file")
	// ErrIndexOutOfRange reports mesh data that references missing entries.
	ErrIndexOutOfRange = errors.New("fbx: index out of range")
)

// Load reads and imports an FBX file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fbx: read %s: %w", path, err)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("fbx: import %s: %w", path, err)
	}
	return s, nil
}

// Decode imports an FBX document held in memory, binary or ASCII.
func Decode(data []byte) (*Scene, error) {
	var (
		root    *Element
		version uint32
		err     error
	)
	bin := isBinary(data)
	if bin {
		root, version, err = parseBinary(data)
	} else {
		if !looksASCII(data) {
			return nil, ErrNotFBX
		}
		root, version, err = parseASCII(data)
	}
	if err != nil {
		return nil, err
	}

	s, err := build(root)
	if err != nil {
		return nil, err
	}
	s.Version = version
	s.Binary = bin
	return s, nil
}

// looksASCII accepts text whose first significant line is a comment or an
// FBX key, which is how every ASCII exporter starts its output.
func looksASCII(data []byte) bool {
	head := data
	if len(head) > 256 {
		head = head[:256]
	}
	for _, c := range head {
		if c == 0 {
			return false
		}
	}
	text := strings.TrimSpace(string(head))
	return strings.HasPrefix(text, ";") || strings.HasPrefix(text, "FBXHeaderExtension:")
}

type object struct {
	id      int64
	class   string
	name    string
	subtype string
	el      *Element
}

// objectName strips the class suffix/prefix FBX attaches to object names:
// "Name\x00\x01Class" in binary files and "Class::Name" in ASCII files.
func objectName(raw string) string {
	if i := strings.Index(raw, "\x00\x01"); i >= 0 {
		return raw[:i]
	}
	if i := strings.Index(raw, "::"); i >= 0 {
		return raw[i+2:]
	}
	return raw
}

func build(root *Element) (*Scene, error) {
	s := &Scene{Root: newNode(0, "RootNode")}
	if hdr := root.Child("FBXHeaderExtension"); hdr != nil {
		s.Creator = hdr.Child("Creator").String(0)
	}
	if c := root.Child("Creator"); c != nil && s.Creator == "" {
		s.Creator = c.String(0)
	}

	objs := map[int64]*object{}
	var order []*object
	for _, el := range root.Child("Objects").Children {
		id, ok := el.Int64(0)
		if !ok {
			return nil, fmt.Errorf("fbx: %s object without numeric id (FBX 6 files are not supported)", el.Name)
		}
		o := &object{id: id, class: el.Name, name: objectName(el.String(1)), subtype: el.String(2), el: el}
		objs[id] = o
		order = append(order, o)
	}

	nodes := map[int64]*Node{0: s.Root}
	for _, o := range order {
		if o.class == "Model" {
			n := newNode(o.id, o.name)
			readTransform(n, o.el)
			nodes[o.id] = n
		}
	}

	meshes := map[int64]*Mesh{}
	materials := map[int64]*Material{}
	for _, o := range order {
		if o.class == "Material" {
			materials[o.id] = &Material{Name: o.name}
		}
	}

	for _, c := range root.Child("Connections").ChildrenNamed("C") {
		kind := c.String(0)
		childID, _ := c.Int64(1)
		parentID, _ := c.Int64(2)
		child := objs[childID]
		if child == nil {
			continue
		}

		switch child.class {
		case "Model":
			parent, ok := nodes[parentID]
			n := nodes[childID]
			if !ok || n == nil || kind != "OO" {
				continue
			}
			n.Parent = parent
			parent.Children = append(parent.Children, n)

		case "Geometry":
			parent := nodes[parentID]
			if parent == nil || parent == s.Root {
				continue
			}
			attr := Attribute{Type: AttrUnknown, Name: child.name}
			if t, ok := geometryTypes[child.subtype]; ok {
				attr.Type = t
			}
			if attr.Type == AttrMesh {
				m, ok := meshes[childID]
				if !ok {
					var err error
					m, err = readMesh(child)
					if err != nil {
						return nil, err
					}
					meshes[childID] = m
				}
				attr.Mesh = m
			}
			parent.Attributes = append(parent.Attributes, attr)

		case "NodeAttribute":
			parent := nodes[parentID]
			if parent == nil || parent == s.Root {
				continue
			}
			attr := Attribute{Type: AttrUnknown, Name: child.name}
			if t, ok := nodeAttributeTypes[child.subtype]; ok {
				attr.Type = t
			}
			parent.Attributes = append(parent.Attributes, attr)

		case "Material":
			parent := nodes[parentID]
			if parent == nil || parent == s.Root {
				continue
			}
			parent.Materials = append(parent.Materials, materials[childID])

		case "Texture":
			mat := materials[parentID]
			if mat == nil || kind != "OP" {
				continue
			}
			mat.Textures = append(mat.Textures, TextureBinding{
				Property: c.String(3),
				File:     textureFile(child.el),
			})
		}
	}
	return s, nil
}

func textureFile(el *Element) string {
	if f := el.Child("RelativeFilename").String(0); f != "" {
		return f
	}
	return el.Child("FileName").String(0)
}

func readTransform(n *Node, el *Element) {
	for _, p := range el.Child("Properties70").ChildrenNamed("P") {
		var dst *mathutil.Vec3
		switch p.String(0) {
		case "Lcl Translation":
			dst = &n.Translation
		case "Lcl Rotation":
			dst = &n.Rotation
		case "Lcl Scaling":
			dst = &n.Scaling
		default:
			continue
		}
		for k := 0; k < 3; k++ {
			if v, ok := p.Float64(4 + k); ok {
				dst[k] = v
			}
		}
	}
}

func readMesh(o *object) (*Mesh, error) {
	m := &Mesh{Name: o.name}

	verts := o.el.Child("Vertices").Float64s()
	if len(verts)%3 != 0 {
		return nil, fmt.Errorf("fbx: geometry %q: %d vertex floats is not a multiple of 3", o.name, len(verts))
	}
	m.ControlPoints = make([]mathutil.Vec3, len(verts)/3)
	for i := range m.ControlPoints {
		m.ControlPoints[i] = mathutil.Vec3{verts[i*3], verts[i*3+1], verts[i*3+2]}
	}
	if err := m.setPolygonVertexIndex(o.el.Child("PolygonVertexIndex").Ints()); err != nil {
		return nil, err
	}

	if el := o.el.Child("LayerElementNormal"); el != nil {
		le, err := readLayerElement(el, "Normals", 3)
		if err != nil {
			return nil, fmt.Errorf("fbx: geometry %q normals: %w", o.name, err)
		}
		m.Normals = le
	}
	for _, el := range o.el.ChildrenNamed("LayerElementUV") {
		le, err := readLayerElement(el, "UV", 2)
		if err != nil {
			return nil, fmt.Errorf("fbx: geometry %q uv: %w", o.name, err)
		}
		m.UVSets = append(m.UVSets, UVSet{Name: el.Child("Name").String(0), LayerElement: *le})
	}
	return m, nil
}

func readLayerElement(el *Element, key string, stride int) (*LayerElement, error) {
	mapping, err := parseMapping(el.Child("MappingInformationType").String(0))
	if err != nil {
		return nil, err
	}
	le := &LayerElement{Mapping: mapping, Stride: stride, Direct: el.Child(key).Float64s()}
	if len(le.Direct)%stride != 0 {
		return nil, fmt.Errorf("%d values is not a multiple of %d", len(le.Direct), stride)
	}
	switch ref := el.Child("ReferenceInformationType").String(0); ref {
	case "Direct":
	case "IndexToDirect", "Index":
		le.Index = el.Child(key + "Index").Ints()
		if le.Index == nil {
			le.Index = []int{}
		}
	default:
		return nil, fmt.Errorf("unknown reference type %q", ref)
	}
	return le, nil
}
