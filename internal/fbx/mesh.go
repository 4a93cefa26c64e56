package fbx

import (
	"fmt"

	"fbx-pbr-viewer/internal/mathutil"
)

// MappingMode says what a layer element's values are attached to.
type MappingMode int

const (
	ByPolygonVertex MappingMode = iota
	ByControlPoint
	ByPolygon
	AllSame
	ByEdge
)

func parseMapping(s string) (MappingMode, error) {
	switch s {
	case "ByPolygonVertex":
		return ByPolygonVertex, nil
	case "ByControlPoint", "ByVertice", "ByVertex":
		return ByControlPoint, nil
	case "ByPolygon":
		return ByPolygon, nil
	case "AllSame":
		return AllSame, nil
	case "ByEdge":
		return ByEdge, nil
	}
	return 0, fmt.Errorf("fbx: unknown mapping type %q", s)
}

// LayerElement is per-corner data (normals, UVs) stored with one of the FBX
// mapping/reference schemes. Direct holds Stride floats per entry; Index,
// when set, maps the mapped slot into Direct (IndexToDirect).
type LayerElement struct {
	Mapping MappingMode
	Direct  []float64
	Index   []int
	Stride  int
}

// lookup resolves the entry for a polygon corner. ok is false when the
// corner is explicitly unmapped (index -1).
func (le *LayerElement) lookup(polygonVertex, controlPoint, polygon int) (vals []float64, ok bool, err error) {
	var slot int
	switch le.Mapping {
	case ByPolygonVertex:
		slot = polygonVertex
	case ByControlPoint:
		slot = controlPoint
	case ByPolygon:
		slot = polygon
	case AllSame:
		slot = 0
	default:
		return nil, false, fmt.Errorf("fbx: unsupported mapping mode %d", le.Mapping)
	}

	if le.Index != nil {
		if slot < 0 || slot >= len(le.Index) {
			return nil, false, fmt.Errorf("%w: layer index slot %d of %d", ErrIndexOutOfRange, slot, len(le.Index))
		}
		slot = le.Index[slot]
		if slot < 0 {
			return nil, false, nil
		}
	}
	start := slot * le.Stride
	if slot < 0 || start+le.Stride > len(le.Direct) {
		return nil, false, fmt.Errorf("%w: layer value %d of %d", ErrIndexOutOfRange, slot, len(le.Direct)/le.Stride)
	}
	return le.Direct[start : start+le.Stride], true, nil
}

// UVSet is a named texture coordinate layer.
type UVSet struct {
	Name string
	LayerElement
}

// Mesh is the polygon geometry of one Geometry object.
type Mesh struct {
	Name          string
	ControlPoints []mathutil.Vec3
	Normals       *LayerElement
	UVSets        []UVSet

	// polygonVertices holds the control point index of every polygon
	// corner; polygon p spans polygonVertices[starts[p]:starts[p+1]].
	polygonVertices []int
	starts          []int
}

// NewMesh builds a mesh from control points and polygons given as lists of
// control point indices.
func NewMesh(name string, controlPoints []mathutil.Vec3, polygons [][]int) *Mesh {
	m := &Mesh{Name: name, ControlPoints: controlPoints, starts: []int{0}}
	for _, poly := range polygons {
		m.polygonVertices = append(m.polygonVertices, poly...)
		m.starts = append(m.starts, len(m.polygonVertices))
	}
	return m
}

// setPolygonVertexIndex decodes the FBX PolygonVertexIndex array, where the
// last corner of each polygon is stored as the bitwise complement.
func (m *Mesh) setPolygonVertexIndex(raw []int) error {
	m.polygonVertices = make([]int, len(raw))
	m.starts = []int{0}
	for i, v := range raw {
		if v < 0 {
			v = ^v
			m.starts = append(m.starts, i+1)
		}
		m.polygonVertices[i] = v
	}
	if m.starts[len(m.starts)-1] != len(raw) {
		return fmt.Errorf("fbx: %s: last polygon is not terminated", m.Name)
	}
	return nil
}

// PolygonCount returns the number of polygons.
func (m *Mesh) PolygonCount() int {
	return len(m.starts) - 1
}

// PolygonSize returns the number of corners of polygon p, or -1 if p is out
// of range.
func (m *Mesh) PolygonSize(p int) int {
	if p < 0 || p >= m.PolygonCount() {
		return -1
	}
	return m.starts[p+1] - m.starts[p]
}

func (m *Mesh) polygonVertexIndex(p, corner int) (int, error) {
	size := m.PolygonSize(p)
	if size < 0 {
		return 0, fmt.Errorf("%w: polygon %d of %d", ErrIndexOutOfRange, p, m.PolygonCount())
	}
	if corner < 0 || corner >= size {
		return 0, fmt.Errorf("%w: corner %d of polygon %d with %d corners", ErrIndexOutOfRange, corner, p, size)
	}
	return m.starts[p] + corner, nil
}

// PolygonVertex returns the control point index used by corner of polygon p.
func (m *Mesh) PolygonVertex(p, corner int) (int, error) {
	pv, err := m.polygonVertexIndex(p, corner)
	if err != nil {
		return 0, err
	}
	return m.polygonVertices[pv], nil
}

// ControlPoint returns control point i.
func (m *Mesh) ControlPoint(i int) (mathutil.Vec3, error) {
	if i < 0 || i >= len(m.ControlPoints) {
		return mathutil.Vec3{}, fmt.Errorf("%w: control point %d of %d", ErrIndexOutOfRange, i, len(m.ControlPoints))
	}
	return m.ControlPoints[i], nil
}

// PolygonVertexNormal returns the stored normal of a polygon corner. ok is
// false when the mesh has no normal layer or the corner is unmapped.
func (m *Mesh) PolygonVertexNormal(p, corner int) (n mathutil.Vec3, ok bool, err error) {
	if m.Normals == nil {
		return n, false, nil
	}
	vals, ok, err := m.lookup(m.Normals, p, corner)
	if !ok || err != nil {
		return n, false, err
	}
	return mathutil.Vec3{vals[0], vals[1], vals[2]}, true, nil
}

// UVLayerCount returns the number of UV sets.
func (m *Mesh) UVLayerCount() int {
	return len(m.UVSets)
}

// UVSetNames returns the UV set names in file order.
func (m *Mesh) UVSetNames() []string {
	names := make([]string, len(m.UVSets))
	for i, s := range m.UVSets {
		names[i] = s.Name
	}
	return names
}

// UVSet returns the set with the given name, or nil.
func (m *Mesh) UVSet(name string) *UVSet {
	for i := range m.UVSets {
		if m.UVSets[i].Name == name {
			return &m.UVSets[i]
		}
	}
	return nil
}

// PolygonVertexUV returns the texture coordinate of a polygon corner in the
// named set. ok is false when the set does not exist or the corner is
// unmapped.
func (m *Mesh) PolygonVertexUV(p, corner int, set string) (uv [2]float64, ok bool, err error) {
	s := m.UVSet(set)
	if s == nil {
		return uv, false, nil
	}
	vals, ok, err := m.lookup(&s.LayerElement, p, corner)
	if !ok || err != nil {
		return uv, false, err
	}
	return [2]float64{vals[0], vals[1]}, true, nil
}

func (m *Mesh) lookup(le *LayerElement, p, corner int) ([]float64, bool, error) {
	pv, err := m.polygonVertexIndex(p, corner)
	if err != nil {
		return nil, false, err
	}
	return le.lookup(pv, m.polygonVertices[pv], p)
}
