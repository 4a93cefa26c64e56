package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/mathutil"
)

// ErrMalformed reports geometry that references missing control points or
// layer entries, or polygons the configured policy does not accept.
var ErrMalformed = errors.New("mesh: malformed asset")

// DefaultUVSet is the UV set Maya names by default.
const DefaultUVSet = "map1"

// Source is the polygon mesh interface the transcoder reads. *fbx.Mesh
// implements it.
type Source interface {
	PolygonCount() int
	PolygonSize(p int) int
	PolygonVertex(p, corner int) (int, error)
	ControlPoint(i int) (mathutil.Vec3, error)
	PolygonVertexNormal(p, corner int) (mathutil.Vec3, bool, error)
	UVLayerCount() int
	UVSetNames() []string
	PolygonVertexUV(p, corner int, set string) ([2]float64, bool, error)
}

// PolygonPolicy says what to do with polygons that are not triangles.
type PolygonPolicy int

const (
	// Reject fails the transcode on the first non-triangle.
	Reject PolygonPolicy = iota
	// Triangulate fans each polygon around its first corner.
	Triangulate
)

// ParsePolygonPolicy accepts "reject" or "triangulate".
func ParsePolygonPolicy(s string) (PolygonPolicy, error) {
	switch s {
	case "", "reject":
		return Reject, nil
	case "triangulate":
		return Triangulate, nil
	}
	return 0, fmt.Errorf("mesh: unknown polygon policy %q", s)
}

func (p PolygonPolicy) String() string {
	if p == Triangulate {
		return "triangulate"
	}
	return "reject"
}

// Options controls Transcode.
type Options struct {
	Name     string
	UVSet    string // "" means DefaultUVSet
	Polygons PolygonPolicy

	// Warnf, when set, receives non-fatal notices such as a UV set fallback.
	Warnf func(format string, args ...any)
}

// Transcode copies every triangle corner of src into its own vertex: the
// control point position, the stored normal and the UV of the selected set
// with V negated. Meshes without UV layers get (0, 0). Indices are the
// running corner counter.
func Transcode(src Source, opts Options) (*Mesh, error) {
	set, hasUV := pickUVSet(src, opts)

	n := src.PolygonCount()
	m := &Mesh{
		Name:     opts.Name,
		Vertices: make([]Vertex, 0, n*3),
		Indices:  make([]uint32, 0, n*3),
	}

	var tri [3]int
	for i := 0; i < n; i++ {
		size := src.PolygonSize(i)
		if size < 3 {
			return nil, fmt.Errorf("%w: polygon %d has %d corners", ErrMalformed, i, size)
		}
		if size > 3 && opts.Polygons == Reject {
			return nil, fmt.Errorf("%w: polygon %d has %d corners (polygon policy is reject)", ErrMalformed, i, size)
		}

		for k := 1; k+1 < size; k++ {
			tri = [3]int{0, k, k + 1}
			var verts [3]Vertex
			var haveNormal [3]bool
			for j, corner := range tri {
				v, ok, err := corner3(src, i, corner, set, hasUV)
				if err != nil {
					return nil, err
				}
				verts[j], haveNormal[j] = v, ok
			}
			if !haveNormal[0] || !haveNormal[1] || !haveNormal[2] {
				fillFaceNormal(&verts, haveNormal)
			}
			for _, v := range verts {
				m.Indices = append(m.Indices, uint32(len(m.Vertices)))
				m.Vertices = append(m.Vertices, v)
			}
		}
	}
	return m, nil
}

// pickUVSet selects the UV set to sample. A mesh whose sets are all named
// differently falls back to its first set.
func pickUVSet(src Source, opts Options) (string, bool) {
	if src.UVLayerCount() == 0 {
		return "", false
	}
	want := opts.UVSet
	if want == "" {
		want = DefaultUVSet
	}
	names := src.UVSetNames()
	for _, name := range names {
		if name == want {
			return want, true
		}
	}
	if len(names) == 0 {
		return "", false
	}
	if opts.Warnf != nil {
		opts.Warnf("mesh %s: no UV set %q, using %q", opts.Name, want, names[0])
	}
	return names[0], true
}

func corner3(src Source, p, corner int, set string, hasUV bool) (Vertex, bool, error) {
	var v Vertex
	cp, err := src.PolygonVertex(p, corner)
	if err != nil {
		return v, false, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	pos, err := src.ControlPoint(cp)
	if err != nil {
		return v, false, fmt.Errorf("%w: polygon %d corner %d: %w", ErrMalformed, p, corner, err)
	}
	v.Position = vec3(pos)

	nrm, haveNormal, err := src.PolygonVertexNormal(p, corner)
	if err != nil {
		return v, false, fmt.Errorf("%w: normal of polygon %d corner %d: %w", ErrMalformed, p, corner, err)
	}
	if haveNormal {
		v.Normal = vec3(nrm)
	}

	if hasUV {
		uv, ok, err := src.PolygonVertexUV(p, corner, set)
		if err != nil {
			return v, false, fmt.Errorf("%w: uv of polygon %d corner %d: %w", ErrMalformed, p, corner, err)
		}
		if ok {
			v.TexCoords = mgl32.Vec2{float32(uv[0]), -float32(uv[1])}
		}
	}
	return v, haveNormal, nil
}

// fillFaceNormal gives corners without a stored normal the flat normal of
// their triangle.
func fillFaceNormal(verts *[3]Vertex, have [3]bool) {
	e1 := verts[1].Position.Sub(verts[0].Position)
	e2 := verts[2].Position.Sub(verts[0].Position)
	n := e1.Cross(e2)
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	for j := range verts {
		if !have[j] {
			verts[j].Normal = n
		}
	}
}

func vec3(v mathutil.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}
