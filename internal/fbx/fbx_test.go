package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"math"
	"runtime"
	"testing"

	"fbx-pbr-viewer/internal/mathutil"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLoadASCII(t *testing.T) {
	s, err := Load("testdata/quad.fbx")
	if err != nil {
		t.Fatal(err)
	}
	if s.Binary || s.Version != 7400 || s.Creator != "fixture exporter" {
		t.Fatalf("header = binary %v version %d creator %q", s.Binary, s.Version, s.Creator)
	}
	if len(s.Root.Children) != 1 || s.Root.Children[0].Name != "group" {
		t.Fatalf("root children = %v", s.Root.Children)
	}
	group := s.Root.Children[0]
	if group.Translation != (mathutil.Vec3{1, 2, 3}) {
		t.Errorf("group translation = %v", group.Translation)
	}
	if len(group.Attributes) != 1 || group.Attributes[0].Type != AttrNull {
		t.Errorf("group attributes = %+v", group.Attributes)
	}
	if group.Mesh() != nil {
		t.Error("group should not carry a mesh")
	}

	ship := s.FindMeshNode("ship")
	if ship == nil || ship.Parent != group {
		t.Fatalf("ship = %+v", ship)
	}
	if ship.Scaling != (mathutil.Vec3{2, 2, 2}) || ship.Rotation != (mathutil.Vec3{0, 90, 0}) {
		t.Errorf("ship TRS = %v %v", ship.Rotation, ship.Scaling)
	}
	if got := ship.Attributes[0]; got.Type != AttrMesh || got.Name != "quad" {
		t.Errorf("ship attribute = %+v", got)
	}
	if len(ship.Materials) != 1 || ship.Materials[0].Texture("DiffuseColor") != "textures/hull_basecolor.png" {
		t.Errorf("ship materials = %+v", ship.Materials)
	}

	m := ship.Mesh()
	if m.PolygonCount() != 1 || m.PolygonSize(0) != 4 || len(m.ControlPoints) != 4 {
		t.Fatalf("mesh shape: %d polygons, size %d, %d points", m.PolygonCount(), m.PolygonSize(0), len(m.ControlPoints))
	}
	if cp, _ := m.PolygonVertex(0, 3); cp != 3 {
		t.Errorf("last corner = %d, want 3", cp)
	}
	if n, ok, err := m.PolygonVertexNormal(0, 2); err != nil || !ok || n != (mathutil.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v %v %v", n, ok, err)
	}
	if names := m.UVSetNames(); len(names) != 2 || names[0] != "map1" || names[1] != "lightmap" {
		t.Errorf("uv sets = %v", names)
	}
	if uv, ok, err := m.PolygonVertexUV(0, 2, "map1"); err != nil || !ok || uv != [2]float64{1, 1} {
		t.Errorf("map1 uv = %v %v %v", uv, ok, err)
	}
	if uv, ok, _ := m.PolygonVertexUV(0, 1, "lightmap"); !ok || uv != [2]float64{0.5, 0.25} {
		t.Errorf("lightmap uv = %v %v", uv, ok)
	}
	if _, ok, _ := m.PolygonVertexUV(0, 0, "missing"); ok {
		t.Error("missing uv set reported a value")
	}
}

func TestWorldMatrixChainsParents(t *testing.T) {
	s, err := Load("testdata/quad.fbx")
	if err != nil {
		t.Fatal(err)
	}
	ship := s.FindMeshNode("")
	p := ship.WorldMatrix().MulPoint(mathutil.Vec3{1, 0, 0})
	want := mathutil.Vec3{1, 2, 1}
	for i := range p {
		if !near(p[i], want[i]) {
			t.Fatalf("world point = %v, want %v", p, want)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello world"), {0x00, 0x01, 0x02}} {
		if _, err := Decode(data); !errors.Is(err, ErrNotFBX) {
			t.Errorf("Decode(%q) err = %v, want ErrNotFBX", data, err)
		}
	}
}

func TestDecodeUnterminatedPolygon(t *testing.T) {
	src := []byte(`; FBX 7.4.0 project file
Objects:  {
	Geometry: 1, "Geometry::bad", "Mesh" {
		Vertices: *9 {
			a: 0,0,0,1,0,0,1,1,0
		}
		PolygonVertexIndex: *3 {
			a: 0,1,2
		}
	}
	Model: 2, "Model::bad", "Mesh" {
	}
}
Connections:  {
	C: "OO",2,0
	C: "OO",1,2
}
`)
	if _, err := Decode(src); err == nil {
		t.Fatal("expected error for unterminated polygon")
	}
}

func TestLayerElementLookup(t *testing.T) {
	le := &LayerElement{
		Mapping: ByPolygonVertex,
		Direct:  []float64{0, 0, 1, 1},
		Index:   []int{1, -1, 7},
		Stride:  2,
	}
	if v, ok, err := le.lookup(0, 0, 0); err != nil || !ok || v[0] != 1 {
		t.Errorf("slot 0 = %v %v %v", v, ok, err)
	}
	if _, ok, err := le.lookup(1, 0, 0); err != nil || ok {
		t.Errorf("unmapped slot = %v %v", ok, err)
	}
	if _, _, err := le.lookup(2, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad index err = %v", err)
	}
	if _, _, err := le.lookup(9, 0, 0); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad slot err = %v", err)
	}

	all := &LayerElement{Mapping: AllSame, Direct: []float64{0, 1, 0}, Stride: 3}
	if v, ok, _ := all.lookup(5, 3, 2); !ok || v[1] != 1 {
		t.Errorf("AllSame = %v %v", v, ok)
	}
}

func TestMeshIndexErrors(t *testing.T) {
	m := NewMesh("tri", []mathutil.Vec3{{}, {1, 0, 0}, {0, 1, 0}}, [][]int{{0, 1, 2}})
	if m.PolygonSize(1) != -1 {
		t.Error("PolygonSize out of range should be -1")
	}
	if _, err := m.PolygonVertex(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("corner err = %v", err)
	}
	if _, err := m.ControlPoint(3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("control point err = %v", err)
	}
}

// Binary fixtures are written with a minimal 7.4 encoder.

func encodeBinary(t *testing.T, version uint32, top []*Element) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteString(binaryMagic)
	buf.Write([]byte{0x1A, 0x00})
	binary.Write(&buf, binary.LittleEndian, version)
	for _, el := range top {
		encodeRecord(t, &buf, el)
	}
	buf.Write(make([]byte, 13))
	return buf.Bytes()
}

func encodeRecord(t *testing.T, buf *bytes.Buffer, el *Element) {
	var props bytes.Buffer
	for _, p := range el.Props {
		encodeProperty(t, &props, p)
	}

	start := buf.Len()
	buf.Write(make([]byte, 12))
	buf.WriteByte(byte(len(el.Name)))
	buf.WriteString(el.Name)
	buf.Write(props.Bytes())
	for _, c := range el.Children {
		encodeRecord(t, buf, c)
	}
	if len(el.Children) > 0 {
		buf.Write(make([]byte, 13))
	}

	hdr := buf.Bytes()[start:]
	binary.LittleEndian.PutUint32(hdr[0:], uint32(buf.Len()))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(el.Props)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(props.Len()))
}

type compressed []float64

// claimedArray declares count doubles but carries only payload as its zlib
// stream.
type claimedArray struct {
	count   uint32
	payload []byte
}

func encodeProperty(t *testing.T, w *bytes.Buffer, p any) {
	le := binary.LittleEndian
	switch v := p.(type) {
	case int64:
		w.WriteByte('L')
		binary.Write(w, le, v)
	case int32:
		w.WriteByte('I')
		binary.Write(w, le, v)
	case float64:
		w.WriteByte('D')
		binary.Write(w, le, v)
	case string:
		w.WriteByte('S')
		binary.Write(w, le, uint32(len(v)))
		w.WriteString(v)
	case []int32:
		w.WriteByte('i')
		binary.Write(w, le, [3]uint32{uint32(len(v)), 0, uint32(len(v) * 4)})
		binary.Write(w, le, v)
	case []float64:
		w.WriteByte('d')
		binary.Write(w, le, [3]uint32{uint32(len(v)), 0, uint32(len(v) * 8)})
		binary.Write(w, le, v)
	case compressed:
		var raw, z bytes.Buffer
		binary.Write(&raw, le, []float64(v))
		zw := zlib.NewWriter(&z)
		zw.Write(raw.Bytes())
		zw.Close()
		w.WriteByte('d')
		binary.Write(w, le, [3]uint32{uint32(len(v)), 1, uint32(z.Len())})
		w.Write(z.Bytes())
	case claimedArray:
		w.WriteByte('d')
		binary.Write(w, le, [3]uint32{v.count, 1, uint32(len(v.payload))})
		w.Write(v.payload)
	default:
		t.Fatalf("cannot encode %T", p)
	}
}

func binaryTriangle() []*Element {
	p := func(name string, props ...any) *Element { return &Element{Name: name, Props: props} }
	node := func(name string, props []any, children ...*Element) *Element {
		return &Element{Name: name, Props: props, Children: children}
	}
	return []*Element{
		node("FBXHeaderExtension", nil, p("FBXVersion", int32(7400)), p("Creator", "binary fixture")),
		node("Objects", nil,
			node("Geometry", []any{int64(10), "tri\x00\x01Geometry", "Mesh"},
				p("Vertices", compressed{0, 0, 0, 1, 0, 0, 0, 1, 0}),
				p("PolygonVertexIndex", []int32{0, 1, -3}),
				node("LayerElementNormal", []any{int32(0)},
					p("MappingInformationType", "ByControlPoint"),
					p("ReferenceInformationType", "Direct"),
					p("Normals", []float64{0, 0, 1, 0, 0, 1, 0, 0, 1}),
				),
			),
			node("Model", []any{int64(20), "tri\x00\x01Model", "Mesh"},
				node("Properties70", nil,
					p("P", "Lcl Translation", "Lcl Translation", "", "A", 0.0, 5.0, 0.0),
				),
			),
		),
		node("Connections", nil,
			p("C", "OO", int64(20), int64(0)),
			p("C", "OO", int64(10), int64(20)),
		),
	}
}

func TestDecodeBinary(t *testing.T) {
	data := encodeBinary(t, 7400, binaryTriangle())
	s, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if !s.Binary || s.Version != 7400 || s.Creator != "binary fixture" {
		t.Fatalf("header = binary %v version %d creator %q", s.Binary, s.Version, s.Creator)
	}
	n := s.FindMeshNode("tri")
	if n == nil {
		t.Fatal("mesh node not found")
	}
	if n.Translation != (mathutil.Vec3{0, 5, 0}) {
		t.Errorf("translation = %v", n.Translation)
	}
	m := n.Mesh()
	if m.Name != "tri" || len(m.ControlPoints) != 3 || m.ControlPoints[1] != (mathutil.Vec3{1, 0, 0}) {
		t.Errorf("mesh = %q %v", m.Name, m.ControlPoints)
	}
	if cp, _ := m.PolygonVertex(0, 2); cp != 2 {
		t.Errorf("last corner = %d", cp)
	}
	if nrm, ok, err := m.PolygonVertexNormal(0, 1); err != nil || !ok || nrm != (mathutil.Vec3{0, 0, 1}) {
		t.Errorf("normal = %v %v %v", nrm, ok, err)
	}
	if m.UVLayerCount() != 0 {
		t.Errorf("uv layers = %d", m.UVLayerCount())
	}
}

func TestDecodeBinaryTruncated(t *testing.T) {
	data := encodeBinary(t, 7400, binaryTriangle())
	if _, err := Decode(data[:len(data)/2]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestDecodeBinaryRejectsOversizedArrayClaim(t *testing.T) {
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	zw.Write([]byte{0})
	zw.Close()
	data := encodeBinary(t, 7400, []*Element{
		{Name: "Vertices", Props: []any{claimedArray{count: 1 << 27, payload: z.Bytes()}}},
	})

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := Decode(data)
	runtime.ReadMemStats(&after)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 16<<20 {
		t.Errorf("decoding %d bytes allocated %d MiB", len(data), grew>>20)
	}
}

func TestDecodeBinaryRejectsShortRawArray(t *testing.T) {
	data := encodeBinary(t, 7400, []*Element{
		{Name: "Vertices", Props: []any{[]float64{1, 2, 3}}},
	})
	// Raise the declared element count of the uncompressed array, which
	// follows the 13-byte record header, the name and the type code.
	at := binaryHeaderSize + 13 + len("Vertices") + 1
	binary.LittleEndian.PutUint32(data[at:], 1000)
	if _, err := Decode(data); !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}
