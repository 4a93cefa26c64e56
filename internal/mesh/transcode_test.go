package mesh

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/mathutil"
)

func triangleMesh() *fbx.Mesh {
	m := fbx.NewMesh("tri",
		[]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[][]int{{0, 1, 2}},
	)
	m.Normals = &fbx.LayerElement{
		Mapping: fbx.ByPolygonVertex,
		Direct:  []float64{0, 0, 1, 0, 0, 1, 0, 0, 1},
		Stride:  3,
	}
	m.UVSets = []fbx.UVSet{{
		Name: "map1",
		LayerElement: fbx.LayerElement{
			Mapping: fbx.ByPolygonVertex,
			Direct:  []float64{0, 0, 1, 0, 0, 1},
			Stride:  2,
		},
	}}
	return m
}

func TestTranscodeTriangle(t *testing.T) {
	got, err := Transcode(triangleMesh(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	wantPos := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	wantUV := []mgl32.Vec2{{0, 0}, {1, 0}, {0, -1}}
	if len(got.Vertices) != 3 || len(got.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices", len(got.Vertices), len(got.Indices))
	}
	for i, v := range got.Vertices {
		if v.Position != wantPos[i] {
			t.Errorf("vertex %d position = %v, want %v", i, v.Position, wantPos[i])
		}
		if v.Normal != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d normal = %v", i, v.Normal)
		}
		if v.TexCoords != wantUV[i] {
			t.Errorf("vertex %d uv = %v, want %v", i, v.TexCoords, wantUV[i])
		}
		if got.Indices[i] != uint32(i) {
			t.Errorf("index %d = %d", i, got.Indices[i])
		}
	}
}

func TestTranscodeCountsAndIdentityIndices(t *testing.T) {
	const polys = 5
	var cps []mathutil.Vec3
	var faces [][]int
	for p := 0; p < polys; p++ {
		cps = append(cps, mathutil.Vec3{float64(p), 0, 0}, mathutil.Vec3{float64(p), 1, 0}, mathutil.Vec3{float64(p), 0, 1})
		faces = append(faces, []int{p * 3, p*3 + 1, p*3 + 2})
	}
	// Every polygon reuses control point 0 for its first corner, which must
	// still produce distinct vertices.
	for _, f := range faces {
		f[0] = 0
	}
	got, err := Transcode(fbx.NewMesh("strip", cps, faces), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Vertices) != 3*polys || len(got.Indices) != 3*polys {
		t.Fatalf("got %d vertices, %d indices, want %d", len(got.Vertices), len(got.Indices), 3*polys)
	}
	for i, idx := range got.Indices {
		if idx != uint32(i) {
			t.Fatalf("Indices[%d] = %d", i, idx)
		}
	}
	if got.Triangles() != polys {
		t.Errorf("Triangles() = %d", got.Triangles())
	}
}

func TestTranscodeFlipsV(t *testing.T) {
	cases := [][2]float64{{0.25, 0.75}, {1, 1}, {0.5, -0.5}, {3, 2}}
	for _, uv := range cases {
		m := triangleMesh()
		m.UVSets[0].Direct = []float64{uv[0], uv[1], uv[0], uv[1], uv[0], uv[1]}
		got, err := Transcode(m, Options{})
		if err != nil {
			t.Fatal(err)
		}
		want := mgl32.Vec2{float32(uv[0]), -float32(uv[1])}
		for i, v := range got.Vertices {
			if v.TexCoords != want {
				t.Errorf("uv %v vertex %d = %v, want %v", uv, i, v.TexCoords, want)
			}
		}
	}
}

func TestTranscodeWithoutUVLayers(t *testing.T) {
	m := triangleMesh()
	m.UVSets = nil
	m.ControlPoints = []mathutil.Vec3{{5, 6, 7}, {8, 9, 10}, {-1, -2, -3}}
	got, err := Transcode(m, Options{})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got.Vertices {
		if v.TexCoords != (mgl32.Vec2{}) {
			t.Errorf("vertex %d uv = %v, want (0, 0)", i, v.TexCoords)
		}
	}
}

func TestTranscodeUVSetFallback(t *testing.T) {
	m := triangleMesh()
	m.UVSets[0].Name = "UVMap"
	var warned bool
	got, err := Transcode(m, Options{Warnf: func(string, ...any) { warned = true }})
	if err != nil {
		t.Fatal(err)
	}
	if !warned {
		t.Error("no warning for missing map1")
	}
	if got.Vertices[2].TexCoords != (mgl32.Vec2{0, -1}) {
		t.Errorf("fallback uv = %v", got.Vertices[2].TexCoords)
	}
}

func quad() *fbx.Mesh {
	return fbx.NewMesh("quad",
		[]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][]int{{0, 1, 2, 3}},
	)
}

func TestTranscodePolygonPolicy(t *testing.T) {
	if _, err := Transcode(quad(), Options{Polygons: Reject}); !errors.Is(err, ErrMalformed) {
		t.Errorf("reject: err = %v, want ErrMalformed", err)
	}

	got, err := Transcode(quad(), Options{Polygons: Triangulate})
	if err != nil {
		t.Fatal(err)
	}
	want := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	if len(got.Vertices) != len(want) {
		t.Fatalf("got %d vertices, want %d", len(got.Vertices), len(want))
	}
	for i, v := range got.Vertices {
		if v.Position != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, v.Position, want[i])
		}
		// No normal layer: the flat face normal is used.
		if v.Normal != (mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d normal = %v", i, v.Normal)
		}
		if got.Indices[i] != uint32(i) {
			t.Errorf("index %d = %d", i, got.Indices[i])
		}
	}
}

func TestTranscodeMalformed(t *testing.T) {
	badPoint := fbx.NewMesh("bad", []mathutil.Vec3{{}, {1, 0, 0}}, [][]int{{0, 1, 2}})
	degenerate := fbx.NewMesh("line", []mathutil.Vec3{{}, {1, 0, 0}}, [][]int{{0, 1}})
	badNormal := triangleMesh()
	badNormal.Normals.Direct = badNormal.Normals.Direct[:3]
	badUV := triangleMesh()
	badUV.UVSets[0].Index = []int{0, 1, 9}

	for name, src := range map[string]*fbx.Mesh{
		"control point": badPoint,
		"two corners":   degenerate,
		"normal":        badNormal,
		"uv index":      badUV,
	} {
		if _, err := Transcode(src, Options{}); !errors.Is(err, ErrMalformed) {
			t.Errorf("%s: err = %v, want ErrMalformed", name, err)
		}
	}
}

func TestParsePolygonPolicy(t *testing.T) {
	for in, want := range map[string]PolygonPolicy{"": Reject, "reject": Reject, "triangulate": Triangulate} {
		got, err := ParsePolygonPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolygonPolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolygonPolicy("drop"); err == nil {
		t.Error("accepted unknown policy")
	}
}
