package inspect

import (
	"bytes"
	"strings"
	"testing"

	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/mathutil"
)

func testScene() *fbx.Scene {
	m := fbx.NewMesh("shipShape", []mathutil.Vec3{{}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}, [][]int{{0, 1, 2}, {1, 3, 2, 0}})
	m.UVSets = []fbx.UVSet{{Name: "map1"}, {Name: "lightmap"}}

	root := &fbx.Node{Name: "RootNode", Scaling: mathutil.Vec3{1, 1, 1}}
	group := &fbx.Node{
		Name:        "group",
		Translation: mathutil.Vec3{1, 2, 3},
		Scaling:     mathutil.Vec3{1, 1, 1},
		Attributes:  []fbx.Attribute{{Type: fbx.AttrNull, Name: "groupAttr"}},
		Parent:      root,
	}
	ship := &fbx.Node{
		Name:       "ship",
		Rotation:   mathutil.Vec3{0, 90, 0},
		Scaling:    mathutil.Vec3{0.5, 0.5, 0.5},
		Attributes: []fbx.Attribute{{Type: fbx.AttrMesh, Name: "shipShape", Mesh: m}},
		Parent:     group,
	}
	group.Children = []*fbx.Node{ship}
	root.Children = []*fbx.Node{group}
	return &fbx.Scene{Root: root}
}

func TestPrintScene(t *testing.T) {
	var buf bytes.Buffer
	PrintScene(&buf, testScene())
	want := strings.Join([]string{
		"<node name='group' translation='(1.000000, 2.000000, 3.000000)' rotation='(0.000000, 0.000000, 0.000000)' scaling='(1.000000, 1.000000, 1.000000)'>",
		"\t<attribute type='null' name='groupAttr'/>",
		"\t<node name='ship' translation='(0.000000, 0.000000, 0.000000)' rotation='(0.000000, 90.000000, 0.000000)' scaling='(0.500000, 0.500000, 0.500000)'>",
		"\t\t<attribute type='mesh' name='shipShape'/>",
		"\t\t<uvset name='map1'/>",
		"\t\t<uvset name='lightmap'/>",
		"\t</node>",
		"</node>",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("output mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrintNodeWithoutMeshSkipsUVSets(t *testing.T) {
	n := &fbx.Node{
		Name:       "light",
		Attributes: []fbx.Attribute{{Type: fbx.AttrLight, Name: "key"}, {Type: fbx.AttributeType(99), Name: "odd"}},
	}
	var buf bytes.Buffer
	PrintNode(&buf, n, 2)
	out := buf.String()
	if strings.Contains(out, "uvset") {
		t.Errorf("uv sets printed for a node without mesh:\n%s", out)
	}
	if !strings.HasPrefix(out, "\t\t<node name='light'") || !strings.HasSuffix(out, "\t\t</node>\n") {
		t.Errorf("indentation wrong:\n%s", out)
	}
	if !strings.Contains(out, "\t\t\t<attribute type='light' name='key'/>") ||
		!strings.Contains(out, "<attribute type='unknown' name='odd'/>") {
		t.Errorf("attributes wrong:\n%s", out)
	}
}

func TestMeshStats(t *testing.T) {
	st := MeshStats(testScene().Root.Children[0].Children[0].Mesh())
	if st.Polygons != 2 || st.Corners != 7 || st.NonTriangles != 1 || st.ControlPoints != 4 || st.HasNormals {
		t.Errorf("stats = %+v", st)
	}
	if len(st.UVSets) != 2 {
		t.Errorf("uv sets = %v", st.UVSets)
	}
}
