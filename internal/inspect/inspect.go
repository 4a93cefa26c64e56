// Package inspect prints an imported scene graph as nested tags.
package inspect

import (
	"fmt"
	"io"
	"strings"

	"fbx-pbr-viewer/internal/fbx"
)

// PrintScene prints every child of the scene root at depth 0.
func PrintScene(w io.Writer, s *fbx.Scene) {
	for _, c := range s.Root.Children {
		PrintNode(w, c, 0)
	}
}

// PrintNode prints node and its subtree, indented by depth tabs. UV set
// names are listed only for nodes that carry a mesh.
func PrintNode(w io.Writer, n *fbx.Node, depth int) {
	indent := strings.Repeat("\t", depth)
	t, r, s := n.Translation, n.Rotation, n.Scaling
	fmt.Fprintf(w, "%s<node name='%s' translation='(%f, %f, %f)' rotation='(%f, %f, %f)' scaling='(%f, %f, %f)'>\n",
		indent, n.Name,
		t[0], t[1], t[2],
		r[0], r[1], r[2],
		s[0], s[1], s[2],
	)

	inner := indent + "\t"
	for _, a := range n.Attributes {
		fmt.Fprintf(w, "%s<attribute type='%s' name='%s'/>\n", inner, a.Type, a.Name)
	}

	for _, c := range n.Children {
		PrintNode(w, c, depth+1)
	}

	if m := n.Mesh(); m != nil {
		for _, name := range m.UVSetNames() {
			fmt.Fprintf(w, "%s<uvset name='%s'/>\n", inner, name)
		}
	}

	fmt.Fprintf(w, "%s</node>\n", indent)
}

// Stats summarizes a mesh for the inspect tool.
type Stats struct {
	Polygons      int
	ControlPoints int
	Corners       int
	NonTriangles  int
	HasNormals    bool
	UVSets        []string
}

// MeshStats counts the polygons of m.
func MeshStats(m *fbx.Mesh) Stats {
	st := Stats{
		Polygons:      m.PolygonCount(),
		ControlPoints: len(m.ControlPoints),
		HasNormals:    m.Normals != nil,
		UVSets:        m.UVSetNames(),
	}
	for p := 0; p < st.Polygons; p++ {
		size := m.PolygonSize(p)
		st.Corners += size
		if size != 3 {
			st.NonTriangles++
		}
	}
	return st
}

// PrintMaterials lists the texture bindings of every material on mesh nodes.
func PrintMaterials(w io.Writer, s *fbx.Scene) {
	s.Walk(func(n *fbx.Node, _ int) bool {
		for _, mat := range n.Materials {
			fmt.Fprintf(w, "%s: material %s\n", n.Name, mat.Name)
			for _, tb := range mat.Textures {
				fmt.Fprintf(w, "\t%s = %s\n", tb.Property, tb.File)
			}
		}
		return true
	})
}
