package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/inspect"
)

func main() {
	materials := flag.Bool("materials", false, "Also list material texture bindings")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: inspect [-materials] file.fbx ...")
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		scene, err := fbx.Load(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
			continue
		}

		kind := "ASCII"
		if scene.Binary {
			kind = "binary"
		}
		fmt.Printf("%s: FBX %d (%s)", path, scene.Version, kind)
		if scene.Creator != "" {
			fmt.Printf(", %s", scene.Creator)
		}
		fmt.Println()

		inspect.PrintScene(os.Stdout, scene)

		scene.Walk(func(n *fbx.Node, _ int) bool {
			m := n.Mesh()
			if m == nil {
				return true
			}
			st := inspect.MeshStats(m)
			fmt.Printf("%s: %d polygons (%d not triangles), %d corners, %d control points, normals=%v, uv sets [%s]\n",
				n.Name, st.Polygons, st.NonTriangles, st.Corners, st.ControlPoints, st.HasNormals, strings.Join(st.UVSets, ", "))
			return true
		})

		if *materials {
			inspect.PrintMaterials(os.Stdout, scene)
		}
	}

	if failed {
		os.Exit(1)
	}
}
