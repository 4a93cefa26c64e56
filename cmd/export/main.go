package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fbx-pbr-viewer/internal/assets"
	"fbx-pbr-viewer/internal/config"
	"fbx-pbr-viewer/internal/export"
	"fbx-pbr-viewer/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: auto-detect)")
	model := flag.String("model", "", "FBX file (default: example1/models/helios_enemyFighter_geo.fbx)")
	meshNode := flag.String("mesh", "", "Mesh node name (default: first mesh)")
	texSource := flag.String("textures", "", "Texture source: config or material")
	polygons := flag.String("polygons", "", "Non-triangle polygons: reject or triangulate")
	out := flag.String("o", "", "Output .glb path (default: model name next to the output dir)")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:       *dataDir,
		Model:         *model,
		MeshNode:      *meshNode,
		TextureSource: *texSource,
		Polygons:      *polygons,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	warnf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
	m, err := assets.LoadModel(cfg.ModelOptions(warnf), &texture.MemoryUploader{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer m.Close()

	path := *out
	if path == "" {
		name := strings.TrimSuffix(filepath.Base(cfg.Model), filepath.Ext(cfg.Model))
		path = filepath.Join(cfg.OutputDir, name+".glb")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := export.Save(m.Mesh, path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		m.Close()
		os.Exit(1)
	}
	fmt.Printf("Exported %s (%d triangles, %d textures) to %s\n", m.Node.Name, m.Mesh.Triangles(), len(m.Mesh.Textures), path)
}
