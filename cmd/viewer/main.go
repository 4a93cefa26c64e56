package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/assets"
	"fbx-pbr-viewer/internal/camera"
	"fbx-pbr-viewer/internal/config"
	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/inspect"
	"fbx-pbr-viewer/internal/viewer"
)

func init() {
	// GLFW and OpenGL calls must come from the main thread.
	runtime.LockOSThread()
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: auto-detect)")
	model := flag.String("model", "", "FBX file (default: example1/models/helios_enemyFighter_geo.fbx)")
	meshNode := flag.String("mesh", "", "Mesh node name (default: first mesh)")
	texSource := flag.String("textures", "", "Texture source: config or material")
	polygons := flag.String("polygons", "", "Non-triangle polygons: reject or triangulate")
	quiet := flag.Bool("q", false, "Do not print the scene graph")
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

	lights := make([]viewer.Light, len(cfg.Lights))
	for i, l := range cfg.Lights {
		lights[i] = viewer.Light{Position: l.Position.GL(), Color: l.Color.GL()}
	}

	app, err := viewer.NewApp(viewer.Options{
		Title:          "FBX PBR Viewer",
		Width:          cfg.Width,
		Height:         cfg.Height,
		VertexShader:   cfg.VertexShader,
		FragmentShader: cfg.FragmentShader,
		ClearColor:     0.25,
		Camera:         camera.New(cfg.CameraPos.GL(), cfg.FOV),
		LightPos:       cfg.LightPos.GL(),
		Lights:         lights,
	})
	if err != nil {
		log.Fatal(err)
	}

	warnf := func(format string, args ...any) {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
	opts := cfg.ModelOptions(warnf)
	if !*quiet {
		opts.OnImport = func(s *fbx.Scene) { inspect.PrintScene(os.Stdout, s) }
	}
	m, err := assets.LoadModel(opts, viewer.GLUploader{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, fbx.ErrNotFBX) {
			fmt.Fprintf(os.Stderr, "%s is not an FBX file\n", cfg.Model)
		}
		app.Close()
		os.Exit(1)
	}

	fmt.Printf("Mesh %s: %d triangles, %d textures\n", m.Node.Name, m.Mesh.Triangles(), len(m.Mesh.Textures))

	world := cfg.WorldMatrix(m.Node)
	app.SetModel(mgl32.Mat4(world.Float32()))
	app.Run(m.Mesh)

	// Textures are deleted while the context is still current.
	m.Close()
	app.Close()
}
