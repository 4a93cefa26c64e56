package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fbx-pbr-viewer/internal/assets"
	"fbx-pbr-viewer/internal/batch"
	"fbx-pbr-viewer/internal/config"
	"fbx-pbr-viewer/internal/raster"
	"fbx-pbr-viewer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: auto-detect)")
	model := flag.String("model", "", "FBX file (default: example1/models/helios_enemyFighter_geo.fbx)")
	meshNode := flag.String("mesh", "", "Mesh node name (default: first mesh)")
	texSource := flag.String("textures", "", "Texture source: config or material")
	polygons := flag.String("polygons", "", "Non-triangle polygons: reject or triangulate")
	outputDir := flag.String("output", "", "Output directory (default: snapshots)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	views := flag.Int("views", 0, "Number of turntable views (default: 8)")
	size := flag.Int("size", 0, "Output image size in pixels (default: 512)")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		DataDir:       *dataDir,
		Model:         *model,
		MeshNode:      *meshNode,
		TextureSource: *texSource,
		Polygons:      *polygons,
		OutputDir:     *outputDir,
		Workers:       *workers,
		Views:         *views,
		Size:          *size,
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

	lights := make([]raster.PointLight, len(cfg.Lights))
	for i, l := range cfg.Lights {
		lights[i] = raster.PointLight{Position: l.Position.Float64(), Color: l.Color.Float64()}
	}

	fmt.Printf("FBX → WebP turntable: %s\n", filepath.Base(cfg.Model))
	fmt.Printf("Mesh: %s, %d triangles, %d textures\n", m.Node.Name, m.Mesh.Triangles(), len(m.Mesh.Textures))
	fmt.Printf("Views: %d, Size: %d (x%d), Workers: %d\n", cfg.Views, cfg.RenderSize, cfg.Supersample, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		Mesh:        m.Mesh,
		Model:       cfg.WorldMatrix(m.Node),
		OutputDir:   cfg.OutputDir,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Views:       cfg.Views,
		Pitch:       *cfg.Pitch,
		FOV:         float64(cfg.FOV),
		FillRatio:   cfg.FillRatio,
		Lights:      lights,
		LightPos:    cfg.LightPos.Float64(),
		Progress: func(done, total int, rate float64) {
			fmt.Printf("  [%d/%d] %.1f views/sec\n", done, total, rate)
		},
	})

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
			continue
		}
		failed++
		fmt.Printf("  %s: %s\n", r.File, r.Error)
	}
	fmt.Printf("Rendered: %d/%d\n", success, len(results))

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	manifest := batch.Manifest{
		Model:     cfg.Model,
		Mesh:      m.Node.Name,
		Triangles: m.Mesh.Triangles(),
		Size:      cfg.RenderSize,
		Pitch:     *cfg.Pitch,
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := batch.WriteManifest(manifestPath, manifest, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		m.Close()
		os.Exit(1)
	}
}
