// Package batch renders turntable snapshots of a transcoded mesh.
package batch

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"fbx-pbr-viewer/internal/mathutil"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/postprocess"
	"fbx-pbr-viewer/internal/raster"
	"fbx-pbr-viewer/internal/viewmatrix"
)

// Config holds all shared resources for a snapshot run.
type Config struct {
	Mesh        *mesh.Mesh
	Model       mathutil.Mat4
	OutputDir   string
	RenderSize  int
	Supersample int
	Workers     int
	Views       int
	Pitch       float64 // degrees
	FOV         float64 // degrees
	FillRatio   float64 // 0 keeps the camera framing
	Lights      []raster.PointLight
	LightPos    mathutil.Vec3

	// Progress is where the periodic progress line goes; nil disables it.
	Progress func(done, total int, rate float64)
}

// Result holds the outcome of rendering one view.
type Result struct {
	View    int
	Yaw     float64
	File    string
	Success bool
	Error   string
}

// Yaw returns the turntable angle of view i out of n, in degrees.
func Yaw(i, n int) float64 {
	return 360 * float64(i) / float64(n)
}

// FileName returns the snapshot file name of view i.
func FileName(i int) string {
	return fmt.Sprintf("view_%03d.webp", i)
}

// Run renders all views using a worker pool.
func Run(cfg Config) []Result {
	total := cfg.Views
	results := make([]Result, total)
	if total <= 0 {
		return results
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 && cfg.Progress != nil {
					elapsed := time.Since(start).Seconds()
					cfg.Progress(int(p), total, float64(p)/elapsed)
				}
			}
		}
	}()

	// Frame the bounding box once; every view orbits the same sphere.
	positions := make([]mathutil.Vec3, len(cfg.Mesh.Vertices))
	for i, v := range cfg.Mesh.Vertices {
		positions[i] = mathutil.Vec3{float64(v.Position[0]), float64(v.Position[1]), float64(v.Position[2])}
	}
	bmin, bmax := viewmatrix.Bounds(positions, cfg.Model)

	// Worker pool
	viewChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range viewChan {
				results[idx] = renderView(cfg, idx, bmin, bmax)
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := 0; i < total; i++ {
		viewChan <- i
	}
	close(viewChan)

	wg.Wait()
	close(done)

	return results
}

func renderView(cfg Config, idx int, bmin, bmax mathutil.Vec3) Result {
	res := Result{View: idx, Yaw: Yaw(idx, cfg.Views), File: FileName(idx)}

	ss := max(cfg.Supersample, 1)
	size := cfg.RenderSize * ss
	fov := cfg.FOV
	if fov <= 0 {
		fov = 45
	}

	view := viewmatrix.Orbit(bmin, bmax, res.Yaw, cfg.Pitch, fov, 1)
	img := raster.RenderMesh(cfg.Mesh, raster.Options{
		Width:    size,
		Height:   size,
		Model:    cfg.Model,
		View:     view,
		Lights:   cfg.Lights,
		LightPos: cfg.LightPos,
	})

	// Post-processing: supersample downsample
	if ss > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize, cfg.RenderSize)
	}
	if cfg.FillRatio > 0 {
		img = postprocess.CropAndCenter(img, cfg.RenderSize, cfg.RenderSize, cfg.FillRatio)
	}

	outPath := filepath.Join(cfg.OutputDir, res.File)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := saveWebP(f, img); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Success = true
	return res
}

// saveWebP encodes img into w and closes it. A failed close is an error: it
// is where a short write on a full disk surfaces.
func saveWebP(w io.WriteCloser, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		w.Close()
		return fmt.Errorf("WebP encode: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("WebP close: %w", err)
	}
	return nil
}
