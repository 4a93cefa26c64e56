package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/assets"
	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/mathutil"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
)

// Vec3 is a JSON-friendly 3-vector.
type Vec3 [3]float32

// GL returns v as an mgl32 vector.
func (v Vec3) GL() mgl32.Vec3 { return mgl32.Vec3(v) }

// Float64 returns v as a renderer vector.
func (v Vec3) Float64() mathutil.Vec3 {
	return mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}

// Light is one of the four shader point lights.
type Light struct {
	Position Vec3 `json:"position"`
	Color    Vec3 `json:"color"`
}

// Texture sources.
const (
	SourceConfig   = "config"   // role→path map below
	SourceMaterial = "material" // FBX material bindings resolved in TextureDir
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir        string            `json:"base_dir"`
	Model          string            `json:"model"`
	TextureDir     string            `json:"texture_dir"`
	Textures       map[string]string `json:"textures"` // role → path
	VertexShader   string            `json:"vertex_shader"`
	FragmentShader string            `json:"fragment_shader"`
	OutputDir      string            `json:"output_dir"`

	// Import
	MeshNode       string `json:"mesh_node"` // "" = first mesh node
	UVSet          string `json:"uv_set"`
	Polygons       string `json:"polygons"` // reject | triangulate
	TextureSource  string `json:"texture_source"`
	MaxTextureSize int    `json:"max_texture_size"`

	// Scene
	ModelTranslate *Vec3   `json:"model_translate"`
	ModelScale     Vec3    `json:"model_scale"`
	NodeTransform  bool    `json:"node_transform"` // apply the mesh node's Lcl TRS chain
	CameraPos      *Vec3   `json:"camera_pos"`
	FOV            float32 `json:"fov"`
	LightPos       Vec3    `json:"light_pos"`
	Lights         []Light `json:"lights"`

	// Window
	Width  int `json:"width"`
	Height int `json:"height"`

	// Snapshot settings
	RenderSize  int      `json:"render_size"`
	Supersample int      `json:"supersample"`
	Workers     int      `json:"workers"`
	Views       int      `json:"views"`
	Pitch       *float64 `json:"pitch"`      // turntable elevation, degrees
	FillRatio   float64  `json:"fill_ratio"` // 0 keeps the camera framing
}

// Legacy asset layout the viewer was first written against.
var (
	legacyModel    = filepath.Join("example1", "models", "helios_enemyFighter_geo.fbx")
	legacyTextures = map[texture.Role]string{
		texture.DiffuseMap:  filepath.Join("example1", "images", "helios_enemyfighter_basecolor.png"),
		texture.EmissiveMap: filepath.Join("example1", "images", "helios_enemyfighter_emmisive.png"),
		texture.NormalMap:   filepath.Join("example1", "images", "helios_enemyfighter_normal.png"),
		texture.PBRMap:      filepath.Join("example1", "images", "helios_enemyfighter_pbr.png"),
	}
)

// DefaultLights are the four point lights of the stock helios scene.
func DefaultLights() []Light {
	return []Light{
		{Position: Vec3{-10, 10, 10}, Color: Vec3{20, 20, 20}},
		{Position: Vec3{10, 10, 10}, Color: Vec3{100, 100, 100}},
		{Position: Vec3{-10, -10, 10}, Color: Vec3{20, 20, 20}},
		{Position: Vec3{10, -10, 10}, Color: Vec3{100, 100, 100}},
	}
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.Model != "" {
		c.Model = flags.Model
	}
	if flags.MeshNode != "" {
		c.MeshNode = flags.MeshNode
	}
	if flags.TextureSource != "" {
		c.TextureSource = flags.TextureSource
	}
	if flags.Polygons != "" {
		c.Polygons = flags.Polygons
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Views > 0 {
		c.Views = flags.Views
	}
	if flags.Size > 0 {
		c.RenderSize = flags.Size
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.Model == "" {
		c.Model = legacyModel
	}
	c.Model = c.abs(c.Model)

	if c.TextureDir == "" {
		c.TextureDir = filepath.Join(filepath.Dir(filepath.Dir(c.Model)), "images")
	} else {
		c.TextureDir = c.abs(c.TextureDir)
	}

	if len(c.Textures) == 0 {
		c.Textures = make(map[string]string, len(legacyTextures))
		for r, p := range legacyTextures {
			c.Textures[string(r)] = p
		}
	}
	for r, p := range c.Textures {
		if p != "" {
			c.Textures[r] = c.abs(p)
		}
	}

	if c.VertexShader != "" {
		c.VertexShader = c.abs(c.VertexShader)
	}
	if c.FragmentShader != "" {
		c.FragmentShader = c.abs(c.FragmentShader)
	}

	if c.OutputDir == "" {
		c.OutputDir = c.abs("snapshots")
	} else {
		c.OutputDir = c.abs(c.OutputDir)
	}

	// Import defaults
	if c.UVSet == "" {
		c.UVSet = mesh.DefaultUVSet
	}
	if c.Polygons == "" {
		c.Polygons = mesh.Reject.String()
	}
	if c.TextureSource == "" {
		c.TextureSource = SourceConfig
	}

	// Scene defaults
	if c.ModelTranslate == nil {
		c.ModelTranslate = &Vec3{0, -15.75, -6}
	}
	if c.ModelScale == (Vec3{}) {
		c.ModelScale = Vec3{0.02, 0.02, 0.02}
	}
	if c.CameraPos == nil {
		c.CameraPos = &Vec3{0, 0, 3}
	}
	if c.FOV <= 0 {
		c.FOV = 45
	}
	if c.LightPos == (Vec3{}) {
		c.LightPos = Vec3{-1000.5, 1200.5, -300.3}
	}
	if len(c.Lights) == 0 {
		c.Lights = DefaultLights()
	}

	// Window defaults
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 800
	}

	// Defaults for render settings
	if c.RenderSize <= 0 {
		c.RenderSize = 512
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Views <= 0 {
		c.Views = 8
	}
	if c.Pitch == nil {
		p := 20.0
		c.Pitch = &p
	}
	if c.FillRatio < 0 || c.FillRatio > 1 {
		c.FillRatio = 0
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	if _, err := mesh.ParsePolygonPolicy(c.Polygons); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.TextureSource != SourceConfig && c.TextureSource != SourceMaterial {
		return fmt.Errorf("config: texture_source must be %q or %q, got %q", SourceConfig, SourceMaterial, c.TextureSource)
	}
	if _, err := c.TexturePaths(); err != nil {
		return err
	}
	if len(c.Lights) != 4 {
		return fmt.Errorf("config: need exactly 4 lights, got %d", len(c.Lights))
	}
	return nil
}

// TexturePaths returns the configured role→path map.
func (c *Config) TexturePaths() (map[texture.Role]string, error) {
	out := make(map[texture.Role]string, len(c.Textures))
	for name, p := range c.Textures {
		r, err := texture.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("config: textures: %w", err)
		}
		out[r] = p
	}
	return out, nil
}

// PolygonPolicy returns the parsed polygon policy; call Validate first.
func (c *Config) PolygonPolicy() mesh.PolygonPolicy {
	p, _ := mesh.ParsePolygonPolicy(c.Polygons)
	return p
}

// ModelOptions returns the import settings for assets.LoadModel; call
// Validate first.
func (c *Config) ModelOptions(warnf func(format string, args ...any)) assets.ModelOptions {
	paths, _ := c.TexturePaths()
	return assets.ModelOptions{
		Path:           c.Model,
		MeshNode:       c.MeshNode,
		UVSet:          c.UVSet,
		Polygons:       c.PolygonPolicy(),
		FromMaterial:   c.TextureSource == SourceMaterial,
		Textures:       paths,
		TextureDir:     c.TextureDir,
		MaxTextureSize: c.MaxTextureSize,
		Warnf:          warnf,
	}
}

// ModelMatrix returns translate × scale, the model transform of the viewer.
func (c *Config) ModelMatrix() mathutil.Mat4 {
	return mathutil.Mat4Mul(mathutil.Translate(c.ModelTranslate.Float64()), mathutil.Scale(c.ModelScale.Float64()))
}

// WorldMatrix places the control points of node in the scene. By default
// they are drawn raw under ModelMatrix, which is what the legacy translate
// and scale were tuned for. With NodeTransform the node's world matrix is
// applied first; it ignores PreRotation and pivots.
func (c *Config) WorldMatrix(node *fbx.Node) mathutil.Mat4 {
	if !c.NodeTransform || node == nil {
		return c.ModelMatrix()
	}
	return mathutil.Mat4Mul(c.ModelMatrix(), node.WorldMatrix())
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir       string
	Model         string
	MeshNode      string
	TextureSource string
	Polygons      string
	OutputDir     string
	Workers       int
	Views         int
	Size          int
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, "example1")); err == nil {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, "example1")); err == nil {
		return cwd
	}

	// Try parent of cwd (if we're in cmd/)
	parent := filepath.Dir(cwd)
	if _, err := os.Stat(filepath.Join(parent, "example1")); err == nil {
		return parent
	}

	return ""
}
