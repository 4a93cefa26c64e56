// Package assets owns everything loaded for one scene: the texture cache,
// the transcoded meshes and the directory textures are resolved from.
package assets

import (
	"fmt"

	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
)

// Context is created at the start of an import and closed when the scene is
// unloaded. It is not safe for concurrent mutation; the texture cache alone
// may be shared with render workers.
type Context struct {
	Dir      string // texture directory searched for material bindings
	Textures *texture.Cache
	Meshes   []*mesh.Mesh

	// Warnf receives soft failures (missing textures, UV set fallbacks).
	Warnf func(format string, args ...any)

	index *texture.Index
}

// NewContext creates a context whose textures are uploaded through up.
func NewContext(dir string, up texture.Uploader, maxTextureSize int) *Context {
	return &Context{
		Dir:      dir,
		Textures: texture.NewCache(up, maxTextureSize),
	}
}

// Index returns the stem index of Dir, built on first use.
func (c *Context) Index() *texture.Index {
	if c.index == nil {
		c.index = texture.BuildIndex(c.Dir)
	}
	return c.index
}

func (c *Context) warnf(format string, args ...any) {
	if c.Warnf != nil {
		c.Warnf(format, args...)
	}
}

// LoadMesh transcodes src, attaches the bound textures and keeps the mesh in
// the context.
func (c *Context) LoadMesh(src mesh.Source, opts mesh.Options, bindings []Binding) (*mesh.Mesh, error) {
	if opts.Warnf == nil {
		opts.Warnf = c.Warnf
	}
	m, err := mesh.Transcode(src, opts)
	if err != nil {
		return nil, fmt.Errorf("assets: transcode %s: %w", opts.Name, err)
	}
	c.LoadMeshTextures(m, bindings)
	c.Meshes = append(c.Meshes, m)
	return m, nil
}

// LoadMeshTextures runs the texture loader once per binding and attaches the
// results to m. Textures that fail to load are reported through Warnf and
// left unbound; the number attached is returned.
func (c *Context) LoadMeshTextures(m *mesh.Mesh, bindings []Binding) int {
	n := 0
	for _, b := range bindings {
		t, err := c.Textures.LoadOrReuse(b.Path, b.Role)
		if err != nil {
			c.warnf("%s: %v", b.Role, err)
			continue
		}
		m.Textures = append(m.Textures, t)
		n++
	}
	return n
}

// Close releases every texture handle and forgets the meshes.
func (c *Context) Close() {
	c.Textures.Purge()
	c.Meshes = nil
}
