package assets

import (
	"fmt"

	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
)

// ModelOptions selects the mesh to import and where its textures come from.
type ModelOptions struct {
	Path           string
	MeshNode       string // "" = first mesh node
	UVSet          string
	Polygons       mesh.PolygonPolicy
	FromMaterial   bool // resolve the FBX material bindings instead of Textures
	Textures       map[texture.Role]string
	TextureDir     string
	MaxTextureSize int
	Warnf          func(format string, args ...any)

	// OnImport, when set, sees the imported scene before the mesh node is
	// selected and transcoded.
	OnImport func(*fbx.Scene)
}

// Model is an imported scene with its selected mesh transcoded and textured.
type Model struct {
	Scene   *fbx.Scene
	Node    *fbx.Node
	Mesh    *mesh.Mesh
	Context *Context
}

// Close releases the model's textures.
func (m *Model) Close() {
	m.Context.Close()
}

// LoadModel imports the FBX file, transcodes the selected mesh node and
// loads its textures through up. Import and transcode errors are fatal;
// texture failures are reported through Warnf.
func LoadModel(opts ModelOptions, up texture.Uploader) (*Model, error) {
	scene, err := fbx.Load(opts.Path)
	if err != nil {
		return nil, err
	}
	if opts.OnImport != nil {
		opts.OnImport(scene)
	}
	return LoadNode(scene, opts, up)
}

// LoadNode selects the mesh node of an already imported scene, transcodes it
// and loads its textures.
func LoadNode(scene *fbx.Scene, opts ModelOptions, up texture.Uploader) (*Model, error) {
	node := scene.FindMeshNode(opts.MeshNode)
	if node == nil {
		if opts.MeshNode == "" {
			return nil, fmt.Errorf("assets: %s has no mesh", opts.Path)
		}
		return nil, fmt.Errorf("assets: %s has no mesh node %q", opts.Path, opts.MeshNode)
	}

	ctx := NewContext(opts.TextureDir, up, opts.MaxTextureSize)
	ctx.Warnf = opts.Warnf

	var bindings []Binding
	if opts.FromMaterial {
		bindings = ctx.materialBindings(node)
	} else {
		bindings = BindingsFromConfig(opts.Textures)
	}

	m, err := ctx.LoadMesh(node.Mesh(), mesh.Options{
		Name:     node.Name,
		UVSet:    opts.UVSet,
		Polygons: opts.Polygons,
	}, bindings)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	return &Model{Scene: scene, Node: node, Mesh: m, Context: ctx}, nil
}

// materialBindings uses the first material of node that resolves any
// texture.
func (c *Context) materialBindings(node *fbx.Node) []Binding {
	for _, mat := range node.Materials {
		b, missing := BindingsFromMaterial(mat, c.Index())
		for _, f := range missing {
			c.warnf("material %s: texture %s not found in %s", mat.Name, f, c.Dir)
		}
		if len(b) > 0 {
			return b
		}
	}
	c.warnf("%s: no material textures resolved", node.Name)
	return nil
}
