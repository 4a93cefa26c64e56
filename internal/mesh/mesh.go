// Package mesh turns imported polygon geometry into the flat vertex/index
// layout the renderers draw.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/texture"
)

// Vertex is one polygon corner. TexCoords has V flipped relative to FBX.
type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	TexCoords mgl32.Vec2
}

// Mesh is renderer-ready geometry. Vertices are never shared between
// corners, so Indices is always 0..len(Vertices)-1.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
	Textures []*texture.Texture
}

// Texture returns the first attached texture with the given role, or nil.
func (m *Mesh) Texture(role texture.Role) *texture.Texture {
	for _, t := range m.Textures {
		if t.Role == role {
			return t
		}
	}
	return nil
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the vertex positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for k := 0; k < 3; k++ {
			if v.Position[k] < min[k] {
				min[k] = v.Position[k]
			}
			if v.Position[k] > max[k] {
				max[k] = v.Position[k]
			}
		}
	}
	return
}
