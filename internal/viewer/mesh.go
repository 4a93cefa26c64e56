package viewer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"fbx-pbr-viewer/internal/mesh"
)

// GPUMesh is a mesh uploaded to vertex and index buffers.
type GPUMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	textures      []textureBinding
}

type textureBinding struct {
	unit   uint32
	handle uint32
}

// UploadMesh copies m's vertices and indices to the GPU. The attribute
// layout is position (0), normal (1), texture coordinate (2).
func UploadMesh(m *mesh.Mesh) *GPUMesh {
	g := &GPUMesh{indexCount: int32(len(m.Indices))}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return g
	}

	stride := int32(unsafe.Sizeof(mesh.Vertex{}))

	gl.GenVertexArrays(1, &g.vao)
	gl.GenBuffers(1, &g.vbo)
	gl.GenBuffers(1, &g.ebo)

	gl.BindVertexArray(g.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(mesh.Vertex{}.Position))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(mesh.Vertex{}.Normal))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, unsafe.Offsetof(mesh.Vertex{}.TexCoords))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	for _, t := range m.Textures {
		if unit := t.Role.Unit(); unit >= 0 {
			g.textures = append(g.textures, textureBinding{unit: uint32(unit), handle: t.Handle})
		}
	}
	return g
}

// Draw binds the mesh textures over the fallbacks and draws the triangles.
func (g *GPUMesh) Draw(fallback []uint32) {
	if g.vao == 0 {
		return
	}
	for unit, h := range fallback {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, h)
	}
	for _, t := range g.textures {
		gl.ActiveTexture(gl.TEXTURE0 + t.unit)
		gl.BindTexture(gl.TEXTURE_2D, t.handle)
	}

	gl.BindVertexArray(g.vao)
	gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// Delete frees the GPU buffers. Textures are owned by the texture cache.
func (g *GPUMesh) Delete() {
	if g.vao == 0 {
		return
	}
	gl.DeleteVertexArrays(1, &g.vao)
	gl.DeleteBuffers(1, &g.vbo)
	gl.DeleteBuffers(1, &g.ebo)
	g.vao = 0
}
