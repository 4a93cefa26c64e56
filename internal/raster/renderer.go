// Package raster is the headless software renderer. It shades with the same
// Cook-Torrance model as the interactive viewer's fragment shader.
package raster

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"fbx-pbr-viewer/internal/mathutil"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
	"fbx-pbr-viewer/internal/viewmatrix"
)

// Options configures one software render.
type Options struct {
	Width, Height int
	Model         mathutil.Mat4
	View          viewmatrix.View
	Lights        []PointLight
	LightPos      mathutil.Vec3
}

// MaterialFor builds the shading material from a mesh's attached textures.
func MaterialFor(m *mesh.Mesh) Material {
	mat := DefaultMaterial()
	if t := m.Texture(texture.DiffuseMap); t != nil {
		mat.Albedo = t.Image
	}
	if t := m.Texture(texture.EmissiveMap); t != nil {
		mat.Emissive = t.Image
	}
	if t := m.Texture(texture.NormalMap); t != nil {
		mat.Normal = t.Image
	}
	if t := m.Texture(texture.PBRMap); t != nil {
		mat.PBR = t.Image
	}
	return mat
}

// RenderMesh renders m to a transparent NRGBA image.
func RenderMesh(m *mesh.Mesh, opts Options) *image.NRGBA {
	fb := NewFrameBuffer(opts.Width, opts.Height)
	if len(m.Vertices) == 0 || opts.Width <= 0 || opts.Height <= 0 {
		return fb.Image()
	}

	positions := make([]mathutil.Vec3, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = vec3(v.Position)
	}
	mvp := mathutil.Mat4Mul(opts.View.Projection, mathutil.Mat4Mul(opts.View.View, opts.Model))
	px, py, pz, pw := viewmatrix.ProjectVertices(positions, mvp, opts.Width, opts.Height)

	normalMat := opts.Model.NormalMatrix()
	corners := make([]Corner, len(m.Vertices))
	for i, v := range m.Vertices {
		corners[i] = Corner{
			X: px[i], Y: py[i], Z: pz[i], InvW: pw[i],
			World:  opts.Model.MulPoint(positions[i]),
			Normal: normalMat.MulVec3(vec3(v.Normal)).Normalize(),
			U:      float64(v.TexCoords[0]),
			V:      float64(v.TexCoords[1]),
		}
	}

	mat := MaterialFor(m)
	lt := NewLighting(opts.Lights, opts.LightPos, opts.View.Eye)
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if int(a) >= len(corners) || int(b) >= len(corners) || int(c) >= len(corners) {
			continue
		}
		RasterizeTriangle(fb, [3]Corner{corners[a], corners[b], corners[c]}, &mat, &lt)
	}
	return fb.Image()
}

func vec3(v mgl32.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
