// Package export writes transcoded meshes as binary glTF.
package export

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
)

// Generator is recorded in the asset header of exported files.
const Generator = "fbx-pbr-viewer"

// Document builds a glTF document holding m as a single-primitive mesh.
// Diffuse, emissive and normal textures are embedded as PNG.
func Document(m *mesh.Mesh) (*gltf.Document, error) {
	if len(m.Vertices) == 0 {
		return nil, fmt.Errorf("export: mesh %q has no vertices", m.Name)
	}

	positions := make([][3]float32, len(m.Vertices))
	normals := make([][3]float32, len(m.Vertices))
	uvs := make([][2]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		positions[i] = v.Position
		normals[i] = v.Normal
		// glTF puts the UV origin at the top-left; stored V is -v.
		uvs[i] = [2]float32{v.TexCoords[0], 1 + v.TexCoords[1]}
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator

	posAccessor := modeler.WritePosition(doc, positions)
	normalAccessor := modeler.WriteNormal(doc, normals)
	uvAccessor := modeler.WriteTextureCoord(doc, uvs)
	indicesAccessor := modeler.WriteIndices(doc, m.Indices)

	prim := &gltf.Primitive{
		Attributes: gltf.Attribute{
			gltf.POSITION:   posAccessor,
			gltf.NORMAL:     normalAccessor,
			gltf.TEXCOORD_0: uvAccessor,
		},
		Indices: gltf.Index(indicesAccessor),
	}

	material, err := buildMaterial(doc, m)
	if err != nil {
		return nil, err
	}
	doc.Materials = []*gltf.Material{material}
	prim.Material = gltf.Index(0)

	doc.Meshes = []*gltf.Mesh{{Name: m.Name, Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: m.Name, Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)
	return doc, nil
}

// Save writes m to path as a .glb file.
func Save(m *mesh.Mesh, path string) error {
	doc, err := Document(m)
	if err != nil {
		return err
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func buildMaterial(doc *gltf.Document, m *mesh.Mesh) (*gltf.Material, error) {
	material := &gltf.Material{
		Name: m.Name,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(0.5),
		},
		AlphaMode: gltf.AlphaOpaque,
	}

	if t := m.Texture(texture.DiffuseMap); t != nil {
		idx, err := embedTexture(doc, t)
		if err != nil {
			return nil, err
		}
		material.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: idx}
	}
	if t := m.Texture(texture.EmissiveMap); t != nil {
		idx, err := embedTexture(doc, t)
		if err != nil {
			return nil, err
		}
		material.EmissiveTexture = &gltf.TextureInfo{Index: idx}
		for k := range material.EmissiveFactor {
			material.EmissiveFactor[k] = 1
		}
	}
	if t := m.Texture(texture.NormalMap); t != nil {
		idx, err := embedTexture(doc, t)
		if err != nil {
			return nil, err
		}
		material.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(idx)}
	}
	return material, nil
}

// embedTexture stores the decoded texture as a PNG buffer view and returns
// the glTF texture index.
func embedTexture(doc *gltf.Document, t *texture.Texture) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, t.Image); err != nil {
		return 0, fmt.Errorf("export: encode %s: %w", t.Path, err)
	}
	img, err := modeler.WriteImage(doc, string(t.Role)+".png", "image/png", &buf)
	if err != nil {
		return 0, fmt.Errorf("export: embed %s: %w", t.Path, err)
	}
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(img)})
	return len(doc.Textures) - 1, nil
}
