package assets

import (
	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/texture"
)

// Binding asks for the image at Path to be attached under Role.
type Binding struct {
	Role texture.Role
	Path string
}

// BindingsFromConfig turns a role→path map into bindings in texture unit
// order. Roles without a path are skipped.
func BindingsFromConfig(paths map[texture.Role]string) []Binding {
	var out []Binding
	for _, r := range texture.Roles {
		if p := paths[r]; p != "" {
			out = append(out, Binding{Role: r, Path: p})
		}
	}
	return out
}

// materialProperties lists, per role, the material properties exporters use
// for it, most common first. pbrMap packs metallic, roughness and AO into
// R, G and B, so only properties that carry that packed image qualify;
// single-channel metalness or specular textures would be misread.
var materialProperties = map[texture.Role][]string{
	texture.DiffuseMap: {
		"DiffuseColor", "Maya|baseColor", "Maya|TEX_color_map", "3dsMax|Parameters|base_color_map",
	},
	texture.EmissiveMap: {
		"EmissiveColor", "Maya|emissionColor", "Maya|TEX_emissive_map", "3dsMax|Parameters|emit_color_map",
	},
	texture.NormalMap: {
		"NormalMap", "Bump", "Maya|normalCamera", "Maya|TEX_normal_map", "3dsMax|Parameters|bump_map",
	},
	texture.PBRMap: {
		"Maya|TEX_pbr_map",
	},
}

// BindingsFromMaterial resolves the texture files recorded in an FBX
// material against the local texture index. Files are matched by stem, so
// absolute paths from the authoring machine still resolve. The second result
// lists recorded files that could not be found.
func BindingsFromMaterial(mat *fbx.Material, idx *texture.Index) ([]Binding, []string) {
	var out []Binding
	var missing []string
	if mat == nil {
		return nil, nil
	}
	for _, r := range texture.Roles {
		for _, prop := range materialProperties[r] {
			file := mat.Texture(prop)
			if file == "" {
				continue
			}
			if p, ok := idx.ResolvePath(file); ok {
				out = append(out, Binding{Role: r, Path: p})
			} else {
				missing = append(missing, file)
			}
			break
		}
	}
	return out, missing
}
