package assets

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"fbx-pbr-viewer/internal/fbx"
	"fbx-pbr-viewer/internal/mathutil"
	"fbx-pbr-viewer/internal/mesh"
	"fbx-pbr-viewer/internal/texture"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func triangle() *fbx.Mesh {
	return fbx.NewMesh("tri", []mathutil.Vec3{{}, {1, 0, 0}, {0, 1, 0}}, [][]int{{0, 1, 2}})
}

func TestLoadMeshAttachesTexturesInRoleOrder(t *testing.T) {
	dir := t.TempDir()
	paths := map[texture.Role]string{}
	for _, r := range texture.Roles {
		p := filepath.Join(dir, string(r)+".png")
		writePNG(t, p)
		paths[r] = p
	}

	up := &texture.MemoryUploader{}
	ctx := NewContext(dir, up, 0)
	m, err := ctx.LoadMesh(triangle(), mesh.Options{Name: "tri"}, BindingsFromConfig(paths))
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Textures) != 4 {
		t.Fatalf("got %d textures, want 4", len(m.Textures))
	}
	for i, r := range texture.Roles {
		if m.Textures[i].Role != r || m.Texture(r) == nil {
			t.Errorf("texture %d role = %s, want %s", i, m.Textures[i].Role, r)
		}
	}
	if len(ctx.Meshes) != 1 {
		t.Errorf("context meshes = %d", len(ctx.Meshes))
	}

	ctx.Close()
	if up.Live() != 0 || ctx.Textures.Len() != 0 || ctx.Meshes != nil {
		t.Errorf("after close: live %d, cached %d", up.Live(), ctx.Textures.Len())
	}
}

func TestLoadMeshSharesTexturesAcrossMeshes(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "shared.png")
	writePNG(t, p)

	ctx := NewContext(dir, &texture.MemoryUploader{}, 0)
	b := []Binding{{Role: texture.DiffuseMap, Path: p}}
	a, err := ctx.LoadMesh(triangle(), mesh.Options{}, b)
	if err != nil {
		t.Fatal(err)
	}
	c, err := ctx.LoadMesh(triangle(), mesh.Options{}, b)
	if err != nil {
		t.Fatal(err)
	}
	if a.Textures[0] != c.Textures[0] || ctx.Textures.Len() != 1 {
		t.Error("texture not shared between meshes")
	}
}

func TestMissingTextureIsSoft(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writePNG(t, good)

	var warnings []string
	ctx := NewContext(dir, &texture.MemoryUploader{}, 0)
	ctx.Warnf = func(format string, args ...any) { warnings = append(warnings, fmt.Sprintf(format, args...)) }

	m, err := ctx.LoadMesh(triangle(), mesh.Options{}, []Binding{
		{Role: texture.DiffuseMap, Path: good},
		{Role: texture.NormalMap, Path: filepath.Join(dir, "nope.png")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Textures) != 1 || m.Texture(texture.NormalMap) != nil {
		t.Errorf("textures = %v", m.Textures)
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %q", warnings)
	}
}

func TestBindingsFromConfigSkipsEmpty(t *testing.T) {
	got := BindingsFromConfig(map[texture.Role]string{
		texture.PBRMap:     "pbr.png",
		texture.DiffuseMap: "base.png",
		texture.NormalMap:  "",
	})
	if len(got) != 2 || got[0].Role != texture.DiffuseMap || got[1].Role != texture.PBRMap {
		t.Errorf("bindings = %+v", got)
	}
}

func TestBindingsFromMaterial(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "helios_basecolor.png"))
	writePNG(t, filepath.Join(dir, "helios_normal.png"))

	mat := &fbx.Material{Name: "hull", Textures: []fbx.TextureBinding{
		{Property: "DiffuseColor", File: `D:\work\textures\helios_basecolor.tga`},
		{Property: "NormalMap", File: "D:/work/textures/helios_normal.png"},
		{Property: "EmissiveColor", File: "D:/work/textures/helios_emissive.png"},
	}}
	got, missing := BindingsFromMaterial(mat, texture.BuildIndex(dir))
	if len(got) != 2 || got[0].Role != texture.DiffuseMap || got[1].Role != texture.NormalMap {
		t.Fatalf("bindings = %+v", got)
	}
	if filepath.Base(got[0].Path) != "helios_basecolor.png" {
		t.Errorf("diffuse path = %s", got[0].Path)
	}
	if len(missing) != 1 || missing[0] != "D:/work/textures/helios_emissive.png" {
		t.Errorf("missing = %v", missing)
	}
}

func TestBindingsFromMaterialSkipsUnpackedPBRSources(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"hull_spec.png", "hull_metal.png", "hull_rough.png", "hull_pbr.png"} {
		writePNG(t, filepath.Join(dir, name))
	}
	idx := texture.BuildIndex(dir)

	mat := &fbx.Material{Name: "hull", Textures: []fbx.TextureBinding{
		{Property: "SpecularColor", File: "hull_spec.png"},
		{Property: "Maya|metalness", File: "hull_metal.png"},
		{Property: "Maya|specularRoughness", File: "hull_rough.png"},
	}}
	got, missing := BindingsFromMaterial(mat, idx)
	if len(got) != 0 || len(missing) != 0 {
		t.Fatalf("bindings = %+v, missing = %v", got, missing)
	}

	mat.Textures = append(mat.Textures, fbx.TextureBinding{Property: "Maya|TEX_pbr_map", File: "hull_pbr.png"})
	got, _ = BindingsFromMaterial(mat, idx)
	if len(got) != 1 || got[0].Role != texture.PBRMap || filepath.Base(got[0].Path) != "hull_pbr.png" {
		t.Errorf("bindings = %+v", got)
	}
}
