package shaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedShadersDeclareUniforms(t *testing.T) {
	for _, n := range []string{Projection, View, Model} {
		if !strings.Contains(Vertex, "uniform mat4 "+n+";") {
			t.Errorf("vertex shader: uniform %q not declared", n)
		}
	}
	for _, n := range []string{CamPos, LightPos} {
		if !strings.Contains(Fragment, "uniform vec3 "+n+";") {
			t.Errorf("fragment shader: uniform %q not declared", n)
		}
	}
	for _, decl := range []string{"lightPositions[4]", "lightColors[4]"} {
		if !strings.Contains(Fragment, "uniform vec3 "+decl+";") {
			t.Errorf("array %q not declared", decl)
		}
	}
	for _, s := range Samplers() {
		if !strings.Contains(Fragment, "uniform sampler2D "+s+";") {
			t.Errorf("sampler %q not declared", s)
		}
	}
}

func TestUniformNames(t *testing.T) {
	if got := LightPosition(3); got != "lightPositions[3]" {
		t.Errorf("LightPosition(3) = %q", got)
	}
	if got := LightColor(0); got != "lightColors[0]" {
		t.Errorf("LightColor(0) = %q", got)
	}
	want := []string{"diffuseMap", "emissiveMap", "normalMap", "pbrMap"}
	got := Samplers()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sampler unit %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSourcesOverride(t *testing.T) {
	vs, fs, err := Sources("", "")
	if err != nil || vs != Vertex || fs != Fragment {
		t.Fatalf("defaults not returned: %v", err)
	}

	path := filepath.Join(t.TempDir(), "custom.fs")
	if err := os.WriteFile(path, []byte("#version 410 core\n"), 0644); err != nil {
		t.Fatal(err)
	}
	vs, fs, err = Sources("", path)
	if err != nil {
		t.Fatal(err)
	}
	if vs != Vertex || fs != "#version 410 core\n" {
		t.Error("fragment override not applied")
	}

	if _, _, err := Sources(filepath.Join(t.TempDir(), "missing.vs"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
