// Package shaders holds the PBR shader sources and the uniform names the
// viewer writes every frame.
package shaders

import (
	_ "embed"
	"fmt"
	"os"

	"fbx-pbr-viewer/internal/texture"
)

//go:embed pbr.vs
var Vertex string

//go:embed pbr.fs
var Fragment string

// Uniform names.
const (
	Projection     = "projection"
	View           = "view"
	Model          = "model"
	CamPos         = "camPos"
	LightPos       = "lightPos"
	LightPositions = "lightPositions[%d]"
	LightColors    = "lightColors[%d]"
)

// LightCount is the size of the light uniform arrays.
const LightCount = 4

// LightPosition returns the uniform name of light i's position.
func LightPosition(i int) string { return fmt.Sprintf(LightPositions, i) }

// LightColor returns the uniform name of light i's color.
func LightColor(i int) string { return fmt.Sprintf(LightColors, i) }

// Samplers returns the sampler uniform of every texture unit.
func Samplers() []string {
	names := make([]string, len(texture.Roles))
	for i, r := range texture.Roles {
		names[i] = string(r)
	}
	return names
}

// Sources returns the vertex and fragment sources at the given paths. An
// empty path selects the embedded default.
func Sources(vsPath, fsPath string) (vs, fs string, err error) {
	vs, fs = Vertex, Fragment
	if vsPath != "" {
		data, err := os.ReadFile(vsPath)
		if err != nil {
			return "", "", fmt.Errorf("shaders: read vertex shader: %w", err)
		}
		vs = string(data)
	}
	if fsPath != "" {
		data, err := os.ReadFile(fsPath)
		if err != nil {
			return "", "", fmt.Errorf("shaders: read fragment shader: %w", err)
		}
		fs = string(data)
	}
	return vs, fs, nil
}
