package viewer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/go-gl/gl/v4.1-core/gl"

	"fbx-pbr-viewer/internal/texture"
)

// GLUploader uploads textures to the current OpenGL context. It must only be
// used from the thread that owns the context.
type GLUploader struct{}

// Upload creates a mipmapped, repeating RGBA texture from img.
func (GLUploader) Upload(img *image.NRGBA, role texture.Role) (uint32, error) {
	b := img.Bounds()
	if b.Empty() {
		return 0, fmt.Errorf("viewer: empty %s image", role)
	}

	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)

	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(b.Dx()), int32(b.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)

	return texID, nil
}

// Release deletes the texture.
func (GLUploader) Release(handle uint32) {
	gl.DeleteTextures(1, &handle)
}

// fallbackColor is bound to a role whose texture failed to load: mid grey
// albedo, no emission, a flat normal and a rough dielectric with full AO.
var fallbackColor = map[texture.Role]color.NRGBA{
	texture.DiffuseMap:  {128, 128, 128, 255},
	texture.EmissiveMap: {0, 0, 0, 255},
	texture.NormalMap:   {128, 128, 255, 255},
	texture.PBRMap:      {0, 128, 255, 255},
}

// fallbackTextures creates one 1x1 texture per role, indexed by unit.
func fallbackTextures() ([]uint32, error) {
	out := make([]uint32, len(texture.Roles))
	for unit, r := range texture.Roles {
		img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
		img.SetNRGBA(0, 0, fallbackColor[r])
		id, err := GLUploader{}.Upload(img, r)
		if err != nil {
			return nil, err
		}
		out[unit] = id
	}
	return out, nil
}
