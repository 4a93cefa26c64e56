package texture

import (
	"fmt"
	"image"
	"sync"
)

// Role is the semantic slot a texture is bound to in the PBR shader.
type Role string

const (
	DiffuseMap  Role = "diffuseMap"
	EmissiveMap Role = "emissiveMap"
	NormalMap   Role = "normalMap"
	PBRMap      Role = "pbrMap" // R = metallic, G = roughness, B = ambient occlusion
)

// Roles lists the shader slots in texture unit order.
var Roles = []Role{DiffuseMap, EmissiveMap, NormalMap, PBRMap}

// ParseRole accepts one of the four role names.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("texture: unknown role %q", s)
}

// Unit returns the texture unit the role is sampled from, or -1.
func (r Role) Unit() int {
	for i, x := range Roles {
		if x == r {
			return i
		}
	}
	return -1
}

// Texture is a decoded image that has been handed to an Uploader. Image keeps
// the CPU copy for the software renderer and exporters.
type Texture struct {
	Handle uint32
	Role   Role
	Path   string
	Image  *image.NRGBA
}

// Uploader moves decoded images to wherever they are sampled from and hands
// back a handle. The GL viewer uploads to the GPU; headless tools use
// MemoryUploader.
type Uploader interface {
	Upload(img *image.NRGBA, role Role) (uint32, error)
	Release(handle uint32)
}

// MemoryUploader issues sequential handles for images that stay in memory.
type MemoryUploader struct {
	mu   sync.Mutex
	next uint32
	live map[uint32]bool
}

func (u *MemoryUploader) Upload(img *image.NRGBA, role Role) (uint32, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.live == nil {
		u.live = make(map[uint32]bool)
	}
	u.next++
	u.live[u.next] = true
	return u.next, nil
}

func (u *MemoryUploader) Release(handle uint32) {
	u.mu.Lock()
	delete(u.live, handle)
	u.mu.Unlock()
}

// Live returns the number of handles not yet released.
func (u *MemoryUploader) Live() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.live)
}
