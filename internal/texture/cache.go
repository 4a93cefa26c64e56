package texture

import (
	"errors"
	"fmt"
	"sync"
)

// ErrAssetLoad marks a texture that could not be read, decoded or uploaded.
// It is a soft failure: the caller leaves that texture unit unbound.
var ErrAssetLoad = errors.New("texture: asset load failure")

// Cache holds every texture loaded for one scene, keyed by the exact path
// string. Entries live until Purge.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]*Texture
	order    []*Texture
	uploader Uploader
	maxSize  int
}

// NewCache creates an empty cache. Images larger than maxSize on either side
// are downscaled before upload; 0 keeps the original size.
func NewCache(up Uploader, maxSize int) *Cache {
	return &Cache{
		items:    make(map[string]*Texture),
		uploader: up,
		maxSize:  maxSize,
	}
}

// LoadOrReuse returns the texture for path, loading and uploading it on first
// use. A hit returns the cached entry unchanged, so its original role is kept
// even when role differs. Failed loads are not cached.
func (c *Cache) LoadOrReuse(path string, role Role) (*Texture, error) {
	// Fast path: read lock
	c.mu.RLock()
	if t, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return t, nil
	}
	c.mu.RUnlock()

	// Slow path: decode outside the lock
	img, err := LoadTexture(path, c.maxSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.items[path]; ok {
		return t, nil
	}
	handle, err := c.uploader.Upload(img, role)
	if err != nil {
		return nil, fmt.Errorf("%w: upload %s: %w", ErrAssetLoad, path, err)
	}
	t := &Texture{Handle: handle, Role: role, Path: path, Image: img}
	c.items[path] = t
	c.order = append(c.order, t)
	return t, nil
}

// Lookup returns the cached texture for path without loading it.
func (c *Cache) Lookup(path string) (*Texture, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.items[path]
	return t, ok
}

// Len returns the number of cached textures.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Textures returns the cached textures in load order.
func (c *Cache) Textures() []*Texture {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Texture(nil), c.order...)
}

// Purge releases every handle and empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.order {
		c.uploader.Release(t.Handle)
	}
	c.items = make(map[string]*Texture)
	c.order = nil
}
