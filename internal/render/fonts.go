// Package render composes receipt bitmaps: text layout, multi-column rows,
// dashed rules, and embedded images on a fixed-width canvas that is cropped
// to its content height.
package render

import (
	"fmt"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

type fontKey struct {
	path string
	size float64
}

// FontCache loads font faces keyed by (path, size). Lookups after warm-up
// are read-only; population is guarded so the cache can be shared across
// concurrent render calls.
type FontCache struct {
	mu    sync.Mutex
	faces map[fontKey]font.Face
}

// NewFontCache creates an empty cache.
func NewFontCache() *FontCache {
	return &FontCache{faces: make(map[fontKey]font.Face)}
}

// Face returns the face for the given font file at the given pixel size.
// An empty path selects a builtin bitmap face, which keeps rendering
// deterministic in environments without font files.
func (c *FontCache) Face(path string, size float64) (font.Face, error) {
	if path == "" {
		return basicfont.Face7x13, nil
	}

	key := fontKey{path: path, size: size}

	c.mu.Lock()
	defer c.mu.Unlock()

	if face, ok := c.faces[key]; ok {
		return face, nil
	}

	face, err := gg.LoadFontFace(path, size)
	if err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", path, err)
	}

	c.faces[key] = face
	return face, nil
}
