package marquee

import (
	"fmt"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Glyph is the placement of one character at a font size. Offsets are from
// the pen position at the top of the line; UVs are normalized atlas
// coordinates.
type Glyph struct {
	Advance          float32
	OffsetX, OffsetY float32
	Width, Height    float32
	U0, V0, U1, V1   float32
}

// GlyphSource is a loaded font at one pixel size. Implementations are used
// only on the render goroutine.
type GlyphSource interface {
	// Glyph returns the placement of r, or false if the font lacks it.
	Glyph(r rune) (Glyph, bool)
	// Kern returns the extra advance between a and b.
	Kern(a, b rune) float32
	LineHeight() float32
	Ascent() float32
	// Atlas returns the glyph texture, or nil when not yet available.
	Atlas() *Texture
}

// FontLoader creates a GlyphSource for a pixel size.
type FontLoader func(size float32) (GlyphSource, error)

type fontKey struct {
	name string
	size float32
}

// FontCache keeps one GlyphSource per (font, size) pair and loads new sizes
// lazily through registered loaders.
type FontCache struct {
	mu      sync.Mutex
	loaders map[string]FontLoader
	fonts   map[fontKey]GlyphSource
	failed  map[fontKey]error
}

// NewFontCache returns an empty cache.
func NewFontCache() *FontCache {
	return &FontCache{
		loaders: make(map[string]FontLoader),
		fonts:   make(map[fontKey]GlyphSource),
		failed:  make(map[fontKey]error),
	}
}

// Register installs the loader for name, dropping sizes already loaded
// under that name.
func (c *FontCache) Register(name string, l FontLoader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaders[name] = l
	for k := range c.fonts {
		if k.name == name {
			delete(c.fonts, k)
		}
	}
	for k := range c.failed {
		if k.name == name {
			delete(c.failed, k)
		}
	}
}

// Get returns the source for (name, size), loading it on first use. A
// failed load is remembered and returned again without retrying.
func (c *FontCache) Get(name string, size float32) (GlyphSource, error) {
	k := fontKey{name, size}
	c.mu.Lock()
	defer c.mu.Unlock()
	if src, ok := c.fonts[k]; ok {
		return src, nil
	}
	if err, ok := c.failed[k]; ok {
		return nil, err
	}
	l, ok := c.loaders[name]
	if !ok {
		err := fmt.Errorf("marquee: font %q not registered", name)
		c.failed[k] = err
		return nil, err
	}
	src, err := l(size)
	if err != nil {
		err = fmt.Errorf("marquee: load font %q at %v: %w", name, size, err)
		c.failed[k] = err
		return nil, err
	}
	c.fonts[k] = src
	return src, nil
}

// Len returns the number of loaded (font, size) pairs.
func (c *FontCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fonts)
}

// decodeText normalizes s to NFC and returns its code points.
func decodeText(s string) []rune {
	return []rune(norm.NFC.String(s))
}
