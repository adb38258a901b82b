package marquee

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	otAtlasWidth     = 512
	otAtlasMinHeight = 256
	otAtlasMaxHeight = 4096
	otGlyphPadding   = 1
)

// OpenTypeFont rasterizes TrueType/OpenType glyphs on demand into a
// shelf-packed single-channel atlas. Render goroutine only.
type OpenTypeFont struct {
	face       font.Face
	ascent     float32
	lineHeight float32

	glyphs  map[rune]Glyph
	rects   map[rune]image.Rectangle
	missing map[rune]bool

	img    *image.Gray
	atlas  *Texture
	shelfX int
	shelfY int
	shelfH int
	dirty  bool
}

// OpenTypeLoader parses TTF/OTF data once and returns a FontLoader that
// builds an OpenTypeFont per requested size.
func OpenTypeLoader(data []byte) (FontLoader, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("marquee: parse opentype: %w", err)
	}
	return func(size float32) (GlyphSource, error) {
		return NewOpenTypeFont(f, size)
	}, nil
}

// NewOpenTypeFont creates a glyph source for f at size pixels.
func NewOpenTypeFont(f *opentype.Font, size float32) (*OpenTypeFont, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("marquee: opentype face at %v: %w", size, err)
	}
	m := face.Metrics()
	return &OpenTypeFont{
		face:       face,
		ascent:     fixedToFloat(m.Ascent),
		lineHeight: fixedToFloat(m.Height),
		glyphs:     make(map[rune]Glyph),
		rects:      make(map[rune]image.Rectangle),
		missing:    make(map[rune]bool),
		img:        image.NewGray(image.Rect(0, 0, otAtlasWidth, otAtlasMinHeight)),
		atlas:      newTexture(otAtlasWidth, otAtlasMinHeight),
	}, nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// Glyph implements GlyphSource. Glyphs not yet in the atlas are rasterized
// and packed on first use.
func (f *OpenTypeFont) Glyph(r rune) (Glyph, bool) {
	if g, ok := f.glyphs[r]; ok {
		return g, true
	}
	if f.missing[r] {
		return Glyph{}, false
	}
	dr, mask, maskp, adv, ok := f.face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		f.missing[r] = true
		return Glyph{}, false
	}
	g := Glyph{
		Advance: fixedToFloat(adv),
		OffsetX: float32(dr.Min.X),
		OffsetY: f.ascent + float32(dr.Min.Y),
		Width:   float32(dr.Dx()),
		Height:  float32(dr.Dy()),
	}
	if !dr.Empty() {
		at, ok := f.place(dr.Dx(), dr.Dy())
		if !ok {
			Logger().Warn("marquee: opentype atlas full", "rune", string(r))
			f.missing[r] = true
			return Glyph{}, false
		}
		draw.Draw(f.img, at, mask, maskp, draw.Src)
		f.rects[r] = at
		f.dirty = true
		g.U0, g.V0, g.U1, g.V1 = f.uv(at)
	}
	f.glyphs[r] = g
	return g, true
}

// place reserves a w x h cell on the current shelf, opening a new shelf or
// doubling the atlas height when needed.
func (f *OpenTypeFont) place(w, h int) (image.Rectangle, bool) {
	atlasW := f.img.Bounds().Dx()
	if w+otGlyphPadding > atlasW {
		return image.Rectangle{}, false
	}
	if f.shelfX+w+otGlyphPadding > atlasW {
		f.shelfY += f.shelfH + otGlyphPadding
		f.shelfX, f.shelfH = 0, 0
	}
	for f.shelfY+h+otGlyphPadding > f.img.Bounds().Dy() {
		if !f.grow() {
			return image.Rectangle{}, false
		}
	}
	at := image.Rect(f.shelfX, f.shelfY, f.shelfX+w, f.shelfY+h)
	f.shelfX += w + otGlyphPadding
	f.shelfH = max(f.shelfH, h)
	return at, true
}

// grow doubles the atlas height and rescales cached UVs.
func (f *OpenTypeFont) grow() bool {
	b := f.img.Bounds()
	if b.Dy()*2 > otAtlasMaxHeight {
		return false
	}
	img := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()*2))
	draw.Copy(img, image.Point{}, f.img, b, draw.Src, nil)
	f.img = img
	for r, at := range f.rects {
		g := f.glyphs[r]
		g.U0, g.V0, g.U1, g.V1 = f.uv(at)
		f.glyphs[r] = g
	}
	f.dirty = true
	return true
}

func (f *OpenTypeFont) uv(at image.Rectangle) (u0, v0, u1, v1 float32) {
	w, h := float32(f.img.Bounds().Dx()), float32(f.img.Bounds().Dy())
	return float32(at.Min.X) / w, float32(at.Min.Y) / h,
		float32(at.Max.X) / w, float32(at.Max.Y) / h
}

// Kern implements GlyphSource.
func (f *OpenTypeFont) Kern(a, b rune) float32 {
	return fixedToFloat(f.face.Kern(a, b))
}

// LineHeight implements GlyphSource.
func (f *OpenTypeFont) LineHeight() float32 { return f.lineHeight }

// Ascent implements GlyphSource.
func (f *OpenTypeFont) Ascent() float32 { return f.ascent }

// Atlas implements GlyphSource. New glyphs since the last call are queued
// for upload with the texture.
func (f *OpenTypeFont) Atlas() *Texture {
	if f.dirty {
		b := f.img.Bounds()
		f.atlas.pending = &PixelBuffer{
			Width: b.Dx(), Height: b.Dy(), BPP: 1,
			Pix: append([]byte(nil), f.img.Pix...),
		}
		f.atlas.setSize(b.Dx(), b.Dy())
		f.dirty = false
	}
	return f.atlas
}

// Close releases the face.
func (f *OpenTypeFont) Close() error {
	return f.face.Close()
}
