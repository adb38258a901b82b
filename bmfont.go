package marquee

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

type bmGlyph struct {
	x, y          uint16
	width, height uint16
	xOffset       int16
	yOffset       int16
	xAdvance      int16
}

const asciiGlyphCount = 128

// BitmapFont renders text from a pre-rasterized BMFont atlas. A parsed font
// has its native size; At returns views scaled to other sizes that share
// the glyph tables and atlas.
type BitmapFont struct {
	nativeSize float32
	lineHeight float32
	base       float32
	scaleW     float32
	scaleH     float32
	scale      float32
	atlas      *Texture

	asciiGlyphs [asciiGlyphCount]bmGlyph
	asciiSet    [asciiGlyphCount]bool
	extGlyphs   map[rune]*bmGlyph

	kernings map[[2]rune]int16
}

// ParseBitmapFont parses BMFont text-format data. atlas is the texture
// holding page 0; it may be nil and set later with SetAtlas.
func ParseBitmapFont(fntData []byte, atlas *Texture) (*BitmapFont, error) {
	f := &BitmapFont{scale: 1, atlas: atlas}
	scanner := bufio.NewScanner(bytes.NewReader(fntData))
	var charCount int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		tag, rest := splitTag(line)
		fields := parseFields(rest)

		switch tag {
		case "info":
			if v, ok := fields["size"]; ok {
				n, _ := strconv.Atoi(v)
				f.nativeSize = math32.Abs(float32(n))
			}
		case "common":
			f.lineHeight = fieldFloat(fields, "lineHeight")
			f.base = fieldFloat(fields, "base")
			f.scaleW = fieldFloat(fields, "scaleW")
			f.scaleH = fieldFloat(fields, "scaleH")
		case "char":
			charCount++
			id := rune(fieldInt(fields, "id"))
			g := bmGlyph{
				x:        uint16(fieldInt(fields, "x")),
				y:        uint16(fieldInt(fields, "y")),
				width:    uint16(fieldInt(fields, "width")),
				height:   uint16(fieldInt(fields, "height")),
				xOffset:  int16(fieldInt(fields, "xoffset")),
				yOffset:  int16(fieldInt(fields, "yoffset")),
				xAdvance: int16(fieldInt(fields, "xadvance")),
			}
			if id >= 0 && id < asciiGlyphCount {
				f.asciiGlyphs[id] = g
				f.asciiSet[id] = true
			} else {
				if f.extGlyphs == nil {
					f.extGlyphs = make(map[rune]*bmGlyph)
				}
				f.extGlyphs[id] = &g
			}
		case "kerning":
			if f.kernings == nil {
				f.kernings = make(map[[2]rune]int16)
			}
			first, second := rune(fieldInt(fields, "first")), rune(fieldInt(fields, "second"))
			f.kernings[[2]rune{first, second}] = int16(fieldInt(fields, "amount"))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("marquee: error reading .fnt data: %w", err)
	}
	if f.lineHeight == 0 {
		return nil, fmt.Errorf("marquee: .fnt data missing common lineHeight")
	}
	if charCount == 0 {
		return nil, fmt.Errorf("marquee: .fnt data has no char definitions")
	}
	if f.nativeSize == 0 {
		f.nativeSize = f.lineHeight
	}
	if f.scaleW == 0 || f.scaleH == 0 {
		return nil, fmt.Errorf("marquee: .fnt data missing common scaleW/scaleH")
	}
	return f, nil
}

// BitmapFontLoader returns a FontLoader that serves f at any size.
func BitmapFontLoader(f *BitmapFont) FontLoader {
	return func(size float32) (GlyphSource, error) {
		return f.At(size), nil
	}
}

// NativeSize returns the size the atlas was rasterized at.
func (f *BitmapFont) NativeSize() float32 { return f.nativeSize }

// At returns a view of the font scaled to size pixels.
func (f *BitmapFont) At(size float32) *BitmapFont {
	v := *f
	v.scale = size / f.nativeSize
	return &v
}

// SetAtlas sets the atlas texture. Render goroutine only once in use.
func (f *BitmapFont) SetAtlas(t *Texture) { f.atlas = t }

func (f *BitmapFont) lookup(r rune) *bmGlyph {
	if r >= 0 && r < asciiGlyphCount {
		if f.asciiSet[r] {
			return &f.asciiGlyphs[r]
		}
		return nil
	}
	return f.extGlyphs[r]
}

// Glyph implements GlyphSource.
func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	g := f.lookup(r)
	if g == nil {
		return Glyph{}, false
	}
	s := f.scale
	return Glyph{
		Advance: float32(g.xAdvance) * s,
		OffsetX: float32(g.xOffset) * s,
		OffsetY: float32(g.yOffset) * s,
		Width:   float32(g.width) * s,
		Height:  float32(g.height) * s,
		U0:      float32(g.x) / f.scaleW,
		V0:      float32(g.y) / f.scaleH,
		U1:      float32(g.x+g.width) / f.scaleW,
		V1:      float32(g.y+g.height) / f.scaleH,
	}, true
}

// Kern implements GlyphSource.
func (f *BitmapFont) Kern(a, b rune) float32 {
	if f.kernings == nil {
		return 0
	}
	return float32(f.kernings[[2]rune{a, b}]) * f.scale
}

// LineHeight implements GlyphSource.
func (f *BitmapFont) LineHeight() float32 { return f.lineHeight * f.scale }

// Ascent implements GlyphSource.
func (f *BitmapFont) Ascent() float32 { return f.base * f.scale }

// Atlas implements GlyphSource.
func (f *BitmapFont) Atlas() *Texture { return f.atlas }

// splitTag splits a BMFont line into its tag and the rest of the line.
func splitTag(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

// parseFields parses "key=value key=value ..." into a map.
func parseFields(s string) map[string]string {
	fields := make(map[string]string)
	for _, part := range strings.Fields(s) {
		eq := strings.IndexByte(part, '=')
		if eq == -1 {
			continue
		}
		key, val := part[:eq], part[eq+1:]
		// face="Arial"
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		fields[key] = val
	}
	return fields
}

func fieldInt(fields map[string]string, key string) int {
	n, _ := strconv.Atoi(fields[key])
	return n
}

func fieldFloat(fields map[string]string, key string) float32 {
	f, _ := strconv.ParseFloat(fields[key], 32)
	return float32(f)
}
