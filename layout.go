package marquee

import (
	"unicode"

	"github.com/chewxy/math32"
)

// maxGlyphQuads keeps glyph indices within uint16.
const maxGlyphQuads = 65536 / 4

// LayoutOptions controls LayoutText.
type LayoutOptions struct {
	// BoxWidth is the wrap width and horizontal alignment reference. Zero
	// disables wrapping and aligns against the widest line.
	BoxWidth float32
	// BoxHeight is the vertical alignment reference. Zero aligns to the top.
	BoxHeight float32
	Wrap      WrapMode
	HAlign    HAlign
	VAlign    VAlign
	// LineHeight overrides the font's line height when > 0.
	LineHeight float32
	Color      Color
}

// GlyphVertex is one corner of a glyph quad.
type GlyphVertex struct {
	X, Y  float32
	U, V  float32
	Color Color
}

// GlyphBuffer is the output of LayoutText: four vertices and six indices per
// glyph, plus line metrics.
type GlyphBuffer struct {
	Vertices   []GlyphVertex
	Indices    []uint16
	Lines      int
	LineWidths []float32
	// Width is the widest line; Height is Lines times the line height.
	Width, Height float32
}

// GlyphCount returns the number of emitted glyph quads.
func (b GlyphBuffer) GlyphCount() int { return len(b.Vertices) / 4 }

// placed tracks an emitted glyph so a word wrap can move it.
type placed struct {
	r    rune
	pen  float32 // pen x where the glyph started, kerning included
	adv  float32
	line int
}

type layouter struct {
	src    GlyphSource
	opts   LayoutOptions
	lh     float32
	buf    GlyphBuffer
	glyphs []placed
}

// LayoutText places runes with src. Explicit newlines always break; with a
// wrap mode and a box width, a glyph that would cross the box edge starts a
// new line. In word mode the partial word already on the line is moved to
// the new line in place. Kerning between the moved word and the glyph
// before it is not recomputed.
func LayoutText(runes []rune, src GlyphSource, opts LayoutOptions) GlyphBuffer {
	if src == nil || len(runes) == 0 {
		return GlyphBuffer{}
	}
	l := &layouter{src: src, opts: opts, lh: opts.LineHeight}
	if l.lh <= 0 {
		l.lh = src.LineHeight()
	}
	l.run(runes)
	l.measure()
	l.align()
	return l.buf
}

func (l *layouter) run(runes []rune) {
	wrapping := l.opts.Wrap != WrapNone && l.opts.BoxWidth > 0
	var (
		penX      float32
		line      int
		lineStart int
		prev      rune
		hasPrev   bool
	)
	for _, r := range runes {
		if r == '\n' {
			line++
			penX = 0
			lineStart = len(l.glyphs)
			hasPrev = false
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if len(l.glyphs) >= maxGlyphQuads {
			break
		}
		g, ok := l.src.Glyph(r)
		if !ok {
			hasPrev = false
			continue
		}
		var kern float32
		if hasPrev {
			kern = l.src.Kern(prev, r)
		}

		// Whitespace never forces a break; it hangs past the edge.
		if wrapping && !unicode.IsSpace(r) && penX+kern+g.Advance > l.opts.BoxWidth && len(l.glyphs) > lineStart {
			ws := -1
			if l.opts.Wrap == WrapWord {
				for i := len(l.glyphs) - 1; i >= lineStart; i-- {
					if unicode.IsSpace(l.glyphs[i].r) {
						ws = i
						break
					}
				}
			}
			line++
			if ws >= 0 {
				penX = l.rebase(ws+1, line, penX)
				lineStart = ws + 1
				if lineStart == len(l.glyphs) {
					kern = 0
				}
			} else {
				penX, kern = 0, 0
				lineStart = len(l.glyphs)
			}
		}

		l.emit(r, g, penX+kern, line)
		penX += kern + g.Advance
		prev, hasPrev = r, true
	}
	l.buf.Lines = line + 1
}

// emit appends one glyph quad with its pen at x on line.
func (l *layouter) emit(r rune, g Glyph, x float32, line int) {
	x0 := x + g.OffsetX
	y0 := float32(line)*l.lh + g.OffsetY
	x1, y1 := x0+g.Width, y0+g.Height
	c := l.opts.Color
	base := uint16(len(l.buf.Vertices))
	l.buf.Vertices = append(l.buf.Vertices,
		GlyphVertex{x0, y0, g.U0, g.V0, c},
		GlyphVertex{x1, y0, g.U1, g.V0, c},
		GlyphVertex{x1, y1, g.U1, g.V1, c},
		GlyphVertex{x0, y1, g.U0, g.V1, c},
	)
	l.buf.Indices = append(l.buf.Indices, base, base+1, base+2, base, base+2, base+3)
	l.glyphs = append(l.glyphs, placed{r: r, pen: x, adv: g.Advance, line: line})
}

// rebase moves glyphs [from, end) to the start of line, editing their
// emitted vertices in place. Returns the pen position after them.
func (l *layouter) rebase(from, line int, penX float32) float32 {
	if from >= len(l.glyphs) {
		return 0
	}
	dx := l.glyphs[from].pen
	for i := from; i < len(l.glyphs); i++ {
		p := &l.glyphs[i]
		dy := float32(line-p.line) * l.lh
		p.pen -= dx
		p.line = line
		vs := l.buf.Vertices[i*4 : i*4+4]
		for j := range vs {
			vs[j].X -= dx
			vs[j].Y += dy
		}
	}
	return penX - dx
}

// measure computes per-line widths, excluding trailing whitespace.
func (l *layouter) measure() {
	l.buf.LineWidths = make([]float32, l.buf.Lines)
	for _, p := range l.glyphs {
		if unicode.IsSpace(p.r) {
			continue
		}
		l.buf.LineWidths[p.line] = math32.Max(l.buf.LineWidths[p.line], p.pen+p.adv)
	}
	for _, w := range l.buf.LineWidths {
		l.buf.Width = math32.Max(l.buf.Width, w)
	}
	l.buf.Height = float32(l.buf.Lines) * l.lh
}

// align shifts lines horizontally within the box (or the widest line) and
// the block vertically within the box height.
func (l *layouter) align() {
	ref := l.opts.BoxWidth
	if ref <= 0 {
		ref = l.buf.Width
	}
	var dy float32
	if l.opts.BoxHeight > 0 {
		switch l.opts.VAlign {
		case VAlignCenter:
			dy = (l.opts.BoxHeight - l.buf.Height) / 2
		case VAlignBottom:
			dy = l.opts.BoxHeight - l.buf.Height
		}
	}
	if l.opts.HAlign == HAlignLeft && dy == 0 {
		return
	}
	for i, p := range l.glyphs {
		var dx float32
		switch l.opts.HAlign {
		case HAlignCenter:
			dx = (ref - l.buf.LineWidths[p.line]) / 2
		case HAlignRight:
			dx = ref - l.buf.LineWidths[p.line]
		}
		vs := l.buf.Vertices[i*4 : i*4+4]
		for j := range vs {
			vs[j].X += dx
			vs[j].Y += dy
		}
	}
}

// geometry converts a glyph buffer to device geometry.
func (b GlyphBuffer) geometry() Geometry {
	n := len(b.Vertices)
	g := Geometry{
		Positions: make([]float32, 0, n*3),
		UVs:       make([]float32, 0, n*2),
		Colors:    make([]float32, 0, n*4),
		Indices:   b.Indices,
	}
	for _, v := range b.Vertices {
		g.Positions = append(g.Positions, v.X, v.Y, 0)
		g.UVs = append(g.UVs, v.U, v.V)
		g.Colors = append(g.Colors, v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	}
	return g
}
