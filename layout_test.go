package marquee

import (
	"reflect"
	"testing"
)

const (
	fixedAdvance    = 10
	fixedLineHeight = 16
	fixedOffsetX    = 1
	fixedOffsetY    = 2
)

// fixedFont is a monospace GlyphSource: every glyph advances fixedAdvance
// and '#' is missing.
type fixedFont struct {
	kern  map[[2]rune]float32
	atlas *Texture
}

func newFixedFont() *fixedFont { return &fixedFont{} }

func (f *fixedFont) Glyph(r rune) (Glyph, bool) {
	if r == '#' {
		return Glyph{}, false
	}
	return Glyph{
		Advance: fixedAdvance,
		OffsetX: fixedOffsetX, OffsetY: fixedOffsetY,
		Width: 8, Height: 12,
		U0: 0, V0: 0, U1: 1, V1: 1,
	}, true
}

func (f *fixedFont) Kern(a, b rune) float32 { return f.kern[[2]rune{a, b}] }
func (f *fixedFont) LineHeight() float32    { return fixedLineHeight }
func (f *fixedFont) Ascent() float32        { return 12 }

func (f *fixedFont) Atlas() *Texture {
	if f.atlas == nil {
		f.atlas = newTexture(1, 1)
		f.atlas.pending = &PixelBuffer{Width: 1, Height: 1, BPP: 1, Pix: []byte{255}}
	}
	return f.atlas
}

// glyphPos returns the top-left vertex of glyph i with the glyph offsets
// removed, i.e. its pen position and line top.
func glyphPos(b GlyphBuffer, i int) (x, y float32) {
	v := b.Vertices[i*4]
	return v.X - fixedOffsetX, v.Y - fixedOffsetY
}

func layout(s string, opts LayoutOptions) GlyphBuffer {
	return LayoutText([]rune(s), newFixedFont(), opts)
}

func TestLayoutEmpty(t *testing.T) {
	b := layout("", LayoutOptions{})
	if !reflect.DeepEqual(b, GlyphBuffer{}) {
		t.Errorf("empty layout = %+v, want zero", b)
	}
	if got := LayoutText([]rune("abc"), nil, LayoutOptions{}); got.GlyphCount() != 0 {
		t.Error("nil source should produce nothing")
	}
}

func TestLayoutSingleLine(t *testing.T) {
	b := layout("abc", LayoutOptions{})
	if b.GlyphCount() != 3 || len(b.Indices) != 18 {
		t.Fatalf("glyphs = %d indices = %d, want 3 and 18", b.GlyphCount(), len(b.Indices))
	}
	if b.Lines != 1 || b.Width != 30 || b.Height != fixedLineHeight {
		t.Errorf("metrics = lines %d width %v height %v", b.Lines, b.Width, b.Height)
	}
	if x, y := glyphPos(b, 1); x != 10 || y != 0 {
		t.Errorf("glyph 1 at (%v, %v), want (10, 0)", x, y)
	}
	if b.Indices[6] != 4 {
		t.Errorf("second quad starts at index %d, want 4", b.Indices[6])
	}
}

func TestLayoutNewline(t *testing.T) {
	b := layout("ab\ncd", LayoutOptions{})
	if b.Lines != 2 || b.GlyphCount() != 4 {
		t.Fatalf("lines = %d glyphs = %d", b.Lines, b.GlyphCount())
	}
	if x, y := glyphPos(b, 2); x != 0 || y != fixedLineHeight {
		t.Errorf("glyph after newline at (%v, %v)", x, y)
	}
}

func TestLayoutMissingGlyphSkipped(t *testing.T) {
	b := layout("a#b", LayoutOptions{})
	if b.GlyphCount() != 2 {
		t.Fatalf("glyphs = %d, want 2", b.GlyphCount())
	}
	if x, _ := glyphPos(b, 1); x != 10 {
		t.Errorf("glyph after missing one at %v, want 10", x)
	}
}

func TestLayoutCharacterWrap(t *testing.T) {
	b := layout("abcd", LayoutOptions{BoxWidth: 25, Wrap: WrapCharacter})
	if b.Lines != 2 {
		t.Fatalf("lines = %d, want 2", b.Lines)
	}
	if x, y := glyphPos(b, 2); x != 0 || y != fixedLineHeight {
		t.Errorf("wrapped glyph at (%v, %v)", x, y)
	}
	if !reflect.DeepEqual(b.LineWidths, []float32{20, 20}) {
		t.Errorf("LineWidths = %v", b.LineWidths)
	}
}

func TestLayoutWordWrapMovesPartialWord(t *testing.T) {
	b := layout("ab cdefg", LayoutOptions{BoxWidth: 75, Wrap: WrapWord})
	if b.Lines != 2 {
		t.Fatalf("lines = %d, want 2", b.Lines)
	}
	wantPen := []float32{0, 10, 20, 0, 10, 20, 30, 40}
	wantLine := []int{0, 0, 0, 1, 1, 1, 1, 1}
	for i := range wantPen {
		x, y := glyphPos(b, i)
		if x != wantPen[i] || y != float32(wantLine[i])*fixedLineHeight {
			t.Errorf("glyph %d at (%v, %v), want (%v, line %d)", i, x, y, wantPen[i], wantLine[i])
		}
	}
	if !reflect.DeepEqual(b.LineWidths, []float32{20, 50}) {
		t.Errorf("LineWidths = %v, want [20 50]", b.LineWidths)
	}
}

func TestLayoutWordWrapAtSpace(t *testing.T) {
	b := layout("hello world", LayoutOptions{BoxWidth: 55, Wrap: WrapWord})
	if b.Lines != 2 {
		t.Fatalf("lines = %d, want 2", b.Lines)
	}
	if x, y := glyphPos(b, 6); x != 0 || y != fixedLineHeight {
		t.Errorf("'w' at (%v, %v)", x, y)
	}
	if !reflect.DeepEqual(b.LineWidths, []float32{50, 50}) {
		t.Errorf("LineWidths = %v", b.LineWidths)
	}
}

func TestLayoutWordWrapLongWordFallsBack(t *testing.T) {
	b := layout("abcd", LayoutOptions{BoxWidth: 25, Wrap: WrapWord})
	if b.Lines != 2 {
		t.Errorf("lines = %d, want 2", b.Lines)
	}
}

func TestLayoutWhitespaceHangs(t *testing.T) {
	b := layout("ab   ", LayoutOptions{BoxWidth: 25, Wrap: WrapWord})
	if b.Lines != 1 {
		t.Errorf("lines = %d, want 1", b.Lines)
	}
	if b.Width != 20 {
		t.Errorf("width = %v, want 20 (trailing spaces excluded)", b.Width)
	}
}

func TestLayoutNoWrapWithoutBox(t *testing.T) {
	b := layout("abcdefghij", LayoutOptions{Wrap: WrapWord})
	if b.Lines != 1 {
		t.Errorf("lines = %d, want 1", b.Lines)
	}
}

func TestLayoutIdempotent(t *testing.T) {
	opts := LayoutOptions{BoxWidth: 75, Wrap: WrapWord, HAlign: HAlignCenter}
	a := layout("the quick brown fox", opts)
	b := layout("the quick brown fox", opts)
	if !reflect.DeepEqual(a, b) {
		t.Error("layout of the same input differs")
	}
}

func TestLayoutAlignment(t *testing.T) {
	tests := []struct {
		name  string
		opts  LayoutOptions
		wantX float32
		wantY float32
	}{
		{"left", LayoutOptions{BoxWidth: 100}, 0, 0},
		{"center", LayoutOptions{BoxWidth: 100, HAlign: HAlignCenter}, 40, 0},
		{"right", LayoutOptions{BoxWidth: 100, HAlign: HAlignRight}, 80, 0},
		{"middle", LayoutOptions{BoxHeight: 100, VAlign: VAlignCenter}, 0, 42},
		{"bottom", LayoutOptions{BoxHeight: 100, VAlign: VAlignBottom}, 0, 84},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := layout("ab", tt.opts)
			if x, y := glyphPos(b, 0); x != tt.wantX || y != tt.wantY {
				t.Errorf("first glyph at (%v, %v), want (%v, %v)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestLayoutAlignsAgainstWidestLine(t *testing.T) {
	b := layout("abcd\nab", LayoutOptions{HAlign: HAlignRight})
	if x, _ := glyphPos(b, 4); x != 20 {
		t.Errorf("short line starts at %v, want 20", x)
	}
}

func TestLayoutKerning(t *testing.T) {
	src := newFixedFont()
	src.kern = map[[2]rune]float32{{'a', 'v'}: -2}
	b := LayoutText([]rune("av"), src, LayoutOptions{})
	if x, _ := glyphPos(b, 1); x != 8 {
		t.Errorf("kerned glyph at %v, want 8", x)
	}
	b = LayoutText([]rune("a\nv"), src, LayoutOptions{})
	if x, _ := glyphPos(b, 1); x != 0 {
		t.Errorf("glyph after newline kerned: %v", x)
	}
}

func TestLayoutLineHeightOverride(t *testing.T) {
	b := layout("a\nb", LayoutOptions{LineHeight: 30})
	if _, y := glyphPos(b, 1); y != 30 {
		t.Errorf("second line at %v, want 30", y)
	}
	if b.Height != 60 {
		t.Errorf("height = %v, want 60", b.Height)
	}
}

func TestLayoutColorAndGeometry(t *testing.T) {
	red := Color{1, 0, 0, 1}
	b := layout("a", LayoutOptions{Color: red})
	if b.Vertices[0].Color != red {
		t.Errorf("vertex color = %+v", b.Vertices[0].Color)
	}
	g := b.geometry()
	if g.VertexCount() != 4 || len(g.UVs) != 8 || len(g.Colors) != 16 {
		t.Errorf("geometry sizes: %d vertices %d uvs %d colors", g.VertexCount(), len(g.UVs), len(g.Colors))
	}
}
