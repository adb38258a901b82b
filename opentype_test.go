package marquee

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func newTestOpenType(t *testing.T, size float32) *OpenTypeFont {
	t.Helper()
	load, err := OpenTypeLoader(goregular.TTF)
	if err != nil {
		t.Fatalf("OpenTypeLoader: %v", err)
	}
	src, err := load(size)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	f := src.(*OpenTypeFont)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestOpenTypeLoader_InvalidData(t *testing.T) {
	if _, err := OpenTypeLoader([]byte("not a TTF file")); err == nil {
		t.Error("expected error for invalid data, got nil")
	}
}

func TestOpenTypeFont_Metrics(t *testing.T) {
	f := newTestOpenType(t, 32)
	if f.LineHeight() <= 0 || f.Ascent() <= 0 {
		t.Fatalf("metrics: line %v ascent %v", f.LineHeight(), f.Ascent())
	}
	if f.Ascent() >= f.LineHeight() {
		t.Errorf("ascent %v should be below line height %v", f.Ascent(), f.LineHeight())
	}
}

func TestOpenTypeFont_GlyphRasterized(t *testing.T) {
	f := newTestOpenType(t, 32)
	g, ok := f.Glyph('A')
	if !ok {
		t.Fatal("glyph A missing")
	}
	if g.Advance <= 0 || g.Width <= 0 || g.Height <= 0 {
		t.Errorf("A = %+v", g)
	}
	if g.U1 <= g.U0 || g.V1 <= g.V0 {
		t.Errorf("A UVs empty: %+v", g)
	}
	again, _ := f.Glyph('A')
	if again != g {
		t.Error("second lookup differs from the first")
	}

	tex := f.Atlas()
	if tex.pending == nil || tex.pending.BPP != 1 {
		t.Fatal("atlas upload not queued")
	}
	var ink bool
	for _, b := range tex.pending.Pix {
		if b != 0 {
			ink = true
			break
		}
	}
	if !ink {
		t.Error("atlas has no coverage")
	}
	tex.pending = nil
	if f.Atlas().pending != nil {
		t.Error("clean atlas queued another upload")
	}
}

func TestOpenTypeFont_SpaceAdvances(t *testing.T) {
	f := newTestOpenType(t, 16)
	g, ok := f.Glyph(' ')
	if !ok {
		t.Fatal("space missing")
	}
	if g.Advance <= 0 {
		t.Errorf("space advance = %v", g.Advance)
	}
}

func TestOpenTypeFont_AtlasGrows(t *testing.T) {
	f := newTestOpenType(t, 96)
	first, _ := f.Glyph('A')
	for r := rune('B'); r <= 'z'; r++ {
		f.Glyph(r)
	}
	if h := f.img.Bounds().Dy(); h <= otAtlasMinHeight {
		t.Fatalf("atlas height = %d, expected growth", h)
	}
	moved, _ := f.Glyph('A')
	if moved.V1 >= first.V1 {
		t.Errorf("V1 not rescaled after growth: before %v after %v", first.V1, moved.V1)
	}
	if w, h := f.Atlas().Size(); w != otAtlasWidth || h != f.img.Bounds().Dy() {
		t.Errorf("atlas texture size = %dx%d", w, h)
	}
}

func TestOpenTypeFont_Layout(t *testing.T) {
	f := newTestOpenType(t, 20)
	b := LayoutText([]rune("Hello, world"), f, LayoutOptions{BoxWidth: 60, Wrap: WrapWord})
	if b.Lines < 2 {
		t.Errorf("lines = %d, want wrapping at 60px", b.Lines)
	}
	for i, w := range b.LineWidths {
		if w > 60 {
			t.Errorf("line %d width %v exceeds box", i, w)
		}
	}
}
