package marquee

import (
	"errors"
	"testing"
)

func TestFontCacheLoadsOncePerSize(t *testing.T) {
	c := NewFontCache()
	loads := 0
	c.Register("fixed", func(float32) (GlyphSource, error) {
		loads++
		return newFixedFont(), nil
	})
	a, err := c.Get("fixed", 16)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Get("fixed", 16)
	if a != b {
		t.Error("same size returned different sources")
	}
	c.Get("fixed", 24)
	if loads != 2 || c.Len() != 2 {
		t.Errorf("loads = %d Len = %d, want 2 and 2", loads, c.Len())
	}
}

func TestFontCacheRemembersFailure(t *testing.T) {
	c := NewFontCache()
	boom := errors.New("boom")
	loads := 0
	c.Register("bad", func(float32) (GlyphSource, error) {
		loads++
		return nil, boom
	})
	for range 3 {
		if _, err := c.Get("bad", 12); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped boom", err)
		}
	}
	if loads != 1 {
		t.Errorf("loads = %d, want 1", loads)
	}
	c.Register("bad", func(float32) (GlyphSource, error) { return newFixedFont(), nil })
	if _, err := c.Get("bad", 12); err != nil {
		t.Errorf("re-register did not clear failure: %v", err)
	}
}

func TestFontCacheUnknownFont(t *testing.T) {
	c := NewFontCache()
	if _, err := c.Get("nope", 10); err == nil {
		t.Error("expected error for unregistered font")
	}
}

func TestDecodeTextNormalizes(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9.
	got := decodeText("e\u0301")
	if len(got) != 1 || got[0] != 'é' {
		t.Errorf("decodeText = %q, want [é]", got)
	}
}
