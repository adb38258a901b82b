package marquee

import "testing"

func TestBoundsContains(t *testing.T) {
	b := Bounds{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		x, y float32
		want bool
	}{
		{10, 10, true},
		{29, 19, true},
		{30, 20, true},
		{31, 15, false},
		{15, 21, false},
		{9, 15, false},
	}
	for _, tt := range tests {
		if got := b.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{X: 0, Y: 0, Width: 10, Height: 10}
	b := Bounds{X: 5, Y: -5, Width: 10, Height: 10}
	got := a.Union(b)
	want := Bounds{X: 0, Y: -5, Width: 15, Height: 15}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
	if got := (Bounds{}).Union(a); got != a {
		t.Errorf("empty Union = %+v, want %+v", got, a)
	}
}

func TestColorFromSlice(t *testing.T) {
	if got := ColorFromSlice([]float32{1, 0.5, 0}); got != (Color{1, 0.5, 0, 1}) {
		t.Errorf("rgb = %+v", got)
	}
	if got := ColorFromSlice([]float32{1, 1, 1, 0.25}); got.A != 0.25 {
		t.Errorf("alpha = %v, want 0.25", got.A)
	}
	if got := ColorFromSlice(nil); got != ColorWhite {
		t.Errorf("nil = %+v, want white", got)
	}
}

func TestColorScalePremultiplied(t *testing.T) {
	c := Color{1, 0.5, 0.25, 1}.Scale(0.5)
	if c.A != 0.5 || c.R != 1 {
		t.Errorf("Scale = %+v", c)
	}
	p := c.Premultiplied()
	if p.R != 0.5 || p.G != 0.25 || p.A != 0.5 {
		t.Errorf("Premultiplied = %+v", p)
	}
}

func TestParseNodeKind(t *testing.T) {
	for _, k := range []NodeKind{KindGroup, KindRect, KindPolygon, KindText, KindModel} {
		got, ok := ParseNodeKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseNodeKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseNodeKind("sprite"); ok {
		t.Error("ParseNodeKind accepted sprite")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#000", Color{0, 0, 0, 1}},
		{"ffffff", Color{1, 1, 1, 1}},
		{" #ff0000 ", Color{1, 0, 0, 1}},
		{"#00ff0000", Color{0, 1, 0, 0}},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if err != nil {
			t.Fatalf("ParseHexColor(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"", "#12345", "#gggggg", "red"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q) succeeded, want error", bad)
		}
	}
}
