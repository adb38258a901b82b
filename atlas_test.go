package marquee

import (
	"strings"
	"testing"
)

// --- Test JSON fixtures ---

const singlePageJSON = `{
  "frames": {
    "hero.png": {
      "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
      "rotated": false,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 64, "h": 64},
      "sourceSize": {"w": 64, "h": 64}
    },
    "trimmed.png": {
      "frame": {"x": 128, "y": 256, "w": 60, "h": 58},
      "rotated": false,
      "trimmed": true,
      "spriteSourceSize": {"x": 2, "y": 3, "w": 60, "h": 58},
      "sourceSize": {"w": 64, "h": 64}
    },
    "rotated.png": {
      "frame": {"x": 200, "y": 0, "w": 48, "h": 32},
      "rotated": true,
      "trimmed": false,
      "spriteSourceSize": {"x": 0, "y": 0, "w": 48, "h": 32},
      "sourceSize": {"w": 32, "h": 48}
    }
  },
  "meta": {
    "image": "atlas.png",
    "size": {"w": 512, "h": 512}
  }
}`

const multiPageJSON = `{
  "textures": [
    {
      "image": "atlas-0.png",
      "frames": {
        "page0.png": {
          "frame": {"x": 0, "y": 0, "w": 64, "h": 64},
          "sourceSize": {"w": 64, "h": 64}
        }
      }
    },
    {
      "image": "atlas-1.png",
      "size": {"w": 128, "h": 128},
      "frames": {
        "page1.png": {
          "frame": {"x": 32, "y": 32, "w": 32, "h": 32},
          "sourceSize": {"w": 32, "h": 32}
        }
      }
    }
  ]
}`

func TestLoadAtlas_SinglePage(t *testing.T) {
	atlas, err := LoadAtlas([]byte(singlePageJSON), []*Texture{newTexture(512, 512)})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	if atlas.Len() != 3 {
		t.Errorf("Len = %d, want 3", atlas.Len())
	}
	r, ok := atlas.Region("trimmed.png")
	if !ok {
		t.Fatal("trimmed.png missing")
	}
	if r.X != 128 || r.Y != 256 || r.Width != 60 || r.OffsetX != 2 || r.OffsetY != 3 || r.OriginalW != 64 {
		t.Errorf("trimmed region = %+v", r)
	}
	want := Bounds{X: 0.25, Y: 0.5, Width: 60.0 / 512, Height: 58.0 / 512}
	if r.UV != want {
		t.Errorf("UV = %+v, want %+v", r.UV, want)
	}
	if rot, _ := atlas.Region("rotated.png"); !rot.Rotated {
		t.Error("rotated.png not marked rotated")
	}
	if _, ok := atlas.Region("nonexistent.png"); ok {
		t.Error("missing region reported present")
	}
}

func TestLoadAtlas_MultiPage(t *testing.T) {
	pages := []*Texture{newTexture(256, 256), newTexture(64, 64)}
	atlas, err := LoadAtlas([]byte(multiPageJSON), pages)
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	r0, _ := atlas.Region("page0.png")
	if r0.Page != 0 || r0.UV.Width != 0.25 {
		t.Errorf("page0 region = %+v (size from texture expected)", r0)
	}
	r1, _ := atlas.Region("page1.png")
	if r1.Page != 1 || r1.UV.X != 0.25 || r1.UV.Width != 0.25 {
		t.Errorf("page1 region = %+v (declared size expected)", r1)
	}
	if atlas.Page(r1) != pages[1] {
		t.Error("Page returned the wrong texture")
	}
}

func TestLoadAtlas_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"invalid json", "{", "parse atlas JSON"},
		{"no frames", `{"meta": {}}`, "neither"},
		{"bad frames", `{"frames": [1, 2]}`, "frames"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAtlas([]byte(tt.data), nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestStageSetAtlasRegion(t *testing.T) {
	s := newTestStage(t)
	page := newTexture(512, 512)
	atlas, err := LoadAtlas([]byte(singlePageJSON), []*Texture{page})
	if err != nil {
		t.Fatal(err)
	}
	id := s.NewRect(60, 58)
	if !s.SetAtlasRegion(id, atlas, "trimmed.png") {
		t.Fatal("SetAtlasRegion failed")
	}
	if s.SetAtlasRegion(id, atlas, "nonexistent.png") {
		t.Error("SetAtlasRegion accepted an unknown region")
	}
	s.Advance(0)

	n := mustNode(t, s, id)
	if n.Property(PropTexture).Object() != page {
		t.Error("page texture not bound")
	}
	if l, r := floatProp(t, s, id, PropTexLeft), floatProp(t, s, id, PropTexRight); l != 0.25 || !near(r, 0.25+60.0/512) {
		t.Errorf("tex range x = [%v, %v]", l, r)
	}
	if top := floatProp(t, s, id, PropTexTop); top != 0.5 {
		t.Errorf("texTop = %v, want 0.5", top)
	}
}
