package marquee

import (
	"encoding/json"
	"fmt"
)

// AtlasRegion is a named sub-image of an atlas page.
type AtlasRegion struct {
	Page int
	// X, Y, Width and Height are the packed rect in page pixels.
	X, Y, Width, Height int
	// OriginalW and OriginalH are the untrimmed sprite size as authored.
	OriginalW, OriginalH int
	// OffsetX and OffsetY are the trim offsets from TexturePacker.
	OffsetX, OffsetY int
	// Rotated is true if the region is stored 90 degrees clockwise.
	Rotated bool
	// UV is the packed rect in normalized page coordinates.
	UV Bounds
}

// Atlas holds one or more page textures and a map of named regions.
type Atlas struct {
	Pages   []*Texture
	regions map[string]AtlasRegion
}

// Region returns the named region.
func (a *Atlas) Region(name string) (AtlasRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of regions.
func (a *Atlas) Len() int { return len(a.regions) }

// Page returns the texture for a region, or nil if the page is missing.
func (a *Atlas) Page(r AtlasRegion) *Texture {
	if r.Page < 0 || r.Page >= len(a.Pages) {
		return nil
	}
	return a.Pages[r.Page]
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// textures. Supports both the hash format (single "frames" object) and the
// array format ("textures" array with per-page frame lists). Normalized UVs
// use the page size from the JSON, falling back to the page texture size.
func LoadAtlas(jsonData []byte, pages []*Texture) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
		Meta     struct {
			Size jsonSize `json:"size"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("marquee: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]AtlasRegion),
	}

	switch {
	case probe.Textures != nil:
		if err := parseArrayFormat(probe.Textures, atlas); err != nil {
			return nil, err
		}
	case probe.Frames != nil:
		if err := parseHashFrames(probe.Frames, 0, probe.Meta.Size, atlas); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("marquee: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Size   jsonSize             `json:"size"`
	Frames map[string]jsonFrame `json:"frames"`
}

// parseHashFrames parses the hash format: {"name": {frame...}, ...}
func parseHashFrames(raw json.RawMessage, page int, size jsonSize, atlas *Atlas) error {
	var frames map[string]jsonFrame
	if err := json.Unmarshal(raw, &frames); err != nil {
		return fmt.Errorf("marquee: failed to parse atlas frames: %w", err)
	}
	size = atlas.pageSize(page, size)
	for name, f := range frames {
		atlas.regions[name] = frameToRegion(f, page, size)
	}
	return nil
}

// parseArrayFormat parses the array format: [{"image":"...", "frames":{...}}, ...]
func parseArrayFormat(raw json.RawMessage, atlas *Atlas) error {
	var textures []jsonTexturePage
	if err := json.Unmarshal(raw, &textures); err != nil {
		return fmt.Errorf("marquee: failed to parse atlas textures array: %w", err)
	}
	for i, tex := range textures {
		size := atlas.pageSize(i, tex.Size)
		for name, f := range tex.Frames {
			atlas.regions[name] = frameToRegion(f, i, size)
		}
	}
	return nil
}

func (a *Atlas) pageSize(page int, declared jsonSize) jsonSize {
	if declared.W > 0 && declared.H > 0 {
		return declared
	}
	if page < len(a.Pages) && a.Pages[page] != nil {
		w, h := a.Pages[page].Size()
		return jsonSize{W: w, H: h}
	}
	return jsonSize{}
}

func frameToRegion(f jsonFrame, page int, size jsonSize) AtlasRegion {
	r := AtlasRegion{
		Page:      page,
		X:         f.Frame.X,
		Y:         f.Frame.Y,
		Width:     f.Frame.W,
		Height:    f.Frame.H,
		OriginalW: f.SourceSize.W,
		OriginalH: f.SourceSize.H,
		OffsetX:   f.SpriteSourceSize.X,
		OffsetY:   f.SpriteSourceSize.Y,
		Rotated:   f.Rotated,
	}
	if size.W > 0 && size.H > 0 {
		r.UV = Bounds{
			X:      float32(r.X) / float32(size.W),
			Y:      float32(r.Y) / float32(size.H),
			Width:  float32(r.Width) / float32(size.W),
			Height: float32(r.Height) / float32(size.H),
		}
	}
	return r
}

// SetAtlasRegion binds a Rect to a named atlas region: its page texture and
// normalized sub-rectangle. Returns false if the region is unknown.
func (s *Stage) SetAtlasRegion(id NodeID, a *Atlas, name string) bool {
	r, ok := a.Region(name)
	if !ok {
		return false
	}
	tex := a.Page(r)
	if tex == nil {
		return false
	}
	s.SetTexture(id, tex)
	s.SetSubRect(id, r.UV)
	return true
}
