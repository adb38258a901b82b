package marquee

import (
	"fmt"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication, when a device needs it, happens at draw submission time.
type Color struct {
	R, G, B, A float32
}

// ColorWhite is the default fill for Rect, Polygon, Model and Text nodes.
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromSlice builds a Color from a float-array property value. Missing
// components default to 1 so that a three-element slice is an opaque color.
func ColorFromSlice(v []float32) Color {
	c := ColorWhite
	if len(v) > 0 {
		c.R = v[0]
	}
	if len(v) > 1 {
		c.G = v[1]
	}
	if len(v) > 2 {
		c.B = v[2]
	}
	if len(v) > 3 {
		c.A = v[3]
	}
	return c
}

// Slice returns the color as a four-element float-array property value.
func (c Color) Slice() []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}

// Scale multiplies the alpha channel by opacity.
func (c Color) Scale(opacity float32) Color {
	c.A *= opacity
	return c
}

// Premultiplied returns the color with RGB multiplied by alpha.
func (c Color) Premultiplied() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// ParseHexColor parses #rgb, #rrggbb or #rrggbbaa, with or without the
// hash.
func ParseHexColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("marquee: invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("marquee: invalid color %q: %w", s, err)
	}
	return Color{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}

// Bounds is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Bounds struct {
	X, Y, Width, Height float32
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Bounds) Contains(x, y float32) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Empty reports whether the rectangle has no area.
func (r Bounds) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Union returns the smallest rectangle containing both r and other.
func (r Bounds) Union(other Bounds) Bounds {
	if r.Empty() {
		return other
	}
	if other.Empty() {
		return r
	}
	minX := min(r.X, other.X)
	minY := min(r.Y, other.Y)
	maxX := max(r.X+r.Width, other.X+other.Width)
	maxY := max(r.Y+r.Height, other.Y+other.Height)
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// NodeKind distinguishes the closed set of node variants.
type NodeKind uint8

const (
	KindGroup   NodeKind = iota + 1 // ordered container, optional clip and depth region
	KindRect                        // solid or textured quad
	KindPolygon                     // flat 2D or 3D vertex list, filled or outlined
	KindText                        // laid-out glyph quads
	KindModel                       // indexed 3D mesh with optional normals and UVs
)

// String returns the lower-case name used by scene files and logs.
func (k NodeKind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindRect:
		return "rect"
	case KindPolygon:
		return "polygon"
	case KindText:
		return "text"
	case KindModel:
		return "model"
	}
	return "unknown"
}

// ParseNodeKind is the inverse of NodeKind.String.
func ParseNodeKind(s string) (NodeKind, bool) {
	for k := KindGroup; k <= KindModel; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// WrapMode controls how the text layout engine breaks lines.
type WrapMode uint8

const (
	WrapNone      WrapMode = iota // only explicit newlines break lines
	WrapCharacter                 // break before the glyph that overflows
	WrapWord                      // break at the last whitespace, else like WrapCharacter
)

// HAlign controls horizontal text alignment within the text box.
type HAlign uint8

const (
	HAlignLeft   HAlign = iota // align lines to the left edge (default)
	HAlignCenter               // center lines horizontally
	HAlignRight                // align lines to the right edge
)

// VAlign controls vertical text alignment within the text box.
type VAlign uint8

const (
	VAlignTop    VAlign = iota // first line at the top edge (default)
	VAlignCenter               // block centered vertically
	VAlignBottom               // last line at the bottom edge
)
