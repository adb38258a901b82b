package ebitengpu

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

// --- Kage shader sources ---
// All shaders use //kage:unit pixels. Ebitengine works in premultiplied
// alpha: Color uniforms and texture pixels arrive premultiplied.
//
// Vertex color carries per-vertex data computed on the CPU: the Lambert
// term in .r for lit programs, the glyph color for the font program.

const solidShaderSrc = `//kage:unit pixels
package main

var Color vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return Color
}
`

const textureShaderSrc = `//kage:unit pixels
package main

var Color vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return imageSrc0At(src) * Color
}
`

// The border program wraps src into [UVMin, UVMax) (pixels, relative to
// the image origin). Samples that land outside the image read transparent,
// which is the clamp-to-border behavior.
const textureBorderShaderSrc = `//kage:unit pixels
package main

var Color vec4
var UVMin vec2
var UVMax vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	p := src - origin
	span := UVMax - UVMin
	px := p.x
	py := p.y
	if span.x > 0 {
		px = UVMin.x + mod(px-UVMin.x, span.x)
	}
	if span.y > 0 {
		py = UVMin.y + mod(py-UVMin.y, span.y)
	}
	return imageSrc0At(vec2(px, py)+origin) * Color
}
`

const litColorShaderSrc = `//kage:unit pixels
package main

var Color vec4
var Ambient float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	l := Ambient + (1-Ambient)*color.r
	return vec4(Color.rgb*l, Color.a)
}
`

const litTextureShaderSrc = `//kage:unit pixels
package main

var Color vec4
var Ambient float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src) * Color
	l := Ambient + (1-Ambient)*color.r
	return vec4(c.rgb*l, c.a)
}
`

const litTextureBorderShaderSrc = `//kage:unit pixels
package main

var Color vec4
var Ambient float
var UVMin vec2
var UVMax vec2

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	origin := imageSrc0Origin()
	p := src - origin
	span := UVMax - UVMin
	px := p.x
	py := p.y
	if span.x > 0 {
		px = UVMin.x + mod(px-UVMin.x, span.x)
	}
	if span.y > 0 {
		py = UVMin.y + mod(py-UVMin.y, span.y)
	}
	c := imageSrc0At(vec2(px, py)+origin) * Color
	l := Ambient + (1-Ambient)*color.r
	return vec4(c.rgb*l, c.a)
}
`

// Glyph coverage lives in the red channel of a gray atlas.
const fontShaderSrc = `//kage:unit pixels
package main

var Color vec4

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	return color * Color.a * imageSrc0At(src).r
}
`

// stencilOpShaderSrc rewrites stencil values. Images[0] is a copy of the
// stencil taken before the draw; the value is stored in .r as n/255.
// Equal selects the EQUAL comparison, otherwise every fragment passes.
const stencilOpShaderSrc = `//kage:unit pixels
package main

var Ref float
var Delta float
var Equal float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := imageSrc0UnsafeAt(src).r * 255
	if Equal < 0.5 || abs(s-Ref) < 0.5 {
		s = clamp(s+Delta, 0, 255)
	}
	return vec4(s/255, 0, 0, 1)
}
`

// maskShaderSrc composites a layer (Images[0]) where the stencil
// (Images[1]) equals Ref.
const maskShaderSrc = `//kage:unit pixels
package main

var Ref float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	s := imageSrc1UnsafeAt(src).r * 255
	if abs(s-Ref) >= 0.5 {
		return vec4(0)
	}
	return imageSrc0UnsafeAt(src)
}
`

var programSources = [...]string{
	marquee.ShaderSolid:         solidShaderSrc,
	marquee.ShaderTexture:       textureShaderSrc,
	marquee.ShaderTextureBorder: textureBorderShaderSrc,
	marquee.ShaderLitColor:      litColorShaderSrc,
	marquee.ShaderLitTexture:    litTextureShaderSrc,
	marquee.ShaderFont:          fontShaderSrc,

	marquee.ShaderLitTextureBorder: litTextureBorderShaderSrc,
}

// program is a compiled Kage shader for one ShaderKind.
type program struct {
	kind   marquee.ShaderKind
	shader *ebiten.Shader
}

func (p *program) Kind() marquee.ShaderKind { return p.kind }

// textured reports whether the program samples Images[0].
func (p *program) textured() bool {
	switch p.kind {
	case marquee.ShaderTexture, marquee.ShaderTextureBorder, marquee.ShaderLitTexture,
		marquee.ShaderLitTextureBorder, marquee.ShaderFont:
		return true
	}
	return false
}

// lit reports whether the program expects the Lambert term in vertex color.
func (p *program) lit() bool {
	switch p.kind {
	case marquee.ShaderLitColor, marquee.ShaderLitTexture, marquee.ShaderLitTextureBorder:
		return true
	}
	return false
}

// bordered reports whether the program takes UVMin and UVMax.
func (p *program) bordered() bool {
	return p.kind == marquee.ShaderTextureBorder || p.kind == marquee.ShaderLitTextureBorder
}

func compileShader(name, src string) (*ebiten.Shader, error) {
	s, err := ebiten.NewShader([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("ebitengpu: compile %s shader: %w", name, err)
	}
	return s, nil
}
