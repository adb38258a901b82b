package ebitengpu

import (
	"cmp"
	"errors"
	"slices"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

var errIndexRange = errors.New("ebitengpu: index out of range")

// shadeMode selects what a vertex's color carries into the fragment shader.
type shadeMode uint8

const (
	shadeNone    shadeMode = iota // opaque white, unused by the program
	shadeLambert                  // Lambert term in R
	shadeVertex                   // premultiplied per-vertex color times tint
)

// shading is the per-draw input to vertex color computation.
type shading struct {
	mode  shadeMode
	model marquee.Mat4
	light marquee.Vec3
	tint  marquee.Color
}

// batch turns one draw call's geometry into screen-space ebiten vertices.
// Its slices are reused across draws so steady-state frames do not
// allocate.
type batch struct {
	verts  []ebiten.Vertex
	idx    []uint32
	z      []float32
	behind []bool
	tris   []sortTri
	culled int
}

type sortTri struct {
	i [3]uint32
	z float32
}

func (b *batch) reset() {
	b.verts = b.verts[:0]
	b.idx = b.idx[:0]
	b.z = b.z[:0]
	b.behind = b.behind[:0]
	b.culled = 0
}

// build projects g through mvp onto a vw x vh pixel viewport. UVs are
// scaled by texW/texH into source pixels. Triangles with a vertex behind
// the eye are dropped.
func (b *batch) build(g marquee.Geometry, mode marquee.DrawMode, mvp marquee.Mat4, vw, vh, texW, texH float32, sh shading) error {
	b.reset()
	n := g.VertexCount()
	for i := range n {
		clip := mvp.Mul4x1(mgl32.Vec4{g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2], 1})
		v := ebiten.Vertex{ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
		var z float32
		behind := clip[3] <= 0
		if !behind {
			inv := 1 / clip[3]
			v.DstX = (clip[0]*inv + 1) * 0.5 * vw
			v.DstY = (1 - clip[1]*inv) * 0.5 * vh
			z = clip[2] * inv
		}
		if len(g.UVs) >= i*2+2 {
			v.SrcX = g.UVs[i*2] * texW
			v.SrcY = g.UVs[i*2+1] * texH
		}
		sh.apply(&v, g, i)
		b.verts = append(b.verts, v)
		b.z = append(b.z, z)
		b.behind = append(b.behind, behind)
	}
	if mode == marquee.DrawLines {
		return b.lines(g.Indices)
	}
	for t := 0; t+2 < len(g.Indices); t += 3 {
		a, c, d := uint32(g.Indices[t]), uint32(g.Indices[t+1]), uint32(g.Indices[t+2])
		if int(a) >= n || int(c) >= n || int(d) >= n {
			return errIndexRange
		}
		if b.behind[a] || b.behind[c] || b.behind[d] {
			b.culled++
			continue
		}
		b.idx = append(b.idx, a, c, d)
	}
	return nil
}

// lines expands each index pair into a one pixel wide quad.
func (b *batch) lines(indices []uint16) error {
	n := uint32(len(b.verts))
	for s := 0; s+1 < len(indices); s += 2 {
		a, c := uint32(indices[s]), uint32(indices[s+1])
		if a >= n || c >= n {
			return errIndexRange
		}
		if b.behind[a] || b.behind[c] {
			b.culled++
			continue
		}
		va, vc := b.verts[a], b.verts[c]
		dx, dy := vc.DstX-va.DstX, vc.DstY-va.DstY
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := -dy/l*0.5, dx/l*0.5
		base := uint32(len(b.verts))
		for _, q := range [4]struct {
			v    ebiten.Vertex
			z    float32
			sign float32
		}{{va, b.z[a], 1}, {va, b.z[a], -1}, {vc, b.z[c], 1}, {vc, b.z[c], -1}} {
			q.v.DstX += nx * q.sign
			q.v.DstY += ny * q.sign
			b.verts = append(b.verts, q.v)
			b.z = append(b.z, q.z)
			b.behind = append(b.behind, false)
		}
		b.idx = append(b.idx, base, base+1, base+2, base+1, base+3, base+2)
	}
	return nil
}

// sortBackToFront reorders triangles so larger NDC depth draws first. It
// stands in for a depth buffer within a single draw.
func (b *batch) sortBackToFront() {
	b.tris = b.tris[:0]
	for t := 0; t+2 < len(b.idx); t += 3 {
		i := [3]uint32{b.idx[t], b.idx[t+1], b.idx[t+2]}
		z := (b.z[i[0]] + b.z[i[1]] + b.z[i[2]]) / 3
		b.tris = append(b.tris, sortTri{i: i, z: z})
	}
	slices.SortStableFunc(b.tris, func(x, y sortTri) int {
		return cmp.Compare(y.z, x.z)
	})
	b.idx = b.idx[:0]
	for _, t := range b.tris {
		b.idx = append(b.idx, t.i[0], t.i[1], t.i[2])
	}
}

func (sh shading) apply(v *ebiten.Vertex, g marquee.Geometry, i int) {
	switch sh.mode {
	case shadeLambert:
		l := float32(1)
		if len(g.Normals) >= i*3+3 && sh.light.Len() > 0 {
			nw := sh.model.Mat3().Mul3x1(mgl32.Vec3{g.Normals[i*3], g.Normals[i*3+1], g.Normals[i*3+2]})
			if nw.Len() > 0 {
				l = math32.Max(0, nw.Normalize().Dot(sh.light.Normalize()))
			}
		}
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = l, 0, 0, 1
	case shadeVertex:
		c := sh.tint
		if len(g.Colors) >= i*4+4 {
			c.R *= g.Colors[i*4]
			c.G *= g.Colors[i*4+1]
			c.B *= g.Colors[i*4+2]
			c.A *= g.Colors[i*4+3]
		}
		c = c.Premultiplied()
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = c.R, c.G, c.B, c.A
	}
}

// premultiply converts straight-alpha RGBA bytes in place.
func premultiply(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		a := uint32(pix[i+3])
		if a == 0xff {
			continue
		}
		pix[i] = byte(uint32(pix[i]) * a / 0xff)
		pix[i+1] = byte(uint32(pix[i+1]) * a / 0xff)
		pix[i+2] = byte(uint32(pix[i+2]) * a / 0xff)
	}
}
