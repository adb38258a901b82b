package ebitengpu

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/marquee"
)

const (
	viewW = 200
	viewH = 100
)

func triangle(z float32) marquee.Geometry {
	return marquee.Geometry{
		Positions: []float32{-1, 1, z, 1, 1, z, -1, -1, z},
		UVs:       []float32{0, 0, 1, 0, 0, 1},
		Indices:   []uint16{0, 1, 2},
	}
}

func TestBatchProjectsNDCToPixels(t *testing.T) {
	var b batch
	require.NoError(t, b.build(triangle(0), marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 64, 32, shading{}))

	require.Len(t, b.verts, 3)
	assert.InDelta(t, 0, b.verts[0].DstX, 1e-4)
	assert.InDelta(t, 0, b.verts[0].DstY, 1e-4)
	assert.InDelta(t, viewW, b.verts[1].DstX, 1e-4)
	assert.InDelta(t, viewH, b.verts[2].DstY, 1e-4)
	assert.InDelta(t, 64, b.verts[1].SrcX, 1e-4)
	assert.InDelta(t, 32, b.verts[2].SrcY, 1e-4)
	assert.Equal(t, []uint32{0, 1, 2}, b.idx)
}

func TestBatchPixelProjectionMatchesScreen(t *testing.T) {
	mvp := marquee.PixelOrtho(viewW, viewH).Mul4(mgl32.Translate3D(10, 20, 0))
	g := marquee.Geometry{
		Positions: []float32{0, 0, 0, 30, 0, 0, 0, 40, 0},
		Indices:   []uint16{0, 1, 2},
	}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawTriangles, mvp, viewW, viewH, 1, 1, shading{}))
	assert.InDelta(t, 10, b.verts[0].DstX, 1e-3)
	assert.InDelta(t, 20, b.verts[0].DstY, 1e-3)
	assert.InDelta(t, 40, b.verts[1].DstX, 1e-3)
	assert.InDelta(t, 60, b.verts[2].DstY, 1e-3)
}

func TestBatchCullsBehindEye(t *testing.T) {
	persp := mgl32.Perspective(mgl32.DegToRad(60), 2, 0.1, 100)
	g := marquee.Geometry{
		Positions: []float32{
			-1, 1, -5, 1, 1, -5, -1, -1, -5, // in front
			-1, 1, 5, 1, 1, 5, -1, -1, 5, // behind
		},
		Indices: []uint16{0, 1, 2, 3, 4, 5},
	}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawTriangles, persp, viewW, viewH, 1, 1, shading{}))
	assert.Equal(t, []uint32{0, 1, 2}, b.idx)
	assert.Equal(t, 1, b.culled)
}

func TestBatchIndexOutOfRange(t *testing.T) {
	g := triangle(0)
	g.Indices = []uint16{0, 1, 7}
	var b batch
	assert.ErrorIs(t, b.build(g, marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 1, 1, shading{}), errIndexRange)

	g.Indices = []uint16{0, 9}
	assert.ErrorIs(t, b.build(g, marquee.DrawLines, mgl32.Ident4(), viewW, viewH, 1, 1, shading{}), errIndexRange)
}

func TestBatchLinesExpandToQuads(t *testing.T) {
	mvp := marquee.PixelOrtho(viewW, viewH)
	g := marquee.Geometry{
		Positions: []float32{10, 10, 0, 50, 10, 0, 50, 10, 0},
		Indices:   []uint16{0, 1, 1, 2},
	}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawLines, mvp, viewW, viewH, 1, 1, shading{}))

	// The zero length segment is dropped; the other becomes two triangles.
	require.Len(t, b.idx, 6)
	require.Len(t, b.verts, 3+4)
	quad := b.verts[3:]
	assert.InDelta(t, 10.5, quad[0].DstY, 1e-3)
	assert.InDelta(t, 9.5, quad[1].DstY, 1e-3)
	assert.InDelta(t, 50, quad[2].DstX, 1e-3)
}

func TestBatchSortBackToFront(t *testing.T) {
	g := marquee.Geometry{
		Positions: []float32{
			-1, 1, -0.5, 1, 1, -0.5, -1, -1, -0.5, // near
			-1, 1, 0.5, 1, 1, 0.5, -1, -1, 0.5, // far
		},
		Indices: []uint16{0, 1, 2, 3, 4, 5},
	}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 1, 1, shading{}))
	b.sortBackToFront()
	assert.Equal(t, []uint32{3, 4, 5, 0, 1, 2}, b.idx)
}

func TestShadingLambert(t *testing.T) {
	g := marquee.Geometry{
		Positions: []float32{0, 0, 0, 0, 0, 0, 0, 0, 0},
		Normals:   []float32{0, 0, 1, 0, 0, -1, 1, 0, 0},
		Indices:   []uint16{0, 1, 2},
	}
	sh := shading{mode: shadeLambert, model: mgl32.Ident4(), light: marquee.Vec3{0, 0, 2}}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 1, 1, sh))
	assert.InDelta(t, 1, b.verts[0].ColorR, 1e-5)
	assert.InDelta(t, 0, b.verts[1].ColorR, 1e-5, "facing away clamps to zero")
	assert.InDelta(t, 0, b.verts[2].ColorR, 1e-5)

	// Rotating the model turns the +x normal towards the light.
	sh.model = mgl32.HomogRotate3DY(mgl32.DegToRad(-90))
	require.NoError(t, b.build(g, marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 1, 1, sh))
	assert.InDelta(t, 1, b.verts[2].ColorR, 1e-4)
}

func TestShadingVertexColorPremultiplied(t *testing.T) {
	g := triangle(0)
	g.Colors = []float32{
		1, 0, 0, 1,
		0, 1, 0, 0.5,
		1, 1, 1, 1,
	}
	sh := shading{mode: shadeVertex, tint: marquee.Color{R: 1, G: 1, B: 1, A: 0.5}}
	var b batch
	require.NoError(t, b.build(g, marquee.DrawTriangles, mgl32.Ident4(), viewW, viewH, 1, 1, sh))
	v := b.verts[1]
	assert.InDelta(t, 0, v.ColorR, 1e-5)
	assert.InDelta(t, 0.25, v.ColorG, 1e-5)
	assert.InDelta(t, 0.25, v.ColorA, 1e-5)
	assert.InDelta(t, 0.5, b.verts[0].ColorR, 1e-5)
}

func TestPremultiply(t *testing.T) {
	pix := []byte{200, 100, 50, 0xff, 200, 100, 50, 0x80, 10, 20, 30, 0}
	premultiply(pix)
	assert.Equal(t, []byte{200, 100, 50, 0xff, 100, 50, 25, 0x80, 0, 0, 0, 0}, pix)
}

func TestPremultipliedPixelsCopies(t *testing.T) {
	src := []byte{0xff, 0xff, 0xff, 0x80}
	out, err := premultipliedPixels(marquee.PixelBuffer{Width: 1, Height: 1, BPP: 4, Pix: src})
	require.NoError(t, err)
	assert.Equal(t, byte(0x80), out[0])
	assert.Equal(t, byte(0xff), src[0], "caller buffer untouched")

	out, err = premultipliedPixels(marquee.PixelBuffer{Width: 2, Height: 1, BPP: 1, Pix: []byte{0x40, 0xff}})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x40, 0x40, 0x40, 0xff, 0xff, 0xff, 0xff, 0xff}, out)
}

func TestPremultipliedPixelsInvalid(t *testing.T) {
	tests := []struct {
		name string
		pix  marquee.PixelBuffer
	}{
		{"zero size", marquee.PixelBuffer{Width: 0, Height: 1, BPP: 4}},
		{"short", marquee.PixelBuffer{Width: 2, Height: 2, BPP: 3, Pix: make([]byte, 5)}},
		{"bpp", marquee.PixelBuffer{Width: 1, Height: 1, BPP: 5, Pix: make([]byte, 5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := premultipliedPixels(tt.pix)
			assert.Error(t, err)
		})
	}
	_, err := premultipliedPixels(marquee.PixelBuffer{Width: 1, Height: 1, BPP: 6, Pix: make([]byte, 6)})
	assert.ErrorIs(t, err, marquee.ErrUnsupportedBPP)
}
