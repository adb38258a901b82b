package ebitengpu

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

// Ebitengine has no stencil buffer. The device keeps one as an offscreen
// image whose red channel stores the value as n/255. Color draws that pass
// an EQUAL test go to a layer image first; the layer is composited onto
// the target through the mask shader whenever the stencil is about to
// change and at the end of the frame. Because the layer is always flushed
// before the stencil is rewritten, the mask test is exact.

// stencilImage returns the stencil image, acquiring a cleared one on
// first use in the frame.
func (d *Device) stencilImage() *ebiten.Image {
	if d.stencil == nil {
		d.stencil = d.pool.acquire(d.width, d.height)
	}
	return d.stencil
}

// layerFor returns the image color draws go to under the current stencil
// state.
func (d *Device) layerFor() *ebiten.Image {
	st := d.state.stencil
	if !st.Enabled || st.Func != marquee.StencilEqual {
		return d.target
	}
	if d.layer != nil && d.layerRef != st.Ref {
		d.flushLayer()
	}
	if d.layer == nil {
		d.layer = d.pool.acquire(d.width, d.height)
		d.layerRef = st.Ref
	}
	return d.layer
}

// flushLayer composites the pending layer onto the target where the
// stencil equals the layer's reference value.
func (d *Device) flushLayer() {
	if d.layer == nil {
		return
	}
	stencil := d.stencilImage()
	w, h := float32(d.width), float32(d.height)
	d.quad[0] = ebiten.Vertex{DstX: 0, DstY: 0, SrcX: 0, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	d.quad[1] = ebiten.Vertex{DstX: w, DstY: 0, SrcX: w, SrcY: 0, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	d.quad[2] = ebiten.Vertex{DstX: 0, DstY: h, SrcX: 0, SrcY: h, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	d.quad[3] = ebiten.Vertex{DstX: w, DstY: h, SrcX: w, SrcY: h, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
	var op ebiten.DrawTrianglesShaderOptions
	op.Images[0] = d.layer
	op.Images[1] = stencil
	op.Uniforms = map[string]any{"Ref": float32(d.layerRef)}
	op.Blend = ebiten.BlendSourceOver
	d.target.DrawTrianglesShader32(d.quad[:], quadIndices[:], d.mask, &op)
	d.pool.release(d.layer)
	d.layer = nil
	d.frame.LayerFlushes++
}

// writeStencil applies the stencil operation to the pixels covered by the
// batch's triangles.
func (d *Device) writeStencil(st marquee.StencilState) {
	if len(d.batch.idx) == 0 {
		return
	}
	d.flushLayer()
	stencil := d.stencilImage()
	switch st.Op {
	case marquee.StencilReplace:
		if st.Func == marquee.StencilEqual {
			// Passing pixels already hold Ref.
			return
		}
		var op ebiten.DrawTrianglesShaderOptions
		op.Uniforms = map[string]any{"Color": []float32{float32(st.Ref) / 255, 0, 0, 1}}
		op.Blend = ebiten.BlendCopy
		stencil.DrawTrianglesShader32(d.batch.verts, d.batch.idx, d.programs[marquee.ShaderSolid].shader, &op)
	case marquee.StencilIncr, marquee.StencilDecr:
		if d.scratch == nil {
			d.scratch = d.pool.acquire(d.width, d.height)
		}
		var copyOp ebiten.DrawImageOptions
		copyOp.Blend = ebiten.BlendCopy
		d.scratch.DrawImage(stencil, &copyOp)

		// The stencil op shader reads the copy at the destination pixel.
		for i := range d.batch.verts {
			d.batch.verts[i].SrcX = d.batch.verts[i].DstX
			d.batch.verts[i].SrcY = d.batch.verts[i].DstY
		}
		delta := float32(1)
		if st.Op == marquee.StencilDecr {
			delta = -1
		}
		equal := float32(0)
		if st.Func == marquee.StencilEqual {
			equal = 1
		}
		var op ebiten.DrawTrianglesShaderOptions
		op.Images[0] = d.scratch
		op.Uniforms = map[string]any{"Ref": float32(st.Ref), "Delta": delta, "Equal": equal}
		op.Blend = ebiten.BlendCopy
		stencil.DrawTrianglesShader32(d.batch.verts, d.batch.idx, d.stencilOp, &op)
	}
	d.frame.StencilWrites++
}

// releaseStencil returns the frame's offscreen images to the pool.
func (d *Device) releaseStencil() {
	d.pool.release(d.layer)
	d.pool.release(d.stencil)
	d.pool.release(d.scratch)
	d.layer, d.stencil, d.scratch = nil, nil, nil
}

var quadIndices = [6]uint32{0, 1, 2, 1, 3, 2}
