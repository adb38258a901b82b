// Package ebitengpu implements marquee.Device on top of Ebitengine, and
// adapts a Stage and Renderer into an ebiten.Game.
//
// Ebitengine draws 2D triangles with Kage shaders, so the device projects
// vertices on the CPU, emulates the stencil buffer with offscreen images
// and approximates the depth test by sorting triangles within a draw.
package ebitengpu

import (
	"errors"
	"fmt"
	"image/color"
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/marquee"
)

var (
	errNoTarget  = errors.New("ebitengpu: no render target")
	errNoProgram = errors.New("ebitengpu: draw without program")
	errNoTexture = errors.New("ebitengpu: textured draw without bound texture")
	errForeign   = errors.New("ebitengpu: resource not created by this device")
)

var _ marquee.Device = (*Device)(nil)

// DefaultAmbient is the light level of surfaces facing away from the light.
const DefaultAmbient = 0.25

// Options configures a Device. The zero value is usable.
type Options struct {
	// Ambient is the minimum light level for lit programs, in [0, 1].
	// Zero selects DefaultAmbient; use a tiny positive value for none.
	Ambient float32
}

// DeviceStats counts the work done in one frame.
type DeviceStats struct {
	Draws          int
	Triangles      int
	Culled         int
	LayerFlushes   int
	StencilWrites  int
	TextureUploads int
}

type texture struct {
	img  *ebiten.Image
	w, h int
}

func (t *texture) Size() (width, height int) { return t.w, t.h }

type mesh struct {
	geom marquee.Geometry
}

func (m *mesh) VertexCount() int { return m.geom.VertexCount() }

// Device draws into an ebiten.Image. Call SetTarget before each frame;
// all methods must run on the ebiten draw goroutine.
type Device struct {
	opts Options

	target        *ebiten.Image
	width, height int

	programs  [len(programSources)]*program
	stencilOp *ebiten.Shader
	mask      *ebiten.Shader

	state struct {
		program   *program
		texture   *texture
		blend     bool
		depth     bool
		colorMask bool
		stencil   marquee.StencilState
	}

	pool     *imagePool
	stencil  *ebiten.Image
	layer    *ebiten.Image
	scratch  *ebiten.Image
	layerRef uint8

	batch    batch
	quad     [4]ebiten.Vertex
	uniforms map[string]any
	colorU   [4]float32
	uvMin    [2]float32
	uvMax    [2]float32

	frame DeviceStats
	last  DeviceStats
	err   error
}

// New compiles the internal shaders and returns a Device.
func New(opts Options) (*Device, error) {
	if opts.Ambient <= 0 {
		opts.Ambient = DefaultAmbient
	}
	if opts.Ambient > 1 {
		opts.Ambient = 1
	}
	d := &Device{
		opts:     opts,
		pool:     newImagePool(),
		uniforms: make(map[string]any, 4),
	}
	d.state.colorMask = true
	var err error
	if d.stencilOp, err = compileShader("stencil", stencilOpShaderSrc); err != nil {
		return nil, err
	}
	if d.mask, err = compileShader("mask", maskShaderSrc); err != nil {
		return nil, err
	}
	if _, err = d.NewProgram(marquee.ShaderSolid); err != nil {
		return nil, err
	}
	return d, nil
}

// SetTarget selects the image the next frame is drawn into. A change of
// size drops pooled offscreen images.
func (d *Device) SetTarget(img *ebiten.Image) {
	d.target = img
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() != d.width || b.Dy() != d.height {
		d.releaseStencil()
		d.pool.drain()
		d.width, d.height = b.Dx(), b.Dy()
	}
}

// Size returns the target size in pixels.
func (d *Device) Size() (width, height int) { return d.width, d.height }

// Stats returns the counters of the last completed frame.
func (d *Device) Stats() DeviceStats { return d.last }

func (d *Device) BeginFrame() {
	if d.target == nil {
		d.fail(errNoTarget)
	}
	d.state.program = nil
	d.state.texture = nil
	d.state.blend = false
	d.state.depth = false
	d.state.colorMask = true
	d.state.stencil = marquee.StencilState{}
	d.frame = DeviceStats{}
}

func (d *Device) EndFrame() {
	if d.target != nil {
		d.flushLayer()
	}
	d.releaseStencil()
	d.last = d.frame
}

func (d *Device) NewProgram(kind marquee.ShaderKind) (marquee.Program, error) {
	if int(kind) >= len(programSources) {
		return nil, fmt.Errorf("ebitengpu: unknown program %v", kind)
	}
	if p := d.programs[kind]; p != nil {
		return p, nil
	}
	s, err := compileShader(kind.String(), programSources[kind])
	if err != nil {
		return nil, err
	}
	p := &program{kind: kind, shader: s}
	d.programs[kind] = p
	return p, nil
}

func (d *Device) UseProgram(p marquee.Program) {
	if p == nil {
		d.state.program = nil
		return
	}
	pp, ok := p.(*program)
	if !ok {
		d.fail(errForeign)
		return
	}
	d.state.program = pp
}

func (d *Device) NewTexture(pix marquee.PixelBuffer) (marquee.DeviceTexture, error) {
	rgba, err := premultipliedPixels(pix)
	if err != nil {
		return nil, err
	}
	img := ebiten.NewImage(pix.Width, pix.Height)
	img.WritePixels(rgba)
	d.frame.TextureUploads++
	marquee.Logger().Debug("ebitengpu: texture created", "width", pix.Width, "height", pix.Height, "bpp", pix.BPP)
	return &texture{img: img, w: pix.Width, h: pix.Height}, nil
}

func (d *Device) UpdateTexture(t marquee.DeviceTexture, pix marquee.PixelBuffer) error {
	tt, ok := t.(*texture)
	if !ok {
		return errForeign
	}
	rgba, err := premultipliedPixels(pix)
	if err != nil {
		return err
	}
	if pix.Width != tt.w || pix.Height != tt.h {
		tt.img.Deallocate()
		tt.img = ebiten.NewImage(pix.Width, pix.Height)
		tt.w, tt.h = pix.Width, pix.Height
	}
	tt.img.WritePixels(rgba)
	d.frame.TextureUploads++
	return nil
}

func (d *Device) ReleaseTexture(t marquee.DeviceTexture) {
	tt, ok := t.(*texture)
	if !ok || tt.img == nil {
		return
	}
	if d.state.texture == tt {
		d.state.texture = nil
	}
	tt.img.Deallocate()
	tt.img = nil
}

func (d *Device) BindTexture(t marquee.DeviceTexture) {
	if t == nil {
		d.state.texture = nil
		return
	}
	tt, ok := t.(*texture)
	if !ok || tt.img == nil {
		d.fail(errForeign)
		return
	}
	d.state.texture = tt
}

func (d *Device) NewMesh(g marquee.Geometry) (marquee.Mesh, error) {
	m := &mesh{}
	copyGeometry(&m.geom, g, marquee.MeshAll)
	return m, nil
}

func (d *Device) UpdateMesh(m marquee.Mesh, g marquee.Geometry, dirty marquee.MeshBuffers) error {
	mm, ok := m.(*mesh)
	if !ok {
		return errForeign
	}
	copyGeometry(&mm.geom, g, dirty)
	return nil
}

func (d *Device) ReleaseMesh(m marquee.Mesh) {
	if mm, ok := m.(*mesh); ok {
		mm.geom = marquee.Geometry{}
	}
}

func (d *Device) SetBlend(on bool) { d.state.blend = on }

func (d *Device) SetDepthTest(on bool) { d.state.depth = on }

func (d *Device) SetColorMask(on bool) { d.state.colorMask = on }

// SetStencil changes the stencil state. Pending EQUAL draws are
// composited first so they are not reordered against later draws.
func (d *Device) SetStencil(s marquee.StencilState) {
	if s == d.state.stencil {
		return
	}
	if d.target != nil {
		d.flushLayer()
	}
	d.state.stencil = s
}

func (d *Device) ClearStencil() {
	if d.target != nil {
		d.flushLayer()
	}
	if d.stencil != nil {
		d.stencil.Clear()
	}
}

func (d *Device) Clear(c marquee.Color) {
	if d.target == nil {
		d.fail(errNoTarget)
		return
	}
	d.target.Fill(toNRGBA(c))
}

// Draw projects and submits one draw call under the current state.
func (d *Device) Draw(dc marquee.DrawCall) {
	if d.target == nil {
		d.fail(errNoTarget)
		return
	}
	p := d.state.program
	if p == nil {
		d.fail(errNoProgram)
		return
	}
	st := d.state.stencil
	writes := st.Enabled && st.Op != marquee.StencilKeep
	if !d.state.colorMask && !writes {
		return
	}
	g := dc.Geometry
	if dc.Mesh != nil {
		m, ok := dc.Mesh.(*mesh)
		if !ok {
			d.fail(errForeign)
			return
		}
		g = m.geom
	}
	if g.Empty() {
		return
	}

	var src *ebiten.Image
	texW, texH := float32(1), float32(1)
	if p.textured() {
		t := d.state.texture
		if t == nil || t.img == nil {
			d.fail(errNoTexture)
			return
		}
		src = t.img
		texW, texH = float32(t.w), float32(t.h)
	}
	var sh shading
	switch {
	case p.lit():
		sh = shading{mode: shadeLambert, model: dc.Model, light: dc.Light}
	case p.kind == marquee.ShaderFont:
		sh = shading{mode: shadeVertex, tint: dc.Color}
	}
	if err := d.batch.build(g, dc.Mode, dc.MVP, float32(d.width), float32(d.height), texW, texH, sh); err != nil {
		d.fail(fmt.Errorf("ebitengpu: draw %v: %w", p.kind, err))
		return
	}
	d.frame.Culled += d.batch.culled
	if len(d.batch.idx) == 0 {
		return
	}
	if d.state.depth && dc.Mode == marquee.DrawTriangles {
		d.batch.sortBackToFront()
	}
	if d.state.colorMask {
		d.drawColor(p, src, texW, texH, dc)
	}
	if writes {
		d.writeStencil(st)
	}
}

func (d *Device) drawColor(p *program, src *ebiten.Image, texW, texH float32, dc marquee.DrawCall) {
	dst := d.layerFor()
	clear(d.uniforms)
	c := dc.Color.Premultiplied()
	if p.kind == marquee.ShaderFont {
		// Glyph vertex colors already carry the tint.
		c = marquee.ColorWhite
	}
	d.colorU = [4]float32{c.R, c.G, c.B, c.A}
	d.uniforms["Color"] = d.colorU[:]
	if p.lit() {
		d.uniforms["Ambient"] = d.opts.Ambient
	}
	if p.bordered() {
		d.uvMin = [2]float32{dc.UVMin[0] * texW, dc.UVMin[1] * texH}
		d.uvMax = [2]float32{dc.UVMax[0] * texW, dc.UVMax[1] * texH}
		d.uniforms["UVMin"] = d.uvMin[:]
		d.uniforms["UVMax"] = d.uvMax[:]
	}
	var op ebiten.DrawTrianglesShaderOptions
	op.Images[0] = src
	op.Uniforms = d.uniforms
	op.Blend = ebiten.BlendCopy
	if d.state.blend {
		op.Blend = ebiten.BlendSourceOver
	}
	dst.DrawTrianglesShader32(d.batch.verts, d.batch.idx, p.shader, &op)
	d.frame.Draws++
	d.frame.Triangles += len(d.batch.idx) / 3
}

// Err returns and clears the first error recorded since the last call.
func (d *Device) Err() error {
	err := d.err
	d.err = nil
	return err
}

func (d *Device) fail(err error) {
	if d.err == nil {
		d.err = err
		marquee.Logger().Warn("ebitengpu: device error", "err", err)
	}
}

// premultipliedPixels expands pix to RGBA and premultiplies it into a new
// slice; the caller's buffer is left untouched.
func premultipliedPixels(pix marquee.PixelBuffer) ([]byte, error) {
	if pix.Width <= 0 || pix.Height <= 0 {
		return nil, fmt.Errorf("ebitengpu: texture size %dx%d", pix.Width, pix.Height)
	}
	if pix.BPP < 1 || pix.BPP > 4 {
		return nil, fmt.Errorf("ebitengpu: texture bpp %d: %w", pix.BPP, marquee.ErrUnsupportedBPP)
	}
	if want := pix.Width * pix.Height * pix.BPP; len(pix.Pix) < want {
		return nil, fmt.Errorf("ebitengpu: texture has %d bytes, want %d", len(pix.Pix), want)
	}
	rgba := pix.RGBA()
	if pix.BPP == 4 {
		rgba = slices.Clone(rgba)
	}
	premultiply(rgba)
	return rgba, nil
}

func copyGeometry(dst *marquee.Geometry, g marquee.Geometry, dirty marquee.MeshBuffers) {
	if dirty&marquee.MeshPositions != 0 {
		dst.Positions = slices.Clone(g.Positions)
		dst.Colors = slices.Clone(g.Colors)
	}
	if dirty&marquee.MeshNormals != 0 {
		dst.Normals = slices.Clone(g.Normals)
	}
	if dirty&marquee.MeshUVs != 0 {
		dst.UVs = slices.Clone(g.UVs)
	}
	if dirty&marquee.MeshIndices != 0 {
		dst.Indices = slices.Clone(g.Indices)
	}
}

func toNRGBA(c marquee.Color) color.NRGBA {
	return color.NRGBA{R: unit8(c.R), G: unit8(c.G), B: unit8(c.B), A: unit8(c.A)}
}

func unit8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 0xff
	}
	return uint8(v*0xff + 0.5)
}
