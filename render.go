package marquee

import (
	"fmt"
	"time"
)

// DefaultFOV is the vertical field of view, in degrees, of the default
// pixel-perfect projection.
const DefaultFOV = 45

// RendererOptions configures a Renderer. The zero value is usable.
type RendererOptions struct {
	// Projection builds the projection for a drawable size. Defaults to
	// PixelPerfect with FOV.
	Projection func(width, height int) Mat4
	// FOV is the field of view used by the default projection.
	FOV float32
	// Light is the direction towards the light for lit Model shaders.
	// Defaults to (0.3, -0.5, -1) normalized.
	Light Vec3
	// Background is used to clear the frame when Clear is set.
	Background Color
	Clear      bool
}

// RenderStats counts the work done by the last Render.
type RenderStats struct {
	Nodes      int
	DrawCalls  int
	Skipped    int
	Clips      int
	Switches   int
	StateSkips int
	Traverse   time.Duration
}

// Renderer draws a Stage through a Device. Build one per Device; it holds
// the compiled programs, the projection and the traversal context.
type Renderer struct {
	dev      Device
	opts     RendererOptions
	programs [shaderKindCount]Program
	ctx      *RenderContext
	camera   *Camera
	proj     Mat4
	viewProj Mat4
	light    Vec3
	width    int
	height   int
	clip     uint8
	stats    RenderStats
}

// NewRenderer compiles every program on dev.
func NewRenderer(dev Device, opts RendererOptions) (*Renderer, error) {
	if opts.FOV <= 0 {
		opts.FOV = DefaultFOV
	}
	if opts.Projection == nil {
		fov := opts.FOV
		opts.Projection = func(w, h int) Mat4 {
			return PixelPerfect(float32(w), float32(h), fov)
		}
	}
	light := opts.Light
	if light.Len() == 0 {
		light = Vec3{0.3, -0.5, -1}
	}
	r := &Renderer{
		dev:   dev,
		opts:  opts,
		ctx:   newRenderContext(dev),
		light: light.Normalize(),
	}
	for k := ShaderKind(0); k < shaderKindCount; k++ {
		p, err := dev.NewProgram(k)
		if err != nil {
			return nil, fmt.Errorf("marquee: compile %v program: %w", k, err)
		}
		r.programs[k] = p
	}
	return r, nil
}

// Context returns the traversal context.
func (r *Renderer) Context() *RenderContext { return r.ctx }

// Stats returns the counters of the last Render.
func (r *Renderer) Stats() RenderStats { return r.stats }

// Projection returns the current projection matrix.
func (r *Renderer) Projection() Mat4 { return r.proj }

// SetCamera installs a view transform applied to the whole scene. nil
// removes it.
func (r *Renderer) SetCamera(c *Camera) { r.camera = c }

// Camera returns the installed camera, or nil.
func (r *Renderer) Camera() *Camera { return r.camera }

// Resize rebuilds the projection for a new drawable size.
func (r *Renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.width, r.height = width, height
	r.proj = r.opts.Projection(width, height)
}

// Render draws one frame of s. It must run on the render goroutine after
// s.Advance.
func (r *Renderer) Render(s *Stage) {
	t0 := time.Now()
	if w, h := r.dev.Size(); w != r.width || h != r.height {
		r.Resize(w, h)
	}
	r.viewProj = r.proj
	if r.camera != nil {
		r.viewProj = r.proj.Mul4(r.camera.View(r.width, r.height))
	}
	r.ctx.reset()
	r.stats = RenderStats{}
	r.clip = 0

	r.dev.BeginFrame()
	if r.opts.Clear {
		r.dev.Clear(r.opts.Background)
	}
	if root, ok := s.nodes[s.root]; ok {
		r.traverse(s, root)
	}
	r.ctx.checkBalanced()
	if r.clip != 0 {
		panic(fmt.Sprintf("marquee: %d clip regions left open after frame", r.clip))
	}
	r.dev.EndFrame()
	r.reclaim(s)

	if err := r.dev.Err(); err != nil {
		Logger().Warn("marquee: device error", "err", err)
	}
	r.stats.Switches = r.ctx.switches
	r.stats.StateSkips = r.ctx.skipped
	r.stats.Traverse = time.Since(t0)
	if s.debug {
		s.debugLogRender(r.stats)
	}
}

func (r *Renderer) traverse(s *Stage, n Node) {
	b := n.base()
	if !b.visible() {
		return
	}
	r.stats.Nodes++
	r.ctx.Save()
	r.ctx.applyLocal(b)
	r.ctx.MultiplyOpacity(b.float(PropOpacity))

	switch n := n.(type) {
	case *Group:
		r.drawGroup(s, n)
	case *Rect:
		r.drawRect(n)
	case *Polygon:
		r.drawPolygon(n)
	case *Text:
		r.drawText(s, n)
	case *Model:
		r.drawModel(n)
	default:
		panic(fmt.Sprintf("marquee: unknown node type %T", n))
	}

	r.ctx.Restore()
}

func (r *Renderer) drawGroup(s *Stage, g *Group) {
	clip := g.bool(PropClipRect)
	w, h := g.size()
	if clip && (w <= 0 || h <= 0) {
		r.stats.Skipped++
		return
	}
	if clip {
		r.enterClip(w, h)
	}
	depth := g.bool(PropDepthTest)
	if depth {
		r.ctx.PushDepth()
	}
	for _, id := range g.children {
		if c, ok := s.nodes[id]; ok {
			r.traverse(s, c)
		}
	}
	if depth {
		r.ctx.PopDepth()
	}
	if clip {
		r.exitClip(w, h)
	}
}

// enterClip writes the group's [0,w]x[0,h] rectangle into the stencil. The
// outermost clip replaces; nested clips increment where the parent passes.
func (r *Renderer) enterClip(w, h float32) {
	parent := r.clip
	r.clip++
	r.stats.Clips++
	st := StencilState{Enabled: true, Func: StencilAlways, Ref: 1, Op: StencilReplace, Mask: 0xff}
	if parent == 0 {
		r.dev.ClearStencil()
	} else {
		st = StencilState{Enabled: true, Func: StencilEqual, Ref: parent, Op: StencilIncr, Mask: 0xff}
	}
	r.stencilQuad(w, h, st)
	r.dev.SetStencil(StencilState{Enabled: true, Func: StencilEqual, Ref: r.clip, Op: StencilKeep, Mask: 0xff})
}

// exitClip undoes enterClip: nested clips decrement their region back to
// the parent value, the outermost clip turns stenciling off.
func (r *Renderer) exitClip(w, h float32) {
	ref := r.clip
	r.clip--
	if r.clip == 0 {
		r.dev.SetStencil(StencilState{})
		return
	}
	r.stencilQuad(w, h, StencilState{Enabled: true, Func: StencilEqual, Ref: ref, Op: StencilDecr, Mask: 0xff})
	r.dev.SetStencil(StencilState{Enabled: true, Func: StencilEqual, Ref: r.clip, Op: StencilKeep, Mask: 0xff})
}

func (r *Renderer) stencilQuad(w, h float32, st StencilState) {
	r.dev.SetColorMask(false)
	r.dev.SetStencil(st)
	r.ctx.UseProgram(r.programs[ShaderSolid])
	r.dev.Draw(DrawCall{
		Geometry: quadGeometry(w, h, 0, 0, 1, 1),
		MVP:      r.viewProj.Mul4(r.ctx.matrix),
		Model:    r.ctx.matrix,
		Color:    ColorWhite,
	})
	r.dev.SetColorMask(true)
}

// submit issues one draw with the given program. Blending is switched on
// for the call when requested and restored afterwards.
func (r *Renderer) submit(kind ShaderKind, dc DrawCall, blend bool) {
	r.submitTextured(kind, nil, dc, blend)
}

// submitTextured binds the program, then tex when it is non-nil, and
// draws.
func (r *Renderer) submitTextured(kind ShaderKind, tex DeviceTexture, dc DrawCall, blend bool) {
	r.ctx.UseProgram(r.programs[kind])
	if tex != nil {
		r.ctx.BindTexture(tex)
	}
	prev := r.ctx.SetBlend(blend)
	dc.MVP = r.viewProj.Mul4(r.ctx.matrix)
	dc.Model = r.ctx.matrix
	dc.Light = r.light
	r.dev.Draw(dc)
	r.stats.DrawCalls++
	r.ctx.SetBlend(prev)
}

func (r *Renderer) drawRect(n *Rect) {
	w, h := n.size()
	if w <= 0 || h <= 0 {
		r.stats.Skipped++
		return
	}
	color := n.color().Scale(r.ctx.opacity)
	tex := n.texture()
	if tex == nil {
		r.submit(ShaderSolid, DrawCall{
			Geometry: quadGeometry(w, h, 0, 0, 1, 1),
			Color:    color,
		}, color.A < 1)
		return
	}
	dt := r.syncTexture(tex)
	if dt == nil {
		r.stats.Skipped++
		return
	}
	u0, v0, u1, v1 := n.uvRange()
	kind := ShaderTexture
	if n.repeats() || u0 < 0 || v0 < 0 || u1 > 1 || v1 > 1 {
		kind = ShaderTextureBorder
	}
	r.submitTextured(kind, dt, DrawCall{
		Geometry: quadGeometry(w, h, u0, v0, u1, v1),
		Color:    color,
		UVMin:    [2]float32{n.float(PropTexLeft), n.float(PropTexTop)},
		UVMax:    [2]float32{n.float(PropTexRight), n.float(PropTexBottom)},
	}, color.A < 1 || tex.hasAlpha)
}

func (r *Renderer) drawPolygon(n *Polygon) {
	geom := n.geometry()
	if geom.Empty() {
		r.stats.Skipped++
		return
	}
	mode := DrawTriangles
	if !n.bool(PropFilled) {
		mode = DrawLines
	}
	color := n.color().Scale(r.ctx.opacity)
	r.submit(ShaderSolid, DrawCall{Mode: mode, Geometry: geom, Color: color}, color.A < 1)
}

func (r *Renderer) drawText(s *Stage, n *Text) {
	src := n.source
	if src == nil {
		if s.fonts == nil {
			r.stats.Skipped++
			return
		}
		var err error
		src, err = s.fonts.Get(n.props[PropFont].Str(), n.fontSize())
		if err != nil {
			Logger().Debug("marquee: text font unavailable", "node", n.id, "err", err)
			r.stats.Skipped++
			return
		}
	}
	buf := n.relayout(src)
	if buf.GlyphCount() == 0 {
		r.stats.Skipped++
		return
	}
	dt := r.syncTexture(src.Atlas())
	if dt == nil {
		r.stats.Skipped++
		return
	}
	r.submitTextured(ShaderFont, dt, DrawCall{
		Geometry: n.geom,
		Color:    ColorWhite.Scale(r.ctx.opacity),
	}, true)
}

func (r *Renderer) drawModel(n *Model) {
	geom := n.geometry()
	if geom.Empty() {
		r.stats.Skipped++
		return
	}
	tex := n.texture()
	textured := tex != nil && len(geom.UVs) > 0
	var dt DeviceTexture
	if textured {
		if dt = r.syncTexture(tex); dt == nil {
			r.stats.Skipped++
			return
		}
	}
	if n.mesh == nil {
		m, err := r.dev.NewMesh(geom)
		if err != nil {
			Logger().Warn("marquee: create mesh", "node", n.id, "err", err)
			r.stats.Skipped++
			return
		}
		n.mesh, n.dirty = m, 0
	} else if n.dirty != 0 {
		if err := r.dev.UpdateMesh(n.mesh, geom, n.dirty); err != nil {
			Logger().Warn("marquee: update mesh", "node", n.id, "err", err)
		}
		n.dirty = 0
	}

	lit := n.hasNormals()
	border := false
	if textured {
		lo, hi := n.uvBounds(geom.UVs)
		border = lo[0] < 0 || lo[1] < 0 || hi[0] > 1 || hi[1] > 1
	}
	var kind ShaderKind
	switch {
	case textured && lit && border:
		kind = ShaderLitTextureBorder
	case textured && lit:
		kind = ShaderLitTexture
	case textured && border:
		kind = ShaderTextureBorder
	case textured:
		kind = ShaderTexture
	case lit:
		kind = ShaderLitColor
	default:
		kind = ShaderSolid
	}
	blend := false
	color := n.color().Scale(r.ctx.opacity)
	dc := DrawCall{Mesh: n.mesh, Color: color}
	if border {
		// Wrap over the whole texture.
		dc.UVMin, dc.UVMax = [2]float32{0, 0}, [2]float32{1, 1}
	}
	if textured {
		blend = tex.hasAlpha
	}
	r.submitTextured(kind, dt, dc, blend || color.A < 1)
}

// syncTexture pushes pending pixels to the device and returns the GPU
// texture, or nil when it is not drawable.
func (r *Renderer) syncTexture(tex *Texture) DeviceTexture {
	if tex == nil || tex.released {
		return nil
	}
	if tex.pending != nil {
		pix := *tex.pending
		tex.pending = nil
		if tex.gpu == nil {
			dt, err := r.dev.NewTexture(pix)
			if err != nil {
				if !tex.failed {
					Logger().Warn("marquee: create texture", "size", fmt.Sprintf("%dx%d", pix.Width, pix.Height), "err", err)
				}
				tex.failed = true
				return nil
			}
			tex.gpu = dt
		} else if err := r.dev.UpdateTexture(tex.gpu, pix); err != nil {
			Logger().Warn("marquee: update texture", "err", err)
		}
		tex.hasAlpha = pix.HasAlpha()
		tex.failed = false
	}
	if tex.gpu == nil {
		return nil
	}
	return tex.gpu
}

// reclaim frees GPU resources of nodes destroyed and textures released
// since the last frame.
func (r *Renderer) reclaim(s *Stage) {
	for _, n := range s.takeGraveyard() {
		if m, ok := n.(*Model); ok && m.mesh != nil {
			r.dev.ReleaseMesh(m.mesh)
			m.mesh = nil
		}
	}
	for _, t := range s.takeReleased() {
		if t.gpu != nil {
			r.dev.ReleaseTexture(t.gpu)
			t.gpu = nil
		}
	}
}

// WorldMatrix composes the local transforms from the root down to id.
// Render goroutine only.
func (s *Stage) WorldMatrix(id NodeID) (Mat4, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return Mat4{}, false
	}
	m := Identity()
	for ; ok; n, ok = s.nodes[n.Parent()] {
		b := n.base()
		local := Translate(b.float(PropX), b.float(PropY), b.float(PropZ)).Mul4(localTransform(b))
		m = local.Mul4(m)
	}
	return m, true
}

// WorldOpacity multiplies the opacities from the root down to id. Render
// goroutine only.
func (s *Stage) WorldOpacity(id NodeID) (float32, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	o := float32(1)
	for ; ok; n, ok = s.nodes[n.Parent()] {
		o *= n.base().float(PropOpacity)
	}
	return o, true
}
