package marquee

import "fmt"

// RenderContext is the traversal state: the current model matrix and
// opacity with their save/restore stacks, plus a cache of GPU state so
// redundant device calls are skipped.
type RenderContext struct {
	dev Device

	matrix  Mat4
	opacity float32
	mstack  []Mat4
	ostack  []float32

	program Program
	texture DeviceTexture
	blend   bool
	blendOK bool
	depth   int

	switches int
	skipped  int
}

func newRenderContext(dev Device) *RenderContext {
	return &RenderContext{
		dev:     dev,
		matrix:  Identity(),
		opacity: 1,
		mstack:  make([]Mat4, 0, 32),
		ostack:  make([]float32, 0, 32),
	}
}

// reset prepares the context for a new frame. Cached GPU state is dropped
// because the device may have been used by someone else between frames.
func (c *RenderContext) reset() {
	c.matrix = Identity()
	c.opacity = 1
	c.mstack = c.mstack[:0]
	c.ostack = c.ostack[:0]
	c.program = nil
	c.texture = nil
	c.blendOK = false
	c.depth = 0
	c.switches = 0
	c.skipped = 0
}

// Matrix returns the current model matrix.
func (c *RenderContext) Matrix() Mat4 { return c.matrix }

// Opacity returns the current accumulated opacity.
func (c *RenderContext) Opacity() float32 { return c.opacity }

// Depth returns the number of nested depth-test regions.
func (c *RenderContext) Depth() int { return c.depth }

// Save pushes the matrix and opacity.
func (c *RenderContext) Save() {
	c.mstack = append(c.mstack, c.matrix)
	c.ostack = append(c.ostack, c.opacity)
}

// Restore pops the matrix and opacity pushed by the matching Save.
func (c *RenderContext) Restore() {
	if len(c.mstack) == 0 {
		panic("marquee: RenderContext.Restore without matching Save")
	}
	n := len(c.mstack) - 1
	c.matrix = c.mstack[n]
	c.opacity = c.ostack[n]
	c.mstack = c.mstack[:n]
	c.ostack = c.ostack[:n]
}

// StackDepth returns the number of outstanding Saves.
func (c *RenderContext) StackDepth() int { return len(c.mstack) }

// checkBalanced panics unless every Save was restored and every depth
// region popped.
func (c *RenderContext) checkBalanced() {
	if len(c.mstack) != 0 || len(c.ostack) != 0 {
		panic(fmt.Sprintf("marquee: unbalanced render stack after frame (matrix %d, opacity %d)",
			len(c.mstack), len(c.ostack)))
	}
	if c.depth != 0 {
		panic(fmt.Sprintf("marquee: %d depth regions left open after frame", c.depth))
	}
}

// Transform right-multiplies m into the current matrix.
func (c *RenderContext) Transform(m Mat4) { c.matrix = c.matrix.Mul4(m) }

// Translate right-multiplies a translation.
func (c *RenderContext) Translate(x, y, z float32) { c.Transform(Translate(x, y, z)) }

// Scale right-multiplies a scale.
func (c *RenderContext) Scale(sx, sy, sz float32) { c.Transform(Scale(sx, sy, sz)) }

// RotateX right-multiplies a rotation about X in degrees.
func (c *RenderContext) RotateX(deg float32) { c.Transform(RotateX(deg)) }

// RotateY right-multiplies a rotation about Y in degrees.
func (c *RenderContext) RotateY(deg float32) { c.Transform(RotateY(deg)) }

// RotateZ right-multiplies a rotation about Z in degrees.
func (c *RenderContext) RotateZ(deg float32) { c.Transform(RotateZ(deg)) }

// MultiplyOpacity folds a node's own opacity into the current value.
func (c *RenderContext) MultiplyOpacity(o float32) { c.opacity *= o }

// applyLocal applies a node's local transform: position, then pivot-relative
// scale and rotation (x, then y, then z).
func (c *RenderContext) applyLocal(b *nodeBase) {
	c.Translate(b.float(PropX), b.float(PropY), b.float(PropZ))
	c.Transform(localTransform(b))
}

// localTransform returns the pivot-relative part of a node's transform.
// The position is applied separately by applyLocal.
func localTransform(b *nodeBase) Mat4 {
	sx, sy := b.float(PropScaleX), b.float(PropScaleY)
	rx, ry, rz := b.float(PropRotationX), b.float(PropRotationY), b.float(PropRotationZ)
	if sx == 1 && sy == 1 && rx == 0 && ry == 0 && rz == 0 {
		return Identity()
	}
	w, h := b.size()
	px, py := b.float(PropOriginX)*w, b.float(PropOriginY)*h
	m := Translate(px, py, 0)
	m = m.Mul4(Scale(sx, sy, 1))
	if rx != 0 {
		m = m.Mul4(RotateX(rx))
	}
	if ry != 0 {
		m = m.Mul4(RotateY(ry))
	}
	if rz != 0 {
		m = m.Mul4(RotateZ(rz))
	}
	return m.Mul4(Translate(-px, -py, 0))
}

// UseProgram binds p unless it is already current.
func (c *RenderContext) UseProgram(p Program) {
	if p == nil {
		panic("marquee: UseProgram with nil program")
	}
	if c.program == p {
		c.skipped++
		return
	}
	c.program = p
	c.switches++
	c.dev.UseProgram(p)
}

// BindTexture binds t unless it is already bound.
func (c *RenderContext) BindTexture(t DeviceTexture) {
	if c.texture == t {
		c.skipped++
		return
	}
	c.texture = t
	c.switches++
	c.dev.BindTexture(t)
}

// SetBlend toggles alpha blending unless already in that state. Returns the
// previous state so callers can restore it.
func (c *RenderContext) SetBlend(on bool) (prev bool) {
	prev = c.blend
	if c.blendOK && c.blend == on {
		c.skipped++
		return prev
	}
	c.blend, c.blendOK = on, true
	c.switches++
	c.dev.SetBlend(on)
	return prev
}

// PushDepth enters a depth-tested region. Depth testing is enabled on the
// outermost push.
func (c *RenderContext) PushDepth() {
	c.depth++
	if c.depth == 1 {
		c.dev.SetDepthTest(true)
	}
}

// PopDepth leaves a depth-tested region.
func (c *RenderContext) PopDepth() {
	if c.depth == 0 {
		panic("marquee: PopDepth without matching PushDepth")
	}
	c.depth--
	if c.depth == 0 {
		c.dev.SetDepthTest(false)
	}
}
