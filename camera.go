package marquee

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera is a view transform applied between the projection and the scene:
// a pan, then a zoom and rotation about the viewport center. The zero
// value is not usable; call NewCamera. Render goroutine only.
type Camera struct {
	// X and Y pan the view: the world point drawn at the viewport's
	// top-left corner when Zoom is 1 and Rotation is 0.
	X, Y float32
	// Zoom is the scale factor (1 = no zoom, >1 = zoom in).
	Zoom float32
	// Rotation is the view rotation in degrees.
	Rotation float32

	scroll *scrollAnim
}

// NewCamera returns a camera with no pan, zoom or rotation.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// ScrollTo animates the pan to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	c.scroll = &scrollAnim{
		tweenX: gween.New(c.X, x, duration, fn),
		tweenY: gween.New(c.Y, y, duration, fn),
	}
}

// Scrolling reports whether a ScrollTo animation is in progress.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// Update advances an active scroll by dt seconds.
func (c *Camera) Update(dt float32) {
	s := c.scroll
	if s == nil {
		return
	}
	if !s.doneX {
		c.X, s.doneX = s.tweenX.Update(dt)
	}
	if !s.doneY {
		c.Y, s.doneY = s.tweenY.Update(dt)
	}
	if s.doneX && s.doneY {
		c.scroll = nil
	}
}

// View returns the view matrix for a viewport of width x height pixels.
func (c *Camera) View(width, height int) Mat4 {
	zoom := c.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	cx, cy := float32(width)/2, float32(height)/2
	m := Translate(cx, cy, 0)
	m = m.Mul4(Scale(zoom, zoom, 1))
	if c.Rotation != 0 {
		m = m.Mul4(RotateZ(-c.Rotation))
	}
	return m.Mul4(Translate(-cx-c.X, -cy-c.Y, 0))
}

// ScreenToWorld maps a pixel on the z = 0 plane back to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32, width, height int) (x, y float32) {
	inv, ok := Invert(c.View(width, height))
	if !ok {
		return sx, sy
	}
	p := TransformPoint(inv, sx, sy, 0)
	return p[0], p[1]
}
