package marquee

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mat4 is a column-major 4x4 float32 matrix. It is the mgl32 type so values
// can be handed to GPU uniforms without conversion.
type Mat4 = mgl32.Mat4

// Vec3 is a float32 3-vector.
type Vec3 = mgl32.Vec3

// Identity returns the identity matrix.
func Identity() Mat4 {
	return mgl32.Ident4()
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	return mgl32.Translate3D(x, y, z)
}

// Scale returns a scale matrix.
func Scale(sx, sy, sz float32) Mat4 {
	return mgl32.Scale3D(sx, sy, sz)
}

// RotateX returns a rotation about the X axis. The angle is in degrees.
func RotateX(deg float32) Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(deg))
}

// RotateY returns a rotation about the Y axis. The angle is in degrees.
func RotateY(deg float32) Mat4 {
	return mgl32.HomogRotate3DY(mgl32.DegToRad(deg))
}

// RotateZ returns a rotation about the Z axis. The angle is in degrees.
func RotateZ(deg float32) Mat4 {
	return mgl32.HomogRotate3DZ(mgl32.DegToRad(deg))
}

// Multiply returns a * b. Applied to a point, b acts first.
func Multiply(a, b Mat4) Mat4 {
	return a.Mul4(b)
}

// singularEpsilon bounds the determinant below which a matrix is treated as
// non-invertible.
const singularEpsilon = 1e-12

// Invert returns the inverse of m. ok is false when m is singular, in which
// case the identity is returned.
func Invert(m Mat4) (inv Mat4, ok bool) {
	det := m.Det()
	if math32.Abs(det) < singularEpsilon {
		return Identity(), false
	}
	return m.Inv(), true
}

// MustInvert is Invert for callers that treat a singular matrix as a
// programming error.
func MustInvert(m Mat4) Mat4 {
	inv, ok := Invert(m)
	if !ok {
		panic("marquee: cannot invert singular matrix")
	}
	return inv
}

// TransformPoint applies m to the point (x, y, z, 1) without a perspective
// divide.
func TransformPoint(m Mat4, x, y, z float32) Vec3 {
	return m.Mul4x1(mgl32.Vec4{x, y, z, 1}).Vec3()
}

// Project applies m to (x, y, z, 1) and performs the perspective divide,
// returning normalized device coordinates. ok is false when w is zero.
func Project(m Mat4, x, y, z float32) (ndc Vec3, ok bool) {
	v := m.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if v[3] == 0 {
		return Vec3{}, false
	}
	return Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}, true
}

// Perspective returns a perspective projection. fovy is in degrees.
// Panics on a degenerate frustum.
func Perspective(fovyDeg, aspect, near, far float32) Mat4 {
	if fovyDeg <= 0 || fovyDeg >= 180 || aspect <= 0 || near <= 0 || far <= near {
		panic("marquee: invalid perspective frustum")
	}
	return mgl32.Perspective(mgl32.DegToRad(fovyDeg), aspect, near, far)
}

// Ortho returns an orthographic projection. Panics on a degenerate volume.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	if left == right || bottom == top || near == far {
		panic("marquee: invalid orthographic volume")
	}
	return mgl32.Ortho(left, right, bottom, top, near, far)
}

// PixelOrtho returns an orthographic projection mapping pixel coordinates
// (origin top-left, Y down) to clip space.
func PixelOrtho(width, height float32) Mat4 {
	return Ortho(0, width, height, 0, -pixelDepthRange, pixelDepthRange)
}

// pixelDepthRange is the z extent, in pixels, kept by the pixel projections.
const pixelDepthRange = 10000

// PixelPerfect returns a perspective projection in which the z = 0 plane
// maps 1:1 to pixels (origin top-left, Y down), so 2D content renders
// identically to PixelOrtho while 3D content gains depth.
//
//	P * Scale(1, -1, 1) * Translate(-w/2, -h/2, -d),  d = (h/2) / tan(fovy/2)
func PixelPerfect(width, height, fovyDeg float32) Mat4 {
	if width <= 0 || height <= 0 {
		panic("marquee: invalid viewport size")
	}
	half := mgl32.DegToRad(fovyDeg) / 2
	d := (height / 2) / math32.Tan(half)
	proj := Perspective(fovyDeg, width/height, d/100, d+pixelDepthRange)
	view := Scale(1, -1, 1).Mul4(Translate(-width/2, -height/2, -d))
	return proj.Mul4(view)
}
