package marquee

// ShaderKind names one of the fixed GPU programs the renderer uses.
type ShaderKind uint8

const (
	ShaderSolid            ShaderKind = iota // flat color
	ShaderTexture                            // texture times color
	ShaderTextureBorder                      // texture with UV wrap and clamp-to-border
	ShaderLitColor                           // flat color with directional light
	ShaderLitTexture                         // texture with directional light
	ShaderFont                               // single-channel glyph atlas times vertex color
	ShaderLitTextureBorder                   // lit texture with UV wrap and clamp-to-border

	shaderKindCount
)

// String returns the program name for logs.
func (k ShaderKind) String() string {
	switch k {
	case ShaderSolid:
		return "solid"
	case ShaderTexture:
		return "texture"
	case ShaderTextureBorder:
		return "textureBorder"
	case ShaderLitColor:
		return "litColor"
	case ShaderLitTexture:
		return "litTexture"
	case ShaderFont:
		return "font"
	case ShaderLitTextureBorder:
		return "litTextureBorder"
	}
	return "unknown"
}

// Program is a compiled shader program owned by a Device.
type Program interface {
	Kind() ShaderKind
}

// DeviceTexture is GPU texture storage owned by a Device.
type DeviceTexture interface {
	Size() (width, height int)
}

// Mesh is GPU vertex storage owned by a Device.
type Mesh interface {
	VertexCount() int
}

// DrawMode is the primitive topology of a draw call.
type DrawMode uint8

const (
	DrawTriangles DrawMode = iota
	DrawLines
)

// StencilFunc is the stencil comparison.
type StencilFunc uint8

const (
	StencilAlways StencilFunc = iota
	StencilEqual
)

// StencilOp is applied to stencil values where the comparison passes.
type StencilOp uint8

const (
	StencilKeep StencilOp = iota
	StencilReplace
	StencilIncr
	StencilDecr
)

// StencilState configures stencil testing and writing.
type StencilState struct {
	Enabled bool
	Func    StencilFunc
	Ref     uint8
	Op      StencilOp
	Mask    uint8
}

// Geometry is CPU-side vertex data. Positions are xyz triples; Normals are
// xyz triples; UVs are uv pairs; Colors are optional rgba quadruples per
// vertex multiplied into the draw color.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Colors    []float32
	Indices   []uint16
}

// VertexCount returns the number of vertices.
func (g Geometry) VertexCount() int { return len(g.Positions) / 3 }

// Empty reports whether the geometry would draw nothing.
func (g Geometry) Empty() bool { return len(g.Positions) < 3 || len(g.Indices) == 0 }

// DrawCall is one primitive submission.
type DrawCall struct {
	Mode DrawMode
	// Mesh, when set, supplies the vertex data; otherwise Geometry does.
	Mesh     Mesh
	Geometry Geometry
	// MVP maps local coordinates to clip space.
	MVP Mat4
	// Model maps local coordinates to world space, for lighting.
	Model Mat4
	// Color is the straight-alpha draw color, opacity already applied.
	Color Color
	// Light is the world-space direction towards the light.
	Light Vec3
	// UVMin and UVMax bound the sampled texture region for the border
	// program; coordinates outside wrap into it.
	UVMin, UVMax [2]float32
}

// Device is the GPU abstraction the renderer drives. One Renderer is built
// per Device; all calls happen on the render goroutine.
type Device interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)

	BeginFrame()
	EndFrame()

	NewProgram(kind ShaderKind) (Program, error)
	UseProgram(p Program)

	NewTexture(pix PixelBuffer) (DeviceTexture, error)
	UpdateTexture(t DeviceTexture, pix PixelBuffer) error
	ReleaseTexture(t DeviceTexture)
	BindTexture(t DeviceTexture)

	NewMesh(g Geometry) (Mesh, error)
	UpdateMesh(m Mesh, g Geometry, dirty MeshBuffers) error
	ReleaseMesh(m Mesh)

	SetBlend(on bool)
	SetDepthTest(on bool)
	SetColorMask(on bool)
	SetStencil(s StencilState)
	ClearStencil()
	Clear(c Color)

	Draw(dc DrawCall)

	// Err returns and clears the first error recorded since the last call.
	Err() error
}
