package marquee

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
)

// NodeID is a stable handle to a node. The high 32 bits identify the owning
// Stage and the low 32 bits the node within it. Handles are never reused, so
// a record that targets a destroyed node simply fails to resolve.
type NodeID uint64

// NoNode is the zero handle; it never resolves.
const NoNode NodeID = 0

func makeNodeID(stage, serial uint32) NodeID {
	return NodeID(uint64(stage)<<32 | uint64(serial))
}

func (id NodeID) stageSerial() uint32 { return uint32(id >> 32) }

// String formats the handle as stage:node.
func (id NodeID) String() string {
	return fmt.Sprintf("%d:%d", uint32(id>>32), uint32(id))
}

// Node is one element of the scene graph. The set of implementations is
// closed: *Group, *Rect, *Polygon, *Text and *Model. Nodes live in their
// Stage's arena and are only touched on the render goroutine.
type Node interface {
	ID() NodeID
	Kind() NodeKind
	Parent() NodeID
	Property(id PropID) *Property

	base() *nodeBase
	changed(id PropID)
}

// nodeBase is the state shared by all node variants.
type nodeBase struct {
	id     NodeID
	kind   NodeKind
	parent NodeID
	stage  *Stage // weak back-reference to the owning scene
	props  [propCount]*Property
}

func (b *nodeBase) init(self Node, id NodeID, kind NodeKind, s *Stage) {
	b.id = id
	b.kind = kind
	b.stage = s
	for _, pid := range legalProps[kind] {
		b.props[pid] = newProperty(self, pid)
	}
}

// ID returns the node's handle.
func (b *nodeBase) ID() NodeID { return b.id }

// Kind returns the node variant.
func (b *nodeBase) Kind() NodeKind { return b.kind }

// Parent returns the parent's handle, or NoNode when detached.
func (b *nodeBase) Parent() NodeID { return b.parent }

// Property returns the cell for id, or nil when the node kind does not carry
// that property.
func (b *nodeBase) Property(id PropID) *Property {
	if id == 0 || id >= propCount {
		return nil
	}
	return b.props[id]
}

func (b *nodeBase) base() *nodeBase { return b }

func (b *nodeBase) float(id PropID) float32 {
	if p := b.props[id]; p != nil {
		return p.value.f
	}
	return propTable[id].def.f
}

func (b *nodeBase) bool(id PropID) bool {
	if p := b.props[id]; p != nil {
		return p.value.b
	}
	return propTable[id].def.b
}

func (b *nodeBase) color() Color {
	if p := b.props[PropColor]; p != nil {
		return ColorFromSlice(p.value.fs)
	}
	return ColorWhite
}

func (b *nodeBase) texture() *Texture {
	if p := b.props[PropTexture]; p != nil {
		t, _ := p.value.obj.(*Texture)
		return t
	}
	return nil
}

// visible reports whether traversal should descend into the node.
func (b *nodeBase) visible() bool {
	return b.bool(PropVisible)
}

// size returns the width and height properties when the node carries them.
func (b *nodeBase) size() (w, h float32) {
	return b.float(PropWidth), b.float(PropHeight)
}

// kill marks every property dead so queued records and animations that
// still hold them detect the destruction.
func (b *nodeBase) kill() {
	for _, p := range b.props {
		if p != nil {
			p.dead = true
		}
	}
	b.parent = NoNode
	b.stage = nil
}

// --- Group ---

// Group is an ordered container. Child order is paint order, back to front.
type Group struct {
	nodeBase
	children []NodeID
}

// Children returns the child handles in paint order. The returned slice
// must not be mutated.
func (g *Group) Children() []NodeID { return g.children }

// NumChildren returns the number of children.
func (g *Group) NumChildren() int { return len(g.children) }

func (g *Group) changed(PropID) {}

// insertChild places id at index (append when index < 0 or past the end).
func (g *Group) insertChild(id NodeID, index int) {
	if index < 0 || index >= len(g.children) {
		g.children = append(g.children, id)
		return
	}
	g.children = slices.Insert(g.children, index, id)
}

// removeChild drops id from the child list. Returns false if absent.
func (g *Group) removeChild(id NodeID) bool {
	i := slices.Index(g.children, id)
	if i < 0 {
		return false
	}
	g.children = slices.Delete(g.children, i, i+1)
	return true
}

// --- Rect ---

// Rect is a solid-color or textured quad of width x height.
type Rect struct {
	nodeBase
}

func (r *Rect) changed(PropID) {}

// uvRange returns the sampled UV rectangle after sub-rect and repeat.
func (r *Rect) uvRange() (u0, v0, u1, v1 float32) {
	l, rt := r.float(PropTexLeft), r.float(PropTexRight)
	t, bt := r.float(PropTexTop), r.float(PropTexBottom)
	rx, ry := r.float(PropRepeatX), r.float(PropRepeatY)
	return l, t, l + (rt-l)*rx, t + (bt-t)*ry
}

// repeats reports whether the node asks for texture repetition.
func (r *Rect) repeats() bool {
	return r.float(PropRepeatX) != 1 || r.float(PropRepeatY) != 1
}

// --- Polygon ---

// Polygon is a flat vertex list drawn filled (triangle fan) or as an outline
// (closed line loop).
type Polygon struct {
	nodeBase
	geom      Geometry
	geomDirty bool
}

func (p *Polygon) changed(id PropID) {
	switch id {
	case PropDimension, PropVertices, PropFilled:
		p.geomDirty = true
	}
}

// dimension returns 2 or 3; anything else is treated as 2.
func (p *Polygon) dimension() int {
	if p.float(PropDimension) == 3 {
		return 3
	}
	return 2
}

// geometry rebuilds the cached draw geometry when dirty.
func (p *Polygon) geometry() Geometry {
	if !p.geomDirty {
		return p.geom
	}
	p.geomDirty = false
	pos := expandPositions(p.props[PropVertices].Floats(), p.dimension())
	n := len(pos) / 3
	p.geom = Geometry{Positions: pos}
	if p.bool(PropFilled) {
		p.geom.Indices = fanIndices(n)
	} else {
		p.geom.Indices = outlineIndices(n)
	}
	return p.geom
}

// --- Text ---

// Text renders a string through a GlyphSource as laid-out glyph quads.
type Text struct {
	nodeBase
	runes       []rune
	runesDirty  bool
	layout      GlyphBuffer
	layoutDirty bool
	source      GlyphSource
	geom        Geometry
}

func (t *Text) changed(id PropID) {
	switch id {
	case PropText:
		t.runesDirty = true
		t.layoutDirty = true
	case PropFont, PropFontSize:
		t.source = nil
		t.layoutDirty = true
	case PropWidth, PropHeight, PropWrap, PropHAlign, PropVAlign, PropLineHeight, PropColor:
		t.layoutDirty = true
	}
}

// Runes returns the UTF-32 content.
func (t *Text) Runes() []rune {
	if t.runesDirty {
		t.runes = decodeText(t.props[PropText].Str())
		t.runesDirty = false
	}
	return t.runes
}

// Layout returns the most recent glyph buffer. It is rebuilt lazily by the
// renderer once a font is available.
func (t *Text) Layout() GlyphBuffer { return t.layout }

func (t *Text) layoutOptions() LayoutOptions {
	return LayoutOptions{
		BoxWidth:   t.float(PropWidth),
		BoxHeight:  t.float(PropHeight),
		Wrap:       WrapMode(t.float(PropWrap)),
		HAlign:     HAlign(t.float(PropHAlign)),
		VAlign:     VAlign(t.float(PropVAlign)),
		LineHeight: t.float(PropLineHeight),
		Color:      t.color(),
	}
}

// relayout rebuilds the glyph buffer from src when dirty.
func (t *Text) relayout(src GlyphSource) GlyphBuffer {
	if !t.layoutDirty && t.source == src {
		return t.layout
	}
	t.source = src
	t.layoutDirty = false
	t.layout = LayoutText(t.Runes(), src, t.layoutOptions())
	t.geom = t.layout.geometry()
	return t.layout
}

// fontSize returns the requested pixel size, never below 1.
func (t *Text) fontSize() float32 {
	return math32.Max(1, t.float(PropFontSize))
}

// --- Model ---

// MeshBuffers is a bit set naming the buffers of a mesh.
type MeshBuffers uint8

const (
	MeshPositions MeshBuffers = 1 << iota
	MeshNormals
	MeshUVs
	MeshIndices

	MeshAll = MeshPositions | MeshNormals | MeshUVs | MeshIndices
)

// Model is an indexed 3D mesh. Its GPU mesh is created lazily on first draw
// and updated per buffer when the matching property changes.
type Model struct {
	nodeBase
	mesh  Mesh
	dirty MeshBuffers

	// UV extent, recomputed after the uvs property changes.
	uvMin, uvMax [2]float32
	uvValid      bool
}

func (m *Model) changed(id PropID) {
	switch id {
	case PropVertices:
		m.dirty |= MeshPositions
	case PropNormals:
		m.dirty |= MeshNormals
	case PropUVs:
		m.dirty |= MeshUVs
		m.uvValid = false
	case PropIndices:
		m.dirty |= MeshIndices
	}
}

// uvBounds returns the extent of the model's UVs.
func (m *Model) uvBounds(uvs []float32) (lo, hi [2]float32) {
	if !m.uvValid {
		m.uvMin, m.uvMax = uvExtent(uvs)
		m.uvValid = true
	}
	return m.uvMin, m.uvMax
}

// geometry returns the model's CPU-side arrays. Indices default to the
// sequential triangle list when the property is empty.
func (m *Model) geometry() Geometry {
	pos := m.props[PropVertices].Floats()
	idx, _ := m.props[PropIndices].Object().([]uint16)
	if len(idx) == 0 {
		idx = sequentialIndices(len(pos) / 3)
	}
	return Geometry{
		Positions: pos,
		Normals:   m.props[PropNormals].Floats(),
		UVs:       m.props[PropUVs].Floats(),
		Indices:   idx,
	}
}

// hasNormals reports whether the model carries one normal per vertex.
func (m *Model) hasNormals() bool {
	n := m.props[PropNormals].Floats()
	return len(n) > 0 && len(n) == len(m.props[PropVertices].Floats())
}

// newNode constructs a node variant with default properties.
func newNode(kind NodeKind, id NodeID, s *Stage) Node {
	var n Node
	switch kind {
	case KindGroup:
		g := &Group{}
		g.init(g, id, kind, s)
		n = g
	case KindRect:
		r := &Rect{}
		r.init(r, id, kind, s)
		n = r
	case KindPolygon:
		p := &Polygon{geomDirty: true}
		p.init(p, id, kind, s)
		n = p
	case KindText:
		t := &Text{runesDirty: true, layoutDirty: true}
		t.init(t, id, kind, s)
		n = t
	case KindModel:
		m := &Model{dirty: MeshAll}
		m.init(m, id, kind, s)
		n = m
	default:
		panic(fmt.Sprintf("marquee: unknown node kind %d", kind))
	}
	return n
}
