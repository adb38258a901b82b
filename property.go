package marquee

import "github.com/chewxy/math32"

// PropID is the stable small-integer id of a property. Update records and
// animations address properties by (NodeID, PropID).
type PropID uint16

const (
	PropX PropID = iota + 1
	PropY
	PropZ
	PropScaleX
	PropScaleY
	PropRotationX
	PropRotationY
	PropRotationZ
	PropOpacity
	PropVisible
	PropOriginX
	PropOriginY
	PropWidth
	PropHeight
	PropClipRect
	PropDepthTest
	PropColor
	PropTexture
	PropTexLeft
	PropTexRight
	PropTexTop
	PropTexBottom
	PropRepeatX
	PropRepeatY
	PropDimension
	PropVertices
	PropFilled
	PropNormals
	PropUVs
	PropIndices
	PropText
	PropFont
	PropFontSize
	PropWrap
	PropHAlign
	PropVAlign
	PropLineHeight

	propCount
)

// propInfo describes one property id: its scene-file name, value kind and
// default value.
type propInfo struct {
	name string
	kind ValueKind
	def  Value
}

var propTable = [propCount]propInfo{
	PropX:          {"x", ValueFloat, Float(0)},
	PropY:          {"y", ValueFloat, Float(0)},
	PropZ:          {"z", ValueFloat, Float(0)},
	PropScaleX:     {"scaleX", ValueFloat, Float(1)},
	PropScaleY:     {"scaleY", ValueFloat, Float(1)},
	PropRotationX:  {"rotationX", ValueFloat, Float(0)},
	PropRotationY:  {"rotationY", ValueFloat, Float(0)},
	PropRotationZ:  {"rotationZ", ValueFloat, Float(0)},
	PropOpacity:    {"opacity", ValueFloat, Float(1)},
	PropVisible:    {"visible", ValueBool, Bool(true)},
	PropOriginX:    {"originX", ValueFloat, Float(0)},
	PropOriginY:    {"originY", ValueFloat, Float(0)},
	PropWidth:      {"width", ValueFloat, Float(0)},
	PropHeight:     {"height", ValueFloat, Float(0)},
	PropClipRect:   {"clipRect", ValueBool, Bool(false)},
	PropDepthTest:  {"depthTest", ValueBool, Bool(false)},
	PropColor:      {"color", ValueFloats, Value{kind: ValueFloats, fs: []float32{1, 1, 1, 1}}},
	PropTexture:    {"texture", ValueObject, Object(nil)},
	PropTexLeft:    {"texLeft", ValueFloat, Float(0)},
	PropTexRight:   {"texRight", ValueFloat, Float(1)},
	PropTexTop:     {"texTop", ValueFloat, Float(0)},
	PropTexBottom:  {"texBottom", ValueFloat, Float(1)},
	PropRepeatX:    {"repeatX", ValueFloat, Float(1)},
	PropRepeatY:    {"repeatY", ValueFloat, Float(1)},
	PropDimension:  {"dimension", ValueFloat, Float(2)},
	PropVertices:   {"vertices", ValueFloats, Value{kind: ValueFloats}},
	PropFilled:     {"filled", ValueBool, Bool(true)},
	PropNormals:    {"normals", ValueFloats, Value{kind: ValueFloats}},
	PropUVs:        {"uvs", ValueFloats, Value{kind: ValueFloats}},
	PropIndices:    {"indices", ValueObject, Object([]uint16(nil))},
	PropText:       {"text", ValueString, String("")},
	PropFont:       {"font", ValueString, String("")},
	PropFontSize:   {"fontSize", ValueFloat, Float(16)},
	PropWrap:       {"wrap", ValueFloat, Float(float32(WrapNone))},
	PropHAlign:     {"hAlign", ValueFloat, Float(float32(HAlignLeft))},
	PropVAlign:     {"vAlign", ValueFloat, Float(float32(VAlignTop))},
	PropLineHeight: {"lineHeight", ValueFloat, Float(0)},
}

// String returns the property name used in scene files and logs.
func (id PropID) String() string {
	if id == 0 || id >= propCount {
		return "invalid"
	}
	return propTable[id].name
}

// Kind returns the value kind the property accepts.
func (id PropID) Kind() ValueKind {
	if id == 0 || id >= propCount {
		return ValueNone
	}
	return propTable[id].kind
}

// ParsePropID looks a property up by name.
func ParsePropID(name string) (PropID, bool) {
	for id := PropID(1); id < propCount; id++ {
		if propTable[id].name == name {
			return id, true
		}
	}
	return 0, false
}

var commonProps = []PropID{
	PropX, PropY, PropZ, PropScaleX, PropScaleY,
	PropRotationX, PropRotationY, PropRotationZ,
	PropOpacity, PropVisible, PropOriginX, PropOriginY,
}

// legalProps lists, per node kind, the property ids a node of that kind
// carries. Setting any other id is an invalid mutation.
var legalProps = map[NodeKind][]PropID{
	KindGroup: append(commonProps[:len(commonProps):len(commonProps)],
		PropWidth, PropHeight, PropClipRect, PropDepthTest),
	KindRect: append(commonProps[:len(commonProps):len(commonProps)],
		PropWidth, PropHeight, PropColor, PropTexture,
		PropTexLeft, PropTexRight, PropTexTop, PropTexBottom, PropRepeatX, PropRepeatY),
	KindPolygon: append(commonProps[:len(commonProps):len(commonProps)],
		PropDimension, PropVertices, PropColor, PropFilled),
	KindText: append(commonProps[:len(commonProps):len(commonProps)],
		PropWidth, PropHeight, PropColor, PropText, PropFont, PropFontSize,
		PropWrap, PropHAlign, PropVAlign, PropLineHeight),
	KindModel: append(commonProps[:len(commonProps):len(commonProps)],
		PropVertices, PropNormals, PropUVs, PropIndices, PropTexture, PropColor),
}

// Property is a typed, identified value cell owned by one node. It is the
// unit of animation and external mutation. Only the render goroutine reads
// or writes a Property; other goroutines go through Stage.Inspect.
type Property struct {
	id    PropID
	value Value
	refs  int32
	owner Node
	dead  bool
}

func newProperty(owner Node, id PropID) *Property {
	return &Property{id: id, value: propTable[id].def, owner: owner}
}

// ID returns the property id.
func (p *Property) ID() PropID { return p.id }

// Value returns the current value.
func (p *Property) Value() Value { return p.value }

// Float returns the current float value.
func (p *Property) Float() float32 { return p.value.f }

// Floats returns the current float-array value. Must not be mutated.
func (p *Property) Floats() []float32 { return p.value.fs }

// Bool returns the current bool value.
func (p *Property) Bool() bool { return p.value.b }

// Str returns the current string value.
func (p *Property) Str() string { return p.value.s }

// Object returns the current object value.
func (p *Property) Object() any { return p.value.obj }

// Owner returns the node the property belongs to.
func (p *Property) Owner() Node { return p.owner }

// Alive reports whether the owning node still exists.
func (p *Property) Alive() bool { return !p.dead }

// Refs returns the number of animations and in-flight records holding the
// property.
func (p *Property) Refs() int32 { return p.refs }

// Retain marks the property as targeted by an animation or update record.
func (p *Property) Retain() { p.refs++ }

// Release drops a reference taken with Retain.
func (p *Property) Release() {
	if p.refs <= 0 {
		panic("marquee: property released more times than retained")
	}
	p.refs--
}

// set writes v into the cell after a kind check and notifies the owner.
// Returns false (and writes nothing) when the kind does not match.
func (p *Property) set(v Value) bool {
	if p.dead || v.kind != propTable[p.id].kind {
		return false
	}
	switch p.id {
	case PropOpacity:
		v.f = math32.Max(0, math32.Min(1, v.f))
	case PropIndices:
		if _, ok := v.obj.([]uint16); !ok && v.obj != nil {
			return false
		}
	case PropTexture:
		if _, ok := v.obj.(*Texture); !ok && v.obj != nil {
			return false
		}
	}
	if p.value.Equal(v) {
		return true
	}
	p.value = v
	if p.owner != nil {
		p.owner.changed(p.id)
	}
	return true
}

// setFloat is the animation fast path: no kind check beyond the float tag.
func (p *Property) setFloat(f float32) {
	if p.id == PropOpacity {
		f = math32.Max(0, math32.Min(1, f))
	}
	if p.value.f == f {
		return
	}
	p.value.f = f
	if p.owner != nil {
		p.owner.changed(p.id)
	}
}
