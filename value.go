package marquee

import (
	"fmt"
	"slices"
)

// ValueKind tags the variant held by a Value.
type ValueKind uint8

const (
	ValueNone   ValueKind = iota // zero Value
	ValueFloat                   // float32
	ValueFloats                  // []float32
	ValueBool                    // bool
	ValueString                  // UTF-8 string
	ValueObject                  // opaque object (*Texture, []uint16 indices)
)

// String returns the variant name.
func (k ValueKind) String() string {
	switch k {
	case ValueFloat:
		return "float"
	case ValueFloats:
		return "floats"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	case ValueObject:
		return "object"
	}
	return "none"
}

// Value is the tagged union carried by update records and stored in
// property cells. Construct one with Float, Floats, Bool, String or Object.
type Value struct {
	kind ValueKind
	f    float32
	fs   []float32
	b    bool
	s    string
	obj  any
}

// Float returns a float Value.
func Float(v float32) Value { return Value{kind: ValueFloat, f: v} }

// Floats returns a float-array Value holding a copy of v, so the caller may
// reuse its slice after enqueuing.
func Floats(v ...float32) Value { return Value{kind: ValueFloats, fs: slices.Clone(v)} }

// Bool returns a bool Value.
func Bool(v bool) Value { return Value{kind: ValueBool, b: v} }

// String returns a string Value.
func String(v string) Value { return Value{kind: ValueString, s: v} }

// Object returns an opaque object Value.
func Object(v any) Value { return Value{kind: ValueObject, obj: v} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// AsFloat returns the float payload, or 0 for other variants.
func (v Value) AsFloat() float32 { return v.f }

// AsFloats returns the float-array payload. The slice must not be mutated.
func (v Value) AsFloats() []float32 { return v.fs }

// AsBool returns the bool payload.
func (v Value) AsBool() bool { return v.b }

// AsString returns the string payload.
func (v Value) AsString() string { return v.s }

// AsObject returns the object payload.
func (v Value) AsObject() any { return v.obj }

// Equal reports whether two values hold the same variant and payload.
// Objects compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueFloat:
		return v.f == o.f
	case ValueFloats:
		return slices.Equal(v.fs, o.fs)
	case ValueBool:
		return v.b == o.b
	case ValueString:
		return v.s == o.s
	case ValueObject:
		return objectIdentical(v.obj, o.obj)
	}
	return true
}

// objectIdentical compares objects without panicking on uncomparable
// dynamic types such as slices.
func objectIdentical(a, b any) bool {
	switch av := a.(type) {
	case []uint16:
		bv, ok := b.([]uint16)
		return ok && len(av) == len(bv) && (len(av) == 0 || &av[0] == &bv[0])
	case nil:
		return b == nil
	}
	defer func() { _ = recover() }()
	return a == b
}

// String formats the value for logs.
func (v Value) String() string {
	switch v.kind {
	case ValueFloat:
		return fmt.Sprintf("%g", v.f)
	case ValueFloats:
		return fmt.Sprintf("%v", v.fs)
	case ValueBool:
		return fmt.Sprintf("%t", v.b)
	case ValueString:
		return fmt.Sprintf("%q", v.s)
	case ValueObject:
		return fmt.Sprintf("object(%T)", v.obj)
	}
	return "none"
}
