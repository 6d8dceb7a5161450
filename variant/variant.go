// Package variant implements the closed tagged-union value type used by data
// bindings: bool, integer, floating point, string, vectors and colours.
//
// A Variant is a small value type; copy it freely. The zero Variant is Empty.
package variant

import (
	"image/color"
	"math"
)

// Type identifies the dynamic kind stored in a Variant.
type Type uint8

const (
	Empty Type = iota
	Bool
	Int
	Float
	String
	Vector2
	Vector3
	Vector4
	Colourf
	Colourb
)

func (t Type) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Vector2:
		return "vector2"
	case Vector3:
		return "vector3"
	case Vector4:
		return "vector4"
	case Colourf:
		return "colourf"
	case Colourb:
		return "colourb"
	default:
		return "empty"
	}
}

// Vec2 is a two component float vector.
type Vec2 struct{ X, Y float32 }

// Vec3 is a three component float vector.
type Vec3 struct{ X, Y, Z float32 }

// Vec4 is a four component float vector.
type Vec4 struct{ X, Y, Z, W float32 }

// ColourF is a floating point RGBA colour with components in [0, 1].
type ColourF struct{ R, G, B, A float32 }

// Variant holds one value of one of the kinds listed by Type.
type Variant struct {
	typ Type
	b   bool
	i   int64
	f   float64
	s   string
	v   [4]float32
	c   color.RGBA
}

// FromBool returns a Bool variant.
func FromBool(b bool) Variant { return Variant{typ: Bool, b: b} }

// FromInt returns an Int variant.
func FromInt(i int64) Variant { return Variant{typ: Int, i: i} }

// FromFloat returns a Float variant.
func FromFloat(f float64) Variant { return Variant{typ: Float, f: f} }

// FromString returns a String variant.
func FromString(s string) Variant { return Variant{typ: String, s: s} }

// FromVec2 returns a Vector2 variant.
func FromVec2(v Vec2) Variant { return Variant{typ: Vector2, v: [4]float32{v.X, v.Y}} }

// FromVec3 returns a Vector3 variant.
func FromVec3(v Vec3) Variant { return Variant{typ: Vector3, v: [4]float32{v.X, v.Y, v.Z}} }

// FromVec4 returns a Vector4 variant.
func FromVec4(v Vec4) Variant { return Variant{typ: Vector4, v: [4]float32{v.X, v.Y, v.Z, v.W}} }

// FromColourF returns a Colourf variant.
func FromColourF(c ColourF) Variant { return Variant{typ: Colourf, v: [4]float32{c.R, c.G, c.B, c.A}} }

// FromColour returns a Colourb variant.
func FromColour(c color.RGBA) Variant { return Variant{typ: Colourb, c: c} }

// Of wraps a Go value of a supported type. The second result is false for
// unsupported types, in which case the Empty variant is returned.
func Of(x any) (Variant, bool) {
	switch v := x.(type) {
	case nil:
		return Variant{}, true
	case Variant:
		return v, true
	case bool:
		return FromBool(v), true
	case int:
		return FromInt(int64(v)), true
	case int8:
		return FromInt(int64(v)), true
	case int16:
		return FromInt(int64(v)), true
	case int32:
		return FromInt(int64(v)), true
	case int64:
		return FromInt(v), true
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return FromInt(int64(v)), true
	case uint16:
		return FromInt(int64(v)), true
	case uint32:
		return FromInt(int64(v)), true
	case uint64:
		return fromUint(v)
	case float32:
		return FromFloat(float64(v)), true
	case float64:
		return FromFloat(v), true
	case string:
		return FromString(v), true
	case Vec2:
		return FromVec2(v), true
	case Vec3:
		return FromVec3(v), true
	case Vec4:
		return FromVec4(v), true
	case ColourF:
		return FromColourF(v), true
	case color.RGBA:
		return FromColour(v), true
	}
	return Variant{}, false
}

// fromUint fails for values above math.MaxInt64.
func fromUint(u uint64) (Variant, bool) {
	if u > math.MaxInt64 {
		return Variant{}, false
	}
	return FromInt(int64(u)), true
}

// Type returns the kind of value held.
func (v Variant) Type() Type { return v.typ }

// IsEmpty reports whether v holds no value.
func (v Variant) IsEmpty() bool { return v.typ == Empty }

// IsNumeric reports whether v holds a bool, int or float.
func (v Variant) IsNumeric() bool { return v.typ == Bool || v.typ == Int || v.typ == Float }

// Interface returns the natural Go value of v: bool, int64, float64, string,
// Vec2, Vec3, Vec4, ColourF, color.RGBA, or nil when empty.
func (v Variant) Interface() any {
	switch v.typ {
	case Bool:
		return v.b
	case Int:
		return v.i
	case Float:
		return v.f
	case String:
		return v.s
	case Vector2:
		return Vec2{v.v[0], v.v[1]}
	case Vector3:
		return Vec3{v.v[0], v.v[1], v.v[2]}
	case Vector4:
		return Vec4{v.v[0], v.v[1], v.v[2], v.v[3]}
	case Colourf:
		return ColourF{v.v[0], v.v[1], v.v[2], v.v[3]}
	case Colourb:
		return v.c
	}
	return nil
}

// String implements fmt.Stringer using ToString.
func (v Variant) String() string { return v.ToString() }

// Equal reports whether a and b hold the same kind and value.
func Equal(a, b Variant) bool {
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case Empty:
		return true
	case Bool:
		return a.b == b.b
	case Int:
		return a.i == b.i
	case Float:
		return a.f == b.f
	case String:
		return a.s == b.s
	case Colourb:
		return a.c == b.c
	default:
		return a.v == b.v
	}
}
