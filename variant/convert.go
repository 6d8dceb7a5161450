package variant

import (
	"image/color"
	"math"
	"strconv"
	"strings"
)

// floatPrecision is the number of decimals kept when a float is printed.
const floatPrecision = 3

// ToBool converts v using binding truthiness: false, 0, the empty string and
// the strings "false" and "0" are false; everything else non-empty is true.
func (v Variant) ToBool() bool {
	switch v.typ {
	case Bool:
		return v.b
	case Int:
		return v.i != 0
	case Float:
		return v.f != 0
	case String:
		s := strings.TrimSpace(v.s)
		if s == "" || strings.EqualFold(s, "false") {
			return false
		}
		if f, ok := ParseNumber(s); ok {
			return f != 0
		}
		return true
	case Empty:
		return false
	}
	return true
}

// ToFloat converts v to float64. Strings must hold a number.
func (v Variant) ToFloat() (float64, bool) {
	switch v.typ {
	case Bool:
		if v.b {
			return 1, true
		}
		return 0, true
	case Int:
		return float64(v.i), true
	case Float:
		return v.f, true
	case String:
		s := strings.TrimSpace(v.s)
		if strings.EqualFold(s, "true") {
			return 1, true
		}
		if strings.EqualFold(s, "false") {
			return 0, true
		}
		return ParseNumber(s)
	}
	return 0, false
}

// ToInt converts v to int64, truncating floats toward zero. Values out of
// the int64 range fail.
func (v Variant) ToInt() (int64, bool) {
	if v.typ == Int {
		return v.i, true
	}
	f, ok := v.ToFloat()
	// Outside [-2^63, 2^63) the conversion is undefined.
	if !ok || math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}

// ToString renders v. Floats keep at most three decimals with trailing zeros
// removed, bools render as 1 or 0, colours as #rrggbb or #rrggbbaa.
func (v Variant) ToString() string {
	switch v.typ {
	case Bool:
		if v.b {
			return "1"
		}
		return "0"
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Float:
		return FormatFloat(v.f, floatPrecision, true)
	case String:
		return v.s
	case Vector2:
		return joinFloats(v.v[:2])
	case Vector3:
		return joinFloats(v.v[:3])
	case Vector4, Colourf:
		return joinFloats(v.v[:4])
	case Colourb:
		return FormatColour(v.c)
	}
	return ""
}

// ToColourb converts v to an 8-bit colour. Strings are parsed with
// ParseColour and Colourf values are scaled to [0, 255].
func (v Variant) ToColourb() (color.RGBA, bool) {
	switch v.typ {
	case Colourb:
		return v.c, true
	case Colourf:
		return color.RGBA{unit8(v.v[0]), unit8(v.v[1]), unit8(v.v[2]), unit8(v.v[3])}, true
	case String:
		return ParseColour(v.s)
	}
	return color.RGBA{}, false
}

// ToColourF converts v to a floating point colour.
func (v Variant) ToColourF() (ColourF, bool) {
	if v.typ == Colourf {
		return ColourF{v.v[0], v.v[1], v.v[2], v.v[3]}, true
	}
	c, ok := v.ToColourb()
	if !ok {
		return ColourF{}, false
	}
	return ColourF{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}, true
}

// ToVec2 converts vectors and "x, y" strings to a Vec2.
func (v Variant) ToVec2() (Vec2, bool) {
	c, ok := v.components(2)
	return Vec2{c[0], c[1]}, ok
}

// ToVec3 converts vectors and "x, y, z" strings to a Vec3.
func (v Variant) ToVec3() (Vec3, bool) {
	c, ok := v.components(3)
	return Vec3{c[0], c[1], c[2]}, ok
}

// ToVec4 converts vectors and "x, y, z, w" strings to a Vec4.
func (v Variant) ToVec4() (Vec4, bool) {
	c, ok := v.components(4)
	return Vec4{c[0], c[1], c[2], c[3]}, ok
}

func (v Variant) components(n int) ([4]float32, bool) {
	switch v.typ {
	case Vector2, Vector3, Vector4:
		return v.v, true
	case String:
		var out [4]float32
		parts := strings.Split(v.s, ",")
		if len(parts) != n {
			return out, false
		}
		for i, p := range parts {
			f, ok := ParseNumber(strings.TrimSpace(p))
			if !ok {
				return out, false
			}
			out[i] = float32(f)
		}
		return out, true
	}
	return [4]float32{}, false
}

// ParseNumber parses a decimal number. Unlike strconv.ParseFloat it rejects
// the spelled out forms "inf" and "nan" and hexadecimal floats.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	c := s[0]
	if c == '+' || c == '-' {
		if len(s) == 1 {
			return 0, false
		}
		c = s[1]
	}
	if (c < '0' || c > '9') && c != '.' {
		return 0, false
	}
	if strings.ContainsAny(s, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatFloat prints f with the given number of decimals, optionally removing
// trailing zeros and a dangling decimal point.
func FormatFloat(f float64, precision int, trimZeros bool) string {
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(f, 'f', precision, 64)
	if trimZeros && strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

func joinFloats(fs []float32) string {
	var sb strings.Builder
	for i, f := range fs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatFloat(float64(f), floatPrecision, true))
	}
	return sb.String()
}

func unit8(f float32) uint8 {
	switch {
	case f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(f*255 + 0.5)
}
