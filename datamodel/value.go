package datamodel

import (
	"image/color"
	"math"
	"reflect"
	"strings"

	"github.com/IvanBrykalov/uicore/dataexpr"
	"github.com/IvanBrykalov/uicore/variant"
)

var (
	variantType = reflect.TypeFor[variant.Variant]()
	rgbaType    = reflect.TypeFor[color.RGBA]()
	colourFType = reflect.TypeFor[variant.ColourF]()
	vec2Type    = reflect.TypeFor[variant.Vec2]()
	vec3Type    = reflect.TypeFor[variant.Vec3]()
	vec4Type    = reflect.TypeFor[variant.Vec4]()
)

// deref follows pointers and interfaces. It fails on nil.
func deref(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func hasLen(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return true
	}
	return false
}

// lookup walks path from v.
func lookup(v reflect.Value, path dataexpr.Address) (reflect.Value, bool) {
	for _, e := range path {
		var ok bool
		if v, ok = child(v, e); !ok {
			return reflect.Value{}, false
		}
	}
	return v, true
}

func child(v reflect.Value, e dataexpr.AddressEntry) (reflect.Value, bool) {
	v, ok := deref(v)
	if !ok {
		return reflect.Value{}, false
	}
	if e.Name == "" {
		if k := v.Kind(); (k == reflect.Slice || k == reflect.Array) && e.Index >= 0 && e.Index < v.Len() {
			return v.Index(e.Index), true
		}
		return reflect.Value{}, false
	}
	if e.Name == sizeName && hasLen(v) {
		return reflect.ValueOf(v.Len()), true
	}
	switch v.Kind() {
	case reflect.Struct:
		return field(v, e.Name)
	case reflect.Map:
		if key, ok := mapKey(v, e.Name); ok {
			if mv := v.MapIndex(key); mv.IsValid() {
				return mv, true
			}
		}
	}
	return reflect.Value{}, false
}

// field finds an exported struct field by `data` tag, then by exact name,
// then case-insensitively. A tag of "-" hides the field.
func field(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	exact, folded := -1, -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("data"), ",")
		switch {
		case tag == "-":
		case tag != "":
			if tag == name {
				return v.Field(i), true
			}
		case f.Name == name:
			exact = i
		case folded < 0 && strings.EqualFold(f.Name, name):
			folded = i
		}
	}
	if exact < 0 {
		exact = folded
	}
	if exact < 0 {
		return reflect.Value{}, false
	}
	return v.Field(exact), true
}

func mapKey(m reflect.Value, name string) (reflect.Value, bool) {
	kt := m.Type().Key()
	if kt.Kind() != reflect.String {
		return reflect.Value{}, false
	}
	return reflect.ValueOf(name).Convert(kt), true
}

// toVariant converts a leaf value. Nil pointers and interfaces read as the
// empty variant.
func toVariant(v reflect.Value) (variant.Variant, bool) {
	if !v.IsValid() {
		return variant.Variant{}, false
	}
	v, ok := deref(v)
	if !ok {
		return variant.Variant{}, true
	}
	if v.CanInterface() {
		if out, ok := variant.Of(v.Interface()); ok {
			return out, true
		}
	}
	switch v.Kind() {
	case reflect.Bool:
		return variant.FromBool(v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return variant.FromInt(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if u := v.Uint(); u <= math.MaxInt64 {
			return variant.FromInt(int64(u)), true
		}
	case reflect.Float32, reflect.Float64:
		return variant.FromFloat(v.Float()), true
	case reflect.String:
		return variant.FromString(v.String()), true
	}
	return variant.Variant{}, false
}

// store writes val at path below v. Map values and interface contents are
// not addressable, so they are copied, written and stored back.
func store(v reflect.Value, path dataexpr.Address, val variant.Variant) bool {
	if len(path) == 0 {
		return assign(v, val)
	}
	switch v.Kind() {
	case reflect.Pointer:
		return !v.IsNil() && store(v.Elem(), path, val)
	case reflect.Interface:
		if v.IsNil() || !v.CanSet() {
			return false
		}
		cp := reflect.New(v.Elem().Type()).Elem()
		cp.Set(v.Elem())
		if !store(cp, path, val) {
			return false
		}
		v.Set(cp)
		return true
	}

	e := path[0]
	if e.Name == "" {
		if k := v.Kind(); (k == reflect.Slice || k == reflect.Array) && e.Index >= 0 && e.Index < v.Len() {
			return store(v.Index(e.Index), path[1:], val)
		}
		return false
	}
	if e.Name == sizeName && hasLen(v) {
		return false
	}
	switch v.Kind() {
	case reflect.Struct:
		f, ok := field(v, e.Name)
		return ok && store(f, path[1:], val)
	case reflect.Map:
		key, ok := mapKey(v, e.Name)
		if !ok || v.IsNil() {
			return false
		}
		cur := v.MapIndex(key)
		if !cur.IsValid() {
			return false
		}
		cp := reflect.New(v.Type().Elem()).Elem()
		cp.Set(cur)
		if !store(cp, path[1:], val) {
			return false
		}
		v.SetMapIndex(key, cp)
		return true
	}
	return false
}

// assign converts val to v's type and sets it.
func assign(v reflect.Value, val variant.Variant) bool {
	if !v.CanSet() {
		return false
	}
	var (
		out reflect.Value
		ok  = true
	)
	switch v.Type() {
	case variantType:
		out = reflect.ValueOf(val)
	case rgbaType:
		var c color.RGBA
		c, ok = val.ToColourb()
		out = reflect.ValueOf(c)
	case colourFType:
		var c variant.ColourF
		c, ok = val.ToColourF()
		out = reflect.ValueOf(c)
	case vec2Type:
		var x variant.Vec2
		x, ok = val.ToVec2()
		out = reflect.ValueOf(x)
	case vec3Type:
		var x variant.Vec3
		x, ok = val.ToVec3()
		out = reflect.ValueOf(x)
	case vec4Type:
		var x variant.Vec4
		x, ok = val.ToVec4()
		out = reflect.ValueOf(x)
	}
	if out.IsValid() {
		if ok {
			v.Set(out)
		}
		return ok
	}

	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(val.ToBool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := val.ToInt()
		if !ok || v.OverflowInt(i) {
			return false
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		i, ok := val.ToInt()
		if !ok || i < 0 || v.OverflowUint(uint64(i)) {
			return false
		}
		v.SetUint(uint64(i))
	case reflect.Float32, reflect.Float64:
		f, ok := val.ToFloat()
		if !ok || v.OverflowFloat(f) {
			return false
		}
		v.SetFloat(f)
	case reflect.String:
		v.SetString(val.ToString())
	case reflect.Interface:
		if v.NumMethod() != 0 {
			return false
		}
		if x := val.Interface(); x != nil {
			v.Set(reflect.ValueOf(x))
		} else {
			v.Set(reflect.Zero(v.Type()))
		}
	default:
		return false
	}
	return true
}
