package dataexpr

import (
	"strings"

	"github.com/IvanBrykalov/uicore/variant"
)

// testVars is a flat variable store keyed by the rendered address.
type testVars struct {
	vals map[string]variant.Variant
	fns  map[string]TransformFunc
	sets int
}

func newTestVars() *testVars {
	return &testVars{
		vals: map[string]variant.Variant{
			"radius":     variant.FromFloat(6),
			"color_name": variant.FromString("white"),
			"num":        variant.FromInt(5),
			"name":       variant.FromString("Bob"),
			"flag":       variant.FromBool(true),
			"empty":      variant.FromString(""),
			"pos.x":      variant.FromFloat(1.5),
			"items[1]":   variant.FromString("second"),
			"readonly":   variant.FromInt(1),
		},
		fns: map[string]TransformFunc{
			"double": func(a []variant.Variant) (variant.Variant, error) {
				f, _ := a[0].ToFloat()
				return variant.FromFloat(2 * f), nil
			},
			"explode": func([]variant.Variant) (variant.Variant, error) {
				panic("boom")
			},
		},
	}
}

func (v *testVars) ParseAddress(path string) (Address, bool) {
	if _, ok := v.vals[path]; !ok {
		return nil, false
	}
	var addr Address
	for _, part := range strings.Split(path, ".") {
		addr = append(addr, AddressEntry{Name: part})
	}
	return addr, true
}

func (v *testVars) GetValue(a Address) (variant.Variant, bool) {
	val, ok := v.vals[a.String()]
	return val, ok
}

func (v *testVars) SetValue(a Address, val variant.Variant) bool {
	key := a.String()
	if key == "readonly" {
		return false
	}
	if _, ok := v.vals[key]; !ok {
		return false
	}
	v.vals[key] = val
	v.sets++
	return true
}

func (v *testVars) Transform(name string) (TransformFunc, bool) {
	fn, ok := v.fns[name]
	return fn, ok
}
