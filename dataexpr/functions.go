package dataexpr

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/IvanBrykalov/uicore/variant"
)

// ErrArgument is wrapped by function errors caused by bad arguments.
var ErrArgument = errors.New("dataexpr: bad argument")

type builtin struct {
	minArgs, maxArgs int // maxArgs < 0 means variadic
	fn               TransformFunc
}

// builtins are available to every expression. An Interface implementing
// TransformProvider can add more, but cannot shadow these.
var builtins = map[string]builtin{
	"to_upper": {1, 1, stringFunc(strings.ToUpper)},
	"to_lower": {1, 1, stringFunc(strings.ToLower)},
	"trim":     {1, 1, stringFunc(strings.TrimSpace)},
	"length":   {1, 1, length},
	"round":    {1, 1, mathFunc("round", math.Round)},
	"floor":    {1, 1, mathFunc("floor", math.Floor)},
	"ceil":     {1, 1, mathFunc("ceil", math.Ceil)},
	"abs":      {1, 1, mathFunc("abs", math.Abs)},
	"min":      {1, -1, extremum("min", math.Min)},
	"max":      {1, -1, extremum("max", math.Max)},
	"format":   {2, 3, format},
	"number":   {1, 1, number},
	"int":      {1, 1, toInt},
	"string":   {1, 1, func(a []variant.Variant) (variant.Variant, error) { return variant.FromString(a[0].ToString()), nil }},
	"bool":     {1, 1, func(a []variant.Variant) (variant.Variant, error) { return variant.FromBool(a[0].ToBool()), nil }},
	"concat":   {0, -1, concat},
}

// IsBuiltin reports whether name is a built-in function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// checkArity validates a call to a built-in. Functions from a
// TransformProvider are not checked.
func checkArity(name string, n int) error {
	b, ok := builtins[name]
	if !ok {
		return nil
	}
	if n < b.minArgs || (b.maxArgs >= 0 && n > b.maxArgs) {
		switch {
		case b.maxArgs < 0:
			return fmt.Errorf("%s takes at least %d arguments, got %d", name, b.minArgs, n)
		case b.minArgs == b.maxArgs:
			return fmt.Errorf("%s takes %d arguments, got %d", name, b.minArgs, n)
		default:
			return fmt.Errorf("%s takes %d to %d arguments, got %d", name, b.minArgs, b.maxArgs, n)
		}
	}
	return nil
}

func argNumber(name string, a variant.Variant, pos int) (float64, error) {
	f, ok := a.ToFloat()
	if !ok {
		return 0, fmt.Errorf("%w: %s argument %d: %q is not a number", ErrArgument, name, pos+1, a.ToString())
	}
	return f, nil
}

func stringFunc(f func(string) string) TransformFunc {
	return func(a []variant.Variant) (variant.Variant, error) {
		return variant.FromString(f(a[0].ToString())), nil
	}
}

func mathFunc(name string, f func(float64) float64) TransformFunc {
	return func(a []variant.Variant) (variant.Variant, error) {
		x, err := argNumber(name, a[0], 0)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.FromFloat(f(x)), nil
	}
}

func extremum(name string, pick func(a, b float64) float64) TransformFunc {
	return func(a []variant.Variant) (variant.Variant, error) {
		best, err := argNumber(name, a[0], 0)
		if err != nil {
			return variant.Variant{}, err
		}
		for i := 1; i < len(a); i++ {
			x, err := argNumber(name, a[i], i)
			if err != nil {
				return variant.Variant{}, err
			}
			best = pick(best, x)
		}
		return variant.FromFloat(best), nil
	}
}

func length(a []variant.Variant) (variant.Variant, error) {
	return variant.FromInt(int64(utf8.RuneCountInString(a[0].ToString()))), nil
}

// format(value, precision[, trim]) prints value with a fixed number of
// decimals; a true trim drops trailing zeros.
func format(a []variant.Variant) (variant.Variant, error) {
	x, err := argNumber("format", a[0], 0)
	if err != nil {
		return variant.Variant{}, err
	}
	prec, ok := a[1].ToInt()
	if !ok || prec < 0 || prec > 32 {
		return variant.Variant{}, fmt.Errorf("%w: format precision %q", ErrArgument, a[1].ToString())
	}
	trim := len(a) == 3 && a[2].ToBool()
	return variant.FromString(variant.FormatFloat(x, int(prec), trim)), nil
}

func number(a []variant.Variant) (variant.Variant, error) {
	x, err := argNumber("number", a[0], 0)
	if err != nil {
		return variant.Variant{}, err
	}
	return variant.FromFloat(x), nil
}

func toInt(a []variant.Variant) (variant.Variant, error) {
	i, ok := a[0].ToInt()
	if !ok {
		return variant.Variant{}, fmt.Errorf("%w: int: %q is not an int64", ErrArgument, a[0].ToString())
	}
	return variant.FromInt(i), nil
}

func concat(a []variant.Variant) (variant.Variant, error) {
	var sb strings.Builder
	for _, v := range a {
		sb.WriteString(v.ToString())
	}
	return variant.FromString(sb.String()), nil
}
