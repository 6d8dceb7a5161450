// Package dataexpr compiles and runs the small expressions used by reactive
// data bindings.
//
// A Parser turns a source string such as
//
//	radius < 10.5 ? 'small' : 'large' | to_upper
//
// into a Program (a flat instruction tape) and an AddressList (the variable
// references found in the source, resolved through an Interface at parse
// time). An Interpreter then runs the Program against a live Interface,
// producing a value in expression mode or applying assignments such as
//
//	radius = radius * 2; color_name = 'image-color'
//
// in assignment mode.
//
// Operators, loosest first: pipe `|`, ternary `?:`, `||`, `&&`, `== !=`,
// `< <= > >=`, `+ -`, `* / %`, unary `! -`. Arithmetic is done in float64;
// `+` concatenates when either side is a string. `&&`, `||` and `?:`
// short-circuit, so an untaken branch never reads its variables.
//
// A Parser is single-use. Neither Parser nor Interpreter is safe for
// concurrent use.
// Parse and Run never panic on malformed input; failures are reported as a
// false return plus a *ParseError or *RuntimeError from Err.
package dataexpr
