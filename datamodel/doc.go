// Package datamodel is a variable store for data-binding expressions.
//
// A Model binds Go values by pointer and exposes them to package dataexpr
// through ParseAddress, GetValue and SetValue. Paths walk struct fields,
// string-keyed maps, slices and arrays: "invader.weapons[1].name". The
// pseudo member "size" yields the length of slices, arrays, maps and
// strings, and "literal.int[N]" evaluates to N.
//
// Views are expressions re-evaluated by Update when a variable they read
// has been dirtied, either explicitly with DirtyVariable or by a write
// through SetValue or Assign.
//
// A Model is not safe for concurrent use.
package datamodel
