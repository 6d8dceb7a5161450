package dataexpr

import "github.com/IvanBrykalov/uicore/variant"

// Expression is a compiled expression or assignment list, ready to run any
// number of times against Interfaces that resolve addresses the same way as
// the one it was compiled with.
type Expression struct {
	source     string
	assignment bool
	program    Program
	addresses  AddressList
}

// Compile parses source. It is a convenience around Parser.
func Compile(source string, iface Interface, isAssignment bool) (*Expression, error) {
	p := NewParser(source, iface)
	if !p.Parse(isAssignment) {
		return nil, p.Err()
	}
	return &Expression{
		source:     source,
		assignment: isAssignment,
		program:    p.ReleaseProgram(),
		addresses:  p.ReleaseAddresses(),
	}, nil
}

// Source returns the text the expression was compiled from.
func (e *Expression) Source() string { return e.source }

// IsAssignment reports whether e was compiled in assignment mode.
func (e *Expression) IsAssignment() bool { return e.assignment }

// Program returns the compiled instructions. Callers must not modify them.
func (e *Expression) Program() Program { return e.program }

// Addresses returns the variable addresses referenced by the program.
func (e *Expression) Addresses() AddressList { return e.addresses }

// Run evaluates e against iface.
func (e *Expression) Run(iface Interface) (variant.Variant, error) {
	in := NewInterpreter(e.program, e.addresses, iface)
	if !in.Run() {
		return variant.Variant{}, in.Err()
	}
	return in.Result(), nil
}

// VariableNames returns the distinct root variable names the expression
// reads or writes, in order of first use.
func (e *Expression) VariableNames() []string {
	var names []string
	seen := make(map[string]struct{}, len(e.addresses))
	for _, a := range e.addresses {
		if len(a) == 0 {
			continue
		}
		n := a[0].Name
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names
}
