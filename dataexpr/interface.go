package dataexpr

import (
	"strconv"
	"strings"

	"github.com/IvanBrykalov/uicore/variant"
)

// AddressEntry is one step of a variable path: a member name, or an index
// when Name is empty.
type AddressEntry struct {
	Name  string
	Index int
}

// Address is a resolved variable path, e.g. items[2].name.
type Address []AddressEntry

// String renders the address in source form.
func (a Address) String() string {
	var sb strings.Builder
	for i, e := range a {
		switch {
		case e.Name == "":
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(e.Index))
			sb.WriteByte(']')
		case i > 0:
			sb.WriteByte('.')
			sb.WriteString(e.Name)
		default:
			sb.WriteString(e.Name)
		}
	}
	return sb.String()
}

// AddressList holds the addresses referenced by a Program, indexed by the
// Arg of its Variable and Assign instructions.
type AddressList []Address

// Interface is the variable store an expression is compiled and run against.
// It is owned by the caller.
type Interface interface {
	// ParseAddress resolves a dotted/bracketed path. It returns false when
	// the path does not name a variable.
	ParseAddress(path string) (Address, bool)
	// GetValue reads the current value at address.
	GetValue(address Address) (variant.Variant, bool)
	// SetValue writes value at address.
	SetValue(address Address, value variant.Variant) bool
}

// TransformFunc is a named function callable from expressions, either as
// name(args...) or through the pipe operator.
type TransformFunc func(args []variant.Variant) (variant.Variant, error)

// TransformProvider is optionally implemented by an Interface to expose
// functions beyond the built-ins.
type TransformProvider interface {
	Transform(name string) (TransformFunc, bool)
}
