package datamodel

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by BindError.
var (
	ErrIllegalName   = errors.New("name must start with a letter and contain only a-z, A-Z, 0-9 and _")
	ErrReservedName  = errors.New("name is reserved")
	ErrDuplicateName = errors.New("name already bound")
	ErrNotPointer    = errors.New("value must be a non-nil pointer")
	ErrNilFunc       = errors.New("function must not be nil")
	ErrInvalidTarget = errors.New("alias target does not resolve")
	ErrUnknownView   = errors.New("unknown view")
)

// BindError reports a failed registration on a Model.
type BindError struct {
	// Op is the failing method, e.g. "Bind" or "Alias".
	Op string
	// Name is the variable, transform or alias name involved.
	Name string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("datamodel: %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }
