package dataexpr

import (
	"errors"
	"fmt"
)

// ErrParserUsed is reported when Parse is called twice on the same Parser.
var ErrParserUsed = errors.New("dataexpr: parser already used")

// ParseError describes a compile failure with the byte offset where it was
// detected.
type ParseError struct {
	Expression string
	Offset     int
	Msg        string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataexpr: error in expression '%s' at %d: %s", e.Expression, e.Offset, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Caret returns the expression with a marker line under the offending offset.
func (e *ParseError) Caret() string {
	off := e.Offset
	if off > len(e.Expression) {
		off = len(e.Expression)
	}
	pad := make([]byte, off)
	for i := range pad {
		pad[i] = ' '
	}
	return e.Expression + "\n" + string(pad) + "^"
}

// RuntimeError describes a failure while running a Program.
type RuntimeError struct {
	Op  Opcode
	PC  int
	Msg string
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dataexpr: %s at %d: %s: %v", e.Op, e.PC, e.Msg, e.Err)
	}
	return fmt.Sprintf("dataexpr: %s at %d: %s", e.Op, e.PC, e.Msg)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
