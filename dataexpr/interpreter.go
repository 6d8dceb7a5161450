package dataexpr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/IvanBrykalov/uicore/variant"
)

// Runtime failures wrapped by RuntimeError.
var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrNotNumeric     = errors.New("operand is not numeric")
	ErrStackUnderflow = errors.New("stack underflow")
)

// Interpreter runs a Program against an Interface. It keeps the stack between
// runs only to reuse its storage; each Run starts empty.
type Interpreter struct {
	program   Program
	addresses AddressList
	iface     Interface

	stack  []variant.Variant
	result variant.Variant
	err    *RuntimeError
}

// NewInterpreter binds a program to the address list it was compiled with.
func NewInterpreter(program Program, addresses AddressList, iface Interface) *Interpreter {
	return &Interpreter{
		program:   program,
		addresses: addresses,
		iface:     iface,
		stack:     make([]variant.Variant, 0, 8),
	}
}

// Result returns the value produced by the last successful Run. Assignment
// programs produce the empty Variant.
func (in *Interpreter) Result() variant.Variant { return in.result }

// Err returns the failure of the last Run, or nil.
func (in *Interpreter) Err() error {
	if in.err == nil {
		return nil
	}
	return in.err
}

// Run executes the program. On failure it returns false; assignments made
// before the failing instruction stay applied.
func (in *Interpreter) Run() (ok bool) {
	in.stack = in.stack[:0]
	in.result = variant.Variant{}
	in.err = nil

	pc := 0
	defer func() {
		if r := recover(); r != nil {
			op := Opcode(0)
			if pc < len(in.program) {
				op = in.program[pc].Op
			}
			in.fail(&RuntimeError{Op: op, PC: pc, Msg: fmt.Sprint("panic: ", r)})
			ok = false
		}
	}()

	for pc < len(in.program) {
		next, err := in.step(pc)
		if err != nil {
			in.fail(err)
			return false
		}
		pc = next
	}

	if n := len(in.stack); n > 0 {
		in.result = in.stack[n-1]
	}
	return true
}

func (in *Interpreter) fail(err *RuntimeError) {
	in.err = err
	log().Warn("data expression failed", "pc", err.PC, "op", err.Op.String(), "error", err.Error())
}

func (in *Interpreter) push(v variant.Variant) { in.stack = append(in.stack, v) }

func (in *Interpreter) pop() variant.Variant {
	n := len(in.stack) - 1
	v := in.stack[n]
	in.stack = in.stack[:n]
	return v
}

// stackEffect is the number of operands each opcode pops.
var stackEffect = [...]int{
	OpAssign: 1, OpAdd: 2, OpSubtract: 2, OpMultiply: 2, OpDivide: 2, OpModulo: 2,
	OpNegate: 1, OpNot: 1, OpLess: 2, OpLessEq: 2, OpGreater: 2, OpGreaterEq: 2,
	OpEqual: 2, OpNotEqual: 2, OpJumpIfFalse: 1, OpJumpIfTrue: 1, OpToBool: 1,
}

// step executes the instruction at pc and returns the next pc.
func (in *Interpreter) step(pc int) (int, *RuntimeError) {
	ins := in.program[pc]
	fault := func(msg string, err error) (int, *RuntimeError) {
		return pc, &RuntimeError{Op: ins.Op, PC: pc, Msg: msg, Err: err}
	}

	need := 0
	if int(ins.Op) < len(stackEffect) {
		need = stackEffect[ins.Op]
	}
	if ins.Op == OpCall {
		need = ins.Arg
	}
	if len(in.stack) < need {
		return fault("not enough operands", ErrStackUnderflow)
	}

	switch ins.Op {
	case OpLiteral:
		in.push(ins.Data)

	case OpVariable:
		addr, ok := in.address(ins.Arg)
		if !ok {
			return fault(fmt.Sprintf("address index %d out of range", ins.Arg), nil)
		}
		v, ok := in.iface.GetValue(addr)
		if !ok {
			return fault("cannot read variable '"+addr.String()+"'", nil)
		}
		in.push(v)

	case OpAssign:
		addr, ok := in.address(ins.Arg)
		if !ok {
			return fault(fmt.Sprintf("address index %d out of range", ins.Arg), nil)
		}
		if !in.iface.SetValue(addr, in.pop()) {
			return fault("cannot assign variable '"+addr.String()+"'", nil)
		}

	case OpAdd:
		b, a := in.pop(), in.pop()
		if a.Type() == variant.String || b.Type() == variant.String {
			in.push(variant.FromString(a.ToString() + b.ToString()))
			break
		}
		x, y, ok := floats(a, b)
		if !ok {
			return fault("cannot add '"+a.ToString()+"' and '"+b.ToString()+"'", ErrNotNumeric)
		}
		in.push(variant.FromFloat(x + y))

	case OpSubtract, OpMultiply, OpDivide, OpModulo:
		b, a := in.pop(), in.pop()
		x, y, ok := floats(a, b)
		if !ok {
			return fault("operands '"+a.ToString()+"' and '"+b.ToString()+"'", ErrNotNumeric)
		}
		var r float64
		switch ins.Op {
		case OpSubtract:
			r = x - y
		case OpMultiply:
			r = x * y
		case OpDivide, OpModulo:
			if y == 0 {
				return fault("cannot divide '"+a.ToString()+"'", ErrDivisionByZero)
			}
			if ins.Op == OpDivide {
				r = x / y
			} else {
				r = math.Mod(x, y)
			}
		}
		in.push(variant.FromFloat(r))

	case OpNegate:
		a := in.pop()
		x, ok := a.ToFloat()
		if !ok {
			return fault("cannot negate '"+a.ToString()+"'", ErrNotNumeric)
		}
		in.push(variant.FromFloat(-x))

	case OpNot:
		in.push(variant.FromBool(!in.pop().ToBool()))

	case OpToBool:
		in.push(variant.FromBool(in.pop().ToBool()))

	case OpLess, OpLessEq, OpGreater, OpGreaterEq, OpEqual, OpNotEqual:
		b, a := in.pop(), in.pop()
		c := compare(a, b)
		var r bool
		switch ins.Op {
		case OpLess:
			r = c < 0
		case OpLessEq:
			r = c <= 0
		case OpGreater:
			r = c > 0
		case OpGreaterEq:
			r = c >= 0
		case OpEqual:
			r = c == 0
		case OpNotEqual:
			r = c != 0
		}
		in.push(variant.FromBool(r))

	case OpJump:
		return in.jump(ins.Arg, fault)

	case OpJumpIfFalse, OpJumpIfTrue:
		if in.pop().ToBool() == (ins.Op == OpJumpIfTrue) {
			return in.jump(ins.Arg, fault)
		}

	case OpCall:
		name := ins.Data.ToString()
		fn, ok := in.function(name)
		if !ok {
			return fault("unknown function '"+name+"'", nil)
		}
		args := make([]variant.Variant, ins.Arg)
		copy(args, in.stack[len(in.stack)-ins.Arg:])
		in.stack = in.stack[:len(in.stack)-ins.Arg]
		v, err := fn(args)
		if err != nil {
			return fault(name, err)
		}
		in.push(v)

	default:
		return fault("invalid opcode", nil)
	}
	return pc + 1, nil
}

func (in *Interpreter) jump(target int, fault func(string, error) (int, *RuntimeError)) (int, *RuntimeError) {
	if target < 0 || target > len(in.program) {
		return fault(fmt.Sprintf("jump target %d out of range", target), nil)
	}
	return target, nil
}

func (in *Interpreter) address(i int) (Address, bool) {
	if in.iface == nil || i < 0 || i >= len(in.addresses) {
		return nil, false
	}
	return in.addresses[i], true
}

func (in *Interpreter) function(name string) (TransformFunc, bool) {
	if b, ok := builtins[name]; ok {
		return b.fn, true
	}
	if tp, ok := in.iface.(TransformProvider); ok {
		return tp.Transform(name)
	}
	return nil, false
}

func floats(a, b variant.Variant) (float64, float64, bool) {
	x, ok1 := a.ToFloat()
	y, ok2 := b.ToFloat()
	return x, y, ok1 && ok2
}

// compare orders a and b. Two strings compare lexically. Otherwise numbers
// and numeric strings compare by value and anything else by string form.
func compare(a, b variant.Variant) int {
	if a.Type() == variant.String && b.Type() == variant.String {
		return strings.Compare(a.ToString(), b.ToString())
	}
	if x, y, ok := numericPair(a, b); ok {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return strings.Compare(a.ToString(), b.ToString())
}

func numericPair(a, b variant.Variant) (float64, float64, bool) {
	x, ok1 := numeric(a)
	y, ok2 := numeric(b)
	return x, y, ok1 && ok2
}

func numeric(v variant.Variant) (float64, bool) {
	if v.Type() == variant.String {
		return variant.ParseNumber(strings.TrimSpace(v.ToString()))
	}
	if !v.IsNumeric() {
		return 0, false
	}
	return v.ToFloat()
}
