package dataexpr

import (
	"fmt"
	"strings"

	"github.com/IvanBrykalov/uicore/variant"
)

// Opcode is an instruction of the expression machine. The machine has a
// single value stack; "push"/"pop" below refer to it.
type Opcode uint8

const (
	OpLiteral     Opcode = iota // push Data
	OpVariable                  // push GetValue(addresses[Arg])
	OpAssign                    // SetValue(addresses[Arg], pop)
	OpAdd                       // b, a = pop, pop; push a + b
	OpSubtract                  // push a - b
	OpMultiply                  // push a * b
	OpDivide                    // push a / b
	OpModulo                    // push a % b
	OpNegate                    // push -pop
	OpNot                       // push !pop
	OpLess                      // push a < b
	OpLessEq                    // push a <= b
	OpGreater                   // push a > b
	OpGreaterEq                 // push a >= b
	OpEqual                     // push a == b
	OpNotEqual                  // push a != b
	OpJump                      // pc = Arg
	OpJumpIfFalse               // if !pop { pc = Arg }
	OpJumpIfTrue                // if pop { pc = Arg }
	OpToBool                    // push bool(pop)
	OpCall                      // pop Arg values; push Data(name)(values...)
)

var opNames = [...]string{
	OpLiteral:     "Literal",
	OpVariable:    "Variable",
	OpAssign:      "Assign",
	OpAdd:         "Add",
	OpSubtract:    "Subtract",
	OpMultiply:    "Multiply",
	OpDivide:      "Divide",
	OpModulo:      "Modulo",
	OpNegate:      "Negate",
	OpNot:         "Not",
	OpLess:        "Less",
	OpLessEq:      "LessEq",
	OpGreater:     "Greater",
	OpGreaterEq:   "GreaterEq",
	OpEqual:       "Equal",
	OpNotEqual:    "NotEqual",
	OpJump:        "Jump",
	OpJumpIfFalse: "JumpIfFalse",
	OpJumpIfTrue:  "JumpIfTrue",
	OpToBool:      "ToBool",
	OpCall:        "Call",
}

func (op Opcode) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", uint8(op))
}

// Instruction is one entry of a Program.
type Instruction struct {
	Op   Opcode
	Arg  int
	Data variant.Variant
}

// Program is a compiled expression.
type Program []Instruction

// DumpProgram renders p one instruction per line.
func DumpProgram(p Program) string {
	var sb strings.Builder
	for i, in := range p {
		fmt.Fprintf(&sb, "%4d  %-12s", i, in.Op)
		switch in.Op {
		case OpLiteral:
			fmt.Fprintf(&sb, " %s(%q)", in.Data.Type(), in.Data.ToString())
		case OpCall:
			fmt.Fprintf(&sb, " %s/%d", in.Data.ToString(), in.Arg)
		case OpVariable, OpAssign, OpJump, OpJumpIfFalse, OpJumpIfTrue:
			fmt.Fprintf(&sb, " %d", in.Arg)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
