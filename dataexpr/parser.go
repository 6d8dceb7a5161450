package dataexpr

import (
	"strconv"
	"strings"

	"github.com/IvanBrykalov/uicore/variant"
)

// Parser compiles one expression. It is single-use: Parse may be called once,
// after which ReleaseProgram and ReleaseAddresses hand over the result.
type Parser struct {
	src   string
	iface Interface

	toks []token
	pos  int

	program   Program
	addresses AddressList
	err       *ParseError

	used     bool
	released struct{ program, addresses bool }
}

// NewParser returns a parser for expression. iface resolves variable paths;
// it may be nil for expressions made only of literals and functions.
func NewParser(expression string, iface Interface) *Parser {
	return &Parser{src: expression, iface: iface}
}

// bailout carries a *ParseError out of the recursive descent.
type bailout struct{ err *ParseError }

// Parse compiles the expression. With isAssignment set the source must be one
// or more `name = expr` statements separated by ';'. It reports success; on
// failure Err describes the problem and no program can be released.
func (p *Parser) Parse(isAssignment bool) (ok bool) {
	if p.used {
		p.err = &ParseError{Expression: p.src, Msg: ErrParserUsed.Error(), Err: ErrParserUsed}
		p.program, p.addresses = nil, nil
		return false
	}
	p.used = true

	defer func() {
		if r := recover(); r != nil {
			b, isBailout := r.(bailout)
			if !isBailout {
				panic(r)
			}
			p.err = b.err
			p.program, p.addresses = nil, nil
			log().Warn("data expression parse failed",
				"expression", p.src, "offset", b.err.Offset, "error", b.err.Msg)
			ok = false
		}
	}()

	toks, lexErr := lex(p.src)
	if lexErr != nil {
		panic(bailout{lexErr})
	}
	p.toks = toks

	if isAssignment {
		p.statements()
	} else {
		p.expression()
	}
	if t := p.peek(); t.kind != tokEOF {
		p.fail(t.offset, "unexpected "+t.describe())
	}

	log().Debug("data expression parsed",
		"expression", p.src, "instructions", len(p.program), "addresses", len(p.addresses))
	return true
}

// Err returns the error of a failed Parse, or nil.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

// ReleaseProgram hands over the compiled program. It returns nil if Parse
// did not succeed or the program was already released.
func (p *Parser) ReleaseProgram() Program {
	if !p.used || p.err != nil || p.released.program {
		return nil
	}
	p.released.program = true
	prog := p.program
	p.program = nil
	return prog
}

// ReleaseAddresses hands over the address list belonging to the program.
// The list is non-nil after a successful Parse, even when empty.
func (p *Parser) ReleaseAddresses() AddressList {
	if !p.used || p.err != nil || p.released.addresses {
		return nil
	}
	p.released.addresses = true
	addrs := p.addresses
	if addrs == nil {
		addrs = AddressList{}
	}
	p.addresses = nil
	return addrs
}

// ---- token stream ----

func (p *Parser) peek() token { return p.toks[p.pos] }

func (p *Parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) accept(op string) bool {
	if p.peek().is(op) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) expect(op string) token {
	t := p.next()
	if !t.is(op) {
		p.fail(t.offset, "expected '"+op+"' but found "+t.describe())
	}
	return t
}

func (p *Parser) fail(offset int, msg string) {
	panic(bailout{&ParseError{Expression: p.src, Offset: offset, Msg: msg}})
}

// ---- emission ----

func (p *Parser) emit(op Opcode, arg int, data variant.Variant) int {
	p.program = append(p.program, Instruction{Op: op, Arg: arg, Data: data})
	return len(p.program) - 1
}

// patch points the jump at index i to the next instruction to be emitted.
func (p *Parser) patch(i int) { p.program[i].Arg = len(p.program) }

// address resolves path and records it, returning its AddressList index.
func (p *Parser) address(path string) (int, bool) {
	if p.iface == nil {
		return 0, false
	}
	addr, ok := p.iface.ParseAddress(path)
	if !ok || len(addr) == 0 {
		return 0, false
	}
	p.addresses = append(p.addresses, addr)
	return len(p.addresses) - 1, true
}

func (p *Parser) isFunction(name string) bool {
	if _, ok := builtins[name]; ok {
		return true
	}
	if tp, ok := p.iface.(TransformProvider); ok {
		_, ok = tp.Transform(name)
		return ok
	}
	return false
}

func (p *Parser) call(name token, argc int) {
	if err := checkArity(name.text, argc); err != nil {
		p.fail(name.offset, err.Error())
	}
	p.emit(OpCall, argc, variant.FromString(name.text))
}

// ---- grammar ----

// statements := assignment (';' assignment)* ';'?
func (p *Parser) statements() {
	for {
		t := p.peek()
		if t.kind != tokIdent {
			p.fail(t.offset, "expected variable name but found "+t.describe())
		}
		path := p.path()
		idx, ok := p.address(path)
		if !ok {
			p.fail(t.offset, "invalid assignment target '"+path+"'")
		}
		p.expect("=")
		p.expression()
		p.emit(OpAssign, idx, variant.Variant{})

		if !p.accept(";") {
			return
		}
		if p.peek().kind == tokEOF {
			return
		}
	}
}

// expression := ternary ('|' name ('(' args ')')?)*
func (p *Parser) expression() {
	p.ternary()
	for p.accept("|") {
		t := p.next()
		if t.kind != tokIdent {
			p.fail(t.offset, "expected function name after '|' but found "+t.describe())
		}
		if !p.isFunction(t.text) {
			p.fail(t.offset, "unknown function '"+t.text+"'")
		}
		n := 1
		if p.accept("(") {
			n += p.arguments()
		}
		p.call(t, n)
	}
}

// ternary := logicOr ('?' expression ':' ternary)?
//
// A pipe after the else branch applies to the whole conditional.
func (p *Parser) ternary() {
	p.logicOr()
	if !p.accept("?") {
		return
	}
	toElse := p.emit(OpJumpIfFalse, 0, variant.Variant{})
	p.expression()
	toEnd := p.emit(OpJump, 0, variant.Variant{})
	p.expect(":")
	p.patch(toElse)
	p.ternary()
	p.patch(toEnd)
}

func (p *Parser) logicOr() {
	p.logicAnd()
	for p.accept("||") {
		toTrue := p.emit(OpJumpIfTrue, 0, variant.Variant{})
		p.logicAnd()
		p.emit(OpToBool, 0, variant.Variant{})
		toEnd := p.emit(OpJump, 0, variant.Variant{})
		p.patch(toTrue)
		p.emit(OpLiteral, 0, variant.FromBool(true))
		p.patch(toEnd)
	}
}

func (p *Parser) logicAnd() {
	p.equality()
	for p.accept("&&") {
		toFalse := p.emit(OpJumpIfFalse, 0, variant.Variant{})
		p.equality()
		p.emit(OpToBool, 0, variant.Variant{})
		toEnd := p.emit(OpJump, 0, variant.Variant{})
		p.patch(toFalse)
		p.emit(OpLiteral, 0, variant.FromBool(false))
		p.patch(toEnd)
	}
}

// binaryLevel parses operand (op operand)* for the given operator table.
func (p *Parser) binaryLevel(operand func(), ops map[string]Opcode) {
	operand()
	for {
		t := p.peek()
		op, ok := ops[t.text]
		if t.kind != tokOp || !ok {
			return
		}
		p.next()
		operand()
		p.emit(op, 0, variant.Variant{})
	}
}

var (
	equalityOps       = map[string]Opcode{"==": OpEqual, "!=": OpNotEqual}
	relationalOps     = map[string]Opcode{"<": OpLess, "<=": OpLessEq, ">": OpGreater, ">=": OpGreaterEq}
	additiveOps       = map[string]Opcode{"+": OpAdd, "-": OpSubtract}
	multiplicativeOps = map[string]Opcode{"*": OpMultiply, "/": OpDivide, "%": OpModulo}
)

func (p *Parser) equality()       { p.binaryLevel(p.relational, equalityOps) }
func (p *Parser) relational()     { p.binaryLevel(p.additive, relationalOps) }
func (p *Parser) additive()       { p.binaryLevel(p.multiplicative, additiveOps) }
func (p *Parser) multiplicative() { p.binaryLevel(p.unary, multiplicativeOps) }

// unary := ('!' | '-') unary | primary
func (p *Parser) unary() {
	switch {
	case p.accept("!"):
		p.unary()
		p.emit(OpNot, 0, variant.Variant{})
	case p.accept("-"):
		if t := p.peek(); t.kind == tokNumber {
			p.next()
			p.emit(OpLiteral, 0, variant.FromFloat(-t.num))
			return
		}
		p.unary()
		p.emit(OpNegate, 0, variant.Variant{})
	default:
		p.primary()
	}
}

// primary := number | string | true | false | call | path | '(' expression ')'
func (p *Parser) primary() {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		p.emit(OpLiteral, 0, variant.FromFloat(t.num))
	case tokString:
		p.next()
		p.emit(OpLiteral, 0, variant.FromString(t.text))
	case tokIdent:
		p.identifier()
	case tokOp:
		if t.is("(") {
			p.next()
			p.expression()
			p.expect(")")
			return
		}
		p.fail(t.offset, "expected literal, variable, function or '(' but found "+t.describe())
	default:
		p.fail(t.offset, "unexpected end of expression")
	}
}

func (p *Parser) identifier() {
	t := p.peek()
	switch t.text {
	case "true", "false":
		p.next()
		p.emit(OpLiteral, 0, variant.FromBool(t.text == "true"))
		return
	}

	// name(...) is always a call.
	if p.toks[p.pos+1].is("(") {
		p.next()
		p.next()
		if !p.isFunction(t.text) {
			p.fail(t.offset, "unknown function '"+t.text+"'")
		}
		p.call(t, p.arguments())
		return
	}

	path := p.path()
	if idx, ok := p.address(path); ok {
		p.emit(OpVariable, idx, variant.Variant{})
		return
	}
	if path == t.text && p.isFunction(t.text) {
		p.call(t, 0)
		return
	}
	p.fail(t.offset, "unresolved identifier '"+path+"'")
}

// path reads name ('.' name | '[' integer ']')* and returns it in source form.
func (p *Parser) path() string {
	var sb strings.Builder
	sb.WriteString(p.next().text)
	for {
		switch {
		case p.peek().is("."):
			p.next()
			t := p.next()
			if t.kind != tokIdent {
				p.fail(t.offset, "expected member name after '.' but found "+t.describe())
			}
			sb.WriteByte('.')
			sb.WriteString(t.text)
		case p.peek().is("["):
			p.next()
			t := p.next()
			if t.kind != tokNumber || strings.ContainsRune(t.text, '.') {
				p.fail(t.offset, "expected array index but found "+t.describe())
			}
			p.expect("]")
			sb.WriteByte('[')
			sb.WriteString(strconv.FormatFloat(t.num, 'f', 0, 64))
			sb.WriteByte(']')
		default:
			return sb.String()
		}
	}
}

// arguments parses the remainder of an argument list after '(' and returns
// the number of arguments.
func (p *Parser) arguments() int {
	if p.accept(")") {
		return 0
	}
	n := 0
	for {
		p.expression()
		n++
		if p.accept(")") {
			return n
		}
		t := p.next()
		if !t.is(",") {
			p.fail(t.offset, "expected ',' or ')' but found "+t.describe())
		}
	}
}
