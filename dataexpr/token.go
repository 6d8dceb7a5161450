package dataexpr

import (
	"strconv"
	"strings"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNumber
	tokString
	tokIdent
	tokOp // operators and punctuation; Text holds the symbol
)

// token is a lexical unit with its byte offset in the source.
type token struct {
	kind   tokenKind
	text   string
	num    float64
	offset int
}

func (t token) is(op string) bool { return t.kind == tokOp && t.text == op }

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return "number " + t.text
	case tokString:
		return "string " + strconv.Quote(t.text)
	case tokIdent:
		return "identifier '" + t.text + "'"
	}
	return "'" + t.text + "'"
}

// twoCharOps must be checked before single characters.
var twoCharOps = []string{"==", "!=", "<=", ">=", "&&", "||"}

const singleCharOps = "+-*/%!<>=?:|(),;[]."

// lex splits src into tokens. The returned slice always ends with tokEOF.
func lex(src string) ([]token, *ParseError) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1]) && !endsOperand(toks)):
			start := i
			seenDot := false
			for i < len(src) && (isDigit(src[i]) || (src[i] == '.' && !seenDot)) {
				if src[i] == '.' {
					// "1.x" is a number followed by member access only if a
					// letter follows; numbers have no members, so stop here.
					if i+1 < len(src) && isLetter(src[i+1]) {
						break
					}
					seenDot = true
				}
				i++
			}
			text := src[start:i]
			if i < len(src) && isLetter(src[i]) {
				return nil, &ParseError{Expression: src, Offset: i, Msg: "invalid number literal '" + text + string(src[i]) + "'"}
			}
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &ParseError{Expression: src, Offset: start, Msg: "invalid number literal '" + text + "'", Err: err}
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: f, offset: start})

		case c == '\'' || c == '"':
			s, n, ok := lexString(src[i:])
			if !ok {
				return nil, &ParseError{Expression: src, Offset: i, Msg: "unterminated string literal"}
			}
			toks = append(toks, token{kind: tokString, text: s, offset: i})
			i += n

		case isLetter(c):
			start := i
			for i < len(src) && (isLetter(src[i]) || isDigit(src[i]) || src[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], offset: start})

		default:
			if op, ok := matchTwoChar(src[i:]); ok {
				toks = append(toks, token{kind: tokOp, text: op, offset: i})
				i += 2
				continue
			}
			if strings.IndexByte(singleCharOps, c) >= 0 {
				toks = append(toks, token{kind: tokOp, text: string(c), offset: i})
				i++
				continue
			}
			return nil, &ParseError{Expression: src, Offset: i, Msg: "unexpected character '" + string(c) + "'"}
		}
	}
	return append(toks, token{kind: tokEOF, offset: len(src)}), nil
}

// lexString reads a quoted literal starting at s[0]. It returns the unescaped
// contents and the number of bytes consumed, quotes included.
func lexString(s string) (string, int, bool) {
	quote := s[0]
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '\'' || s[i+1] == '"'):
			sb.WriteByte(s[i+1])
			i++
		case c == quote:
			return sb.String(), i + 1, true
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, false
}

func matchTwoChar(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	for _, op := range twoCharOps {
		if s[:2] == op {
			return op, true
		}
	}
	return "", false
}

// endsOperand reports whether the last token can be followed by '.' member
// access, in which case a '.' is not the start of a number.
func endsOperand(toks []token) bool {
	if len(toks) == 0 {
		return false
	}
	last := toks[len(toks)-1]
	return last.kind == tokIdent || last.is("]") || last.is(")")
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
