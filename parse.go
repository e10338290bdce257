package gosolve

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// radical is the alternate square-root notation accepted in input.
const radical = '√'

// ============================================================
// Normalization
// ============================================================

var superscripts = map[rune]rune{
	'⁰': '0', '¹': '1', '²': '2', '³': '3', '⁴': '4',
	'⁵': '5', '⁶': '6', '⁷': '7', '⁸': '8', '⁹': '9', '⁻': '-',
}

var operatorRunes = map[rune]rune{
	'−': '-', '–': '-', '×': '*', '·': '*', '∙': '*', '÷': '/',
}

// normalizeInput maps typographic operators and superscript exponents to
// their ASCII forms, then applies NFKC so fullwidth and compatibility
// characters lex like their plain counterparts.
func normalizeInput(text string) string {
	var sb strings.Builder
	inSup := false
	for _, r := range text {
		if d, ok := superscripts[r]; ok {
			if !inSup {
				sb.WriteByte('^')
				inSup = true
			}
			sb.WriteRune(d)
			continue
		}
		inSup = false
		switch r {
		case '≤':
			sb.WriteString("<=")
			continue
		case '≥':
			sb.WriteString(">=")
			continue
		}
		if m, ok := operatorRunes[r]; ok {
			r = m
		}
		sb.WriteRune(r)
	}
	return norm.NFKC.String(sb.String())
}

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(t.text)
}

// lex tokenizes one clause. base is the rune offset of src within the
// whole input and is added to every token position.
func lex(src []rune, base int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r := src[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(src) && unicode.IsDigit(src[i+1])):
			start := i
			dot := false
			for i < len(src) && (unicode.IsDigit(src[i]) || (src[i] == '.' && !dot)) {
				if src[i] == '.' {
					dot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNum, text: string(src[start:i]), pos: base + start})
		case unicode.IsLetter(r):
			start := i
			for i < len(src) && unicode.IsLetter(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(src[start:i]), pos: base + start})
		case r == radical:
			toks = append(toks, token{kind: tokIdent, text: "sqrt", pos: base + i})
			i++
		case r == '*' && i+1 < len(src) && src[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: base + i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: base + i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: base + i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: base + i})
			i++
		default:
			return nil, &ParseError{Pos: base + i, Reason: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: base + len(src)})
	return insertImplicitMul(toks), nil
}

// insertImplicitMul adds '*' where a number or ')' is directly followed by
// an identifier (including sqrt) or '('.
func insertImplicitMul(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i, t := range toks {
		if i > 0 {
			prev := toks[i-1].kind
			if (prev == tokNum || prev == tokRParen) && (t.kind == tokIdent || t.kind == tokLParen) {
				out = append(out, token{kind: tokOp, text: "*", pos: t.pos})
			}
		}
		out = append(out, t)
	}
	return out
}

// ============================================================
// Parser
// ============================================================

type parser struct {
	toks []token
	pos  int
	syms *SymbolTable
}

// Parse parses a single expression (no '=' or relational operator).
func Parse(text string) (Expr, error) {
	return ParseWith(NewSymbolTable(), text)
}

// ParseWith parses a single expression, interning symbols into table.
func ParseWith(table *SymbolTable, text string) (Expr, error) {
	return parseSegment(table, []rune(normalizeInput(text)), 0)
}

func parseSegment(table *SymbolTable, src []rune, base int) (Expr, error) {
	toks, err := lex(src, base)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, syms: table}
	if p.peek().kind == tokEOF {
		return nil, &ParseError{Pos: p.peek().pos, Reason: "empty operand"}
	}
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	switch t := p.peek(); t.kind {
	case tokEOF:
		return e, nil
	case tokRParen:
		return nil, &ParseError{Pos: t.pos, Reason: "unmatched parenthesis"}
	default:
		return nil, &ParseError{Pos: t.pos, Reason: "unexpected " + t.String()}
	}
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

// expression := term (('+' | '-') term)*
func (p *parser) expression() (Expr, error) {
	e, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		rhs, err := p.term()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			rhs = MulOf(N(-1), rhs)
		}
		e = AddOf(e, rhs)
	}
	return e, nil
}

// term := unary (('*' | '/') unary)*
func (p *parser) term() (Expr, error) {
	e, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*") || p.isOp("/") {
		op := p.next()
		rhs, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op.text == "/" {
			if n, ok := rhs.(*Num); ok && n.IsZero() {
				return nil, &ParseError{Pos: op.pos, Reason: "division by zero"}
			}
			rhs = PowOf(rhs, N(-1))
		}
		e = MulOf(e, rhs)
	}
	return e, nil
}

// unary := ('-' | '+') unary | power
func (p *parser) unary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), e), nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

// power := atom ('^' unary)?   (right-associative through unary)
func (p *parser) power() (Expr, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if !p.isOp("^") {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

func (p *parser) atom() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNum:
		p.next()
		return parseNumber(t)
	case tokIdent:
		p.next()
		if IsFunction(t.text) {
			return p.call(t)
		}
		if p.peek().kind == tokLParen {
			return nil, &ParseError{Pos: t.pos, Reason: "unknown function " + t.text}
		}
		return p.syms.Intern(t.text), nil
	case tokLParen:
		p.next()
		if p.peek().kind == tokRParen {
			return nil, &ParseError{Pos: p.peek().pos, Reason: "empty operand"}
		}
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &ParseError{Pos: t.pos, Reason: "unmatched parenthesis"}
		}
		p.next()
		return e, nil
	case tokEOF, tokOp, tokRParen:
		return nil, &ParseError{Pos: t.pos, Reason: "empty operand"}
	}
	return nil, &ParseError{Pos: t.pos, Reason: "unexpected " + t.String()}
}

// call parses a function application. sqrt also binds directly to a
// following number or atom, covering sqrt3 and the radical notation.
func (p *parser) call(name token) (Expr, error) {
	next := p.peek()
	if next.kind == tokLParen {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}
		return FuncOf(name.text, arg), nil
	}
	if name.text == "sqrt" && (next.kind == tokNum || next.kind == tokIdent) {
		arg, err := p.atom()
		if err != nil {
			return nil, err
		}
		return SqrtOf(arg), nil
	}
	return nil, &ParseError{Pos: name.pos, Reason: "function " + name.text + " requires an argument"}
}

func parseNumber(t token) (Expr, error) {
	if strings.ContainsRune(t.text, '.') {
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Reason: "invalid number " + t.text}
		}
		return NFloat(f), nil
	}
	r, ok := new(big.Rat).SetString(t.text)
	if !ok {
		return nil, &ParseError{Pos: t.pos, Reason: "invalid number " + t.text}
	}
	return &Num{val: r}, nil
}
