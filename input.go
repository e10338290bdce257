package gosolve

import (
	"sort"

	"go.uber.org/multierr"
)

// Given is one surviving input clause, in input order. Exactly one of
// Equation and Inequality is set.
type Given struct {
	Equation   *Equation
	Inequality *Inequality
}

func (g Given) String() string {
	if g.Equation != nil {
		return g.Equation.String()
	}
	return g.Inequality.String()
}

// System is the parsed form of one request. It is built once by
// ParseInput and not modified afterwards.
type System struct {
	Givens       []Given
	Equations    []*Equation
	Inequalities []*Inequality
	// Symbols are the free symbols across all clauses, sorted.
	Symbols []string
	// Filtered counts numeric-only clauses dropped as tautologies or
	// contradictions.
	Filtered int
	Table    *SymbolTable
}

// clause is a raw input clause with its rune offset in the normalized text.
type clause struct {
	src []rune
	pos int
}

// splitClauses splits on newlines, commas and semicolons outside
// parentheses.
func splitClauses(src []rune) []clause {
	var out []clause
	depth, start := 0, 0
	flush := func(end int) {
		if end > start {
			out = append(out, clause{src: src[start:end], pos: start})
		}
		start = end + 1
	}
	for i, r := range src {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '\n', '\r', ';':
			flush(i)
		case ',':
			if depth == 0 {
				flush(i)
			}
		}
	}
	flush(len(src))
	return out
}

func isBlank(src []rune) bool {
	for _, r := range src {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

type relOp struct {
	text string
	pos  int
	size int
}

// scanRelations finds '=', '==', '<', '<=', '>', '>=' in a clause.
func scanRelations(src []rune) []relOp {
	var ops []relOp
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '=':
			if i+1 < len(src) && src[i+1] == '=' {
				ops = append(ops, relOp{text: "=", pos: i, size: 2})
				i++
				continue
			}
			ops = append(ops, relOp{text: "=", pos: i, size: 1})
		case '<', '>':
			if i+1 < len(src) && src[i+1] == '=' {
				ops = append(ops, relOp{text: string(src[i]) + "=", pos: i, size: 2})
				i++
				continue
			}
			ops = append(ops, relOp{text: string(src[i]), pos: i, size: 1})
		}
	}
	return ops
}

// parseClause returns the equations or inequalities of one clause.
func parseClause(table *SymbolTable, c clause) ([]Given, error) {
	ops := scanRelations(c.src)
	if len(ops) == 0 {
		e, err := parseSegment(table, c.src, c.pos)
		if err != nil {
			return nil, err
		}
		return []Given{{Equation: Eq(e, N(0))}}, nil
	}

	equals := 0
	for _, op := range ops {
		if op.text == "=" {
			equals++
		}
	}
	if equals > 1 {
		return nil, &ParseError{Pos: c.pos + ops[1].pos, Reason: "chained equality"}
	}
	if equals == 1 && len(ops) > 1 {
		return nil, &ParseError{Pos: c.pos + ops[0].pos, Reason: "cannot mix '=' with an inequality"}
	}

	sides := make([]Expr, 0, len(ops)+1)
	start := 0
	for i := 0; i <= len(ops); i++ {
		end := len(c.src)
		if i < len(ops) {
			end = ops[i].pos
		}
		seg := c.src[start:end]
		if isBlank(seg) {
			return nil, &ParseError{Pos: c.pos + end, Reason: "empty operand"}
		}
		e, err := parseSegment(table, seg, c.pos+start)
		if err != nil {
			return nil, err
		}
		sides = append(sides, e)
		if i < len(ops) {
			start = ops[i].pos + ops[i].size
		}
	}

	if equals == 1 {
		return []Given{{Equation: Eq(sides[0], sides[1])}}, nil
	}
	out := make([]Given, len(ops))
	for i, op := range ops {
		out[i] = Given{Inequality: &Inequality{LHS: sides[i], RHS: sides[i+1], Op: Relation(op.text)}}
	}
	return out, nil
}

// ParseInput parses newline-, comma- or semicolon-separated clauses into a
// System. Parse errors from every clause are combined; errors.As still
// recovers a *ParseError. Numeric-only clauses are filtered out.
func ParseInput(text string) (*System, error) {
	src := []rune(normalizeInput(text))
	table := NewSymbolTable()
	sys := &System{Table: table}

	var errs error
	for _, c := range splitClauses(src) {
		if isBlank(c.src) {
			continue
		}
		givens, err := parseClause(table, c)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		for _, g := range givens {
			sys.add(g)
		}
	}
	if errs != nil {
		return nil, errs
	}
	sys.Symbols = systemSymbols(sys)
	return sys, nil
}

func (s *System) add(g Given) {
	var lhs, rhs Expr
	if g.Equation != nil {
		lhs, rhs = g.Equation.LHS, g.Equation.RHS
	} else {
		lhs, rhs = g.Inequality.LHS, g.Inequality.RHS
	}
	if len(FreeSymbols(lhs)) == 0 && len(FreeSymbols(rhs)) == 0 {
		s.Filtered++
		return
	}
	s.Givens = append(s.Givens, g)
	if g.Equation != nil {
		s.Equations = append(s.Equations, g.Equation)
	} else {
		s.Inequalities = append(s.Inequalities, g.Inequality)
	}
}

func systemSymbols(s *System) []string {
	seen := map[string]struct{}{}
	for _, g := range s.Givens {
		var sides []Expr
		if g.Equation != nil {
			sides = []Expr{g.Equation.LHS, g.Equation.RHS}
		} else {
			sides = []Expr{g.Inequality.LHS, g.Inequality.RHS}
		}
		for _, side := range sides {
			for _, name := range FreeSymbols(side) {
				seen[name] = struct{}{}
			}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
