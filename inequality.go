package gosolve

import (
	"fmt"
	"math"
	"strings"
)

// Bound is an interval endpoint. Inf is -1 or +1 for an infinite endpoint,
// in which case Value is unset and Closed is false.
type Bound struct {
	Value  Value
	Inf    int
	Closed bool
}

func (b Bound) String() string {
	switch b.Inf {
	case -1:
		return "-oo"
	case 1:
		return "oo"
	}
	return b.Value.String()
}

func (b Bound) float() float64 {
	switch b.Inf {
	case -1:
		return math.Inf(-1)
	case 1:
		return math.Inf(1)
	}
	return b.Value.Real()
}

// Interval is a connected subset of the real line.
type Interval struct {
	Lo, Hi Bound
}

// IsPoint reports whether the interval is a single closed point.
func (iv Interval) IsPoint() bool {
	return iv.Lo.Inf == 0 && iv.Hi.Inf == 0 && boundsEqual(iv.Lo, iv.Hi)
}

// Contains reports whether x lies in the interval.
func (iv Interval) Contains(x float64) bool {
	lo, hi := iv.Lo.float(), iv.Hi.float()
	if x < lo || x > hi {
		return false
	}
	if x == lo && !iv.Lo.Closed && iv.Lo.Inf == 0 {
		return false
	}
	if x == hi && !iv.Hi.Closed && iv.Hi.Inf == 0 {
		return false
	}
	return true
}

func (iv Interval) String() string {
	if iv.IsPoint() {
		return "{" + iv.Lo.String() + "}"
	}
	open, closeB := "(", ")"
	if iv.Lo.Closed {
		open = "["
	}
	if iv.Hi.Closed {
		closeB = "]"
	}
	return open + iv.Lo.String() + ", " + iv.Hi.String() + closeB
}

// IntervalSet is a union of disjoint intervals in ascending order.
type IntervalSet []Interval

func (s IntervalSet) String() string {
	if len(s) == 0 {
		return "EmptySet"
	}
	parts := make([]string, len(s))
	for i, iv := range s {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " U ")
}

// Contains reports whether x lies in any interval of the set.
func (s IntervalSet) Contains(x float64) bool {
	for _, iv := range s {
		if iv.Contains(x) {
			return true
		}
	}
	return false
}

func boundsEqual(a, b Bound) bool {
	if a.Inf != 0 || b.Inf != 0 {
		return a.Inf == b.Inf
	}
	if a.Value.IsExact() && b.Value.IsExact() && a.Value.Re.Equal(b.Value.Re) {
		return true
	}
	return math.Abs(a.Value.Real()-b.Value.Real()) <= 1e-12*math.Max(1, math.Abs(a.Value.Real()))
}

// ============================================================
// Sign analysis
// ============================================================

// maxInequalityDegree is the largest degree solved in closed form.
const maxInequalityDegree = 2

// solveInequality derives the solution set of residual op 0 for a
// polynomial residual of degree <= 2 in name.
func solveInequality(p poly, op Relation) IntervalSet {
	if p.degree() == 0 {
		if op.Holds(p.coeffs[0].Float64()) {
			return IntervalSet{{Lo: Bound{Inf: -1}, Hi: Bound{Inf: 1}}}
		}
		return IntervalSet{}
	}

	var roots []Value
	if p.degree() == 1 {
		roots = linearRoot(p)
	} else {
		all, _ := quadraticRoots(p)
		for _, r := range all {
			if r.IsReal() {
				roots = append(roots, r)
			}
		}
		sortValues(roots)
	}

	type piece struct {
		lo, hi Bound
		in     bool
	}
	signAt := func(x float64) float64 { return real(p.evalComplex(complex(x, 0))) }
	var pieces []piece
	for i := 0; i <= len(roots); i++ {
		lo, hi := Bound{Inf: -1}, Bound{Inf: 1}
		if i > 0 {
			lo = Bound{Value: roots[i-1]}
		}
		if i < len(roots) {
			hi = Bound{Value: roots[i]}
		}
		pieces = append(pieces, piece{lo: lo, hi: hi, in: op.Holds(signAt(testPoint(lo, hi)))})
		if i < len(roots) {
			pt := Bound{Value: roots[i], Closed: true}
			pieces = append(pieces, piece{lo: pt, hi: pt, in: !op.Strict()})
		}
	}

	var out IntervalSet
	var cur *Interval
	for _, pc := range pieces {
		if !pc.in {
			if cur != nil {
				out = append(out, *cur)
				cur = nil
			}
			continue
		}
		if cur == nil {
			cur = &Interval{Lo: pc.lo, Hi: pc.hi}
			continue
		}
		cur.Hi = pc.hi
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

func testPoint(lo, hi Bound) float64 {
	switch {
	case lo.Inf == -1 && hi.Inf == 1:
		return 0
	case lo.Inf == -1:
		return hi.float() - 1
	case hi.Inf == 1:
		return lo.float() + 1
	}
	return (lo.float() + hi.float()) / 2
}

// Intersect returns the points common to both sets.
func (s IntervalSet) Intersect(o IntervalSet) IntervalSet {
	var out IntervalSet
	for _, a := range s {
		for _, b := range o {
			if iv, ok := intersectInterval(a, b); ok {
				out = append(out, iv)
			}
		}
	}
	return out
}

func intersectInterval(a, b Interval) (Interval, bool) {
	lo := a.Lo
	switch la, lb := a.Lo.float(), b.Lo.float(); {
	case boundsEqual(a.Lo, b.Lo):
		lo.Closed = a.Lo.Closed && b.Lo.Closed
	case lb > la:
		lo = b.Lo
	}
	hi := a.Hi
	switch ha, hb := a.Hi.float(), b.Hi.float(); {
	case boundsEqual(a.Hi, b.Hi):
		hi.Closed = a.Hi.Closed && b.Hi.Closed
	case hb < ha:
		hi = b.Hi
	}
	l, h := lo.float(), hi.float()
	switch {
	case l < h && !boundsEqual(lo, hi):
		return Interval{Lo: lo, Hi: hi}, true
	case boundsEqual(lo, hi) && lo.Inf == 0 && lo.Closed && hi.Closed:
		return Interval{Lo: lo, Hi: hi}, true
	}
	return Interval{}, false
}

// solveInequalities solves and intersects single-variable inequalities.
func solveInequalities(qs []*Inequality) (string, IntervalSet, error) {
	seen := map[string]struct{}{}
	for _, q := range qs {
		for _, name := range FreeSymbols(q.Residual()) {
			seen[name] = struct{}{}
		}
		for _, side := range []Expr{q.LHS, q.RHS} {
			for _, name := range FreeSymbols(side) {
				seen[name] = struct{}{}
			}
		}
	}
	if len(seen) != 1 {
		return "", nil, solveErrorf("inequality", fmt.Errorf("%w: %d variables", ErrUnsupportedInequality, len(seen)))
	}
	var name string
	for n := range seen {
		name = n
	}

	result := IntervalSet{{Lo: Bound{Inf: -1}, Hi: Bound{Inf: 1}}}
	for _, q := range qs {
		p, ok := polyFromExpr(q.Residual(), name)
		if !ok {
			return "", nil, solveErrorf("inequality", fmt.Errorf("%w: %s is not polynomial", ErrUnsupportedInequality, q))
		}
		if p.degree() > maxInequalityDegree {
			return "", nil, solveErrorf("inequality", fmt.Errorf("%w: degree %d", ErrUnsupportedInequality, p.degree()))
		}
		result = result.Intersect(solveInequality(p, q.Op))
	}
	return name, result, nil
}

// holdsAt reports whether q is satisfied by the assignments in b. Exact
// values are checked exactly when the residual folds to a number.
func holdsAt(q *Inequality, b Branch) bool {
	r := q.Residual()
	env := map[string]float64{}
	exact := r
	for _, bind := range b {
		if !bind.Value.IsReal() {
			return false
		}
		env[bind.Symbol] = bind.Value.Real()
		if exact != nil {
			if re, ok := bind.Value.Expr(); ok {
				exact = exact.Sub(bind.Symbol, re)
			} else {
				exact = nil
			}
		}
	}
	if exact != nil {
		if n, ok := exact.Eval(); ok {
			return q.Op.Holds(float64(n.Sign()))
		}
	}
	v, err := r.Evalf(env)
	if err != nil {
		return false
	}
	if math.Abs(v) < 1e-9 {
		v = 0
	}
	return q.Op.Holds(v)
}
