package gosolve

import "sort"

// maxExpandPower bounds the integer powers of sums that Expand multiplies out.
const maxExpandPower = 16

// Expand distributes products over sums and non-negative integer powers
// of sums. It never introduces non-integer exponents and always terminates.
func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return AddOf(terms...)
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && !n.approx {
			if k, ok := n.Int(); ok && k >= 0 && k <= maxExpandPower {
				if _, isAdd := base.(*Add); isAdd {
					if k == 0 {
						return N(1)
					}
					result := base
					for i := 1; i < k; i++ {
						result = mulSums(result, base)
					}
					return result
				}
			}
		}
		return PowOf(base, v.exp)
	case *Func:
		return funcOf(v.name, expandExpr(v.arg)).Simplify()
	}
	return e
}

// mulSums multiplies two expanded expressions term by term. Rebuilding the
// product with MulOf would fold equal sums back into a power.
func mulSums(a, b Expr) Expr {
	as, bs := termsOf(a), termsOf(b)
	out := make([]Expr, 0, len(as)*len(bs))
	for _, ta := range as {
		for _, tb := range bs {
			out = append(out, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(out...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Free Symbols
// ============================================================

// FreeSymbols returns the distinct symbol names in e, sorted.
func FreeSymbols(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

func hasSymbol(e Expr, name string) bool {
	switch v := e.(type) {
	case *Sym:
		return v.name == name
	case *Add:
		for _, t := range v.terms {
			if hasSymbol(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if hasSymbol(f, name) {
				return true
			}
		}
	case *Pow:
		return hasSymbol(v.base, name) || hasSymbol(v.exp, name)
	case *Func:
		return hasSymbol(v.arg, name)
	}
	return false
}

// ============================================================
// Polynomial utilities
// ============================================================

// Degree returns the degree of the expanded form of expr in name, or -1
// when expr is not a polynomial in name.
func Degree(expr Expr, name string) int {
	coeffs, ok := PolyCoeffs(expr, name)
	if !ok {
		return -1
	}
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	return deg
}

// PolyCoeffs expands expr and returns its coefficients by power of name.
// Coefficients may contain other symbols. ok is false when some term has a
// non-integer, negative or symbolic power of name, or name inside a function.
func PolyCoeffs(expr Expr, name string) (map[int]Expr, bool) {
	out := map[int]Expr{}
	e := Expand(expr)
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		deg, coeff, ok := monomial(t, name)
		if !ok {
			return nil, false
		}
		if existing, seen := out[deg]; seen {
			out[deg] = AddOf(existing, coeff)
		} else {
			out[deg] = coeff
		}
	}
	for d, c := range out {
		if n, ok := c.(*Num); ok && n.IsZero() && d > 0 {
			delete(out, d)
		}
	}
	return out, true
}

// monomial splits a canonical product into name^deg * coeff.
func monomial(t Expr, name string) (int, Expr, bool) {
	factors := []Expr{t}
	if m, ok := t.(*Mul); ok {
		factors = m.factors
	}
	deg := 0
	var rest []Expr
	for _, f := range factors {
		switch v := f.(type) {
		case *Sym:
			if v.name == name {
				deg++
				continue
			}
		case *Pow:
			if s, ok := v.base.(*Sym); ok && s.name == name {
				n, ok := v.exp.(*Num)
				if !ok || n.approx {
					return 0, nil, false
				}
				k, ok := n.Int()
				if !ok || k < 0 {
					return 0, nil, false
				}
				deg += k
				continue
			}
		}
		if hasSymbol(f, name) {
			return 0, nil, false
		}
		rest = append(rest, f)
	}
	if len(rest) == 0 {
		return deg, N(1), true
	}
	return deg, MulOf(rest...), true
}
