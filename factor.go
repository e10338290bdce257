package gosolve

import "math/big"

// ============================================================
// Symbolic Factoring
// ============================================================

// FactorResult holds the result of a factoring attempt. Factors multiply back
// to the input; the rational content, when not 1, comes first.
type FactorResult struct {
	Factors []Expr
	Success bool
}

// Factor factors a univariate polynomial over the rationals. Multivariate,
// non-polynomial or approximate input, degree below 2 or above 4, and
// polynomials with no rational split are returned unchanged.
func Factor(e Expr) Expr {
	syms := FreeSymbols(e)
	if len(syms) != 1 {
		return e
	}
	r := FactorPoly(e, syms[0])
	if !r.Success {
		return e
	}
	return MulOf(r.Factors...)
}

// FactorPoly factors expr as a polynomial in name.
//
// Degree 2 splits only when the discriminant is a perfect square, which is
// exactly when both roots are rational. Degrees 3 and 4 deflate every rational
// root found by the rational-root theorem; a remaining quartic tries the
// biquadratic substitution y = x^2 and then an integer quadratic pair.
func FactorPoly(expr Expr, name string) FactorResult {
	unchanged := FactorResult{Factors: []Expr{expr}}
	p, ok := polyFromExpr(expr, name)
	if !ok || !p.isExact() || p.degree() < 2 || p.degree() > 4 {
		return unchanged
	}

	var factors []poly
	roots, rest := p.rationalRoots()
	for _, r := range roots {
		factors = append(factors, linearFactor(r))
	}
	switch rest.degree() {
	case 0:
	case 4:
		factors = append(factors, splitQuartic(rest)...)
	default:
		factors = append(factors, primitive(rest))
	}
	if len(factors) < 2 {
		return unchanged
	}

	lead := N(1)
	for _, f := range factors {
		lead = numMul(lead, f.lead())
	}
	content := numDiv(p.lead(), lead)

	x := S(name)
	out := make([]Expr, 0, len(factors)+1)
	if !content.IsOne() {
		out = append(out, content)
	}
	for _, f := range factors {
		out = append(out, f.toExpr(x))
	}
	return FactorResult{Factors: out, Success: true}
}

// linearFactor returns q*x - p for the root r = p/q.
func linearFactor(r *Num) poly {
	return poly{coeffs: []*Num{
		{val: new(big.Rat).SetInt(new(big.Int).Neg(r.val.Num()))},
		{val: new(big.Rat).SetInt(r.val.Denom())},
	}}
}

func primitive(p poly) poly {
	_, ints := p.integerize()
	return polyFromInts(ints)
}

// splitQuartic factors a quartic with no rational roots into two quadratics
// when possible.
func splitQuartic(p poly) []poly {
	if p.coeffs[1].IsZero() && p.coeffs[3].IsZero() {
		y := poly{coeffs: []*Num{p.coeffs[0], p.coeffs[2], p.coeffs[4]}}
		if roots, rest := y.rationalRoots(); len(roots) == 2 && rest.degree() == 0 {
			out := make([]poly, 2)
			for i, r := range roots {
				l := linearFactor(r)
				out[i] = poly{coeffs: []*Num{l.coeffs[0], N(0), l.coeffs[1]}}
			}
			return out
		}
	}
	_, ints := p.integerize()
	if f, g, ok := quadraticPair(ints); ok {
		return []poly{f, g}
	}
	return []poly{primitive(p)}
}

// quadraticPairBound caps the coefficient magnitudes searched by quadraticPair
// so every intermediate product fits in an int64.
const quadraticPairBound = 1 << 12

// quadraticPair searches (a1 x^2 + b1 x + c1)(a2 x^2 + b2 x + c2) over the
// integers for a primitive quartic A4 x^4 + ... + A0 with A0 != 0.
func quadraticPair(ints []*big.Int) (poly, poly, bool) {
	var A [5]int64
	for i, v := range ints {
		if !v.IsInt64() || v.Int64() > quadraticPairBound || v.Int64() < -quadraticPairBound {
			return poly{}, poly{}, false
		}
		A[i] = v.Int64()
	}
	if A[0] == 0 {
		return poly{}, poly{}, false
	}
	for _, a1 := range divisors(A[4]) {
		a2 := A[4] / a1
		for _, d := range divisors(A[0]) {
			for _, c1 := range [2]int64{d, -d} {
				c2 := A[0] / c1
				// From the x^3 and x^2 coefficients:
				// a2*b1^2 - A3*b1 + a1*(A2 - a1*c2 - a2*c1) = 0.
				k := a1 * (A[2] - a1*c2 - a2*c1)
				disc := A[3]*A[3] - 4*a2*k
				s, ok := isqrt(disc)
				if !ok {
					continue
				}
				for _, num := range [2]int64{A[3] + s, A[3] - s} {
					if num%(2*a2) != 0 {
						continue
					}
					b1 := num / (2 * a2)
					if (A[3]-a2*b1)%a1 != 0 {
						continue
					}
					b2 := (A[3] - a2*b1) / a1
					if b1*c2+b2*c1 != A[1] {
						continue
					}
					f := poly{coeffs: []*Num{N(c1), N(b1), N(a1)}}
					g := poly{coeffs: []*Num{N(c2), N(b2), N(a2)}}
					return f, g, true
				}
			}
		}
	}
	return poly{}, poly{}, false
}

func isqrt(n int64) (int64, bool) {
	if n < 0 {
		return 0, false
	}
	r := new(big.Int).Sqrt(big.NewInt(n)).Int64()
	return r, r*r == n
}
