package gosolve

import (
	"math/big"
	"sort"
)

// poly is a dense univariate polynomial with ascending coefficients.
// The zero polynomial is represented as a single zero coefficient.
type poly struct {
	coeffs []*Num
}

// polyFromExpr converts e into a polynomial in name. Coefficients that are
// constant but not rational (sqrt(2), sin(1)) are approximated; any other
// symbol or a non-polynomial term makes ok false.
func polyFromExpr(e Expr, name string) (poly, bool) {
	cm, ok := PolyCoeffs(e, name)
	if !ok {
		return poly{}, false
	}
	deg := 0
	for d := range cm {
		if d > deg {
			deg = d
		}
	}
	coeffs := make([]*Num, deg+1)
	for i := range coeffs {
		coeffs[i] = N(0)
	}
	for d, c := range cm {
		n, ok := c.(*Num)
		if !ok {
			if len(FreeSymbols(c)) > 0 {
				return poly{}, false
			}
			f, err := c.Evalf(nil)
			if err != nil {
				return poly{}, false
			}
			n = NFloat(f)
		}
		coeffs[d] = n
	}
	return poly{coeffs: coeffs}.trim(), true
}

func (p poly) trim() poly {
	n := len(p.coeffs)
	for n > 1 && p.coeffs[n-1].IsZero() {
		n--
	}
	if n == 0 {
		return poly{coeffs: []*Num{N(0)}}
	}
	return poly{coeffs: p.coeffs[:n]}
}

func (p poly) degree() int { return len(p.coeffs) - 1 }
func (p poly) lead() *Num  { return p.coeffs[len(p.coeffs)-1] }

func (p poly) isZero() bool { return p.degree() == 0 && p.coeffs[0].IsZero() }

func (p poly) isExact() bool {
	for _, c := range p.coeffs {
		if c.approx {
			return false
		}
	}
	return true
}

// eval evaluates exactly (or approximately when tainted) by Horner's rule.
func (p poly) eval(x *Num) *Num {
	acc := N(0)
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = numAdd(numMul(acc, x), p.coeffs[i])
	}
	return acc
}

func (p poly) evalComplex(z complex128) complex128 {
	var acc complex128
	for i := len(p.coeffs) - 1; i >= 0; i-- {
		acc = acc*z + complex(p.coeffs[i].Float64(), 0)
	}
	return acc
}

func (p poly) floats() []float64 {
	out := make([]float64, len(p.coeffs))
	for i, c := range p.coeffs {
		out[i] = c.Float64()
	}
	return out
}

func (p poly) deriv() poly {
	if p.degree() == 0 {
		return poly{coeffs: []*Num{N(0)}}
	}
	out := make([]*Num, p.degree())
	for i := 1; i < len(p.coeffs); i++ {
		out[i-1] = numMul(N(int64(i)), p.coeffs[i])
	}
	return poly{coeffs: out}.trim()
}

func (p poly) scale(c *Num) poly {
	out := make([]*Num, len(p.coeffs))
	for i, v := range p.coeffs {
		out[i] = numMul(v, c)
	}
	return poly{coeffs: out}.trim()
}

func (p poly) monic() poly {
	if p.isZero() {
		return p
	}
	return p.scale(numRecip(p.lead()))
}

// divLinear divides by (x - r) with synthetic division.
func (p poly) divLinear(r *Num) (poly, *Num) {
	n := p.degree()
	if n == 0 {
		return poly{coeffs: []*Num{N(0)}}, p.coeffs[0]
	}
	q := make([]*Num, n)
	acc := p.coeffs[n]
	for i := n - 1; i >= 0; i-- {
		q[i] = acc
		acc = numAdd(numMul(acc, r), p.coeffs[i])
	}
	return poly{coeffs: q}.trim(), acc
}

// divmod is polynomial long division; d must be nonzero.
func (p poly) divmod(d poly) (poly, poly) {
	if p.degree() < d.degree() {
		return poly{coeffs: []*Num{N(0)}}, p
	}
	rem := append([]*Num(nil), p.coeffs...)
	q := make([]*Num, p.degree()-d.degree()+1)
	for i := range q {
		q[i] = N(0)
	}
	lead := d.lead()
	for i := len(rem) - 1; i >= d.degree(); i-- {
		c := numDiv(rem[i], lead)
		shift := i - d.degree()
		q[shift] = c
		for j, dc := range d.coeffs {
			rem[shift+j] = numSub(rem[shift+j], numMul(c, dc))
		}
	}
	r := poly{coeffs: rem[:d.degree()]}
	if d.degree() == 0 {
		r = poly{coeffs: []*Num{N(0)}}
	}
	return poly{coeffs: q}.trim(), r.trim()
}

// polyGCD is the monic greatest common divisor of two exact polynomials.
func polyGCD(a, b poly) poly {
	for !b.isZero() {
		_, r := a.divmod(b)
		a, b = b, r
	}
	return a.monic()
}

// squareFree removes repeated factors: p / gcd(p, p').
func (p poly) squareFree() poly {
	if p.degree() < 2 || !p.isExact() {
		return p
	}
	g := polyGCD(p, p.deriv())
	if g.degree() == 0 {
		return p
	}
	q, _ := p.divmod(g)
	return q
}

// toExpr rebuilds the polynomial as a canonical expression in x.
func (p poly) toExpr(x Expr) Expr {
	terms := make([]Expr, 0, len(p.coeffs))
	for i, c := range p.coeffs {
		if c.IsZero() {
			continue
		}
		terms = append(terms, MulOf(c, PowOf(x, N(int64(i)))))
	}
	return AddOf(terms...)
}

// integerize writes exact p as content * prim where prim has integer
// coefficients with gcd 1 and a positive leading coefficient.
func (p poly) integerize() (*Num, []*big.Int) {
	lcm := big.NewInt(1)
	for _, c := range p.coeffs {
		d := c.val.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	ints := make([]*big.Int, len(p.coeffs))
	content := new(big.Int)
	for i, c := range p.coeffs {
		v := new(big.Int).Mul(c.val.Num(), new(big.Int).Quo(lcm, c.val.Denom()))
		ints[i] = v
		content.GCD(nil, nil, content, new(big.Int).Abs(v))
	}
	if content.Sign() == 0 {
		content.SetInt64(1)
	}
	if ints[len(ints)-1].Sign() < 0 {
		content.Neg(content)
	}
	for i := range ints {
		ints[i].Quo(ints[i], content)
	}
	return &Num{val: new(big.Rat).SetFrac(content, lcm)}, ints
}

func polyFromInts(ints []*big.Int) poly {
	coeffs := make([]*Num, len(ints))
	for i, v := range ints {
		coeffs[i] = &Num{val: new(big.Rat).SetInt(v)}
	}
	return poly{coeffs: coeffs}.trim()
}

// maxDivisorSearch bounds the magnitude of coefficients whose divisors
// are enumerated by the rational-root search.
const maxDivisorSearch = int64(1) << 40

func divisors(n int64) []int64 {
	if n < 0 {
		n = -n
	}
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d*d != n {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// rationalCandidates lists ±p/q for p | constant, q | leading, ascending.
func rationalCandidates(ints []*big.Int) []*Num {
	a0, an := ints[0], ints[len(ints)-1]
	if !a0.IsInt64() || !an.IsInt64() {
		return nil
	}
	c, l := a0.Int64(), an.Int64()
	if c > maxDivisorSearch || c < -maxDivisorSearch || l > maxDivisorSearch || l < -maxDivisorSearch {
		return nil
	}
	seen := map[string]bool{}
	var out []*Num
	for _, p := range divisors(c) {
		for _, q := range divisors(l) {
			for _, s := range []int64{1, -1} {
				r := F(s*p, q)
				key := r.val.RatString()
				if !seen[key] {
					seen[key] = true
					out = append(out, r)
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return numCmp(out[i], out[j]) < 0 })
	return out
}

// rationalRoots deflates every rational root out of exact p. Roots are
// returned ascending with repetition for multiplicity; rest is the
// remaining factor with no rational roots.
func (p poly) rationalRoots() (roots []*Num, rest poly) {
	rest = p
	for rest.degree() > 0 && rest.coeffs[0].IsZero() {
		rest = poly{coeffs: rest.coeffs[1:]}
		roots = append(roots, N(0))
	}
	if rest.degree() == 0 {
		return roots, rest
	}
	_, ints := rest.integerize()
	for _, r := range rationalCandidates(ints) {
		for rest.degree() > 0 {
			if !rest.eval(r).IsZero() {
				break
			}
			rest, _ = rest.divLinear(r)
			roots = append(roots, r)
		}
		if rest.degree() == 0 {
			break
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return numCmp(roots[i], roots[j]) < 0 })
	return roots, rest
}
