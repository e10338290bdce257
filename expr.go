package gosolve

import (
	"math"
	"math/big"
	"sort"

	"fortio.org/safecast"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is an immutable expression tree node. Constructors (AddOf, MulOf,
// PowOf, FuncOf) return canonical trees; nodes are never mutated after
// construction, so subtrees may be shared freely.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(name string, value Expr) Expr
	Eval() (*Num, bool)
	Evalf(env map[string]float64) (float64, error)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// maxExactPower bounds integer exponents folded exactly.
const maxExactPower = 256

// ============================================================
// Num: exact rational or approximate number
// ============================================================

// Num is a number. Exact values are big.Rat; an approximate value comes
// from a decimal literal and taints every arithmetic result it touches.
type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("gosolve: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat returns an approximate number. Non-finite values are clamped to
// ±MaxFloat64 (NaN becomes 0); callers screen for them first.
func NFloat(f float64) *Num {
	switch {
	case math.IsNaN(f):
		f = 0
	case math.IsInf(f, 1):
		f = math.MaxFloat64
	case math.IsInf(f, -1):
		f = -math.MaxFloat64
	}
	return &Num{val: new(big.Rat).SetFloat64(f), approx: true}
}

// NRat returns an exact number holding a copy of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Evalf(map[string]float64) (float64, error) {
	return n.Float64(), nil
}
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.approx == o.approx && n.val.Cmp(o.val) == 0
}
func (n *Num) exprType() string { return "num" }
func (n *Num) Float64() float64 { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool     { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool      { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool   { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool  { return n.val.IsInt() }
func (n *Num) IsApprox() bool   { return n.approx }
func (n *Num) Rat() *big.Rat    { return new(big.Rat).Set(n.val) }
func (n *Num) Sign() int        { return n.val.Sign() }
func (n *Num) IsPositive() bool { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool { return n.val.Sign() < 0 }

// Int returns the value as an int when it is an integer that fits.
func (n *Num) Int() (int, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	v, err := safecast.Conv[int](n.val.Num().Int64())
	if err != nil {
		return 0, false
	}
	return v, true
}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": n.jsonValue()}
	if n.approx {
		m["approx"] = true
	}
	return m
}

func (n *Num) jsonValue() string {
	if n.approx {
		return formatFloat(n.Float64())
	}
	return n.val.RatString()
}

func numAdd(a, b *Num) *Num {
	if a.approx || b.approx {
		return NFloat(a.Float64() + b.Float64())
	}
	return &Num{val: new(big.Rat).Add(a.val, b.val)}
}
func numSub(a, b *Num) *Num { return numAdd(a, numNeg(b)) }
func numMul(a, b *Num) *Num {
	if a.approx || b.approx {
		return NFloat(a.Float64() * b.Float64())
	}
	return &Num{val: new(big.Rat).Mul(a.val, b.val)}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("gosolve: division by zero")
	}
	if a.approx {
		return NFloat(1 / a.Float64())
	}
	return &Num{val: new(big.Rat).Inv(a.val)}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	if a.IsNegative() {
		return numNeg(a)
	}
	return a
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numPowInt raises b to the integer power k. b must be nonzero when k < 0.
func numPowInt(b *Num, k int) *Num {
	if b.approx {
		return NFloat(math.Pow(b.Float64(), float64(k)))
	}
	neg := k < 0
	if neg {
		k = -k
	}
	e := big.NewInt(int64(k))
	num := new(big.Int).Exp(b.val.Num(), e, nil)
	den := new(big.Int).Exp(b.val.Denom(), e, nil)
	r := new(big.Rat).SetFrac(num, den)
	if neg {
		r.Inv(r)
	}
	return &Num{val: r}
}

// numPow folds b^e for numeric operands. It reports false when the result
// is not representable without losing exactness (irrational or complex),
// in which case the caller keeps the power unevaluated.
func numPow(b, e *Num) (Expr, bool) {
	if b.IsZero() && e.Sign() <= 0 {
		return nil, false
	}
	if b.approx || e.approx {
		f := math.Pow(b.Float64(), e.Float64())
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return NFloat(f), true
	}
	if e.IsInteger() {
		k, ok := e.Int()
		if !ok || k > maxExactPower || k < -maxExactPower {
			return nil, false
		}
		return numPowInt(b, k), true
	}
	return rationalPow(b, e)
}

// rationalPow handles b^(p/q) for exact b and q > 1.
func rationalPow(b, e *Num) (Expr, bool) {
	if !e.val.Num().IsInt64() || !e.val.Denom().IsInt64() {
		return nil, false
	}
	p, q := e.val.Num().Int64(), e.val.Denom().Int64()
	if q > 64 || p > maxExactPower || p < -maxExactPower {
		return nil, false
	}
	qi, err := safecast.Conv[int](q)
	if err != nil {
		return nil, false
	}
	pi, err := safecast.Conv[int](p)
	if err != nil {
		return nil, false
	}
	abs := numAbs(b)
	if b.IsNegative() && q%2 == 0 {
		return nil, false
	}
	num, okN := intRoot(abs.val.Num(), qi)
	den, okD := intRoot(abs.val.Denom(), qi)
	if okN && okD {
		r := &Num{val: new(big.Rat).SetFrac(num, den)}
		if b.IsNegative() {
			r = numNeg(r)
		}
		return numPowInt(r, pi), true
	}
	if q != 2 || (p != 1 && p != -1) {
		return nil, false
	}
	// sqrt(n/d) = s*sqrt(t)/d where n*d = s^2 * t.
	m := new(big.Int).Mul(abs.val.Num(), abs.val.Denom())
	if !m.IsInt64() {
		return nil, false
	}
	s, t := squareParts(m.Int64())
	if s == 1 && abs.val.Denom().Cmp(big.NewInt(1)) == 0 {
		return nil, false
	}
	coeff := &Num{val: new(big.Rat).SetFrac(big.NewInt(s), abs.val.Denom())}
	if p < 0 {
		// d/(s*sqrt(t)) = d*sqrt(t)/(s*t)
		coeff = numDiv(numRecip(coeff), N(t))
	}
	return MulOf(coeff, &Pow{base: N(t), exp: F(1, 2)}), true
}

// intRoot returns the exact k-th root of a non-negative n if it exists.
func intRoot(n *big.Int, k int) (*big.Int, bool) {
	if n.Sign() == 0 {
		return new(big.Int), true
	}
	if k == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	if math.IsInf(f, 0) {
		return nil, false
	}
	est := int64(math.Round(math.Pow(f, 1/float64(k))))
	for c := est - 1; c <= est+1; c++ {
		if c < 0 {
			continue
		}
		cb := big.NewInt(c)
		if new(big.Int).Exp(cb, big.NewInt(int64(k)), nil).Cmp(n) == 0 {
			return cb, true
		}
	}
	return nil, false
}

// squareParts splits m > 0 into s, t with m = s*s*t and t square-free
// with respect to primes below 10^5.
func squareParts(m int64) (s, t int64) {
	s, t = 1, m
	for p := int64(2); p < 100000 && p*p <= t; p++ {
		for t%(p*p) == 0 {
			t /= p * p
			s *= p
		}
	}
	return s, t
}

func gcdInt(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Evalf(env map[string]float64) (float64, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, domainErrorf("unbound symbol %s", s.name)
	}
	return v, nil
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(name string, value Expr) Expr {
	if s.name == name {
		return value
	}
	return s
}

// ============================================================
// Add: sum of terms
// ============================================================

// Add is a flattened sum. Terms are ordered by descending degree, then by
// canonical text; the numeric constant, if any, is last.
type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	type like struct {
		rest  Expr
		coeff *Num
	}
	numAccum := N(0)
	groups := map[string]*like{}
	order := []string{}
	for _, t := range flat {
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		coeff, rest := splitCoeff(t)
		key := rest.String()
		g, seen := groups[key]
		if !seen {
			g = &like{rest: rest, coeff: N(0)}
			groups[key] = g
			order = append(order, key)
		}
		g.coeff = numAdd(g.coeff, coeff)
	}

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		g := groups[key]
		if g.coeff.IsZero() {
			continue
		}
		result = append(result, scaleTerm(g.coeff, g.rest))
	}
	sortTerms(result)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	switch len(result) {
	case 0:
		return numAccum
	case 1:
		return result[0]
	}
	return &Add{terms: result}
}

// splitCoeff separates the numeric coefficient of a canonical term.
func splitCoeff(t Expr) (*Num, Expr) {
	if m, ok := t.(*Mul); ok {
		if c, ok := m.factors[0].(*Num); ok {
			if len(m.factors) == 2 {
				return c, m.factors[1]
			}
			return c, &Mul{factors: m.factors[1:]}
		}
	}
	return N(1), t
}

// scaleTerm rebuilds coeff*rest for a canonical, coefficient-free rest.
func scaleTerm(coeff *Num, rest Expr) Expr {
	if coeff.IsOne() && !coeff.approx {
		return rest
	}
	if m, ok := rest.(*Mul); ok {
		return &Mul{factors: append([]Expr{coeff}, m.factors...)}
	}
	return &Mul{factors: []Expr{coeff, rest}}
}

func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg int
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := splitCoeff(t)
		ks[i] = keyed{e: t, deg: termDegree(rest), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

// termDegree is the total integer degree of a monomial in all symbols.
func termDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				if k, ok := n.Int(); ok {
					return k
				}
			}
		}
	case *Mul:
		d := 0
		for _, f := range v.factors {
			d += termDegree(f)
		}
		return d
	}
	return 0
}

func (a *Add) String() string { return addString(a) }

func (a *Add) Sub(name string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(name, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Evalf(env map[string]float64) (float64, error) {
	acc := 0.0
	for _, t := range a.terms {
		v, err := t.Evalf(env)
		if err != nil {
			return 0, err
		}
		acc += v
	}
	return acc, nil
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

// Mul is a flattened product: numeric coefficient first (omitted when 1),
// then factors with distinct bases ordered by canonical text.
type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}

	type power struct {
		first Expr
		base  Expr
		exps  []Expr
	}
	coeff := N(1)
	groups := map[string]*power{}
	order := []string{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := splitPow(f)
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &power{first: f, base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	if coeff.IsZero() {
		return N(0)
	}

	others := make([]Expr, 0, len(order))
	regroup := false
	for _, key := range order {
		g := groups[key]
		p := g.first
		if len(g.exps) > 1 {
			p = PowOf(g.base, AddOf(g.exps...))
		}
		switch v := p.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Mul:
			regroup = true
			others = append(others, v.factors...)
		default:
			others = append(others, p)
		}
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, others...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() && !coeff.approx {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func splitPow(f Expr) (base, exp Expr) {
	if p, ok := f.(*Pow); ok {
		return p.base, p.exp
	}
	return f, N(1)
}

func (m *Mul) String() string {
	body, neg := mulString(m.factors)
	if neg {
		return "-" + body
	}
	return body
}

func (m *Mul) Sub(name string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(name, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Evalf(env map[string]float64) (float64, error) {
	acc := 1.0
	for _, f := range m.factors {
		v, err := f.Evalf(env)
		if err != nil {
			return 0, err
		}
		acc *= v
	}
	return acc, nil
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base^exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

// SqrtOf is the principal square root, kept as a power with exponent 1/2.
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() && !en.approx {
		return base
	}

	if bn, ok := base.(*Num); ok {
		// 0^0 and 0^negative stay unevaluated; Evalf reports them.
		if bn.IsZero() {
			if expIsNum && en.IsPositive() {
				return bn
			}
			return &Pow{base: base, exp: exp}
		}
		if bn.IsOne() && !bn.approx {
			return N(1)
		}
		if expIsNum {
			if v, ok := numPow(bn, en); ok {
				return v
			}
		}
	}

	if expIsNum && en.IsInteger() {
		switch b := base.(type) {
		case *Pow:
			return PowOf(b.base, MulOf(b.exp, en))
		case *Mul:
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, en)
			}
			return MulOf(fs...)
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string { return powString(p) }

func (p *Pow) Sub(name string, value Expr) Expr {
	return PowOf(p.base.Sub(name, value), p.exp.Sub(name, value))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	v, ok := numPow(b, e)
	if !ok {
		return nil, false
	}
	n, ok := v.(*Num)
	return n, ok
}

func (p *Pow) Evalf(env map[string]float64) (float64, error) {
	b, err := p.base.Evalf(env)
	if err != nil {
		return 0, err
	}
	e, err := p.exp.Evalf(env)
	if err != nil {
		return 0, err
	}
	if b == 0 && e < 0 {
		return 0, domainErrorf("division by zero")
	}
	if b < 0 && e != math.Trunc(e) {
		// Odd-denominator rational exponents have a real value.
		if en, ok := p.exp.(*Num); ok && !en.approx && en.val.Denom().Bit(0) == 1 {
			v := math.Pow(-b, e)
			if en.val.Num().Bit(0) == 1 {
				v = -v
			}
			return v, nil
		}
		return 0, domainErrorf("even root of negative number")
	}
	v := math.Pow(b, e)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domainErrorf("power overflow")
	}
	return v, nil
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// functions is the reserved function set. sqrt is handled by the parser
// as a power and never appears as a Func node.
var functions = map[string]func(float64) (float64, error){
	"exp": func(v float64) (float64, error) { return checkFinite(math.Exp(v)) },
	"log": func(v float64) (float64, error) {
		if v <= 0 {
			return 0, domainErrorf("log of non-positive number")
		}
		return math.Log(v), nil
	},
	"sin": func(v float64) (float64, error) { return math.Sin(v), nil },
	"cos": func(v float64) (float64, error) { return math.Cos(v), nil },
	"tan": func(v float64) (float64, error) { return checkFinite(math.Tan(v)) },
	"abs": func(v float64) (float64, error) { return math.Abs(v), nil },
}

// funcAliases maps accepted spellings to canonical function names.
var funcAliases = map[string]string{"ln": "log"}

func checkFinite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domainErrorf("result is not finite")
	}
	return v, nil
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

// FuncOf applies a reserved function by name.
func FuncOf(name string, arg Expr) Expr {
	if alias, ok := funcAliases[name]; ok {
		name = alias
	}
	if name == "sqrt" {
		return SqrtOf(arg)
	}
	return funcOf(name, arg).Simplify()
}

// IsFunction reports whether name is a reserved function.
func IsFunction(name string) bool {
	if name == "sqrt" {
		return true
	}
	if _, ok := funcAliases[name]; ok {
		return true
	}
	_, ok := functions[name]
	return ok
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok {
		switch {
		case f.name == "abs":
			return numAbs(n)
		case n.IsZero() && (f.name == "sin" || f.name == "tan"):
			return n
		case n.IsZero() && (f.name == "cos" || f.name == "exp"):
			return N(1)
		case n.IsOne() && f.name == "log":
			return N(0)
		case n.approx:
			if fn, ok := functions[f.name]; ok {
				if v, err := fn(n.Float64()); err == nil {
					return NFloat(v)
				}
			}
		}
	}
	switch f.name {
	case "log":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "abs":
		if m, ok := arg.(*Mul); ok {
			if c, ok := m.factors[0].(*Num); ok && c.IsNegative() {
				return FuncOf("abs", MulOf(append([]Expr{numNeg(c)}, m.factors[1:]...)...))
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Sub(name string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(name, value)).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	v, ok := funcOf(f.name, n).Simplify().(*Num)
	return v, ok
}

func (f *Func) Evalf(env map[string]float64) (float64, error) {
	v, err := f.arg.Evalf(env)
	if err != nil {
		return 0, err
	}
	fn, ok := functions[f.name]
	if !ok {
		return 0, domainErrorf("unknown function %s", f.name)
	}
	return fn(v)
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && !n.approx && n.val.Cmp(big.NewRat(v, 1)) == 0
}

// ============================================================
// Equation and Inequality
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}

// Residual returns LHS - RHS.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// Relation is an inequality operator.
type Relation string

const (
	Less         Relation = "<"
	LessEqual    Relation = "<="
	Greater      Relation = ">"
	GreaterEqual Relation = ">="
)

// Holds reports whether sign(lhs - rhs) satisfies the relation.
func (r Relation) Holds(v float64) bool {
	switch r {
	case Less:
		return v < 0
	case LessEqual:
		return v <= 0
	case Greater:
		return v > 0
	case GreaterEqual:
		return v >= 0
	}
	return false
}

// Strict reports whether the relation excludes equality.
func (r Relation) Strict() bool { return r == Less || r == Greater }

type Inequality struct {
	LHS, RHS Expr
	Op       Relation
}

func (q *Inequality) String() string {
	return q.LHS.String() + " " + string(q.Op) + " " + q.RHS.String()
}

func (q *Inequality) Residual() Expr {
	return AddOf(q.LHS, MulOf(N(-1), q.RHS))
}
