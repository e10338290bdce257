package gosolve

import (
	"fmt"
	"math"
	"math/cmplx"
)

// QuadraticDetail carries the coefficients and discriminant of a
// quadratic a*x^2 + b*x + c.
type QuadraticDetail struct {
	A, B, C, D *Num
}

// dedupeTolerance is the relative distance under which two numeric roots
// are reported once.
const dedupeTolerance = 1e-9

// polyRoots returns every root of p (degree >= 1), complex ones included.
// Exact forms are produced for rational roots, for quadratic factors, and
// for the quartic factors that split into quadratics.
func polyRoots(p poly, opts Options) ([]Value, *QuadraticDetail, error) {
	switch p.degree() {
	case 1:
		return linearRoot(p), nil, nil
	case 2:
		roots, d := quadraticRoots(p)
		return roots, d, nil
	case 3:
		roots, err := cubicRoots(p, opts)
		return roots, nil, err
	}
	roots, err := higherRoots(p, opts)
	return roots, nil, err
}

func linearRoot(p poly) []Value {
	r := numNeg(numDiv(p.coeffs[0], p.coeffs[1]))
	if r.approx {
		return []Value{numericValue(complex(r.Float64(), 0))}
	}
	return []Value{realValue(r)}
}

// quadraticRoots solves a*x^2 + b*x + c. Distinct real roots are ordered
// (-b + sqrt(D))/(2a) then (-b - sqrt(D))/(2a); a double root is reported
// once; a negative discriminant yields the conjugate pair, +i first.
func quadraticRoots(p poly) ([]Value, *QuadraticDetail) {
	a, b, c := p.coeffs[2], p.coeffs[1], p.coeffs[0]
	d := numSub(numMul(b, b), numMul(N(4), numMul(a, c)))
	detail := &QuadraticDetail{A: a, B: b, C: c, D: d}

	if !p.isExact() {
		af, bf, df := a.Float64(), b.Float64(), d.Float64()
		switch {
		case df > 0:
			sq := math.Sqrt(df)
			return []Value{
				numericValue(complex((-bf+sq)/(2*af), 0)),
				numericValue(complex((-bf-sq)/(2*af), 0)),
			}, detail
		case df == 0:
			return []Value{numericValue(complex(-bf/(2*af), 0))}, detail
		}
		re, im := -bf/(2*af), math.Sqrt(-df)/math.Abs(2*af)
		return []Value{numericValue(complex(re, im)), numericValue(complex(re, -im))}, detail
	}

	twoA := numMul(N(2), a)
	negB := numNeg(b)
	switch d.Sign() {
	case 1:
		sq := SqrtOf(d)
		r1 := Expand(MulOf(AddOf(negB, sq), numRecip(twoA)))
		r2 := Expand(MulOf(AddOf(negB, MulOf(N(-1), sq)), numRecip(twoA)))
		return []Value{realValue(r1), realValue(r2)}, detail
	case 0:
		return []Value{realValue(numDiv(negB, twoA))}, detail
	}
	re := numDiv(negB, twoA)
	im := Expand(MulOf(SqrtOf(numNeg(d)), numRecip(numAbs(twoA))))
	return []Value{complexValue(re, im), complexValue(re, MulOf(N(-1), im))}, detail
}

// symbolicRoots solves a linear or quadratic in name whose coefficients
// are exact constants but not all rational, as in sqrt(3)*x - 3. The
// polynomial form approximates such coefficients, so the closed forms are
// rebuilt here on the expressions themselves.
func symbolicRoots(e Expr, name string) ([]Value, bool) {
	cm, ok := PolyCoeffs(e, name)
	if !ok {
		return nil, false
	}
	deg := 0
	for d, c := range cm {
		if len(FreeSymbols(c)) > 0 || containsApprox(c) {
			return nil, false
		}
		if d > deg {
			deg = d
		}
	}
	coeff := func(d int) Expr {
		if c, ok := cm[d]; ok {
			return c
		}
		return N(0)
	}

	switch deg {
	case 1:
		r := Expand(MulOf(N(-1), coeff(0), invertConst(coeff(1))))
		return []Value{realValue(r)}, true
	case 2:
		a, b, c := coeff(2), coeff(1), coeff(0)
		d := Expand(AddOf(MulOf(b, b), MulOf(N(-4), a, c)))
		df, err := d.Evalf(nil)
		if err != nil {
			return nil, false
		}
		inv := invertConst(MulOf(N(2), a))
		negB := MulOf(N(-1), b)
		if n, ok := d.(*Num); ok && n.IsZero() {
			return []Value{realValue(Expand(MulOf(negB, inv)))}, true
		}
		if df >= 0 {
			sq := SqrtOf(d)
			return []Value{
				realValue(Expand(MulOf(AddOf(negB, sq), inv))),
				realValue(Expand(MulOf(AddOf(negB, MulOf(N(-1), sq)), inv))),
			}, true
		}
		absInv := inv
		if af, err := a.Evalf(nil); err == nil && af < 0 {
			absInv = MulOf(N(-1), inv)
		}
		re := Expand(MulOf(negB, inv))
		im := Expand(MulOf(SqrtOf(MulOf(N(-1), d)), absInv))
		return []Value{complexValue(re, im), complexValue(re, MulOf(N(-1), im))}, true
	}
	return nil, false
}

// invertConst returns 1/c, moving square roots of rationals into the
// numerator: 1/(2*sqrt(3)) becomes sqrt(3)/6.
func invertConst(c Expr) Expr {
	switch v := c.(type) {
	case *Num:
		if !v.IsZero() {
			return numRecip(v)
		}
	case *Pow:
		if t, ok := v.base.(*Num); ok && !t.IsZero() && v.exp.Equal(F(1, 2)) {
			return MulOf(numRecip(t), v)
		}
	case *Mul:
		inv := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			inv[i] = invertConst(f)
		}
		return MulOf(inv...)
	}
	return PowOf(c, N(-1))
}

// cubicRoots deflates rational roots exactly; a cubic without one is
// solved through the depressed cubic.
func cubicRoots(p poly, opts Options) ([]Value, error) {
	if p.isExact() {
		rational, rest := p.rationalRoots()
		if len(rational) > 0 {
			return combineRoots(rational, rest, opts)
		}
	}
	zs := cardano(p.floats())
	out := make([]Value, len(zs))
	for i, z := range zs {
		out[i] = numericValue(snapReal(newtonStep(p, z), opts.ImagTolerance))
	}
	out = dedupeValues(out, dedupeTolerance)
	sortValues(out)
	return out, nil
}

// higherRoots handles degree >= 4: square-free reduction, rational
// deflation, then the residual factor by degree.
func higherRoots(p poly, opts Options) ([]Value, error) {
	if !p.isExact() {
		zs, err := durandKerner(p, opts)
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(zs))
		for i, z := range zs {
			out[i] = numericValue(z)
		}
		out = dedupeValues(out, dedupeTolerance)
		sortValues(out)
		return out, nil
	}
	rational, rest := p.squareFree().rationalRoots()
	return combineRoots(rational, rest, opts)
}

// combineRoots merges exact rational roots with the roots of the residual
// factor rest.
func combineRoots(rational []*Num, rest poly, opts Options) ([]Value, error) {
	out := make([]Value, 0, len(rational)+rest.degree())
	for _, r := range rational {
		out = append(out, realValue(r))
	}
	switch {
	case rest.degree() == 0:
	case rest.degree() == 4:
		parts := splitQuartic(rest)
		if len(parts) == 2 {
			for _, q := range parts {
				rs, _ := quadraticRoots(q)
				out = append(out, rs...)
			}
			break
		}
		zs, err := durandKerner(rest, opts)
		if err != nil {
			return nil, err
		}
		for _, z := range zs {
			out = append(out, numericValue(z))
		}
	case rest.degree() >= 3:
		var zs []complex128
		if rest.degree() == 3 {
			for _, z := range cardano(rest.floats()) {
				zs = append(zs, snapReal(newtonStep(rest, z), opts.ImagTolerance))
			}
		} else {
			var err error
			if zs, err = durandKerner(rest, opts); err != nil {
				return nil, err
			}
		}
		for _, z := range zs {
			out = append(out, numericValue(z))
		}
	default:
		rs, _, err := polyRoots(rest, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, rs...)
	}
	out = dedupeValues(out, dedupeTolerance)
	sortValues(out)
	return out, nil
}

// cardano solves a cubic with ascending float coefficients through the
// depressed cubic t^3 + p*t + q with x = t - b/(3a).
func cardano(c []float64) []complex128 {
	a, b, c1, d := c[3], c[2], c[1], c[0]
	p := (3*a*c1 - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c1 + 27*a*a*d) / (27 * a * a * a)
	shift := -b / (3 * a)
	disc := q*q/4 + p*p*p/27
	scale := math.Max(1, math.Max(q*q/4, math.Abs(p*p*p/27)))

	var ts []complex128
	switch {
	case math.Abs(disc) <= 1e-14*scale:
		if math.Abs(p) <= 1e-14 {
			ts = []complex128{0}
		} else {
			ts = []complex128{complex(3*q/p, 0), complex(-3*q/(2*p), 0)}
		}
	case disc > 0:
		sq := math.Sqrt(disc)
		u, v := math.Cbrt(-q/2+sq), math.Cbrt(-q/2-sq)
		re, im := -(u+v)/2, (u-v)*math.Sqrt(3)/2
		ts = []complex128{complex(u+v, 0), complex(re, im), complex(re, -im)}
	default:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(math.Max(-1, math.Min(1, 3*q/(p*m)))) / 3
		for k := 0; k < 3; k++ {
			ts = append(ts, complex(m*math.Cos(theta-2*math.Pi*float64(k)/3), 0))
		}
	}
	out := make([]complex128, len(ts))
	for i, t := range ts {
		out[i] = t + complex(shift, 0)
	}
	return out
}

// newtonStep applies one Newton correction for round-off.
func newtonStep(p poly, z complex128) complex128 {
	d := p.deriv().evalComplex(z)
	if d == 0 {
		return z
	}
	next := z - p.evalComplex(z)/d
	if cmplx.IsNaN(next) || cmplx.IsInf(next) {
		return z
	}
	return next
}

// durandKerner approximates all roots simultaneously. Seeds sit on the
// circle of the Cauchy root bound at an angular offset that avoids the real
// axis symmetry; iteration stops once no root moves more than
// opts.Tolerance relative to its magnitude.
func durandKerner(p poly, opts Options) ([]complex128, error) {
	n := p.degree()
	cs := p.floats()
	lead := cs[n]
	monic := make([]complex128, n+1)
	bound := 0.0
	for i, c := range cs {
		monic[i] = complex(c/lead, 0)
		if i < n {
			bound = math.Max(bound, math.Abs(c/lead))
		}
	}
	bound++

	eval := func(z complex128) complex128 {
		var acc complex128
		for i := n; i >= 0; i-- {
			acc = acc*z + monic[i]
		}
		return acc
	}

	z := make([]complex128, n)
	for k := range z {
		z[k] = cmplx.Rect(bound, 2*math.Pi*float64(k)/float64(n)+0.4)
	}
	for iter := 0; iter < opts.MaxIterations; iter++ {
		moved := 0.0
		for i := range z {
			den := complex(1, 0)
			for j := range z {
				if j != i {
					den *= z[i] - z[j]
				}
			}
			if den == 0 {
				den = complex(opts.Tolerance, 0)
			}
			delta := eval(z[i]) / den
			z[i] -= delta
			moved = math.Max(moved, cmplx.Abs(delta)/math.Max(1, cmplx.Abs(z[i])))
		}
		if cmplx.IsNaN(z[0]) {
			break
		}
		if moved < opts.Tolerance {
			for i := range z {
				z[i] = snapReal(z[i], opts.ImagTolerance)
			}
			return z, nil
		}
	}
	return nil, solveErrorf("durand-kerner", fmt.Errorf("%w after %d iterations", ErrDidNotConverge, opts.MaxIterations))
}

// ============================================================
// Non-polynomial equations
// ============================================================

// bracketTolerance is the residual a bisection root must reach; sign
// changes across a pole never do.
const bracketTolerance = 1e-6

// scanRoots finds real roots of f on [lo, hi] by scanning points+1 grid
// points for sign changes and bisecting each bracket.
func scanRoots(f func(float64) (float64, error), lo, hi float64, points int) []float64 {
	var roots []float64
	eval := func(x float64) (float64, bool) {
		v, err := f(x)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	}
	add := func(r float64) {
		for _, o := range roots {
			if math.Abs(o-r) <= dedupeTolerance*math.Max(1, math.Abs(r)) {
				return
			}
		}
		roots = append(roots, r)
	}

	prevX, prevV, prevOK := 0.0, 0.0, false
	for i := 0; i <= points; i++ {
		x := lo + (hi-lo)*float64(i)/float64(points)
		v, ok := eval(x)
		if !ok {
			prevOK = false
			continue
		}
		if v == 0 {
			add(x)
		} else if prevOK && prevV != 0 && math.Signbit(v) != math.Signbit(prevV) {
			if r, ok := bisect(eval, prevX, x, prevV); ok {
				add(r)
			}
		}
		prevX, prevV, prevOK = x, v, true
	}
	return roots
}

func bisect(eval func(float64) (float64, bool), a, b, fa float64) (float64, bool) {
	for iter := 0; iter < 200 && b-a > 1e-15*math.Max(1, math.Abs(a)); iter++ {
		mid := a + (b-a)/2
		fm, ok := eval(mid)
		if !ok {
			return 0, false
		}
		if fm == 0 {
			return mid, true
		}
		if math.Signbit(fm) == math.Signbit(fa) {
			a, fa = mid, fm
		} else {
			b = mid
		}
	}
	r := a + (b-a)/2
	v, ok := eval(r)
	return r, ok && math.Abs(v) <= bracketTolerance
}

// ============================================================
// Rational functions
// ============================================================

// clearDenominators multiplies a sum by the product of the distinct
// denominators that depend on name, each at its largest power. It returns
// the cleared numerator and the denominator bases, which must be nonzero.
func clearDenominators(e Expr, name string) (Expr, []Expr, bool) {
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	type den struct {
		base Expr
		k    int
	}
	var order []string
	dens := map[string]*den{}
	for _, t := range terms {
		factors := []Expr{t}
		if m, ok := t.(*Mul); ok {
			factors = m.factors
		}
		for _, f := range factors {
			pw, ok := f.(*Pow)
			if !ok || !hasSymbol(pw.base, name) {
				continue
			}
			n, ok := pw.exp.(*Num)
			if !ok || n.approx || !n.IsInteger() || !n.IsNegative() {
				continue
			}
			k, ok := numNeg(n).Int()
			if !ok {
				continue
			}
			key := pw.base.String()
			d, seen := dens[key]
			if !seen {
				d = &den{base: pw.base}
				dens[key] = d
				order = append(order, key)
			}
			if k > d.k {
				d.k = k
			}
		}
	}
	if len(order) == 0 {
		return nil, nil, false
	}
	multiplier := make([]Expr, 0, len(order))
	bases := make([]Expr, 0, len(order))
	for _, key := range order {
		d := dens[key]
		multiplier = append(multiplier, PowOf(d.base, N(int64(d.k))))
		bases = append(bases, d.base)
	}
	cleared := make([]Expr, len(terms))
	for i, t := range terms {
		cleared[i] = Expand(MulOf(append([]Expr{t}, multiplier...)...))
	}
	return AddOf(cleared...), bases, true
}

// vanishesAt reports whether a denominator is zero at the real value v.
func vanishesAt(base Expr, name string, v Value) bool {
	if re, ok := v.Expr(); ok {
		if n, ok := base.Sub(name, re).Eval(); ok {
			return n.IsZero()
		}
	}
	if !v.IsReal() {
		return false
	}
	f, err := base.Evalf(map[string]float64{name: v.Real()})
	return err != nil || math.Abs(f) < 1e-9
}
